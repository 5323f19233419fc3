package gateway

import (
	"errors"

	"github.com/mcoot/tcgarena/internal/model"
)

// User-facing texts carried by errorMessage events
const (
	MsgInvalidDeckID    = "DeckId invalide"
	MsgInvalidParams    = "Paramètres invalides"
	MsgDeckNotFound     = "Deck introuvable"
	MsgDeckNotOwned     = "Ce deck ne vous appartient pas"
	MsgInvalidDeckSize  = "Le deck doit contenir exactement 10 cartes"
	MsgRoomNotFound     = "Room introuvable"
	MsgRoomNotJoinable  = "La room est déjà complète"
	MsgUnknownEvent     = "Événement inconnu"
	MsgMalformedMessage = "Message invalide"
	MsgServerError      = "Erreur serveur"
)

// messageFor maps an error to the text sent back to the originating client
func messageFor(err error) string {
	switch {
	case errors.Is(err, model.ErrDeckNotFound):
		return MsgDeckNotFound
	case errors.Is(err, model.ErrDeckNotOwned):
		return MsgDeckNotOwned
	case errors.Is(err, model.ErrInvalidDeckSize):
		return MsgInvalidDeckSize
	case errors.Is(err, model.ErrRoomNotFound):
		return MsgRoomNotFound
	case errors.Is(err, model.ErrRoomNotJoinable):
		return MsgRoomNotJoinable
	default:
		return MsgServerError
	}
}
