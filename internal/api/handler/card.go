package handler

import (
	"net/http"

	"github.com/mcoot/tcgarena/internal/api/response"
	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/services/card"
)

// CardHandler serves the card catalog
type CardHandler struct {
	cardService *card.Service
}

// NewCardHandler creates a new card handler
func NewCardHandler(cardService *card.Service) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// List handles GET /api/v1/cards
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cardService.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardsFromModel(cards))
}

// Get handles GET /api/v1/cards/{id}
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	c, err := h.cardService.Get(r.Context(), model.CardID(id))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardFromModel(*c))
}
