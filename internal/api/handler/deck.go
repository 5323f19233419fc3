package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/tcgarena/internal/api/middleware"
	"github.com/mcoot/tcgarena/internal/api/request"
	"github.com/mcoot/tcgarena/internal/api/response"
	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/services/deck"
)

// DeckHandler handles deck endpoints. Every route acts on the caller's decks.
type DeckHandler struct {
	deckService *deck.Service
}

// NewDeckHandler creates a new deck handler
func NewDeckHandler(deckService *deck.Service) *DeckHandler {
	return &DeckHandler{deckService: deckService}
}

// Create handles POST /api/v1/decks
func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	d, err := h.deckService.Create(r.Context(), identity.UserID, req.Name, toCardIDs(req.Cards))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Created(w, response.DeckFromModel(d))
}

// ListMine handles GET /api/v1/decks/mine
func (h *DeckHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	decks, err := h.deckService.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.DecksFromModel(decks))
}

// Get handles GET /api/v1/decks/{id}
func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	d, err := h.deckService.GetOwned(r.Context(), identity.UserID, model.DeckID(id))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.DeckFromModel(d))
}

// Update handles PATCH /api/v1/decks/{id}
func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.UpdateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var cardIDs []model.CardID
	if req.HasCards() {
		cardIDs = toCardIDs(req.Cards)
	}
	d, err := h.deckService.Update(r.Context(), identity.UserID, model.DeckID(id), req.Name, cardIDs)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.DeckFromModel(d))
}

// Delete handles DELETE /api/v1/decks/{id}
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.deckService.Delete(r.Context(), identity.UserID, model.DeckID(id)); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// toCardIDs converts request ids, keeping an empty list non-nil
func toCardIDs(ids []int64) []model.CardID {
	out := make([]model.CardID, len(ids))
	for i, id := range ids {
		out[i] = model.CardID(id)
	}
	return out
}
