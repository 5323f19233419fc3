package storage

import (
	"sort"
	"strings"

	"github.com/mcoot/tcgarena/internal/model"
)

// SortCards orders cards the way the catalog is listed: by pokedex number,
// then by id.
func SortCards(cards []model.Card) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].PokedexNumber != cards[j].PokedexNumber {
			return cards[i].PokedexNumber < cards[j].PokedexNumber
		}
		return cards[i].ID < cards[j].ID
	})
}

// DistinctCardIDs returns ids with duplicates removed, keeping first occurrence order
func DistinctCardIDs(ids []model.CardID) []model.CardID {
	seen := make(map[model.CardID]bool, len(ids))
	out := make([]model.CardID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// NormalizeEmail lowercases and trims an email for lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
