package card

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	store := memory.New()
	s.ctx = context.Background()
	s.Require().NoError(store.SaveCards(s.ctx, []model.Card{
		{Name: "Raichu", PokedexNumber: 26},
		{Name: "Pikachu", PokedexNumber: 25},
	}))
	s.service = New(store)
}

func (s *ServiceSuite) TestListOrdersByPokedex() {
	cards, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Equal("Pikachu", cards[0].Name)
	s.Equal("Raichu", cards[1].Name)
}

func (s *ServiceSuite) TestGet() {
	cards, _ := s.service.List(s.ctx)

	card, err := s.service.Get(s.ctx, cards[1].ID)
	s.Require().NoError(err)
	s.Equal("Raichu", card.Name)

	_, err = s.service.Get(s.ctx, 999)
	s.ErrorIs(err, model.ErrCardNotFound)
}
