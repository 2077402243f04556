package sellers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/ticketing"
)

type DBLayer interface {
	CreateSeller(ctx context.Context, seller *models.Seller) error
	ListSellers(ctx context.Context, eventID string) ([]models.Seller, error)
	RemoveSeller(ctx context.Context, id string) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	CountTicketsSold(ctx context.Context, eventID, sellerID string) (int, error)
	CountReservations(ctx context.Context, eventID, sellerID string) (int, error)
	SumTombolaWeight(ctx context.Context, eventID, tombolaSellerID string) (float64, error)
}

type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

// RegisterSeller records an (event, email) seller pair. The email need not
// belong to a registered account yet; the unique index rejects duplicates
// per event.
func (s *Service) RegisterSeller(ctx context.Context, eventID, email string) (*models.Seller, error) {
	if email == "" {
		return nil, fmt.Errorf("seller email is required")
	}
	seller := &models.Seller{
		ID:      uuid.New().String(),
		EventID: eventID,
		Email:   email,
	}
	if err := s.DB.CreateSeller(ctx, seller); err != nil {
		return nil, fmt.Errorf("failed to register seller %s: %w", email, err)
	}
	return seller, nil
}

func (s *Service) ListSellers(ctx context.Context, eventID string) ([]models.Seller, error) {
	return s.DB.ListSellers(ctx, eventID)
}

func (s *Service) RemoveSeller(ctx context.Context, id string) error {
	return s.DB.RemoveSeller(ctx, id)
}

// Settlement aggregates per-seller sales for an event and computes the
// amount owed: ticketsSold × price + tombolaWeight × tombolaPrice. Sellers
// whose email has no account yet are reported as unregistered with zero
// amounts: sales cannot be attributed to an account that does not exist.
func (s *Service) Settlement(ctx context.Context, eventID string) ([]models.SellerSettlement, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	registered, err := s.DB.ListSellers(ctx, eventID)
	if err != nil {
		return nil, err
	}

	settlements := make([]models.SellerSettlement, 0, len(registered))
	for _, seller := range registered {
		user, err := s.DB.GetUserByEmail(ctx, seller.Email)
		if err != nil {
			if errors.Is(err, ticketing.ErrNotFound) {
				settlements = append(settlements, models.SellerSettlement{
					Email:      seller.Email,
					Registered: false,
				})
				continue
			}
			return nil, err
		}

		sold, err := s.DB.CountTicketsSold(ctx, eventID, user.ID)
		if err != nil {
			return nil, err
		}
		reservations, err := s.DB.CountReservations(ctx, eventID, user.ID)
		if err != nil {
			return nil, err
		}
		tombola, err := s.DB.SumTombolaWeight(ctx, eventID, user.ID)
		if err != nil {
			return nil, err
		}

		settlements = append(settlements, models.SellerSettlement{
			Email:        seller.Email,
			Registered:   true,
			TicketsSold:  sold,
			Reservations: reservations,
			TombolaSold:  tombola,
			AmountOwed:   float64(sold)*event.Price + tombola*event.TombolaPrice,
		})
	}
	return settlements, nil
}
