package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/barangaysm/portal-api/internal/domain"
	"github.com/barangaysm/portal-api/internal/pkg/validate"
)

type Service interface {
	Upsert(ctx context.Context, userID string, in domain.UpsertProfileInput) (*domain.Profile, error)
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

type profileStore interface {
	Put(ctx context.Context, p *domain.Profile) error
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type accountStore interface {
	Get(ctx context.Context, userID string) (*domain.Account, error)
}

type service struct {
	profiles profileStore
	accounts accountStore
}

func NewService(profiles profileStore, accounts accountStore) Service {
	return &service{profiles: profiles, accounts: accounts}
}

func (s *service) Upsert(ctx context.Context, userID string, in domain.UpsertProfileInput) (*domain.Profile, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	// Profiles hang off registered accounts only.
	if _, err := s.accounts.Get(ctx, userID); err != nil {
		return nil, err
	}

	existing, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	if existing != nil {
		// Partial update keeps created_at intact.
		updates := map[string]interface{}{
			"first_name":        in.FirstName,
			"middle_name":       in.MiddleName,
			"last_name":         in.LastName,
			"suffix":            in.Suffix,
			"birthdate":         in.Birthdate,
			"type_of_residency": in.TypeOfResidency,
			"address":           in.Address,
		}
		if err := s.profiles.Update(ctx, userID, updates); err != nil {
			return nil, err
		}
		return s.profiles.Get(ctx, userID)
	}

	p := &domain.Profile{
		UserID:          userID,
		FirstName:       in.FirstName,
		MiddleName:      in.MiddleName,
		LastName:        in.LastName,
		Suffix:          in.Suffix,
		Birthdate:       in.Birthdate,
		TypeOfResidency: in.TypeOfResidency,
		Address:         in.Address,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.profiles.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.profiles.Get(ctx, userID)
}
