package resident

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Resident) error
	GetByID(ctx context.Context, id uuid.UUID) (*Resident, error)
	Update(ctx context.Context, r *Resident) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	SetPhoto(ctx context.Context, id uuid.UUID, path string) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Resident, int, error)
	// FindCandidates returns live residents sharing lastName and dateOfBirth,
	// the only rows that can collide with a new identity.
	FindCandidates(ctx context.Context, lastName, dateOfBirth string) ([]*Resident, error)
	ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]*Resident, error)
	// ListEligibleMothers returns active females aged 18 and above.
	ListEligibleMothers(ctx context.Context) ([]*Resident, error)
	// ListChildren returns active residents aged maxAge and below.
	ListChildren(ctx context.Context, maxAge int) ([]*Resident, error)
}
