package death

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *DeathRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*DeathRecord, error)
	Update(ctx context.Context, d *DeathRecord) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*DeathRecord, int, error)
	// LiveForResident returns the id of the live record for residentID, or
	// uuid.Nil when there is none.
	LiveForResident(ctx context.Context, residentID uuid.UUID) (uuid.UUID, error)
}
