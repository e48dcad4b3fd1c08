package maternal

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, r *Record) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Record, int, error)
	// HasOngoing reports whether residentID has a live, undelivered record
	// other than exclude.
	HasOngoing(ctx context.Context, residentID, exclude uuid.UUID) (bool, error)
}
