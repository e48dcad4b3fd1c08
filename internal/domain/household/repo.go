package household

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, h *Household) error
	GetByID(ctx context.Context, id uuid.UUID) (*Household, error)
	Update(ctx context.Context, h *Household) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Household, int, error)
}
