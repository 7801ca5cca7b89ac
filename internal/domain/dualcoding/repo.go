package dualcoding

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("mapping not found")

type MappingRepository interface {
	Create(ctx context.Context, m *Mapping) error
	GetByID(ctx context.Context, id uuid.UUID) (*Mapping, error)
	Update(ctx context.Context, m *Mapping) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Mapping, int, error)
}
