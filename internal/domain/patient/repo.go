package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound covers both a missing row and a row the requester may not
// see; callers cannot tell the two apart.
var ErrNotFound = errors.New("patient not found")

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error)
	NextPatientCode(ctx context.Context) (string, error)
}
