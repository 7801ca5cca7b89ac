package dualcoding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/namoarogya/api/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type mappingRepoPG struct{ pool *pgxpool.Pool }

func NewMappingRepoPG(pool *pgxpool.Pool) MappingRepository {
	return &mappingRepoPG{pool: pool}
}

func (r *mappingRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const mappingCols = `id, ayush_code, ayush_description, icd11_code,
	icd11_description, confidence_score, suggested_confidence,
	mapping_type, created_by, created_at, updated_at`

func (r *mappingRepoPG) scanRow(row pgx.Row) (*Mapping, error) {
	var m Mapping
	err := row.Scan(&m.ID, &m.AyushCode, &m.AyushDescription, &m.ICD11Code,
		&m.ICD11Description, &m.ConfidenceScore, &m.SuggestedConfidence,
		&m.MappingType, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create always inserts a new row; there is no upsert on the code pair.
func (r *mappingRepoPG) Create(ctx context.Context, m *Mapping) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO dual_coding_mappings (id, ayush_code, ayush_description,
			icd11_code, icd11_description, confidence_score,
			suggested_confidence, mapping_type, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		m.ID, m.AyushCode, m.AyushDescription, m.ICD11Code, m.ICD11Description,
		m.ConfidenceScore, m.SuggestedConfidence, m.MappingType, m.CreatedBy).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *mappingRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Mapping, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+mappingCols+` FROM dual_coding_mappings WHERE id = $1`, id))
}

func (r *mappingRepoPG) Update(ctx context.Context, m *Mapping) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE dual_coding_mappings SET ayush_code=$2, ayush_description=$3,
			icd11_code=$4, icd11_description=$5, confidence_score=$6,
			updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.AyushCode, m.AyushDescription, m.ICD11Code,
		m.ICD11Description, m.ConfidenceScore)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mappingRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Mapping, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	n := 0

	if f.AyushCode != "" {
		n++
		where = append(where, fmt.Sprintf("ayush_code = $%d", n))
		args = append(args, f.AyushCode)
	}
	if f.ICD11Code != "" {
		n++
		where = append(where, fmt.Sprintf("icd11_code = $%d", n))
		args = append(args, f.ICD11Code)
	}
	if f.MappingType != "" {
		n++
		where = append(where, fmt.Sprintf("mapping_type = $%d", n))
		args = append(args, f.MappingType)
	}
	if f.CreatedBy != uuid.Nil {
		n++
		where = append(where, fmt.Sprintf("created_by = $%d", n))
		args = append(args, f.CreatedBy)
	}

	clause := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM dual_coding_mappings WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM dual_coding_mappings WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		mappingCols, clause, n+1, n+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Mapping
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
