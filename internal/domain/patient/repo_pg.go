package patient

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

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, patient_code, doctor_id, name, age, gender,
	contact_number, email, address, medical_history, symptoms,
	diagnosis, treatment_plan, matched_ayush_codes, matched_icd11_codes,
	status, created_at, updated_at`

func (r *patientRepoPG) scanRow(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.PatientCode, &p.DoctorID, &p.Name, &p.Age, &p.Gender,
		&p.ContactNumber, &p.Email, &p.Address, &p.MedicalHistory, &p.Symptoms,
		&p.Diagnosis, &p.TreatmentPlan, &p.MatchedAyushCodes, &p.MatchedICD11Codes,
		&p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.MatchedAyushCodes == nil {
		p.MatchedAyushCodes = []SelectedCode{}
	}
	if p.MatchedICD11Codes == nil {
		p.MatchedICD11Codes = []SelectedCode{}
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.MatchedAyushCodes == nil {
		p.MatchedAyushCodes = []SelectedCode{}
	}
	if p.MatchedICD11Codes == nil {
		p.MatchedICD11Codes = []SelectedCode{}
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (id, patient_code, doctor_id, name, age, gender,
			contact_number, email, address, medical_history, symptoms,
			diagnosis, treatment_plan, matched_ayush_codes, matched_icd11_codes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING created_at, updated_at`,
		p.ID, p.PatientCode, p.DoctorID, p.Name, p.Age, p.Gender,
		p.ContactNumber, p.Email, p.Address, p.MedicalHistory, p.Symptoms,
		p.Diagnosis, p.TreatmentPlan, p.MatchedAyushCodes, p.MatchedICD11Codes, p.Status).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET name=$2, age=$3, gender=$4, contact_number=$5,
			email=$6, address=$7, medical_history=$8, symptoms=$9,
			diagnosis=$10, treatment_plan=$11, matched_ayush_codes=$12,
			matched_icd11_codes=$13, status=$14, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Age, p.Gender, p.ContactNumber,
		p.Email, p.Address, p.MedicalHistory, p.Symptoms,
		p.Diagnosis, p.TreatmentPlan, p.MatchedAyushCodes,
		p.MatchedICD11Codes, p.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// patientSortCols whitelists sortable columns; anything else falls back to
// created_at.
var patientSortCols = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"age":        "age",
}

func (r *patientRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	n := 0

	if f.DoctorID != uuid.Nil {
		n++
		where = append(where, fmt.Sprintf("doctor_id = $%d", n))
		args = append(args, f.DoctorID)
	}
	if f.Status != "" {
		n++
		where = append(where, fmt.Sprintf("status = $%d", n))
		args = append(args, f.Status)
	}
	if f.Search != "" {
		n++
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR symptoms ILIKE $%d)", n, n))
		args = append(args, "%"+f.Search+"%")
	}

	clause := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := patientSortCols[f.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortDir, "asc") {
		dir = "ASC"
	}

	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM patients WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		patientCols, clause, sortCol, dir, n+1, n+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// NextPatientCode allocates the next sequential human-readable code,
// "P-01", "P-02", ... backed by a Postgres sequence so concurrent creates
// never collide.
func (r *patientRepoPG) NextPatientCode(ctx context.Context) (string, error) {
	var n int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT nextval('patient_code_seq')`).Scan(&n); err != nil {
		return "", err
	}
	return fmt.Sprintf("P-%02d", n), nil
}
