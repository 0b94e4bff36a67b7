package assessment

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rxadvisor/rxadvisor/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const aCols = `id, questionnaire_id, questionnaire_key, questionnaire_version, patient_ref,
	status, responses, result, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Assessment, error) {
	var a Assessment
	var responses, result []byte
	err := row.Scan(&a.ID, &a.QuestionnaireID, &a.QuestionnaireKey, &a.QuestionnaireVersion, &a.PatientRef,
		&a.Status, &responses, &result, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(responses, &a.Responses); err != nil {
		return nil, err
	}
	if result != nil {
		if err := json.Unmarshal(result, &a.Result); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Assessment) error {
	a.ID = uuid.New()
	responses, err := json.Marshal(a.Responses)
	if err != nil {
		return err
	}
	var result []byte
	if a.Result != nil {
		if result, err = json.Marshal(a.Result); err != nil {
			return err
		}
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO assessment (id, questionnaire_id, questionnaire_key, questionnaire_version,
			patient_ref, status, responses, result)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.QuestionnaireID, a.QuestionnaireKey, a.QuestionnaireVersion,
		a.PatientRef, a.Status, responses, result)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+aCols+` FROM assessment WHERE id = $1`, id))
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM assessment WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Assessment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM assessment`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+aCols+` FROM assessment ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Assessment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientRef string, limit, offset int) ([]*Assessment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM assessment WHERE patient_ref = $1`, patientRef).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+aCols+` FROM assessment WHERE patient_ref = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientRef, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Assessment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}
