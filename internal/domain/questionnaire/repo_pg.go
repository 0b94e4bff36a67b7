package questionnaire

import (
	"context"
	"encoding/json"
	"errors"

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

const qCols = `id, key, category, title, description, status, version, definition, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Questionnaire, error) {
	var q Questionnaire
	var def []byte
	err := row.Scan(&q.ID, &q.Key, &q.Category, &q.Title, &q.Description, &q.Status, &q.Version, &def, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(def, &q.Definition); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repoPG) Create(ctx context.Context, q *Questionnaire) error {
	q.ID = uuid.New()
	def, err := json.Marshal(q.Definition)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO questionnaire (id, key, category, title, description, status, version, definition)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		q.ID, q.Key, q.Category, q.Title, q.Description, q.Status, q.Version, def)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Questionnaire, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+qCols+` FROM questionnaire WHERE id = $1`, id))
}

func (r *repoPG) GetActiveByKey(ctx context.Context, key string) (*Questionnaire, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+qCols+` FROM questionnaire WHERE key = $1 AND status = 'active' ORDER BY version DESC LIMIT 1`, key))
}

func (r *repoPG) Update(ctx context.Context, q *Questionnaire) error {
	def, err := json.Marshal(q.Definition)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE questionnaire SET key=$2, category=$3, title=$4, description=$5, status=$6,
			version=$7, definition=$8, updated_at=NOW()
		WHERE id = $1`,
		q.ID, q.Key, q.Category, q.Title, q.Description, q.Status, q.Version, def)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM questionnaire WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Questionnaire, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM questionnaire`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+qCols+` FROM questionnaire ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Questionnaire
	for rows.Next() {
		q, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, q)
	}
	return items, total, nil
}

func (r *repoPG) ListByCategory(ctx context.Context, category string, limit, offset int) ([]*Questionnaire, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM questionnaire WHERE category = $1`, category).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+qCols+` FROM questionnaire WHERE category = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, category, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Questionnaire
	for rows.Next() {
		q, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, q)
	}
	return items, total, nil
}
