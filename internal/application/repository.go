package application

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"admissions-service/internal/db"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, app *Application) (*Application, error)
	GetAll(ctx context.Context) ([]Application, error)
	GetByID(ctx context.Context, id int64) (*Application, error)
	FindByDedupKey(ctx context.Context, email, idNumber string) (*Application, error)
	GetLatest(ctx context.Context, limit int) ([]Application, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id int64, columns map[string]string) (*Application, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(database *bun.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, app *Application) (*Application, error) {
	_, err := r.db.NewInsert().Model(app).Returning("*").Exec(ctx)
	if err != nil {
		if db.IsUniqueViolation(err) {
			// lost the check-then-insert race; same answer as the fast path
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return app, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Application, error) {
	applications := make([]Application, 0)
	err := r.db.NewSelect().
		Model(&applications).
		Order("created_at DESC").
		Scan(ctx)
	return applications, err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Application, error) {
	app := new(Application)
	err := r.db.NewSelect().Model(app).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *repository) FindByDedupKey(ctx context.Context, email, idNumber string) (*Application, error) {
	app := new(Application)
	err := r.db.NewSelect().
		Model(app).
		Where("email = ?", email).
		Where("id_number = ?", idNumber).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *repository) GetLatest(ctx context.Context, limit int) ([]Application, error) {
	applications := make([]Application, 0)
	err := r.db.NewSelect().
		Model(&applications).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	return applications, err
}

func (r *repository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Application)(nil)).Count(ctx)
}

func (r *repository) Update(ctx context.Context, id int64, columns map[string]string) (*Application, error) {
	if len(columns) > 0 {
		q := r.db.NewUpdate().
			Model((*Application)(nil)).
			Where("id = ?", id).
			Set("updated_at = ?", time.Now())
		for col, value := range columns {
			q = q.Set("? = ?", bun.Ident(col), value)
		}

		result, err := q.Exec(ctx)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return nil, ErrDuplicate
			}
			return nil, err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}
		if rowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*Application)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.NewDelete().
		Model((*Application)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
