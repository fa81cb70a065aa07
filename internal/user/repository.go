package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"admissions-service/internal/db"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *bun.DB
}

func NewRepository(database *bun.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	_, err := r.db.NewInsert().Model(u).Returning("*").Exec(ctx)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (r *repository) GetAll(ctx context.Context) ([]User, error) {
	users := make([]User, 0)
	err := r.db.NewSelect().
		Model(&users).
		Order("created_at DESC").
		Scan(ctx)
	return users, err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	u := new(User)
	err := r.db.NewSelect().Model(u).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u := new(User)
	err := r.db.NewSelect().Model(u).Where("email = ?", email).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *repository) Update(ctx context.Context, u *User) error {
	u.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(u).
		Column("username", "email", "role", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrConflict
		}
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

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*User)(nil)).
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
