package repos

import (
	"context"

	"beecommerce/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ db sqlx.ExtContext }

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, username, email, password_hash, role, created_at, last_login`

func (r *UserRepo) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.db, &u, r.db.Rebind(`SELECT `+userCols+` FROM users WHERE LOWER(username) = LOWER(?)`), username)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.db, &u, r.db.Rebind(`SELECT `+userCols+` FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Exists(ctx context.Context, username string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM users WHERE LOWER(username) = LOWER(?)`), username)
	return n > 0, err
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	u.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  INSERT INTO users(id, username, email, password_hash, role, created_at)
	  VALUES(?, ?, ?, ?, ?, ?)
	`), u.ID, u.Username, u.Email, u.Hash, u.Role, u.CreatedAt)
	return err
}

func (r *UserRepo) TouchLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET last_login = ? WHERE id = ?`), now(), id)
	return err
}

func (r *UserRepo) SetRole(ctx context.Context, id, role string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET role = ? WHERE id = ?`), role, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
