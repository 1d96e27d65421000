package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// TokenRepo keeps the refresh-token blacklist.
type TokenRepo struct{ db sqlx.ExtContext }

func NewTokenRepo(db sqlx.ExtContext) *TokenRepo { return &TokenRepo{db: db} }

// Revoke blacklists jti. Revoking twice reports false the second time.
func (r *TokenRepo) Revoke(ctx context.Context, jti string, expires time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  INSERT INTO token_blacklist(jti, expires_at) VALUES(?, ?)
	  ON CONFLICT(jti) DO NOTHING
	`), jti, expires.UTC().Format(time.RFC3339))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *TokenRepo) Revoked(ctx context.Context, jti string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM token_blacklist WHERE jti = ?`), jti)
	return n > 0, err
}

// Purge drops entries whose tokens have expired anyway.
func (r *TokenRepo) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM token_blacklist WHERE expires_at < ?`), before.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
