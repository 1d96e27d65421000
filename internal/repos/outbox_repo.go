package repos

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
)

type OutboxRecord struct {
	ID        int64   `db:"id"`
	EventID   string  `db:"event_id"`
	Topic     string  `db:"topic"`
	Key       string  `db:"key"`
	Payload   string  `db:"payload"`
	CreatedAt string  `db:"created_at"`
	SentAt    *string `db:"sent_at"`
}

// OutboxRepo stores events written in the same transaction as the state
// change they describe; a relay ships them afterwards.
type OutboxRepo struct{ db sqlx.ExtContext }

func NewOutboxRepo(db sqlx.ExtContext) *OutboxRepo { return &OutboxRepo{db: db} }

func (r *OutboxRepo) Insert(ctx context.Context, eventID, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
	  INSERT INTO outbox(event_id, topic, key, payload, created_at) VALUES(?, ?, ?, ?, ?)
	`), eventID, topic, key, string(data), now())
	return err
}

func (r *OutboxRepo) FetchPending(ctx context.Context, limit int) ([]OutboxRecord, error) {
	out := []OutboxRecord{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`
	  SELECT id, event_id, topic, key, payload, created_at, sent_at
	  FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT ?
	`), limit)
	return out, err
}

func (r *OutboxRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE outbox SET sent_at = ? WHERE id = ?`), now(), id)
	return err
}
