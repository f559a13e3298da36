package cart

import (
	"context"
	"database/sql"
)

// PostgresStorage persists snapshots in the cart_snapshots table, one row per
// session. Last write wins; concurrent holders of the same session are not
// merged.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (p *PostgresStorage) Load(ctx context.Context, sessionID string) ([]byte, error) {
	var snapshot []byte

	err := p.db.QueryRowContext(ctx, `
		SELECT snapshot
		FROM cart_snapshots
		WHERE session_id = $1
	`, sessionID).Scan(&snapshot)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return snapshot, nil
}

func (p *PostgresStorage) Save(ctx context.Context, sessionID string, snapshot []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (session_id, snapshot, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (session_id)
		DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = NOW()
	`, sessionID, snapshot)
	return err
}

func (p *PostgresStorage) Delete(ctx context.Context, sessionID string) error {
	_, err := p.db.ExecContext(ctx, `
		DELETE FROM cart_snapshots
		WHERE session_id = $1
	`, sessionID)
	return err
}
