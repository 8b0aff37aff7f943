package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type QueueStore struct {
	db *sqlx.DB
}

func NewQueueStore(db *sqlx.DB) *QueueStore {
	return &QueueStore{db: db}
}

func (s *QueueStore) GetQueue(ctx context.Context, gatheringID uuid.UUID) ([]futsal.QueueEntry, error) {
	var entries []futsal.QueueEntry
	err := s.db.SelectContext(ctx, &entries, "SELECT * FROM queue_entries WHERE gathering_id = ? ORDER BY position ASC", gatheringID)
	return entries, err
}

func (s *QueueStore) GetQueueTx(ctx context.Context, tx *sqlx.Tx, gatheringID uuid.UUID) ([]futsal.QueueEntry, error) {
	var entries []futsal.QueueEntry
	err := tx.SelectContext(ctx, &entries, "SELECT * FROM queue_entries WHERE gathering_id = ? ORDER BY position ASC", gatheringID)
	return entries, err
}

func (s *QueueStore) AddEntry(ctx context.Context, tx *sqlx.Tx, entry *futsal.QueueEntry) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO queue_entries (id, gathering_id, player_id, position, created_at)
		VALUES (:id, :gathering_id, :player_id, :position, :created_at)`, entry)
	return err
}

func (s *QueueStore) NextPositionTx(ctx context.Context, tx *sqlx.Tx, gatheringID uuid.UUID) (int, error) {
	var position sql.NullInt64
	err := tx.GetContext(ctx, &position, "SELECT MAX(position) FROM queue_entries WHERE gathering_id = ?", gatheringID)
	if err != nil {
		return 0, err
	}
	return int(position.Int64) + 1, nil
}

func (s *QueueStore) RemoveEntry(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM queue_entries WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: queue entry %s", futsal.ErrNotFound, id)
	}
	return nil
}

func (s *QueueStore) RemovePlayers(ctx context.Context, tx *sqlx.Tx, gatheringID uuid.UUID, playerIDs []uuid.UUID) error {
	if len(playerIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM queue_entries WHERE gathering_id = ? AND player_id IN (?)", gatheringID, playerIDs)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// ReplaceQueue rewrites the whole queue in the order given. Rotation output
// must land as one atomic update, so the queue is renumbered wholesale.
func (s *QueueStore) ReplaceQueue(ctx context.Context, tx *sqlx.Tx, gatheringID uuid.UUID, entries []futsal.QueueEntry) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM queue_entries WHERE gathering_id = ?", gatheringID); err != nil {
		return err
	}
	for i := range entries {
		entries[i].Position = i + 1
	}
	if len(entries) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO queue_entries (id, gathering_id, player_id, position, created_at)
		VALUES (:id, :gathering_id, :player_id, :position, :created_at)`, entries)
	return err
}
