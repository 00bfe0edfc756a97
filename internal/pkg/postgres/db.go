package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gedvilas/scriba/internal/pkg/persistence"
	"github.com/gedvilas/scriba/internal/pkg/status"
	"github.com/gedvilas/scriba/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the part of pgxpool.Pool used by the gateway
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB provides operations with postgresql
type DB struct {
	pool Pool
}

//NewDB creates DB instance
func NewDB(pool Pool) (*DB, error) {
	res := &DB{pool: pool}
	return res, nil
}

// InsertRecording inserts recording into DB, assigns ID and creation time.
// A rejected insert must surface here - the pipeline may not start
// external processes for a row that was never persisted
func (db *DB) InsertRecording(ctx context.Context, audioPath, mimeType string, st status.Status) (*persistence.Recording, error) {
	res := &persistence.Recording{ID: uuid.NewString(), Created: time.Now(),
		AudioPath: audioPath, MimeType: mimeType, Status: st.String()}
	_, err := db.pool.Exec(ctx, `INSERT INTO recordings(id, audio_path, mime_type, status, created)
	VALUES($1, $2, $3, $4, $5)`, res.ID, res.AudioPath, res.MimeType, res.Status, res.Created)
	if err != nil {
		return nil, fmt.Errorf("can't insert recording: %w", err)
	}
	return res, nil
}

// LoadRecording loads recording from DB, returns nil if no row
func (db *DB) LoadRecording(ctx context.Context, id string) (*persistence.Recording, error) {
	var res persistence.Recording
	err := db.pool.QueryRow(ctx, `SELECT id, created, audio_path, mime_type, status, transcript, error FROM recordings
		WHERE id = $1`, id).Scan(&res.ID, &res.Created, &res.AudioPath, &res.MimeType,
		&res.Status, &res.Transcript, &res.Error)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load recording: %w", err)
	}
	return &res, nil
}

// UpdateFailure marks recording as failed keeping the error message
func (db *DB) UpdateFailure(ctx context.Context, id, errMsg string) error {
	rows, err := db.pool.Exec(ctx, `UPDATE recordings SET
	status = $2,
	error = $3
	WHERE id = $1`, id, status.Failed.String(), utils.ToSQLStr(errMsg))
	if err != nil {
		return fmt.Errorf("can't update recording: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return fmt.Errorf("can't update recording, no record found")
	}
	return nil
}

// UpdateSuccess marks recording as complete with the transcript.
// A stale error from an earlier run is cleared
func (db *DB) UpdateSuccess(ctx context.Context, id, transcript string) (*persistence.Recording, error) {
	var res persistence.Recording
	err := db.pool.QueryRow(ctx, `UPDATE recordings SET
	status = $2,
	transcript = $3,
	error = NULL
	WHERE id = $1
	RETURNING id, created, audio_path, mime_type, status, transcript, error`,
		id, status.Complete.String(), transcript).Scan(&res.ID, &res.Created, &res.AudioPath,
		&res.MimeType, &res.Status, &res.Transcript, &res.Error)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("can't update recording, no record found")
		}
		return nil, fmt.Errorf("can't update recording: %w", err)
	}
	return &res, nil
}

// Live returns no error if db is reachable and initialized
func (db *DB) Live(ctx context.Context) error {
	var exists bool
	if err := db.pool.QueryRow(ctx, `SELECT EXISTS (SELECT FROM pg_tables WHERE tablename = 'recordings')`).Scan(&exists); err != nil {
		return fmt.Errorf("can't check table: %w", err)
	}
	if !exists {
		return fmt.Errorf("no migration done")
	}
	return nil
}
