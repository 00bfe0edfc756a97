package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/gedvilas/scriba/internal/pkg/status"
	"github.com/gedvilas/scriba/internal/pkg/test"
	"github.com/gedvilas/scriba/internal/pkg/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r *fakeRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

type fakePool struct {
	execSQL  []string
	execArgs [][]any
	execTag  pgconn.CommandTag
	execErr  error
	rowSQL   []string
	rowArgs  [][]any
	row      *fakeRow
}

func (p *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.execSQL = append(p.execSQL, sql)
	p.execArgs = append(p.execArgs, args)
	return p.execTag, p.execErr
}

func (p *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	p.rowSQL = append(p.rowSQL, sql)
	p.rowArgs = append(p.rowArgs, args)
	return p.row
}

func TestInsertRecording(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	db, err := NewDB(pool)
	require.Nil(t, err)
	res, err := db.InsertRecording(test.Ctx(t), "uploads/olia.mp3", "audio/mpeg", status.Transcribing)
	require.Nil(t, err)
	assert.NotEmpty(t, res.ID)
	assert.False(t, res.Created.IsZero())
	assert.Equal(t, "uploads/olia.mp3", res.AudioPath)
	assert.Equal(t, "transcribing", res.Status)
	require.Equal(t, 1, len(pool.execArgs))
	assert.Equal(t, res.ID, pool.execArgs[0][0])
}

func TestInsertRecording_Fails(t *testing.T) {
	pool := &fakePool{execErr: fmt.Errorf("olia err")}
	db, _ := NewDB(pool)
	res, err := db.InsertRecording(test.Ctx(t), "uploads/olia.mp3", "audio/mpeg", status.Transcribing)
	require.NotNil(t, err)
	assert.Nil(t, res)
}

func TestUpdateFailure(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("UPDATE 1")}
	db, _ := NewDB(pool)
	err := db.UpdateFailure(test.Ctx(t), "id1", "olia err")
	require.Nil(t, err)
	require.Equal(t, 1, len(pool.execArgs))
	assert.Equal(t, "id1", pool.execArgs[0][0])
	assert.Equal(t, "failed", pool.execArgs[0][1])
	assert.Equal(t, utils.ToSQLStr("olia err"), pool.execArgs[0][2])
}

func TestUpdateFailure_NoRecord(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("UPDATE 0")}
	db, _ := NewDB(pool)
	err := db.UpdateFailure(test.Ctx(t), "id1", "olia err")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "no record found")
}

func TestUpdateSuccess_ClearsError(t *testing.T) {
	pool := &fakePool{row: &fakeRow{scan: func(dest ...any) error {
		require.Equal(t, 7, len(dest))
		*dest[0].(*string) = "id1"
		*dest[1].(*time.Time) = time.Now()
		*dest[2].(*string) = "uploads/olia.mp3"
		*dest[3].(*string) = "audio/mpeg"
		*dest[4].(*string) = "complete"
		*dest[5].(*sql.NullString) = utils.ToSQLStr("olia text")
		*dest[6].(*sql.NullString) = sql.NullString{}
		return nil
	}}}
	db, _ := NewDB(pool)
	res, err := db.UpdateSuccess(test.Ctx(t), "id1", "olia text")
	require.Nil(t, err)
	assert.Equal(t, "complete", res.Status)
	assert.Equal(t, "olia text", utils.FromSQLStr(res.Transcript))
	assert.False(t, res.Error.Valid)
	require.Equal(t, 1, len(pool.rowSQL))
	assert.Contains(t, pool.rowSQL[0], "error = NULL")
	require.Equal(t, 3, len(pool.rowArgs[0]))
	assert.Equal(t, "id1", pool.rowArgs[0][0])
	assert.Equal(t, "complete", pool.rowArgs[0][1])
	assert.Equal(t, "olia text", pool.rowArgs[0][2])
}

func TestUpdateSuccess_NoRecord(t *testing.T) {
	pool := &fakePool{row: &fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}}
	db, _ := NewDB(pool)
	res, err := db.UpdateSuccess(test.Ctx(t), "id1", "olia text")
	require.NotNil(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "no record found")
}

func TestLoadRecording(t *testing.T) {
	pool := &fakePool{row: &fakeRow{scan: func(dest ...any) error {
		*dest[0].(*string) = "id1"
		*dest[4].(*string) = "failed"
		*dest[6].(*sql.NullString) = utils.ToSQLStr("olia err")
		return nil
	}}}
	db, _ := NewDB(pool)
	res, err := db.LoadRecording(test.Ctx(t), "id1")
	require.Nil(t, err)
	assert.Equal(t, "id1", res.ID)
	assert.Equal(t, "olia err", utils.FromSQLStr(res.Error))
}

func TestLoadRecording_NoRow(t *testing.T) {
	pool := &fakePool{row: &fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}}
	db, _ := NewDB(pool)
	res, err := db.LoadRecording(test.Ctx(t), "id2")
	require.Nil(t, err)
	assert.Nil(t, res)
}

func TestLive(t *testing.T) {
	pool := &fakePool{row: &fakeRow{scan: func(dest ...any) error {
		*dest[0].(*bool) = true
		return nil
	}}}
	db, _ := NewDB(pool)
	assert.Nil(t, db.Live(test.Ctx(t)))
}

func TestLive_NoMigration(t *testing.T) {
	pool := &fakePool{row: &fakeRow{scan: func(dest ...any) error { return nil }}}
	db, _ := NewDB(pool)
	err := db.Live(test.Ctx(t))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "no migration done")
}
