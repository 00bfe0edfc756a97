package mocks

import (
	"context"
	"io"

	"github.com/gedvilas/scriba/internal/pkg/persistence"
	"github.com/gedvilas/scriba/internal/pkg/status"
	"github.com/stretchr/testify/mock"
)

// Runner is process runner mock
type Runner struct{ mock.Mock }

func (m *Runner) Run(ctx context.Context, cmd string, args []string) error {
	mArgs := m.Called(ctx, cmd, args)
	return mArgs.Error(0)
}

// DB is postgres DB mock
type DB struct{ mock.Mock }

func (m *DB) InsertRecording(ctx context.Context, audioPath, mimeType string, st status.Status) (*persistence.Recording, error) {
	args := m.Called(ctx, audioPath, mimeType, st)
	return to[*persistence.Recording](args.Get(0)), args.Error(1)
}

func (m *DB) UpdateFailure(ctx context.Context, id, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}

func (m *DB) UpdateSuccess(ctx context.Context, id, transcript string) (*persistence.Recording, error) {
	args := m.Called(ctx, id, transcript)
	return to[*persistence.Recording](args.Get(0)), args.Error(1)
}

func (m *DB) LoadRecording(ctx context.Context, id string) (*persistence.Recording, error) {
	args := m.Called(ctx, id)
	return to[*persistence.Recording](args.Get(0)), args.Error(1)
}

func (m *DB) Live(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Converter is audio converter mock
type Converter struct{ mock.Mock }

func (m *Converter) Convert(ctx context.Context, input string) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

// Transcriber is speech engine adapter mock
type Transcriber struct{ mock.Mock }

func (m *Transcriber) Transcribe(ctx context.Context, wavPath, id string) (string, error) {
	args := m.Called(ctx, wavPath, id)
	return args.String(0), args.Error(1)
}

// Saver is upload storage mock
type Saver struct{ mock.Mock }

func (m *Saver) SaveFile(ctx context.Context, ext string, r io.Reader) (string, error) {
	args := m.Called(ctx, ext, r)
	return args.String(0), args.Error(1)
}

// Pipeline is recording lifecycle mock
type Pipeline struct{ mock.Mock }

func (m *Pipeline) Upload(ctx context.Context, audioPath, mimeType string) (*persistence.Recording, error) {
	args := m.Called(ctx, audioPath, mimeType)
	return to[*persistence.Recording](args.Get(0)), args.Error(1)
}

func (m *Pipeline) Run(ctx context.Context, audioPath, mimeType string) (*persistence.Recording, error) {
	args := m.Called(ctx, audioPath, mimeType)
	return to[*persistence.Recording](args.Get(0)), args.Error(1)
}

func to[T interface{}](val interface{}) T {
	if val == nil {
		var res T
		return res
	}
	return val.(T)
}
