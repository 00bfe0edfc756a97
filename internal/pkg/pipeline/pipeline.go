package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/gedvilas/scriba/internal/pkg/persistence"
	"github.com/gedvilas/scriba/internal/pkg/status"
	"github.com/gedvilas/scriba/internal/pkg/utils"
	"github.com/pkg/errors"
)

// DB is the storage gateway used by the pipeline
type DB interface {
	InsertRecording(ctx context.Context, audioPath, mimeType string, st status.Status) (*persistence.Recording, error)
	UpdateFailure(ctx context.Context, id, errMsg string) error
	UpdateSuccess(ctx context.Context, id, transcript string) (*persistence.Recording, error)
}

// Converter normalizes audio for the engine
type Converter interface {
	Convert(ctx context.Context, input string) (string, error)
}

// Transcriber produces text from normalized audio
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath, id string) (string, error)
}

// Data keeps data required for pipeline work
type Data struct {
	DB          DB
	Converter   Converter
	Transcriber Transcriber
	// RootDir anchors stored relative paths
	RootDir string
	// Timeout bounds one external process wait so a stuck binary can't hang the task
	Timeout time.Duration
}

// Error is returned when processing fails after the row was created.
// It carries the recording ID so the row stays inspectable
type Error struct {
	ID  string
	Err error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Pipeline drives one recording from ingestion to a terminal status
type Pipeline struct {
	data Data
}

// NewPipeline creates the recording lifecycle manager
func NewPipeline(data Data) (*Pipeline, error) {
	if err := validate(&data); err != nil {
		return nil, err
	}
	if data.RootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("can't get working dir: %w", err)
		}
		data.RootDir = wd
	}
	if data.Timeout <= 0 {
		data.Timeout = 10 * time.Minute
	}
	return &Pipeline{data: data}, nil
}

func validate(data *Data) error {
	if data.DB == nil {
		return errors.New("no DB")
	}
	if data.Converter == nil {
		return errors.New("no converter")
	}
	if data.Transcriber == nil {
		return errors.New("no transcriber")
	}
	return nil
}

// Upload inserts the row without starting transcription
func (p *Pipeline) Upload(ctx context.Context, audioPath, mimeType string) (*persistence.Recording, error) {
	rec, err := p.data.DB.InsertRecording(ctx, audioPath, mimeType, status.Uploaded)
	if err != nil {
		return nil, fmt.Errorf("can't insert recording: %w", err)
	}
	goapp.Log.Info().Str("ID", rec.ID).Msg("recording uploaded")
	return rec, nil
}

// Run drives one recording through conversion and transcription.
// The row is inserted before any external process runs, every later
// failure is committed as status failed on that row
func (p *Pipeline) Run(ctx context.Context, audioPath, mimeType string) (*persistence.Recording, error) {
	rec, err := p.data.DB.InsertRecording(ctx, audioPath, mimeType, status.Transcribing)
	if err != nil {
		return nil, fmt.Errorf("can't insert recording: %w", err)
	}
	goapp.Log.Info().Str("ID", rec.ID).Msg("processing recording")

	res, err := p.process(ctx, rec)
	if err != nil {
		goapp.Log.Error().Err(err).Str("ID", rec.ID).Msg("processing failed")
		if uErr := p.data.DB.UpdateFailure(ctx, rec.ID, err.Error()); uErr != nil {
			goapp.Log.Error().Err(uErr).Str("ID", rec.ID).Msg("can't save failure")
		}
		return nil, &Error{ID: rec.ID, Err: err}
	}
	goapp.Log.Info().Str("ID", rec.ID).Msg("transcription completed")
	return res, nil
}

func (p *Pipeline) process(ctx context.Context, rec *persistence.Recording) (*persistence.Recording, error) {
	ctx, cancel := context.WithTimeout(ctx, p.data.Timeout)
	defer cancel()

	input := filepath.Join(p.data.RootDir, filepath.FromSlash(rec.AudioPath))
	wavPath, err := p.data.Converter.Convert(ctx, input)
	if err != nil {
		return nil, err
	}
	defer cleanup(wavPath)

	text, err := p.data.Transcriber.Transcribe(ctx, wavPath, rec.ID)
	if err != nil {
		return nil, err
	}

	res, err := p.data.DB.UpdateSuccess(ctx, rec.ID, text)
	if err != nil {
		return nil, fmt.Errorf("can't save transcript: %w", err)
	}
	return res, nil
}

// cleanup removes the transient wav, its own failure never changes the outcome
func cleanup(wavPath string) {
	if !utils.FileExists(wavPath) {
		return
	}
	if err := os.Remove(wavPath); err != nil {
		goapp.Log.Warn().Err(err).Str("file", wavPath).Msg("can't remove wav")
	}
}
