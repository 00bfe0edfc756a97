package whisper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/gedvilas/scriba/internal/pkg/runner"
	"github.com/gedvilas/scriba/internal/pkg/utils"
	"github.com/pkg/errors"
)

// ErrNoOutput indicates the engine exited cleanly but produced no transcript file.
// Exit code 0 with no output must not pass as an empty transcript
type ErrNoOutput struct {
	Path string
}

func (e *ErrNoOutput) Error() string {
	return "expected transcript output not found: " + e.Path
}

// Adapter invokes whisper.cpp binary for speech recognition
type Adapter struct {
	bin    string
	model  string
	outDir string
	runner runner.Runner
}

// NewAdapter creates whisper.cpp adapter.
// Binary and model paths are required configuration
func NewAdapter(bin, model, outDir string, r runner.Runner) (*Adapter, error) {
	if bin == "" {
		return nil, errors.New("no whisper binary path configured")
	}
	if model == "" {
		return nil, errors.New("no whisper model path configured")
	}
	if outDir == "" {
		outDir = "transcripts"
	}
	if r == nil {
		return nil, errors.New("no runner")
	}
	return &Adapter{bin: bin, model: model, outDir: outDir, runner: r}, nil
}

// Transcribe runs the engine against the normalized WAV, returns the recovered text
func (a *Adapter) Transcribe(ctx context.Context, wavPath, id string) (string, error) {
	if err := os.MkdirAll(a.outDir, 0755); err != nil {
		return "", fmt.Errorf("can't create transcripts dir: %w", err)
	}
	outBase := filepath.Join(a.outDir, id)

	goapp.Log.Info().Str("ID", id).Str("file", wavPath).Msg("transcribe")
	// -otxt makes the engine write `<outBase>.txt`
	err := a.runner.Run(ctx, a.bin, []string{"-m", a.model, "-f", wavPath, "-otxt", "-of", outBase})
	if err != nil {
		return "", err
	}

	outTxt := outBase + ".txt"
	if !utils.FileExists(outTxt) {
		return "", &ErrNoOutput{Path: outTxt}
	}
	data, err := os.ReadFile(outTxt)
	if err != nil {
		return "", fmt.Errorf("can't read transcript: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
