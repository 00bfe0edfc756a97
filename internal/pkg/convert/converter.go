package convert

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

// Converter normalizes uploaded audio into 16 kHz mono 16-bit PCM WAV
type Converter struct {
	bin    string
	runner runner.Runner
}

// NewConverter creates ffmpeg based converter
func NewConverter(bin string, r runner.Runner) (*Converter, error) {
	if bin == "" {
		bin = "ffmpeg"
	}
	if r == nil {
		return nil, errors.New("no runner")
	}
	return &Converter{bin: bin, runner: r}, nil
}

// Convert writes the WAV next to the input file, returns its path.
// A leftover from a retried run is removed first, conversion always reruns
func (c *Converter) Convert(ctx context.Context, input string) (string, error) {
	dir := filepath.Dir(input)
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	wavPath := filepath.Join(dir, base+".wav")

	if utils.FileExists(wavPath) {
		if err := os.Remove(wavPath); err != nil {
			return "", fmt.Errorf("can't remove old wav: %w", err)
		}
	}

	goapp.Log.Info().Str("file", input).Msg("convert")
	// 16kHz mono PCM is a safe baseline for speech models
	err := c.runner.Run(ctx, c.bin, []string{"-y", "-i", input,
		"-ar", "16000", "-ac", "1", "-c:a", "pcm_s16le", wavPath})
	if err != nil {
		return "", err
	}
	return wavPath, nil
}
