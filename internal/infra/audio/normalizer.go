package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"ai-interview-service/internal/domain"
	"ai-interview-service/internal/domain/ports/adapter"
)

// Canonical waveform every upload is converted to before any remote call.
const (
	targetSampleRate = 16000
	targetChannels   = 1
	minDurationSec   = 0.1
)

var _ adapter.AudioNormalizer = (*FFmpegNormalizer)(nil)

// FFmpegNormalizer shells out to ffmpeg to transcode uploads into mono
// 16 kHz 16-bit PCM WAV, removing leading silence and boosting gain.
// The transcoder can report success and still emit a degenerate file, so
// the output is re-opened and validated before it is accepted.
type FFmpegNormalizer struct {
	binary string
	log    *zerolog.Logger
}

func NewFFmpegNormalizer(logger *zerolog.Logger) *FFmpegNormalizer {
	l := logger.With().Str("component", "FFmpegNormalizer").Logger()
	return &FFmpegNormalizer{binary: "ffmpeg", log: &l}
}

func (n *FFmpegNormalizer) Normalize(ctx context.Context, inputPath string) (string, error) {
	outputPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".norm.wav"

	args := []string{
		"-i", inputPath,
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", targetSampleRate),
		"-ac", fmt.Sprintf("%d", targetChannels),
		"-af", "silenceremove=1:0:-50dB,volume=2.0",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, n.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		n.log.Warn().Err(err).Str("input", inputPath).Str("stderr", truncate(stderr.String(), 512)).Msg("ffmpeg failed")
		return "", fmt.Errorf("%w: ffmpeg: %v", domain.ErrConversionFailed, err)
	}

	info, err := readWAVInfo(outputPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrConversionFailed, err)
	}
	if err := validate(info); err != nil {
		n.log.Warn().
			Str("output", outputPath).
			Int("channels", info.Channels).
			Int("sample_rate", info.SampleRate).
			Int("frames", info.Frames).
			Msg("ffmpeg reported success but output is degenerate")
		return "", fmt.Errorf("%w: %v", domain.ErrConversionFailed, err)
	}

	n.log.Debug().
		Str("output", outputPath).
		Int("frames", info.Frames).
		Float64("duration_s", info.Duration()).
		Msg("normalized")
	return outputPath, nil
}

func validate(info wavInfo) error {
	if info.Channels != targetChannels {
		return fmt.Errorf("expected %d channel(s), got %d", targetChannels, info.Channels)
	}
	if info.SampleRate != targetSampleRate {
		return fmt.Errorf("expected %d Hz, got %d", targetSampleRate, info.SampleRate)
	}
	if info.Frames <= 0 {
		return fmt.Errorf("no audio frames")
	}
	if info.Duration() <= minDurationSec {
		return fmt.Errorf("duration %.3fs too short", info.Duration())
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
