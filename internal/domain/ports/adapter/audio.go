package adapter

import "context"

// AudioNormalizer converts an arbitrary uploaded audio file into the
// canonical waveform (mono, 16 kHz, 16-bit PCM, silence stripped, gain
// boosted). It writes the result alongside the input and returns its
// path; the input file is left in place.
type AudioNormalizer interface {
	Normalize(ctx context.Context, inputPath string) (outputPath string, err error)
}
