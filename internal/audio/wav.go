package audio

import (
	"errors"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// WriteWAV stores mono samples as 16-bit PCM, clipping to [-1, 1].
func WriteWAV(path string, sampleRate int, samples []float32) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wav: %w", err)
		}
	}()

	enc := wav.NewEncoder(f, sampleRate, wavBitDepth, 1, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: wavBitDepth,
	}
	for i, s := range samples {
		buf.Data[i] = int(Clip(s) * 32767)
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav: write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: finalize %s: %w", path, err)
	}
	return nil
}

// ReadWAV decodes a PCM WAV file into normalized mono samples, keeping the
// first channel of multichannel files.
func ReadWAV(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("wav: %s is not a valid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav: decode %s: %w", path, err)
	}
	chans := int(dec.NumChans)
	if chans < 1 || dec.BitDepth == 0 {
		return nil, 0, errors.New("wav: missing format chunk")
	}
	scale := float32(int64(1) << (dec.BitDepth - 1))
	out := make([]float32, 0, len(buf.Data)/chans)
	for i := 0; i < len(buf.Data); i += chans {
		out = append(out, float32(buf.Data[i])/scale)
	}
	return out, int(dec.SampleRate), nil
}
