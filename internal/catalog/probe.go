package catalog

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// mp3 decoders always produce 16-bit stereo.
const bytesPerFrame = 4

// ProbeMP3 returns the playing time of an MP3 stream.
func ProbeMP3(r io.Reader) (time.Duration, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}
	length := dec.Length()
	if length <= 0 {
		return 0, fmt.Errorf("mp3 stream has unknown length")
	}
	frames := length / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(dec.SampleRate()), nil
}

// ProbeFile returns the duration of the MP3 at path in whole seconds, rounded up.
func ProbeFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open audio: %w", err)
	}
	defer f.Close()

	d, err := ProbeMP3(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return int(math.Ceil(d.Seconds())), nil
}

// RemoveAudio deletes the uploaded audio files for id under dir.
func RemoveAudio(dir, id string) error {
	for _, ext := range []string{".mp3", ".ogg"} {
		err := os.Remove(filepath.Join(dir, id+ext))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove audio: %w", err)
		}
	}
	return nil
}

// ImportAudio copies the audio file at src into dir as <id><ext> and returns
// the number of bytes written.
func ImportAudio(dir, id, src string) (int64, error) {
	ext := filepath.Ext(src)
	if ext != ".mp3" && ext != ".ogg" {
		return 0, fmt.Errorf("unsupported audio format %q", ext)
	}
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open audio: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create audio directory: %w", err)
	}
	out, err := os.Create(filepath.Join(dir, id+ext))
	if err != nil {
		return 0, fmt.Errorf("failed to create audio: %w", err)
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("failed to copy audio: %w", err)
	}
	return n, nil
}
