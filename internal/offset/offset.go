package offset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"mixport/internal/logging"
	"mixport/internal/media/ffprobe"
)

var inspect = ffprobe.Inspect

var errNoAudio = errors.New("no audio stream")

// Failure records a file whose offset could not be read.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// probed is what one ffprobe run tells us about a file.
type probed struct {
	start      float64
	sampleRate int
	channels   int
	hasFormat  bool
}

// Detector looks up start offsets and stream formats with ffprobe. Results
// are memoized per path for the life of the Detector. It is safe for
// concurrent use.
type Detector struct {
	binary string
	logger *slog.Logger

	cache sync.Map // path -> probed

	mu       sync.Mutex
	failures []Failure
}

// NewDetector returns a Detector that runs binary, or "ffprobe" when empty.
func NewDetector(binary string, logger *slog.Logger) *Detector {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Detector{binary: binary, logger: logging.NewComponentLogger(logger, "offset")}
}

// OffsetSeconds returns the start offset of path in seconds, or 0 when it
// cannot be determined. Failures are kept for Flush unless ctx was
// cancelled.
func (d *Detector) OffsetSeconds(ctx context.Context, path string) float64 {
	result, err := d.lookup(ctx, path)
	if err != nil {
		if ctx.Err() == nil {
			d.record(path, err)
		}
		return 0
	}
	return result.start
}

// StreamFormat returns the sample rate and channel count of path's first
// audio stream.
func (d *Detector) StreamFormat(ctx context.Context, path string) (float64, int, error) {
	result, err := d.lookup(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	if !result.hasFormat {
		return 0, 0, fmt.Errorf("%s: sample rate or channel count not reported", path)
	}
	return float64(result.sampleRate), result.channels, nil
}

func (d *Detector) lookup(ctx context.Context, path string) (probed, error) {
	if cached, ok := d.cache.Load(path); ok {
		return cached.(probed), nil
	}
	result, err := inspect(ctx, d.binary, path)
	if err != nil {
		return probed{}, err
	}
	if result.AudioStreamCount() == 0 {
		return probed{}, errNoAudio
	}
	var p probed
	// A missing start time means the audio starts at zero.
	p.start, _ = result.StartSeconds()
	p.sampleRate, p.channels, p.hasFormat = result.AudioFormat()
	actual, _ := d.cache.LoadOrStore(path, p)
	return actual.(probed), nil
}

func (d *Detector) record(path string, err error) {
	d.logger.Debug("offset lookup failed",
		logging.String("path", path),
		logging.Error(err),
	)
	d.mu.Lock()
	d.failures = append(d.failures, Failure{Path: path, Err: err})
	d.mu.Unlock()
}

// Flush returns the failures recorded since the previous Flush and clears
// them.
func (d *Detector) Flush() []Failure {
	d.mu.Lock()
	defer d.mu.Unlock()
	failures := d.failures
	d.failures = nil
	return failures
}
