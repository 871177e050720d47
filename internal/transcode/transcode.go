package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mixport/internal/fileutil"
	"mixport/internal/logging"
	"mixport/internal/media/ffprobe"
	"mixport/internal/services"
	"mixport/internal/textutil"
	"mixport/internal/track"
)

var (
	probeSource = ffprobe.Inspect
	readTags    = readFileTags
	runFFmpeg   = func(ctx context.Context, binary string, args []string) error {
		cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
		if output, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(output)))
		}
		return nil
	}
)

// Options configures a Transcoder.
type Options struct {
	OutDir string
	// VirtualOutDir roots the returned locations; defaults to OutDir.
	VirtualOutDir string
	// Format re-encodes files; empty copies them unchanged.
	Format  string
	FFmpeg  string
	FFprobe string
	// Limiter bounds concurrent re-encodes; nil uses NewLimiter(0).
	Limiter Limiter
	Logger  *slog.Logger
}

// Transcoder copies or re-encodes files into the output directory. It is
// safe for concurrent use.
type Transcoder struct {
	outDir     string
	virtualDir string
	format     string
	ffmpeg     string
	ffprobe    string
	limiter    Limiter
	logger     *slog.Logger
}

// New validates opts and returns a Transcoder.
func New(opts Options) (*Transcoder, error) {
	outDir := strings.TrimSpace(opts.OutDir)
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(opts.Format)), ".")
	if outDir == "" {
		message := "output directory is required to relocate tracks"
		if format != "" {
			message = "output directory must be specified when changing file formats"
		}
		return nil, services.Wrap(services.ErrConfiguration, "transcode", "configure", message, nil)
	}
	virtualDir := strings.TrimSpace(opts.VirtualOutDir)
	if virtualDir == "" {
		virtualDir = outDir
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewLimiter(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Transcoder{
		outDir:     outDir,
		virtualDir: virtualDir,
		format:     format,
		ffmpeg:     defaultBinary(opts.FFmpeg, "ffmpeg"),
		ffprobe:    defaultBinary(opts.FFprobe, "ffprobe"),
		limiter:    limiter,
		logger:     logging.NewComponentLogger(logger, "transcode"),
	}, nil
}

// Relocate copies or re-encodes source and returns where it ended up.
func (t *Transcoder) Relocate(ctx context.Context, source string) (track.Relocation, error) {
	if t.format == "" {
		return t.copy(source)
	}
	return t.transcode(ctx, source)
}

func (t *Transcoder) copy(source string) (track.Relocation, error) {
	name := textutil.SanitizeFileName(filepath.Base(source))
	dest := filepath.Join(t.outDir, name)
	if err := fileutil.CopyFile(source, dest); err != nil {
		return track.Relocation{}, services.Wrap(services.ErrTranscode, "transcode", "copy", source, err)
	}
	return track.Relocation{Path: dest, Location: joinVirtual(t.virtualDir, name)}, nil
}

func (t *Transcoder) transcode(ctx context.Context, source string) (track.Relocation, error) {
	if err := t.limiter.Acquire(ctx); err != nil {
		return track.Relocation{}, services.Wrap(services.ErrTranscode, "transcode", "wait for slot", source, err)
	}
	defer t.limiter.Release()

	started := time.Now()
	probe, err := probeSource(ctx, t.ffprobe, source)
	if err != nil {
		return track.Relocation{}, services.Wrap(services.ErrTranscode, "transcode", "probe", source, err)
	}
	if probe.AudioStreamCount() == 0 {
		return track.Relocation{}, services.Wrap(services.ErrTranscode, "transcode", "probe",
			source, errors.New("unsupported source: no audio stream"))
	}

	tags, err := readTags(source)
	if err != nil {
		return track.Relocation{}, services.Wrap(services.ErrTranscode, "transcode", "read tags", source, err)
	}

	ext := Extension(t.format)
	stem := textutil.SanitizeFileName(strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)))
	name := stem + "." + ext
	dest := filepath.Join(t.outDir, name)

	tmp, err := os.CreateTemp(t.outDir, "."+stem+".*"+partialMarker+ext)
	if err != nil {
		return track.Relocation{}, services.Wrap(services.ErrTranscode, "transcode", "create temp", source, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := runFFmpeg(ctx, t.ffmpeg, t.buildArgs(source, tmpPath, tags)); err != nil {
		_ = os.Remove(tmpPath)
		return track.Relocation{}, services.Wrap(services.ErrTranscode, "transcode", "encode", source, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return track.Relocation{}, services.Wrap(services.ErrTranscode, "transcode", "finalize", source, err)
	}

	t.logger.Debug("track transcoded",
		logging.String("source", source),
		logging.String("destination", dest),
		logging.String("format", t.format),
		logging.Duration("elapsed", time.Since(started)),
	)
	return track.Relocation{Path: dest, Location: joinVirtual(t.virtualDir, name)}, nil
}

func (t *Transcoder) buildArgs(source, dest string, tags map[string]string) []string {
	args := []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y"}
	if hint := sourceFormatHint(filepath.Ext(source)); hint != "" {
		args = append(args, "-f", hint)
	}
	args = append(args, "-i", source, "-map", "0:a:0", "-map_metadata", "0")
	if codec := codecFor(t.format); codec != "" {
		args = append(args, "-c:a", codec)
	}
	if bitrate := BitrateFor(t.format); bitrate != "" {
		args = append(args, "-b:a", bitrate)
	}
	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		args = append(args, "-metadata", key+"="+tags[key])
	}
	return append(args, dest)
}

// joinVirtual joins using the separator style of dir, which may belong to a
// different operating system than this one.
func joinVirtual(dir, name string) string {
	sep := "/"
	if strings.Contains(dir, `\`) && !strings.Contains(dir, "/") {
		sep = `\`
	}
	trimmed := strings.TrimRight(dir, `/\`)
	if trimmed == "" && strings.HasPrefix(dir, sep) {
		return sep + name
	}
	return trimmed + sep + name
}

func defaultBinary(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
