package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	defaultConfigPath     = "~/.config/mixport/config.toml"
	defaultKeyType        = "lancelot"
	defaultCollectionType = "playlists"
	defaultOutputPath     = "rekordbox.xml"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Export: Export{
			KeyType:        defaultKeyType,
			CollectionType: defaultCollectionType,
			OutputPath:     defaultOutputPath,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DefaultMixxxDatabase returns the location Mixxx uses for its library on the
// current platform, or "" when no Mixxx settings directory exists.
func DefaultMixxxDatabase() string {
	if base, ok := os.LookupEnv("LOCALAPPDATA"); ok && base != "" {
		return filepath.Join(base, "Mixxx", "mixxxdb.sqlite")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	candidates := []string{filepath.Join(home, ".mixxx")}
	if runtime.GOOS == "darwin" {
		candidates = append([]string{filepath.Join(home, "Library", "Application Support", "Mixxx")}, candidates...)
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return filepath.Join(dir, "mixxxdb.sqlite")
		}
	}
	return ""
}
