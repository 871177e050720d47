package config

import (
	"errors"
	"fmt"
	"strings"

	"mixport/internal/services"
)

var supportedFormats = map[string]struct{}{
	"mp3":  {},
	"aac":  {},
	"m4a":  {},
	"flac": {},
	"wav":  {},
	"aiff": {},
	"ogg":  {},
	"opus": {},
	"alac": {},
}

// Validate ensures the configuration is usable. Every returned error carries
// services.ErrConfiguration.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateMixxx,
		c.validateExport,
		c.validateLogging,
	} {
		if err := check(); err != nil {
			return services.Wrap(services.ErrConfiguration, "config", "validate", "Invalid configuration", err)
		}
	}
	return nil
}

func (c *Config) validateMixxx() error {
	if strings.TrimSpace(c.Mixxx.Database) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("mixxx.database could not be located. Set MIXXX_DB_PATH, pass --mixxx-db-location, or edit %s (create with 'mixport config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateExport() error {
	outDir := strings.TrimSpace(c.Export.OutDir)
	if c.Export.Format != "" && outDir == "" {
		return errors.New("export.format requires export.out_dir")
	}
	if c.Export.VirtualOutDir != "" && outDir == "" {
		return errors.New("export.virtual_out_dir requires export.out_dir")
	}
	if c.Export.Format != "" {
		if _, ok := supportedFormats[c.Export.Format]; !ok {
			return fmt.Errorf("export.format %q is not supported", c.Export.Format)
		}
	}
	switch c.Export.KeyType {
	case "lancelot", "musical":
	default:
		return fmt.Errorf("export.key_type must be lancelot or musical, got %q", c.Export.KeyType)
	}
	switch c.Export.CollectionType {
	case "playlists", "crates":
	default:
		return fmt.Errorf("export.collection_type must be playlists or crates, got %q", c.Export.CollectionType)
	}
	if c.Export.Workers < 0 {
		return errors.New("export.workers must be >= 0")
	}
	if c.Export.TranscodeLimit < 0 {
		return errors.New("export.transcode_limit must be >= 0")
	}
	if strings.TrimSpace(c.Export.OutputPath) == "" {
		return errors.New("export.output_path must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
