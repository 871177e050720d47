package config

import (
	"fmt"
	"os"
	"strings"
)

// Normalize expands paths, lowercases enumerations, and fills derived
// defaults. Load calls it automatically; the CLI calls it again after
// applying flag overrides.
func (c *Config) Normalize() error {
	if err := c.normalizeMixxx(); err != nil {
		return err
	}
	if err := c.normalizeExport(); err != nil {
		return err
	}
	c.normalizeTools()
	return c.normalizeLogging()
}

func (c *Config) normalizeMixxx() error {
	c.Mixxx.Database = strings.TrimSpace(c.Mixxx.Database)
	if c.Mixxx.Database == "" {
		if value, ok := os.LookupEnv("MIXXX_DB_PATH"); ok {
			c.Mixxx.Database = strings.TrimSpace(value)
		}
	}
	if c.Mixxx.Database == "" {
		c.Mixxx.Database = DefaultMixxxDatabase()
	}
	var err error
	if c.Mixxx.Database, err = expandPath(c.Mixxx.Database); err != nil {
		return fmt.Errorf("mixxx.database: %w", err)
	}
	return nil
}

func (c *Config) normalizeExport() error {
	var err error
	if c.Export.OutDir, err = expandPath(strings.TrimSpace(c.Export.OutDir)); err != nil {
		return fmt.Errorf("export.out_dir: %w", err)
	}
	// The virtual directory belongs to the consumer's file system, so it is
	// only cleaned, never made absolute against this machine's cwd.
	c.Export.VirtualOutDir = strings.TrimSpace(c.Export.VirtualOutDir)
	if c.Export.VirtualOutDir == "" {
		c.Export.VirtualOutDir = c.Export.OutDir
	}

	c.Export.Format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Export.Format)), ".")

	c.Export.KeyType = strings.ToLower(strings.TrimSpace(c.Export.KeyType))
	if c.Export.KeyType == "" {
		c.Export.KeyType = defaultKeyType
	}
	c.Export.CollectionType = strings.ToLower(strings.TrimSpace(c.Export.CollectionType))
	if c.Export.CollectionType == "" {
		c.Export.CollectionType = defaultCollectionType
	}

	if strings.TrimSpace(c.Export.OutputPath) == "" {
		c.Export.OutputPath = defaultOutputPath
	}
	if c.Export.OutputPath, err = expandPath(strings.TrimSpace(c.Export.OutputPath)); err != nil {
		return fmt.Errorf("export.output_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
