package mixxx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mixport/internal/services"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Source is an open Mixxx library.
type Source struct {
	db   *sql.DB
	path string
}

// Open connects to the library at path in read-only mode.
func Open(ctx context.Context, path string) (*Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "mixxx", "open", "database path is empty", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrConfiguration, "mixxx", "open",
				fmt.Sprintf("database %q not found", path), err)
		}
		return nil, fmt.Errorf("stat mixxx db: %w", err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrConfiguration, "mixxx", "open",
			fmt.Sprintf("database %q is a directory", path), nil)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mixxx db: %w", err)
	}
	return &Source{db: db, path: path}, nil
}

func dsn(path string) string {
	return "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)&_pragma=query_only(1)"
}

// Path returns the database file backing the source.
func (s *Source) Path() string {
	return s.path
}

// Close closes the underlying database handle.
func (s *Source) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Session reserves a dedicated connection. The caller must Close it.
func (s *Source) Session(ctx context.Context) (*Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire mixxx connection: %w", err)
	}
	return &Session{conn: conn}, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
