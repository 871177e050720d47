package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Display names of the tools an export can use.
const (
	FFmpeg  = "FFmpeg"
	FFprobe = "FFprobe"
)

const versionTimeout = 2 * time.Second

// Tool is an external binary an export may run.
type Tool struct {
	Name    string
	Command string
	Purpose string
	// Required tools block the export when missing.
	Required bool
}

// ToolStatus is a Tool resolved against PATH.
type ToolStatus struct {
	Tool
	// Path is empty when the binary was not found.
	Path    string
	Version string
	Detail  string
}

// Available reports whether the binary was found.
func (s ToolStatus) Available() bool {
	return s.Path != ""
}

// State renders the status for tables: "ok", "missing" or "missing (optional)".
func (s ToolStatus) State() string {
	switch {
	case s.Available():
		return "ok"
	case s.Required:
		return "missing"
	default:
		return "missing (optional)"
	}
}

// Tools lists ffmpeg and ffprobe for an export. ffmpeg is required only when
// tracks are re-encoded; ffprobe never is, since offsets fall back to zero.
func Tools(ffmpeg, ffprobe string, transcoding bool) []Tool {
	return []Tool{
		{
			Name:     FFmpeg,
			Command:  defaultCommand(ffmpeg, "ffmpeg"),
			Purpose:  "re-encodes tracks when a format is requested",
			Required: transcoding,
		},
		{
			Name:    FFprobe,
			Command: defaultCommand(ffprobe, "ffprobe"),
			Purpose: "reads playback offsets and stream formats",
		},
	}
}

// Resolve looks every tool up on PATH. With withVersion set, binaries that
// were found are asked for their version line.
func Resolve(ctx context.Context, tools []Tool, withVersion bool) []ToolStatus {
	statuses := make([]ToolStatus, 0, len(tools))
	for _, tool := range tools {
		status := ToolStatus{Tool: tool}
		path, err := exec.LookPath(tool.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found, %s", tool.Command, tool.Purpose)
			statuses = append(statuses, status)
			continue
		}
		status.Path = path
		if withVersion {
			status.Version = Version(ctx, path)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Missing returns the required tools that were not found.
func Missing(statuses []ToolStatus) []ToolStatus {
	var missing []ToolStatus
	for _, status := range statuses {
		if status.Required && !status.Available() {
			missing = append(missing, status)
		}
	}
	return missing
}

// Find returns the status of the named tool.
func Find(statuses []ToolStatus, name string) (ToolStatus, bool) {
	for _, status := range statuses {
		if status.Name == name {
			return status, true
		}
	}
	return ToolStatus{}, false
}

// Version runs "<binary> -version" and returns the first line of output, or
// "" when the binary cannot be executed.
func Version(ctx context.Context, binary string) string {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}

func defaultCommand(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
