// Package extraction provides the external document-extraction collaborator.
// The extractor itself is opaque: a configured command receives the document
// path and prints the raw extraction JSON on stdout.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"time"

	"facturo/internal/core/apperror"
	domain "facturo/internal/domain/extraction"
	"facturo/pkg/logger"
)

// Compile-time check that CommandExtractor implements the domain interface.
var _ domain.Extractor = (*CommandExtractor)(nil)

// CommandExtractor shells out to an extraction command (OCR/LLM pipeline).
// Invocation: <command> [args...] <filePath>; stdout is the raw payload.
type CommandExtractor struct {
	command string
	args    []string
	timeout time.Duration
}

// NewCommandExtractor creates an extractor for the given command line.
func NewCommandExtractor(command string, args []string, timeout time.Duration) *CommandExtractor {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &CommandExtractor{
		command: command,
		args:    args,
		timeout: timeout,
	}
}

// Extract runs the command against filePath and returns its stdout verbatim.
// Failures are opaque ExtractionFailed errors carrying a diagnostic string;
// callers never retry automatically.
func (e *CommandExtractor) Extract(ctx context.Context, filePath string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := append(append([]string(nil), e.args...), filePath)
	cmd := exec.CommandContext(ctx, e.command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		diagnostic := strings.TrimSpace(stderr.String())
		if diagnostic == "" {
			diagnostic = err.Error()
		}
		return nil, apperror.NewExtractionFailed(diagnostic, err)
	}

	logger.Debug(ctx, "extraction command finished",
		"file", filePath,
		"duration_ms", time.Since(start).Milliseconds())

	return json.RawMessage(bytes.TrimSpace(stdout.Bytes())), nil
}
