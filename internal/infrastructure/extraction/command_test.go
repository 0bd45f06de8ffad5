package extraction

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/apperror"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
}

func TestCommandExtractor_StdoutIsPayload(t *testing.T) {
	skipOnWindows(t)

	e := NewCommandExtractor("sh", []string{"-c", `echo '{"invoice":{"number":"INV-1"}}' # file:`}, time.Minute)

	raw, err := e.Extract(context.Background(), "/tmp/doc.pdf")
	require.NoError(t, err)
	assert.JSONEq(t, `{"invoice":{"number":"INV-1"}}`, string(raw))
}

func TestCommandExtractor_FailureCarriesStderr(t *testing.T) {
	skipOnWindows(t)

	e := NewCommandExtractor("sh", []string{"-c", `echo "model unavailable" >&2; exit 3 # file:`}, time.Minute)

	_, err := e.Extract(context.Background(), "/tmp/doc.pdf")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeExtractionFailed, appErr.Code)
	assert.Contains(t, appErr.Details["diagnostic"], "model unavailable")
}

func TestCommandExtractor_Timeout(t *testing.T) {
	skipOnWindows(t)

	e := NewCommandExtractor("sh", []string{"-c", "sleep 5 # file:"}, 50*time.Millisecond)

	start := time.Now()
	_, err := e.Extract(context.Background(), "/tmp/doc.pdf")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second, "timeout must cut the command short")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeExtractionFailed, appErr.Code)
}

func TestCommandExtractor_MissingCommand(t *testing.T) {
	e := NewCommandExtractor("definitely-not-a-real-binary-9000", nil, time.Minute)

	_, err := e.Extract(context.Background(), "/tmp/doc.pdf")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeExtractionFailed))
}
