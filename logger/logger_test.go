// file: logger/logger_test.go
package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggersReadyAfterInit(t *testing.T) {
	assert.NotNil(t, Info)
	assert.NotNil(t, Warn)
	assert.NotNil(t, Error)
	assert.NotNil(t, Debug)
}

func TestInitLogger_WritesFileInDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, InitLogger(dir, true))
	t.Cleanup(func() { _ = InitLogger("", false) })

	Info.Printf("[TestInitLogger] hello %s", "file")
	Sync()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "expected exactly one timestamped log file")

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestSetLogLevel_ProductionDiscardsDebug(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitLogger(dir, true))
	t.Cleanup(func() { _ = InitLogger("", false) })

	SetLogLevel("production")
	Debug.Println("should not appear")
	Info.Println("visible")
	Sync()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "should not appear")
	assert.Contains(t, string(data), "visible")
}
