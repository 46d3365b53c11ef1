package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func reset() {
	mu.Lock()
	defer mu.Unlock()
	loggers = make(map[Category]*zap.Logger)
	logsDir = ""
	enabled = false
}

func TestFor_NopWhenDisabled(t *testing.T) {
	t.Cleanup(reset)
	home := t.TempDir()
	require.NoError(t, Initialize(home, false))

	l := For(CategoryAPI)
	require.NotNil(t, l)
	l.Info("discarded")

	entries, err := os.ReadDir(home)
	require.NoError(t, err)
	assert.Empty(t, entries, "disabled logging must not create files")
}

func TestFor_WritesCategoryFile(t *testing.T) {
	t.Cleanup(reset)
	home := t.TempDir()
	require.NoError(t, Initialize(home, true))

	For(CategoryCart).Info("item added", zap.String("product", "p1"))
	Sync()

	data, err := os.ReadFile(filepath.Join(home, "logs", "cart.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "item added")
	assert.Contains(t, string(data), `"category":"cart"`)
}

func TestFor_CachesPerCategory(t *testing.T) {
	t.Cleanup(reset)
	require.NoError(t, Initialize(t.TempDir(), true))

	assert.Same(t, For(CategoryAPI), For(CategoryAPI))
	assert.NotSame(t, For(CategoryAPI), For(CategoryUI))
}
