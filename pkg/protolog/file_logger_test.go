package protolog

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogger_WriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.plog")

	fl, err := NewFileLogger(path)
	require.NoError(t, err)

	fl.Log(Event{Timestamp: time.Now(), Category: CategoryWarning, Warning: &WarningEvent{Message: "m1"}})
	fl.Log(Event{Timestamp: time.Now(), Category: CategoryWarning, Warning: &WarningEvent{Message: "m2"}})
	require.NoError(t, fl.Close())

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	ev1, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "m1", ev1.Warning.Message)

	ev2, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "m2", ev2.Warning.Message)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFileLogger_CloseIsIdempotentAndSuppressesLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.plog")

	fl, err := NewFileLogger(path)
	require.NoError(t, err)
	require.NoError(t, fl.Close())
	require.NoError(t, fl.Close())

	fl.Log(Event{Category: CategoryWarning, Warning: &WarningEvent{Message: "ignored"}})
}

func TestReader_FilterByCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.plog")
	fl, err := NewFileLogger(path)
	require.NoError(t, err)
	fl.Log(Event{Timestamp: time.Now(), Category: CategoryWarning, Warning: &WarningEvent{Message: "w"}})
	fl.Log(Event{Timestamp: time.Now(), Category: CategoryError, Error: &ErrorEvent{Message: "e"}})
	require.NoError(t, fl.Close())

	cat := CategoryError
	r, err := NewFilteredReader(path, Filter{Category: &cat})
	require.NoError(t, err)
	defer r.Close()

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, CategoryError, ev.Category)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}
