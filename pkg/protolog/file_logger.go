package protolog

import (
	"os"
	"sync"
)

// FileLogger writes gateway-core events to a file in CBOR format. It is
// safe for concurrent use from multiple goroutines.
type FileLogger struct {
	file    *os.File
	encoder interface{ Encode(any) error }
	mu      sync.Mutex
	closed  bool
}

// NewFileLogger creates a FileLogger that writes to path. If the file
// exists, new events are appended.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{file: f, encoder: NewEncoder(f)}, nil
}

// Log writes an event to the log file. Safe for concurrent use.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	_ = l.encoder.Encode(event)
}

// Close closes the log file. Safe to call multiple times. After Close,
// subsequent Log calls are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
