package capturelog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/yndnr/sessionlab-go/internal/core/service"
)

var _ service.CaptureSink = (*File)(nil)

// ErrClosed is returned by Append after Close.
var ErrClosed = errors.New("capturelog: file closed")

// File is a mutex-guarded, buffered append-only log file.
type File struct {
	name string

	mu   sync.Mutex
	file *os.File
	bufw *bufio.Writer
}

// Open opens (or creates) name for appending.
func Open(name string) (*File, error) {
	f := &File{name: name}
	if err := f.reopen(); err != nil {
		return nil, err
	}
	return f, nil
}

// Name returns the file path.
func (f *File) Name() string {
	return f.name
}

// Append writes line and flushes it to disk.
func (f *File) Append(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrClosed
	}
	if _, err := f.bufw.WriteString(line); err != nil {
		return fmt.Errorf("capturelog: write %s: %w", f.name, err)
	}
	if err := f.bufw.Flush(); err != nil {
		return fmt.Errorf("capturelog: flush %s: %w", f.name, err)
	}
	return nil
}

// Reopen closes and reopens the file, for use after external rotation.
func (f *File) Reopen() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reopen()
}

// Close flushes and closes the file. Close is idempotent.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	flushErr := f.bufw.Flush()
	closeErr := f.file.Close()
	f.file = nil
	f.bufw = nil
	return errors.Join(flushErr, closeErr)
}

func (f *File) reopen() error {
	if f.file != nil {
		_ = f.bufw.Flush()
		_ = f.file.Close()
		f.file = nil
	}

	file, err := os.OpenFile(f.name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("capturelog: open %s: %w", f.name, err)
	}

	f.file = file
	if f.bufw == nil {
		f.bufw = bufio.NewWriterSize(file, 4<<10)
	} else {
		f.bufw.Reset(file)
	}
	return nil
}
