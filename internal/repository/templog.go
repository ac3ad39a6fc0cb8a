package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"temp_monitor/internal/models"
)

// TempLog is the append-only CSV temperature log.
type TempLog struct {
	path string
	mu   sync.Mutex
}

func NewTempLog(path string) *TempLog {
	return &TempLog{path: path}
}

// Ensure implementation of TimeSeriesLog at compile time.
var _ TimeSeriesLog = (*TempLog)(nil)

const (
	logDirPerm  = 0o755
	logFilePerm = 0o644
)

// Path returns the file backing the log.
func (l *TempLog) Path() string { return l.path }

// Ensure creates the directory and a header-only log if the file is missing.
func (l *TempLog) Ensure() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ensureLocked()
}

func (l *TempLog) ensureLocked() error {
	if err := os.MkdirAll(filepath.Dir(l.path), logDirPerm); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat log %q: %w", l.path, err)
	}
	return l.writeHeaderLocked()
}

func (l *TempLog) writeHeaderLocked() error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(models.LogHeader)
	w.Flush()
	if err := os.WriteFile(l.path, buf.Bytes(), logFilePerm); err != nil {
		return fmt.Errorf("write log header %q: %w", l.path, err)
	}
	return nil
}

// Append writes one row per reading with a single write call, so a tick is
// either fully visible or not at all and concurrent ticks never interleave.
// A last line left without its newline by an interrupted write is closed
// first so the new rows start on a line of their own.
func (l *TempLog) Append(ctx context.Context, readings []models.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, r := range readings {
		if err := w.Write(r.Row()); err != nil {
			return fmt.Errorf("encode reading %s: %w", r.SensorID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode readings: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLocked(); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_RDWR, logFilePerm)
	if err != nil {
		return fmt.Errorf("open log for append: %w", err)
	}
	unterminated, err := endsOpen(f)
	if err != nil {
		_ = f.Close()
		return err
	}
	out := buf.Bytes()
	if unterminated {
		out = append([]byte{'\n'}, out...)
	}
	if _, err := f.Write(out); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %d rows: %w", len(readings), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log: %w", err)
	}
	return nil
}

// endsOpen reports whether f is non-empty and its last byte is not a newline.
func endsOpen(f *os.File) (bool, error) {
	st, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat log: %w", err)
	}
	if st.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, st.Size()-1); err != nil {
		return false, fmt.Errorf("read log tail: %w", err)
	}
	return last[0] != '\n', nil
}

// Replay yields every well-formed row in file order. Each range over the
// returned sequence reopens the file and only reads up to the size seen at
// open, so rows appended during a scan are not observed. Every line is
// parsed on its own: a malformed row, including the header, is skipped
// without affecting the rows after it. A missing file is an empty log.
func (l *TempLog) Replay(ctx context.Context) iter.Seq2[models.LogRow, error] {
	return func(yield func(models.LogRow, error) bool) {
		f, size, err := l.openSnapshot()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return
			}
			yield(models.LogRow{}, err)
			return
		}
		defer f.Close()

		br := bufio.NewReader(io.LimitReader(f, size))
		for {
			if err := ctx.Err(); err != nil {
				yield(models.LogRow{}, err)
				return
			}
			line, err := br.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				yield(models.LogRow{}, fmt.Errorf("read log: %w", err))
				return
			}
			if row, ok := parseLogLine(line); ok {
				if !yield(row, nil) {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}
}

// parseLogLine decodes one CSV line into a row and reports whether it is a
// valid reading.
func parseLogLine(line string) (models.LogRow, bool) {
	if strings.TrimSpace(line) == "" {
		return models.LogRow{}, false
	}
	rec, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil || len(rec) != models.LogColumns {
		return models.LogRow{}, false
	}
	row := models.LogRow{Timestamp: rec[0], SensorID: rec[1], Value: rec[2]}
	if _, err := row.Reading(); err != nil {
		return models.LogRow{}, false
	}
	return row, true
}

// openSnapshot opens the log and records its size while no append is in
// progress, so the limit always falls on a row boundary.
func (l *TempLog) openSnapshot() (*os.File, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("open log: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat log: %w", err)
	}
	return f, st.Size(), nil
}

// Clear truncates the log back to its header row.
func (l *TempLog) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), logDirPerm); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	return l.writeHeaderLocked()
}
