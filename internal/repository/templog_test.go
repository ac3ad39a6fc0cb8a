package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"temp_monitor/internal/models"
	"temp_monitor/internal/repository"
)

func collect(t *testing.T, l *repository.TempLog) []models.LogRow {
	t.Helper()
	var rows []models.LogRow
	for row, err := range l.Replay(context.Background()) {
		if err != nil {
			t.Fatalf("replay: %v", err)
		}
		rows = append(rows, row)
	}
	return rows
}

func TestTempLog_EnsureWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "templog.csv")
	l := repository.NewTempLog(path)

	if err := l.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if err := l.Ensure(); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := string(b); got != "timestamp,sensor_id,temperature\n" {
		t.Fatalf("unexpected content %q", got)
	}
	if rows := collect(t, l); len(rows) != 0 {
		t.Fatalf("expected empty replay, got %d rows", len(rows))
	}
}

func TestTempLog_AppendReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templog.csv")
	l := repository.NewTempLog(path)
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

	batch := []models.Reading{
		{Timestamp: ts, SensorID: "28-A", Celsius: 22.5},
		{Timestamp: ts, SensorID: "28-B", Celsius: 21},
	}
	if err := l.Append(context.Background(), batch); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append(context.Background(), nil); err != nil {
		t.Fatalf("empty Append: %v", err)
	}

	rows := collect(t, l)
	want := []models.LogRow{
		{Timestamp: "2024-05-01 12:00:00", SensorID: "28-A", Value: "22.5"},
		{Timestamp: "2024-05-01 12:00:00", SensorID: "28-B", Value: "21"},
	}
	if len(rows) != len(want) {
		t.Fatalf("want %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d: want %+v, got %+v", i, want[i], rows[i])
		}
	}

	// a fresh handle over the same file sees the same history
	if again := collect(t, repository.NewTempLog(path)); len(again) != 2 {
		t.Fatalf("reopen: want 2 rows, got %d", len(again))
	}
}

func TestTempLog_ReplaySkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templog.csv")
	content := strings.Join([]string{
		"timestamp,sensor_id,temperature",
		"2024-05-01 12:00:00,28-A,22.5",
		"garbage",
		`2024-05-01 12:00:02,"28-A,21.0`,
		"2024-05-01 12:00:05,28-A,not-a-number",
		"yesterday,28-A,20.0",
		"2024-05-01 12:00:10,28-A,23.0,extra",
		"2024-05-01 12:00:15,28-A,23.5",
		`2024-05-01 12:00:20,28-"A,24.0`,
		"2024-05-01 12:00:25,28-A,24.5",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows := collect(t, repository.NewTempLog(path))
	if len(rows) != 3 {
		t.Fatalf("want 3 valid rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].Value != "22.5" || rows[1].Value != "23.5" || rows[2].Value != "24.5" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestTempLog_ReplayUnterminatedQuoteSkipsOnlyItsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templog.csv")
	content := "timestamp,sensor_id,temperature\n" +
		"2024-01-01 10:00:00,\"28-X,21.0\n" +
		"2024-01-01 10:00:05,28-A,21.5\n" +
		"2024-01-01 10:00:10,28-A,22.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows := collect(t, repository.NewTempLog(path))
	if len(rows) != 2 {
		t.Fatalf("want 2 rows after the broken one, got %d: %+v", len(rows), rows)
	}
	if rows[0].Value != "21.5" || rows[1].Value != "22.0" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestTempLog_ReplayLastLineWithoutNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templog.csv")
	content := "timestamp,sensor_id,temperature\n2024-01-01 10:00:00,28-A,21.5"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rows := collect(t, repository.NewTempLog(path)); len(rows) != 1 || rows[0].Value != "21.5" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestTempLog_AppendAfterTornWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templog.csv")
	torn := "timestamp,sensor_id,temperature\n2024-01-01 10:00:00,28-A"
	if err := os.WriteFile(path, []byte(torn), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := repository.NewTempLog(path)
	ts := time.Date(2024, 1, 1, 10, 0, 5, 0, time.Local)
	if err := l.Append(context.Background(), []models.Reading{{Timestamp: ts, SensorID: "28-A", Celsius: 22}}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := torn + "\n2024-01-01 10:00:05,28-A,22\n"
	if string(b) != want {
		t.Fatalf("content=%q, want %q", b, want)
	}
	rows := collect(t, l)
	if len(rows) != 1 || rows[0].Timestamp != "2024-01-01 10:00:05" {
		t.Fatalf("want only the appended row, got %+v", rows)
	}

	// a terminated file gets no extra blank line
	if err := l.Append(context.Background(), []models.Reading{{Timestamp: ts.Add(5 * time.Second), SensorID: "28-A", Celsius: 23}}); err != nil {
		t.Fatalf("second Append: %v", err)
	}
	b, _ = os.ReadFile(path)
	if !strings.HasSuffix(string(b), "22\n2024-01-01 10:00:10,28-A,23\n") {
		t.Fatalf("unexpected tail %q", b)
	}
}

func TestTempLog_ReplayMissingFile(t *testing.T) {
	l := repository.NewTempLog(filepath.Join(t.TempDir(), "absent.csv"))
	if rows := collect(t, l); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestTempLog_ReplayCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templog.csv")
	l := repository.NewTempLog(path)
	if err := l.Append(context.Background(), []models.Reading{{Timestamp: time.Now(), SensorID: "28-A", Celsius: 1}}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var gotErr error
	for _, err := range l.Replay(ctx) {
		gotErr = err
	}
	if gotErr == nil {
		t.Fatal("expected context error from cancelled replay")
	}
}

func TestTempLog_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templog.csv")
	l := repository.NewTempLog(path)
	if err := l.Append(context.Background(), []models.Reading{{Timestamp: time.Now(), SensorID: "28-A", Celsius: 25}}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := l.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if rows := collect(t, l); len(rows) != 0 {
		t.Fatalf("expected empty log after clear, got %d", len(rows))
	}
	b, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(b), "timestamp,sensor_id,temperature") {
		t.Fatalf("header missing after clear: %q", b)
	}
}
