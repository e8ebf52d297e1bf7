package scheduler

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestScheduler(t *testing.T) (*Scheduler, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	s, err := New(zerolog.New(&buf))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })
	return s, &buf
}

func TestRegister_RejectsBadCronExpr(t *testing.T) {
	s, _ := newTestScheduler(t)
	if err := s.Register("bad", "not a cron", func(ctx context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
	if err := s.Register("good", "0 9 * * *", func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("valid cron rejected: %v", err)
	}
}

func TestWrap_LogsOutcomeAndDuration(t *testing.T) {
	s, buf := newTestScheduler(t)

	ran := false
	s.wrap("sweep", func(ctx context.Context) error {
		ran = true
		return nil
	})()
	if !ran {
		t.Fatalf("job did not run")
	}
	logs := buf.String()
	if !strings.Contains(logs, "job completed") || !strings.Contains(logs, `"elapsed"`) {
		t.Fatalf("expected completion log with duration, got:\n%s", logs)
	}

	buf.Reset()
	s.wrap("sweep", func(ctx context.Context) error {
		return errors.New("db gone")
	})()
	logs = buf.String()
	if !strings.Contains(logs, "job failed") || !strings.Contains(logs, "db gone") {
		t.Fatalf("expected failure log, got:\n%s", logs)
	}
}

func TestWrap_RecoversPanic(t *testing.T) {
	s, buf := newTestScheduler(t)

	fn := s.wrap("sweep", func(ctx context.Context) error {
		panic("boom")
	})
	fn() // must not propagate

	logs := buf.String()
	if !strings.Contains(logs, "job panicked") || !strings.Contains(logs, "boom") {
		t.Fatalf("expected panic log, got:\n%s", logs)
	}
}
