package auditlog

import (
	"testing"
	"time"

	"github.com/universa-labs/universa-go/internal/dispatch"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordCall_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	s.RecordCall("/profiles/", "GET", dispatch.Live, "success", 42*time.Millisecond)
	s.RecordCall("/profiles/nope", "GET", dispatch.Simulated, "not_found", 1*time.Millisecond)

	calls, err := s.RecentCalls(10)
	if err != nil {
		t.Fatalf("RecentCalls() error = %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}

	// Newest first.
	if calls[0].Endpoint != "/profiles/nope" || calls[0].Outcome != "not_found" || calls[0].Mode != "simulated" {
		t.Errorf("calls[0] = %+v", calls[0])
	}
	if calls[1].Endpoint != "/profiles/" || calls[1].Duration != 42*time.Millisecond {
		t.Errorf("calls[1] = %+v", calls[1])
	}
}

func TestRecentCalls_Limit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		s.RecordCall("/health", "GET", dispatch.Live, "success", 0)
	}
	calls, err := s.RecentCalls(3)
	if err != nil {
		t.Fatalf("RecentCalls() error = %v", err)
	}
	if len(calls) != 3 {
		t.Errorf("got %d calls, want 3", len(calls))
	}
}

func TestRecordTransition_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	s.RecordTransition(dispatch.Live, dispatch.Simulated, "connection refused")

	trans, err := s.Transitions(10)
	if err != nil {
		t.Fatalf("Transitions() error = %v", err)
	}
	if len(trans) != 1 {
		t.Fatalf("got %d transitions, want 1", len(trans))
	}
	got := trans[0]
	if got.From != "live" || got.To != "simulated" || got.Reason != "connection refused" {
		t.Errorf("transition = %+v", got)
	}
}

func TestOpen_FileBacked(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s.RecordCall("/health", "GET", dispatch.Live, "success", 0)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopen: records survive, migrations are idempotent.
	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	calls, err := s.RecentCalls(10)
	if err != nil {
		t.Fatalf("RecentCalls() error = %v", err)
	}
	if len(calls) != 1 {
		t.Errorf("got %d calls after reopen, want 1", len(calls))
	}
}

func TestParseMigrationVersion(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"0001_init.sql", 1, false},
		{"0010_more.sql", 10, false},
		{"init.sql", 0, true},
		{"abc_init.sql", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMigrationVersion(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMigrationVersion(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseMigrationVersion(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

var _ dispatch.Auditor = (*Store)(nil)
