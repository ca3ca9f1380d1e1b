package oracle

import (
	"context"
	"errors"
	"testing"
)

// scripted is a test backend with canned answers per task.
type scripted struct {
	name    string
	results map[Task]*Result
	err     error
	calls   int
}

func (s *scripted) Name() string { return s.name }

func (s *scripted) Classify(ctx context.Context, text string, task Task) (*Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if res, ok := s.results[task]; ok {
		return res, nil
	}
	return nil, ErrUnavailable
}

func TestFallbackPrimaryWins(t *testing.T) {
	primary := &scripted{name: "p", results: map[Task]*Result{TaskThreat: {Severity: 4}}}
	backup := &scripted{name: "b", results: map[Task]*Result{TaskThreat: {Severity: 1}}}
	f := NewFallback(primary, backup)

	res, err := f.Classify(context.Background(), "x", TaskThreat)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if res.Severity != 4 {
		t.Errorf("Severity = %d, want primary's 4", res.Severity)
	}
	if backup.calls != 0 {
		t.Errorf("backup called %d times, want 0", backup.calls)
	}
}

func TestFallbackOnUnavailable(t *testing.T) {
	primary := &scripted{name: "p", err: ErrUnavailable}
	backup := &scripted{name: "b", results: map[Task]*Result{TaskThreat: {Severity: 2}}}
	f := NewFallback(primary, backup)

	res, err := f.Classify(context.Background(), "x", TaskThreat)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if res.Severity != 2 {
		t.Errorf("Severity = %d, want backup's 2", res.Severity)
	}
}

func TestFallbackSkipsBackupWhenContextDone(t *testing.T) {
	primary := &scripted{name: "p", err: context.DeadlineExceeded}
	backup := &scripted{name: "b", results: map[Task]*Result{TaskThreat: {Severity: 2}}}
	f := NewFallback(primary, backup)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Classify(ctx, "x", TaskThreat)
	if err == nil {
		t.Fatal("want error when run budget is exhausted")
	}
	if backup.calls != 0 {
		t.Errorf("backup called %d times after context end, want 0", backup.calls)
	}
}

func TestFallbackChainsForUnsupportedTasks(t *testing.T) {
	local := &scripted{name: "local", results: map[Task]*Result{TaskThreat: {Severity: 3}}}
	remote := &scripted{name: "remote", results: map[Task]*Result{TaskRealityCheck: {Message: "probe"}}}
	f := NewFallback(NewFallback(local, remote), NewHeuristic())

	res, err := f.Classify(context.Background(), "x", TaskRealityCheck)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if res.Message != "probe" {
		t.Errorf("Message = %q, want remote's probe", res.Message)
	}
}

func TestFallbackErrorChain(t *testing.T) {
	primary := &scripted{name: "p", err: ErrUnavailable}
	backup := &scripted{name: "b", err: ErrUnavailable}
	f := NewFallback(primary, backup)

	_, err := f.Classify(context.Background(), "x", TaskLanguage)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}
