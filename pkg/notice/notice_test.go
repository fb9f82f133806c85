package notice

import (
	"errors"
	"testing"

	"gitlab.com/tinyland/lab/glim/pkg/event"
	"gitlab.com/tinyland/lab/glim/pkg/id"
)

func TestErrorsDrainBeforeInfo(t *testing.T) {
	s := NewService()
	s.Push(LevelInfo, "first info")
	s.Push(LevelError, "first error")
	s.Push(LevelInfo, "second info")
	s.Push(LevelError, "second error")

	want := []Notice{
		{LevelError, "first error"},
		{LevelError, "second error"},
		{LevelInfo, "first info"},
		{LevelInfo, "second info"},
	}
	for i, w := range want {
		got := s.Pop()
		if got == nil {
			t.Fatalf("Pop() = nil at %d", i)
		}
		if *got != w {
			t.Errorf("Pop() #%d = %+v, want %+v", i, *got, w)
		}
	}
	if s.Pop() != nil {
		t.Error("Pop() on empty queues should be nil")
	}
}

func TestHasError(t *testing.T) {
	s := NewService()
	if s.HasError() {
		t.Error("empty service reports an error")
	}

	s.Push(LevelInfo, "hello")
	if s.HasError() {
		t.Error("info notice must not count as error")
	}

	s.Push(LevelError, "boom")
	if !s.HasError() {
		t.Error("queued error not reported")
	}

	s.Pop()
	if s.HasError() {
		t.Error("drained error still reported")
	}
}

func TestMostRecentSurvivesDrain(t *testing.T) {
	s := NewService()
	if s.MostRecent() != nil {
		t.Error("MostRecent before any Pop should be nil")
	}

	s.Push(LevelInfo, "hello")
	s.Pop()
	if s.Pop() != nil {
		t.Fatal("queue should be empty")
	}

	recent := s.MostRecent()
	if recent == nil || recent.Message != "hello" {
		t.Errorf("MostRecent = %+v", recent)
	}
}

func TestApply(t *testing.T) {
	s := NewService()

	s.Apply(event.AppError{Err: errors.New("rate limit exceeded")})
	s.Apply(event.JobLogDownloaded{Project: id.ProjectID(1), Job: id.JobID(2), Trace: "..."})
	s.Apply(event.ScreenCaptureDone{Text: "..."})
	s.Apply(event.Tick{})

	first := s.Pop()
	if first == nil || first.Level != LevelError || first.Message != "rate limit exceeded" {
		t.Errorf("first = %+v, want the error", first)
	}

	second := s.Pop()
	if second == nil || second.Level != LevelInfo || second.Message != "Job log downloaded" {
		t.Errorf("second = %+v", second)
	}

	third := s.Pop()
	if third == nil || third.Message != "Screen captured" {
		t.Errorf("third = %+v", third)
	}

	if s.Pop() != nil {
		t.Error("Tick must not queue a notice")
	}
}
