package domain

import (
	"errors"
	"testing"
	"time"
)

func TestValidateSteps(t *testing.T) {
	tests := []struct {
		name    string
		steps   []Step
		wantErr error
	}{
		{name: "default program", steps: DefaultSteps()},
		{name: "single step", steps: SingleStep(30*time.Second, "banho")},
		{name: "empty", steps: nil, wantErr: ErrNoSteps},
		{name: "zero duration", steps: []Step{{Label: "a", Duration: time.Second}, {Label: "b"}}, wantErr: ErrInvalidDuration},
		{name: "negative duration", steps: []Step{{Label: "a", Duration: -time.Second}}, wantErr: ErrInvalidDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSteps(tt.steps)

			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateSteps() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultStepsOrder(t *testing.T) {
	steps := DefaultSteps()

	want := []struct {
		label string
		sec   int
	}{
		{"Ligar Chuveiro", 5},
		{"Passar Sabonete", 15},
		{"Enxaguar", 10},
	}
	if len(steps) != len(want) {
		t.Fatalf("expected %d steps got %d", len(want), len(steps))
	}
	for i, w := range want {
		if steps[i].Label != w.label {
			t.Errorf("step %d label = %q, want %q", i, steps[i].Label, w.label)
		}
		if steps[i].Duration != time.Duration(w.sec)*time.Second {
			t.Errorf("step %d duration = %v, want %ds", i, steps[i].Duration, w.sec)
		}
	}
}

func TestNewSessionCopiesSteps(t *testing.T) {
	steps := DefaultSteps()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s, err := NewSession("", "user-1", steps, CountDown, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID == "" {
		t.Fatalf("expected generated session ID")
	}
	if !s.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v, want %v", s.CreatedAt, now)
	}

	steps[0].Label = "changed"
	if s.Steps[0].Label != "Ligar Chuveiro" {
		t.Fatalf("session steps must not alias the caller's slice")
	}
}

func TestNewSessionRejectsInvalidSteps(t *testing.T) {
	if _, err := NewSession("x", "", nil, CountDown, time.Now()); !errors.Is(err, ErrNoSteps) {
		t.Fatalf("expected ErrNoSteps, got %v", err)
	}
}
