package validation

import (
	"strings"
	"testing"
	"time"
)

func TestValidateTaskInput(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	later := start.Add(time.Hour)
	earlier := start.Add(-time.Hour)

	tests := []struct {
		name    string
		in      TaskInput
		wantErr string
	}{
		{"valid", TaskInput{Title: "Read", StartAt: start, EndAt: &later}, ""},
		{"valid without end", TaskInput{Title: "Read", StartAt: start}, ""},
		{"missing title", TaskInput{StartAt: start}, "title is required"},
		{"missing start", TaskInput{Title: "Read"}, "start is required"},
		{"end before start", TaskInput{Title: "Read", StartAt: start, EndAt: &earlier}, "end must be after start"},
		{"end equals start", TaskInput{Title: "Read", StartAt: start, EndAt: &start}, "end must be after start"},
		{"priority out of range", TaskInput{Title: "Read", StartAt: start, Priority: 9}, "priority is out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaskInput(tt.in)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateTaskInput() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateBlockInput(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	if err := ValidateBlockInput(BlockInput{Title: "Class", StartAt: start, EndAt: start.Add(time.Hour)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := ValidateBlockInput(BlockInput{Title: "Class", StartAt: start, EndAt: start})
	if err == nil || !strings.Contains(err.Error(), "end must be after start") {
		t.Errorf("expected ordering error, got %v", err)
	}
	err = ValidateBlockInput(BlockInput{Title: "Class", StartAt: start})
	if err == nil || !strings.Contains(err.Error(), "end is required") {
		t.Errorf("expected missing end error, got %v", err)
	}
}
