package state

import (
	"testing"
)

func TestQueueStatus_String(t *testing.T) {
	tests := []struct {
		name     string
		status   QueueStatus
		expected string
	}{
		{name: "Running status", status: StatusRunning, expected: "running"},
		{name: "Completed status", status: StatusCompleted, expected: "completed"},
		{name: "Failed status", status: StatusFailed, expected: "failed"},
		{name: "Paused status", status: StatusPaused, expected: "paused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.status.String()
			if result != tt.expected {
				t.Errorf("String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestQueueStatus_Valid(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []QueueStatus{"", "pending", "RUNNING"} {
		if s.Valid() {
			t.Errorf("%q should not be valid", s)
		}
	}
}

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     QueueStatus
		to       QueueStatus
		expected bool
	}{
		{name: "Valid: Running to Completed", from: StatusRunning, to: StatusCompleted, expected: true},
		{name: "Valid: Running to Paused", from: StatusRunning, to: StatusPaused, expected: true},
		{name: "Valid: Paused to Running", from: StatusPaused, to: StatusRunning, expected: true},
		{name: "Valid: Failed to Running", from: StatusFailed, to: StatusRunning, expected: true},
		{name: "Invalid: Completed to Running", from: StatusCompleted, to: StatusRunning, expected: false},
		{name: "Invalid: Completed to Paused", from: StatusCompleted, to: StatusPaused, expected: false},
		{name: "Invalid: Paused to Completed", from: StatusPaused, to: StatusCompleted, expected: false},
		{name: "Invalid: Running to Running", from: StatusRunning, to: StatusRunning, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition(%v, %v) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestCompletedIsTerminal(t *testing.T) {
	for _, to := range AllStatuses {
		if IsValidTransition(StatusCompleted, to) {
			t.Errorf("completed must not transition to %s", to)
		}
	}
}
