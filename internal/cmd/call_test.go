package cmd

import (
	"testing"
	"time"
)

func TestNormalizeToolName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"paths", "wh_paths"},
		{"wh_paths", "wh_paths"},
		{"resolve", "wh_resolve"},
		{"wh_resolve", "wh_resolve"},
		{"status", "wh_status"},
		{"nonexistent", "wh_nonexistent"},
	}

	for _, tt := range tests {
		got := normalizeToolName(tt.input)
		if got != tt.want {
			t.Errorf("normalizeToolName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCallCmdRequiresToolOrFlag(t *testing.T) {
	err := runCall(callCmd, []string{})
	if err == nil {
		t.Error("runCall with no args should return error")
	}
}

func TestParseServeTimeout(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"30m", 30 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		got, err := parseServeTimeout(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseServeTimeout(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseServeTimeout(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseServeTimeout(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
