package main

import (
	"testing"
	"time"

	"github.com/n1ght/qlshim/internal/runner"
)

func TestExitStatus(t *testing.T) {
	zero, three, killed := 0, 3, -1

	tests := []struct {
		name string
		res  *runner.Result
		want int
	}{
		{"success", &runner.Result{ExitCode: &zero}, 0},
		{"child failure", &runner.Result{ExitCode: &three}, 3},
		{"timeout", &runner.Result{TimedOut: true}, 1},
		{"never ran", &runner.Result{Stderr: "Executable not found"}, 1},
		{"signal-killed", &runner.Result{ExitCode: &killed}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitStatus(tt.res); got != tt.want {
				t.Errorf("exitStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDurationSeconds(t *testing.T) {
	if got := durationSeconds(0); got != nil {
		t.Errorf("durationSeconds(0) = %v, want nil", *got)
	}
	if got := durationSeconds(1500 * time.Millisecond); got == nil || *got != 1.5 {
		t.Errorf("durationSeconds(1.5s) = %v, want 1.5", got)
	}
}
