// internal/playback/state_test.go
package playback

import (
	"errors"
	"testing"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "Idle"},
		{StateLoading, "Loading"},
		{StatePlaying, "Playing"},
		{StatePaused, "Paused"},
		{StateFinished, "Finished"},
		{StateError, "Error"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_IsActive(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateIdle, false},
		{StateLoading, false},
		{StatePlaying, true},
		{StatePaused, true},
		{StateFinished, false},
		{StateError, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.IsActive(); got != tt.want {
				t.Errorf("State.IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_CanSeek(t *testing.T) {
	for _, s := range []State{StatePlaying, StatePaused, StateFinished} {
		if !s.CanSeek() {
			t.Errorf("%v.CanSeek() = false, want true", s)
		}
	}
	for _, s := range []State{StateIdle, StateLoading, StateError} {
		if s.CanSeek() {
			t.Errorf("%v.CanSeek() = true, want false", s)
		}
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		kind    ErrorKind
		name    string
		wantErr error
	}{
		{ErrorNone, "none", nil},
		{LoadError, "load", ErrLoad},
		{StallError, "stall", ErrStall},
		{ErrorKind(7), "unknown", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.kind.Err(); !errors.Is(got, tt.wantErr) || (got == nil) != (tt.wantErr == nil) {
				t.Errorf("Err() = %v, want %v", got, tt.wantErr)
			}
		})
	}
}
