// internal/playback/state_test.go
package playback

import "testing"

func TestLoadState_String(t *testing.T) {
	tests := []struct {
		state LoadState
		want  string
	}{
		{StateIdle, "Idle"},
		{StateLoading, "Loading"},
		{StateReady, "Ready"},
		{StatePlaying, "Playing"},
		{StatePaused, "Paused"},
		{StateErrored, "Errored"},
		{LoadState(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestLoadState_IsActive(t *testing.T) {
	tests := []struct {
		state LoadState
		want  bool
	}{
		{StateIdle, false},
		{StateLoading, false},
		{StateReady, false},
		{StatePlaying, true},
		{StatePaused, true},
		{StateErrored, false},
	}
	for _, tt := range tests {
		if got := tt.state.IsActive(); got != tt.want {
			t.Errorf("%v.IsActive() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestMode_NextCycles(t *testing.T) {
	m := ModeSingle
	seen := []Mode{m}
	for range 3 {
		m = m.Next()
		seen = append(seen, m)
	}
	want := []Mode{ModeSingle, ModeContinuous, ModeRepeat, ModeSingle}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("cycle = %v, want %v", seen, want)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"single", ModeSingle, false},
		{"Continuous", ModeContinuous, false},
		{" REPEAT ", ModeRepeat, false},
		{"shuffle", ModeSingle, true},
		{"", ModeSingle, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
