package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	r, err := New("https://cdn.example.org/data/", []string{"Alafasy_128kbps", "Husary_64kbps"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		surah   int
		ayah    int
		voice   string
		want    string
		wantErr error
	}{
		{
			name:  "pads both numbers",
			surah: 1, ayah: 7, voice: "Alafasy_128kbps",
			want: "https://cdn.example.org/data/Alafasy_128kbps/001007.mp3",
		},
		{
			name:  "three digit numbers",
			surah: 114, ayah: 6, voice: "Husary_64kbps",
			want: "https://cdn.example.org/data/Husary_64kbps/114006.mp3",
		},
		{
			name:  "long surah",
			surah: 2, ayah: 286, voice: "Alafasy_128kbps",
			want: "https://cdn.example.org/data/Alafasy_128kbps/002286.mp3",
		},
		{name: "zero verse", surah: 1, ayah: 0, voice: "Alafasy_128kbps", wantErr: ErrInvalidItem},
		{name: "negative surah", surah: -1, ayah: 1, voice: "Alafasy_128kbps", wantErr: ErrInvalidItem},
		{name: "unknown voice", surah: 1, ayah: 1, voice: "Nobody", wantErr: ErrUnknownVoice},
		{name: "empty voice", surah: 1, ayah: 1, voice: "", wantErr: ErrUnknownVoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.surah, tt.ayah, tt.voice)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_IsPure(t *testing.T) {
	r, err := New("https://cdn.example.org", nil)
	require.NoError(t, err)

	a, err := r.Resolve(36, 1, "any")
	require.NoError(t, err)
	b, err := r.Resolve(36, 1, "any")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("  ", nil)
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestNextVoice(t *testing.T) {
	r, err := New("https://cdn.example.org", []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Equal(t, "b", r.NextVoice("a"))
	assert.Equal(t, "a", r.NextVoice("c"))
	assert.Equal(t, "a", r.NextVoice("missing"))

	empty, err := New("https://cdn.example.org", nil)
	require.NoError(t, err)
	assert.Equal(t, "x", empty.NextVoice("x"))
}
