package vocabulary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{"elephant", "elephant", nil},
		{"  Elephant \n", "elephant", nil},
		{"NASA", "NASA", nil},
		{"NaSA", "nasa", nil},
		{"Straße", "straße", nil},
		{"", "", ErrInvalidInput},
		{"   ", "", ErrInvalidInput},
		{"ice cream", "", ErrInvalidInput},
		{"don't", "", ErrInvalidInput},
		{"abc123", "", ErrInvalidInput},
		{"/start", "", ErrInvalidInput},
	}
	for _, c := range cases {
		got, err := Normalize(c.in)
		assert.Equal(t, c.err, err, "input %q", c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "象象", truncate("象象象", 2))
}

func TestAudioFileName(t *testing.T) {
	name := audioFileName("http://media.example/audio/us/elephant-1.mp3")
	assert.True(t, strings.HasSuffix(name, ".mp3"))
	assert.Len(t, name, 16+len(".mp3"))
	assert.Equal(t, name, audioFileName("http://media.example/audio/us/elephant-1.mp3"))

	assert.True(t, strings.HasSuffix(audioFileName("http://media.example/e.OGG?x=1"), ".ogg"))
	assert.True(t, strings.HasSuffix(audioFileName("http://media.example/"), ".mp3"))

	// words differing only in case must not share a file
	upper := audioFileName("http://media.example/US.mp3")
	lower := audioFileName("http://media.example/us.mp3")
	assert.NotEqual(t, strings.ToLower(upper), strings.ToLower(lower))
}
