package session

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := []Token{
		{Command: CommandReview, Mode: ModeSequential},
		{Command: CommandReview, Mode: ModeShuffle},
		{Command: CommandReview, Mode: ModeSequential, Arg: 7, Check: true},
		{Command: CommandReview, Mode: ModeShuffle, Arg: math.MaxInt64, Check: true},
		{Command: CommandTest, Mode: ModeNext},
		{Command: CommandTest, Mode: ModeAsk, Arg: 12},
		{Command: CommandTest, Mode: ModeCheck, Arg: math.MaxInt64},
	}
	for _, tok := range tokens {
		data, err := tok.Encode()
		require.NoError(t, err, "%+v", tok)
		assert.LessOrEqual(t, len(data), MaxTokenSize)

		parsed, err := ParseToken(data)
		require.NoError(t, err, data)
		assert.Equal(t, tok, parsed)
	}
}

func TestTokenEncodingIsCompact(t *testing.T) {
	data, err := Token{Command: CommandReview, Mode: ModeSequential, Arg: 7, Check: true}.Encode()
	require.NoError(t, err)
	assert.Equal(t, `{"c":"review","m":"sequential","a":7,"k":true}`, data)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	inputs := []string{
		``,
		`not json`,
		`[]`,
		`{}`,
		`{"c":"review"}`,
		`{"c":"review","m":"ask","a":1}`,
		`{"c":"test","m":"sequential"}`,
		`{"c":"test","m":"ask"}`,
		`{"c":"test","m":"check","a":3,"k":true}`,
		`{"c":"quiz","m":"next"}`,
		`{"c":"review","m":"sequential","a":-1}`,
		`{"c":"review","m":"sequential","x":1}`,
		`{"c":"review","m":"sequential"}{}`,
		`{"command": "review", "type": "order", "arg": 0, "check": 0}`,
	}
	for _, in := range inputs {
		_, err := ParseToken(in)
		assert.ErrorIs(t, err, ErrInvalidToken, in)
	}
}

func TestEncodeRejectsInvalidToken(t *testing.T) {
	_, err := Token{Command: CommandTest, Mode: ModeShuffle}.Encode()
	assert.ErrorIs(t, err, ErrInvalidToken)
}
