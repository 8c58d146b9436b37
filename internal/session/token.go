package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Command selects the sub-protocol a token belongs to
type Command string

// Mode is the step within a sub-protocol
type Mode string

const (
	CommandReview Command = "review"
	CommandTest   Command = "test"

	ModeSequential Mode = "sequential"
	ModeShuffle    Mode = "shuffle"
	ModeAsk        Mode = "ask"
	ModeCheck      Mode = "check"
	ModeNext       Mode = "next"
)

// MaxTokenSize is Telegram's limit for callback data
const MaxTokenSize = 64

// ErrInvalidToken is returned for callback data that is not a resume token
var ErrInvalidToken = errors.New("invalid resume token")

// Token carries everything needed to resume a review or test flow.
// Arg is the last shown progress record for review and the word for test.
// Check means the action that produced the token confirms the card as known.
type Token struct {
	Command Command `json:"c"`
	Mode    Mode    `json:"m"`
	Arg     int64   `json:"a,omitempty"`
	Check   bool    `json:"k,omitempty"`
}

// Encode serializes the token into callback data
func (t Token) Encode() (string, error) {
	if err := t.validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}
	if len(data) > MaxTokenSize {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidToken, len(data), MaxTokenSize)
	}
	return string(data), nil
}

// ParseToken decodes callback data produced by Encode
func ParseToken(data string) (Token, error) {
	var t Token
	if len(data) > MaxTokenSize {
		return t, fmt.Errorf("%w: too long", ErrInvalidToken)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Token{}, fmt.Errorf("%w: trailing data", ErrInvalidToken)
	}
	if err := t.validate(); err != nil {
		return Token{}, err
	}
	return t, nil
}

func (t Token) validate() error {
	if t.Arg < 0 {
		return fmt.Errorf("%w: negative argument", ErrInvalidToken)
	}
	switch t.Command {
	case CommandReview:
		if t.Mode == ModeSequential || t.Mode == ModeShuffle {
			return nil
		}
	case CommandTest:
		if t.Check {
			return fmt.Errorf("%w: check flag on test token", ErrInvalidToken)
		}
		switch t.Mode {
		case ModeNext:
			return nil
		case ModeAsk, ModeCheck:
			if t.Arg > 0 {
				return nil
			}
			return fmt.Errorf("%w: missing word", ErrInvalidToken)
		}
	default:
		return fmt.Errorf("%w: unknown command %q", ErrInvalidToken, t.Command)
	}
	return fmt.Errorf("%w: unknown mode %q for %s", ErrInvalidToken, t.Mode, t.Command)
}
