package common

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalError_MessageSummarizesLastFailure(t *testing.T) {
	term := &TerminalError{Attempts: 3, Last: fmt.Errorf("%w: no object", ErrMalformedResponse)}

	assert.Contains(t, term.Error(), "no object")
	assert.NotContains(t, term.Error(), strconv.Itoa(term.Attempts),
		"attempt counts belong in logs, not the caller-facing message")
}

func TestTerminalError_FallbackMentioned(t *testing.T) {
	plain := &TerminalError{Attempts: 3, Last: ErrSchema}
	withFallback := &TerminalError{Attempts: 3, Fallback: true, Last: ErrSchema}

	assert.NotContains(t, plain.Error(), "fallback")
	assert.Contains(t, withFallback.Error(), "fallback")
}

func TestTerminalError_Unwrap(t *testing.T) {
	term := &TerminalError{Attempts: 3, Last: fmt.Errorf("%w: bad shape", ErrSchema)}

	assert.ErrorIs(t, term, ErrSchema)

	var target *TerminalError
	require.True(t, errors.As(error(term), &target))
	assert.Equal(t, 3, target.Attempts)
}

func TestIsTerminal(t *testing.T) {
	term := &TerminalError{Attempts: 1, Last: ErrTransport}

	assert.True(t, IsTerminal(term))
	assert.True(t, IsTerminal(fmt.Errorf("run pipeline: %w", term)))
	assert.False(t, IsTerminal(ErrTransport))
	assert.False(t, IsTerminal(nil))
}
