package scraper

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolyamitra/product-scraper/internal/profile"
)

var testLogger = slog.Default()

func TestResolveFirstCandidateWins(t *testing.T) {
	want := &fakeElement{text: "hit"}
	session := newFakeSessionAt(&fakePage{elements: map[string]*fakeElement{
		"css=.primary":  want,
		"css=.fallback": {text: "wrong"},
	}})

	set := profile.SelectorSet{
		{Kind: profile.ByCSS, Value: ".primary"},
		{Kind: profile.ByCSS, Value: ".fallback"},
	}

	el, err := Resolve(context.Background(), session, set, time.Second, testLogger)
	require.NoError(t, err)
	assert.Same(t, want, el)
	assert.Len(t, session.findCalls, 1)
}

func TestResolveShortCircuitsAfterMatch(t *testing.T) {
	want := &fakeElement{text: "second"}
	session := newFakeSessionAt(&fakePage{elements: map[string]*fakeElement{
		"css=.b": want,
	}})

	set := profile.SelectorSet{
		{Kind: profile.ByCSS, Value: ".a"},
		{Kind: profile.ByCSS, Value: ".b"},
		{Kind: profile.ByCSS, Value: ".c"},
	}

	el, err := Resolve(context.Background(), session, set, time.Millisecond, testLogger)
	require.NoError(t, err)
	assert.Same(t, want, el)

	// Candidate order is fallback priority: .c must never be attempted.
	require.Len(t, session.findCalls, 2)
	assert.Equal(t, ".a", session.findCalls[0].Value)
	assert.Equal(t, ".b", session.findCalls[1].Value)
}

func TestResolveAllMissExhaustsEveryTimeout(t *testing.T) {
	session := newFakeSessionAt(&fakePage{})
	session.sleepOnMiss = true

	set := profile.SelectorSet{
		{Kind: profile.ByCSS, Value: ".a"},
		{Kind: profile.ByCSS, Value: ".b"},
		{Kind: profile.ByCSS, Value: ".c"},
	}

	timeout := 20 * time.Millisecond
	started := time.Now()
	_, err := Resolve(context.Background(), session, set, timeout, testLogger)
	elapsed := time.Since(started)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, session.findCalls, 3)
	// Each candidate gets its own full timeout before the next is tried.
	assert.GreaterOrEqual(t, elapsed, 3*timeout)
}

func TestResolveEmptySetIsConfigError(t *testing.T) {
	session := newFakeSessionAt(&fakePage{})

	_, err := Resolve(context.Background(), session, nil, time.Second, testLogger)

	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Empty(t, session.findCalls, "no candidate should be queried for an empty set")
}

func TestResolveInvalidLocatorIsAMiss(t *testing.T) {
	want := &fakeElement{text: "ok"}
	session := newFakeSessionAt(&fakePage{elements: map[string]*fakeElement{
		"css=.good": want,
	}})
	session.findErrs["css=[broken"] = errors.New("invalid selector syntax")

	set := profile.SelectorSet{
		{Kind: profile.ByCSS, Value: "[broken"},
		{Kind: profile.ByCSS, Value: ".good"},
	}

	el, err := Resolve(context.Background(), session, set, time.Second, testLogger)
	require.NoError(t, err)
	assert.Same(t, want, el)
	assert.Len(t, session.findCalls, 2)
}
