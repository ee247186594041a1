package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
)

func TestBar_States(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		count   int
		want    string
	}{
		{"ready", StateReady, "", 0, "Ready"},
		{"ready with message", StateReady, "3 questions asked", 0, "3 questions asked"},
		{"searching", StateSearching, "", 0, "Searching..."},
		{"loading", StateLoading, "", 0, "Loading pages..."},
		{"asking", StateAsking, "", 0, "Waiting for the model..."},
		{"results", StateResults, "", 4, "4 matches"},
		{"results message", StateResults, "a.pdf has no registered document", 4, "a.pdf has no registered document"},
		{"error", StateError, "locked", 0, "Error: locked"},
		{"bare error", StateError, "", 0, "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBar(nil, nil)
			b.SetWidth(120)
			b.SetState(tt.state)
			b.SetMessage(tt.message)
			b.SetMatchCount(tt.count)

			assert.Contains(t, b.View(), tt.want)
		})
	}
}

func TestBar_Hints(t *testing.T) {
	km := keymap.DefaultKeyMap()
	b := NewBar(nil, km)
	b.SetWidth(120)

	assert.Contains(t, b.View(), "enter: submit")

	b.SetState(StateResults)
	b.SetMatchCount(2)
	assert.Contains(t, b.View(), "c: chat")

	b.SetHints(km.ShortHelp())
	assert.NotContains(t, b.View(), "c: chat")
}

func TestBar_Clear(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetState(StateError)
	b.SetMessage("boom")
	b.SetMatchCount(3)

	b.Clear()

	assert.Equal(t, StateReady, b.State())
	assert.Empty(t, b.Message())
	assert.Zero(t, b.MatchCount())
}
