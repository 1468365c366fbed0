package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHolds(t *testing.T) {
	registry := NewRegistry(Seed())

	tests := []struct {
		name  string
		set   Set
		holds bool
	}{
		{"single non-releasing", NewSet(CodeConfirmed), true},
		{"single releasing", NewSet(CodeCancelled), false},
		{"mixed keeps holding", ParseSet("confirmed,no_show"), true},
		{"all releasing releases", ParseSet("cancelled,released"), false},
		{"unknown code holds", NewSet("mystery"), true},
		{"unknown among releasing holds", ParseSet("cancelled,mystery"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.holds, registry.Holds(tt.set))
		})
	}
}

func TestRegistryDefaultCode(t *testing.T) {
	registry := NewRegistry(Seed())
	assert.Equal(t, CodeConfirmed, registry.DefaultCode())

	// No explicit default falls back to confirmed.
	registry = NewRegistry([]State{{Code: "walk_in"}})
	assert.Equal(t, CodeConfirmed, registry.DefaultCode())
}

func TestRegistryIncidentCodes(t *testing.T) {
	registry := NewRegistry(Seed())
	assert.Empty(t, registry.IncidentCodes(NewSet(CodeConfirmed)))
	assert.Equal(t, []string{CodeNoShow}, registry.IncidentCodes(ParseSet("confirmed,no_show")))
}

func TestSetAddRemove(t *testing.T) {
	s := NewSet(CodeConfirmed)

	next, added := s.Add(CodeSeated)
	require.True(t, added)
	assert.Equal(t, []string{CodeConfirmed, CodeSeated}, next.Codes())

	// Adding a present code is a no-op.
	same, added := next.Add(CodeSeated)
	assert.False(t, added)
	assert.Equal(t, next.Codes(), same.Codes())

	// The original set is untouched.
	assert.Equal(t, []string{CodeConfirmed}, s.Codes())

	shrunk, removed := next.Remove(CodeConfirmed)
	require.True(t, removed)
	assert.Equal(t, []string{CodeSeated}, shrunk.Codes())

	_, removed = shrunk.Remove("absent")
	assert.False(t, removed)
}

func TestSetCSVRoundTrip(t *testing.T) {
	s := ParseSet("confirmed, seated ,no_show")
	assert.Equal(t, []string{"confirmed", "seated", "no_show"}, s.Codes())
	assert.Equal(t, "confirmed,seated,no_show", s.String())

	assert.True(t, ParseSet("").IsEmpty())
}

func TestTransitionPolicy(t *testing.T) {
	policy := DefaultTransitionPolicy()

	assert.True(t, policy.CanTransition(CodeConfirmed, CodeSeated))
	assert.True(t, policy.CanTransition(CodeNoShow, CodeSeated), "no-show guests who turn up late get seated")
	assert.False(t, policy.CanTransition(CodeCancelled, CodeSeated), "cancelled is terminal")
	assert.False(t, policy.CanTransition(CodeReleased, CodeConfirmed), "released is terminal")

	// States absent from the matrix accept any target.
	assert.True(t, policy.CanTransition("day_pass", CodeCancelled))
}
