package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePhases() map[string]*PhaseConfig {
	return map[string]*PhaseConfig{
		"discussion": {ID: "discussion", Goal: "discuss"},
		"vote":       {ID: "vote", Goal: "vote"},
	}
}

func TestPhaseRegistry_GetAndHas(t *testing.T) {
	r := NewPhaseRegistry(samplePhases())

	p, err := r.Get("discussion")
	require.NoError(t, err)
	assert.Equal(t, "discuss", p.Goal)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrPhaseNotFound)

	assert.True(t, r.Has("vote"))
	assert.False(t, r.Has("missing"))
	assert.Equal(t, 2, r.Len())
}

func TestPhaseRegistry_GetAllIsDefensiveCopy(t *testing.T) {
	r := NewPhaseRegistry(samplePhases())

	all := r.GetAll()
	delete(all, "discussion")

	assert.True(t, r.Has("discussion"), "mutating the returned map must not affect the registry")
}

func TestNewPhaseRegistry_DefensiveCopyOfInput(t *testing.T) {
	input := samplePhases()
	r := NewPhaseRegistry(input)

	delete(input, "vote")

	assert.True(t, r.Has("vote"), "mutating the input map after construction must not affect the registry")
}
