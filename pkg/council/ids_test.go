package council

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDGenerator_NextEventID_StrictlyMonotonic(t *testing.T) {
	g := NewUUIDGenerator()
	first := g.NextEventID()
	second := g.NextEventID()
	third := g.NextEventID()

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, int64(3), third)
}

func TestUUIDGenerator_SessionAndMotionIDsAreNonEmptyAndDistinct(t *testing.T) {
	g := NewUUIDGenerator()
	a := g.NewSessionID()
	b := g.NewSessionID()

	assert.NotEmpty(t, a)
	assert.NotEmpty(t, b)
	assert.NotEqual(t, a, b)

	m1 := g.NewMotionID()
	m2 := g.NewMotionID()
	assert.NotEmpty(t, m1)
	assert.NotEmpty(t, m2)
	assert.NotEqual(t, m1, m2)
}
