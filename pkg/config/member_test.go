package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMembers() (map[string]*MemberConfig, []string) {
	members := map[string]*MemberConfig{
		"a": {ID: "a", Role: "pragmatist"},
		"b": {ID: "b", Role: "skeptic"},
		"c": {ID: "c", Role: "visionary"},
	}
	return members, []string{"a", "b", "c"}
}

func TestMemberRegistry_GetAndHas(t *testing.T) {
	members, order := sampleMembers()
	r := NewMemberRegistry(members, order)

	m, err := r.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "skeptic", m.Role)

	_, err = r.Get("z")
	assert.ErrorIs(t, err, ErrMemberNotFound)

	assert.Equal(t, 3, r.Len())
}

func TestMemberRegistry_DeclarationOrderIsStableCopy(t *testing.T) {
	members, order := sampleMembers()
	r := NewMemberRegistry(members, order)

	got := r.DeclarationOrder()
	assert.Equal(t, []string{"a", "b", "c"}, got)

	got[0] = "z"
	assert.Equal(t, []string{"a", "b", "c"}, r.DeclarationOrder(), "mutating the returned slice must not affect the registry")
}

func TestMemberRegistry_GetAllIsDefensiveCopy(t *testing.T) {
	members, order := sampleMembers()
	r := NewMemberRegistry(members, order)

	all := r.GetAll()
	delete(all, "a")

	assert.True(t, r.Has("a"))
}
