package group

import (
	"testing"

	"github.com/annel0/mvinventories/internal/share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGroup(t *testing.T, name string, worlds []string, shares ...share.Share) *WorldGroupProfile {
	t.Helper()
	p, err := New(name, worlds, share.NewShares(shares...))
	require.NoError(t, err)
	return p
}

func TestManager_UniqueNames(t *testing.T) {
	m := NewManager(nil)

	require.NoError(t, m.Add(mustGroup(t, "Survival", []string{"world"})))
	err := m.Add(mustGroup(t, "survival", []string{"other"}))
	assert.ErrorIs(t, err, ErrDuplicateGroup)

	g, ok := m.Get("SURVIVAL")
	require.True(t, ok)
	assert.Equal(t, "Survival", g.Name())

	_, ok = m.Remove("nope")
	assert.False(t, ok)
	_, ok = m.Remove("survival")
	assert.True(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestManager_Replace(t *testing.T) {
	m := NewManager(nil)
	rejected := m.Replace([]*WorldGroupProfile{
		mustGroup(t, "b", nil),
		mustGroup(t, "a", nil),
		mustGroup(t, "A", nil),
	})

	require.Len(t, rejected, 1)
	assert.Equal(t, "A", rejected[0].Name())

	names := []string{}
	for _, g := range m.List() {
		names = append(names, g.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestManager_SharedBetween(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.Add(mustGroup(t, "main", []string{"world", "world_nether"}, share.Inventory, share.Health)))
	require.NoError(t, m.Add(mustGroup(t, "beds", []string{"world", "world_nether", "world_the_end"}, share.Beds)))

	shared := m.SharedBetween("world", "world_nether")
	assert.Equal(t, []string{"beds", "health", "inventory"}, shared.Names())

	shared = m.SharedBetween("world", "world_the_end")
	assert.Equal(t, []string{"beds"}, shared.Names())

	shared = m.SharedBetween("world", "creative")
	assert.Equal(t, 0, shared.Len())
}

func TestManager_DefaultForUngroupedWorlds(t *testing.T) {
	m := NewManager(nil)
	def, err := m.DefaultGroup([]string{"world"})
	require.NoError(t, err)
	assert.True(t, def.Shares().IsAll())
	require.NoError(t, m.Add(def))

	assert.Empty(t, m.GroupsForWorld("lobby"))

	m.SetDefaultingUngroupedWorlds(true)
	groups := m.GroupsForWorld("lobby")
	require.Len(t, groups, 1)
	assert.Equal(t, DefaultGroupName, groups[0].Name())
	assert.True(t, m.SharedBetween("lobby", "world").IsAll())
}

func TestManager_Conflicts(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.Add(mustGroup(t, "g1", []string{"w1", "w2"})))
	require.NoError(t, m.Add(mustGroup(t, "g2", []string{"W2", "w3"})))

	conflicts := m.Conflicts()
	require.Len(t, conflicts, 1)
	for _, groups := range conflicts {
		assert.Equal(t, []string{"g1", "g2"}, groups)
	}
}
