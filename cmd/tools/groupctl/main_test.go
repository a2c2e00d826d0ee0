package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/annel0/mvinventories/internal/group"
	"github.com/annel0/mvinventories/internal/logging"
	"github.com/annel0/mvinventories/internal/plugin"
	"github.com/annel0/mvinventories/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `settings:
  first_run: false
groups:
  survival:
    worlds: [world, world_nether]
    shares: [all]
  creative:
    worlds: [creative, world]
    shares: [inventory]
`

func newCtlPlugin(t *testing.T) (*plugin.Plugin, *storage.MemoryStorage) {
	t.Helper()
	ms := storage.NewMemoryStorage([]byte(testConfig))
	p := plugin.New(ms, plugin.Options{Logger: logging.NewWriterLogger("groupctl", io.Discard)})
	require.NoError(t, p.Enable())
	return p, ms
}

func TestRun_ListAndConflicts(t *testing.T) {
	p, _ := newCtlPlugin(t)

	var out bytes.Buffer
	require.NoError(t, run(&out, p, "list", &Options{}))
	assert.Contains(t, out.String(), "creative")
	assert.Contains(t, out.String(), "worlds=world,world_nether")

	out.Reset()
	require.NoError(t, run(&out, p, "conflicts", &Options{}))
	assert.Equal(t, "⚠️  world: creative, survival\n", out.String())
}

func TestRun_AddSetRemove(t *testing.T) {
	p, ms := newCtlPlugin(t)
	var out bytes.Buffer

	require.NoError(t, run(&out, p, "add", &Options{Name: "pvp", Worlds: []string{"arena"}, Shares: []string{"hp", "food"}}))
	assert.Error(t, run(&out, p, "add", &Options{Name: "PVP", Worlds: []string{"arena"}}))
	assert.Error(t, run(&out, p, "add", &Options{Name: "bad", Shares: []string{"mana"}}))

	require.NoError(t, run(&out, p, "set", &Options{Name: "pvp", Worlds: []string{"arena", "arena2"}, Shares: []string{"*"}}))
	g, ok := p.Groups().Get("pvp")
	require.True(t, ok)
	assert.Equal(t, []string{"arena", "arena2"}, g.Worlds())
	assert.True(t, g.Shares().IsAll())

	require.NoError(t, run(&out, p, "remove", &Options{Name: "creative"}))
	require.NoError(t, run(&out, p, "remove", &Options{Name: "missing"}))
	assert.Contains(t, out.String(), "Группа missing не найдена")
	assert.ErrorIs(t, run(&out, p, "remove", &Options{}), group.ErrEmptyName)

	require.NoError(t, p.Disable())
	data, err := ms.Read()
	require.NoError(t, err)
	assert.Contains(t, string(data), "pvp:")
	assert.NotContains(t, string(data), "creative:")

	assert.Error(t, run(&out, p, "rename", &Options{}))
}

func TestRun_Settings(t *testing.T) {
	p, ms := newCtlPlugin(t)
	var out bytes.Buffer

	require.NoError(t, run(&out, p, "setting", &Options{Key: "use_bypass", Value: "true"}))
	require.NoError(t, run(&out, p, "setting", &Options{Key: "debug_level", Value: "2"}))
	require.NoError(t, run(&out, p, "setting", &Options{Key: "use_optionals", Value: "economy"}))
	assert.Error(t, run(&out, p, "setting", &Options{Key: "debug_level", Value: "9"}))
	assert.Error(t, run(&out, p, "setting", &Options{Key: "use_optionals", Value: "inventory"}))
	assert.Error(t, run(&out, p, "setting", &Options{Key: "use_bypass", Value: "maybe"}))
	assert.Error(t, run(&out, p, "setting", &Options{Key: "color", Value: "true"}))

	out.Reset()
	require.NoError(t, run(&out, p, "settings", &Options{}))
	assert.Contains(t, out.String(), "use_bypass=true\n")
	assert.Contains(t, out.String(), "debug_level=2\n")
	assert.Contains(t, out.String(), "use_optionals=[economy]\n")

	require.NoError(t, p.Disable())
	data, err := ms.Read()
	require.NoError(t, err)
	assert.Contains(t, string(data), "use_bypass: true")
	assert.Contains(t, string(data), "- economy")
}

func TestParseStringList(t *testing.T) {
	assert.Nil(t, parseStringList(""))
	assert.Equal(t, []string{"a", "b"}, parseStringList("a, ,b"))
}
