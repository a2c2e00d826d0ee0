package share

import (
	"errors"
	"testing"

	"github.com/annel0/mvinventories/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromNames_UnknownSkipped(t *testing.T) {
	r := NewRegistry()

	s := r.FromNames([]string{"inventory", "bogus"})

	assert.Equal(t, []string{"inventory"}, s.Names())
	assert.True(t, s.Contains(Inventory))
}

func TestFromNames_CaseInsensitiveAndAliases(t *testing.T) {
	r := NewRegistry()

	s := r.FromNames([]string{"INVENTORY", "Exp", " hp ", "Beds", "beds"})

	assert.Equal(t, []string{"beds", "experience", "health", "inventory"}, s.Names())
	assert.Equal(t, 4, s.Len(), "дубликаты не должны попадать в набор")
}

func TestFromNames_RoundTrip(t *testing.T) {
	r := NewRegistry()
	inputs := [][]string{
		nil,
		{"inventory"},
		{"hunger", "health", "xp", "unknown"},
		{"all"},
		{"ALL", "economy"},
	}

	for _, names := range inputs {
		first := r.FromNames(names)
		second := r.FromNames(first.Names())
		assert.True(t, first.Equal(second), "round-trip для %v", names)
	}
}

func TestAll_ResolvesToConcreteMembers(t *testing.T) {
	r := NewRegistry()

	all := r.FromNames([]string{"all"})
	assert.True(t, all.IsAll())
	assert.False(t, all.Contains(Economy), "опциональная категория не включена")
	assert.Equal(t, []string{"beds", "experience", "health", "hunger", "inventory"}, all.Names())

	explicit := r.FromNames([]string{"inventory", "experience", "health", "hunger", "beds"})
	assert.True(t, explicit.Equal(all))
	assert.True(t, explicit.IsAll())

	r.EnableOptionals(r.FromNames([]string{"economy", "inventory"}))
	assert.False(t, all.IsAll(), "после включения economy набор уже не полный")
	assert.True(t, r.FromNames([]string{"*"}).Contains(Economy))
}

func TestShares_SetAlgebra(t *testing.T) {
	r := NewRegistry()
	a := r.FromNames([]string{"inventory", "health"})
	b := r.FromNames([]string{"health", "hunger"})

	u := a.Union(b)
	assert.Equal(t, []string{"health", "hunger", "inventory"}, u.Names())
	assert.Equal(t, []string{"health", "inventory"}, a.Names(), "операнды не меняются")
	assert.Equal(t, []string{"health", "hunger"}, b.Names())

	u.Remove(Health)
	u.Remove(Health)
	assert.False(t, u.Contains(Health))
	assert.True(t, a.Contains(Health), "Union возвращает независимую копию")

	u.Add(Beds)
	assert.Equal(t, "[beds, hunger, inventory]", u.String())
}

func TestShares_CanonicalNames(t *testing.T) {
	s := NewShares(Share{Name: "Inventory"}, Share{Name: "XP"}, Share{Name: " Mana "})
	assert.Equal(t, []string{"experience", "inventory", "mana"}, s.Names())
	assert.True(t, s.Contains(Inventory))
	assert.True(t, s.Contains(Share{Name: "EXP"}))
	assert.Equal(t, 3, s.Len())

	s.Remove(Share{Name: "INVENTORY"})
	assert.False(t, s.Contains(Inventory))
	assert.True(t, s.Equal(NewShares(Experience, Share{Name: "mana"})))
}

func TestScalarList(t *testing.T) {
	out, err := ScalarList([]interface{}{"world", 2024, 1.5, false})
	require.NoError(t, err)
	assert.Equal(t, []string{"world", "2024", "1.5", "false"}, out)

	out, err = ScalarList(nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = ScalarList([]interface{}{"w1", []interface{}{"w2"}})
	assert.True(t, errors.Is(err, domain.ErrConfigFormat))
	_, err = ScalarList([]interface{}{nil})
	assert.True(t, errors.Is(err, domain.ErrConfigFormat))
	_, err = ScalarList("world")
	assert.True(t, errors.Is(err, domain.ErrConfigFormat))
}

func TestShares_ZeroValue(t *testing.T) {
	var s Shares
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Names())
	assert.True(t, s.Equal(NewShares()))

	s.Add(Hunger)
	assert.True(t, s.Contains(Hunger))
}

func TestFromList_StorageShapes(t *testing.T) {
	r := NewRegistry()

	s, err := r.FromList([]interface{}{"inventory", "exp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"experience", "inventory"}, s.Names())

	s, err = r.FromList(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	_, err = r.FromList("inventory")
	assert.True(t, errors.Is(err, domain.ErrConfigFormat))

	_, err = r.FromList([]interface{}{"inventory", 7})
	assert.True(t, domain.IsKind(err, domain.KindConfigFormat))
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(Share{Name: "Potions", Aliases: []string{"effects"}}))
	s, ok := r.Lookup("EFFECTS")
	require.True(t, ok)
	assert.Equal(t, "potions", s.Name)
	assert.Equal(t, []string{"potions"}, r.FromNames([]string{"potions"}).Names())

	assert.Error(t, r.Register(Share{Name: "inventory"}), "имя уже занято")
	assert.Error(t, r.Register(Share{Name: "extra", Aliases: []string{"xp"}}), "псевдоним уже занят")
	assert.Error(t, r.Register(Share{Name: "all"}), "зарезервированное имя")
	assert.Error(t, r.Register(Share{Name: "  "}))

	_, ok = Default.Lookup("potions")
	assert.False(t, ok, "регистры независимы")
}
