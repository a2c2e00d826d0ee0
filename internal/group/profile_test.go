package group

import (
	"errors"
	"testing"

	"github.com/annel0/mvinventories/internal/domain"
	"github.com/annel0/mvinventories/internal/share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New("", nil, share.NewShares())
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = New("   ", nil, share.NewShares())
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = New("a.b", nil, share.NewShares())
	assert.Error(t, err)

	p, err := New(" Survival ", []string{"world", "world_nether"}, share.NewShares(share.Inventory))
	require.NoError(t, err)
	assert.Equal(t, "Survival", p.Name())
	assert.Equal(t, "survival", p.Key())
}

func TestProfile_WorldsIdempotent(t *testing.T) {
	p, err := New("g", []string{"w1"}, share.NewShares())
	require.NoError(t, err)

	p.AddWorld("w2")
	p.AddWorld("W2")
	p.AddWorld("")
	assert.Equal(t, []string{"w1", "w2"}, p.Worlds())

	p.RemoveWorld("missing")
	p.RemoveWorld("W1")
	assert.Equal(t, []string{"w2"}, p.Worlds())
	assert.True(t, p.ContainsWorld("w2"))
	assert.False(t, p.ContainsWorld("w1"))
}

func TestProfile_SharesAreCopied(t *testing.T) {
	shares := share.NewShares(share.Inventory)
	p, err := New("g", nil, shares)
	require.NoError(t, err)

	shares.Add(share.Health)
	got := p.Shares()
	got.Add(share.Beds)

	assert.Equal(t, []string{"inventory"}, p.Shares().Names())

	p.SetShares(share.NewShares(share.Hunger))
	assert.Equal(t, []string{"hunger"}, p.Shares().Names())
}

func TestSerialize(t *testing.T) {
	p, err := New("g1", []string{"w2", "w1"}, share.NewShares(share.Health, share.Inventory))
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"worlds": []string{"w1", "w2"},
		"shares": []string{"health", "inventory"},
	}, p.Serialize())
}

func TestDeserialize(t *testing.T) {
	reg := share.NewRegistry()

	_, err := Deserialize("g", map[string]interface{}{}, reg)
	assert.True(t, errors.Is(err, domain.ErrGroupParse), "без worlds: GroupParseError")

	_, err = Deserialize("g", map[string]interface{}{"worlds": "w1"}, reg)
	assert.True(t, errors.Is(err, domain.ErrGroupParse))

	_, err = Deserialize("g", map[string]interface{}{"worlds": nil}, reg)
	assert.True(t, errors.Is(err, domain.ErrGroupParse))

	_, err = Deserialize("g", map[string]interface{}{
		"worlds": []interface{}{"w1"},
		"shares": "inventory",
	}, reg)
	assert.True(t, domain.IsKind(err, domain.KindGroupParse))

	p, err := Deserialize("g", map[string]interface{}{"worlds": []interface{}{"w1"}}, reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, p.Worlds())
	assert.Equal(t, 0, p.Shares().Len(), "без shares: пустой набор")

	p, err = Deserialize("g", map[string]interface{}{
		"worlds": []interface{}{"w1", "w2"},
		"shares": []interface{}{"all", "bogus"},
	}, reg)
	require.NoError(t, err)
	assert.True(t, p.Shares().IsAll())

	// Миры с числовыми именами YAML отдаёт как числа
	p, err = Deserialize("g", map[string]interface{}{
		"worlds": []interface{}{"world", 2024, 1.5, true},
		"shares": []interface{}{"inventory"},
	}, reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.5", "2024", "true", "world"}, p.Worlds())

	_, err = Deserialize("g", map[string]interface{}{
		"worlds": []interface{}{"w1", []interface{}{"w2"}},
	}, reg)
	assert.True(t, errors.Is(err, domain.ErrGroupParse), "вложенный список: GroupParseError")

	_, err = Deserialize("g", map[string]interface{}{
		"worlds": []interface{}{"w1", map[string]interface{}{"w2": true}},
	}, reg)
	assert.True(t, errors.Is(err, domain.ErrGroupParse), "вложенная секция: GroupParseError")

	_, err = Deserialize("g", map[string]interface{}{
		"worlds": []interface{}{"w1"},
		"shares": []interface{}{"inventory", 7},
	}, reg)
	assert.True(t, errors.Is(err, domain.ErrGroupParse), "shares остаются списком строк")
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	p, err := New("Creative", []string{"c1", "c2"}, share.NewShares(share.Experience, share.Beds))
	require.NoError(t, err)

	back, err := Deserialize(p.Name(), p.Serialize(), nil)
	require.NoError(t, err)

	assert.Equal(t, p.Name(), back.Name())
	assert.Equal(t, p.Worlds(), back.Worlds())
	assert.True(t, p.Shares().Equal(back.Shares()))
}
