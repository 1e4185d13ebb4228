package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labwc.dev/core/internal/core"
)

func TestLoad_CompilesRegexAndFields(t *testing.T) {
	data := []byte(`[
		{"app-id": "^firefox$", "tile-direction": "vertical", "fixed-position": true},
		{"title": "Picture-in-Picture", "tile": false, "inhibit": ["close-window"]}
	]`)
	rules, err := Load(data)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, TileDirectionVertical, rules[0].TileDirection)
	assert.True(t, rules[0].FixedPosition)
	assert.True(t, rules[1].TileDisabled)
	assert.Equal(t, []string{"close-window"}, rules[1].Inhibit)
}

func TestLoad_InvalidRegexErrors(t *testing.T) {
	data := []byte(`[{"app-id": "("}]`)
	_, err := Load(data)
	assert.ErrorIs(t, err, core.ErrConfigError)
}

func TestMatch_NoRulesReturnsEmpty(t *testing.T) {
	m := Match(nil, Identity{AppID: "foo"})
	assert.Equal(t, TileDirectionAuto, m.TileDirection)
	assert.False(t, m.FixedPosition)
	assert.Empty(t, m.Inhibit)
}

func TestMatch_StopsAtFirstMatchWithoutContinue(t *testing.T) {
	rules, err := Load([]byte(`[
		{"app-id": "^firefox$", "inhibit": ["close-window"]},
		{"app-id": "^firefox$", "inhibit": ["minimize"]}
	]`))
	require.NoError(t, err)

	m := Match(rules, Identity{AppID: "firefox"})
	assert.True(t, m.Inhibit["close-window"])
	assert.False(t, m.Inhibit["minimize"], "second rule never evaluated because the first lacked continue")
}

func TestMatch_ContinueAccumulatesAcrossRules(t *testing.T) {
	rules, err := Load([]byte(`[
		{"app-id": "^firefox$", "inhibit": ["close-window"], "continue": true},
		{"app-id": "^firefox$", "inhibit": ["minimize"]}
	]`))
	require.NoError(t, err)

	m := Match(rules, Identity{AppID: "firefox"})
	assert.True(t, m.Inhibit["close-window"])
	assert.True(t, m.Inhibit["minimize"])
}

func TestMatch_RequiresBothAppIDAndTitleWhenBothSet(t *testing.T) {
	rules, err := Load([]byte(`[
		{"app-id": "^firefox$", "title": "^Mozilla Firefox$", "fixed-position": true}
	]`))
	require.NoError(t, err)

	m := Match(rules, Identity{AppID: "firefox", Title: "something else"})
	assert.False(t, m.FixedPosition)

	m = Match(rules, Identity{AppID: "firefox", Title: "Mozilla Firefox"})
	assert.True(t, m.FixedPosition)
}

func TestMatch_NonMatchingRuleIsSkippedAndLaterRuleStillApplies(t *testing.T) {
	rules, err := Load([]byte(`[
		{"app-id": "^chrome$", "fixed-position": true},
		{"app-id": "^firefox$", "tile-direction": "horizontal"}
	]`))
	require.NoError(t, err)

	m := Match(rules, Identity{AppID: "firefox"})
	assert.False(t, m.FixedPosition)
	assert.Equal(t, TileDirectionHorizontal, m.TileDirection)
}
