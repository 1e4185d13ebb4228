package keybind

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"labwc.dev/core/internal/action"
	"labwc.dev/core/internal/condition"
)

func TestResolve_DeviceBlacklist(t *testing.T) {
	b := &Bind{
		ID:        "mute",
		Mods:      0,
		Keysyms:   map[Keysym]bool{1: true},
		Enabled:   true,
		Blacklist: []string{"evil-keyboard"},
	}
	ev := Event{Mods: 0, Translated: []Keysym{1}, Device: "Evil-Keyboard"}
	assert.Nil(t, Resolve([]*Bind{b}, ev, false, nil))

	ev.Device = "normal-keyboard"
	assert.Same(t, b, Resolve([]*Bind{b}, ev, false, nil))
}

func TestResolve_WhitelistEmptyMeansAllDevicesAllowed(t *testing.T) {
	b := &Bind{Mods: 0, Keysyms: map[Keysym]bool{1: true}, Enabled: true}
	ev := Event{Translated: []Keysym{1}, Device: "anything"}
	assert.Same(t, b, Resolve([]*Bind{b}, ev, false, nil))
}

func TestResolve_LockedSkipsUnlessAllowed(t *testing.T) {
	b := &Bind{Mods: 0, Keysyms: map[Keysym]bool{1: true}, Enabled: true}
	ev := Event{Translated: []Keysym{1}}
	assert.Nil(t, Resolve([]*Bind{b}, ev, true, nil))

	b.AllowWhenLocked = true
	assert.Same(t, b, Resolve([]*Bind{b}, ev, true, nil))
}

func TestResolve_InhibitedActionSkipsBind(t *testing.T) {
	b := &Bind{
		Mods:    0,
		Keysyms: map[Keysym]bool{1: true},
		Enabled: true,
		Actions: []action.Record{{Name: "close"}},
	}
	ev := Event{Translated: []Keysym{1}}
	assert.Nil(t, Resolve([]*Bind{b}, ev, false, map[string]bool{"close": true}))
}

func TestEngine_HandlePress_Unmatched_ForwardsAndNotConsumed(t *testing.T) {
	var forwarded []Event
	e := New(nil, Hooks{ForwardPress: func(ev Event) { forwarded = append(forwarded, ev) }})
	consumed := e.HandlePress(Event{Keycode: 5, Translated: []Keysym{99}})
	assert.False(t, consumed)
	assert.Len(t, forwarded, 1)
}

func TestEngine_HandlePress_Matched_RunsActionsAndSuppressesRelease(t *testing.T) {
	ran := 0
	e := New(nil, Hooks{RunActions: func(b *Bind) error { ran++; return nil }})
	b := &Bind{Mods: 0, Keysyms: map[Keysym]bool{7: true}, Enabled: true}
	e.Binds = []*Bind{b}

	consumed := e.HandlePress(Event{Keycode: 1, Translated: []Keysym{7}})
	assert.True(t, consumed)
	assert.Equal(t, 1, ran)

	var forwarded bool
	e.Hooks.ForwardRelease = func(Event) { forwarded = true }
	consumedRelease := e.HandleRelease(Event{Keycode: 1})
	assert.True(t, consumedRelease)
	assert.False(t, forwarded, "a press-bound key's release must be swallowed, not forwarded")
}

func TestEngine_ConditionGating_MissReinjectsPress(t *testing.T) {
	var reinjected []Event
	ran := 0
	e := New(nil, Hooks{
		RunActions:   func(b *Bind) error { ran++; return nil },
		ForwardPress: func(ev Event) { reinjected = append(reinjected, ev) },
	})
	b := &Bind{
		Mods:      0,
		Keysyms:   map[Keysym]bool{7: true},
		Enabled:   true,
		Condition: &Condition{Shell: "echo off", Values: map[string]bool{"on": true}},
	}
	e.Binds = []*Bind{b}

	consumed := e.HandlePress(Event{Keycode: 1, Translated: []Keysym{7}, Timestamp: 42})
	assert.True(t, consumed, "press stays absorbed while the condition runs")
	assert.Equal(t, 0, ran)

	e.DeliverCondition(1, condition.Result{Matched: false, Output: "off"})
	assert.Equal(t, 0, ran, "a miss must not run the bind's actions")
	assert.Len(t, reinjected, 1)
	assert.Equal(t, uint32(42), reinjected[0].Timestamp, "re-injected press keeps its original timestamp")
}

func TestEngine_Reset_DropsBoundAndPendingState(t *testing.T) {
	e := New(nil, Hooks{})
	b := &Bind{Mods: 0, Keysyms: map[Keysym]bool{1: true}, Enabled: true,
		Condition: &Condition{Shell: "sleep 5"}}
	e.Binds = []*Bind{b}
	e.HandlePress(Event{Keycode: 1, Translated: []Keysym{1}})
	assert.NotEmpty(t, e.bound)
	assert.NotEmpty(t, e.pending)

	e.Reset()
	assert.Empty(t, e.bound)
	assert.Empty(t, e.pending)
}

func TestEngine_HandlePress_VTSwitch_BypassesResolveAndCancelsRepeat(t *testing.T) {
	var switched int
	ranActions := 0
	e := New(nil, Hooks{
		SwitchVT:   func(vt int) { switched = vt },
		RunActions: func(b *Bind) error { ranActions++; return nil },
	})
	e.VTKeysyms = map[Keysym]int{100: 3}
	e.StartRepeatTimer(&Bind{}, Event{}, time.Hour, 1)

	consumed := e.HandlePress(Event{Translated: []Keysym{100}})
	assert.True(t, consumed)
	assert.Equal(t, 3, switched)
	assert.Equal(t, 0, ranActions, "VT-switch takes the privileged path, never Resolve/RunActions")
	assert.Nil(t, e.repeatTimer, "a VT switch cancels any in-flight repeat")
}

func TestEngine_HandlePress_VTSwitch_FallsBackToRawKeysym(t *testing.T) {
	var switched int
	e := New(nil, Hooks{SwitchVT: func(vt int) { switched = vt }})
	e.VTKeysyms = map[Keysym]int{200: 7}

	consumed := e.HandlePress(Event{Raw: []Keysym{200}})
	assert.True(t, consumed)
	assert.Equal(t, 7, switched)
}

func TestEngine_HandlePress_NoVTKeysymsConfigured_FallsThroughToResolve(t *testing.T) {
	ran := 0
	e := New(nil, Hooks{RunActions: func(b *Bind) error { ran++; return nil }})
	b := &Bind{Mods: 0, Keysyms: map[Keysym]bool{100: true}, Enabled: true}
	e.Binds = []*Bind{b}

	consumed := e.HandlePress(Event{Translated: []Keysym{100}})
	assert.True(t, consumed)
	assert.Equal(t, 1, ran)
}

func TestDecodeMenuKey(t *testing.T) {
	const up, down, left, right, enter, escape Keysym = 1, 2, 3, 4, 5, 6
	assert.Equal(t, MenuUp, DecodeMenuKey(up, up, down, left, right, enter, escape))
	assert.Equal(t, MenuDown, DecodeMenuKey(down, up, down, left, right, enter, escape))
	assert.Equal(t, MenuLeft, DecodeMenuKey(left, up, down, left, right, enter, escape))
	assert.Equal(t, MenuRight, DecodeMenuKey(right, up, down, left, right, enter, escape))
	assert.Equal(t, MenuActivate, DecodeMenuKey(enter, up, down, left, right, enter, escape))
	assert.Equal(t, MenuClose, DecodeMenuKey(escape, up, down, left, right, enter, escape))
	assert.Equal(t, MenuNone, DecodeMenuKey(999, up, down, left, right, enter, escape))
}

func TestHandleModifiers_SendsToFocusedAndBroadcastsUnlessVirtual(t *testing.T) {
	var toFocused, broadcast Modifiers
	var broadcastCalled bool
	e := New(nil, Hooks{
		SendModifiersToFocused:        func(m Modifiers) { toFocused = m },
		BroadcastModifiersToUnfocused: func(m Modifiers) { broadcast = m; broadcastCalled = true },
	})

	e.HandleModifiers(Event{Mods: ModShift, Virtual: false})
	assert.Equal(t, ModShift, toFocused)
	assert.True(t, broadcastCalled)
	assert.Equal(t, ModShift, broadcast)
}

func TestHandleModifiers_VirtualKeyboardSuppressesBroadcastOnly(t *testing.T) {
	var toFocused Modifiers
	broadcastCalled := false
	e := New(nil, Hooks{
		SendModifiersToFocused:        func(m Modifiers) { toFocused = m },
		BroadcastModifiersToUnfocused: func(m Modifiers) { broadcastCalled = true },
	})

	e.HandleModifiers(Event{Mods: ModCtrl, Virtual: true})
	assert.Equal(t, ModCtrl, toFocused, "the focused client still gets a virtual device's modifiers")
	assert.False(t, broadcastCalled, "virtual keyboards are excluded from the broadcast half only")
}

func TestToggleEnabled(t *testing.T) {
	b := &Bind{ID: "mute", Enabled: true, Toggleable: true}
	binds := []*Bind{b}

	assert.True(t, ToggleEnabled(binds, "mute", boolPtrFor(false)))
	assert.False(t, b.Enabled)

	assert.True(t, ToggleEnabled(binds, "mute", nil))
	assert.True(t, b.Enabled)

	assert.False(t, ToggleEnabled(binds, "nonexistent", nil))
}

func TestToggleEnabled_NonToggleableBindIsNeverFound(t *testing.T) {
	b := &Bind{ID: "volume-up", Enabled: true, Toggleable: false}
	binds := []*Bind{b}

	assert.False(t, ToggleEnabled(binds, "volume-up", nil))
	assert.True(t, b.Enabled, "a non-toggleable bind's Enabled state must be untouched by the control channel")

	assert.False(t, ToggleEnabled(binds, "volume-up", boolPtrFor(false)))
	assert.True(t, b.Enabled)
}

func boolPtrFor(b bool) *bool { return &b }
