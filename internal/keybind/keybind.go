// Package keybind implements the Keybinding Engine (C5): resolving
// physical key events into actions, per-device filtering, on-release
// semantics, key-repeat timers, and asynchronous condition gating.
// Grounded on the teacher's niri_state.go Update(event) switch-dispatch
// idiom (each input event mutates a small owned struct through an
// explicit case, rather than scattered callbacks) and on inputmode's
// explicit state machine for routing by seat mode.
package keybind

import (
	"strings"
	"time"

	"labwc.dev/core/internal/action"
	"labwc.dev/core/internal/condition"
	"labwc.dev/core/internal/inputmode"
	"labwc.dev/core/log"
)

var logger = log.New("keybind")

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint32

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModLogo
)

// Keysym and Keycode stand in for the Wayland/xkbcommon types excluded
// from this port (spec.md §1): opaque numeric identifiers resolved by the
// excluded keymap layer.
type Keysym uint32
type Keycode uint32

// Condition is a keybind's optional shell-command gate.
type Condition struct {
	Shell  string
	Values map[string]bool
}

// Bind is one configured keybinding. Trigger resolution is lazy: Keysyms
// is populated at config load from keysym names, Keycodes only once a
// concrete keymap is known (callers needing keycode matching populate it
// themselves; nil means "no keycode trigger for this bind").
type Bind struct {
	ID              string
	Mods            Modifiers
	Keysyms         map[Keysym]bool
	Keycodes        map[Keycode]bool
	OnRelease       bool
	AllowWhenLocked bool
	Enabled         bool
	Toggleable      bool
	Blacklist       []string // lower-cased device names
	Whitelist       []string
	Actions         []action.Record
	Condition       *Condition
}

// deviceAllowed implements spec.md §4.5's device-filtering rule.
func (b *Bind) deviceAllowed(device string) bool {
	device = strings.ToLower(device)
	for _, d := range b.Blacklist {
		if d == device {
			return false
		}
	}
	if len(b.Whitelist) == 0 {
		return true
	}
	for _, d := range b.Whitelist {
		if d == device {
			return true
		}
	}
	return false
}

func (b *Bind) inhibited(inhibit map[string]bool) bool {
	for _, a := range b.Actions {
		if inhibit[a.Name] {
			return true
		}
	}
	return false
}

// Event describes one physical key press/release as delivered by the
// (excluded) input backend.
type Event struct {
	Mods       Modifiers
	Keycode    Keycode
	Translated []Keysym
	Raw        []Keysym
	Device     string
	Virtual    bool
	Timestamp  uint32
}

// Resolve finds the first enabled, non-inhibited, device-allowed bind
// matching ev, in the precedence order given by spec.md §4.5: keycode (if
// the device is not virtual), then translated keysyms, then raw keysyms.
func Resolve(binds []*Bind, ev Event, locked bool, inhibit map[string]bool) *Bind {
	eligible := func(b *Bind) bool {
		if !b.Enabled {
			return false
		}
		if b.Mods != ev.Mods {
			return false
		}
		if locked && !b.AllowWhenLocked {
			return false
		}
		if b.inhibited(inhibit) {
			return false
		}
		if !b.deviceAllowed(ev.Device) {
			return false
		}
		return true
	}

	if !ev.Virtual {
		for _, b := range binds {
			if !eligible(b) || len(b.Keycodes) == 0 {
				continue
			}
			if b.Keycodes[ev.Keycode] {
				return b
			}
		}
	}
	for _, k := range ev.Translated {
		for _, b := range binds {
			if !eligible(b) {
				continue
			}
			if b.Keysyms[k] {
				return b
			}
		}
	}
	for _, k := range ev.Raw {
		for _, b := range binds {
			if !eligible(b) {
				continue
			}
			if b.Keysyms[k] {
				return b
			}
		}
	}
	return nil
}

// Hooks are the side effects the engine needs from the rest of the server:
// forwarding unmatched keys to the client, re-injecting a previously
// absorbed press after a failed condition, running a matched bind's
// actions, switching VT, and delivering modifier-only changes.
type Hooks struct {
	ForwardPress   func(ev Event)
	ForwardRelease func(ev Event)
	RunActions     func(b *Bind) error

	// SwitchVT performs the privileged VT switch itself (ioctl on the
	// console device); vt is the 1-based target VT number.
	SwitchVT func(vt int)

	// SendModifiersToFocused and BroadcastModifiersToUnfocused implement
	// the modifier-broadcast rule: every modifier-only change is sent to
	// the focused client, and also broadcast to every other seat client
	// so e.g. a held Shift is reflected everywhere, not just in whichever
	// window has focus.
	SendModifiersToFocused        func(mods Modifiers)
	BroadcastModifiersToUnfocused func(mods Modifiers)
}

// Engine tracks which keycodes are currently bound (so their release can
// be suppressed or routed to on_release) and drives key-repeat timers and
// condition-gated binds. It is not safe for concurrent use; like the
// cooperative loop it is grounded on, all mutation happens from one
// goroutine, which must also drain PumpConditions().
type Engine struct {
	Binds   []*Bind
	Mode    *inputmode.Machine
	Locked  bool
	Inhibit map[string]bool
	Hooks   Hooks

	// VTKeysyms maps a VT-switch keysym (XF86Switch_VT_1..12, resolved by
	// the excluded keymap layer) to its 1-based VT number. Populated by
	// the caller at startup; nil or empty disables VT switching entirely.
	VTKeysyms map[Keysym]int

	bound   map[Keycode]*Bind
	pending map[Keycode]pendingCondition

	repeatTimer *time.Timer
	repeatBind  *Bind
	repeatEv    Event

	conditions chan conditionOutcome
}

type pendingCondition struct {
	bind *Bind
	ev   Event
}

type conditionOutcome struct {
	keycode Keycode
	result  condition.Result
}

// New creates an engine with no bound keys and no pending conditions.
func New(mode *inputmode.Machine, hooks Hooks) *Engine {
	return &Engine{
		Mode:       mode,
		Inhibit:    make(map[string]bool),
		Hooks:      hooks,
		VTKeysyms:  make(map[Keysym]int),
		bound:      make(map[Keycode]*Bind),
		pending:    make(map[Keycode]pendingCondition),
		conditions: make(chan conditionOutcome, 8),
	}
}

// HandlePress implements spec.md §4.5's press-handling algorithm for the
// PASSTHROUGH case (MENU/CYCLE routing happens in the caller, which knows
// about menu/cycle navigation; the engine only exposes Mode for that
// decision). Returns true if the key was consumed (forwarded == false).
func (e *Engine) HandlePress(ev Event) (consumed bool) {
	if vt, ok := e.vtSwitchTarget(ev); ok {
		// VT-switch keysyms always fire and take a privileged path: no
		// Resolve, no lock gate, no inhibit gate, and any key-repeat in
		// progress is dropped since the VT is about to change under it.
		e.cancelRepeat()
		if e.Hooks.SwitchVT != nil {
			e.Hooks.SwitchVT(vt)
		}
		return true
	}

	e.cancelRepeat()

	b := Resolve(e.Binds, ev, e.Locked, e.Inhibit)
	if b == nil {
		if e.Hooks.ForwardPress != nil {
			e.Hooks.ForwardPress(ev)
		}
		return false
	}

	if b.OnRelease {
		e.bound[ev.Keycode] = b
		return true
	}

	e.bound[ev.Keycode] = b
	if b.Condition != nil {
		e.pending[ev.Keycode] = pendingCondition{bind: b, ev: ev}
		go func(kc Keycode, c *Condition) {
			res := condition.Run(c.Shell, c.Values)
			e.conditions <- conditionOutcome{keycode: kc, result: res}
		}(ev.Keycode, b.Condition)
		return true
	}

	logger.Debugf("bind %q matched, running actions", b.ID)
	if e.Hooks.RunActions != nil {
		e.Hooks.RunActions(b)
	}
	return true
}

// HandleRelease implements spec.md §4.5's release-handling algorithm.
func (e *Engine) HandleRelease(ev Event) (consumed bool) {
	e.cancelRepeat()

	b, wasBound := e.bound[ev.Keycode]
	delete(e.bound, ev.Keycode)

	if _, stillPending := e.pending[ev.Keycode]; stillPending {
		// Condition still running; the release stays absorbed
		// regardless of outcome (spec.md §9 open question).
		return true
	}

	if wasBound && b.OnRelease {
		if b.Condition != nil {
			e.pending[ev.Keycode] = pendingCondition{bind: b, ev: ev}
			go func(kc Keycode, c *Condition) {
				res := condition.Run(c.Shell, c.Values)
				e.conditions <- conditionOutcome{keycode: kc, result: res}
			}(ev.Keycode, b.Condition)
			return true
		}
		if e.Hooks.RunActions != nil {
			e.Hooks.RunActions(b)
		}
		return true
	}

	if wasBound {
		return true
	}

	if e.Hooks.ForwardRelease != nil {
		e.Hooks.ForwardRelease(ev)
	}
	return false
}

// vtSwitchTarget reports whether ev carries one of the configured
// VT-switch keysyms, checking translated syms first and falling back to
// raw ones (virtual keyboards commonly only populate one of the two).
func (e *Engine) vtSwitchTarget(ev Event) (vt int, ok bool) {
	if len(e.VTKeysyms) == 0 {
		return 0, false
	}
	for _, k := range ev.Translated {
		if n, found := e.VTKeysyms[k]; found {
			return n, true
		}
	}
	for _, k := range ev.Raw {
		if n, found := e.VTKeysyms[k]; found {
			return n, true
		}
	}
	return 0, false
}

// HandleModifiers implements spec.md §4.5's modifier-broadcast rule: a
// modifier-only change (no associated keysym) is sent to the focused
// client and also broadcast to every other seat client, so e.g. a held
// Shift shows up consistently across windows rather than only in
// whichever one has focus. Virtual keyboards are excluded from the
// broadcast half, since synthetic modifier state from one virtual device
// has no business leaking into unrelated real clients.
func (e *Engine) HandleModifiers(ev Event) {
	if e.Hooks.SendModifiersToFocused != nil {
		e.Hooks.SendModifiersToFocused(ev.Mods)
	}
	if ev.Virtual {
		return
	}
	if e.Hooks.BroadcastModifiersToUnfocused != nil {
		e.Hooks.BroadcastModifiersToUnfocused(ev.Mods)
	}
}

// DeliverCondition completes a condition outcome previously started by
// HandlePress/HandleRelease. The caller's event loop reads this off
// whatever channel it uses to bridge e's internal goroutines back onto the
// loop (a real integration would select on a case wrapping e's internal
// channel; PumpConditions below does exactly that for a single call).
func (e *Engine) DeliverCondition(keycode Keycode, res condition.Result) {
	pc, ok := e.pending[keycode]
	if !ok {
		return
	}
	delete(e.pending, keycode)

	if res.TimedOut || res.Err != nil {
		// ConditionTimeout / SpawnError: drop the bind for this event;
		// the original press is not forwarded (timeout) or is treated
		// as "condition false" (spawn error) per spec.md §7.
		if res.TimedOut {
			logger.Warnf("condition for bind %q timed out", pc.bind.ID)
		} else {
			logger.Warnf("condition for bind %q failed to spawn: %v", pc.bind.ID, res.Err)
			delete(e.bound, keycode)
			if e.Hooks.ForwardPress != nil {
				e.Hooks.ForwardPress(pc.ev)
			}
		}
		return
	}

	if !res.Matched {
		delete(e.bound, keycode)
		if e.Hooks.ForwardPress != nil {
			e.Hooks.ForwardPress(pc.ev)
		}
		return
	}

	if e.Hooks.RunActions != nil {
		e.Hooks.RunActions(pc.bind)
	}
}

// PumpConditions drains any condition outcomes that have already arrived,
// delivering each. Call this from the server's main select loop whenever
// it wakes for any reason; it never blocks.
func (e *Engine) PumpConditions() {
	for {
		select {
		case out := <-e.conditions:
			e.DeliverCondition(out.keycode, out.result)
		default:
			return
		}
	}
}

// StartRepeatTimer arms repeat for b/ev at the given delay and rate,
// canceling any previous timer first (spec.md §4.5: "Any new press or
// release cancels the timer").
func (e *Engine) StartRepeatTimer(b *Bind, ev Event, delay time.Duration, rateHz float64) {
	e.cancelRepeat()
	if rateHz <= 0 || delay <= 0 {
		return
	}
	e.repeatBind = b
	e.repeatEv = ev
	period := time.Duration(float64(time.Second) / rateHz)
	e.repeatTimer = time.AfterFunc(delay, func() {
		e.fireRepeat(period)
	})
}

func (e *Engine) fireRepeat(period time.Duration) {
	if e.repeatBind == nil {
		return
	}
	if e.Hooks.RunActions != nil {
		e.Hooks.RunActions(e.repeatBind)
	}
	e.repeatTimer = time.AfterFunc(period, func() {
		e.fireRepeat(period)
	})
}

// cancelRepeat stops any running repeat timer. Safe to call when none is
// running.
func (e *Engine) cancelRepeat() {
	if e.repeatTimer != nil {
		e.repeatTimer.Stop()
		e.repeatTimer = nil
	}
	e.repeatBind = nil
}

// Reset drops all key-repeat and condition contexts, per spec.md §8's
// SIGHUP invariant ("all previous key-repeat and condition contexts are
// dropped").
func (e *Engine) Reset() {
	logger.Infof("resetting keybinding engine state")
	e.cancelRepeat()
	e.bound = make(map[Keycode]*Bind)
	e.pending = make(map[Keycode]pendingCondition)
	for {
		select {
		case <-e.conditions:
		default:
			return
		}
	}
}

// ToggleEnabled implements the control channel's enable/disable/toggle
// keybind commands. It returns false if id does not name any bind, or
// names one that is not toggleable: enabled is only ever true for a
// non-toggleable bind because its config set it so, and the control
// channel may not override that.
func ToggleEnabled(binds []*Bind, id string, want *bool) bool {
	found := false
	for _, b := range binds {
		if b.ID != id {
			continue
		}
		if !b.Toggleable {
			continue
		}
		found = true
		if want == nil {
			b.Enabled = !b.Enabled
		} else {
			b.Enabled = *want
		}
	}
	return found
}

// CycleDirection is the navigation intent decoded from a key in CYCLE
// input mode (spec.md §4.5).
type CycleDirection int

const (
	CycleNone CycleDirection = iota
	CycleForward
	CycleBackward
	CycleAbort
)

// DecodeCycleKey maps a translated keysym to a cycle-mode navigation
// intent. Only non-modifier keys respond; modifiers are handled by
// OnModifiersReleased instead.
func DecodeCycleKey(k Keysym, escape, up, down, left, right Keysym) CycleDirection {
	switch k {
	case escape:
		return CycleAbort
	case up, left:
		return CycleBackward
	case down, right:
		return CycleForward
	default:
		return CycleNone
	}
}

// MenuAction is the navigation intent decoded from a key while in MENU
// input mode (spec.md §4.5).
type MenuAction int

const (
	MenuNone MenuAction = iota
	MenuUp
	MenuDown
	MenuLeft
	MenuRight
	MenuActivate
	MenuClose
)

// DecodeMenuKey maps a translated keysym to a menu navigation intent, the
// MENU-mode counterpart to DecodeCycleKey: the key is consumed and routed
// to menu navigation (Up/Down/Left/Right/Enter/Escape) by the caller,
// which owns the actual menu widget and item list.
func DecodeMenuKey(k Keysym, up, down, left, right, enter, escape Keysym) MenuAction {
	switch k {
	case up:
		return MenuUp
	case down:
		return MenuDown
	case left:
		return MenuLeft
	case right:
		return MenuRight
	case enter:
		return MenuActivate
	case escape:
		return MenuClose
	default:
		return MenuNone
	}
}

// OnModifiersReleased is called when every modifier has gone up. In CYCLE
// mode it returns true when no bound key is still held, so cycling can
// finish now. When a bound key is still held, or outside CYCLE mode, it
// returns false and records nothing: the engine keeps no "cancel on next
// key release" state, and HandleRelease does not finish cycling.
func (e *Engine) OnModifiersReleased() (finishNow bool) {
	if e.Mode == nil || e.Mode.Current() != inputmode.Cycle {
		return false
	}
	return len(e.bound) == 0
}
