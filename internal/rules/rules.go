// Package rules matches per-view rules (tiling direction preference, fixed
// position, tile eligibility, inhibited actions) against a view's
// identity. Grounded on the teacher's module/config.go and module/module.go
// WindowRuleConfig/WindowRule regex-matching idiom — the GTK rendering
// code around it is gone, but the rule shape and continue-chaining match
// loop are kept and generalized from "pick a CSS class" to "configure
// tiling and action inhibition".
package rules

import (
	"encoding/json"
	"fmt"
	"regexp"

	"labwc.dev/core/internal/core"
	"labwc.dev/core/jsonc"
)

// TileDirection is a view's declared preference for grid orientation, fed
// into the tiling engine's layout-direction choice (spec.md §4.4 step 2).
type TileDirection int

const (
	TileDirectionAuto TileDirection = iota
	TileDirectionVertical
	TileDirectionHorizontal
)

// Config is the on-disk shape of a single rule entry.
type Config struct {
	AppID         string   `json:"app-id"`
	Title         string   `json:"title"`
	TileDirection string   `json:"tile-direction"`
	FixedPosition bool     `json:"fixed-position"`
	Tile          *bool    `json:"tile"`
	Inhibit       []string `json:"inhibit"`
	Continue      bool     `json:"continue"`
}

// Rule is a compiled rule ready for matching.
type Rule struct {
	appID         *regexp.Regexp
	title         *regexp.Regexp
	TileDirection TileDirection
	FixedPosition bool
	// TileDisabled is true when the rule sets tile=false.
	TileDisabled bool
	Inhibit      []string
	Continue     bool
}

// Load sanitizes JSONC comments out of data and compiles the resulting
// rule list.
func Load(data []byte) ([]Rule, error) {
	clean, err := jsonc.Sanitize(data)
	if err != nil {
		return nil, fmt.Errorf("rules: %w: %v", core.ErrConfigError, err)
	}
	var configs []Config
	if err := json.Unmarshal(clean, &configs); err != nil {
		return nil, fmt.Errorf("rules: %w: invalid rule list: %v", core.ErrConfigError, err)
	}
	out := make([]Rule, len(configs))
	for i, cfg := range configs {
		r, err := compile(cfg)
		if err != nil {
			return nil, fmt.Errorf("rules: rule %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

func compile(cfg Config) (Rule, error) {
	var r Rule
	var err error
	if cfg.AppID != "" {
		r.appID, err = regexp.Compile(cfg.AppID)
		if err != nil {
			return r, fmt.Errorf("compiling app-id regex: %w: %v", core.ErrConfigError, err)
		}
	}
	if cfg.Title != "" {
		r.title, err = regexp.Compile(cfg.Title)
		if err != nil {
			return r, fmt.Errorf("compiling title regex: %w: %v", core.ErrConfigError, err)
		}
	}
	switch cfg.TileDirection {
	case "vertical":
		r.TileDirection = TileDirectionVertical
	case "horizontal":
		r.TileDirection = TileDirectionHorizontal
	}
	r.FixedPosition = cfg.FixedPosition
	if cfg.Tile != nil && !*cfg.Tile {
		r.TileDisabled = true
	}
	r.Inhibit = cfg.Inhibit
	r.Continue = cfg.Continue
	return r, nil
}

// Identity is the minimal view identity a rule set is matched against.
type Identity struct {
	AppID string
	Title string
}

// Matched is the accumulated effect of every rule matching an identity, in
// rule order, honoring each rule's Continue flag the way module.go's
// ApplyConfig loop did: the first matching rule without Continue=true
// stops the scan.
type Matched struct {
	TileDirection TileDirection
	FixedPosition bool
	TileDisabled  bool
	Inhibit       map[string]bool
}

// Match evaluates rules against id in order.
func Match(rules []Rule, id Identity) Matched {
	m := Matched{Inhibit: make(map[string]bool)}
	for _, r := range rules {
		appMatched := r.appID == nil
		titleMatched := r.title == nil
		if r.appID != nil && r.appID.MatchString(id.AppID) {
			appMatched = true
		}
		if r.title != nil && r.title.MatchString(id.Title) {
			titleMatched = true
		}
		if !appMatched || !titleMatched {
			continue
		}
		if r.TileDirection != TileDirectionAuto {
			m.TileDirection = r.TileDirection
		}
		if r.FixedPosition {
			m.FixedPosition = true
		}
		if r.TileDisabled {
			m.TileDisabled = true
		}
		for _, a := range r.Inhibit {
			m.Inhibit[a] = true
		}
		if !r.Continue {
			break
		}
	}
	return m
}
