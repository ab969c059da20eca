// Package theme holds the light/dark display preference and persists it in
// its own kv slot key.
package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jeanpaul/postdeck/internal/kv"
	"github.com/jeanpaul/postdeck/internal/logging"
)

// Theme is the display theme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Key is the slot key holding the preference.
const Key = "postdeck_theme"

// Parse accepts "light" or "dark" in any case.
func Parse(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	default:
		return "", fmt.Errorf("theme: unknown theme %q (must be light or dark)", s)
	}
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) String() string { return string(t) }

// Encode returns the stored form of t, a JSON string.
func Encode(t Theme) []byte {
	data, _ := json.Marshal(string(t))
	return data
}

// Decode parses a stored value. Bare words written by older versions are
// accepted too.
func Decode(data []byte) (Theme, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	return Parse(s)
}

// Preference reads and writes the persisted theme.
type Preference struct {
	slot     kv.Store
	fallback Theme
	current  Theme
	log      *logrus.Entry
}

// NewPreference returns a Preference that reports fallback until Load finds
// a stored value.
func NewPreference(slot kv.Store, fallback Theme) *Preference {
	if fallback != Dark {
		fallback = Light
	}
	return &Preference{
		slot:     slot,
		fallback: fallback,
		current:  fallback,
		log:      logging.For("theme"),
	}
}

// Load reads the stored theme. Missing, unreadable or unknown values fall
// back to the default.
func (p *Preference) Load(ctx context.Context) Theme {
	p.current = p.fallback

	data, err := p.slot.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			p.log.WithError(err).Error("loading theme from storage")
		}
		return p.current
	}
	t, err := Decode(data)
	if err != nil {
		p.log.WithError(err).Warn("ignoring stored theme")
		return p.current
	}
	p.current = t
	return t
}

// Current returns the theme in effect.
func (p *Preference) Current() Theme {
	return p.current
}

// Set applies t and persists it. The theme stays applied when the write
// fails.
func (p *Preference) Set(ctx context.Context, t Theme) error {
	p.current = t
	if err := p.slot.Set(ctx, Key, Encode(t)); err != nil {
		p.log.WithError(err).Error("saving theme to storage")
		return fmt.Errorf("theme: save: %w", err)
	}
	return nil
}

// Toggle switches to the other theme and persists it.
func (p *Preference) Toggle(ctx context.Context) (Theme, error) {
	next := p.current.Toggle()
	return next, p.Set(ctx, next)
}
