package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeanpaul/postdeck/internal/theme"
)

// Palette is one set of colors for a display theme.
type Palette struct {
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	Border  lipgloss.Color
	Surface lipgloss.Color
	TagBG   lipgloss.Color
	Danger  lipgloss.Color
	Success lipgloss.Color
}

var (
	LightPalette = Palette{
		Text:    lipgloss.Color("#1f2937"),
		Muted:   lipgloss.Color("#6b7280"),
		Accent:  lipgloss.Color("#4f46e5"),
		Border:  lipgloss.Color("#d1d5db"),
		Surface: lipgloss.Color("#f9fafb"),
		TagBG:   lipgloss.Color("#e0e7ff"),
		Danger:  lipgloss.Color("#dc2626"),
		Success: lipgloss.Color("#059669"),
	}

	DarkPalette = Palette{
		Text:    lipgloss.Color("#e5e7eb"),
		Muted:   lipgloss.Color("#9ca3af"),
		Accent:  lipgloss.Color("#818cf8"),
		Border:  lipgloss.Color("#374151"),
		Surface: lipgloss.Color("#111827"),
		TagBG:   lipgloss.Color("#312e81"),
		Danger:  lipgloss.Color("#f87171"),
		Success: lipgloss.Color("#34d399"),
	}
)

// Styles are the lipgloss styles derived from a palette.
type Styles struct {
	Palette Palette

	Banner    lipgloss.Style
	Stats     lipgloss.Style
	ThemeTag  lipgloss.Style
	Header    lipgloss.Style
	FilterBar lipgloss.Style
	Label     lipgloss.Style

	Card         lipgloss.Style
	CardSelected lipgloss.Style
	Title        lipgloss.Style
	Meta         lipgloss.Style
	Category     lipgloss.Style
	Content      lipgloss.Style
	Tag          lipgloss.Style

	Empty   lipgloss.Style
	Modal   lipgloss.Style
	Danger  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles builds the styles for t.
func NewStyles(t theme.Theme) Styles {
	p := LightPalette
	if t == theme.Dark {
		p = DarkPalette
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1).
		MarginBottom(1)

	return Styles{
		Palette: p,

		Banner: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		Stats: lipgloss.NewStyle().
			Foreground(p.Muted),
		ThemeTag: lipgloss.NewStyle().
			Foreground(p.Surface).
			Background(p.Accent).
			Bold(true).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(p.Border),
		FilterBar: lipgloss.NewStyle().
			Padding(0, 1),
		Label: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),

		Card: card,
		CardSelected: card.
			BorderForeground(p.Accent).
			BorderStyle(lipgloss.ThickBorder()),
		Title: lipgloss.NewStyle().
			Foreground(p.Text).
			Bold(true),
		Meta: lipgloss.NewStyle().
			Foreground(p.Muted),
		Category: lipgloss.NewStyle().
			Foreground(p.Accent),
		Content: lipgloss.NewStyle().
			Foreground(p.Text),
		Tag: lipgloss.NewStyle().
			Foreground(p.Accent).
			Background(p.TagBG).
			Padding(0, 1),

		Empty: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true).
			Padding(1, 2),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(1, 2),
		Danger: lipgloss.NewStyle().
			Foreground(p.Danger).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(p.Danger),
		Success: lipgloss.NewStyle().
			Foreground(p.Success),
		Help: lipgloss.NewStyle().
			Foreground(p.Muted),
	}
}

const Banner = `┏━┓┏━┓┏━┓╺┳╸╺┳┓┏━╸┏━╸╻┏
┣━┛┃ ┃┗━┓ ┃  ┃┃┣╸ ┃  ┣┻┓
╹  ┗━┛┗━┛ ╹ ╺┻┛┗━╸┗━╸╹ ╹`
