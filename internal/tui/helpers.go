package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeanpaul/postdeck/internal/post"
	"github.com/jeanpaul/postdeck/internal/query"
	"github.com/jeanpaul/postdeck/internal/theme"
)

const allCategories = "All Categories"

// formatDate renders t the way post cards show it, e.g. "March 1, 2024".
func formatDate(t time.Time) string {
	return t.Local().Format("January 2, 2006")
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func statsLine(s query.Stats) string {
	return plural(s.TotalCount, "post", "posts") + " · " + plural(s.CategoryCount, "category", "categories")
}

func themeLabel(t theme.Theme) string {
	if t == theme.Dark {
		return "☾ dark"
	}
	return "☀ light"
}

func categoryLabel(c string) string {
	if c == "" {
		return allCategories
	}
	return c
}

// renderCard draws one post. width is the outer width of the card.
func renderCard(p post.Post, s Styles, width int, selected bool) string {
	box := s.Card
	if selected {
		box = s.CardSelected
	}
	inner := width - box.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}

	meta := []string{
		s.Meta.Render("By " + p.Author),
		s.Meta.Render(formatDate(p.CreatedAt)),
		s.Category.Render(p.Category),
	}
	if p.Edited() {
		meta = append(meta, s.Meta.Render("(edited)"))
	}

	lines := []string{
		s.Title.Render(truncate(p.Title, inner)),
		strings.Join(meta, s.Meta.Render(" · ")),
		"",
		s.Content.Width(inner).Render(p.Content),
	}

	if len(p.Tags) > 0 {
		tags := make([]string, 0, len(p.Tags))
		for _, tag := range p.Tags {
			tags = append(tags, s.Tag.Render(tag))
		}
		lines = append(lines, "", lipgloss.NewStyle().Width(inner).Render(strings.Join(tags, " ")))
	}

	return box.Width(inner + box.GetHorizontalPadding()).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderCard draws p the way the browser does, for non-interactive output.
func RenderCard(p post.Post, s Styles, width int) string {
	return renderCard(p, s, width, false)
}
