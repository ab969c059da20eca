package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/postdeck/internal/kv"
	"github.com/jeanpaul/postdeck/internal/post"
	"github.com/jeanpaul/postdeck/internal/query"
	"github.com/jeanpaul/postdeck/internal/theme"
)

func newTestModel(t *testing.T, seed bool) (Model, *post.Store, *kv.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	slot := kv.NewMemoryStore()
	store := post.NewStore(slot)
	store.Load(ctx)
	if seed {
		_, err := post.Seed(ctx, store)
		require.NoError(t, err)
	}
	pref := theme.NewPreference(slot, theme.Light)
	pref.Load(ctx)

	m := NewModel(ctx, store, pref)
	// Send WindowSize first so the viewport has real dimensions
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 60})
	return m, store, slot
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func typeText(m Model, s string) Model {
	return update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(m Model, keys ...tea.KeyType) Model {
	for _, k := range keys {
		m = update(m, tea.KeyMsg{Type: k})
	}
	return m
}

func visibleTitles(m Model) []string {
	out := []string{}
	for _, p := range m.visible {
		out = append(out, p.Title)
	}
	return out
}

func TestHeaderRendering(t *testing.T) {
	m, _, _ := newTestModel(t, true)

	view := m.View()
	if !strings.Contains(view, "3 posts · 3 categories") {
		t.Error("Header should show post and category counts")
	}
	if !strings.Contains(view, "light") {
		t.Error("Header should show the active theme")
	}
	assert.Contains(t, view, "Hidden Gems of Southeast Asia")
	assert.Contains(t, view, "By Sarah Explorer")
	assert.Contains(t, view, "Category: All Categories")
}

func TestEmptyStates(t *testing.T) {
	m, _, _ := newTestModel(t, false)
	assert.Contains(t, m.View(), "No posts yet")

	m, _, _ = newTestModel(t, true)
	m = typeText(m, "s")
	m = typeText(m, "zzz")
	assert.Empty(t, m.visible)
	assert.Contains(t, m.View(), "No posts found")
}

func TestSelectionMoves(t *testing.T) {
	m, _, _ := newTestModel(t, true)
	assert.Equal(t, 0, m.selected)

	m = typeText(m, "j")
	m = typeText(m, "j")
	m = typeText(m, "j")
	assert.Equal(t, 2, m.selected)

	m = typeText(m, "k")
	assert.Equal(t, 1, m.selected)
}

func TestSearchFiltersAsYouType(t *testing.T) {
	m, _, _ := newTestModel(t, true)

	m = typeText(m, "s")
	require.Equal(t, modeSearch, m.mode)

	m = typeText(m, "GEM")
	assert.Equal(t, []string{"Hidden Gems of Southeast Asia"}, visibleTitles(m))

	// Tags match too.
	m = press(m, tea.KeyBackspace, tea.KeyBackspace, tea.KeyBackspace)
	m = typeText(m, "wellness")
	assert.Equal(t, []string{"The Art of Minimalist Living"}, visibleTitles(m))

	m = press(m, tea.KeyEsc)
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "wellness", m.criteria.Query)

	m = typeText(m, "c")
	assert.Len(t, m.visible, 3)
	assert.Empty(t, m.search.Value())
}

func TestCategoryCycle(t *testing.T) {
	m, _, _ := newTestModel(t, true)
	require.Equal(t, []string{"Lifestyle", "Technology", "Travel"}, m.categories)

	m = press(m, tea.KeyTab)
	assert.Equal(t, "Lifestyle", m.criteria.Category)
	assert.Equal(t, []string{"The Art of Minimalist Living"}, visibleTitles(m))
	assert.Contains(t, m.View(), "Category: Lifestyle")

	m = press(m, tea.KeyShiftTab)
	assert.Equal(t, "", m.criteria.Category)

	m = press(m, tea.KeyShiftTab)
	assert.Equal(t, "Travel", m.criteria.Category)
}

func TestAddPost(t *testing.T) {
	m, store, _ := newTestModel(t, true)

	m = typeText(m, "a")
	require.Equal(t, modeForm, m.mode)
	assert.Contains(t, m.View(), "Add New Post")

	m = typeText(m, "My Post")
	m = press(m, tea.KeyCtrlS)

	// Still in the form, with per-field errors.
	require.Equal(t, modeForm, m.mode)
	view := m.View()
	assert.Contains(t, view, "Author is required")
	assert.Contains(t, view, "Category is required")
	assert.Contains(t, view, "Content is required")
	assert.NotContains(t, view, "Title is required")
	assert.Equal(t, fieldAuthor, m.form.focus)
	assert.Equal(t, 3, store.Len())

	m = typeText(m, "Me")
	m = press(m, tea.KeyTab)
	m = typeText(m, "Tech")
	m = press(m, tea.KeyTab)
	m = typeText(m, "go, , tui")
	m = press(m, tea.KeyTab)
	m = typeText(m, "Body")
	m = press(m, tea.KeyCtrlS)

	require.Equal(t, modeBrowse, m.mode)
	require.Equal(t, 4, store.Len())
	top := store.List()[0]
	assert.Equal(t, "My Post", top.Title)
	assert.Equal(t, "Me", top.Author)
	assert.Equal(t, []string{"go", "tui"}, top.Tags)
	assert.Equal(t, "Body", top.Content)
	assert.Equal(t, 0, m.selected)
	assert.Contains(t, m.View(), `Created "My Post"`)
	assert.Contains(t, m.View(), "4 posts · 4 categories")
}

func TestEditPost(t *testing.T) {
	m, store, _ := newTestModel(t, true)
	before := store.List()[0]

	m = typeText(m, "e")
	require.Equal(t, modeForm, m.mode)
	assert.Contains(t, m.View(), "Edit Post")
	assert.Equal(t, post.InputFrom(before), m.form.Input())

	m = typeText(m, " II")
	m = press(m, tea.KeyCtrlS)
	require.Equal(t, modeBrowse, m.mode)

	after, ok := store.Get(before.ID)
	require.True(t, ok)
	assert.Equal(t, before.Title+" II", after.Title)
	assert.True(t, after.Edited())
	assert.Equal(t, before.ID, store.List()[0].ID)
}

func TestFormEscDiscards(t *testing.T) {
	m, store, _ := newTestModel(t, true)

	m = typeText(m, "a")
	m = typeText(m, "draft")
	m = press(m, tea.KeyEsc)

	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 3, store.Len())
	assert.Empty(t, m.form.Input().Title)
}

func TestDeleteConfirm(t *testing.T) {
	m, store, _ := newTestModel(t, true)

	m = typeText(m, "d")
	require.Equal(t, modeConfirmDelete, m.mode)
	assert.Contains(t, m.View(), "Delete post?")
	assert.Contains(t, m.View(), "Hidden Gems of Southeast Asia")

	m = typeText(m, "n")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 3, store.Len())

	m = typeText(m, "d")
	m = typeText(m, "y")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"The Art of Minimalist Living", "Getting Started with Go"}, visibleTitles(m))
	assert.Contains(t, m.View(), "2 posts · 2 categories")
}

func TestDeleteLastInCategoryResetsFilter(t *testing.T) {
	m, store, _ := newTestModel(t, true)

	m = press(m, tea.KeyTab) // Lifestyle
	m = typeText(m, "d")
	m = press(m, tea.KeyEnter)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, "", m.criteria.Category)
	assert.Len(t, m.visible, 2)
}

func TestNothingSelected(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = typeText(m, "d")
	assert.Equal(t, modeBrowse, m.mode)
	m = typeText(m, "e")
	assert.Equal(t, modeBrowse, m.mode)
}

func TestThemeToggle(t *testing.T) {
	m, _, slot := newTestModel(t, true)

	m = typeText(m, "t")
	assert.Equal(t, theme.Dark, m.pref.Current())
	assert.Equal(t, DarkPalette, m.styles.Palette)
	assert.Contains(t, m.View(), "dark")

	data, err := slot.Get(context.Background(), theme.Key)
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(data))
}

func TestMenuTrigger(t *testing.T) {
	m, _, _ := newTestModel(t, true)

	// Ensure menu starts inactive
	if m.menu.active {
		t.Error("Menu should be inactive on startup")
	}

	m = typeText(m, ":")
	if !m.menu.active {
		t.Error("Menu should be active after pressing ':'")
	}
	assert.Contains(t, m.View(), "New post")

	m = press(m, tea.KeyEsc)
	assert.False(t, m.menu.active)
	assert.Equal(t, modeBrowse, m.mode)
}

func TestMenuSelection(t *testing.T) {
	m, _, _ := newTestModel(t, true)

	m = typeText(m, ":")
	// First item is "New post".
	m = press(m, tea.KeyEnter)

	assert.False(t, m.menu.active, "Menu should close after selection")
	assert.Equal(t, modeForm, m.mode)
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t, true)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// In search mode q is just a letter.
	m = typeText(m, "s")
	m = typeText(m, "q")
	assert.Equal(t, "q", m.search.Value())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "March 1, 2024", formatDate(time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)))
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "1 post · 1 category", statsLine(query.Stats{TotalCount: 1, CategoryCount: 1}))
	assert.Equal(t, "0 posts · 0 categories", statsLine(query.Stats{}))
	assert.Equal(t, allCategories, categoryLabel(""))
}
