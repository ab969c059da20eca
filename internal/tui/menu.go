package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Action is a command the menu can trigger.
type Action string

const (
	ActionNone         Action = ""
	ActionAdd          Action = "add"
	ActionEdit         Action = "edit"
	ActionDelete       Action = "delete"
	ActionSearch       Action = "search"
	ActionNextCategory Action = "category"
	ActionPrevCategory Action = "category-prev"
	ActionClear        Action = "clear"
	ActionTheme        Action = "theme"
	ActionQuit         Action = "quit"
)

type item struct {
	title, desc string
	action      Action
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

type MenuModel struct {
	list     list.Model
	active   bool
	selected Action
}

func NewMenuModel(styles Styles) MenuModel {
	items := []list.Item{
		item{title: "New post", desc: "Write a new post (a)", action: ActionAdd},
		item{title: "Edit post", desc: "Edit the selected post (e)", action: ActionEdit},
		item{title: "Delete post", desc: "Delete the selected post (d)", action: ActionDelete},
		item{title: "Search", desc: "Search titles and tags (s)", action: ActionSearch},
		item{title: "Next category", desc: "Cycle the category filter (tab)", action: ActionNextCategory},
		item{title: "Clear filters", desc: "Reset search and category (c)", action: ActionClear},
		item{title: "Toggle theme", desc: "Switch light/dark (t)", action: ActionTheme},
		item{title: "Quit", desc: "Exit postdeck (q)", action: ActionQuit},
	}

	m := MenuModel{}
	m.list = list.New(items, menuDelegate(styles), 40, 20) // Fixed size for menu popup
	m.list.Title = "Commands"
	m.list.SetShowHelp(false)
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(true)
	m.restyle(styles)
	return m
}

func menuDelegate(styles Styles) list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(styles.Palette.Accent).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(styles.Palette.Accent).
		PaddingLeft(1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.Foreground(styles.Palette.Muted)
	return d
}

func (m *MenuModel) restyle(styles Styles) {
	m.list.SetDelegate(menuDelegate(styles))
	m.list.Styles.Title = lipgloss.NewStyle().Foreground(styles.Palette.Accent).Bold(true).MarginLeft(2)
}

func (m *MenuModel) Open() {
	m.active = true
	m.selected = ActionNone
	m.list.ResetSelected()
	m.list.ResetFilter()
}

func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
	if !m.active {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc", "q":
			m.active = false
			return m, nil
		case "enter":
			if it, ok := m.list.SelectedItem().(item); ok {
				m.selected = it.action
			}
			m.active = false
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Selected returns the chosen action once and clears it.
func (m *MenuModel) Selected() Action {
	a := m.selected
	m.selected = ActionNone
	return a
}

func (m MenuModel) View(styles Styles) string {
	if !m.active {
		return ""
	}
	return styles.Modal.Render(m.list.View())
}
