// Package tui is the terminal front end: a post browser with search, a
// category filter, an add/edit form and a delete confirmation.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/jeanpaul/postdeck/internal/logging"
	"github.com/jeanpaul/postdeck/internal/post"
	"github.com/jeanpaul/postdeck/internal/query"
	"github.com/jeanpaul/postdeck/internal/theme"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeForm
	modeConfirmDelete
	modeMenu
)

const (
	headerH = 5 // banner (3) + stats line + border
	filterH = 2
	footerH = 2
)

type Model struct {
	width, height int
	viewport      viewport.Model
	search        textinput.Model
	form          FormModel
	menu          MenuModel
	mode          mode

	ctx    context.Context
	store  *post.Store
	pref   *theme.Preference
	styles Styles
	log    *logrus.Entry

	criteria   query.Criteria
	categories []string
	visible    []post.Post
	selected   int
	deleteID   string

	status    string
	statusErr bool
}

// NewModel builds the browser over an already loaded store.
func NewModel(ctx context.Context, store *post.Store, pref *theme.Preference) Model {
	styles := NewStyles(pref.Current())

	search := textinput.New()
	search.Placeholder = "Search by title or tags..."
	search.Prompt = "/ "
	search.CharLimit = 100

	m := Model{
		viewport: viewport.New(80, 20),
		search:   search,
		form:     NewFormModel(),
		menu:     NewMenuModel(styles),
		ctx:      ctx,
		store:    store,
		pref:     pref,
		styles:   styles,
		log:      logging.For("tui"),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerH-filterH-footerH, 3)
		m.form.content.SetWidth(min(max(msg.Width-12, 20), 80))
		m.rebuildView()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeMenu:
			return m.updateMenu(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeSearch:
			return m.updateSearch(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeForm:
		m.form, cmd = m.form.Update(msg)
	case modeMenu:
		m.menu, cmd = m.menu.Update(msg)
	case modeSearch:
		m.search, cmd = m.search.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveSelection(-1)
	case "down", "j":
		m.moveSelection(1)
	case "pgup":
		m.viewport.HalfViewUp()
	case "pgdown":
		m.viewport.HalfViewDown()
	case ":":
		m.menu.Open()
		m.mode = modeMenu
	default:
		return m.run(actionForKey(msg.String()))
	}
	return m, nil
}

func actionForKey(key string) Action {
	switch key {
	case "a", "n":
		return ActionAdd
	case "e", "enter":
		return ActionEdit
	case "d", "delete":
		return ActionDelete
	case "s", "/":
		return ActionSearch
	case "tab":
		return ActionNextCategory
	case "shift+tab":
		return ActionPrevCategory
	case "c":
		return ActionClear
	case "t":
		return ActionTheme
	}
	return ActionNone
}

// run performs a browse-mode action, whether it came from a key or the menu.
func (m Model) run(a Action) (tea.Model, tea.Cmd) {
	switch a {
	case ActionAdd:
		m.mode = modeForm
		return m, m.form.OpenNew()
	case ActionEdit:
		p, ok := m.current()
		if !ok {
			return m, nil
		}
		m.mode = modeForm
		return m, m.form.OpenEdit(p)
	case ActionDelete:
		p, ok := m.current()
		if !ok {
			return m, nil
		}
		m.deleteID = p.ID
		m.mode = modeConfirmDelete
	case ActionSearch:
		m.mode = modeSearch
		return m, m.search.Focus()
	case ActionNextCategory:
		m.cycleCategory(1)
	case ActionPrevCategory:
		m.cycleCategory(-1)
	case ActionClear:
		m.search.SetValue("")
		m.criteria = query.Criteria{}
		m.selected = 0
		m.refresh()
	case ActionTheme:
		m.toggleTheme()
	case ActionQuit:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "down", "tab":
		m.search.Blur()
		m.mode = modeBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != m.criteria.Query {
		m.criteria.Query = q
		m.selected = 0
		m.refresh()
	}
	return m, cmd
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	if m.menu.active {
		return m, cmd
	}
	m.mode = modeBrowse
	return m.run(m.menu.Selected())
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form.Close()
		m.mode = modeBrowse
		return m, nil
	case "ctrl+s":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	in := m.form.Input()
	if errs := m.store.Validate(in); len(errs) > 0 {
		return m, m.form.SetErrors(errs)
	}

	var (
		saved post.Post
		err   error
		verb  = "Created"
	)
	if m.form.Editing() {
		verb = "Updated"
		saved, err = m.store.Update(m.ctx, m.form.editID, in)
	} else {
		saved, err = m.store.Create(m.ctx, in)
	}

	var verr *post.ValidationError
	switch {
	case errors.As(err, &verr):
		return m, m.form.SetErrors(verr.Fields)
	case errors.Is(err, post.ErrNotFound):
		m.setStatus("That post no longer exists", true)
	case errors.Is(err, post.ErrPersistence):
		m.setStatus(verb+" \""+saved.Title+"\" but it could not be saved: "+err.Error(), true)
	case err != nil:
		m.setStatus(err.Error(), true)
	default:
		m.setStatus(verb+" \""+saved.Title+"\"", false)
	}

	m.form.Close()
	m.mode = modeBrowse
	m.refresh()
	if saved.ID != "" {
		m.selectID(saved.ID)
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		id := m.deleteID
		m.deleteID = ""
		m.mode = modeBrowse
		if err := m.store.Delete(m.ctx, id); err != nil {
			m.setStatus("Deleted, but the change could not be saved: "+err.Error(), true)
		} else {
			m.setStatus("Post deleted", false)
		}
		m.refresh()
	case "n", "N", "esc":
		m.deleteID = ""
		m.mode = modeBrowse
	}
	return m, nil
}

func (m *Model) toggleTheme() {
	next, err := m.pref.Toggle(m.ctx)
	m.styles = NewStyles(next)
	m.menu.restyle(m.styles)
	if err != nil {
		m.setStatus("Theme changed but not saved: "+err.Error(), true)
	} else {
		m.setStatus("Theme: "+next.String(), false)
	}
	m.rebuildView()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
	if isErr {
		m.log.Warn(s)
	}
}

// refresh re-reads the store and reapplies the current filters.
func (m *Model) refresh() {
	posts := m.store.List()
	m.categories = query.DistinctCategories(posts)
	m.criteria = m.criteria.Reconcile(m.categories)
	m.visible = m.criteria.Apply(posts)
	if m.selected >= len(m.visible) {
		m.selected = len(m.visible) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.rebuildView()
}

func (m *Model) cycleCategory(step int) {
	options := append([]string{""}, m.categories...)
	idx := 0
	for i, c := range options {
		if c == m.criteria.Category {
			idx = i
			break
		}
	}
	idx = (idx + step + len(options)) % len(options)
	m.criteria.Category = options[idx]
	m.selected = 0
	m.refresh()
}

func (m *Model) current() (post.Post, bool) {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return post.Post{}, false
	}
	return m.visible[m.selected], true
}

func (m *Model) selectID(id string) {
	for i, p := range m.visible {
		if p.ID == id {
			m.selected = i
			m.rebuildView()
			return
		}
	}
}

func (m *Model) moveSelection(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.visible)-1)
	m.rebuildView()
}

func (m *Model) rebuildView() {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	if len(m.visible) == 0 {
		msg := "No posts found. Try adjusting your search or filters."
		if m.store.Len() == 0 {
			msg = "No posts yet. Press a to write your first post."
		}
		m.viewport.SetContent(m.styles.Empty.Render(msg))
		m.viewport.GotoTop()
		return
	}

	var sb strings.Builder
	top, bottom := 0, 0
	line := 0
	for i, p := range m.visible {
		card := renderCard(p, m.styles, width, i == m.selected)
		h := lipgloss.Height(card)
		if i == m.selected {
			top, bottom = line, line+h
		}
		sb.WriteString(card)
		sb.WriteString("\n")
		line += h
	}
	m.viewport.SetContent(sb.String())

	// Keep the selected card on screen.
	if top < m.viewport.YOffset {
		m.viewport.SetYOffset(top)
	} else if bottom > m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(min(top, bottom-m.viewport.Height))
	}
}

func (m Model) View() string {
	s := m.styles

	// --- Header ---
	stats := query.Summarize(m.store.List())
	right := lipgloss.JoinVertical(lipgloss.Right,
		s.ThemeTag.Render(themeLabel(m.pref.Current())),
		"",
		s.Stats.Render(statsLine(stats)),
	)
	left := s.Banner.Render(Banner)
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 2)
	header := s.Header.Width(max(m.width, 1)).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, " "+left, strings.Repeat(" ", gap), right),
	)

	// --- Filters ---
	searchView := m.search.View()
	if m.mode != modeSearch && m.search.Value() == "" {
		searchView = s.Help.Render("s: search titles and tags")
	}
	category := s.Label.Render("Category: ") + categoryLabel(m.criteria.Category)
	filters := s.FilterBar.Render(searchView + "   " + category)

	// --- Body ---
	body := m.viewport.View()
	switch m.mode {
	case modeForm:
		body = m.overlay(m.form.View(s))
	case modeConfirmDelete:
		body = m.overlay(m.confirmView())
	case modeMenu:
		body = m.overlay(m.menu.View(s))
	}

	// --- Footer ---
	status := ""
	if m.status != "" {
		if m.statusErr {
			status = s.Error.Render(m.status)
		} else {
			status = s.Success.Render(m.status)
		}
	}
	help := s.Help.Render(m.helpText())

	return lipgloss.JoinVertical(lipgloss.Left, header, filters, body, " "+status, " "+help)
}

func (m Model) overlay(content string) string {
	h := m.viewport.Height
	if h < lipgloss.Height(content) {
		return content
	}
	return lipgloss.Place(max(m.width, lipgloss.Width(content)), h, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) confirmView() string {
	title := m.deleteID
	if p, ok := m.store.Get(m.deleteID); ok {
		title = p.Title
	}
	return m.styles.Modal.BorderForeground(m.styles.Palette.Danger).Render(
		m.styles.Danger.Render("Delete post?") + "\n\n" +
			fmt.Sprintf("%q will be removed. This cannot be undone.", title) + "\n\n" +
			m.styles.Help.Render("y/enter: delete • n/esc: cancel"),
	)
}

func (m Model) helpText() string {
	switch m.mode {
	case modeSearch:
		return "type to filter • enter/esc: done"
	case modeForm:
		return "tab: next field • ctrl+s: save • esc: cancel"
	case modeConfirmDelete:
		return "y: delete • n: cancel"
	case modeMenu:
		return "↑/↓: navigate • enter: select • esc: close"
	}
	return "↑/↓: select • a: add • e: edit • d: delete • s: search • tab: category • c: clear • t: theme • ':' menu • q: quit"
}
