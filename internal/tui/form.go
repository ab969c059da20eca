package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeanpaul/postdeck/internal/post"
)

// Form field order. The content textarea comes last.
const (
	fieldTitle = iota
	fieldAuthor
	fieldCategory
	fieldTags
	fieldContent
	fieldCount
)

var fieldNames = [fieldCount]string{
	post.FieldTitle, post.FieldAuthor, post.FieldCategory, "tags", post.FieldContent,
}

var fieldLabels = [fieldCount]string{"Title", "Author", "Category", "Tags", "Content"}

// FormModel is the add/edit post modal.
type FormModel struct {
	inputs  [fieldTags + 1]textinput.Model
	content textarea.Model
	focus   int
	editID  string
	errors  post.ValidationErrors
}

func NewFormModel() FormModel {
	var f FormModel
	placeholders := [fieldTags + 1]string{
		"Enter post title",
		"Your name",
		"e.g. Technology",
		"Comma separated, e.g. go, cli",
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Prompt = ""
		ti.CharLimit = 200
		f.inputs[i] = ti
	}

	ta := textarea.New()
	ta.Placeholder = "Write your post..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(6)
	ta.SetWidth(60)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	f.content = ta
	return f
}

// OpenNew shows an empty form for a new post.
func (f *FormModel) OpenNew() tea.Cmd {
	f.editID = ""
	return f.open(post.Input{})
}

// OpenEdit shows the form prefilled with p.
func (f *FormModel) OpenEdit(p post.Post) tea.Cmd {
	f.editID = p.ID
	return f.open(post.InputFrom(p))
}

func (f *FormModel) open(in post.Input) tea.Cmd {
	f.inputs[fieldTitle].SetValue(in.Title)
	f.inputs[fieldAuthor].SetValue(in.Author)
	f.inputs[fieldCategory].SetValue(in.Category)
	f.inputs[fieldTags].SetValue(in.Tags)
	for i := range f.inputs {
		f.inputs[i].CursorEnd()
	}
	f.content.SetValue(in.Content)
	f.errors = nil
	return f.setFocus(fieldTitle)
}

// Close hides the form and clears it.
func (f *FormModel) Close() {
	f.editID = ""
	f.errors = nil
	for i := range f.inputs {
		f.inputs[i].Reset()
		f.inputs[i].Blur()
	}
	f.content.Reset()
	f.content.Blur()
}

// Editing reports whether the form edits an existing post.
func (f FormModel) Editing() bool { return f.editID != "" }

// Input collects the raw field values.
func (f FormModel) Input() post.Input {
	return post.Input{
		Title:    f.inputs[fieldTitle].Value(),
		Author:   f.inputs[fieldAuthor].Value(),
		Category: f.inputs[fieldCategory].Value(),
		Tags:     f.inputs[fieldTags].Value(),
		Content:  f.content.Value(),
	}
}

// SetErrors shows per-field messages and moves focus to the first bad field.
func (f *FormModel) SetErrors(errs post.ValidationErrors) tea.Cmd {
	f.errors = errs
	for i, name := range fieldNames {
		if _, bad := errs[name]; bad {
			return f.setFocus(i)
		}
	}
	return nil
}

func (f *FormModel) setFocus(i int) tea.Cmd {
	f.focus = i
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	f.content.Blur()
	if i == fieldContent {
		return f.content.Focus()
	}
	return f.inputs[i].Focus()
}

func (f FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			if key.String() == "down" && f.focus == fieldContent {
				break
			}
			return f, f.setFocus((f.focus + 1) % fieldCount)
		case "shift+tab", "up":
			if key.String() == "up" && f.focus == fieldContent {
				break
			}
			return f, f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		}
	}

	var cmd tea.Cmd
	if f.focus == fieldContent {
		f.content, cmd = f.content.Update(msg)
	} else {
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	}
	return f, cmd
}

func (f FormModel) View(s Styles) string {
	var b strings.Builder

	title := "Add New Post"
	if f.Editing() {
		title = "Edit Post"
	}
	b.WriteString(s.Label.Render(title) + "\n\n")

	for i := 0; i < fieldCount; i++ {
		label := fieldLabels[i]
		if i != fieldTags {
			label += " *"
		}
		if i == f.focus {
			b.WriteString(s.Label.Render("› " + label))
		} else {
			b.WriteString(s.Meta.Render("  " + label))
		}
		b.WriteString("\n")

		if i == fieldContent {
			b.WriteString(f.content.View())
		} else {
			b.WriteString("  " + f.inputs[i].View())
		}
		b.WriteString("\n")

		if msg, bad := f.errors[fieldNames[i]]; bad {
			b.WriteString(s.Error.Render("  "+msg) + "\n")
		}
	}

	b.WriteString("\n" + s.Help.Render("tab: next field • ctrl+s: save • esc: cancel"))
	return s.Modal.Render(b.String())
}
