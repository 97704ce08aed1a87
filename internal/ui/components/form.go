package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/blink-new/studytrack/internal/ui/theme"
)

// FormField is one row of a Form: a text input, or a fixed set of choices
// cycled with left and right.
type FormField struct {
	Key     string
	Label   string
	Input   TextInput
	Choices []string
	Choice  int
}

// TextField creates a text row.
func TextField(key, label, placeholder string, charLimit int) FormField {
	in := NewTextInput("", placeholder, charLimit)
	in.Blur()
	return FormField{Key: key, Label: label, Input: in}
}

// ChoiceField creates a choice row.
func ChoiceField(key, label string, choices []string, selected int) FormField {
	return FormField{Key: key, Label: label, Choices: choices, Choice: selected}
}

func (f FormField) isChoice() bool { return len(f.Choices) > 0 }

// Form is a vertical list of fields. Enter on the last field submits.
type Form struct {
	Fields    []FormField
	Focus     int
	Submitted bool
}

// NewForm creates a form focused on its first field.
func NewForm(fields ...FormField) Form {
	f := Form{Fields: fields}
	f.focus(0)
	return f
}

func (f *Form) focus(i int) tea.Cmd {
	f.Focus = i
	var cmd tea.Cmd
	for j := range f.Fields {
		if f.Fields[j].isChoice() {
			continue
		}
		if j == i {
			cmd = f.Fields[j].Input.Focus()
		} else {
			f.Fields[j].Input.Blur()
		}
	}
	return cmd
}

// Update handles navigation and forwards other keys to the focused input.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	if f.Submitted || len(f.Fields) == 0 {
		return f, nil
	}
	field := &f.Fields[f.Focus]

	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			return f, f.focus(NextIndex(f.Focus, 1, len(f.Fields)))
		case "shift+tab", "up":
			return f, f.focus(NextIndex(f.Focus, -1, len(f.Fields)))
		case "enter":
			if f.Focus == len(f.Fields)-1 {
				f.Submitted = true
				return f, nil
			}
			return f, f.focus(f.Focus + 1)
		case "left":
			if field.isChoice() {
				field.Choice = NextIndex(field.Choice, -1, len(field.Choices))
				return f, nil
			}
		case "right", "space":
			if field.isChoice() {
				field.Choice = NextIndex(field.Choice, 1, len(field.Choices))
				return f, nil
			}
		}
	}

	if field.isChoice() {
		return f, nil
	}
	var cmd tea.Cmd
	field.Input, cmd = field.Input.Update(msg)
	return f, cmd
}

// Value returns the trimmed text or selected choice of the field named key.
func (f Form) Value(key string) string {
	for _, field := range f.Fields {
		if field.Key != key {
			continue
		}
		if field.isChoice() {
			return field.Choices[field.Choice]
		}
		return field.Input.Value()
	}
	return ""
}

// SetValue fills the text field named key, or selects the matching choice.
func (f *Form) SetValue(key, value string) {
	for i := range f.Fields {
		field := &f.Fields[i]
		if field.Key != key {
			continue
		}
		if !field.isChoice() {
			field.Input.SetValue(value)
			return
		}
		for j, c := range field.Choices {
			if strings.EqualFold(c, value) {
				field.Choice = j
			}
		}
	}
}

// Reopen clears Submitted so the user can correct the form.
func (f *Form) Reopen() {
	f.Submitted = false
}

// View renders every field with the focused one marked.
func (f Form) View() string {
	var b strings.Builder
	for i, field := range f.Fields {
		label := theme.Muted.Render(field.Label)
		if i == f.Focus {
			label = theme.Selected.Render("▸ " + field.Label)
		}
		b.WriteString(label)
		b.WriteString("\n")
		if field.isChoice() {
			parts := make([]string, len(field.Choices))
			for j, c := range field.Choices {
				if j == field.Choice {
					parts[j] = theme.TabActive.Render(c)
				} else {
					parts[j] = theme.TabInactive.Render(c)
				}
			}
			b.WriteString("  ◂ " + strings.Join(parts, " ") + " ▸")
		} else {
			b.WriteString(field.Input.View())
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
