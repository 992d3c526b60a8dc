package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/digita/internal/model"
)

const (
	fieldName = iota
	fieldEmail
	fieldMatricula
	fieldExternalID
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Nome completo",
	"E-mail",
	"Matrícula",
	"CPF (se não tiver matrícula)",
}

// userForm collects the participant data before the first attempt.
type userForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	errMsg string
}

func newUserForm(u model.UserData) userForm {
	var f userForm
	limits := [fieldCount]int{100, 255, 10, 14}
	values := [fieldCount]string{u.Name, u.Email, u.Matricula, u.ExternalID}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = limits[i]
		in.Width = 40
		in.SetValue(values[i])
		f.inputs[i] = in
	}
	f.inputs[fieldName].Placeholder = "Maria da Silva"
	f.inputs[fieldEmail].Placeholder = "maria@exemplo.com"
	f.inputs[fieldMatricula].Placeholder = "4 a 10 dígitos"
	f.inputs[fieldExternalID].Placeholder = "000.000.000-00"
	f.inputs[fieldName].Focus()
	return f
}

func (f userForm) user() model.UserData {
	return model.UserData{
		Name:       f.inputs[fieldName].Value(),
		Email:      f.inputs[fieldEmail].Value(),
		Matricula:  f.inputs[fieldMatricula].Value(),
		ExternalID: f.inputs[fieldExternalID].Value(),
	}
}

func (f *userForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

// update feeds a key to the focused input. It reports whether the form was submitted.
func (f *userForm) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		f.move(1)
		return false, nil
	case "shift+tab", "up":
		f.move(-1)
		return false, nil
	case "enter":
		if f.focus < fieldCount-1 && f.inputs[f.focus].Value() == "" {
			f.move(1)
			return false, nil
		}
		return true, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return false, cmd
}

func (f userForm) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Identificação"))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		label := labelStyle.Render(fieldLabels[i])
		if i == f.focus {
			label = selectedStyle.Render(fieldLabels[i])
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(in.View()))
		b.WriteString("\n")
	}
	if f.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(incorrectStyle.Render(f.errMsg))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("tab próximo campo · enter confirmar · ctrl+c sair"))
	return b.String()
}
