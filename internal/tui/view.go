package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/digita/internal/compare"
	"github.com/verte-zerg/digita/internal/model"
	"github.com/verte-zerg/digita/internal/session"
	"github.com/verte-zerg/digita/internal/stats"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var content string
	if m.needUser {
		content = m.form.view()
	} else {
		switch m.machine.Phase() {
		case session.PhaseSelection:
			content = m.viewSelection()
		case session.PhaseInstructions:
			content = m.viewInstructions()
		case session.PhaseTesting:
			content = m.viewTesting()
		case session.PhaseResults:
			content = m.viewResults()
		}
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	content = lipgloss.NewStyle().Width(m.contentWidth()).Render(content)
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) viewSelection() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Teste de Digitação"))
	b.WriteString("\n\n")
	if u, ok := m.machine.User(); ok {
		b.WriteString(labelStyle.Render(fmt.Sprintf("Participante: %s · %s %s", u.Name, u.IdentifierLabel(), u.Identifier())))
		b.WriteString("\n\n")
	}
	b.WriteString("Escolha o tipo de teste:\n\n")
	descriptions := map[model.Mode]string{
		model.Texto: "três níveis seguidos (fácil, moderado, difícil), digitando o texto exibido",
		model.Audio: "três níveis com resultado a cada nível, digitando o texto ditado",
	}
	for i, mode := range modeChoices {
		line := fmt.Sprintf("%d. %s: %s", i+1, mode.Label(), descriptions[mode])
		if i == m.choice {
			b.WriteString(selectedStyle.Render("› " + line))
		} else {
			b.WriteString(labelStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓ escolher · enter confirmar · u editar dados · q sair"))
	return b.String()
}

func (m *Model) viewInstructions() string {
	st := m.machine.Snapshot()
	step, _ := st.Current()
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Teste de %s · Nível %s", step.Mode.Label(), step.Difficulty.Label())))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Etapa %d de %d · tempo limite %s", st.AttemptIndex+1, len(st.Sequence), formatDuration(step.Difficulty.TimeBudget()))))
	b.WriteString("\n\n")
	lines := []string{
		"• O cronômetro começa assim que o teste iniciar.",
		"• Copiar, colar e capturar a tela não são permitidos.",
		"• Sair do terminal durante o teste reinicia a sessão.",
		fmt.Sprintf("• Para finalizar antes do tempo, digite pelo menos %d caracteres e use ctrl+f.", session.MinFinishChars),
	}
	if step.Mode == model.Audio {
		lines = append([]string{
			"• O texto será ditado frase por frase; ele não aparece na tela.",
			"• ctrl+a pausa ou retoma o áudio, ctrl+r reinicia a leitura.",
		}, lines...)
	} else {
		lines = append([]string{
			"• Digite o texto exibido; os níveis seguem automaticamente.",
		}, lines...)
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("enter iniciar · esc voltar"))
	return b.String()
}

func (m *Model) viewTesting() string {
	st := m.machine.Snapshot()
	step, _ := st.Current()
	width := m.contentWidth()

	if st.Violation {
		return incorrectStyle.Bold(true).Render("Teste interrompido. A sessão será reiniciada...")
	}

	status := fmt.Sprintf("%s · %s · restante %s", step.Mode.Label(), step.Difficulty.Label(), formatDuration(m.machine.Remaining()))
	if st.Clock.Paused {
		status += " · " + currentWordStyle.Render("PAUSADO")
	}
	metrics := fmt.Sprintf("%d WPM · %d%% precisão · %d palavras", st.Live.WPM, st.Live.Accuracy, st.Live.Words)

	var b strings.Builder
	b.WriteString(titleStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(metrics))
	b.WriteString("\n\n")

	if step.Mode == model.Audio {
		d := m.machine.Dictation()
		cur, total := d.Progress()
		state := "aguardando"
		if d.Speaking {
			state = "reproduzindo"
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("Áudio: frase %d de %d (%s)", cur, total, state)))
		b.WriteString("\n\n")
		b.WriteString(wrapStyledRunes(typedRunes(st.Input), width))
		b.WriteString("\n\n")
		b.WriteString(footerStyle.Render("ctrl+a áudio · ctrl+r reiniciar áudio · ctrl+p pausar · ctrl+f finalizar"))
		return b.String()
	}

	cmp := compare.Compare(st.Reference.Body, st.Input)
	b.WriteString(wrapStyledRunes(buildStyledRunes(cmp, len([]rune(st.Input))), width))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("ctrl+p pausar · ctrl+f finalizar"))
	return b.String()
}

func (m *Model) viewResults() string {
	st := m.machine.Snapshot()
	a, ok := st.LastAttempt()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Resultado · %s · %s", a.Mode.Label(), a.Difficulty.Label())))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Velocidade: %d WPM · Precisão: %d%% · Tempo: %s · Erros: %d\n",
		a.WPM, a.Accuracy, formatDuration(time.Duration(a.ElapsedSeconds)*time.Second), len(a.Errors)))
	b.WriteString(renderGoals(a.WPM, a.Accuracy))
	b.WriteString("\n\n")

	if len(st.Attempts) > 1 || a.Mode == model.Texto {
		b.WriteString(renderAttemptTable(st.Attempts))
		b.WriteString("\n")
		t := m.machine.Totals()
		b.WriteString(labelStyle.Render(fmt.Sprintf("Média: %.1f WPM · %.1f%% · melhor %d WPM", t.AvgWPM, t.AvgAccuracy, t.BestWPM)))
		b.WriteString("\n\n")
	}

	b.WriteString(labelStyle.Render(summaryLine(a.Errors)))
	b.WriteString("\n")
	b.WriteString(m.errView.View())
	b.WriteString("\n\n")

	keys := "↑/↓ rolar erros · r nova sessão · q sair"
	if !st.IsLast() {
		keys = "n próximo nível · " + keys
	}
	b.WriteString(footerStyle.Render(keys))
	return b.String()
}

func renderGoals(wpm, accuracy int) string {
	g := stats.Goals(wpm, accuracy)
	mark := func(ok bool, label string) string {
		if ok {
			return goodStyle.Render("✓ " + label)
		}
		return badStyle.Render("✗ " + label)
	}
	return mark(g.WPM, fmt.Sprintf("meta %d WPM", stats.GoalWPM)) + "  " +
		mark(g.Accuracy, fmt.Sprintf("meta %d%% de precisão", stats.GoalAccuracy))
}

func renderAttemptTable(attempts []model.TestAttempt) string {
	columns := []table.Column{
		{Title: "Nível", Width: 10},
		{Title: "WPM", Width: 5},
		{Title: "Precisão", Width: 9},
		{Title: "Tempo", Width: 6},
		{Title: "Erros", Width: 6},
	}
	rows := make([]table.Row, 0, len(attempts))
	for _, a := range attempts {
		rows = append(rows, table.Row{
			a.Difficulty.Label(),
			fmt.Sprintf("%d", a.WPM),
			fmt.Sprintf("%d%%", a.Accuracy),
			formatDuration(time.Duration(a.ElapsedSeconds) * time.Second),
			fmt.Sprintf("%d", len(a.Errors)),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	styles := table.DefaultStyles()
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)
	return t.View()
}

func summaryLine(errs []model.TextError) string {
	counts := make(map[model.ErrorKind]int, len(model.ErrorKinds))
	for _, e := range errs {
		counts[e.Kind]++
	}
	parts := make([]string, 0, len(model.ErrorKinds))
	for _, k := range stats.TopKinds(counts, len(model.ErrorKinds)) {
		parts = append(parts, fmt.Sprintf("%s %d", k.Label(), counts[k]))
	}
	return strings.Join(parts, " · ")
}

func renderErrorList(errs []model.TextError, width int) string {
	if len(errs) == 0 {
		return goodStyle.Render("Nenhum erro encontrado.")
	}
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		line := fmt.Sprintf("[%s] pos %d: %q → %q · %s", e.Kind.Label(), e.Position, e.Error, e.Suggestion, e.Context)
		lines = append(lines, lipgloss.NewStyle().Width(width).Render(line))
	}
	return strings.Join(lines, "\n")
}

// renderFooter shows the latest notice, or the session id when there is none.
func (m *Model) renderFooter() string {
	if m.notice.Message != "" {
		return noticeStyle(m.notice.Level).Render(m.notice.Message)
	}
	st := m.machine.Snapshot()
	segments := []string{"sessão " + shortID(st.SessionID)}
	if n := len(st.Attempts); n > 0 {
		segments = append(segments, fmt.Sprintf("%d tentativa(s)", n))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
