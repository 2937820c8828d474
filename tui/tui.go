// Package tui renders the loan widget as an interactive terminal form.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"loan-widget/domain"
	"loan-widget/service"
)

var fieldLabels = map[domain.FieldID]string{
	domain.FieldAmount:   "Loan amount",
	domain.FieldInterest: "Interest rate (%)",
	domain.FieldYears:    "Term (years)",
}

// Run starts the form and blocks until the user quits or ctx ends.
func Run(ctx context.Context, widget *service.LoanWidget) error {
	model := newModel(ctx, widget)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type submitDoneMsg struct {
	seq     int
	outcome service.SubmitOutcome
	err     error
}

type noticeExpiredMsg struct{}

type model struct {
	ctx    context.Context
	widget *service.LoanWidget
	fields []domain.FieldID
	focus  int
	width  int
	err    error
	styles styles

	// busy spans enter to the matching submitDoneMsg.
	busy bool
	seq  int
}

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	focused lipgloss.Style
	input   lipgloss.Style
	invalid lipgloss.Style
	result  lipgloss.Style
	notice  lipgloss.Style
	muted   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0")),
		focused: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")),
		input:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		invalid: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
		result: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1),
		notice: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB86C")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
	}
}

func newModel(ctx context.Context, widget *service.LoanWidget) model {
	widget.Init(ctx)
	return model{
		ctx:    ctx,
		widget: widget,
		fields: domain.Fields(),
		styles: defaultStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case submitDoneMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.busy = false
		m.err = msg.err
		if msg.outcome.Status == service.SubmitFailed {
			return m, m.noticeCmd()
		}
		return m, nil
	case noticeExpiredMsg:
		return m, nil
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "down":
		m.blur()
		m.focus = (m.focus + 1) % len(m.fields)
		return m, nil
	case "shift+tab", "up":
		m.blur()
		m.focus = (m.focus + len(m.fields) - 1) % len(m.fields)
		return m, nil
	case "enter":
		if m.busy || m.widget.State() == domain.StateComputing {
			return m, nil
		}
		m.busy = true
		m.seq++
		return m, m.submitCmd()
	case "ctrl+r":
		m.widget.OnReset()
		m.focus = 0
		m.err = nil
		m.busy = false
		m.seq++
		return m, nil
	case "ctrl+d":
		m.widget.DismissNotice()
		return m, nil
	case "backspace", "ctrl+h", "delete":
		field := m.fields[m.focus]
		_ = m.widget.SetField(field, removeLastRune(m.value(field)))
		return m, nil
	default:
		if len(msg.Runes) == 0 {
			return m, nil
		}
		field := m.fields[m.focus]
		_ = m.widget.SetField(field, m.value(field)+string(msg.Runes))
		return m, nil
	}
}

// blur validates the focused field as it loses focus.
func (m model) blur() {
	field := m.fields[m.focus]
	_, _ = m.widget.OnFieldChanged(field, m.value(field))
}

func (m model) value(field domain.FieldID) string {
	return m.widget.View().Fields.Get(field)
}

func (m model) submitCmd() tea.Cmd {
	ctx, widget, seq := m.ctx, m.widget, m.seq
	return func() tea.Msg {
		outcome, err := widget.OnSubmit(ctx)
		return submitDoneMsg{seq: seq, outcome: outcome, err: err}
	}
}

func (m model) noticeCmd() tea.Cmd {
	return tea.Tick(m.widget.NoticeDuration(), func(time.Time) tea.Msg {
		return noticeExpiredMsg{}
	})
}

func (m model) View() string {
	view := m.widget.View()

	markers := make(map[domain.FieldID]domain.ValidationResult, len(view.Validation))
	for _, res := range view.Validation {
		markers[res.Field] = res
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render("Loan calculator"))
	b.WriteString("\n\n")

	for i, field := range m.fields {
		cursor := "  "
		label := m.styles.label.Render(fieldLabels[field])
		if i == m.focus {
			cursor = "> "
			label = m.styles.focused.Render(fieldLabels[field])
		}
		value := view.Fields.Get(field)
		if i == m.focus {
			value += "_"
		}
		fmt.Fprintf(&b, "%s%s\n    %s\n", cursor, label, m.styles.input.Render(value))
		if res, ok := markers[field]; ok && !res.Valid {
			fmt.Fprintf(&b, "    %s\n", m.styles.invalid.Render(res.Message))
		}
	}
	b.WriteString("\n")

	switch {
	case m.busy || view.State == domain.StateComputing:
		b.WriteString(m.styles.muted.Render("Calculating..."))
		b.WriteString("\n")
	case view.Result != nil:
		body := fmt.Sprintf("Monthly payment  %s\nTotal payment    %s\nTotal interest   %s",
			view.Result.MonthlyPayment, view.Result.TotalPayment, view.Result.TotalInterest)
		b.WriteString(m.styles.result.Render(body))
		b.WriteString("\n")
	}

	if view.Notice != "" {
		b.WriteString(m.styles.notice.Render(view.Notice))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(m.styles.invalid.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render("tab/shift+tab move • enter calculate • ctrl+r reset • ctrl+d dismiss • esc quit"))
	return b.String()
}

func removeLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
