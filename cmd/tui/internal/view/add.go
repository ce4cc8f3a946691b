package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tassioalves/controle-financeiro-semanal/internal/dateutil"
	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

type addState int

const (
	addStateForm addState = iota
	addStateResult
)

type AddModel struct {
	CommonModel
	ledger *week.Ledger

	state addState
	form  *huh.Form

	formDesc   string
	formAmount string
	formDate   string

	status string
	err    error
}

func NewAddModel(ledger *week.Ledger) AddModel {
	m := AddModel{
		ledger:   ledger,
		formDate: dateutil.FormatDate(time.Now()),
	}
	m.form = m.newForm()

	return m
}

func (m AddModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.formDesc).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("42.50").
				Value(&m.formAmount).
				Validate(func(s string) error {
					_, err := week.ParseAmount(s)
					return err
				}),

			huh.NewInput().
				Key("date").
				Title("Date (YYYY-MM-DD)").
				Value(&m.formDate).
				Validate(func(s string) error {
					_, err := dateutil.ParseDate(s)
					return err
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m AddModel) Title() string { return "Add Expense" }

func (m AddModel) ShortHelp() string {
	if m.state == addStateResult {
		return "Enter: add another | Esc: back"
	}

	return "Navigate form | Esc: back"
}

func (m AddModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == addStateResult && msg.Type == tea.KeyEnter {
			m.state = addStateForm
			m.err = nil
			m.status = ""
			m.formDesc = ""
			m.formAmount = ""
			m.form = m.newForm()

			return m, m.form.Init()
		}

	case addResultMsg:
		m.state = addStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			if errors.Is(msg.err, week.ErrClosedWeek) {
				m.status = "That week is already closed; the expense was rejected."
			}

			return m, nil
		}

		m.status = fmt.Sprintf("Added %s (%s) to week starting %s.",
			msg.tx.Description, week.FormatCents(msg.tx.AmountCents), msg.weekStart)

		return m, nil
	}

	if m.state != addStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m AddModel) View() string {
	if m.state == addStateResult {
		style := lipgloss.NewStyle().Padding(2)
		color := lipgloss.Color("46")

		if m.err != nil {
			color = lipgloss.Color("196")
		}

		return style.Render(
			lipgloss.NewStyle().Foreground(color).Render(m.status) +
				"\n\n(Enter to add another, Esc to go back)",
		)
	}

	return lipgloss.NewStyle().Padding(1, 2).Render("Add Expense\n\n" + m.form.View())
}

type addResultMsg struct {
	tx        *week.Transaction
	weekStart string
	err       error
}

func (m AddModel) saveCmd() tea.Cmd {
	// Read through the form: the model is copied on every update, so the
	// bound fields on this copy can lag behind what was typed.
	params := week.CreateParams{
		Description: m.form.GetString("description"),
		Date:        m.form.GetString("date"),
	}

	amount := m.form.GetString("amount")

	return func() tea.Msg {
		cents, err := week.ParseAmount(amount)
		if err != nil {
			return addResultMsg{err: err}
		}

		params.AmountCents = cents

		ctx, cancel := StoreCtx()
		defer cancel()

		tx, err := m.ledger.CreateTransaction(ctx, params)
		if err != nil {
			return addResultMsg{err: err}
		}

		cur, err := m.ledger.Current(ctx)
		if err != nil {
			return addResultMsg{tx: tx}
		}

		weekStart := dateutil.FormatDate(cur.StartDate)
		if tx.WeekID != cur.WeekID {
			weekStart = dateutil.FormatDate(dateutil.WeekStart(tx.Date))
		}

		return addResultMsg{tx: tx, weekStart: weekStart}
	}
}
