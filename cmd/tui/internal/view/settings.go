package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

type settingsState int

const (
	settingsStateLoading settingsState = iota
	settingsStateForm
	settingsStateResult
)

// SettingsModel edits the weekly limit and the auto-close schedule in a
// single form. An empty limit clears it.
type SettingsModel struct {
	CommonModel
	ledger *week.Ledger

	state settingsState
	form  *huh.Form

	formLimit   string
	formEnabled bool
	formWeekday string
	formHour    string

	status string
	err    error
}

func NewSettingsModel(ledger *week.Ledger) SettingsModel {
	return SettingsModel{ledger: ledger}
}

func (m SettingsModel) Title() string { return "Limit & Schedule" }

func (m SettingsModel) ShortHelp() string {
	return "Navigate form | Esc: back"
}

func (m SettingsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func weekdayOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		opts[d] = huh.NewOption(d.String(), strconv.Itoa(int(d)))
	}

	return opts
}

func (m SettingsModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("limit").
				Title("Weekly limit (empty for none)").
				Placeholder("200.00").
				Value(&m.formLimit).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}

					cents, err := week.ParseAmount(s)
					if err != nil {
						return err
					}

					if cents <= 0 {
						return fmt.Errorf("limit must be positive")
					}

					return nil
				}),

			huh.NewConfirm().
				Key("enabled").
				Title("Close weeks automatically?").
				Value(&m.formEnabled),

			huh.NewSelect[string]().
				Key("weekday").
				Title("Close on").
				Options(weekdayOptions()...).
				Value(&m.formWeekday),

			huh.NewInput().
				Key("hour").
				Title("At hour (0-23)").
				Value(&m.formHour).
				Validate(func(s string) error {
					h, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || h < 0 || h > 23 {
						return fmt.Errorf("hour must be between 0 and 23")
					}

					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

	case settingsLoadMsg:
		if msg.err != nil {
			m.state = settingsStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.formLimit = ""
		if msg.limit != nil {
			m.formLimit = week.FormatCents(*msg.limit)
		}

		m.formEnabled = msg.schedule.Enabled
		m.formWeekday = strconv.Itoa(int(msg.schedule.Weekday))
		m.formHour = strconv.Itoa(msg.schedule.Hour)

		m.state = settingsStateForm
		m.form = m.newForm()

		return m, m.form.Init()

	case settingsSaveMsg:
		m.state = settingsStateResult
		m.err = msg.err
		m.status = "Settings saved."

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, nil
	}

	if m.state != settingsStateForm {
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

func (m SettingsModel) View() string {
	switch m.state {
	case settingsStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading settings...")
	case settingsStateResult:
		style := lipgloss.NewStyle().Padding(2)
		color := lipgloss.Color("46")

		if m.err != nil {
			color = lipgloss.Color("196")
		}

		return style.Render(
			lipgloss.NewStyle().Foreground(color).Render(m.status) +
				"\n\n(Esc to go back)",
		)
	}

	return lipgloss.NewStyle().Padding(1, 2).Render("Limit & Schedule\n\n" + m.form.View())
}

// Messages

type settingsLoadMsg struct {
	limit    *int64
	schedule week.Schedule
	err      error
}

type settingsSaveMsg struct {
	err error
}

func (m SettingsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		limit, err := m.ledger.WeeklyLimit(ctx)
		if err != nil {
			return settingsLoadMsg{err: err}
		}

		schedule, err := m.ledger.Schedule(ctx)
		if err != nil {
			return settingsLoadMsg{err: err}
		}

		return settingsLoadMsg{limit: limit, schedule: schedule}
	}
}

func (m SettingsModel) saveCmd() tea.Cmd {
	// Read through the form: the model is copied on every update, so the
	// bound fields on this copy can lag behind what was typed.
	limitInput := strings.TrimSpace(m.form.GetString("limit"))
	enabled := m.form.GetBool("enabled")
	weekday, _ := strconv.Atoi(m.form.GetString("weekday"))
	hour, _ := strconv.Atoi(strings.TrimSpace(m.form.GetString("hour")))

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		var limit *int64

		if limitInput != "" {
			cents, err := week.ParseAmount(limitInput)
			if err != nil {
				return settingsSaveMsg{err: err}
			}

			limit = &cents
		}

		if err := m.ledger.SetWeeklyLimit(ctx, limit); err != nil {
			return settingsSaveMsg{err: err}
		}

		err := m.ledger.SetSchedule(ctx, week.Schedule{
			Enabled: enabled,
			Weekday: time.Weekday(weekday),
			Hour:    hour,
		})

		return settingsSaveMsg{err: err}
	}
}
