package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tassioalves/controle-financeiro-semanal/internal/dateutil"
	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

const historyPageSize = 20

type HistoryModel struct {
	CommonModel
	ledger *week.Ledger

	table   table.Model
	weeks   []week.Summary
	loading bool
	err     error
}

func NewHistoryModel(ledger *week.Ledger) HistoryModel {
	columns := []table.Column{
		{Title: "Start", Width: 12},
		{Title: "End", Width: 12},
		{Title: "Total", Width: 10},
		{Title: "Entries", Width: 8},
		{Title: "Status", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return HistoryModel{
		ledger: ledger,
		table:  t,
	}
}

func (m HistoryModel) Title() string { return "Weeks History" }

func (m HistoryModel) ShortHelp() string {
	return "Esc: back | r: refresh"
}

func (m HistoryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.weeks = msg.weeks
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HistoryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading history...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(tableView)
}

func (m *HistoryModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.weeks))
	for _, w := range m.weeks {
		status := "open"
		if w.Closed {
			status = "closed"
		}

		rows = append(rows, table.Row{
			dateutil.FormatDate(w.StartDate),
			dateutil.FormatDate(w.EndDate),
			week.FormatCents(w.TotalCents),
			strconv.Itoa(w.Count),
			status,
		})
	}

	m.table.SetRows(rows)
}

type historyLoadMsg struct {
	weeks []week.Summary
	err   error
}

func (m HistoryModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		weeks, err := m.ledger.WeeksHistory(ctx, historyPageSize)
		return historyLoadMsg{weeks: weeks, err: err}
	}
}
