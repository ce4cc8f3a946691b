package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tassioalves/controle-financeiro-semanal/internal/dateutil"
	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

type CurrentModel struct {
	CommonModel
	ledger *week.Ledger

	table   table.Model
	txs     []week.Transaction
	current *week.CurrentWeek
	limit   *int64
	usage   *float64

	loading bool
	err     error
	status  string
}

func NewCurrentModel(ledger *week.Ledger) CurrentModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 10},
		{Title: "Description", Width: 40},
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

	return CurrentModel{
		ledger: ledger,
		table:  t,
	}
}

func (m CurrentModel) Title() string { return "Current Week" }

func (m CurrentModel) ShortHelp() string {
	return "Esc: back | d: delete | c: close week | r: refresh"
}

func (m CurrentModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CurrentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case currentLoadMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.txs = msg.txs
		m.current = msg.current
		m.limit = msg.limit
		m.usage = msg.usage
		m.refreshTable()

		return m, nil

	case currentActionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, m.loadCmd()
		}

		m.status = msg.status

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "d":
			return m, m.deleteCmd()
		case "c":
			return m, m.closeCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CurrentModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading current week...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := ""
	if m.current != nil {
		header = fmt.Sprintf("Week %s to %s | Total: %s",
			dateutil.FormatDate(m.current.StartDate),
			dateutil.FormatDate(m.current.EndDate),
			week.FormatCents(m.current.TotalCents),
		)

		if m.limit != nil {
			header += fmt.Sprintf(" | Limit: %s", week.FormatCents(*m.limit))
		}

		if m.usage != nil {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
			if *m.usage >= 100 {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
			}

			header += " | " + style.Render(fmt.Sprintf("%.0f%% used", *m.usage))
		}
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *CurrentModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			dateutil.FormatDate(tx.Date),
			week.FormatCents(tx.AmountCents),
			tx.Description,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type currentLoadMsg struct {
	txs     []week.Transaction
	current *week.CurrentWeek
	limit   *int64
	usage   *float64
	err     error
}

type currentActionMsg struct {
	status string
	err    error
}

func (m CurrentModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		txs, err := m.ledger.CurrentWeekTransactions(ctx)
		if err != nil {
			return currentLoadMsg{err: err}
		}

		cur, err := m.ledger.Current(ctx)
		if err != nil {
			return currentLoadMsg{err: err}
		}

		limit, err := m.ledger.WeeklyLimit(ctx)
		if err != nil {
			return currentLoadMsg{err: err}
		}

		usage, err := m.ledger.LimitUsage(ctx)
		if err != nil {
			return currentLoadMsg{err: err}
		}

		return currentLoadMsg{txs: txs, current: cur, limit: limit, usage: usage}
	}
}

func (m CurrentModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	tx := m.txs[idx]

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if err := m.ledger.DeleteTransaction(ctx, tx.ID); err != nil {
			return currentActionMsg{err: err}
		}

		return currentActionMsg{status: fmt.Sprintf("Deleted %s.", tx.Description)}
	}
}

func (m CurrentModel) closeCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if err := m.ledger.CloseCurrentWeek(ctx); err != nil {
			return currentActionMsg{err: err}
		}

		return currentActionMsg{status: "Week closed. A new week has started."}
	}
}
