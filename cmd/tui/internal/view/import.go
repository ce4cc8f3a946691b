package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tassioalves/controle-financeiro-semanal/internal/importer"
	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	ledger        *week.Ledger
	importService *importer.Service

	state      importState
	filePicker filepicker.Model

	status string
	err    error
}

func NewImportModel(ledger *week.Ledger, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.AllowedTypes = []string{".csv"}
	fp.SetHeight(15)

	return ImportModel{
		ledger:        ledger,
		importService: impSvc,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Expenses" }

func (m ImportModel) ShortHelp() string {
	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == importStateResult {
				m.state = importStateFilePick
				m.err = nil
				m.status = ""

				return m, nil
			}

			return m, Back
		}

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d expenses.", msg.imported)
		if msg.failed > 0 {
			m.status += fmt.Sprintf(" %d rows were rejected.", msg.failed)
		}

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
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

	return lipgloss.NewStyle().Padding(1).Render(
		"Select a CSV file to import:\n\n" + m.filePicker.View(),
	)
}

type importResultMsg struct {
	imported int
	failed   int
	err      error
}

// importCmd parses the file and routes every row through the regular
// attribution rules. Rows the ledger rejects are counted, not fatal.
func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		entries, err := m.importService.Parse(importer.FormatCSV, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		var imported, failed int

		for _, entry := range entries {
			if _, err := m.ledger.CreateTransaction(ctx, entry); err != nil {
				failed++
				continue
			}

			imported++
		}

		return importResultMsg{imported: imported, failed: failed}
	}
}
