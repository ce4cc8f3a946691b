package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/tassioalves/controle-financeiro-semanal/cmd/tui/internal/view"
	"github.com/tassioalves/controle-financeiro-semanal/internal/config"
	"github.com/tassioalves/controle-financeiro-semanal/internal/database"
	"github.com/tassioalves/controle-financeiro-semanal/internal/importer"
	"github.com/tassioalves/controle-financeiro-semanal/internal/kv"
	kvPostgres "github.com/tassioalves/controle-financeiro-semanal/internal/kv/postgres"
	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

type model struct {
	ledger        *week.Ledger
	importService *importer.Service

	currentView View

	addView      view.AddModel
	currentWeek  view.CurrentModel
	historyView  view.HistoryModel
	settingsView view.SettingsModel
	importView   view.ImportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewAdd      View = 1
	ViewCurrent  View = 2
	ViewHistory  View = 3
	ViewSettings View = 4
	ViewImport   View = 5
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var store kv.Store

	if cfg.Storage.Backend == "memory" {
		store = kv.NewMemory()
	} else {
		ctx := context.Background()

		db, err := database.Open(ctx, cfg.ConnectionString())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}

		store, err = kvPostgres.New(ctx, db)
		if err != nil {
			slog.Error("failed to prepare kv store", "error", err)
			os.Exit(1)
		}
	}

	ledger := week.New(store)
	impSvc := importer.NewService()

	return model{
		ledger:        ledger,
		importService: impSvc,
		currentView:   ViewMenu,
		addView:       view.NewAddModel(ledger),
		currentWeek:   view.NewCurrentModel(ledger),
		historyView:   view.NewHistoryModel(ledger),
		settingsView:  view.NewSettingsModel(ledger),
		importView:    view.NewImportModel(ledger, impSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewAdd
				m.addView = view.NewAddModel(m.ledger)

				return m, m.addView.Init()
			case "2":
				m.currentView = ViewCurrent
				m.currentWeek = view.NewCurrentModel(m.ledger)

				return m, m.currentWeek.Init()
			case "3":
				m.currentView = ViewHistory
				m.historyView = view.NewHistoryModel(m.ledger)

				return m, m.historyView.Init()
			case "4":
				m.currentView = ViewSettings
				m.settingsView = view.NewSettingsModel(m.ledger)

				return m, m.settingsView.Init()
			case "5":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.ledger, m.importService)

				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewAdd:
		var newModel tea.Model
		newModel, cmd = m.addView.Update(msg)
		m.addView = newModel.(view.AddModel)
	case ViewCurrent:
		var newModel tea.Model
		newModel, cmd = m.currentWeek.Update(msg)
		m.currentWeek = newModel.(view.CurrentModel)
	case ViewHistory:
		var newModel tea.Model
		newModel, cmd = m.historyView.Update(msg)
		m.historyView = newModel.(view.HistoryModel)
	case ViewSettings:
		var newModel tea.Model
		newModel, cmd = m.settingsView.Update(msg)
		m.settingsView = newModel.(view.SettingsModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Controle Financeiro Semanal\n\n" +
				"1. Add Expense\n" +
				"2. Current Week\n" +
				"3. Weeks History\n" +
				"4. Limit & Schedule\n" +
				"5. Import Expenses\n\n" +
				"q. Quit",
		)
	case ViewAdd:
		return m.addView.View()
	case ViewCurrent:
		return m.currentWeek.View()
	case ViewHistory:
		return m.historyView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewImport:
		return m.importView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
