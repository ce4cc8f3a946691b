package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const storeTimeout = 5 * time.Second

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// StoreCtx returns a context with a standard timeout for ledger operations.
func StoreCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}
