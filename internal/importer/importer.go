// Package importer turns expense file exports into ledger entries so
// historical spending can be backfilled into past weeks.
package importer

import (
	"io"

	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

type Format string

const (
	FormatCSV Format = "csv"
)

type Parser interface {
	Parse(r io.Reader) ([]week.CreateParams, error)
}
