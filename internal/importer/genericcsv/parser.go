// Package genericcsv parses expense CSV exports into ledger entries.
// It accepts semicolon- or comma-separated files with date, description
// and amount columns, with or without a header row.
package genericcsv

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/tassioalves/controle-financeiro-semanal/internal/encoding"
	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

// Recognized header names, lowercased. Portuguese variants cover the
// spreadsheet exports this tool grew up with.
var (
	dateCols   = []string{"date", "data"}
	descCols   = []string{"description", "descricao", "descrição"}
	amountCols = []string{"amount", "valor", "montante"}
)

var dateLayouts = []string{time.DateOnly, "02/01/2006", "02-01-2006"}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]week.CreateParams, error) {
	utf8r, err := enc.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	dateIdx, descIdx, amountIdx := 0, 1, 2

	start := 0
	if idx, ok := matchHeader(rows[0]); ok {
		dateIdx, descIdx, amountIdx = idx[0], idx[1], idx[2]
		start = 1
	}

	var entries []week.CreateParams

	for i, row := range rows[start:] {
		rowNum := start + i + 1 // 1-based, as shown in a spreadsheet

		if isBlank(row) {
			continue
		}

		if len(row) <= amountIdx || len(row) <= descIdx || len(row) <= dateIdx {
			return nil, fmt.Errorf("row %d: expected at least %d columns", rowNum, amountIdx+1)
		}

		date, ok := parseEntryDate(row[dateIdx])
		if !ok {
			return nil, fmt.Errorf("row %d: unrecognized date %q", rowNum, row[dateIdx])
		}

		desc := strings.TrimSpace(row[descIdx])
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		cents, err := parseAmountCents(row[amountIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad amount %q: %w", rowNum, row[amountIdx], err)
		}

		entries = append(entries, week.CreateParams{
			Description: desc,
			AmountCents: cents,
			Date:        date,
		})
	}

	return entries, nil
}

// detectDelimiter peeks at the first line; semicolon wins when present
// since decimal commas make comma counting unreliable.
func detectDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(1024)
	if i := strings.IndexByte(string(head), '\n'); i >= 0 {
		head = head[:i]
	}

	if strings.ContainsRune(string(head), ';') {
		return ';'
	}

	return ','
}

// matchHeader reports the column indexes for date, description and
// amount when the row looks like a header.
func matchHeader(row []string) ([3]int, bool) {
	find := func(names []string) int {
		for i, cell := range row {
			c := strings.ToLower(strings.TrimSpace(cell))
			for _, name := range names {
				if c == name {
					return i
				}
			}
		}

		return -1
	}

	d, s, a := find(dateCols), find(descCols), find(amountCols)
	if d < 0 || s < 0 || a < 0 {
		return [3]int{}, false
	}

	return [3]int{d, s, a}, true
}

func parseEntryDate(s string) (string, bool) {
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.Format(time.DateOnly), true
		}
	}

	return "", false
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
