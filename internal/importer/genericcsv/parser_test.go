package genericcsv_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassioalves/controle-financeiro-semanal/internal/importer/genericcsv"
	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

func TestParser_SemicolonWithHeader(t *testing.T) {
	input := strings.Join([]string{
		"Data;Descrição;Valor",
		"05/06/2024;Mercado;142,30",
		"2024-06-03;Farmácia;38,00",
		"",
	}, "\n")

	got, err := genericcsv.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []week.CreateParams{
		{Description: "Mercado", AmountCents: 14230, Date: "2024-06-05"},
		{Description: "Farmácia", AmountCents: 3800, Date: "2024-06-03"},
	}, got)
}

func TestParser_CommaWithoutHeader(t *testing.T) {
	input := "2024-06-05,Groceries,42.50\n2024-06-06,Bus pass,7.00\n"

	got, err := genericcsv.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, week.CreateParams{Description: "Groceries", AmountCents: 4250, Date: "2024-06-05"}, got[0])
	assert.Equal(t, week.CreateParams{Description: "Bus pass", AmountCents: 700, Date: "2024-06-06"}, got[1])
}

func TestParser_ReorderedHeaderColumns(t *testing.T) {
	input := "amount;date;description\n10,00;2024-06-05;Café\n"

	got, err := genericcsv.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, week.CreateParams{Description: "Café", AmountCents: 1000, Date: "2024-06-05"}, got[0])
}

func TestParser_EuropeanThousands(t *testing.T) {
	input := "2024-06-05;Aluguel;1.234,56\n"

	got, err := genericcsv.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, int64(123456), got[0].AmountCents)
}

func TestParser_RowErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bad date", "not-a-date;Mercado;10,00\n", "row 1"},
		{"missing description", "2024-06-05;;10,00\n", "row 1"},
		{"bad amount", "2024-06-05;Mercado;dez\n", "row 1"},
		{"too few columns", "2024-06-05;Mercado\n", "row 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := genericcsv.NewParser().Parse(strings.NewReader(tt.input))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParser_EmptyInput(t *testing.T) {
	got, err := genericcsv.NewParser().Parse(strings.NewReader(""))

	require.NoError(t, err)
	assert.Empty(t, got)
}
