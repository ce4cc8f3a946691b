package genericcsv

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmountCents converts an amount cell into cents. Both European
// ("1.234,56") and plain ("1234.56") decimal notation are accepted; a
// leading currency marker is ignored.
func parseAmountCents(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.TrimPrefix(clean, "€")
	clean = strings.TrimSpace(clean)

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
