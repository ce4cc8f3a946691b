package week

import (
	"errors"
	"net/http"
	"time"

	"github.com/tassioalves/controle-financeiro-semanal/internal/dateutil"
	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

type transactionResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	AmountCents int64     `json:"amount_cents"`
	Date        string    `json:"date"`
	WeekID      string    `json:"week_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(tx *week.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Description: tx.Description,
		Amount:      week.FormatCents(tx.AmountCents),
		AmountCents: tx.AmountCents,
		Date:        dateutil.FormatDate(tx.Date),
		WeekID:      tx.WeekID,
		CreatedAt:   tx.CreatedAt,
	}
}

func toResponseList(txs []week.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i := range txs {
		resp[i] = toResponse(&txs[i])
	}

	return resp
}

type currentWeekResponse struct {
	WeekID    string `json:"week_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Total     string `json:"total"`
	Count     int    `json:"count"`
	Closed    bool   `json:"closed"`
}

func toCurrentResponse(cur *week.CurrentWeek) currentWeekResponse {
	return currentWeekResponse{
		WeekID:    cur.WeekID,
		StartDate: dateutil.FormatDate(cur.StartDate),
		EndDate:   dateutil.FormatDate(cur.EndDate),
		Total:     week.FormatCents(cur.TotalCents),
		Count:     cur.Count,
		Closed:    cur.Closed,
	}
}

type summaryResponse struct {
	WeekID    string `json:"week_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Total     string `json:"total"`
	Count     int    `json:"count"`
	Closed    bool   `json:"closed"`
}

func toSummaryList(weeks []week.Summary) []summaryResponse {
	resp := make([]summaryResponse, len(weeks))
	for i, w := range weeks {
		resp[i] = summaryResponse{
			WeekID:    w.WeekID,
			StartDate: dateutil.FormatDate(w.StartDate),
			EndDate:   dateutil.FormatDate(w.EndDate),
			Total:     week.FormatCents(w.TotalCents),
			Count:     w.Count,
			Closed:    w.Closed,
		}
	}

	return resp
}

// writeError maps ledger errors onto HTTP statuses. Validation problems
// are the caller's to fix; closed-week conflicts are surfaced as such.
func writeError(w http.ResponseWriter, err error) {
	var verr *week.ValidationError

	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, week.ErrClosedWeek), errors.Is(err, week.ErrAlreadyClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, week.ErrTransactionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
