// Package week exposes the ledger operations as the JSON API consumed
// by the web front end.
package week

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tassioalves/controle-financeiro-semanal/internal/importer"
	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

const defaultHistoryLimit = 10

type Handler struct {
	ledger    *week.Ledger
	importSvc *importer.Service
}

func NewHandler(ledger *week.Ledger, importSvc *importer.Service) *Handler {
	return &Handler{ledger: ledger, importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.createTransaction)
		r.Get("/current", h.currentTransactions)
		r.Delete("/{id}", h.deleteTransaction)
	})

	r.Route("/weeks", func(r chi.Router) {
		r.Post("/close", h.closeWeek)
		r.Get("/current", h.currentWeek)
		r.Get("/history", h.history)
	})

	r.Route("/limit", func(r chi.Router) {
		r.Get("/", h.getLimit)
		r.Put("/", h.setLimit)
		r.Get("/usage", h.limitUsage)
	})

	r.Route("/schedule", func(r chi.Router) {
		r.Get("/", h.getSchedule)
		r.Put("/", h.setSchedule)
	})

	r.Post("/import", h.importFile)
}

type createTransactionRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cents, err := week.ParseAmount(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	tx, err := h.ledger.CreateTransaction(r.Context(), week.CreateParams{
		Description: req.Description,
		AmountCents: cents,
		Date:        req.Date,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) currentTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.CurrentWeekTransactions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) closeWeek(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.CloseCurrentWeek(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	cur, err := h.ledger.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCurrentResponse(cur))
}

func (h *Handler) currentWeek(w http.ResponseWriter, r *http.Request) {
	cur, err := h.ledger.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCurrentResponse(cur))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		limit = n
	}

	weeks, err := h.ledger.WeeksHistory(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryList(weeks))
}

type limitRequest struct {
	Limit *string `json:"limit"`
}

type limitResponse struct {
	Limit *string `json:"limit"`
}

func (h *Handler) getLimit(w http.ResponseWriter, r *http.Request) {
	cents, err := h.ledger.WeeklyLimit(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var resp limitResponse

	if cents != nil {
		formatted := week.FormatCents(*cents)
		resp.Limit = &formatted
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) setLimit(w http.ResponseWriter, r *http.Request) {
	var req limitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var cents *int64

	if req.Limit != nil {
		parsed, err := week.ParseAmount(*req.Limit)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		cents = &parsed
	}

	if err := h.ledger.SetWeeklyLimit(r.Context(), cents); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type limitUsageResponse struct {
	Limit        *string  `json:"limit"`
	Total        string   `json:"total"`
	Exceeded     bool     `json:"exceeded"`
	UsagePercent *float64 `json:"usage_percent"`
}

func (h *Handler) limitUsage(w http.ResponseWriter, r *http.Request) {
	cents, err := h.ledger.WeeklyLimit(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	total, err := h.ledger.CurrentWeekTotal(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	exceeded, err := h.ledger.LimitExceeded(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	usage, err := h.ledger.LimitUsage(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := limitUsageResponse{
		Total:        week.FormatCents(total),
		Exceeded:     exceeded,
		UsagePercent: usage,
	}

	if cents != nil {
		formatted := week.FormatCents(*cents)
		resp.Limit = &formatted
	}

	writeJSON(w, http.StatusOK, resp)
}

type scheduleDTO struct {
	Enabled bool `json:"enabled"`
	Weekday int  `json:"weekday"`
	Hour    int  `json:"hour"`
}

func (h *Handler) getSchedule(w http.ResponseWriter, r *http.Request) {
	sched, err := h.ledger.Schedule(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scheduleDTO{
		Enabled: sched.Enabled,
		Weekday: int(sched.Weekday),
		Hour:    sched.Hour,
	})
}

func (h *Handler) setSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.ledger.SetSchedule(r.Context(), week.Schedule{
		Enabled: req.Enabled,
		Weekday: time.Weekday(req.Weekday),
		Hour:    req.Hour,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type importRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type importResponse struct {
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
	Failed       []importRowError      `json:"failed,omitempty"`
}

// importFile reads a CSV body and routes every row through the regular
// attribution rules, so back-dated entries land in their own weeks.
func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	entries, err := h.importSvc.Parse(importer.FormatCSV, r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := importResponse{Transactions: []transactionResponse{}}

	for i, entry := range entries {
		tx, err := h.ledger.CreateTransaction(r.Context(), entry)
		if err != nil {
			resp.Failed = append(resp.Failed, importRowError{Row: i + 1, Error: err.Error()})
			continue
		}

		resp.Transactions = append(resp.Transactions, toResponse(tx))
	}

	resp.Imported = len(resp.Transactions)

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
