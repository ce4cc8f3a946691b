package week

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tassioalves/controle-financeiro-semanal/internal/dateutil"
	"github.com/tassioalves/controle-financeiro-semanal/internal/kv"
)

// Ledger is the single source of truth for transaction attribution,
// week boundaries and closing transitions. All state lives behind the
// injected kv.Store; the ledger itself is stateless between calls.
//
// The execution model is a single logical writer: callers serialize
// user actions and the periodic auto-close trigger. A close updates the
// closed set first and the current-week pointer second, so anyone
// adding real concurrency must wrap CloseCurrentWeek, CheckAndAutoClose
// and CreateTransaction in one mutex to keep the pair atomic.
type Ledger struct {
	store kv.Store
	now   func() time.Time
}

type Option func(*Ledger)

// WithClock substitutes the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(store kv.Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// CreateParams describes a new expense entry. Date is a date-only
// string in 2006-01-02 form.
type CreateParams struct {
	Description string
	AmountCents int64
	Date        string
}

// CreateTransaction validates params, decides which week the entry
// belongs to and appends it to the log.
//
// Attribution precedence, first match wins:
//  1. the current week is closed -> the write is rejected outright
//  2. entry is today or later -> current week, regardless of calendar
//     bucketing, so entries right after a close land in the new period
//  3. entry falls within the current week's period -> current week
//  4. the standard calendar week containing the entry is closed ->
//     current week (back-dated entries are redirected forward, never
//     rejected)
//  5. otherwise the standard calendar week containing the entry,
//     created on demand
func (l *Ledger) CreateTransaction(ctx context.Context, params CreateParams) (*Transaction, error) {
	desc := strings.TrimSpace(params.Description)
	if desc == "" {
		return nil, &ValidationError{Field: "description", Reason: "must not be empty"}
	}

	if params.AmountCents <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	entry, err := dateutil.ParseDate(params.Date)
	if err != nil {
		return nil, &ValidationError{Field: "date", Reason: "missing or invalid"}
	}

	curID, curStart, err := l.currentWeek(ctx)
	if err != nil {
		return nil, err
	}

	closed, err := l.loadClosedSet(ctx)
	if err != nil {
		return nil, err
	}

	if closed[curID] {
		return nil, ErrClosedWeek
	}

	weekID, err := l.attributeWeek(ctx, entry, curID, curStart, closed)
	if err != nil {
		return nil, err
	}

	tx := Transaction{
		ID:          uuid.NewString(),
		Description: desc,
		AmountCents: params.AmountCents,
		Date:        entry,
		WeekID:      weekID,
		CreatedAt:   l.now(),
	}

	txs, err := l.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	if err := l.saveTransactions(ctx, append(txs, tx)); err != nil {
		return nil, err
	}

	return &tx, nil
}

// attributeWeek applies rules 2-5 of the attribution precedence; rule 1
// is checked by the caller before anything is written.
func (l *Ledger) attributeWeek(ctx context.Context, entry time.Time, curID string, curStart time.Time, closed map[string]bool) (string, error) {
	today := dateutil.Truncate(l.now())
	if !dateutil.Truncate(entry).Before(today) {
		return curID, nil
	}

	end, err := l.currentWeekEnd(ctx, curStart)
	if err != nil {
		return "", err
	}

	if dateutil.InRange(entry, curStart, end) {
		return curID, nil
	}

	dates, err := l.loadWeekDates(ctx)
	if err != nil {
		return "", err
	}

	calStart := dateutil.WeekStart(entry)

	if id, ok := weekIDForStart(dates, calStart); ok {
		if closed[id] {
			return curID, nil
		}

		return id, nil
	}

	id := uuid.NewString()
	if err := l.recordWeekStart(ctx, id, calStart); err != nil {
		return "", err
	}

	return id, nil
}

// DeleteTransaction removes the entry with the given id.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	txs, err := l.loadTransactions(ctx)
	if err != nil {
		return err
	}

	kept := make([]Transaction, 0, len(txs))
	found := false

	for _, tx := range txs {
		if tx.ID == id {
			found = true
			continue
		}

		kept = append(kept, tx)
	}

	if !found {
		return ErrTransactionNotFound
	}

	return l.saveTransactions(ctx, kept)
}

// CloseCurrentWeek is the manual close: it marks the current week
// closed exactly once and establishes a new current week starting
// today. Closing an already-closed week fails with ErrAlreadyClosed.
func (l *Ledger) CloseCurrentWeek(ctx context.Context) error {
	_, err := l.close(ctx, true)

	return err
}

// CheckAndAutoClose is called by the periodic scheduler. It fires only
// when the schedule is enabled, the wall-clock weekday and hour match,
// the scheduled close date has arrived and the current week is still
// open. The returned bool tells the caller whether a close happened, so
// retries within the same hour are harmless no-ops.
func (l *Ledger) CheckAndAutoClose(ctx context.Context) (bool, error) {
	sched, err := l.Schedule(ctx)
	if err != nil {
		return false, err
	}

	if !sched.Enabled {
		return false, nil
	}

	now := l.now()
	if now.Weekday() != sched.Weekday || now.Hour() != sched.Hour {
		return false, nil
	}

	next, ok, err := l.nextCloseDate(ctx)
	if err != nil {
		return false, err
	}

	if ok && dateutil.Truncate(now).Before(next) {
		return false, nil
	}

	return l.close(ctx, false)
}

func (l *Ledger) close(ctx context.Context, manual bool) (bool, error) {
	curID, curStart, err := l.currentWeek(ctx)
	if err != nil {
		return false, err
	}

	closedIDs, err := l.loadClosedIDs(ctx)
	if err != nil {
		return false, err
	}

	if containsID(closedIDs, curID) {
		if manual {
			return false, ErrAlreadyClosed
		}

		return false, nil
	}

	if manual && len(closedIDs) > 0 && dateutil.SameDay(curStart, l.now()) {
		// A re-close on the day a close already ran targets the empty
		// week that close established; the week the caller means is the
		// one already in the closed set.
		txs, err := l.loadTransactions(ctx)
		if err != nil {
			return false, err
		}

		if !hasWeekTransactions(txs, curID) {
			return false, ErrAlreadyClosed
		}
	}

	if err := l.store.Set(ctx, KeyClosedWeeks, append(closedIDs, curID)); err != nil {
		return false, fmt.Errorf("storing closed weeks: %w", err)
	}

	// Re-read the closed set: a close that did not durably take effect
	// would silently corrupt every later attribution.
	check, err := l.loadClosedIDs(ctx)
	if err != nil {
		return false, err
	}

	if !containsID(check, curID) {
		return false, fmt.Errorf("closing week %s: %w", curID, ErrInconsistentWrite)
	}

	now := l.now()

	newID := uuid.NewString()
	for containsID(check, newID) {
		newID = uuid.NewString()
	}

	// The new week starts today, not at the old week's nominal end.
	if err := l.setCurrentWeek(ctx, newID, dateutil.Truncate(now)); err != nil {
		return false, err
	}

	if err := l.scheduleNextClose(ctx, now); err != nil {
		return false, err
	}

	return true, nil
}

// scheduleNextClose points the next close at the first configured
// weekday strictly after now. An existing future date that is already
// earlier is kept, so a correct schedule is never postponed.
func (l *Ledger) scheduleNextClose(ctx context.Context, now time.Time) error {
	sched, err := l.Schedule(ctx)
	if err != nil {
		return err
	}

	candidate := dateutil.NextWeekday(now, sched.Weekday)

	existing, ok, err := l.nextCloseDate(ctx)
	if err != nil {
		return err
	}

	if ok && existing.After(dateutil.Truncate(now)) && existing.Before(candidate) {
		return nil
	}

	if err := l.store.Set(ctx, KeyNextCloseDate, dateutil.FormatDate(candidate)); err != nil {
		return fmt.Errorf("storing next close date: %w", err)
	}

	return nil
}

// CurrentWeekTransactions returns every entry belonging to the current
// week: those attributed to it, plus legacy entries whose date falls in
// the current period and which do not belong to a closed week. A closed
// current week returns nothing; closed weeks display as zeroed.
func (l *Ledger) CurrentWeekTransactions(ctx context.Context) ([]Transaction, error) {
	curID, curStart, err := l.currentWeek(ctx)
	if err != nil {
		return nil, err
	}

	closed, err := l.loadClosedSet(ctx)
	if err != nil {
		return nil, err
	}

	if closed[curID] {
		return nil, nil
	}

	end, err := l.currentWeekEnd(ctx, curStart)
	if err != nil {
		return nil, err
	}

	txs, err := l.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	dates, err := l.loadWeekDates(ctx)
	if err != nil {
		return nil, err
	}

	var out []Transaction

	for _, tx := range txs {
		if tx.WeekID == curID {
			out = append(out, tx)
			continue
		}

		if dateutil.InRange(tx.Date, curStart, end) && !effectivelyClosed(tx, closed, dates) {
			out = append(out, tx)
		}
	}

	return out, nil
}

// CurrentWeekTotal sums the current week's entries, 0 when closed.
func (l *Ledger) CurrentWeekTotal(ctx context.Context) (int64, error) {
	txs, err := l.CurrentWeekTransactions(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, tx := range txs {
		total += tx.AmountCents
	}

	return total, nil
}

// Current returns the derived view of the week presently accepting
// transactions.
func (l *Ledger) Current(ctx context.Context) (*CurrentWeek, error) {
	curID, curStart, err := l.currentWeek(ctx)
	if err != nil {
		return nil, err
	}

	closed, err := l.loadClosedSet(ctx)
	if err != nil {
		return nil, err
	}

	end, err := l.currentWeekEnd(ctx, curStart)
	if err != nil {
		return nil, err
	}

	txs, err := l.CurrentWeekTransactions(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, tx := range txs {
		total += tx.AmountCents
	}

	return &CurrentWeek{
		WeekID:     curID,
		StartDate:  curStart,
		EndDate:    end,
		TotalCents: total,
		Count:      len(txs),
		Closed:     closed[curID],
	}, nil
}

// WeeksHistory lists every week that is closed or has transactions,
// newest first, truncated to limit when limit > 0. Weeks whose start
// date cannot be resolved are dropped.
func (l *Ledger) WeeksHistory(ctx context.Context, limit int) ([]Summary, error) {
	txs, err := l.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	closedIDs, err := l.loadClosedIDs(ctx)
	if err != nil {
		return nil, err
	}

	dates, err := l.loadWeekDates(ctx)
	if err != nil {
		return nil, err
	}

	byWeek := make(map[string][]Transaction)
	for _, tx := range txs {
		if tx.WeekID != "" {
			byWeek[tx.WeekID] = append(byWeek[tx.WeekID], tx)
		}
	}

	ids := make(map[string]struct{}, len(closedIDs)+len(byWeek))
	for _, id := range closedIDs {
		ids[id] = struct{}{}
	}

	for id := range byWeek {
		ids[id] = struct{}{}
	}

	closed := make(map[string]bool, len(closedIDs))
	for _, id := range closedIDs {
		closed[id] = true
	}

	var out []Summary

	for id := range ids {
		start, ok := dates[id]
		if !ok {
			// Recovery path for inconsistent data: fall back to the
			// calendar week of the earliest attributed entry.
			start, ok = earliestWeekStart(byWeek[id])
		}

		if !ok {
			continue
		}

		var total int64

		for _, tx := range byWeek[id] {
			total += tx.AmountCents
		}

		out = append(out, Summary{
			WeekID:     id,
			StartDate:  start,
			EndDate:    dateutil.EndOfDay(start.AddDate(0, 0, 6)),
			TotalCents: total,
			Count:      len(byWeek[id]),
			Closed:     closed[id],
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}

		return out[i].WeekID < out[j].WeekID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// SetWeeklyLimit stores the spending limit in cents. A nil value means
// "no limit" and removes any stored one.
func (l *Ledger) SetWeeklyLimit(ctx context.Context, cents *int64) error {
	if cents == nil {
		if err := l.store.Remove(ctx, KeyWeeklyLimit); err != nil {
			return fmt.Errorf("removing weekly limit: %w", err)
		}

		return nil
	}

	if *cents <= 0 {
		return &ValidationError{Field: "limit", Reason: "must be greater than zero"}
	}

	if err := l.store.Set(ctx, KeyWeeklyLimit, *cents); err != nil {
		return fmt.Errorf("storing weekly limit: %w", err)
	}

	return nil
}

// WeeklyLimit returns the stored limit in cents, nil when unset.
func (l *Ledger) WeeklyLimit(ctx context.Context) (*int64, error) {
	var cents int64

	found, err := l.store.Get(ctx, KeyWeeklyLimit, &cents)
	if err != nil {
		return nil, fmt.Errorf("loading weekly limit: %w", err)
	}

	if !found {
		return nil, nil
	}

	return &cents, nil
}

// LimitExceeded reports whether the current week's total is over the
// limit. Without a limit it is always false.
func (l *Ledger) LimitExceeded(ctx context.Context) (bool, error) {
	limit, err := l.WeeklyLimit(ctx)
	if err != nil || limit == nil {
		return false, err
	}

	total, err := l.CurrentWeekTotal(ctx)
	if err != nil {
		return false, err
	}

	return total > *limit, nil
}

// LimitUsage returns the current week's spend as a percentage of the
// limit, capped at 100. Nil when no limit is set.
func (l *Ledger) LimitUsage(ctx context.Context) (*float64, error) {
	limit, err := l.WeeklyLimit(ctx)
	if err != nil || limit == nil {
		return nil, err
	}

	total, err := l.CurrentWeekTotal(ctx)
	if err != nil {
		return nil, err
	}

	usage := float64(total) / float64(*limit) * 100
	if usage > 100 {
		usage = 100
	}

	return &usage, nil
}

// Schedule returns the auto-close configuration, falling back to the
// default when none is stored.
func (l *Ledger) Schedule(ctx context.Context) (Schedule, error) {
	sched := DefaultSchedule()

	if _, err := l.store.Get(ctx, KeySchedule, &sched); err != nil {
		return Schedule{}, fmt.Errorf("loading schedule: %w", err)
	}

	return sched, nil
}

// SetSchedule validates and stores the auto-close configuration. When
// enabling, the pending close date is re-pointed unless a future one
// already falls on the configured weekday.
func (l *Ledger) SetSchedule(ctx context.Context, sched Schedule) error {
	if sched.Weekday < time.Sunday || sched.Weekday > time.Saturday {
		return &ValidationError{Field: "weekday", Reason: "must be between 0 and 6"}
	}

	if sched.Hour < 0 || sched.Hour > 23 {
		return &ValidationError{Field: "hour", Reason: "must be between 0 and 23"}
	}

	if err := l.store.Set(ctx, KeySchedule, sched); err != nil {
		return fmt.Errorf("storing schedule: %w", err)
	}

	if !sched.Enabled {
		return nil
	}

	now := l.now()

	existing, ok, err := l.nextCloseDate(ctx)
	if err != nil {
		return err
	}

	if ok && existing.After(dateutil.Truncate(now)) && existing.Weekday() == sched.Weekday {
		return nil
	}

	next := dateutil.NextWeekday(now, sched.Weekday)
	if err := l.store.Set(ctx, KeyNextCloseDate, dateutil.FormatDate(next)); err != nil {
		return fmt.Errorf("storing next close date: %w", err)
	}

	return nil
}

// currentWeek resolves the week presently accepting transactions,
// lazily deriving a fresh pointer from today's standard calendar week
// when the stored one is absent or unreadable.
func (l *Ledger) currentWeek(ctx context.Context) (string, time.Time, error) {
	var id, startStr string

	if _, err := l.store.Get(ctx, KeyCurrentWeekID, &id); err != nil {
		return "", time.Time{}, fmt.Errorf("loading current week id: %w", err)
	}

	if _, err := l.store.Get(ctx, KeyCurrentWeekStart, &startStr); err != nil {
		return "", time.Time{}, fmt.Errorf("loading current week start: %w", err)
	}

	if id != "" && startStr != "" {
		if start, err := dateutil.ParseDate(startStr); err == nil {
			return id, start, nil
		}
	}

	if id == "" {
		id = uuid.NewString()
	}

	start := dateutil.WeekStart(l.now())
	if err := l.setCurrentWeek(ctx, id, start); err != nil {
		return "", time.Time{}, err
	}

	return id, start, nil
}

func (l *Ledger) setCurrentWeek(ctx context.Context, id string, start time.Time) error {
	if err := l.store.Set(ctx, KeyCurrentWeekID, id); err != nil {
		return fmt.Errorf("storing current week id: %w", err)
	}

	if err := l.store.Set(ctx, KeyCurrentWeekStart, dateutil.FormatDate(start)); err != nil {
		return fmt.Errorf("storing current week start: %w", err)
	}

	return l.recordWeekStart(ctx, id, start)
}

// currentWeekEnd is start+6 days unless a pending close date overrides
// the boundary.
func (l *Ledger) currentWeekEnd(ctx context.Context, start time.Time) (time.Time, error) {
	next, ok, err := l.nextCloseDate(ctx)
	if err != nil {
		return time.Time{}, err
	}

	if ok && !next.Before(start) {
		return dateutil.EndOfDay(next), nil
	}

	return dateutil.EndOfDay(start.AddDate(0, 0, 6)), nil
}

func (l *Ledger) nextCloseDate(ctx context.Context) (time.Time, bool, error) {
	var s string

	found, err := l.store.Get(ctx, KeyNextCloseDate, &s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("loading next close date: %w", err)
	}

	if !found || s == "" {
		return time.Time{}, false, nil
	}

	next, err := dateutil.ParseDate(s)
	if err != nil {
		return time.Time{}, false, nil
	}

	return next, true, nil
}

func (l *Ledger) loadTransactions(ctx context.Context) ([]Transaction, error) {
	var txs []Transaction

	if _, err := l.store.Get(ctx, KeyTransactions, &txs); err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	return txs, nil
}

func (l *Ledger) saveTransactions(ctx context.Context, txs []Transaction) error {
	if err := l.store.Set(ctx, KeyTransactions, txs); err != nil {
		return fmt.Errorf("storing transactions: %w", err)
	}

	return nil
}

func (l *Ledger) loadClosedIDs(ctx context.Context) ([]string, error) {
	var ids []string

	if _, err := l.store.Get(ctx, KeyClosedWeeks, &ids); err != nil {
		return nil, fmt.Errorf("loading closed weeks: %w", err)
	}

	return ids, nil
}

func (l *Ledger) loadClosedSet(ctx context.Context) (map[string]bool, error) {
	ids, err := l.loadClosedIDs(ctx)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return set, nil
}

func (l *Ledger) loadWeekDates(ctx context.Context) (map[string]time.Time, error) {
	var raw map[string]string

	if _, err := l.store.Get(ctx, KeyWeekDates, &raw); err != nil {
		return nil, fmt.Errorf("loading week dates: %w", err)
	}

	dates := make(map[string]time.Time, len(raw))

	for id, s := range raw {
		start, err := dateutil.ParseDate(s)
		if err != nil {
			continue
		}

		dates[id] = start
	}

	return dates, nil
}

// recordWeekStart appends an id -> start mapping. Existing entries are
// never rewritten.
func (l *Ledger) recordWeekStart(ctx context.Context, id string, start time.Time) error {
	var raw map[string]string

	if _, err := l.store.Get(ctx, KeyWeekDates, &raw); err != nil {
		return fmt.Errorf("loading week dates: %w", err)
	}

	if raw == nil {
		raw = make(map[string]string)
	}

	if _, ok := raw[id]; ok {
		return nil
	}

	raw[id] = dateutil.FormatDate(start)

	if err := l.store.Set(ctx, KeyWeekDates, raw); err != nil {
		return fmt.Errorf("storing week dates: %w", err)
	}

	return nil
}

// effectivelyClosed reports whether tx belongs to a closed week, either
// through its own attribution or, for entries missing one, through the
// standard calendar week containing its date.
func effectivelyClosed(tx Transaction, closed map[string]bool, dates map[string]time.Time) bool {
	if tx.WeekID != "" {
		return closed[tx.WeekID]
	}

	if id, ok := weekIDForStart(dates, dateutil.WeekStart(tx.Date)); ok {
		return closed[id]
	}

	return false
}

// earliestWeekStart resolves a start date from the calendar week of
// the earliest transaction, for weeks with no mapping entry.
func earliestWeekStart(txs []Transaction) (time.Time, bool) {
	if len(txs) == 0 {
		return time.Time{}, false
	}

	earliest := txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.Before(earliest) {
			earliest = tx.Date
		}
	}

	return dateutil.WeekStart(earliest), true
}

// weekIDForStart finds a week mapped to start. Map iteration order is
// randomized, so ties resolve to the smallest id to stay deterministic.
func weekIDForStart(dates map[string]time.Time, start time.Time) (string, bool) {
	var match string

	for id, d := range dates {
		if !dateutil.SameDay(d, start) {
			continue
		}

		if match == "" || id < match {
			match = id
		}
	}

	return match, match != ""
}

func hasWeekTransactions(txs []Transaction, weekID string) bool {
	for _, tx := range txs {
		if tx.WeekID == weekID {
			return true
		}
	}

	return false
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}

	return false
}
