package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/lunar-api/internal/config"
	"github.com/zapponejosh/lunar-api/internal/database"
	"github.com/zapponejosh/lunar-api/internal/logger"
	"github.com/zapponejosh/lunar-api/internal/lunar"
)

// TableLoader reads a fresh reference table from the configured source.
type TableLoader func(ctx context.Context) (*lunar.Table, error)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	store  *lunar.Store
	db     *database.DB // nil unless the table comes from the database
	loader TableLoader  // nil disables reload
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *lunar.Store, db *database.DB, loader TableLoader, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:  store,
		db:     db,
		loader: loader,
		cfg:    cfg,
		logger: logger,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":        "healthy",
		"table_version": h.store.Table().Metadata().Version,
	}

	if h.db != nil {
		if err := h.db.Health(r.Context()); err != nil {
			h.logger.Warn("health check failed", slog.Any("error", err))
			WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", CodeUnhealthy)
			return
		}
		status["database"] = "healthy"
	}

	WriteSuccess(w, status)
}

// GetRange handles GET /api/v1/calendar/range
func (h *Handlers) GetRange(w http.ResponseWriter, r *http.Request) {
	table := h.store.Table()
	WriteSuccess(w, RangeInfoView{Range: table.Range(), Metadata: table.Metadata()})
}

// ConvertSolarDate handles GET /api/v1/convert/solar/{YYYY-MM-DD}
func (h *Handlers) ConvertSolarDate(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")

	date, ok := parseSolarParam(dateStr)
	if !ok {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return
	}

	table := h.store.Table()
	ld, err := table.SolarToLunar(date)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	WriteSuccess(w, newConversionView(date, ld, requestLang(r)))
}

// ConvertLunarDate handles GET /api/v1/convert/lunar?year=&month=&day=&leap=
func (h *Handlers) ConvertLunarDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	year, err := requiredInt(q.Get("year"), "year")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	month, err := requiredInt(q.Get("month"), "month")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	day, err := requiredInt(q.Get("day"), "day")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	leap := false
	if s := q.Get("leap"); s != "" {
		leap, err = strconv.ParseBool(s)
		if err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid leap parameter: %s. Use true or false", s))
			return
		}
	}

	table := h.store.Table()
	solar, err := table.LunarToSolar(year, month, leap, day)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	ld := lunar.LunarDate{Year: year, Month: month, IsLeapMonth: leap, Day: day}
	WriteSuccess(w, newConversionView(solar, ld, requestLang(r)))
}

// ConvertSolarRange handles GET /api/v1/convert/solar?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handlers) ConvertSolarRange(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" || endStr == "" {
		WriteBadRequest(w, "Both start and end date parameters are required")
		return
	}

	start, ok := parseSolarParam(startStr)
	if !ok {
		WriteBadRequest(w, fmt.Sprintf("Invalid start date format: %s. Use YYYY-MM-DD", startStr))
		return
	}
	end, ok := parseSolarParam(endStr)
	if !ok {
		WriteBadRequest(w, fmt.Sprintf("Invalid end date format: %s. Use YYYY-MM-DD", endStr))
		return
	}

	for _, d := range []lunar.SolarDate{start, end} {
		if err := d.Validate(); err != nil {
			h.writeEngineError(w, r, err)
			return
		}
	}

	if end.Before(start) {
		WriteBadRequest(w, "Start date must be before or equal to end date")
		return
	}

	count := start.DaysUntil(end) + 1
	if count > h.cfg.MaxRangeDays {
		WriteBadRequest(w, fmt.Sprintf("Date range cannot exceed %d days", h.cfg.MaxRangeDays))
		return
	}

	// One snapshot for the whole range so a reload can't split it.
	table := h.store.Table()
	lang := requestLang(r)

	days := make([]ConversionView, 0, count)
	for d := start; !end.Before(d); d = d.AddDays(1) {
		ld, err := table.SolarToLunar(d)
		if err != nil {
			h.writeEngineError(w, r, err)
			return
		}
		days = append(days, newConversionView(d, ld, lang))
	}

	WriteSuccess(w, RangeView{
		Start: start.String(),
		End:   end.String(),
		Count: len(days),
		Days:  days,
	})
}

// GetLunarYear handles GET /api/v1/lunar/years/{year}
func (h *Handlers) GetLunarYear(w http.ResponseWriter, r *http.Request) {
	year, err := requiredInt(chi.URLParam(r, "year"), "year")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	table := h.store.Table()
	rec, err := table.RecordForLunarYear(year)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	spans, err := table.YearMonths(year)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	lang := requestLang(r)
	months := make([]MonthView, len(spans))
	for i, span := range spans {
		months[i] = MonthView{
			MonthSlot: span.MonthSlot,
			Name:      monthName(span.Month, span.Leap, lang),
			Start:     span.Start.String(),
			End:       span.End.String(),
		}
	}

	WriteSuccess(w, YearView{
		Year:      rec.Year,
		NewYear:   rec.NewYear.String(),
		LeapMonth: rec.LeapMonth,
		Days:      rec.Days(),
		Pillar:    newPillarView(lunar.YearPillar(rec.Year), lang),
		Months:    months,
	})
}

// ReloadTable handles POST /api/v1/admin/table/reload
//
// The new table is fully validated before it replaces the live snapshot; on
// failure the previous table keeps serving.
func (h *Handlers) ReloadTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.loader == nil {
		WriteError(w, http.StatusNotImplemented, "Table reload is not configured", CodeNotConfigured)
		return
	}

	table, err := h.loader(ctx)
	if err != nil {
		logger.Error(ctx, "table reload failed", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Reload failed: %v", err), CodeReloadFailed)
		return
	}

	prev := h.store.Swap(table)
	logger.Info(ctx, "reference table reloaded",
		slog.String("previous", prev.Metadata().Version),
		slog.String("version", table.Metadata().Version),
	)

	WriteSuccess(w, map[string]interface{}{
		"previous_version": prev.Metadata().Version,
		"version":          table.Metadata().Version,
		"years":            table.Len(),
	})
}

// writeEngineError writes a 400 for bad input and a 500 for anything else.
func (h *Handlers) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	if WriteConversionError(w, err) {
		return
	}
	logger.Error(r.Context(), "conversion failed", err, slog.String("path", r.URL.Path))
	WriteInternalError(w, "Conversion failed")
}

// parseSolarParam parses YYYY-MM-DD into its fields without checking that
// the day exists, so 2023-02-30 reaches the engine and fails as INVALID_DAY.
func parseSolarParam(s string) (lunar.SolarDate, bool) {
	if len(s) != len(lunar.DateLayout) || s[4] != '-' || s[7] != '-' {
		return lunar.SolarDate{}, false
	}

	var fields [3]int
	for i, p := range [3]string{s[0:4], s[5:7], s[8:10]} {
		for j := 0; j < len(p); j++ {
			if p[j] < '0' || p[j] > '9' {
				return lunar.SolarDate{}, false
			}
		}
		fields[i], _ = strconv.Atoi(p)
	}

	return lunar.NewSolarDate(fields[0], fields[1], fields[2]), true
}

func requiredInt(s, name string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%s parameter is required", name)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter: %s", name, s)
	}
	return n, nil
}
