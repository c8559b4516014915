package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/zapponejosh/lunar-api/internal/config"
	"github.com/zapponejosh/lunar-api/internal/lunar"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

const testAPIKey = "test-admin-key"

// testEnv holds a router wired to the embedded table.
type testEnv struct {
	store  *lunar.Store
	cfg    *config.Config
	router http.Handler

	// loadErr, when set, makes the reload loader fail.
	loadErr error
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))

	cfg := &config.Config{
		Port:         8080,
		Env:          config.EnvDevelopment,
		TableSource:  config.SourceEmbedded,
		MaxRangeDays: 90,
		APIKey:       testAPIKey,
		LogLevel:     "error",
		LogFormat:    "text",
	}

	env := &testEnv{
		store: lunar.NewStore(lunar.Default()),
		cfg:   cfg,
	}

	loader := func(ctx context.Context) (*lunar.Table, error) {
		if env.loadErr != nil {
			return nil, env.loadErr
		}
		return lunar.NewTable(lunar.Metadata{Version: "reloaded", Source: "test"}, lunar.Default().Records())
	}

	handlers := NewHandlers(env.store, nil, loader, cfg, logger)
	env.router = SetupRoutes(handlers, cfg, logger)
	return env
}

// do sends a request through the full router.
func (env *testEnv) do(method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// envelope mirrors Response with Data left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorInfo      `json:"error"`
}

// parseResponse decodes the envelope and, if v is non-nil, its data.
func parseResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, rr.Body.String())
	}
	if v != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			t.Fatalf("decode data: %v, data: %s", err, env.Data)
		}
	}
	return env
}

// =============================================================================
// MIDDLEWARE TESTS
// =============================================================================

func TestRequestIDMiddleware(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/health", nil)
	id := rr.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("X-Request-ID = %q, want a UUID", id)
	}

	incoming := uuid.NewString()
	rr = env.do("GET", "/health", map[string]string{RequestIDHeader: incoming})
	if got := rr.Header().Get(RequestIDHeader); got != incoming {
		t.Errorf("X-Request-ID = %q, want incoming %q", got, incoming)
	}

	rr = env.do("GET", "/health", map[string]string{RequestIDHeader: "not-a-uuid"})
	if got := rr.Header().Get(RequestIDHeader); got == "not-a-uuid" {
		t.Error("malformed incoming X-Request-ID was kept")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 4})))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	env := setupTest(t)

	rr := env.do("OPTIONS", "/api/v1/calendar/range", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name       string
		header     map[string]string
		wantStatus int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"valid key", map[string]string{"X-API-Key": testAPIKey}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do("POST", "/api/v1/admin/table/reload", tt.header)
			if rr.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d, body: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_DevelopmentWithoutKey(t *testing.T) {
	cfg := &config.Config{Env: config.EnvDevelopment}
	handler := AuthMiddleware(cfg, slog.Default())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
}

// =============================================================================
// CONVERSION TESTS
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusOK)
	}

	var data map[string]string
	parseResponse(t, rr, &data)
	if data["table_version"] != "1900-2050.2" {
		t.Errorf("table_version = %q, want %q", data["table_version"], "1900-2050.2")
	}
	if _, ok := data["database"]; ok {
		t.Error("database status reported without a database")
	}
}

func TestGetRange(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/api/v1/calendar/range", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusOK)
	}

	var data struct {
		MinYear int             `json:"min_year"`
		MaxYear int             `json:"max_year"`
		First   lunar.SolarDate `json:"first"`
		End     lunar.SolarDate `json:"end"`
		Version string          `json:"version"`
	}
	parseResponse(t, rr, &data)

	if data.MinYear != 1900 || data.MaxYear != 2050 {
		t.Errorf("years = %d-%d, want 1900-2050", data.MinYear, data.MaxYear)
	}
	if data.First != lunar.NewSolarDate(1900, 1, 31) {
		t.Errorf("first = %v, want 1900-01-31", data.First)
	}
	if data.End != lunar.NewSolarDate(2051, 2, 11) {
		t.Errorf("end = %v, want 2051-02-11", data.End)
	}
	if data.Version != "1900-2050.2" {
		t.Errorf("version = %q, want %q", data.Version, "1900-2050.2")
	}
}

func TestConvertSolarDate(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name        string
		path        string
		lang        string
		wantText    string
		wantLeap    bool
		wantWeekday string
		wantPillar  string
		wantAnimal  string
	}{
		{
			name:        "leap month start",
			path:        "/api/v1/convert/solar/2023-03-22",
			wantText:    "2023-L02-01",
			wantLeap:    true,
			wantWeekday: "Wednesday",
			wantPillar:  "Gye-myo",
			wantAnimal:  "Rabbit",
		},
		{
			name:        "korean names via query",
			path:        "/api/v1/convert/solar/2023-03-22?lang=ko",
			wantText:    "2023-L02-01",
			wantLeap:    true,
			wantWeekday: "수요일",
			wantPillar:  "계묘",
			wantAnimal:  "토끼",
		},
		{
			name:        "korean names via header",
			path:        "/api/v1/convert/solar/2024-09-17",
			lang:        "ko-KR,ko;q=0.9,en;q=0.5",
			wantText:    "2024-08-15",
			wantWeekday: "화요일",
			wantPillar:  "갑진",
			wantAnimal:  "용",
		},
		{
			name:        "unsupported language falls back to english",
			path:        "/api/v1/convert/solar/2024-09-17",
			lang:        "fr-FR",
			wantText:    "2024-08-15",
			wantWeekday: "Tuesday",
			wantPillar:  "Gap-jin",
			wantAnimal:  "Dragon",
		},
		{
			name:        "korean leap fifth month 2017",
			path:        "/api/v1/convert/solar/2017-06-24",
			wantText:    "2017-L05-01",
			wantLeap:    true,
			wantWeekday: "Saturday",
			wantPillar:  "Jeong-yu",
			wantAnimal:  "Rooster",
		},
		{
			name:        "before lunar new year",
			path:        "/api/v1/convert/solar/2023-01-21",
			wantText:    "2022-12-30",
			wantWeekday: "Saturday",
			wantPillar:  "Im-in",
			wantAnimal:  "Tiger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var header map[string]string
			if tt.lang != "" {
				header = map[string]string{"Accept-Language": tt.lang}
			}

			rr := env.do("GET", tt.path, header)
			if rr.Code != http.StatusOK {
				t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
			}

			var data ConversionView
			parseResponse(t, rr, &data)

			if data.Lunar.Text != tt.wantText {
				t.Errorf("lunar = %q, want %q", data.Lunar.Text, tt.wantText)
			}
			if data.Lunar.IsLeapMonth != tt.wantLeap {
				t.Errorf("is_leap_month = %v, want %v", data.Lunar.IsLeapMonth, tt.wantLeap)
			}
			if data.Weekday != tt.wantWeekday {
				t.Errorf("weekday = %q, want %q", data.Weekday, tt.wantWeekday)
			}
			if data.YearPillar.Name != tt.wantPillar {
				t.Errorf("year pillar = %q, want %q", data.YearPillar.Name, tt.wantPillar)
			}
			if data.YearPillar.Animal != tt.wantAnimal {
				t.Errorf("animal = %q, want %q", data.YearPillar.Animal, tt.wantAnimal)
			}
		})
	}
}

func TestConvertSolarDate_Errors(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name     string
		path     string
		wantCode string
	}{
		{"bad format", "/api/v1/convert/solar/20230101", CodeBadRequest},
		{"letters", "/api/v1/convert/solar/2023-ab-01", CodeBadRequest},
		{"plus sign in month", "/api/v1/convert/solar/2023-+2-01", CodeBadRequest},
		{"plus sign in year", "/api/v1/convert/solar/+023-02-01", CodeBadRequest},
		{"minus sign in day", "/api/v1/convert/solar/2023-02--1", CodeBadRequest},
		{"impossible day", "/api/v1/convert/solar/2023-02-30", CodeInvalidDay},
		{"impossible month", "/api/v1/convert/solar/2023-13-01", CodeInvalidMonth},
		{"before range", "/api/v1/convert/solar/1900-01-30", CodeOutOfRange},
		{"after range", "/api/v1/convert/solar/2051-02-11", CodeOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do("GET", tt.path, nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
			resp := parseResponse(t, rr, nil)
			if resp.Success {
				t.Error("Success = true, want false")
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("Error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestConvertLunarDate(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name      string
		query     string
		wantSolar string
	}{
		{"chuseok 2024", "year=2024&month=8&day=15", "2024-09-17"},
		{"regular month before leap", "year=2023&month=2&day=29", "2023-03-20"},
		{"leap month", "year=2023&month=2&day=1&leap=true", "2023-03-22"},
		{"explicit non-leap", "year=2023&month=2&day=1&leap=false", "2023-02-20"},
		{"last supported day", "year=2050&month=12&day=29", "2051-02-10"},
		{"korean leap third month 2012", "year=2012&month=3&day=1&leap=true", "2012-04-21"},
		{"seollal 1997", "year=1997&month=1&day=1", "1997-02-08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do("GET", "/api/v1/convert/lunar?"+tt.query, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
			}

			var data ConversionView
			parseResponse(t, rr, &data)
			if data.Solar != tt.wantSolar {
				t.Errorf("solar = %q, want %q", data.Solar, tt.wantSolar)
			}
		})
	}
}

func TestConvertLunarDate_Errors(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{"missing year", "month=1&day=1", CodeBadRequest},
		{"non-numeric day", "year=2023&month=1&day=x", CodeBadRequest},
		{"bad leap flag", "year=2023&month=2&day=1&leap=maybe", CodeBadRequest},
		{"year before range", "year=1899&month=1&day=1", CodeOutOfRange},
		{"year after range", "year=2051&month=1&day=1", CodeOutOfRange},
		{"month zero", "year=2023&month=0&day=1", CodeInvalidMonth},
		{"month thirteen", "year=2023&month=13&day=1", CodeInvalidMonth},
		{"leap flag on regular month", "year=2023&month=3&day=1&leap=true", CodeInvalidMonth},
		{"leap flag in year without leap", "year=2024&month=2&day=1&leap=true", CodeInvalidMonth},
		{"2017 leap month is fifth not sixth", "year=2017&month=6&day=1&leap=true", CodeInvalidMonth},
		{"day past short month", "year=2023&month=1&day=30", CodeInvalidDay},
		{"day thirty one", "year=2023&month=2&day=31", CodeInvalidDay},
		{"out of range wins over bad month", "year=1800&month=13&day=40", CodeOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do("GET", "/api/v1/convert/lunar?"+tt.query, nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
			resp := parseResponse(t, rr, nil)
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("Error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestConvertSolarRange(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/api/v1/convert/solar?start=2023-03-20&end=2023-03-23", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var data RangeView
	parseResponse(t, rr, &data)

	want := []string{"2023-02-29", "2023-02-30", "2023-L02-01", "2023-L02-02"}
	if data.Count != len(want) {
		t.Fatalf("count = %d, want %d", data.Count, len(want))
	}
	for i, day := range data.Days {
		if day.Lunar.Text != want[i] {
			t.Errorf("days[%d] = %q, want %q", i, day.Lunar.Text, want[i])
		}
	}
}

func TestConvertSolarRange_Errors(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{"missing end", "start=2023-01-01", CodeBadRequest},
		{"bad start", "start=2023/01/01&end=2023-01-02", CodeBadRequest},
		{"reversed", "start=2023-01-10&end=2023-01-01", CodeBadRequest},
		{"too long", "start=2023-01-01&end=2023-12-31", CodeBadRequest},
		{"impossible end", "start=2023-02-01&end=2023-02-29", CodeInvalidDay},
		{"crosses upper bound", "start=2051-02-01&end=2051-02-20", CodeOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do("GET", "/api/v1/convert/solar?"+tt.query, nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
			resp := parseResponse(t, rr, nil)
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("Error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestGetLunarYear(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/api/v1/lunar/years/2023?lang=ko", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var data YearView
	parseResponse(t, rr, &data)

	if data.NewYear != "2023-01-22" {
		t.Errorf("new_year = %q, want %q", data.NewYear, "2023-01-22")
	}
	if data.LeapMonth != 2 {
		t.Errorf("leap_month = %d, want 2", data.LeapMonth)
	}
	if data.Days != 384 {
		t.Errorf("days = %d, want 384", data.Days)
	}
	if data.Pillar.Name != "계묘" {
		t.Errorf("pillar = %q, want %q", data.Pillar.Name, "계묘")
	}
	if len(data.Months) != 13 {
		t.Fatalf("len(months) = %d, want 13", len(data.Months))
	}

	leap := data.Months[2]
	if !leap.Leap || leap.Month != 2 || leap.Name != "윤2월" || leap.Start != "2023-03-22" {
		t.Errorf("months[2] = %+v, want leap month 2 (윤2월) starting 2023-03-22", leap)
	}
	if last := data.Months[12]; last.End != "2024-02-09" {
		t.Errorf("last month ends %q, want %q", last.End, "2024-02-09")
	}
}

func TestGetLunarYear_Errors(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/api/v1/lunar/years/abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = env.do("GET", "/api/v1/lunar/years/3000", nil)
	resp := parseResponse(t, rr, nil)
	if resp.Error == nil || resp.Error.Code != CodeOutOfRange {
		t.Errorf("Error = %+v, want code %s", resp.Error, CodeOutOfRange)
	}
}

// =============================================================================
// RELOAD TESTS
// =============================================================================

func TestReloadTable(t *testing.T) {
	env := setupTest(t)
	auth := map[string]string{"X-API-Key": testAPIKey}

	rr := env.do("POST", "/api/v1/admin/table/reload", auth)
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var data struct {
		Previous string `json:"previous_version"`
		Version  string `json:"version"`
		Years    int    `json:"years"`
	}
	parseResponse(t, rr, &data)
	if data.Previous != "1900-2050.2" || data.Version != "reloaded" || data.Years != 151 {
		t.Errorf("reload = %+v, want 1900-2050.2 -> reloaded with 151 years", data)
	}
	if got := env.store.Table().Metadata().Version; got != "reloaded" {
		t.Errorf("live version = %q, want %q", got, "reloaded")
	}
}

func TestReloadTable_FailureKeepsSnapshot(t *testing.T) {
	env := setupTest(t)
	env.loadErr = errors.New("disk on fire")

	rr := env.do("POST", "/api/v1/admin/table/reload", map[string]string{"X-API-Key": testAPIKey})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	resp := parseResponse(t, rr, nil)
	if resp.Error == nil || resp.Error.Code != CodeReloadFailed {
		t.Errorf("Error = %+v, want code %s", resp.Error, CodeReloadFailed)
	}
	if got := env.store.Table().Metadata().Version; got != "1900-2050.2" {
		t.Errorf("live version = %q, want %q", got, "1900-2050.2")
	}
}

func TestUnknownRoute(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/api/v1/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
