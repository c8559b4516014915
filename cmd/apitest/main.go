// Command apitest runs a smoke test suite against a running lunar API server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ConversionResponse is the response for the single-date conversion endpoints.
type ConversionResponse struct {
	Solar   string `json:"solar"`
	Weekday string `json:"weekday"`
	Lunar   struct {
		Text string `json:"text"`
	} `json:"lunar"`
	YearPillar struct {
		Name   string `json:"name"`
		Animal string `json:"animal"`
	} `json:"year_pillar"`
}

// RangeResponse is the response for /convert/solar?start=&end=
type RangeResponse struct {
	Count int                  `json:"count"`
	Days  []ConversionResponse `json:"days"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status       string `json:"status"`
	TableVersion string `json:"table_version"`
}

// RangeInfoResponse is the response for /calendar/range
type RangeInfoResponse struct {
	MinYear int    `json:"min_year"`
	MaxYear int    `json:"max_year"`
	Version string `json:"version"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Lunar API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)

	tr.testHealth()
	tr.testRange()
	tr.testSolarToLunar()
	tr.testLunarToSolar()
	tr.testDateRange()
	tr.testErrors()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.getData("/health", &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess(fmt.Sprintf("Health check passed (table %s)", health.TableVersion))
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testRange() {
	tr.printSection("Supported Range")

	var info RangeInfoResponse
	if err := tr.getData("/api/v1/calendar/range", &info); err != nil {
		tr.recordError("Range", err.Error())
		return
	}

	if info.MinYear > 1900 || info.MaxYear < 2050 {
		tr.recordError("Range", fmt.Sprintf("coverage %d-%d narrower than 1900-2050", info.MinYear, info.MaxYear))
		return
	}
	tr.recordSuccess(fmt.Sprintf("Table %s covers %d-%d", info.Version, info.MinYear, info.MaxYear))
}

func (tr *TestRunner) testSolarToLunar() {
	tr.printSection("Solar to Lunar")

	cases := []struct {
		name  string
		solar string
		want  string
	}{
		{"Lunar New Year 2023", "2023-01-22", "2023-01-01"},
		{"Day before New Year", "2023-01-21", "2022-12-30"},
		{"Leap month start", "2023-03-22", "2023-L02-01"},
		{"Chuseok 2024", "2024-09-17", "2024-08-15"},
		{"Chuseok 2025", "2025-10-06", "2025-08-15"},
		{"First supported day", "1900-01-31", "1900-01-01"},
		{"Korean leap month 5 (2017)", "2017-06-24", "2017-L05-01"},
		{"Seollal 2027 (Korean time)", "2027-02-07", "2027-01-01"},
	}

	for _, c := range cases {
		var conv ConversionResponse
		if err := tr.getData("/api/v1/convert/solar/"+c.solar, &conv); err != nil {
			tr.recordError(c.name, err.Error())
			continue
		}
		if conv.Lunar.Text != c.want {
			tr.recordError(c.name, fmt.Sprintf("got %s, want %s", conv.Lunar.Text, c.want))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s: %s -> %s", c.name, c.solar, conv.Lunar.Text))
		tr.printConversion(&conv)
	}
}

func (tr *TestRunner) testLunarToSolar() {
	tr.printSection("Lunar to Solar")

	cases := []struct {
		name  string
		query string
		want  string
	}{
		{"Seollal 2024", "year=2024&month=1&day=1", "2024-02-10"},
		{"Regular month 2", "year=2023&month=2&day=29", "2023-03-20"},
		{"Leap month 2", "year=2023&month=2&day=1&leap=true", "2023-03-22"},
		{"Last supported day", "year=2050&month=12&day=29", "2051-02-10"},
		{"Korean leap month 3 (2012)", "year=2012&month=3&day=1&leap=true", "2012-04-21"},
	}

	for _, c := range cases {
		var conv ConversionResponse
		if err := tr.getData("/api/v1/convert/lunar?"+c.query, &conv); err != nil {
			tr.recordError(c.name, err.Error())
			continue
		}
		if conv.Solar != c.want {
			tr.recordError(c.name, fmt.Sprintf("got %s, want %s", conv.Solar, c.want))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s -> %s", c.name, conv.Solar))
		tr.printConversion(&conv)
	}
}

func (tr *TestRunner) testDateRange() {
	tr.printSection("Date Range")

	var rng RangeResponse
	if err := tr.getData("/api/v1/convert/solar?start=2023-03-20&end=2023-03-23", &rng); err != nil {
		tr.recordError("Range across leap month", err.Error())
		return
	}

	if rng.Count != 4 || len(rng.Days) != 4 {
		tr.recordError("Range across leap month", fmt.Sprintf("got %d days, want 4", rng.Count))
		return
	}
	if rng.Days[2].Lunar.Text != "2023-L02-01" {
		tr.recordError("Range across leap month", fmt.Sprintf("day 3 = %s, want 2023-L02-01", rng.Days[2].Lunar.Text))
		return
	}
	tr.recordSuccess("Range across leap month boundary")
}

func (tr *TestRunner) testErrors() {
	tr.printSection("Error Handling")

	cases := []struct {
		name     string
		path     string
		wantCode string
	}{
		{"Before range", "/api/v1/convert/solar/1900-01-30", "OUT_OF_RANGE"},
		{"After range", "/api/v1/convert/lunar?year=2051&month=1&day=1", "OUT_OF_RANGE"},
		{"Month 13", "/api/v1/convert/lunar?year=2023&month=13&day=1", "INVALID_MONTH"},
		{"Leap flag on regular month", "/api/v1/convert/lunar?year=2024&month=2&day=1&leap=true", "INVALID_MONTH"},
		{"Day 30 of short month", "/api/v1/convert/lunar?year=2023&month=1&day=30", "INVALID_DAY"},
		{"February 30", "/api/v1/convert/solar/2023-02-30", "INVALID_DAY"},
		{"Malformed date", "/api/v1/convert/solar/not-a-date", "BAD_REQUEST"},
		{"Signed month", "/api/v1/convert/solar/2023-+2-01", "BAD_REQUEST"},
	}

	for _, c := range cases {
		code, err := tr.getErrorCode(c.path)
		if err != nil {
			tr.recordError(c.name, err.Error())
			continue
		}
		if code != c.wantCode {
			tr.recordError(c.name, fmt.Sprintf("got code %s, want %s", code, c.wantCode))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s -> %s", c.name, code))
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (tr *TestRunner) get(path string) (*APIResponse, int, error) {
	resp, err := tr.client.Get(tr.baseURL + path)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("parse JSON: %w (body: %s)", err, string(body))
	}

	return &apiResp, resp.StatusCode, nil
}

func (tr *TestRunner) getData(path string, target interface{}) error {
	resp, _, err := tr.get(path)
	if err != nil {
		return err
	}

	if !resp.Success {
		errMsg := "unknown error"
		if resp.Error != nil {
			errMsg = resp.Error.Message
		}
		return fmt.Errorf("API error: %s", errMsg)
	}

	return json.Unmarshal(resp.Data, target)
}

func (tr *TestRunner) getErrorCode(path string) (string, error) {
	resp, status, err := tr.get(path)
	if err != nil {
		return "", err
	}
	if resp.Success || resp.Error == nil {
		return "", fmt.Errorf("expected error, got success (status %d)", status)
	}
	if status != http.StatusBadRequest {
		return resp.Error.Code, fmt.Errorf("status %d, want %d", status, http.StatusBadRequest)
	}
	return resp.Error.Code, nil
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) printConversion(c *ConversionResponse) {
	if !tr.verbose {
		return
	}
	fmt.Printf("    %s (%s) = lunar %s, %s year of the %s\n",
		c.Solar, c.Weekday, c.Lunar.Text, c.YearPillar.Name, c.YearPillar.Animal)
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
		return
	}

	fmt.Println("All tests passed! ✓")
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	verbose := flag.Bool("v", false, "Verbose output (show conversion details)")
	flag.Parse()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *verbose)
	runner.Run()

	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
