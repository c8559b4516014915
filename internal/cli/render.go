package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/zapponejosh/lunar-api/internal/lunar"
)

type conversion struct {
	Solar      string          `json:"solar"`
	Weekday    string          `json:"weekday"`
	Lunar      lunar.LunarDate `json:"lunar"`
	LunarText  string          `json:"lunar_text"`
	YearPillar string          `json:"year_pillar"`
	Animal     string          `json:"animal"`
	DayPillar  string          `json:"day_pillar"`
}

func newConversion(solar lunar.SolarDate, ld lunar.LunarDate) conversion {
	year := lunar.YearPillar(ld.Year)
	return conversion{
		Solar:      solar.String(),
		Weekday:    solar.Weekday().String(),
		Lunar:      ld,
		LunarText:  ld.String(),
		YearPillar: year.String(),
		Animal:     year.Animal(),
		DayPillar:  lunar.DayPillar(solar).String(),
	}
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderConversion(w io.Writer, format string, c conversion) error {
	if format == FormatJSON {
		return renderJSON(w, c)
	}

	_, _ = fmt.Fprintf(w, "Solar:  %s (%s)\n", c.Solar, c.Weekday)
	_, _ = fmt.Fprintf(w, "Lunar:  %s\n", c.LunarText)
	_, _ = fmt.Fprintf(w, "Year:   %s, %s\n", c.YearPillar, c.Animal)
	_, _ = fmt.Fprintf(w, "Day:    %s\n", c.DayPillar)
	return nil
}

type yearOutput struct {
	Year      int               `json:"year"`
	NewYear   string            `json:"new_year"`
	LeapMonth int               `json:"leap_month"`
	Days      int               `json:"days"`
	Pillar    string            `json:"pillar"`
	Months    []lunar.MonthSpan `json:"months"`
}

func renderYear(w io.Writer, format string, rec lunar.YearRecord, spans []lunar.MonthSpan) error {
	pillar := lunar.YearPillar(rec.Year)

	if format == FormatJSON {
		return renderJSON(w, yearOutput{
			Year:      rec.Year,
			NewYear:   rec.NewYear.String(),
			LeapMonth: rec.LeapMonth,
			Days:      rec.Days(),
			Pillar:    pillar.String(),
			Months:    spans,
		})
	}

	_, _ = fmt.Fprintf(w, "Lunar year %d: %s, year of the %s\n", rec.Year, pillar, pillar.Animal())
	_, _ = fmt.Fprintf(w, "New year %s, %d days", rec.NewYear, rec.Days())
	if rec.HasLeapMonth() {
		_, _ = fmt.Fprintf(w, ", leap month %d", rec.LeapMonth)
	}
	_, _ = fmt.Fprintln(w)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Month", "Days", "Start", "End"})

	for _, span := range spans {
		label := strconv.Itoa(span.Month)
		if span.Leap {
			label = "L" + label
		}
		t.AppendRow(table.Row{label, span.Days, span.Start.String(), span.End.String()})
	}
	t.Render()
	return nil
}

type rangeOutput struct {
	lunar.Metadata
	lunar.Range
}

func renderRange(w io.Writer, format string, meta lunar.Metadata, r lunar.Range) error {
	if format == FormatJSON {
		return renderJSON(w, rangeOutput{Metadata: meta, Range: r})
	}

	_, _ = fmt.Fprintf(w, "Table:        %s\n", meta.Version)
	if meta.Source != "" {
		_, _ = fmt.Fprintf(w, "Source:       %s\n", meta.Source)
	}
	_, _ = fmt.Fprintf(w, "Lunar years:  %d-%d\n", r.MinYear, r.MaxYear)
	_, _ = fmt.Fprintf(w, "Solar dates:  %s to %s (inclusive)\n", r.First, r.Last)
	return nil
}

func renderVerify(w io.Writer, format string, report VerifyReport) error {
	if format == FormatJSON {
		return renderJSON(w, report)
	}

	_, _ = fmt.Fprintf(w, "ok: table %s\n", report.Version)
	_, _ = fmt.Fprintf(w, "  %d lunar years (%d with a leap month)\n", report.Years, report.LeapYears)
	_, _ = fmt.Fprintf(w, "  %d days round-tripped in both directions, %s to %s\n",
		report.SolarDays, report.FirstSolar, report.LastSolar)
	return nil
}
