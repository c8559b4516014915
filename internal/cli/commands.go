package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/lunar-api/internal/lunar"
)

func newToLunarCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "to-lunar DATE",
		Short:   "Convert a solar date (YYYY-MM-DD) to the lunar calendar",
		Example: "  lunarctl to-lunar 2023-03-22",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			solar, err := lunar.ParseSolarDate(args[0])
			if err != nil {
				return err
			}

			ld, err := tableFrom(cmd).SolarToLunar(solar)
			if err != nil {
				return err
			}

			return renderConversion(cmd.OutOrStdout(), opts.format, newConversion(solar, ld))
		},
	}
}

func newToSolarCommand(opts *rootOptions) *cobra.Command {
	var leap bool

	cmd := &cobra.Command{
		Use:   "to-solar YEAR MONTH DAY",
		Short: "Convert a lunar date to the solar calendar",
		Example: `  lunarctl to-solar 2024 8 15
  lunarctl to-solar 2023 2 1 --leap`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields [3]int
			for i, name := range []string{"year", "month", "day"} {
				n, err := strconv.Atoi(args[i])
				if err != nil {
					return fmt.Errorf("invalid %s %q", name, args[i])
				}
				fields[i] = n
			}

			solar, err := tableFrom(cmd).LunarToSolar(fields[0], fields[1], leap, fields[2])
			if err != nil {
				return err
			}

			ld := lunar.LunarDate{Year: fields[0], Month: fields[1], IsLeapMonth: leap, Day: fields[2]}
			return renderConversion(cmd.OutOrStdout(), opts.format, newConversion(solar, ld))
		},
	}

	cmd.Flags().BoolVar(&leap, "leap", false, "The date is in the year's leap month")
	return cmd
}

func newYearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "year YEAR",
		Short:   "Show the month structure of a lunar year",
		Example: "  lunarctl year 2023",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}

			table := tableFrom(cmd)
			rec, err := table.RecordForLunarYear(year)
			if err != nil {
				return err
			}
			spans, err := table.YearMonths(year)
			if err != nil {
				return err
			}

			return renderYear(cmd.OutOrStdout(), opts.format, rec, spans)
		},
	}
}

func newRangeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "range",
		Short: "Show the supported date range of the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := tableFrom(cmd)
			return renderRange(cmd.OutOrStdout(), opts.format, table.Metadata(), table.Range())
		},
	}
}

func newVerifyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Validate a table and round-trip every supported day",
		Long: `Verify checks the table invariants (already enforced on load) and then
converts every supported solar day to the lunar calendar and back, and every
lunar day to the solar calendar and back. Any mismatch fails the command.`,
		Example: "  lunarctl verify --table ./lunisolar.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := tableFrom(cmd)

			report, err := Verify(table)
			if err != nil {
				return err
			}

			return renderVerify(cmd.OutOrStdout(), opts.format, report)
		},
	}
}

// VerifyReport summarizes a successful table verification.
type VerifyReport struct {
	Version    string `json:"version"`
	Years      int    `json:"years"`
	LeapYears  int    `json:"leap_years"`
	SolarDays  int    `json:"solar_days"`
	LunarDays  int    `json:"lunar_days"`
	FirstSolar string `json:"first_solar"`
	LastSolar  string `json:"last_solar"`
}

// Verify round-trips every day covered by t in both directions.
func Verify(t *lunar.Table) (VerifyReport, error) {
	r := t.Range()
	report := VerifyReport{
		Version:    t.Metadata().Version,
		Years:      t.Len(),
		FirstSolar: r.First.String(),
		LastSolar:  r.Last.String(),
	}

	for d := r.First; d.Before(r.End); d = d.AddDays(1) {
		ld, err := t.SolarToLunar(d)
		if err != nil {
			return report, fmt.Errorf("solar %s: %w", d, err)
		}
		back, err := t.LunarToSolar(ld.Year, ld.Month, ld.IsLeapMonth, ld.Day)
		if err != nil {
			return report, fmt.Errorf("solar %s -> lunar %s: %w", d, ld, err)
		}
		if back != d {
			return report, fmt.Errorf("solar %s -> lunar %s -> solar %s", d, ld, back)
		}
		report.SolarDays++
	}

	for _, rec := range t.Records() {
		if rec.HasLeapMonth() {
			report.LeapYears++
		}
		for _, slot := range rec.Slots() {
			for day := 1; day <= slot.Days; day++ {
				solar, err := t.LunarToSolar(rec.Year, slot.Month, slot.Leap, day)
				if err != nil {
					return report, fmt.Errorf("lunar %d/%d/%d leap=%t: %w", rec.Year, slot.Month, day, slot.Leap, err)
				}
				ld, err := t.SolarToLunar(solar)
				if err != nil {
					return report, fmt.Errorf("lunar -> solar %s: %w", solar, err)
				}
				want := lunar.LunarDate{Year: rec.Year, Month: slot.Month, IsLeapMonth: slot.Leap, Day: day}
				if ld != want {
					return report, fmt.Errorf("lunar %s -> solar %s -> lunar %s", want, solar, ld)
				}
				report.LunarDays++
			}
		}
	}

	if report.SolarDays != report.LunarDays {
		return report, fmt.Errorf("%d solar days but %d lunar days", report.SolarDays, report.LunarDays)
	}
	return report, nil
}
