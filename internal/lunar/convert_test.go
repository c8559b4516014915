package lunar

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func mustDate(t *testing.T, s string) SolarDate {
	t.Helper()
	d, err := ParseSolarDate(s)
	require.NoError(t, err)
	return d
}

var knownConversions = []struct {
	name  string
	lunar LunarDate
	solar string
}{
	{"first day of table", LunarDate{Year: 1900, Month: 1, Day: 1}, "1900-01-31"},
	{"seollal 2000", LunarDate{Year: 2000, Month: 1, Day: 1}, "2000-02-05"},
	{"seollal 2023", LunarDate{Year: 2023, Month: 1, Day: 1}, "2023-01-22"},
	{"2023 regular second month day 29", LunarDate{Year: 2023, Month: 2, Day: 29}, "2023-03-20"},
	{"2023 regular second month day 30", LunarDate{Year: 2023, Month: 2, Day: 30}, "2023-03-21"},
	{"2023 leap second month day 1", LunarDate{Year: 2023, Month: 2, IsLeapMonth: true, Day: 1}, "2023-03-22"},
	{"2023 leap second month day 29", LunarDate{Year: 2023, Month: 2, IsLeapMonth: true, Day: 29}, "2023-04-19"},
	{"2023 third month after leap", LunarDate{Year: 2023, Month: 3, Day: 1}, "2023-04-20"},
	{"2023 last day", LunarDate{Year: 2023, Month: 12, Day: 30}, "2024-02-09"},
	{"seollal 2024", LunarDate{Year: 2024, Month: 1, Day: 1}, "2024-02-10"},
	{"chuseok 2024", LunarDate{Year: 2024, Month: 8, Day: 15}, "2024-09-17"},
	{"2025 regular sixth month", LunarDate{Year: 2025, Month: 6, Day: 1}, "2025-06-25"},
	{"2025 leap sixth month", LunarDate{Year: 2025, Month: 6, IsLeapMonth: true, Day: 1}, "2025-07-25"},
	{"chuseok 2025", LunarDate{Year: 2025, Month: 8, Day: 15}, "2025-10-06"},
	{"2020 leap fourth month", LunarDate{Year: 2020, Month: 4, IsLeapMonth: true, Day: 1}, "2020-05-23"},
	{"last day of table", LunarDate{Year: 2050, Month: 12, Day: 29}, "2051-02-10"},

	// Years where Korean time puts a new moon or solar term on a different
	// civil day than Chinese time.
	{"buddha's birthday 2023", LunarDate{Year: 2023, Month: 4, Day: 8}, "2023-05-27"},
	{"2012 regular third month", LunarDate{Year: 2012, Month: 3, Day: 1}, "2012-03-22"},
	{"2012 leap third month", LunarDate{Year: 2012, Month: 3, IsLeapMonth: true, Day: 1}, "2012-04-21"},
	{"2012 leap third month day 30", LunarDate{Year: 2012, Month: 3, IsLeapMonth: true, Day: 30}, "2012-05-20"},
	{"2012 fourth month after leap", LunarDate{Year: 2012, Month: 4, Day: 1}, "2012-05-21"},
	{"2017 leap fifth month", LunarDate{Year: 2017, Month: 5, IsLeapMonth: true, Day: 1}, "2017-06-24"},
	{"2017 leap fifth month day 29", LunarDate{Year: 2017, Month: 5, IsLeapMonth: true, Day: 29}, "2017-07-22"},
	{"2017 sixth month after leap", LunarDate{Year: 2017, Month: 6, Day: 1}, "2017-07-23"},
	{"1996 last day", LunarDate{Year: 1996, Month: 12, Day: 30}, "1997-02-07"},
	{"seollal 1997", LunarDate{Year: 1997, Month: 1, Day: 1}, "1997-02-08"},
	{"2026 last day", LunarDate{Year: 2026, Month: 12, Day: 30}, "2027-02-06"},
	{"seollal 2027", LunarDate{Year: 2027, Month: 1, Day: 1}, "2027-02-07"},
}

func TestLunarToSolar_KnownDates(t *testing.T) {
	table := Default()
	for _, tt := range knownConversions {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Convert(tt.lunar)
			require.NoError(t, err)
			assert.Equal(t, tt.solar, got.String())
		})
	}
}

func TestSolarToLunar_KnownDates(t *testing.T) {
	table := Default()
	for _, tt := range knownConversions {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.SolarToLunar(mustDate(t, tt.solar))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.lunar, got); diff != "" {
				t.Errorf("SolarToLunar(%s) mismatch (-want +got):\n%s", tt.solar, diff)
			}
		})
	}
}

func TestLunarToSolar_OffsetIsSumOfPrecedingMonths(t *testing.T) {
	table := Default()
	rec, err := table.RecordForLunarYear(2023)
	require.NoError(t, err)
	require.Equal(t, 2, rec.LeapMonth)
	require.Equal(t, "2023-01-22", rec.NewYear.String())

	got, err := table.LunarToSolar(2023, 1, false, 1)
	require.NoError(t, err)
	assert.Equal(t, rec.NewYear, got)

	// Month 1 is fully consumed, then 28 more days into regular month 2.
	got, err = table.LunarToSolar(2023, 2, false, 29)
	require.NoError(t, err)
	assert.Equal(t, rec.NewYear.AddDays(rec.MonthLengths[0]+29-1), got)

	// The leap month sits after both month 1 and regular month 2.
	got, err = table.LunarToSolar(2023, 2, true, 1)
	require.NoError(t, err)
	assert.Equal(t, rec.NewYear.AddDays(rec.MonthLengths[0]+rec.MonthLengths[1]), got)
}

func TestLunarToSolar_Errors(t *testing.T) {
	table := Default()
	tests := []struct {
		name  string
		year  int
		month int
		leap  bool
		day   int
		is    func(error) bool
	}{
		{"year before table", 1899, 1, false, 1, IsOutOfRange},
		{"year after table", 2051, 1, false, 1, IsOutOfRange},
		{"out of range wins over bad month", 1800, 13, false, 1, IsOutOfRange},
		{"month zero", 2023, 0, false, 1, IsInvalidMonth},
		{"month thirteen", 2023, 13, false, 1, IsInvalidMonth},
		{"leap flag on non-leap month", 2023, 3, true, 1, IsInvalidMonth},
		{"leap flag in year without leap month", 2024, 1, true, 1, IsInvalidMonth},
		{"2012 has no leap fourth month", 2012, 4, true, 1, IsInvalidMonth},
		{"2017 has no leap sixth month", 2017, 6, true, 1, IsInvalidMonth},
		{"bad month wins over bad day", 2023, 13, false, 40, IsInvalidMonth},
		{"day zero", 2023, 1, false, 0, IsInvalidDay},
		{"day thirty one", 2023, 2, false, 31, IsInvalidDay},
		{"day thirty in 29-day month", 2023, 1, false, 30, IsInvalidDay},
		{"day thirty in 29-day leap month", 2023, 2, true, 30, IsInvalidDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.LunarToSolar(tt.year, tt.month, tt.leap, tt.day)
			require.Error(t, err)
			assert.True(t, tt.is(err), "unexpected error class: %v", err)
			assert.Equal(t, SolarDate{}, got)
		})
	}
}

func TestSolarToLunar_Errors(t *testing.T) {
	table := Default()
	r := table.Range()
	tests := []struct {
		name string
		date SolarDate
		is   func(error) bool
	}{
		{"day before table", r.First.AddDays(-1), IsOutOfRange},
		{"exclusive end", r.End, IsOutOfRange},
		{"far future", NewSolarDate(2100, 1, 1), IsOutOfRange},
		{"far past", NewSolarDate(1000, 6, 1), IsOutOfRange},
		{"february 30", NewSolarDate(2023, 2, 30), IsInvalidDay},
		{"february 29 in common year", NewSolarDate(2023, 2, 29), IsInvalidDay},
		{"month 13", NewSolarDate(2023, 13, 1), IsInvalidMonth},
		{"zero value", SolarDate{}, IsInvalidMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.SolarToLunar(tt.date)
			require.Error(t, err)
			assert.True(t, tt.is(err), "unexpected error class: %v", err)
		})
	}
}

func TestSolarToLunar_DayBeforeNextNewYear(t *testing.T) {
	table := Default()
	records := table.Records()

	for i, rec := range records {
		var next SolarDate
		if i+1 < len(records) {
			next = records[i+1].NewYear
		} else {
			next = table.Range().End
		}

		got, err := table.SolarToLunar(next.AddDays(-1))
		require.NoError(t, err, "year %d", rec.Year)

		slots := rec.Slots()
		last := slots[len(slots)-1]
		want := LunarDate{Year: rec.Year, Month: last.Month, IsLeapMonth: last.Leap, Day: last.Days}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("last day of lunar year %d mismatch (-want +got):\n%s", rec.Year, diff)
		}
	}
}

func TestRoundTrip_LunarSolarLunar(t *testing.T) {
	table := Default()
	for _, rec := range table.Records() {
		for _, slot := range rec.Slots() {
			for day := 1; day <= slot.Days; day++ {
				in := LunarDate{Year: rec.Year, Month: slot.Month, IsLeapMonth: slot.Leap, Day: day}
				solar, err := table.Convert(in)
				require.NoError(t, err, "convert %s", in)

				out, err := table.SolarToLunar(solar)
				require.NoError(t, err, "convert back %s", solar)
				if out != in {
					t.Fatalf("round trip %s -> %s -> %s", in, solar, out)
				}
			}
		}
	}
}

func TestRoundTrip_SolarLunarSolar(t *testing.T) {
	table := Default()
	r := table.Range()

	count := 0
	for d := r.First; d.Before(r.End); d = d.AddDays(1) {
		lunar, err := table.SolarToLunar(d)
		require.NoError(t, err, "convert %s", d)

		back, err := table.Convert(lunar)
		require.NoError(t, err, "convert back %s", lunar)
		if back != d {
			t.Fatalf("round trip %s -> %s -> %s", d, lunar, back)
		}
		count++
	}
	assert.Equal(t, r.First.DaysUntil(r.End), count)
}

func TestMonotonicWithinYear(t *testing.T) {
	table := Default()
	for _, rec := range table.Records() {
		prev := rec.NewYear.AddDays(-1)
		for _, slot := range rec.Slots() {
			for day := 1; day <= slot.Days; day++ {
				got, err := table.LunarToSolar(rec.Year, slot.Month, slot.Leap, day)
				require.NoError(t, err)
				if prev.DaysUntil(got) != 1 {
					t.Fatalf("year %d month %d leap=%v day %d: %s does not follow %s",
						rec.Year, slot.Month, slot.Leap, day, got, prev)
				}
				prev = got
			}
		}
	}
}

func TestLeapMonthExclusivity(t *testing.T) {
	table := Default()
	leapYears := 0

	for _, rec := range table.Records() {
		if !rec.HasLeapMonth() {
			continue
		}
		leapYears++
		l := rec.LeapMonth

		regularDays, err := rec.MonthLength(l, false)
		require.NoError(t, err)
		leapDays, err := rec.MonthLength(l, true)
		require.NoError(t, err)

		regularEnd, err := table.LunarToSolar(rec.Year, l, false, regularDays)
		require.NoError(t, err)
		leapStart, err := table.LunarToSolar(rec.Year, l, true, 1)
		require.NoError(t, err)
		leapEnd, err := table.LunarToSolar(rec.Year, l, true, leapDays)
		require.NoError(t, err)

		assert.Equal(t, 1, regularEnd.DaysUntil(leapStart), "year %d: leap month must start the day after the regular month ends", rec.Year)

		// Every day of the leap span resolves to the leap slot, never the regular one.
		for d := leapStart; !leapEnd.Before(d); d = d.AddDays(1) {
			got, err := table.SolarToLunar(d)
			require.NoError(t, err)
			require.True(t, got.IsLeapMonth, "year %d: %s resolved to %s", rec.Year, d, got)
			require.Equal(t, l, got.Month)
		}
	}

	// Roughly 7 leap years per 19.
	assert.InDelta(t, float64(table.Len())*7/19, float64(leapYears), 3)
}

func TestRange(t *testing.T) {
	r := Default().Range()
	assert.Equal(t, 1900, r.MinYear)
	assert.Equal(t, 2050, r.MaxYear)
	assert.Equal(t, "1900-01-31", r.First.String())
	assert.Equal(t, "2051-02-10", r.Last.String())
	assert.Equal(t, "2051-02-11", r.End.String())
	assert.True(t, r.Contains(r.First))
	assert.True(t, r.Contains(r.Last))
	assert.False(t, r.Contains(r.End))
	assert.Equal(t, r, SupportedRange())
}

func TestYearMonths(t *testing.T) {
	spans, err := Default().YearMonths(2023)
	require.NoError(t, err)
	require.Len(t, spans, 13)

	assert.Equal(t, "2023-01-22", spans[0].Start.String())
	assert.Equal(t, MonthSlot{Month: 2, Leap: true, Days: 29}, spans[2].MonthSlot)
	assert.Equal(t, "2023-03-22", spans[2].Start.String())
	assert.Equal(t, "2023-04-19", spans[2].End.String())
	assert.Equal(t, "2024-02-09", spans[12].End.String())

	for i := 1; i < len(spans); i++ {
		assert.Equal(t, 1, spans[i-1].End.DaysUntil(spans[i].Start))
	}

	_, err = Default().YearMonths(1850)
	assert.True(t, IsOutOfRange(err))
}

func TestMonthStart(t *testing.T) {
	table := Default()
	tests := []struct {
		year  int
		month int
		leap  bool
		want  string
	}{
		{2023, 1, false, "2023-01-22"},
		{2023, 2, true, "2023-03-22"},
		{2012, 3, true, "2012-04-21"},
		{2017, 5, true, "2017-06-24"},
		{2017, 6, false, "2017-07-23"},
	}

	for _, tt := range tests {
		got, err := table.MonthStart(tt.year, tt.month, tt.leap)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.String(), "%d/%d leap=%v", tt.year, tt.month, tt.leap)
	}

	_, err := table.MonthStart(2017, 6, true)
	assert.True(t, IsInvalidMonth(err))
	_, err = table.MonthStart(2051, 1, false)
	assert.True(t, IsOutOfRange(err))
}

func TestPackageLevelConversions(t *testing.T) {
	solar, err := LunarToSolar(2024, 8, false, 15)
	require.NoError(t, err)
	assert.Equal(t, "2024-09-17", solar.String())

	lunar, err := SolarToLunar(solar)
	require.NoError(t, err)
	assert.Equal(t, LunarDate{Year: 2024, Month: 8, Day: 15}, lunar)
}

func TestConcurrentConversions(t *testing.T) {
	defer goleak.VerifyNone(t)

	table := Default()
	r := table.Range()
	g, _ := errgroup.WithContext(context.Background())

	for w := 0; w < 8; w++ {
		w := w
		g.Go(func() error {
			for d := r.First.AddDays(w); d.Before(r.End); d = d.AddDays(97) {
				lunar, err := table.SolarToLunar(d)
				if err != nil {
					return err
				}
				back, err := table.Convert(lunar)
				if err != nil {
					return err
				}
				if back != d {
					t.Errorf("round trip %s -> %s -> %s", d, lunar, back)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
