package lunar

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/lunisolar.yaml
var embeddedTable []byte

// tableFile is the on-disk shape of a reference table.
type tableFile struct {
	Version string       `yaml:"version"`
	Source  string       `yaml:"source"`
	Years   []yearRecord `yaml:"years"`
}

type yearRecord struct {
	Year      int    `yaml:"year"`
	NewYear   string `yaml:"new_year"`
	LeapMonth int    `yaml:"leap_month"`
	Months    []int  `yaml:"months,flow"`
}

// LoadTable decodes and validates a YAML reference table.
func LoadTable(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f tableFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidTable, err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidTable)
	}

	records := make([]YearRecord, 0, len(f.Years))
	for _, y := range f.Years {
		newYear, err := ParseSolarDate(y.NewYear)
		if err != nil {
			return nil, fmt.Errorf("%w: year %d: %v", ErrInvalidTable, y.Year, err)
		}
		records = append(records, YearRecord{
			Year:         y.Year,
			LeapMonth:    y.LeapMonth,
			MonthLengths: y.Months,
			NewYear:      newYear,
		})
	}

	return NewTable(Metadata{Version: f.Version, Source: f.Source}, records)
}

// LoadFile reads a YAML reference table from path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table file: %w", err)
	}
	defer f.Close()

	t, err := LoadTable(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// EncodeTable writes t in the YAML format LoadTable reads.
func EncodeTable(w io.Writer, t *Table) error {
	f := tableFile{
		Version: t.meta.Version,
		Source:  t.meta.Source,
		Years:   make([]yearRecord, 0, len(t.records)),
	}
	for _, r := range t.records {
		f.Years = append(f.Years, yearRecord{
			Year:      r.Year,
			NewYear:   r.NewYear.String(),
			LeapMonth: r.LeapMonth,
			Months:    r.MonthLengths,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	return enc.Close()
}

var defaultTable = sync.OnceValues(func() (*Table, error) {
	return LoadTable(bytes.NewReader(embeddedTable))
})

// Embedded returns the reference table compiled into the binary.
func Embedded() (*Table, error) {
	return defaultTable()
}

// Default returns the embedded table. It panics if the embedded data is
// invalid, which the package tests rule out.
func Default() *Table {
	t, err := defaultTable()
	if err != nil {
		panic(fmt.Sprintf("lunar: embedded reference table: %v", err))
	}
	return t
}

// LunarToSolar converts using the embedded table.
func LunarToSolar(year, month int, leap bool, day int) (SolarDate, error) {
	return Default().LunarToSolar(year, month, leap, day)
}

// SolarToLunar converts using the embedded table.
func SolarToLunar(d SolarDate) (LunarDate, error) {
	return Default().SolarToLunar(d)
}

// SupportedRange returns the embedded table's coverage.
func SupportedRange() Range {
	return Default().Range()
}
