// Command validate checks an exported weather CSV for structural integrity:
// the header, one row per calendar day per stadium and year, ordering, and
// plausible Fahrenheit values.
//
// Usage:
//
//	go run ./cmd/validate -csv mlb_weather_data_2021_to_2023.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"time"

	csvadapter "github.com/couchcryptid/ballpark-weather-etl/internal/adapter/csv"
	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxErrors caps the detail printed per phase.
const maxErrors = 20

func main() {
	path := flag.String("csv", "", "path to the exported CSV")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	f, err := os.Open(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open %s: %v\n", *path, err)
		os.Exit(1)
	}
	defer f.Close()

	if code := run(f, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(r io.Reader, out io.Writer) int {
	fmt.Fprintln(out, "=== Ballpark Weather Export Validation ===")
	fmt.Fprintln(out)

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		fmt.Fprintf(out, "FATAL: read csv: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "FATAL: read csv: file is empty")
		return 1
	}

	var (
		phases   []*phase
		rows     int
		stadiums int
	)
	if len(records) == 1 {
		// Every pair came back empty; only the header can be checked.
		phases = validateHeaderOnly(records[0])
	} else {
		// Everything is loaded as strings; empty metric cells would otherwise
		// collapse into NaN before the schema checks see them.
		df := dataframe.LoadRecords(records,
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.String),
		)
		if df.Err != nil {
			fmt.Fprintf(out, "FATAL: load records: %v\n", df.Err)
			return 1
		}
		phases = validate(df)
		rows, stadiums = df.Nrow(), countDistinct(df, "Stadium")
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d, stadiums: %d\n", rows, stadiums)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrors {
				fmt.Fprintf(out, "  ... %d more\n", len(p.errors)-maxErrors)
				break
			}
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// validate runs every phase. Later phases are skipped when the header is
// wrong, since column lookups would fail.
func validate(df dataframe.DataFrame) []*phase {
	schema := validateSchema(df.Names())
	if !schema.passed() {
		return []*phase{schema}
	}
	return []*phase{
		schema,
		validateCompleteness(df),
		validateOrdering(df),
		validatePlausibility(df),
	}
}

// validateHeaderOnly checks an export without data rows. The row-level
// phases hold trivially.
func validateHeaderOnly(header []string) []*phase {
	schema := validateSchema(header)
	if !schema.passed() {
		return []*phase{schema}
	}
	return []*phase{
		schema,
		{name: "Completeness"},
		{name: "Ordering"},
		{name: "Plausibility"},
	}
}

func validateSchema(header []string) *phase {
	p := &phase{name: "Schema"}
	if !slices.Equal(header, csvadapter.Header) {
		p.errorf("header = %v, want %v", header, csvadapter.Header)
	}
	return p
}

type stadiumYear struct {
	stadium string
	year    int
}

// validateCompleteness checks that every stadium and year present carries
// exactly one row per calendar day.
func validateCompleteness(df dataframe.DataFrame) *phase {
	p := &phase{name: "Completeness"}

	dates := df.Col("date").Records()
	stations := df.Col("station_id").Records()
	stadiums := df.Col("Stadium").Records()

	seen := make(map[stadiumYear]map[string]bool)
	for i := range dates {
		line := i + 2
		if stadiums[i] == "" {
			p.errorf("line %d: empty Stadium", line)
			continue
		}
		if stations[i] == "" {
			p.errorf("line %d: %s: empty station_id", line, stadiums[i])
		}
		d, err := time.Parse(domain.DateLayout, dates[i])
		if err != nil {
			p.errorf("line %d: %s: bad date %q", line, stadiums[i], dates[i])
			continue
		}
		key := stadiumYear{stadiums[i], d.Year()}
		if seen[key] == nil {
			seen[key] = make(map[string]bool)
		}
		if seen[key][dates[i]] {
			p.errorf("line %d: %s: duplicate date %s", line, stadiums[i], dates[i])
		}
		seen[key][dates[i]] = true
	}

	keys := make([]stadiumYear, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b stadiumYear) int {
		if a.year != b.year {
			return a.year - b.year
		}
		if a.stadium < b.stadium {
			return -1
		}
		if a.stadium > b.stadium {
			return 1
		}
		return 0
	})
	for _, k := range keys {
		if got, want := len(seen[k]), domain.DaysInYear(k.year); got != want {
			p.errorf("%s %d: %d days, want %d", k.stadium, k.year, got, want)
		}
	}
	return p
}

// validateOrdering checks that years never go backwards and that dates
// ascend inside each stadium block.
func validateOrdering(df dataframe.DataFrame) *phase {
	p := &phase{name: "Ordering"}

	dates := df.Col("date").Records()
	stadiums := df.Col("Stadium").Records()

	var prev time.Time
	prevStadium := ""
	for i := range dates {
		d, err := time.Parse(domain.DateLayout, dates[i])
		if err != nil {
			continue
		}
		if i > 0 && d.Year() < prev.Year() {
			p.errorf("line %d: year %d after %d", i+2, d.Year(), prev.Year())
		}
		if stadiums[i] == prevStadium && !d.After(prev) {
			p.errorf("line %d: %s: date %s not after %s", i+2, stadiums[i], dates[i], prev.Format(domain.DateLayout))
		}
		prev, prevStadium = d, stadiums[i]
	}
	return p
}

// Plausible range for exported temperatures.
const (
	minFahrenheit = -80.0
	maxFahrenheit = 140.0
)

func validatePlausibility(df dataframe.DataFrame) *phase {
	p := &phase{name: "Plausibility"}

	stadiums := df.Col("Stadium").Records()
	dates := df.Col("date").Records()
	cols := make(map[string][]float64, len(domain.MetricColumns))
	for _, name := range domain.MetricColumns {
		cols[name] = floats(df.Col(name))
	}

	for i := range dates {
		where := fmt.Sprintf("%s %s", stadiums[i], dates[i])
		for _, name := range []string{"tavg", "tmin", "tmax"} {
			v := cols[name][i]
			if !math.IsNaN(v) && (v < minFahrenheit || v > maxFahrenheit) {
				p.errorf("%s: %s = %.1f outside [%.0f, %.0f]", where, name, v, minFahrenheit, maxFahrenheit)
			}
		}
		if lo, hi := cols["tmin"][i], cols["tmax"][i]; !math.IsNaN(lo) && !math.IsNaN(hi) && lo > hi {
			p.errorf("%s: tmin %.1f > tmax %.1f", where, lo, hi)
		}
		for _, name := range []string{"prcp", "snow", "wspd", "wpgt", "tsun"} {
			if v := cols[name][i]; v < 0 {
				p.errorf("%s: negative %s %.1f", where, name, v)
			}
		}
		if v := cols["wdir"][i]; v < 0 || v > 360 {
			p.errorf("%s: wdir %.1f outside [0, 360]", where, v)
		}
	}
	return p
}

// floats converts a string column; empty cells become NaN.
func floats(s series.Series) []float64 {
	return series.New(s.Records(), series.Float, s.Name).Float()
}

func countDistinct(df dataframe.DataFrame, col string) int {
	if !slices.Contains(df.Names(), col) {
		return 0
	}
	seen := make(map[string]struct{})
	for _, v := range df.Col(col).Records() {
		seen[v] = struct{}{}
	}
	return len(seen)
}
