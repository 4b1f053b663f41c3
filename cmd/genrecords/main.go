// Command genrecords writes synthetic column-oriented JSON record files in
// the raw data layout, for local pipeline testing without a real telemetry
// drop. Values are drawn from plausible shelf-water ranges with a fixed
// seed so regenerated fixtures stay stable.
//
// Usage:
//
//	go run ./cmd/genrecords \
//	  -out /tmp/raw -platform cp01cnsm -deployment D00013 \
//	  -date 2018-08-12 -samples 96
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "raw data root to write under")
	platform := flag.String("platform", "cp01cnsm", "platform designator")
	deployment := flag.String("deployment", "D00013", "deployment name")
	date := flag.String("date", "2018-08-12", "record date (YYYY-MM-DD)")
	samples := flag.Int("samples", 96, "samples per record (96 = one per 15 minutes)")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	day, err := time.Parse("2006-01-02", *date)
	if err != nil {
		return fmt.Errorf("invalid -date: %w", err)
	}

	rng := rand.New(rand.NewSource(day.Unix()))
	times := make([]float64, *samples)
	step := 24 * time.Hour / time.Duration(*samples)
	for i := range times {
		times[i] = float64(day.Add(time.Duration(i) * step).Unix())
	}

	gens := map[string]func() map[string]any{
		"ctdbp1": func() map[string]any {
			return map[string]any{
				"time":         times,
				"conductivity": series(rng, len(times), 4.29, 0.02),
				"temperature":  series(rng, len(times), 15.0, 0.5),
				"pressure":     series(rng, len(times), 7.0, 0.3),
			}
		},
		"gps": func() map[string]any {
			return map[string]any{
				"time":              times,
				"latitude":          series(rng, len(times), 40.1334, 0.001),
				"longitude":         series(rng, len(times), -70.7785, 0.001),
				"number_satellites": intSeries(rng, len(times), 7, 4),
			}
		},
		"metbk1": func() map[string]any {
			return map[string]any{
				"time":                     times,
				"sea_surface_conductivity": series(rng, len(times), 4.29, 0.02),
				"sea_surface_temperature":  series(rng, len(times), 16.0, 0.5),
				"air_temperature":          series(rng, len(times), 18.0, 2.0),
				"barometric_pressure":      series(rng, len(times), 1013.0, 4.0),
				"relative_humidity":        series(rng, len(times), 80.0, 10.0),
				"eastward_wind_velocity":   series(rng, len(times), 2.0, 3.0),
				"northward_wind_velocity":  series(rng, len(times), -1.0, 3.0),
			}
		},
		"pwrsys": func() map[string]any {
			return map[string]any{
				"time":           times,
				"main_voltage":   series(rng, len(times), 24.5, 0.4),
				"main_current":   series(rng, len(times), 1.8, 0.6),
				"percent_charge": series(rng, len(times), 85.0, 5.0),
				"override_flag":  zeros(len(times)),
				"error_flag1":    zeros(len(times)),
				"error_flag2":    zeros(len(times)),
				"error_flag3":    zeros(len(times)),
			}
		},
	}

	stamp := day.Format("20060102")
	for name, gen := range gens {
		dir := filepath.Join(*out, *platform, *deployment, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("%s.%s.json", stamp, name))
		data, err := json.MarshalIndent(gen(), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		log.Printf("wrote %s (%d samples)", path, *samples)
	}
	return nil
}

// series returns n values drawn around center with the given spread.
func series(rng *rand.Rand, n int, center, spread float64) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = center + (rng.Float64()*2-1)*spread
	}
	return vals
}

// intSeries returns n integers in [base, base+span).
func intSeries(rng *rand.Rand, n, base, span int) []int {
	vals := make([]int, n)
	for i := range vals {
		vals[i] = base + rng.Intn(span)
	}
	return vals
}

func zeros(n int) []int {
	return make([]int, n)
}
