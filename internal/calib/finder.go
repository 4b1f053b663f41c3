package calib

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultAssetURL is the OOI asset-management calibration listing, exposed
// through the GitHub contents API so each instrument class directory can be
// listed as JSON.
const DefaultAssetURL = "https://api.github.com/repos/ooi-integration/asset-management/contents/calibration"

// ErrNoCalibration reports that no calibration file predating the sampling
// date exists for the instrument. Callers fall back to a parse-only dataset.
var ErrNoCalibration = errors.New("no calibration file predates the sampling date")

// calFileRe captures the date stamp of a calibration CSV file name, e.g.
// "CGINS-DOSTAD-00134__20190609.csv".
var calFileRe = regexp.MustCompile(`__(\d{8})\.csv$`)

// Finder locates and fetches calibration files from the asset repository.
type Finder struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewFinder creates a Finder against the given listing URL (DefaultAssetURL
// in production, an httptest server in tests).
func NewFinder(baseURL string, timeout time.Duration, logger *slog.Logger) *Finder {
	if baseURL == "" {
		baseURL = DefaultAssetURL
	}
	return &Finder{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// listing is one file entry from the contents API.
type listing struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

// Find returns the download URL of the calibration file for the instrument
// class and serial number with the newest date stamp at or before the
// sampling date. Serial numbers are zero-padded to five digits, matching the
// repository naming convention.
func (f *Finder) Find(ctx context.Context, class, serial string, sampled time.Time) (string, error) {
	u := fmt.Sprintf("%s/%s", f.baseURL, strings.ToUpper(class))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("list calibration files: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("asset repository error: status %d: %s", resp.StatusCode, body)
	}

	var entries []listing
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return "", fmt.Errorf("decode listing: %w", err)
	}

	prefix := fmt.Sprintf("-%s__", padSerial(serial))
	var bestURL string
	var bestDate time.Time
	for _, e := range entries {
		if !strings.Contains(e.Name, prefix) {
			continue
		}
		m := calFileRe.FindStringSubmatch(e.Name)
		if m == nil {
			continue
		}
		date, err := time.Parse("20060102", m[1])
		if err != nil {
			continue
		}
		if date.After(sampled) {
			continue
		}
		if date.After(bestDate) {
			bestDate = date
			bestURL = e.DownloadURL
		}
	}

	if bestURL == "" {
		return "", fmt.Errorf("%s serial %s: %w", class, serial, ErrNoCalibration)
	}
	f.logger.Info("calibration file located",
		"class", class, "serial", serial, "dated", bestDate.Format("2006-01-02"))
	return bestURL, nil
}

// FetchCoeffs downloads a calibration CSV and parses its coefficient rows.
func (f *Finder) FetchCoeffs(ctx context.Context, url string) (map[string]Value, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch calibration csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch calibration csv: status %d", resp.StatusCode)
	}
	return ParseCoeffCSV(resp.Body)
}

// ParseCoeffCSV reads an asset-management calibration CSV. Each data row is
// "serial,name,value,notes" where value is either a number or a JSON array.
// Rows with unparseable values are skipped; the calibration sheets carry
// free-text rows alongside the coefficients.
func ParseCoeffCSV(r io.Reader) (map[string]Value, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	coeffs := make(map[string]Value)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse calibration csv: %w", err)
		}
		if len(row) < 3 {
			continue
		}
		name := strings.TrimSpace(row[1])
		if !strings.HasPrefix(name, "CC_") {
			continue
		}
		raw := strings.TrimSpace(row[2])
		if strings.HasPrefix(raw, "[") {
			var vec []float64
			if err := json.Unmarshal([]byte(raw), &vec); err != nil {
				continue
			}
			coeffs[name] = Vector(vec...)
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		coeffs[name] = Scalar(v)
	}
	return coeffs, nil
}

// padSerial zero-pads a serial number to the five digits used by the
// repository file names.
func padSerial(serial string) string {
	if len(serial) >= 5 {
		return serial
	}
	return strings.Repeat("0", 5-len(serial)) + serial
}

// Outcome classifies where a coefficient lookup was satisfied, for the
// calibration lookup counters.
type Outcome string

const (
	OutcomeCached  Outcome = "cached"
	OutcomeFetched Outcome = "fetched"
	OutcomeMissing Outcome = "missing"
	OutcomeError   Outcome = "error"
)

// Resolve loads coefficients into the store, preferring the serialized file
// if it already exists and otherwise querying the asset repository and
// caching the result. Returns OutcomeMissing (and no error) when no
// applicable calibration exists, in which case the caller produces a dataset
// with filled derived variables.
func Resolve(ctx context.Context, store *Store, finder *Finder, class, serial string, sampled time.Time) (Outcome, error) {
	if store.Exists() {
		if err := store.Load(); err != nil {
			return OutcomeError, err
		}
		return OutcomeCached, nil
	}
	if finder == nil || serial == "" {
		return OutcomeMissing, nil
	}

	url, err := finder.Find(ctx, class, serial, sampled)
	if errors.Is(err, ErrNoCalibration) {
		return OutcomeMissing, nil
	}
	if err != nil {
		return OutcomeError, err
	}

	coeffs, err := finder.FetchCoeffs(ctx, url)
	if err != nil {
		return OutcomeError, err
	}
	if len(coeffs) == 0 {
		return OutcomeMissing, nil
	}
	store.Coeffs = coeffs
	if err := store.Save(); err != nil {
		return OutcomeError, err
	}
	return OutcomeFetched, nil
}
