// Package rdb queries the OOI roundtrip database (RDB) API for deployment
// build records.
package rdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	maxAttempts = 5
	baseBackoff = 500 * time.Millisecond
	maxBackoff  = 5 * time.Second
)

// Deployment is the mooring deployment metadata assembled from the RDB build
// record, used to populate deployment configuration templates.
type Deployment struct {
	Mooring          string
	DeploymentName   string
	Deployment       int
	Disposition      string
	DeploymentStart  string
	DeploymentEnd    string
	Latitude         float64
	Longitude        float64
	SiteDepth        float64
	DeploymentCruise string
	RecoveryCruise   string
}

// Client queries the RDB API. Requests carry token authentication and are
// retried with exponential backoff.
type Client struct {
	host       string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an RDB API client for the given host.
func NewClient(host, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		host:       host,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// build record fields returned by the deployments endpoint
type buildRecord struct {
	DeploymentStartDate *string  `json:"deployment_start_date"`
	BurninDate          *string  `json:"deployment_burnin_date"`
	ToFieldDate         *string  `json:"deployment_to_field_date"`
	RecoveryDate        *string  `json:"deployment_recovery_date"`
	Latitude            float64  `json:"latitude"`
	Longitude           float64  `json:"longitude"`
	Depth               float64  `json:"depth"`
	CruiseDeployed      string   `json:"cruise_deployed"`
	CruiseRecovered     string   `json:"cruise_recovered"`
	Inventory           []string `json:"inventory_deployments"`
}

type cruiseRecord struct {
	CUID string `json:"CUID"`
}

// FetchDeployment assembles the deployment metadata for a mooring and
// deployment name (e.g. "cp01cnsm", "D00013"). The deployment number is
// normalized to the RDB's <MOORING>-<NNNNN> form, so leading zeros in the
// name do not matter.
func (c *Client) FetchDeployment(ctx context.Context, mooring, deploymentName string) (*Deployment, error) {
	number, err := deploymentNumber(deploymentName)
	if err != nil {
		return nil, err
	}

	base := c.host
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	endpoint := fmt.Sprintf("%s/api/v1/deployments/?deployment_number=%s-%05d&fields=url",
		base, strings.ToUpper(mooring), number)
	var refs []struct {
		URL string `json:"url"`
	}
	if err := c.getJSON(ctx, endpoint, &refs); err != nil {
		return nil, fmt.Errorf("look up deployment: %w", err)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no RDB deployment record for %s-%05d", strings.ToUpper(mooring), number)
	}

	var build buildRecord
	if err := c.getJSON(ctx, refs[0].URL, &build); err != nil {
		return nil, fmt.Errorf("fetch build record: %w", err)
	}

	dep := &Deployment{
		Mooring:         mooring,
		DeploymentName:  deploymentName,
		Deployment:      number,
		Disposition:     disposition(build),
		DeploymentStart: strVal(build.ToFieldDate),
		DeploymentEnd:   strVal(build.RecoveryDate),
		Latitude:        build.Latitude,
		Longitude:       build.Longitude,
		SiteDepth:       build.Depth,
	}

	if build.CruiseDeployed != "" {
		var cruise cruiseRecord
		if err := c.getJSON(ctx, build.CruiseDeployed, &cruise); err != nil {
			return nil, fmt.Errorf("fetch deployment cruise: %w", err)
		}
		dep.DeploymentCruise = cruise.CUID
	}
	if build.CruiseRecovered != "" {
		var cruise cruiseRecord
		if err := c.getJSON(ctx, build.CruiseRecovered, &cruise); err != nil {
			return nil, fmt.Errorf("fetch recovery cruise: %w", err)
		}
		dep.RecoveryCruise = cruise.CUID
	}
	return dep, nil
}

// disposition reports how far along its lifecycle the deployment is, based
// on which milestone dates the build record carries.
func disposition(build buildRecord) string {
	switch {
	case build.RecoveryDate != nil:
		return "recovered"
	case build.ToFieldDate != nil:
		return "deployed"
	case build.BurninDate != nil, build.DeploymentStartDate != nil:
		return "burn-in"
	default:
		return "UNKNOWN_DISPOSITION"
	}
}

// getJSON fetches a URL and decodes the JSON response, retrying transient
// failures with exponential backoff.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	backoff := baseBackoff
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Warn("retrying RDB request", "url", url, "attempt", attempt, "error", lastErr)
			if !sleepWithContext(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff, maxBackoff)
		}
		lastErr = c.getJSONOnce(ctx, url, out)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("RDB API error: status %d: %s", e.code, e.body)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	// transport errors are retried, decode errors are not
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return !errors.As(err, &syn) && !errors.As(err, &typ)
}

func (c *Client) getJSONOnce(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("RDB request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// deploymentNumber extracts the numeric part of a deployment name such as
// "D00013" or "R0021".
func deploymentNumber(name string) (int, error) {
	digits := strings.Builder{}
	for _, r := range name {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("deployment name %q has no number", name)
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, fmt.Errorf("deployment name %q: %w", name, err)
	}
	return n, nil
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
