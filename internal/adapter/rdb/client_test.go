package rdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

func testClient(host string) *Client {
	return &Client{
		host:       host,
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_FetchDeployment_Recovered(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/deployments/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "CP01CNSM-00013", r.URL.Query().Get("deployment_number"))
		assert.Equal(t, "url", r.URL.Query().Get("fields"))
		fmt.Fprintf(w, `[{"url": "%s/api/v1/builds/42/"}]`, srvURL)
	})
	mux.HandleFunc("/api/v1/builds/42/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"deployment_start_date": "2018-03-01",
			"deployment_burnin_date": "2018-03-15",
			"deployment_to_field_date": "2018-03-28",
			"deployment_recovery_date": "2018-10-05",
			"latitude": 40.1334,
			"longitude": -70.7785,
			"depth": 133.0,
			"cruise_deployed": "%s/api/v1/cruises/7/",
			"cruise_recovered": "%s/api/v1/cruises/9/"
		}`, srvURL, srvURL)
	})
	mux.HandleFunc("/api/v1/cruises/7/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"CUID": "AR-28"}`)
	})
	mux.HandleFunc("/api/v1/cruises/9/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"CUID": "AR-34"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	c := testClient(srv.URL)
	dep, err := c.FetchDeployment(context.Background(), "cp01cnsm", "D00013")
	require.NoError(t, err)

	assert.Equal(t, 13, dep.Deployment)
	assert.Equal(t, "recovered", dep.Disposition)
	assert.Equal(t, "2018-03-28", dep.DeploymentStart)
	assert.Equal(t, "2018-10-05", dep.DeploymentEnd)
	assert.Equal(t, 40.1334, dep.Latitude)
	assert.Equal(t, -70.7785, dep.Longitude)
	assert.Equal(t, 133.0, dep.SiteDepth)
	assert.Equal(t, "AR-28", dep.DeploymentCruise)
	assert.Equal(t, "AR-34", dep.RecoveryCruise)
}

func TestClient_FetchDeployment_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchDeployment(context.Background(), "cp01cnsm", "D09999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no RDB deployment record")
}

func TestClient_FetchDeployment_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/deployments/", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, `[{"url": "%s/api/v1/builds/1/"}]`, srvURL)
	})
	mux.HandleFunc("/api/v1/builds/1/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"deployment_to_field_date": "2020-01-10", "latitude": 44.6, "longitude": -124.0, "depth": 80.0}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	c := testClient(srv.URL)
	dep, err := c.FetchDeployment(context.Background(), "ce02shsm", "D0011")
	require.NoError(t, err)
	assert.Equal(t, int64(3), calls.Load())
	assert.Equal(t, "deployed", dep.Disposition)
	assert.Empty(t, dep.RecoveryCruise)
}

func TestClient_FetchDeployment_NoAuthRetryOnClientError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchDeployment(context.Background(), "cp01cnsm", "D00013")
	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load(), "client errors are not retried")
}

func TestDeploymentNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
		ok   bool
	}{
		{"standard", "D00013", 13, true},
		{"recovery prefix", "R0021", 21, true},
		{"no digits", "latest", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := deploymentNumber(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestDisposition(t *testing.T) {
	s := func(v string) *string { return &v }

	assert.Equal(t, "UNKNOWN_DISPOSITION", disposition(buildRecord{}))
	assert.Equal(t, "burn-in", disposition(buildRecord{DeploymentStartDate: s("2020-01-01")}))
	assert.Equal(t, "burn-in", disposition(buildRecord{BurninDate: s("2020-01-15")}))
	assert.Equal(t, "deployed", disposition(buildRecord{ToFieldDate: s("2020-02-01")}))
	assert.Equal(t, "recovered", disposition(buildRecord{
		ToFieldDate:  s("2020-02-01"),
		RecoveryDate: s("2020-08-01"),
	}))
}
