// ABOUTME: Tests for the status command
// ABOUTME: Verifies KPI output and threshold exit codes against a mock backend

package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mappingdesk/skumap/internal/client"
	"github.com/mappingdesk/skumap/internal/token"
)

// makeToken builds an unsigned JWT with the given claims
func makeToken(t *testing.T, claims token.Claims) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	body := base64.RawURLEncoding.EncodeToString(payload)
	return header + "." + body + ".signature"
}

// setupSession persists a valid session in an isolated config dir
func setupSession(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	access := makeToken(t, token.Claims{
		Email:      "ci@example.com",
		Department: "SCM",
		Exp:        time.Now().Add(15 * time.Minute).Unix(),
	})
	store := token.NewStore(token.DefaultConfigDir())
	if err := store.Save(access, "refresh-tok", "SCM"); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func newKPIServer(t *testing.T, nullIMSKU int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dashboard" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(client.DashboardResponse{
			MappingData: []client.MappingRow{{ID: "1"}},
			KpiSnapshot: client.KpiSnapshot{NullIMSKU: nullIMSKU, UniqueIMSKU: 50},
		})
	}))
}

func TestRunStatus_Success(t *testing.T) {
	setupSession(t)
	server := newKPIServer(t, 3)
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()
	maxUnmapped = -1

	var buf bytes.Buffer
	if code := runStatus(context.Background(), &buf); code != 0 {
		t.Errorf("expected exit code 0, got %d; output: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Unmapped (no SKU):      3") {
		t.Errorf("expected unmapped count in output, got: %s", buf.String())
	}
}

func TestRunStatus_ThresholdExceeded(t *testing.T) {
	setupSession(t)
	server := newKPIServer(t, 10)
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()
	maxUnmapped = 5
	defer func() { maxUnmapped = -1 }()

	var buf bytes.Buffer
	if code := runStatus(context.Background(), &buf); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "FAILED") {
		t.Errorf("expected FAILED in output, got: %s", buf.String())
	}
}

func TestRunStatus_ThresholdPassed(t *testing.T) {
	setupSession(t)
	server := newKPIServer(t, 2)
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()
	maxUnmapped = 5
	defer func() { maxUnmapped = -1 }()

	var buf bytes.Buffer
	if code := runStatus(context.Background(), &buf); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(buf.String(), "PASSED") {
		t.Errorf("expected PASSED in output, got: %s", buf.String())
	}
}

func TestRunStatus_NotLoggedIn(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	apiURL = "http://localhost:1"
	defer func() { apiURL = "" }()
	maxUnmapped = -1

	var buf bytes.Buffer
	if code := runStatus(context.Background(), &buf); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(buf.String(), "not logged in") {
		t.Errorf("expected login hint, got: %s", buf.String())
	}
}

func TestRunStatus_JSONOutput(t *testing.T) {
	setupSession(t)
	server := newKPIServer(t, 3)
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()
	jsonOutput = true
	defer func() { jsonOutput = false }()
	maxUnmapped = -1

	var buf bytes.Buffer
	if code := runStatus(context.Background(), &buf); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(buf.String(), `"null_im_sku": 3`) {
		t.Errorf("expected JSON KPIs, got: %s", buf.String())
	}
}
