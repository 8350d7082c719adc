// ABOUTME: Tests for the backend API client
// ABOUTME: Uses httptest to verify auth headers and refresh-before-expiry

package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mappingdesk/skumap/internal/auth"
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

// loginSession creates a logged-in manager against the test server
func loginSession(t *testing.T, baseURL string) *auth.Manager {
	t.Helper()

	m := auth.NewManager(baseURL, token.NewStore(t.TempDir()))
	if err := m.Login(context.Background(), "alice@example.com", "secret"); err != nil {
		t.Fatalf("setup login: %v", err)
	}
	return m
}

func TestDashboard_Success(t *testing.T) {
	access := makeToken(t, token.Claims{
		Email: "alice@example.com",
		Exp:   time.Now().Add(15 * time.Minute).Unix(),
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/":
			json.NewEncoder(w).Encode(map[string]string{"access": access, "refresh": "r"})
		case "/dashboard":
			if got := r.Header.Get("Authorization"); got != "Bearer "+access {
				t.Errorf("expected bearer header, got %q", got)
			}
			json.NewEncoder(w).Encode(DashboardResponse{
				MappingData: []MappingRow{{ID: "1", MarketplaceSKU: "MKT-1"}},
				KpiSnapshot: KpiSnapshot{NullIMSKU: 3, UniqueIMSKU: 42},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	session := loginSession(t, server.URL)
	c := New(server.URL, session)

	resp, err := c.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.MappingData) != 1 || resp.MappingData[0].MarketplaceSKU != "MKT-1" {
		t.Error("expected mapping data decoded")
	}
	if resp.NullIMSKU != 3 || resp.UniqueIMSKU != 42 {
		t.Error("expected KPI counters decoded")
	}
}

func TestAuthorize_RefreshesNearExpiryExactlyOnce(t *testing.T) {
	var refreshCalls int32

	staleAccess := makeToken(t, token.Claims{
		Email: "alice@example.com",
		Exp:   time.Now().Add(30 * time.Second).Unix(), // inside the 60s leeway
	})
	freshAccess := makeToken(t, token.Claims{
		Email: "alice@example.com",
		Exp:   time.Now().Add(15 * time.Minute).Unix(),
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/":
			json.NewEncoder(w).Encode(map[string]string{"access": staleAccess, "refresh": "r"})
		case "/token/refresh/":
			atomic.AddInt32(&refreshCalls, 1)
			json.NewEncoder(w).Encode(map[string]string{"access": freshAccess})
		case "/dashboard":
			if got := r.Header.Get("Authorization"); got != "Bearer "+freshAccess {
				t.Errorf("expected refreshed bearer header, got stale token")
			}
			json.NewEncoder(w).Encode(DashboardResponse{})
		}
	}))
	defer server.Close()

	session := loginSession(t, server.URL)
	c := New(server.URL, session)

	if _, err := c.Dashboard(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Errorf("expected exactly 1 refresh call, got %d", n)
	}
}

func TestAuthorize_NoRefreshWhenTokenFresh(t *testing.T) {
	var refreshCalls int32

	access := makeToken(t, token.Claims{
		Email: "alice@example.com",
		Exp:   time.Now().Add(15 * time.Minute).Unix(),
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/":
			json.NewEncoder(w).Encode(map[string]string{"access": access, "refresh": "r"})
		case "/token/refresh/":
			atomic.AddInt32(&refreshCalls, 1)
		case "/dashboard":
			json.NewEncoder(w).Encode(DashboardResponse{})
		}
	}))
	defer server.Close()

	session := loginSession(t, server.URL)
	c := New(server.URL, session)

	if _, err := c.Dashboard(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 0 {
		t.Errorf("expected no refresh for fresh token, got %d calls", n)
	}
}

func TestAuthorize_RefreshFailureForwardsStaleToken(t *testing.T) {
	staleAccess := makeToken(t, token.Claims{
		Email: "alice@example.com",
		Exp:   time.Now().Add(30 * time.Second).Unix(),
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/":
			json.NewEncoder(w).Encode(map[string]string{"access": staleAccess, "refresh": "r"})
		case "/token/refresh/":
			w.WriteHeader(http.StatusUnauthorized)
		case "/dashboard":
			// The stale token still goes out; the backend decides
			if got := r.Header.Get("Authorization"); got != "Bearer "+staleAccess {
				t.Errorf("expected stale bearer header after failed refresh, got %q", got)
			}
			json.NewEncoder(w).Encode(DashboardResponse{})
		}
	}))
	defer server.Close()

	session := loginSession(t, server.URL)
	c := New(server.URL, session)

	if _, err := c.Dashboard(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthorize_RefreshFailureKeepsSession(t *testing.T) {
	staleAccess := makeToken(t, token.Claims{
		Email: "alice@example.com",
		Exp:   time.Now().Add(30 * time.Second).Unix(),
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/":
			json.NewEncoder(w).Encode(map[string]string{"access": staleAccess, "refresh": "r"})
		case "/token/refresh/":
			// Transient backend trouble must not destroy the session
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/dashboard":
			json.NewEncoder(w).Encode(DashboardResponse{})
		}
	}))
	defer server.Close()

	session := loginSession(t, server.URL)
	c := New(server.URL, session)

	if _, err := c.Dashboard(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !session.LoggedIn() {
		t.Error("expected session to survive a failed pre-request refresh")
	}
	if sess := session.Session(); sess.RefreshToken != "r" {
		t.Errorf("expected refresh token preserved, got %q", sess.RefreshToken)
	}
}

func TestDashboard_ErrorMessageExtraction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "permission denied"})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	_, err := c.Dashboard(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "permission denied" {
		t.Errorf("expected backend message surfaced, got %q", err.Error())
	}
}

func TestDashboard_ConnectionError(t *testing.T) {
	c := New("http://localhost:1", nil)
	if _, err := c.Dashboard(context.Background()); err == nil {
		t.Error("expected connection error, got nil")
	}
}

func TestDashboard_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		json.NewEncoder(w).Encode(DashboardResponse{})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Dashboard(ctx); err == nil {
		t.Error("expected error for canceled context, got nil")
	}
}

func TestUpdateRow_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/update_mapping/row-7" {
			t.Errorf("expected path /update_mapping/row-7, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}

		var req updateRowRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Department != "FINANCE" {
			t.Errorf("expected department FINANCE in body, got %s", req.Department)
		}

		json.NewEncoder(w).Encode(updateRowResponse{
			MappingRow: req.MappingRow,
			Message:    "updated",
		})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	row := MappingRow{ID: "row-7", ParentSKU: "PARENT-1"}

	updated, err := c.UpdateRow(context.Background(), row, "FINANCE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ParentSKU != "PARENT-1" {
		t.Error("expected server row returned")
	}
}

func TestUpdateRow_MissingID(t *testing.T) {
	c := New("http://localhost:1", nil)
	if _, err := c.UpdateRow(context.Background(), MappingRow{}, "SCM"); err == nil {
		t.Error("expected error for row without id, got nil")
	}
}

func TestSaveMapping_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/save_mapping/" {
			t.Errorf("expected path /save_mapping/, got %s", r.URL.Path)
		}

		var req struct {
			MappingData []MappingRow `json:"mapping_data"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.MappingData) != 2 {
			t.Errorf("expected 2 rows posted, got %d", len(req.MappingData))
		}

		json.NewEncoder(w).Encode(SaveResult{
			Message:      "saved",
			RowsInserted: 2,
			Timestamp:    "2026-08-28 10:00:00",
		})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	result, err := c.SaveMapping(context.Background(), []MappingRow{{ID: "1"}, {ID: "2"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RowsInserted != 2 {
		t.Errorf("expected 2 rows inserted, got %d", result.RowsInserted)
	}
}

func TestUploadBulk_Multipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/update_mapping_bulk/" {
			t.Errorf("expected path /update_mapping_bulk/, got %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("department"); got != "SCM" {
			t.Errorf("expected department SCM, got %s", got)
		}
		if got := r.FormValue("user_email"); got != "alice@example.com" {
			t.Errorf("expected user_email alice@example.com, got %s", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "mapping.csv" {
			t.Errorf("expected filename mapping.csv, got %s", header.Filename)
		}

		json.NewEncoder(w).Encode(UploadResult{Message: "processed", RowsProcessed: 10})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	result, err := c.UploadBulk(context.Background(), "mapping.csv", []byte("ID,Date\n1,2026-01-01\n"), "SCM", "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RowsProcessed != 10 {
		t.Errorf("expected 10 rows processed, got %d", result.RowsProcessed)
	}
}

func TestRecomputeMapping_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/new_mapping" {
			t.Errorf("expected path /new_mapping, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "success"})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	msg, err := c.RecomputeMapping(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "success" {
		t.Errorf("expected message success, got %s", msg)
	}
}
