package integration

import (
	"net/http"
	"testing"
)

// TestFinanceEndpointsRequireAuth verifies that every finance endpoint
// rejects anonymous requests.
func TestFinanceEndpointsRequireAuth(t *testing.T) {
	skipIfNotRunning(t)

	for _, path := range []string{
		"/api/v1/categories",
		"/api/v1/incomes",
		"/api/v1/expenses",
		"/api/v1/report",
	} {
		status, _ := httpGet(t, baseURL()+path)
		if status != 401 {
			t.Errorf("GET %s: expected 401 for anonymous request, got %d", path, status)
		}
	}
}

// TestProfileRequiresAuth verifies that the profile endpoint rejects both
// anonymous requests and garbage credentials.
func TestProfileRequiresAuth(t *testing.T) {
	skipIfNotRunning(t)

	status, _ := httpGet(t, baseURL()+"/api/v1/auth/me")
	requireStatus(t, status, 401)

	status, _ = httpGetWithCookies(t, baseURL()+"/api/v1/auth/me", []*http.Cookie{
		{Name: "access_token", Value: "not-a-jwt"},
	})
	requireStatus(t, status, 401)
}

// TestFinanceWritesRequireAuth verifies that record creation is rejected
// before the body is ever interpreted.
func TestFinanceWritesRequireAuth(t *testing.T) {
	skipIfNotRunning(t)

	status, _ := httpPostWithCookies(t, baseURL()+"/api/v1/expenses", map[string]interface{}{
		"amount": 1500,
		"date":   "2026-01-15T00:00:00Z",
	}, nil)
	requireStatus(t, status, 401)
}
