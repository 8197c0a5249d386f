package integration

import (
	"net/http"
	"strings"
	"testing"
)

// TestRegistration verifies that a new account can be registered and that the
// response carries the new account ID.
func TestRegistration(t *testing.T) {
	skipIfNotRunning(t)

	email := uniqueEmail("register")
	status, data := httpPost(t, baseURL()+"/api/v1/auth/register", map[string]interface{}{
		"email":    email,
		"password": "TestPass123",
	})
	requireStatus(t, status, 201)

	accountID := extractString(t, data, "data.account_id")
	t.Logf("registered account %s with id %s", email, accountID)
}

// TestRegistrationDuplicateEmail verifies that registering the same email
// twice answers 409 with a stable error code.
func TestRegistrationDuplicateEmail(t *testing.T) {
	skipIfNotRunning(t)

	email := uniqueEmail("duplicate")
	body := map[string]interface{}{
		"email":    email,
		"password": "TestPass123",
	}

	status, _ := httpPost(t, baseURL()+"/api/v1/auth/register", body)
	requireStatus(t, status, 201)

	status, data := httpPost(t, baseURL()+"/api/v1/auth/register", body)
	requireStatus(t, status, 409)
	if code := extractString(t, data, "error.code"); code != "ALREADY_EXISTS" {
		t.Fatalf("expected error code ALREADY_EXISTS, got %s", code)
	}
}

// TestRegistrationValidation verifies that a malformed email is rejected with
// per-field details.
func TestRegistrationValidation(t *testing.T) {
	skipIfNotRunning(t)

	status, data := httpPost(t, baseURL()+"/api/v1/auth/register", map[string]interface{}{
		"email":    "not-an-email",
		"password": "TestPass123",
	})
	requireStatus(t, status, 400)
	if code := extractString(t, data, "error.code"); code != "VALIDATION_ERROR" {
		t.Fatalf("expected error code VALIDATION_ERROR, got %s", code)
	}
	if field := extractField(data, "error.fields.Email"); field == nil {
		t.Fatal("expected a field-level message for Email")
	}
}

// TestLoginUnverifiedAccount verifies that logging in before email
// verification answers 202 with VERIFICATION_REQUIRED and issues no session
// cookies.
func TestLoginUnverifiedAccount(t *testing.T) {
	skipIfNotRunning(t)

	email := uniqueEmail("unverified")
	status, _ := httpPost(t, baseURL()+"/api/v1/auth/register", map[string]interface{}{
		"email":    email,
		"password": "TestPass123",
	})
	requireStatus(t, status, 201)

	resp := httpPostResponse(t, baseURL()+"/api/v1/auth/login", map[string]interface{}{
		"email":    email,
		"password": "TestPass123",
	})
	defer resp.Body.Close()
	requireStatus(t, resp.StatusCode, 202)

	data := decodeBody(t, resp.Body)
	if code := extractString(t, data, "error.code"); code != "VERIFICATION_REQUIRED" {
		t.Fatalf("expected error code VERIFICATION_REQUIRED, got %s", code)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "access_token" || c.Name == "refresh_token" {
			t.Fatalf("expected no session cookies before verification, got %s", c.Name)
		}
	}
}

// TestLoginUnknownAccount verifies that an unknown email and a wrong password
// are indistinguishable 401 responses.
func TestLoginUnknownAccount(t *testing.T) {
	skipIfNotRunning(t)

	status, _ := httpPost(t, baseURL()+"/api/v1/auth/login", map[string]interface{}{
		"email":    uniqueEmail("ghost"),
		"password": "TestPass123",
	})
	requireStatus(t, status, 401)
}

// TestVerifyWrongCode verifies that a wrong code for a pending verification
// answers 400 without consuming the pending code.
func TestVerifyWrongCode(t *testing.T) {
	skipIfNotRunning(t)

	email := uniqueEmail("wrongcode")
	status, _ := httpPost(t, baseURL()+"/api/v1/auth/register", map[string]interface{}{
		"email":    email,
		"password": "TestPass123",
	})
	requireStatus(t, status, 201)

	status, data := httpPost(t, baseURL()+"/api/v1/auth/verify", map[string]interface{}{
		"email": email,
		"code":  "ZZZ000",
	})
	requireStatus(t, status, 400)
	if code := extractString(t, data, "error.code"); code != "INVALID_CODE" {
		t.Fatalf("expected error code INVALID_CODE, got %s", code)
	}
}

// TestVerifyUnknownAccount verifies that verification for an account that was
// never registered answers 404.
func TestVerifyUnknownAccount(t *testing.T) {
	skipIfNotRunning(t)

	status, data := httpPost(t, baseURL()+"/api/v1/auth/verify", map[string]interface{}{
		"email": uniqueEmail("never"),
		"code":  "ABC123",
	})
	requireStatus(t, status, 404)
	if code := extractString(t, data, "error.code"); code != "CODE_NOT_FOUND" {
		t.Fatalf("expected error code CODE_NOT_FOUND, got %s", code)
	}
}

// TestRefreshWithoutToken verifies that refresh without a cookie or body
// answers 401.
func TestRefreshWithoutToken(t *testing.T) {
	skipIfNotRunning(t)

	status, data := httpPost(t, baseURL()+"/api/v1/auth/refresh", map[string]interface{}{})
	requireStatus(t, status, 401)
	if code := extractString(t, data, "error.code"); code != "UNAUTHORIZED" {
		t.Fatalf("expected error code UNAUTHORIZED, got %s", code)
	}
}

// TestLogoutWithoutSession verifies that logout is idempotent: with no
// session at all it still answers 200 and clears the cookies.
func TestLogoutWithoutSession(t *testing.T) {
	skipIfNotRunning(t)

	resp := httpPostResponse(t, baseURL()+"/api/v1/auth/logout", map[string]interface{}{})
	defer resp.Body.Close()
	requireStatus(t, resp.StatusCode, 200)

	for _, c := range resp.Cookies() {
		if (c.Name == "access_token" || c.Name == "refresh_token") && c.MaxAge >= 0 {
			t.Fatalf("expected cookie %s to be expired, got MaxAge %d", c.Name, c.MaxAge)
		}
	}
}

// TestContentTypeEnforced verifies that JSON endpoints reject non-JSON
// payloads with 415.
func TestContentTypeEnforced(t *testing.T) {
	skipIfNotRunning(t)

	req, err := http.NewRequest(http.MethodPost, baseURL()+"/api/v1/auth/login", strings.NewReader("email=x"))
	if err != nil {
		t.Fatalf("creating request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	requireStatus(t, resp.StatusCode, 415)
}
