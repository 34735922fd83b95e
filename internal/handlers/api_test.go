package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"growthlog/internal/security"
	"growthlog/internal/service"
	"growthlog/internal/store"
	"growthlog/internal/validation"
)

// apiClient wraps a test server and carries the guardian cookie between
// requests, the way a browser would.
type apiClient struct {
	t      *testing.T
	server *httptest.Server
	cookie *http.Cookie
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	mem := store.NewMemory()
	issuer, err := security.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	guard := service.NewGuardianService(mem, mem, mem, issuer)
	growth := service.NewGrowthService(guard, mem, mem, validation.ChildPolicy{})

	mw := NewMiddleware(guard, "guardian_token", time.Hour)
	router := NewRouter(mw, NewChildHandler(growth), NewMeasurementHandler(growth))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func newAPIClient(t *testing.T) *apiClient {
	return &apiClient{t: t, server: newAPIServer(t)}
}

func (c *apiClient) do(method, path string, body interface{}) (*http.Response, []byte) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	resp, err := c.server.Client().Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "guardian_token" {
			c.cookie = cookie
		}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		c.t.Fatalf("read response body: %v", err)
	}
	return resp, buf.Bytes()
}

func (c *apiClient) decode(data []byte, v interface{}) {
	c.t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		c.t.Fatalf("decode response %q: %v", data, err)
	}
}

type childJSON struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	BirthDate    *string           `json:"birthDate"`
	Gender       string            `json:"gender"`
	AgeYears     *int              `json:"ageYears"`
	Latest       *measurementJSON  `json:"latestMeasurement"`
	Measurements []measurementJSON `json:"measurements"`
}

type measurementJSON struct {
	ID       string   `json:"id"`
	ChildID  string   `json:"childId"`
	Date     string   `json:"date"`
	HeightCm *float64 `json:"heightCm"`
	WeightKg *float64 `json:"weightKg"`
	Note     string   `json:"note"`
	BMI      *float64 `json:"bmi"`
}

type errorJSON struct {
	Error string `json:"error"`
	Field string `json:"field"`
	Code  string `json:"code"`
}

func TestGuardianCookieIssuedOnFirstContact(t *testing.T) {
	client := newAPIClient(t)

	resp, body := client.do(http.MethodGet, "/api/children", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if client.cookie == nil {
		t.Fatal("expected a guardian_token cookie on first contact")
	}
	if !client.cookie.HttpOnly {
		t.Error("guardian cookie should be httpOnly")
	}

	// A second request with the cookie should not rotate it.
	first := client.cookie.Value
	resp, _ = client.do(http.MethodGet, "/api/children", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second request status = %d", resp.StatusCode)
	}
	if client.cookie.Value != first {
		t.Error("cookie was rotated for an already known guardian")
	}
}

func TestChildAndMeasurementFlow(t *testing.T) {
	client := newAPIClient(t)

	resp, body := client.do(http.MethodPost, "/api/children", map[string]string{
		"name":      "Sam",
		"birthDate": "2020-01-15",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create child status = %d, body = %s", resp.StatusCode, body)
	}
	var child childJSON
	client.decode(body, &child)
	if child.Name != "Sam" {
		t.Errorf("Name = %q, want Sam", child.Name)
	}
	if child.BirthDate == nil || *child.BirthDate != "2020-01-15" {
		t.Errorf("BirthDate = %v, want 2020-01-15", child.BirthDate)
	}
	if child.AgeYears == nil {
		t.Error("expected an age for a child with a birth date")
	}

	resp, body = client.do(http.MethodPost, "/api/children/"+child.ID+"/measurements", map[string]interface{}{
		"date":     "2024-06-01",
		"heightCm": 110.0,
		"weightKg": 18.5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create measurement status = %d, body = %s", resp.StatusCode, body)
	}
	var m measurementJSON
	client.decode(body, &m)
	if m.BMI == nil || *m.BMI != 15.3 {
		t.Fatalf("BMI = %v, want 15.3", m.BMI)
	}

	// The list view carries the latest measurement.
	resp, body = client.do(http.MethodGet, "/api/children", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var list []childJSON
	client.decode(body, &list)
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].Latest == nil || list[0].Latest.ID != m.ID {
		t.Errorf("latest measurement = %+v, want id %s", list[0].Latest, m.ID)
	}

	// The detail view carries the full history.
	resp, body = client.do(http.MethodGet, "/api/children/"+child.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	var detail childJSON
	client.decode(body, &detail)
	if len(detail.Measurements) != 1 {
		t.Fatalf("len(Measurements) = %d, want 1", len(detail.Measurements))
	}

	// Patch the measurement; BMI is rederived.
	resp, body = client.do(http.MethodPatch, "/api/measurements/"+m.ID, map[string]interface{}{
		"weightKg": 20.0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status = %d, body = %s", resp.StatusCode, body)
	}
	client.decode(body, &m)
	if m.BMI == nil || *m.BMI != 16.5 {
		t.Errorf("BMI after patch = %v, want 16.5", m.BMI)
	}

	// Delete the measurement, then the child.
	resp, _ = client.do(http.MethodDelete, "/api/measurements/"+m.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete measurement status = %d", resp.StatusCode)
	}
	resp, _ = client.do(http.MethodDelete, "/api/children/"+child.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete child status = %d", resp.StatusCode)
	}
	resp, _ = client.do(http.MethodGet, "/api/children/"+child.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestValidationErrorsAreBadRequests(t *testing.T) {
	client := newAPIClient(t)

	tests := []struct {
		name     string
		method   string
		path     func(childID string) string
		body     interface{}
		wantCode string
	}{
		{
			name:     "blank child name",
			method:   http.MethodPost,
			path:     func(string) string { return "/api/children" },
			body:     map[string]string{"name": "   "},
			wantCode: string(validation.MissingField),
		},
		{
			name:     "malformed birth date",
			method:   http.MethodPost,
			path:     func(string) string { return "/api/children" },
			body:     map[string]string{"name": "Ada", "birthDate": "15/01/2020"},
			wantCode: string(validation.InvalidDate),
		},
		{
			name:   "future measurement date",
			method: http.MethodPost,
			path:   func(id string) string { return "/api/children/" + id + "/measurements" },
			body: map[string]interface{}{
				"date":     "2099-01-01",
				"heightCm": 110.0,
			},
			wantCode: string(validation.FutureDate),
		},
		{
			name:   "height out of range",
			method: http.MethodPost,
			path:   func(id string) string { return "/api/children/" + id + "/measurements" },
			body: map[string]interface{}{
				"date":     "2024-06-01",
				"heightCm": 5.0,
			},
			wantCode: string(validation.OutOfRange),
		},
	}

	resp, body := client.do(http.MethodPost, "/api/children", map[string]string{"name": "Ada"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("setup child status = %d, body = %s", resp.StatusCode, body)
	}
	var child childJSON
	client.decode(body, &child)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := client.do(tt.method, tt.path(child.ID), tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s, want 400", resp.StatusCode, body)
			}
			var e errorJSON
			client.decode(body, &e)
			if e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}
}

func TestOtherGuardiansChildLooksAbsent(t *testing.T) {
	owner := newAPIClient(t)

	resp, body := owner.do(http.MethodPost, "/api/children", map[string]string{"name": "Mia"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create child status = %d", resp.StatusCode)
	}
	var child childJSON
	owner.decode(body, &child)

	// A different guardian against the same server.
	stranger := &apiClient{t: t, server: owner.server}

	resp, _ = stranger.do(http.MethodGet, "/api/children/"+child.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("stranger get status = %d, want 404", resp.StatusCode)
	}
	resp, _ = stranger.do(http.MethodPatch, "/api/children/"+child.ID, map[string]string{"name": "X"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("stranger patch status = %d, want 404", resp.StatusCode)
	}
	resp, _ = stranger.do(http.MethodDelete, "/api/children/"+child.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("stranger delete status = %d, want 404", resp.StatusCode)
	}

	// The owner still sees it.
	resp, _ = owner.do(http.MethodGet, "/api/children/"+child.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("owner get status = %d, want 200", resp.StatusCode)
	}
}

func TestUnknownIDsReturnNotFound(t *testing.T) {
	client := newAPIClient(t)

	paths := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/api/children/no-such-id", nil},
		{http.MethodDelete, "/api/children/no-such-id", nil},
		{http.MethodPost, "/api/children/no-such-id/measurements", map[string]interface{}{"date": "2024-06-01"}},
		{http.MethodPatch, "/api/measurements/no-such-id", map[string]interface{}{"weightKg": 10.0}},
		{http.MethodDelete, "/api/measurements/no-such-id", nil},
	}

	for _, p := range paths {
		resp, body := client.do(p.method, p.path, p.body)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s %s status = %d, body = %s, want 404", p.method, p.path, resp.StatusCode, body)
		}
	}
}

func TestHealthz(t *testing.T) {
	client := newAPIClient(t)

	resp, body := client.do(http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var status map[string]string
	client.decode(body, &status)
	if status["status"] != "ok" {
		t.Errorf("status = %q, want ok", status["status"])
	}
}
