package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kkolinko/jtrac/internal/model"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method      string
	path        string
	query       string
	body        string
	contentType string
	authHeader  string

	// canned response
	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.query = r.URL.RawQuery
	h.contentType = r.Header.Get("Content-Type")
	h.authHeader = r.Header.Get("Authorization")
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.statusCode)
	_, _ = w.Write([]byte(h.responseBody))
}

func newTestClient(t *testing.T, h *testHandler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, "")
}

func TestGetItem(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusOK,
		responseBody: `{"id":12,"seq_num":7,"prefix_code":"WEB","summary":"login broken","status":1}`,
	}
	c := newTestClient(t, h)

	item, err := c.GetItem(context.Background(), "WEB-7")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if h.method != http.MethodGet || h.path != "/v1/items/WEB-7" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
	if got := item.RefID().String(); got != "WEB-7" {
		t.Errorf("ref = %q", got)
	}
}

func TestCreateItem(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusCreated,
		responseBody: `{"id":1,"seq_num":1,"prefix_code":"WEB","summary":"new","status":1}`,
	}
	c := newTestClient(t, h)

	sev := 20
	_, err := c.CreateItem(context.Background(), "WEB", &model.Item{
		Summary:  "new",
		LoggedBy: 3,
		Severity: &sev,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if h.method != http.MethodPost || h.path != "/v1/workspaces/WEB/items" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
	if h.contentType != "application/json" {
		t.Errorf("content type = %q", h.contentType)
	}
	if !strings.Contains(h.body, `"severity":20`) {
		t.Errorf("body = %s", h.body)
	}
}

func TestUpdateItemOmitsUnsetFields(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusOK,
		responseBody: `{"id":1,"seq_num":1,"prefix_code":"WEB","summary":"x","status":2}`,
	}
	c := newTestClient(t, h)

	status := 2
	_, err := c.UpdateItem(context.Background(), "WEB-1", &UpdateItemRequest{
		Status:   &status,
		LoggedBy: 3,
		Comment:  "done",
	})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if h.method != http.MethodPut || h.path != "/v1/items/WEB-1" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
	if strings.Contains(h.body, "summary") || strings.Contains(h.body, "assigned_to") {
		t.Errorf("unset fields leaked into body: %s", h.body)
	}
}

func TestSearchQueryString(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusOK,
		responseBody: `{"total":1,"page":2,"page_size":25,"link":"s=7","items":[{"id":1,"seq_num":4,"prefix_code":"WEB","summary":"hit","status":1}]}`,
	}
	c := newTestClient(t, h)

	params := map[string][]string{"s": {"7"}, "status": {"in_1_2"}}
	resp, err := c.Search(context.Background(), "alice", params, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if h.path != "/v1/search" {
		t.Errorf("path = %s", h.path)
	}
	for _, want := range []string{"user=alice", "s=7", "status=in_1_2", "page=2"} {
		if !strings.Contains(h.query, want) {
			t.Errorf("query %q missing %q", h.query, want)
		}
	}
	if resp.Total != 1 || len(resp.Items) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAPIError(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusForbidden,
		responseBody: `{"error":"workspace access forbidden: workspace 9"}`,
	}
	c := newTestClient(t, h)

	_, err := c.Search(context.Background(), "alice", nil, 0)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Message, "forbidden") {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestAuthHeader(t *testing.T) {
	h := &testHandler{statusCode: http.StatusOK, responseBody: `{"status":"ok"}`}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewHTTPClient(srv.URL, "sekrit")

	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.authHeader != "Bearer sekrit" {
		t.Errorf("authorization = %q", h.authHeader)
	}
}
