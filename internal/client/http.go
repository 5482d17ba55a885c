package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kkolinko/jtrac/internal/model"
)

// HTTPClient implements TrackerClient using the jtrac HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Users ---

func (c *HTTPClient) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	var out model.User
	if err := c.doJSON(ctx, http.MethodPost, "/v1/users", u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, login string) (*model.User, error) {
	var out model.User
	if err := c.doJSON(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(login), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Workspaces ---

func (c *HTTPClient) CreateWorkspace(ctx context.Context, ownerLogin string, ws *model.Workspace) (*model.Workspace, error) {
	body := struct {
		*model.Workspace
		OwnerLogin string `json:"owner_login"`
	}{ws, ownerLogin}

	var out model.Workspace
	if err := c.doJSON(ctx, http.MethodPost, "/v1/workspaces", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetWorkspace(ctx context.Context, prefixCode string) (*model.Workspace, error) {
	var out model.Workspace
	if err := c.doJSON(ctx, http.MethodGet, "/v1/workspaces/"+url.PathEscape(prefixCode), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListWorkspaces(ctx context.Context) ([]*model.Workspace, error) {
	var resp struct {
		Workspaces []*model.Workspace `json:"workspaces"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/workspaces", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Workspaces, nil
}

func (c *HTTPClient) GrantAccess(ctx context.Context, prefixCode, login string) error {
	body := map[string]string{"login": login}
	return c.doJSON(ctx, http.MethodPost, "/v1/workspaces/"+url.PathEscape(prefixCode)+"/members", body, nil)
}

// --- Items ---

func (c *HTTPClient) CreateItem(ctx context.Context, prefixCode string, item *model.Item) (*model.Item, error) {
	var out model.Item
	path := "/v1/workspaces/" + url.PathEscape(prefixCode) + "/items"
	if err := c.doJSON(ctx, http.MethodPost, path, item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetItem(ctx context.Context, refID string) (*model.Item, error) {
	var out model.Item
	if err := c.doJSON(ctx, http.MethodGet, "/v1/items/"+url.PathEscape(refID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateItem(ctx context.Context, refID string, req *UpdateItemRequest) (*model.Item, error) {
	var out model.Item
	if err := c.doJSON(ctx, http.MethodPut, "/v1/items/"+url.PathEscape(refID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) MoveItem(ctx context.Context, refID, targetPrefix string, loggedBy int64, comment string) (*model.Item, error) {
	body := struct {
		Workspace string `json:"workspace"`
		LoggedBy  int64  `json:"logged_by"`
		Comment   string `json:"comment,omitempty"`
	}{targetPrefix, loggedBy, comment}

	var out model.Item
	path := "/v1/items/" + url.PathEscape(refID) + "/move"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetHistory(ctx context.Context, refID string) ([]*model.HistoryEvent, error) {
	var resp struct {
		History []*model.HistoryEvent `json:"history"`
	}
	path := "/v1/items/" + url.PathEscape(refID) + "/history"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// --- Search ---

func (c *HTTPClient) Search(ctx context.Context, login string, params url.Values, page int) (*SearchResponse, error) {
	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("user", login)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	var resp SearchResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/search?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Export ---

func (c *HTTPClient) Export(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/export", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	return body, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for 204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content means success with no body to decode.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
