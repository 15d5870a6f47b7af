package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"casepad/internal/app/client/config"
	"casepad/internal/domain/caserecord"
	"casepad/internal/domain/casesheet"
)

type httpClient struct {
	client    *http.Client
	config    *config.Config
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) (*httpClient, error) {
	client := &http.Client{
		Timeout: time.Duration(cfg.HTTPTimeout) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &httpClient{
		client:    client,
		config:    cfg,
		log:       log.With("component", "http_client"),
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "CasePad-Client/1.0",
	}, nil
}

// SetToken sets the bearer token used on authenticated requests.
func (h *httpClient) SetToken(token string) {
	h.token = token
}

// HealthCheck verifies the server is reachable.
func (h *httpClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return nil
}

func (h *httpClient) Login(ctx context.Context, login, password string) (string, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"login":    login,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := h.parseResponse(resp, &loginResp); err != nil {
		return "", err
	}

	h.SetToken(loginResp.Token)
	return loginResp.Token, nil
}

// CreateCase registers a new patient server-side and returns the case id.
func (h *httpClient) CreateCase(ctx context.Context, c *caserecord.Case) (string, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/cases", c)
	if err != nil {
		return "", err
	}

	var createResp struct {
		ID string `json:"id"`
	}
	if err := h.parseResponse(resp, &createResp); err != nil {
		return "", err
	}
	return createResp.ID, nil
}

// PutCase replaces the case document wholesale. Quota and validation
// rejections come back as typed errors so the commit coordinator can show
// the right text.
func (h *httpClient) PutCase(ctx context.Context, caseID string, doc casesheet.Document) error {
	resp, err := h.doRequest(ctx, http.MethodPut, "/api/v1/cases/"+caseID, struct {
		Document casesheet.Document `json:"document"`
	}{doc})
	if err != nil {
		return err
	}

	return h.parseResponse(resp, nil)
}

// FetchCase retrieves the full case document; this is the casecache fetch
// path.
func (h *httpClient) FetchCase(ctx context.Context, caseID string) (casesheet.Document, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/cases/"+caseID, nil)
	if err != nil {
		return nil, err
	}

	var caseResp struct {
		Document casesheet.Document `json:"document"`
	}
	if err := h.parseResponse(resp, &caseResp); err != nil {
		return nil, err
	}
	return caseResp.Document, nil
}

func (h *httpClient) ListCases(ctx context.Context) ([]caserecord.Summary, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/cases", nil)
	if err != nil {
		return nil, err
	}

	var listResp struct {
		Cases []caserecord.Summary `json:"cases"`
	}
	if err := h.parseResponse(resp, &listResp); err != nil {
		return nil, err
	}
	return listResp.Cases, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	h.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	h.log.Debug("received response", "status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		return parseErrorBody(resp.StatusCode, body)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// parseErrorBody turns an error response into a typed error. The server is
// not the only thing that answers on this port (proxies, captive portals),
// so three shapes are recognized: an error object, an array of field errors,
// and a bare string. Anything else degrades to a status-code error.
func parseErrorBody(status int, body []byte) error {
	var obj struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Title   string `json:"title"`
		Detail  string `json:"detail"`
		Errors  []struct {
			Field    string `json:"field"`
			Location string `json:"location"`
			Message  string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &obj); err == nil {
		if obj.Error == "edit_limit_reached" {
			msg := obj.Message
			if msg == "" {
				msg = obj.Detail
			}
			return &caserecord.QuotaError{Message: msg}
		}
		if len(obj.Errors) > 0 {
			fields := make([]caserecord.FieldError, 0, len(obj.Errors))
			for _, e := range obj.Errors {
				field := e.Field
				if field == "" {
					field = strings.TrimPrefix(e.Location, "body.")
				}
				fields = append(fields, caserecord.FieldError{Field: field, Message: e.Message})
			}
			return &caserecord.ValidationError{Fields: fields}
		}
		switch {
		case obj.Message != "":
			return fmt.Errorf("server error: %s", obj.Message)
		case obj.Detail != "":
			return fmt.Errorf("server error: %s", obj.Detail)
		case obj.Error != "":
			return fmt.Errorf("server error: %s", obj.Error)
		}
	}

	var fieldErrs []caserecord.FieldError
	if err := json.Unmarshal(body, &fieldErrs); err == nil && len(fieldErrs) > 0 {
		return &caserecord.ValidationError{Fields: fieldErrs}
	}

	var plain string
	if err := json.Unmarshal(body, &plain); err == nil && plain != "" {
		return fmt.Errorf("server error: %s", plain)
	}

	return fmt.Errorf("server returned status %d", status)
}
