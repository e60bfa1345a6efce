// internal/clubapi/client.go
package clubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// HTTPError carries the status and context of a non-2xx backend response.
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
	Method     string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("club api %d %s from %s %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Method, e.URL, e.Message)
	}
	return fmt.Sprintf("club api %d %s from %s %s", e.StatusCode, http.StatusText(e.StatusCode), e.Method, e.URL)
}

// Sentinel errors for common backend failures. Check with errors.Is.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("club api unavailable")
)

// NewDefaultHTTPClient returns an http.Client with sane timeouts for talking
// to the club API.
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Client is the HTTP implementation of API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
}

// NewClient creates a Client for the given base URL. A nil httpClient falls
// back to NewDefaultHTTPClient.
func NewClient(baseURL, authToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewDefaultHTTPClient()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		authToken:  authToken,
	}
}

var _ API = (*Client)(nil)

func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	requestURL := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body for %s %s: %w", method, requestURL, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request for %s: %w", method, requestURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s %s timed out: %w", method, requestURL, ctx.Err())
		}
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, requestURL, err)
	}
	defer resp.Body.Close()

	log.Ctx(ctx).Debug().
		Str("method", method).
		Str("url", requestURL).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Club API call")

	if resp.StatusCode >= 400 {
		var errorResponse struct {
			Message string `json:"message"`
		}
		message := ""
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil && len(data) > 0 {
			if jsonErr := json.Unmarshal(data, &errorResponse); jsonErr == nil && errorResponse.Message != "" {
				message = errorResponse.Message
			} else {
				message = string(data)
			}
		}
		return statusError(resp.StatusCode, message, requestURL, method)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode %s response from %s: %w", method, requestURL, err)
		}
	}
	return nil
}

func statusError(statusCode int, message, requestURL, method string) error {
	httpErr := &HTTPError{StatusCode: statusCode, Message: message, URL: requestURL, Method: method}
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, httpErr)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, httpErr)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, httpErr)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, httpErr)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, httpErr)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrUnavailable, httpErr)
	default:
		return httpErr
	}
}

// StatusCode extracts the HTTP status from an error chain, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

func (c *Client) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	var match Match
	path := fmt.Sprintf("/matches/%s", url.PathEscape(matchID))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

func (c *Client) GetAttendance(ctx context.Context, matchID string) (*AttendanceSummary, error) {
	var summary AttendanceSummary
	path := fmt.Sprintf("/matches/%s/attendance", url.PathEscape(matchID))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) SetAttendance(ctx context.Context, matchID, userID string, status AttendanceStatus) (*AttendanceSummary, error) {
	var summary AttendanceSummary
	path := fmt.Sprintf("/matches/%s/attendance/%s", url.PathEscape(matchID), url.PathEscape(userID))
	body := struct {
		Status AttendanceStatus `json:"status"`
	}{Status: status}
	if err := c.doRequest(ctx, http.MethodPut, path, body, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) ListTeams(ctx context.Context, matchID string) ([]Team, error) {
	var teams []Team
	path := fmt.Sprintf("/matches/%s/teams", url.PathEscape(matchID))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *Client) CreateTeams(ctx context.Context, matchID string, teams []NewTeam) ([]Team, error) {
	var created []Team
	path := fmt.Sprintf("/matches/%s/teams", url.PathEscape(matchID))
	body := struct {
		Teams []NewTeam `json:"teams"`
	}{Teams: teams}
	if err := c.doRequest(ctx, http.MethodPost, path, body, &created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) UpdateTeam(ctx context.Context, matchID, teamID, name, color string) error {
	path := fmt.Sprintf("/matches/%s/teams/%s", url.PathEscape(matchID), url.PathEscape(teamID))
	body := struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}{Name: name, Color: color}
	return c.doRequest(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) DeleteTeam(ctx context.Context, matchID, teamID string) error {
	path := fmt.Sprintf("/matches/%s/teams/%s", url.PathEscape(matchID), url.PathEscape(teamID))
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) AssignPlayer(ctx context.Context, matchID, teamID, userID string, position Position) error {
	path := fmt.Sprintf("/matches/%s/teams/%s/players/%s", url.PathEscape(matchID), url.PathEscape(teamID), url.PathEscape(userID))
	body := struct {
		Position Position `json:"position,omitempty"`
	}{Position: position}
	return c.doRequest(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) RemovePlayer(ctx context.Context, matchID, teamID, userID string) error {
	path := fmt.Sprintf("/matches/%s/teams/%s/players/%s", url.PathEscape(matchID), url.PathEscape(teamID), url.PathEscape(userID))
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) GetResult(ctx context.Context, matchID string) (*MatchResult, error) {
	var result MatchResult
	path := fmt.Sprintf("/matches/%s/result", url.PathEscape(matchID))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PutResult(ctx context.Context, matchID string, result MatchResult) (*MatchResult, error) {
	var saved MatchResult
	path := fmt.Sprintf("/matches/%s/result", url.PathEscape(matchID))
	if err := c.doRequest(ctx, http.MethodPut, path, result, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) Notify(ctx context.Context, matchID string) error {
	path := fmt.Sprintf("/matches/%s/notify", url.PathEscape(matchID))
	return c.doRequest(ctx, http.MethodPost, path, nil, nil)
}
