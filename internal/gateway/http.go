package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nekogravitycat/workplace-booking/internal/booking"
	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

const healthTimeout = 5 * time.Second

// TokenSource returns the bearer token to send, or "" for anonymous calls.
type TokenSource func(ctx context.Context) string

type Option func(*HTTPGateway)

func WithHTTPClient(client *http.Client) Option {
	return func(g *HTTPGateway) { g.client = client }
}

func WithTokenSource(ts TokenSource) Option {
	return func(g *HTTPGateway) { g.tokens = ts }
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *HTTPGateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// HTTPGateway implements Gateway against the REST API under baseURL
// (for example http://localhost:8080/api).
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

func NewHTTPGateway(baseURL string, opts ...Option) *HTTPGateway {
	g := &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		tokens:  func(context.Context) string { return "" },
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "gateway")
	return g
}

// BaseURL returns the API root without a trailing slash.
func (g *HTTPGateway) BaseURL() string {
	return g.baseURL
}

// errorBody matches every failure envelope the backend sends.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// result matches {success, id, message, error} responses.
type result struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := g.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := g.tokens(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		berr := &BackendError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			if eb.Error != "" {
				berr.Message = eb.Error
			} else if eb.Message != "" {
				berr.Message = eb.Message
			}
		}
		g.logger.Warn("backend rejected request", "method", method, "path", path, "status", resp.StatusCode, "error", berr.Message)
		return berr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response of %s %s: %w", method, path, err)
	}
	return nil
}

func (g *HTTPGateway) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	var body struct {
		Status string `json:"status"`
	}
	if err := g.do(ctx, http.MethodGet, "/health", nil, nil, &body); err != nil {
		return false
	}
	return body.Status == "ok"
}

func (g *HTTPGateway) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload := map[string]string{"username": username, "password": password}

	var body struct {
		Success  bool   `json:"success"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Role     string `json:"role"`
		Email    string `json:"email"`
		Token    string `json:"token"`
		Error    string `json:"error"`
	}
	if err := g.do(ctx, http.MethodPost, "/auth/login", nil, payload, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, &BackendError{Status: http.StatusOK, Message: orDefault(body.Error, "login failed")}
	}

	return &LoginResult{
		Username: body.Username,
		Name:     body.Name,
		Role:     body.Role,
		Email:    body.Email,
		Token:    body.Token,
	}, nil
}

func (g *HTTPGateway) GetWorkplaces(ctx context.Context, branch workplace.Branch) ([]workplace.Resource, error) {
	var list []workplace.Resource
	q := url.Values{"branch": {string(branch)}}
	if err := g.do(ctx, http.MethodGet, "/workplaces", q, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (g *HTTPGateway) GetMyBookings(ctx context.Context, userID string) ([]booking.Booking, error) {
	var list []booking.Booking
	q := url.Values{"userId": {userID}}
	if err := g.do(ctx, http.MethodGet, "/bookings", q, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (g *HTTPGateway) GetBookingsByResource(ctx context.Context, resourceID string) ([]booking.Booking, error) {
	var list []booking.Booking
	q := url.Values{"workplaceId": {resourceID}}
	if err := g.do(ctx, http.MethodGet, "/bookings/by-place", q, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (g *HTTPGateway) CheckAvailability(ctx context.Context, resourceID, date, startTime, endTime string) (bool, error) {
	q := url.Values{
		"workplaceId": {resourceID},
		"date":        {date},
		"startTime":   {startTime},
		"endTime":     {endTime},
	}

	var body struct {
		Available bool   `json:"available"`
		Error     string `json:"error"`
	}
	if err := g.do(ctx, http.MethodGet, "/bookings/check-availability", q, nil, &body); err != nil {
		return false, err
	}
	if body.Error != "" {
		return false, &BackendError{Status: http.StatusOK, Message: body.Error}
	}
	return body.Available, nil
}

func (g *HTTPGateway) CreateBooking(ctx context.Context, req BookingRequest) (string, error) {
	payload := map[string]string{
		"userId":        req.UserID,
		"workplaceId":   req.ResourceID,
		"workplaceName": req.ResourceName,
		"branch":        string(req.Branch),
		"date":          req.Date,
		"startTime":     req.StartTime,
		"endTime":       req.EndTime,
		"purpose":       req.Purpose,
	}

	var res result
	if err := g.do(ctx, http.MethodPost, "/bookings", nil, payload, &res); err != nil {
		return "", err
	}
	if !res.Success {
		return "", &BackendError{Status: http.StatusOK, Message: orDefault(res.Error, "booking was not created")}
	}
	return res.ID, nil
}

func (g *HTTPGateway) CancelBooking(ctx context.Context, bookingID string) error {
	var res result
	if err := g.do(ctx, http.MethodDelete, "/bookings/"+url.PathEscape(bookingID), nil, nil, &res); err != nil {
		return err
	}
	if !res.Success {
		return &BackendError{Status: http.StatusOK, Message: orDefault(res.Error, "booking was not cancelled")}
	}
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
