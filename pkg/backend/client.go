package backend

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client talks to the remote REST backend for auth and orders.
type Client interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
	CreateOrder(ctx context.Context, token string, sub models.OrderSubmission) (*models.Order, error)
	ListOrders(ctx context.Context, token string, userID models.ID) ([]models.Order, error)
	GetOrder(ctx context.Context, token string, orderID string) (*models.Order, error)
	// Subscribe registers fn for every 401 answered to a call that carried a
	// token. The returned func removes the subscription.
	Subscribe(fn func(models.UnauthorizedEvent)) (unsubscribe func())
	HealthURL() string
}

// CallObserver is told the outcome of every backend call.
type CallObserver func(operation, outcome string)

type Option func(*httpClient)

func WithHTTPClient(client *http.Client) Option {
	return func(c *httpClient) { c.http = client }
}

func WithCallObserver(observer CallObserver) Option {
	return func(c *httpClient) { c.observe = observer }
}

type result struct {
	status int
	body   []byte
}

type httpClient struct {
	baseURL    string
	healthPath string
	http       *http.Client
	breaker    *gobreaker.CircuitBreaker[result]
	observe    CallObserver

	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func(models.UnauthorizedEvent)
}

func NewClient(cfg *config.Backend, opts ...Option) Client {
	c := &httpClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		healthPath: cfg.HealthPath,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		observe:     func(string, string) {},
		subscribers: make(map[int]func(models.UnauthorizedEvent)),
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	c.breaker = gobreaker.NewCircuitBreaker[result](gobreaker.Settings{
		Name:    "backend",
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *httpClient) Subscribe(fn func(models.UnauthorizedEvent)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

func (c *httpClient) emitUnauthorized(event models.UnauthorizedEvent) {
	c.mu.RLock()
	subscribers := make([]func(models.UnauthorizedEvent), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subscribers = append(subscribers, fn)
	}
	c.mu.RUnlock()

	for _, fn := range subscribers {
		fn(event)
	}
}

func (c *httpClient) HealthURL() string {
	return c.baseURL + c.healthPath
}

func (c *httpClient) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *httpClient) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, "signup", http.MethodPost, "/auth/signup", "", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *httpClient) CreateOrder(ctx context.Context, token string, sub models.OrderSubmission) (*models.Order, error) {
	var resp orderWire
	if err := c.do(ctx, "create_order", http.MethodPost, "/orders", token, toCreateOrderWire(sub), &resp); err != nil {
		return nil, err
	}

	order := resp.toModel()
	if order.ID == "" {
		return nil, errors.NetworkError("Order service returned no order id")
	}

	return &order, nil
}

func (c *httpClient) ListOrders(ctx context.Context, token string, userID models.ID) ([]models.Order, error) {
	path := "/orders?userId=" + url.QueryEscape(userID.String())

	var resp []orderWire
	if err := c.do(ctx, "list_orders", http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}

	orders := make([]models.Order, len(resp))
	for i, o := range resp {
		orders[i] = o.toModel()
	}

	return orders, nil
}

func (c *httpClient) GetOrder(ctx context.Context, token string, orderID string) (*models.Order, error) {
	var resp orderWire
	if err := c.do(ctx, "get_order", http.MethodGet, "/orders/"+url.PathEscape(orderID), token, nil, &resp); err != nil {
		return nil, err
	}

	order := resp.toModel()

	return &order, nil
}

func (c *httpClient) do(ctx context.Context, operation, method, path, token string, body, dest any) error {
	var payload []byte

	if body != nil {
		var err error

		payload, err = json.Marshal(body)
		if err != nil {
			return errors.InternalError("Failed to encode backend request").WithError(err)
		}
	}

	res, err := c.breaker.Execute(func() (result, error) {
		return c.roundTrip(ctx, method, path, token, payload)
	})
	if err != nil {
		c.observe(operation, "network_error")

		if stdErrors.Is(err, gobreaker.ErrOpenState) || stdErrors.Is(err, gobreaker.ErrTooManyRequests) {
			return errors.NetworkError("Service temporarily unavailable, please retry").WithError(err)
		}

		return errors.NetworkError("Could not reach the service, please retry").WithError(err)
	}

	if res.status >= 200 && res.status < 300 {
		c.observe(operation, "success")

		if dest == nil || len(bytes.TrimSpace(res.body)) == 0 {
			return nil
		}

		if err := json.Unmarshal(res.body, dest); err != nil {
			return errors.NetworkError("Unexpected response from the service").WithError(err)
		}

		return nil
	}

	c.observe(operation, fmt.Sprintf("status_%d", res.status))

	appErr := mapStatus(res.status, errorMessage(res.body))

	if res.status == http.StatusUnauthorized && token != "" {
		c.emitUnauthorized(models.UnauthorizedEvent{Token: token, Path: path})
	}

	return appErr
}

// roundTrip reports transport failures and 5xx answers as errors so that the
// breaker only counts backend faults.
func (c *httpClient) roundTrip(ctx context.Context, method, path, token string, payload []byte) (result, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return result{}, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return result{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{}, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return result{}, fmt.Errorf("%s %s: backend answered %d: %s", method, path, resp.StatusCode, errorMessage(body))
	}

	return result{status: resp.StatusCode, body: body}, nil
}

func errorMessage(body []byte) string {
	var wire errorWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return ""
	}

	return strings.TrimSpace(wire.Message)
}

func mapStatus(status int, message string) *errors.AppError {
	orDefault := func(fallback string) string {
		if message != "" {
			return message
		}

		return fallback
	}

	switch status {
	case http.StatusUnauthorized:
		return errors.UnauthorizedError(orDefault("Your session has expired, please sign in again"))
	case http.StatusForbidden:
		return errors.ForbiddenError(orDefault("You are not allowed to do that"))
	case http.StatusNotFound:
		return errors.NotFoundError(orDefault("Not found"))
	case http.StatusConflict:
		return errors.ConflictError(orDefault("The request conflicts with the current state"))
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return errors.ValidationError(orDefault("The request was rejected"))
	case http.StatusTooManyRequests:
		return errors.TooManyRequestsError(orDefault("Too many requests, please slow down"))
	default:
		return errors.BadRequestError(orDefault(fmt.Sprintf("Request failed with status %d", status)))
	}
}
