package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Client talks to the chatbot backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, logger *slog.Logger, tracer trace.Tracer, meter metric.Meter) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
		tracer:     tracer,
		meter:      meter,
	}
}

// Register creates a new account. A nil return means the account exists and
// the user should log in; it does not log the user in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	env, code, err := c.do(ctx, "register_api_call", http.MethodPost, "/register", nil,
		registerRequest{Username: username, Password: password})
	if err != nil {
		return err
	}

	if code >= 400 || env.Status != StatusSuccess {
		return &AuthError{Message: env.Message}
	}

	c.logger.Info("registered user", "username", username)
	return nil
}

// Login exchanges credentials for a session token. An HTTP success whose
// body lacks token, user id or username is an IncompleteResponseError,
// never a login.
func (c *Client) Login(ctx context.Context, username, password string) (LoginData, error) {
	env, code, err := c.do(ctx, "login_api_call", http.MethodPost, "/login", nil,
		registerRequest{Username: username, Password: password})
	if err != nil {
		return LoginData{}, err
	}

	if code >= 400 || env.Status != StatusSuccess {
		return LoginData{}, &AuthError{Message: env.Message}
	}

	var data LoginData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return LoginData{}, fmt.Errorf("failed to unmarshal login data: %w", err)
		}
	}

	var missing []string
	if data.Token == "" {
		missing = append(missing, "token")
	}
	if data.UserID == "" {
		missing = append(missing, "user_id")
	}
	if data.Username == "" {
		missing = append(missing, "username")
	}
	if len(missing) > 0 {
		return LoginData{}, &IncompleteResponseError{Missing: missing}
	}

	c.logger.Info("logged in", "username", data.Username, "user_id", data.UserID.String())
	return data, nil
}

// Chat sends one user message to the assistant and returns its reply plus
// any product matches.
func (c *Client) Chat(ctx context.Context, userID, message string) (ChatReply, error) {
	env, code, err := c.do(ctx, "chat_api_call", http.MethodPost, "/chat", nil,
		chatRequest{UserID: userID, Message: message})
	if err != nil {
		return ChatReply{}, err
	}

	if code >= 400 || env.Status != StatusSuccess {
		return ChatReply{}, &ServerError{Message: env.Message}
	}

	var data ChatData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return ChatReply{}, fmt.Errorf("failed to unmarshal chat data: %w", err)
		}
	}

	return ChatReply{Message: env.Message, Products: data.Products}, nil
}

// AppendHistory persists one conversation turn to the backend history log.
// Callers treat failures as best-effort and only log them.
func (c *Client) AppendHistory(ctx context.Context, userID, message string, isUserMessage bool, timestamp time.Time) error {
	env, code, err := c.do(ctx, "history_save_api_call", http.MethodPost, "/chat/history", nil,
		historyEntryRequest{
			UserID:        userID,
			Message:       message,
			IsUserMessage: isUserMessage,
			Timestamp:     timestamp.UTC().Format(time.RFC3339),
		})
	if err != nil {
		return err
	}

	if code >= 400 || env.Status != StatusSuccess {
		return &ServerError{Message: env.Message}
	}

	return nil
}

// History fetches the stored conversation turns for a user, oldest first.
func (c *Client) History(ctx context.Context, userID string) ([]HistoryRecord, error) {
	env, code, err := c.do(ctx, "history_load_api_call", http.MethodGet, "/chat/history",
		map[string]string{"user_id": userID}, nil)
	if err != nil {
		return nil, err
	}

	if code >= 400 || env.Status != StatusSuccess {
		return nil, &ServerError{Message: env.Message}
	}

	var data historyData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history data: %w", err)
		}
	}

	return data.History, nil
}

// Products queries the catalog directly, bypassing the assistant.
func (c *Client) Products(ctx context.Context, q ProductQuery) ([]Product, error) {
	env, code, err := c.do(ctx, "products_api_call", http.MethodGet, "/products", q.values(), nil)
	if err != nil {
		return nil, err
	}

	if code >= 400 || env.Status != StatusSuccess {
		return nil, &ServerError{Message: env.Message}
	}

	var data productsData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal products data: %w", err)
		}
	}

	return data, nil
}

// do issues one request and decodes the backend's response envelope.
// Transport-level failures come back as *NetworkError; HTTP status and
// envelope status are returned for the caller to classify.
func (c *Client) do(ctx context.Context, span, method, path string, query map[string]string, payload interface{}) (*Envelope, int, error) {
	ctx, sp := c.tracer.Start(ctx, span)
	defer sp.End()

	start := time.Now()

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		reqURL += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &NetworkError{Err: err}
	}

	duration := time.Since(start)
	histogram, err := c.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		histogram.Record(ctx, float64(duration.Milliseconds()))
	}

	var env Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("malformed response (%s): %w", resp.Status, err)
	}

	c.logger.Debug("backend call", "path", path, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())
	return &env, resp.StatusCode, nil
}
