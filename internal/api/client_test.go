package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func newTestClient(baseURL string) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	meter := metricnoop.NewMeterProvider().Meter("test")
	return NewClient(baseURL, logger, tracer, meter)
}

func TestLoginSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","message":"Login successful.","data":{"token":"t1","user_id":42,"username":"alice"}}`))
	}))
	defer srv.Close()

	data, err := newTestClient(srv.URL).Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Token != "t1" {
		t.Errorf("expected token t1, got %q", data.Token)
	}
	if data.UserID.String() != "42" {
		t.Errorf("expected user_id 42, got %q", data.UserID)
	}
	if data.Username != "alice" {
		t.Errorf("expected username alice, got %q", data.Username)
	}
}

func TestLoginMissingTokenIsIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","message":"Login successful.","data":{"user_id":"42","username":"alice"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Login(context.Background(), "alice", "pw")
	var incErr *IncompleteResponseError
	if !errors.As(err, &incErr) {
		t.Fatalf("expected IncompleteResponseError, got %v", err)
	}
	if len(incErr.Missing) != 1 || incErr.Missing[0] != "token" {
		t.Errorf("expected missing=[token], got %v", incErr.Missing)
	}
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","message":"Invalid username or password."}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Login(context.Background(), "alice", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Message != "Invalid username or password." {
		t.Errorf("unexpected message: %q", authErr.Message)
	}
}

func TestLoginNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL).Login(context.Background(), "alice", "pw")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"error","message":"Username already exists."}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Register(context.Background(), "alice", "pw")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Message != "Username already exists." {
		t.Errorf("unexpected message: %q", authErr.Message)
	}
}

func TestChatReturnsProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.UserID != "42" || req.Message != "Show me laptops" {
			t.Errorf("unexpected request body: %+v", req)
		}
		w.Write([]byte(`{"status":"success","message":"Here are some laptops","data":{"products":[{"id":1,"name":"Laptop A","category":"Electronics","price":45000,"stock":3,"description":"..."}]}}`))
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL).Chat(context.Background(), "42", "Show me laptops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Message != "Here are some laptops" {
		t.Errorf("unexpected message: %q", reply.Message)
	}
	if len(reply.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(reply.Products))
	}
	p := reply.Products[0]
	if p.ID.String() != "1" || p.Name != "Laptop A" || p.Price != 45000 {
		t.Errorf("unexpected product: %+v", p)
	}
}

func TestChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"error","message":"Message and user_id are required."}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), "", "")
	var srvErr *ServerError
	if !errors.As(err, &srvErr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if srvErr.Message != "Message and user_id are required." {
		t.Errorf("unexpected message: %q", srvErr.Message)
	}
}

func TestChatMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), "42", "hi")
	if err == nil {
		t.Fatal("expected error for malformed response")
	}
}

func TestAppendHistoryRequestBody(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req historyEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.UserID != "42" || req.Message != "hello" || !req.IsUserMessage {
			t.Errorf("unexpected request body: %+v", req)
		}
		if req.Timestamp != "2025-06-01T12:00:00Z" {
			t.Errorf("unexpected timestamp: %q", req.Timestamp)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"success","message":"Chat entry saved."}`))
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).AppendHistory(context.Background(), "42", "hello", true, ts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHistoryPreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("user_id"); got != "42" {
			t.Errorf("expected user_id=42, got %q", got)
		}
		w.Write([]byte(`{"status":"success","message":"Chat history retrieved.","data":{"history":[
			{"message":"hi","is_user_message":true,"timestamp":"2025-06-01T12:00:00Z"},
			{"message":"hello!","is_user_message":false,"timestamp":"2025-06-01T12:00:01Z"}
		]}}`))
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL).History(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Message != "hi" || !records[0].IsUserMessage {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].Message != "hello!" || records[1].IsUserMessage {
		t.Errorf("unexpected second record: %+v", records[1])
	}
}

func TestProductsQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("search") != "laptop" || q.Get("max_price") != "500" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Write([]byte(`{"status":"success","message":"Products retrieved successfully.","data":[{"id":"p1","name":"Laptop A","category":"Electronics","price":450,"stock":0,"description":"..."}]}`))
	}))
	defer srv.Close()

	products, err := newTestClient(srv.URL).Products(context.Background(), ProductQuery{Search: "laptop", MaxPrice: "500"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].ID.String() != "p1" {
		t.Errorf("unexpected products: %+v", products)
	}
}

func TestFlexStringAcceptsStringAndNumber(t *testing.T) {
	var p Product
	if err := json.Unmarshal([]byte(`{"id":"p1"}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID.String() != "p1" {
		t.Errorf("expected p1, got %q", p.ID)
	}
	if err := json.Unmarshal([]byte(`{"id":7}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID.String() != "7" {
		t.Errorf("expected 7, got %q", p.ID)
	}
}
