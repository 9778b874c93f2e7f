package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ShopChat/internal/api"

	"go.opentelemetry.io/otel/metric"
)

// Canned bot lines, matching what the backend's own demo client shows.
const (
	Greeting          = "Hello! How can I help you find the perfect product today?"
	WelcomeMessage    = "Welcome! Ask me about our products."
	RestoredNotice    = "Your previous session was restored."
	FreshStartMessage = "Could not load previous chat. Starting fresh!"
	ResetGreeting     = "Chat reset. How can I help you?"

	resetHistoryEntry = "Chat was reset by user."
	genericErrorReply = "Error processing your request."
	networkErrorReply = "Network error or server unavailable."
)

// Relay exchanges messages with the assistant endpoint on behalf of one
// logged-in user and maintains the local transcript. History persistence is
// best-effort: each turn is written to the backend history log from a
// detached goroutine whose failure is logged, never surfaced.
type Relay struct {
	api        *api.Client
	logger     *slog.Logger
	meter      metric.Meter
	transcript *Transcript
	userID     string

	mu     sync.Mutex
	banner string

	wg sync.WaitGroup
}

// NewRelay creates a relay for the given user with a transcript holding the
// standard greeting.
func NewRelay(apiClient *api.Client, logger *slog.Logger, meter metric.Meter, userID string) *Relay {
	return &Relay{
		api:        apiClient,
		logger:     logger,
		meter:      meter,
		transcript: NewTranscript(botMessage(Greeting)),
		userID:     userID,
	}
}

// Transcript returns the relay's transcript.
func (r *Relay) Transcript() *Transcript {
	return r.transcript
}

// Send relays one user message to the assistant. The user message is
// appended optimistically before the request goes out; the returned message
// is the bot entry appended for this turn, or nil when text was empty after
// trimming. Failures never propagate as errors: the transcript gets a
// fallback bot message and a transient banner is set for the UI.
func (r *Relay) Send(ctx context.Context, text string) *Message {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	userMsg := Message{Text: text, Sender: SenderUser, Timestamp: time.Now()}
	r.transcript.Append(userMsg)
	r.persistAsync(text, true, userMsg.Timestamp)

	r.count(ctx, "chat.messages.sent", 1)

	reply, err := r.api.Chat(ctx, r.userID, text)
	if err != nil {
		fallback := genericErrorReply
		var srvErr *api.ServerError
		var netErr *api.NetworkError
		switch {
		case errors.As(err, &srvErr) && srvErr.Message != "":
			fallback = srvErr.Message
		case errors.As(err, &netErr):
			fallback = networkErrorReply
		}

		r.logger.Error("assistant request failed", "error", err)

		botMsg := botMessage(fallback)
		r.transcript.Append(botMsg)
		r.persistAsync(fallback, false, botMsg.Timestamp)
		r.setBanner(fallback)
		return &botMsg
	}

	botMsg := Message{
		Text:      reply.Message,
		Sender:    SenderBot,
		Timestamp: time.Now(),
		Products:  reply.Products,
	}
	r.transcript.Append(botMsg)
	r.persistAsync(reply.Message, false, botMsg.Timestamp)

	if n := len(reply.Products); n > 0 {
		r.count(ctx, "chat.products.returned", int64(n))
	}

	return &botMsg
}

// Reset clears the transcript back to a single reset greeting and drops any
// pending banner. Server-side history is kept; a synthetic entry recording
// the reset is persisted best-effort.
func (r *Relay) Reset() {
	now := time.Now()
	r.transcript.Replace([]Message{{Text: ResetGreeting, Sender: SenderBot, Timestamp: now}})

	r.mu.Lock()
	r.banner = ""
	r.mu.Unlock()

	r.persistAsync(resetHistoryEntry, false, now)
}

// TakeBanner returns the pending transient error banner and clears it.
// The banner is UI-only state; it never appears in the transcript.
func (r *Relay) TakeBanner() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.banner
	r.banner = ""
	return b
}

// Flush waits for in-flight history writes, for orderly shutdown.
func (r *Relay) Flush() {
	r.wg.Wait()
}

func (r *Relay) setBanner(text string) {
	r.mu.Lock()
	r.banner = text
	r.mu.Unlock()
}

func (r *Relay) persistAsync(text string, isUserMessage bool, timestamp time.Time) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.api.AppendHistory(context.Background(), r.userID, text, isUserMessage, timestamp); err != nil {
			r.logger.Warn("failed to persist chat message", "error", err)
		}
	}()
}

func (r *Relay) count(ctx context.Context, name string, n int64) {
	counter, err := r.meter.Int64Counter(name)
	if err != nil {
		r.logger.Warn("failed to create counter", "name", name, "error", err)
		return
	}
	counter.Add(ctx, n)
}

func botMessage(text string) Message {
	return Message{Text: text, Sender: SenderBot, Timestamp: time.Now()}
}
