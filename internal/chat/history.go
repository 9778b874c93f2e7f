package chat

import (
	"context"
	"time"

	"ShopChat/internal/api"
)

// RestoreHistory rebuilds the transcript from the backend's stored history.
// A failed or malformed load is never fatal: the transcript falls back to a
// single fresh-start greeting and the error is logged. An empty history
// yields a single welcome message; otherwise each record is mapped in order
// and a restore notice is appended.
func (r *Relay) RestoreHistory(ctx context.Context) {
	records, err := r.api.History(ctx, r.userID)
	if err != nil {
		r.logger.Warn("failed to load chat history", "error", err)
		r.transcript.Replace([]Message{botMessage(FreshStartMessage)})
		return
	}

	if len(records) == 0 {
		r.transcript.Replace([]Message{botMessage(WelcomeMessage)})
		return
	}

	msgs := make([]Message, 0, len(records)+1)
	for _, rec := range records {
		msgs = append(msgs, messageFromRecord(rec))
	}
	msgs = append(msgs, botMessage(RestoredNotice))
	r.transcript.Replace(msgs)

	r.logger.Info("restored chat history", "user_id", r.userID, "messages", len(records))
}

// messageFromRecord maps one server history record onto a transcript entry.
func messageFromRecord(rec api.HistoryRecord) Message {
	sender := SenderBot
	if rec.IsUserMessage {
		sender = SenderUser
	}
	return Message{
		Text:      rec.Message,
		Sender:    sender,
		Timestamp: parseTimestamp(rec.Timestamp),
	}
}

// parseTimestamp accepts the RFC 3339 timestamps the client writes as well
// as the bare DATETIME format SQLite produces for server-generated rows.
func parseTimestamp(s string) time.Time {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return ts
	}
	return time.Now()
}
