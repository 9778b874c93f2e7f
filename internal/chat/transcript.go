package chat

import (
	"sync"
	"time"

	"ShopChat/internal/api"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry in the visible transcript. Messages are never
// mutated after creation.
type Message struct {
	Text      string        `json:"text"`
	Sender    Sender        `json:"sender"`
	Timestamp time.Time     `json:"timestamp"`
	Products  []api.Product `json:"products,omitempty"`
}

// Transcript is the ordered, append-only sequence of chat messages shown to
// the user. Insertion order is display order.
type Transcript struct {
	mu       sync.Mutex
	messages []Message
}

// NewTranscript creates a transcript holding the given opening messages.
func NewTranscript(opening ...Message) *Transcript {
	t := &Transcript{}
	t.messages = append(t.messages, opening...)
	return t
}

// Append adds msg to the end of the transcript.
func (t *Transcript) Append(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// Replace discards the current contents and installs msgs in order.
func (t *Transcript) Replace(msgs []Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append([]Message(nil), msgs...)
}

// Messages returns a snapshot of the transcript in display order.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages in the transcript.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}
