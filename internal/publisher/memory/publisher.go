// Package memory holds an in-memory publisher for tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Publisher records events in the same JSON wire form the Pub/Sub
// publisher would send, so tests can assert on what actually goes out.
type Publisher struct {
	mu       sync.RWMutex
	messages []Message
}

// Message captures one publish call.
type Message struct {
	Topic string
	Data  []byte
}

// Decode unmarshals the recorded wire payload.
func (m Message) Decode(out any) error {
	return json.Unmarshal(m.Data, out)
}

// New returns an empty memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish marshals the payload, records it, and returns a pseudo ID.
// Unmarshalable payloads fail the same way the real publisher does.
func (p *Publisher) Publish(_ context.Context, topic string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, Message{Topic: topic, Data: data})
	return fmt.Sprintf("memory-%d", len(p.messages)), nil
}

// Messages returns a copy of the recorded publishes.
func (p *Publisher) Messages() []Message {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Message, len(p.messages))
	copy(out, p.messages)
	return out
}
