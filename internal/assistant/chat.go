// Package assistant implements the AI chat surface. The primary path is
// the platform's inference endpoint; when that call fails for any reason
// the reply comes from the deterministic built-in FAQ, so the assistant
// always answers something.
package assistant

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lvonguyen/sentinel-console/internal/api"
	"github.com/lvonguyen/sentinel-console/internal/faq"
	"github.com/lvonguyen/sentinel-console/internal/metrics"
)

// ErrBusy is returned when a send arrives while an earlier reply is
// still pending.
var ErrBusy = errors.New("a reply is already pending")

// chatClient is the slice of the API client the assistant uses.
type chatClient interface {
	Chat(ctx context.Context, messages []api.ChatMessage, chatContext string) (api.ChatResponse, error)
	AnalyzeIOC(ctx context.Context, iocID string) (api.AIAnalysis, error)
}

// Message is one rendered chat turn.
type Message struct {
	ID       string `json:"id"`
	Role     string `json:"role"` // user | assistant
	Content  string `json:"content"`
	Fallback bool   `json:"fallback,omitempty"` // answered by the offline FAQ
}

// QuickPrompt is a suggested starter question.
type QuickPrompt struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// QuickPrompts are the starter suggestions shown on an empty conversation.
var QuickPrompts = []QuickPrompt{
	{Label: "Today's Threats", Prompt: "Summarize the most common cyber threats seen today and provide actionable advice for SOC analysts."},
	{Label: "Top Critical IOCs", Prompt: "What are the most dangerous types of IOCs a SOC team should prioritize, and how should they be triaged?"},
	{Label: "Threat Landscape", Prompt: "Provide an overview of the current cyber threat landscape including active threat actors, common TTPs, and emerging attack vectors."},
	{Label: "Incident Response", Prompt: "Walk me through the key steps of incident response when a critical IOC is detected in our environment."},
}

// Conversation holds chat history and drives the send flow.
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
	busy     bool

	client chatClient
	logger *zap.Logger
}

// NewConversation creates an empty conversation.
func NewConversation(client chatClient, logger *zap.Logger) *Conversation {
	return &Conversation{client: client, logger: logger}
}

// Send appends the user's question and obtains a reply. The full history
// is sent to the inference endpoint; on any failure the assistant's reply
// is exactly the FAQ answer for the question. A send that arrives while a
// reply is still pending is rejected with ErrBusy so overlapping turns
// cannot interleave the history.
func (c *Conversation) Send(ctx context.Context, content string) (Message, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Message{}, ErrBusy
	}
	c.busy = true
	c.messages = append(c.messages, Message{
		ID:      uuid.NewString(),
		Role:    "user",
		Content: content,
	})
	history := make([]api.ChatMessage, len(c.messages))
	for i, m := range c.messages {
		history[i] = api.ChatMessage{Role: m.Role, Content: m.Content}
	}
	c.mu.Unlock()

	reply := Message{ID: uuid.NewString(), Role: "assistant"}

	resp, err := c.client.Chat(ctx, history, "")
	if err != nil {
		c.logger.Debug("chat backend unavailable, serving FAQ answer", zap.Error(err))
		metrics.FAQFallbacks.Inc()
		reply.Content = faq.Match(content)
		reply.Fallback = true
	} else {
		reply.Content = resp.Response
	}

	c.mu.Lock()
	c.messages = append(c.messages, reply)
	c.busy = false
	c.mu.Unlock()
	return reply, nil
}

// Messages returns a copy of the conversation history.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Busy reports whether a reply is pending.
func (c *Conversation) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.busy
}

// Clear discards the history.
func (c *Conversation) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}

// AnalyzeIOC runs the per-IOC AI assessment. Unlike chat there is no
// fallback; the caller degrades to the plain detail view on error.
func (c *Conversation) AnalyzeIOC(ctx context.Context, iocID string) (api.AIAnalysis, error) {
	return c.client.AnalyzeIOC(ctx, iocID)
}
