package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/lvonguyen/sentinel-console/internal/api"
	"github.com/lvonguyen/sentinel-console/internal/faq"
)

// fakeChatClient implements chatClient and records the history it receives.
type fakeChatClient struct {
	response    string
	err         error
	block       chan struct{} // when set, Chat waits until it is closed
	lastHistory []api.ChatMessage

	analysis   api.AIAnalysis
	analyzeErr error
}

func (f *fakeChatClient) Chat(ctx context.Context, messages []api.ChatMessage, chatContext string) (api.ChatResponse, error) {
	f.lastHistory = messages
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return api.ChatResponse{}, f.err
	}
	return api.ChatResponse{Response: f.response}, nil
}

func (f *fakeChatClient) AnalyzeIOC(ctx context.Context, iocID string) (api.AIAnalysis, error) {
	if f.analyzeErr != nil {
		return api.AIAnalysis{}, f.analyzeErr
	}
	return f.analysis, nil
}

// =============================================================================
// Send Flow Tests
// =============================================================================

// TestSend_BackendReply verifies the happy path: user turn appended, full
// history sent, assistant reply recorded.
func TestSend_BackendReply(t *testing.T) {
	client := &fakeChatClient{response: "Here is an assessment."}
	conv := NewConversation(client, zaptest.NewLogger(t))

	reply, err := conv.Send(context.Background(), "what is a c2 server?")
	if err != nil {
		t.Fatalf("Send should succeed: %v", err)
	}

	if reply.Role != "assistant" || reply.Content != "Here is an assessment." {
		t.Errorf("unexpected reply %+v", reply)
	}
	if reply.Fallback {
		t.Error("backend reply must not be marked as fallback")
	}

	messages := conv.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(messages))
	}
	if messages[0].Role != "user" || messages[0].Content != "what is a c2 server?" {
		t.Errorf("first turn should be the user question, got %+v", messages[0])
	}
	if messages[0].ID == "" || messages[1].ID == "" || messages[0].ID == messages[1].ID {
		t.Error("turns should carry distinct IDs")
	}
}

// TestSend_HistoryGrows verifies each send carries the whole conversation
// to the backend.
func TestSend_HistoryGrows(t *testing.T) {
	client := &fakeChatClient{response: "ok"}
	conv := NewConversation(client, zaptest.NewLogger(t))

	conv.Send(context.Background(), "first")
	conv.Send(context.Background(), "second")

	// History at the second send: first question, first reply, second question.
	if len(client.lastHistory) != 3 {
		t.Fatalf("expected 3-turn history, got %d", len(client.lastHistory))
	}
	if client.lastHistory[2].Content != "second" {
		t.Errorf("latest question should be last, got %q", client.lastHistory[2].Content)
	}
}

// TestSend_FallbackOnError verifies a backend failure yields exactly the
// FAQ answer for the question, flagged as fallback.
func TestSend_FallbackOnError(t *testing.T) {
	client := &fakeChatClient{err: errors.New("inference backend down")}
	conv := NewConversation(client, zaptest.NewLogger(t))

	question := "explain threat scoring"
	reply, err := conv.Send(context.Background(), question)
	if err != nil {
		t.Fatalf("Send should succeed: %v", err)
	}

	if !reply.Fallback {
		t.Error("offline reply should be flagged as fallback")
	}
	if reply.Content != faq.Match(question) {
		t.Error("offline reply should be the FAQ answer for the question")
	}

	// The fallback turn still lands in history like any other reply.
	messages := conv.Messages()
	if len(messages) != 2 || !messages[1].Fallback {
		t.Errorf("fallback turn should be recorded, got %d messages", len(messages))
	}
}

// TestSend_FallbackUnmatchedQuestion verifies unmatched questions get the
// default topic listing when offline.
func TestSend_FallbackUnmatchedQuestion(t *testing.T) {
	client := &fakeChatClient{err: errors.New("down")}
	conv := NewConversation(client, zaptest.NewLogger(t))

	reply, err := conv.Send(context.Background(), "qwerty asdf")
	if err != nil {
		t.Fatalf("Send should succeed: %v", err)
	}

	if reply.Content != faq.DefaultAnswer() {
		t.Error("unmatched offline question should get the default answer")
	}
}

// TestSend_RejectsWhileBusy verifies a send that arrives while a reply is
// pending is refused instead of interleaving the history.
func TestSend_RejectsWhileBusy(t *testing.T) {
	client := &fakeChatClient{response: "ok", block: make(chan struct{})}
	conv := NewConversation(client, zaptest.NewLogger(t))

	done := make(chan struct{})
	go func() {
		defer close(done)
		conv.Send(context.Background(), "first")
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !conv.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("conversation never became busy")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := conv.Send(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("overlapping send should fail with ErrBusy, got %v", err)
	}

	close(client.block)
	<-done

	messages := conv.Messages()
	if len(messages) != 2 {
		t.Fatalf("rejected send must not touch history, got %d turns", len(messages))
	}
	if conv.Busy() {
		t.Error("conversation should be idle after the reply lands")
	}
}

// =============================================================================
// Housekeeping Tests
// =============================================================================

// TestClear verifies the history resets.
func TestClear(t *testing.T) {
	conv := NewConversation(&fakeChatClient{response: "ok"}, zaptest.NewLogger(t))

	conv.Send(context.Background(), "hello")
	conv.Clear()

	if len(conv.Messages()) != 0 {
		t.Error("Clear should discard the history")
	}
	if conv.Busy() {
		t.Error("cleared conversation should not be busy")
	}
}

// TestMessages_ReturnsCopy verifies callers cannot mutate the history.
func TestMessages_ReturnsCopy(t *testing.T) {
	conv := NewConversation(&fakeChatClient{response: "ok"}, zaptest.NewLogger(t))
	conv.Send(context.Background(), "hello")

	conv.Messages()[0].Content = "tampered"

	if conv.Messages()[0].Content != "hello" {
		t.Error("Messages must return a copy")
	}
}

// TestAnalyzeIOC_NoFallback verifies IOC analysis surfaces errors instead
// of answering from the FAQ.
func TestAnalyzeIOC_NoFallback(t *testing.T) {
	client := &fakeChatClient{analyzeErr: errors.New("down")}
	conv := NewConversation(client, zaptest.NewLogger(t))

	if _, err := conv.AnalyzeIOC(context.Background(), "i1"); err == nil {
		t.Error("AnalyzeIOC should surface backend errors")
	}

	client.analyzeErr = nil
	client.analysis = api.AIAnalysis{Analysis: "benign"}
	analysis, err := conv.AnalyzeIOC(context.Background(), "i1")
	if err != nil {
		t.Fatalf("AnalyzeIOC should succeed: %v", err)
	}
	if analysis.Analysis != "benign" {
		t.Errorf("unexpected analysis %+v", analysis)
	}
}
