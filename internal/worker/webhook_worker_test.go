package worker_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/worker"
)

func TestWebhookWorkerDeliversEvents(t *testing.T) {
	var mu sync.Mutex
	var received []events.Event

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var e events.Event
		if err := json.Unmarshal(body, &e); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	dispatcher := events.NewInMemoryDispatcher()
	w := worker.StartWebhookWorker(dispatcher, config.NotificationConfig{WebhookURL: srv.URL}, zap.NewNop())
	if w == nil {
		t.Fatalf("worker not started")
	}

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventTicketOpened,
		GuildID:   "900",
		ChannelID: "4000",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	w.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("event not delivered, got %d", n)
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if received[0].Type != events.EventTicketOpened || received[0].ChannelID != "4000" {
		t.Fatalf("unexpected event: %+v", received[0])
	}
}

func TestWebhookWorkerDisabledWithoutURL(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	if w := worker.StartWebhookWorker(dispatcher, config.NotificationConfig{}, zap.NewNop()); w != nil {
		t.Fatalf("worker started without a webhook URL")
	}
}
