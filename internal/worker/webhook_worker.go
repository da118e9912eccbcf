package worker

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/events"
)

const (
	queueSize      = 64
	deliverTimeout = 5 * time.Second
)

// WebhookWorker forwards lifecycle events to an external webhook as JSON.
// Delivery is asynchronous and lossy: when the queue is full the event is
// dropped with a warning rather than blocking the interaction path.
type WebhookWorker struct {
	url    string
	logger *zap.Logger
	queue  chan events.Event
	done   chan struct{}
	wg     sync.WaitGroup
	client *fasthttp.Client
}

// StartWebhookWorker subscribes to all lifecycle events and starts the
// delivery loop. Returns nil when no webhook URL is configured.
func StartWebhookWorker(dispatcher events.Dispatcher, cfg config.NotificationConfig, logger *zap.Logger) *WebhookWorker {
	url := strings.TrimSpace(cfg.WebhookURL)
	if url == "" || dispatcher == nil {
		return nil
	}

	w := &WebhookWorker{
		url:    url,
		logger: logger,
		queue:  make(chan events.Event, queueSize),
		done:   make(chan struct{}),
		client: &fasthttp.Client{},
	}

	for _, t := range []events.EventType{
		events.EventTicketOpened,
		events.EventDuplicateBlocked,
		events.EventCloseRequested,
		events.EventCloseCancelled,
		events.EventTicketArchived,
		events.EventMemberAdded,
		events.EventMemberRemoved,
		events.EventTranscriptGenerated,
	} {
		dispatcher.Subscribe(t, w.enqueue)
	}

	w.wg.Add(1)
	go w.run()
	return w
}

func (w *WebhookWorker) enqueue(ctx context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("webhook queue full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (w *WebhookWorker) run() {
	defer w.wg.Done()
	for {
		select {
		case event := <-w.queue:
			w.deliver(event)
		case <-w.done:
			// Flush whatever is already queued.
			for {
				select {
				case event := <-w.queue:
					w.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (w *WebhookWorker) deliver(event events.Event) {
	body, err := json.Marshal(event)
	if err != nil {
		w.logger.Error("unable to encode webhook event", zap.Error(err))
		return
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(w.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := w.client.DoTimeout(req, resp, deliverTimeout); err != nil {
		w.logger.Warn("webhook delivery failed",
			zap.String("event_id", event.ID),
			zap.Error(err))
		return
	}
	if code := resp.StatusCode(); code >= 300 {
		w.logger.Warn("webhook delivery rejected",
			zap.String("event_id", event.ID),
			zap.Int("status", code))
	}
}

// Stop drains the queue and terminates the delivery loop.
func (w *WebhookWorker) Stop() {
	if w == nil {
		return
	}
	close(w.done)
	w.wg.Wait()
}
