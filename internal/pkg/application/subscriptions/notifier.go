package subscriptions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/diwise/item-drive/pkg/drive/items"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

type Notifier interface {
	Start() error
	Stop() error

	ItemCreated(ctx context.Context, item items.Item)
}

var tracer = otel.Tracer("item-drive/notifier")

type action func()

type notifier struct {
	mu       sync.Mutex
	started  bool
	endpoint string

	queue chan action
}

func NewNotifier(ctx context.Context, endpoint string) (Notifier, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("a notifier endpoint is required")
	}

	return &notifier{
		endpoint: endpoint,
		queue:    make(chan action, 32),
	}, nil
}

func (n *notifier) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.started {
		return fmt.Errorf("already started")
	}

	n.started = true

	go n.run()

	return nil
}

func (n *notifier) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.started {
		resultChan := make(chan bool)

		n.queue <- func() {
			// close the queue to signal the consumer that we are going out of business
			close(n.queue)
			resultChan <- true
		}

		// blocking read until our action has been processed
		<-resultChan
		n.started = false
	}
	return nil
}

// ItemCreated queues a notification about item. Calls made while the notifier is
// stopped are dropped.
func (n *notifier) ItemCreated(ctx context.Context, item items.Item) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.started {
		return
	}

	var err error

	logger := logging.GetFromContext(ctx)

	ctx, span := tracer.Start(
		tracing.ExtractHeaders(context.Background(), tracing.InjectHeaders(ctx)),
		"post",
	)

	n.queue <- func() {
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = postNotification(ctx, NewNotification(item, time.Now().UTC()), n.endpoint)
		if err != nil {
			logger.Error("failed to post notification", "item_id", item.ItemID, "err", err.Error())
		}
	}
}

type Notification struct {
	ID         string       `json:"id"`
	Type       string       `json:"type"`
	NotifiedAt string       `json:"notifiedAt"`
	Data       []items.Item `json:"data"`
}

func NewNotification(item items.Item, now time.Time) Notification {
	return Notification{
		ID:         fmt.Sprintf("urn:item-drive:Notification:%s", uuid.NewString()),
		Type:       "Notification",
		NotifiedAt: now.Format(time.RFC3339),
		Data:       []items.Item{item},
	}
}

func postNotification(ctx context.Context, notification Notification, endpoint string) error {
	body, err := json.MarshalIndent(notification, "", " ")
	if err != nil {
		return fmt.Errorf("marshalling error (%w)", err)
	}

	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("unable to create new request (%w)", err)
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request (%w)", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("notification endpoint responded with status code %d", resp.StatusCode)
	}

	return nil
}

func (n *notifier) run() {
	// repeat until the queue is closed
	for action := range n.queue {
		if action == nil {
			return
		}

		action()
	}
}
