// Package webhook delivers domain events to configured HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/frops/planner/pkg/domain/events"
)

// Delivery defaults used when an endpoint leaves them unset.
const (
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = time.Second
	DefaultAttemptTimeout = 10 * time.Second
)

// Header names set on every delivery.
const (
	HeaderSignature = "X-Planner-Signature"
	HeaderEvent     = "X-Planner-Event"
)

// Notifier sends outgoing webhook notifications for domain events.
type Notifier struct {
	endpoints      []events.WebhookEndpoint
	client         *http.Client
	deadLetters    *DeadLetterStore
	logger         *slog.Logger
	attemptTimeout time.Duration
	wg             sync.WaitGroup
}

// NewNotifier creates a notifier. deadLetters may be nil, in which case
// failed deliveries are only logged.
func NewNotifier(endpoints []events.WebhookEndpoint, deadLetters *DeadLetterStore, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		endpoints:      endpoints,
		client:         &http.Client{},
		deadLetters:    deadLetters,
		logger:         logger.With("component", "webhook"),
		attemptTimeout: DefaultAttemptTimeout,
	}
}

// Payload is the JSON body sent to webhook endpoints.
type Payload struct {
	EventType string        `json:"event_type"`
	Timestamp time.Time     `json:"timestamp"`
	Event     *events.Event `json:"event"`
}

// Subscribe forwards every event published on publisher.
func (n *Notifier) Subscribe(publisher events.Publisher) {
	publisher.Subscribe(func(e *events.Event) error {
		n.Notify(context.Background(), e)
		return nil
	})
}

// Notify delivers event to every enabled endpoint that accepts its type.
// Deliveries run in the background; Wait blocks until they finish.
func (n *Notifier) Notify(ctx context.Context, event *events.Event) {
	body, err := json.Marshal(Payload{
		EventType: event.Type,
		Timestamp: event.Timestamp,
		Event:     event,
	})
	if err != nil {
		n.logger.Error("failed to marshal webhook payload", "type", event.Type, "error", err)
		return
	}

	for _, ep := range n.endpoints {
		if !ep.Enabled || !ep.Accepts(event.Type) {
			continue
		}
		n.wg.Add(1)
		go func(ep events.WebhookEndpoint) {
			defer n.wg.Done()
			n.deliver(ctx, ep, event.Type, body)
		}(ep)
	}
}

// Wait blocks until all in-flight deliveries have completed.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) deliver(ctx context.Context, ep events.WebhookEndpoint, eventType string, body []byte) {
	attempts, err := n.attempt(ctx, ep, eventType, body)
	if err == nil {
		n.logger.Debug("webhook delivered", "webhook", ep.Name, "type", eventType)
		return
	}

	n.logger.Warn("webhook delivery failed", "webhook", ep.Name, "type", eventType, "attempts", attempts, "error", err)
	if n.deadLetters == nil {
		return
	}
	dl := events.DeadLetter{
		Timestamp:   time.Now().UTC(),
		WebhookName: ep.Name,
		URL:         ep.URL,
		EventType:   eventType,
		Payload:     string(body),
		Error:       err.Error(),
		Attempts:    attempts,
	}
	if err := n.deadLetters.Append(dl); err != nil {
		n.logger.Error("failed to record dead letter", "webhook", ep.Name, "error", err)
	}
}

// attempt sends body with the endpoint's retry policy and reports how many
// attempts the policy allowed.
func (n *Notifier) attempt(ctx context.Context, ep events.WebhookEndpoint, eventType string, body []byte) (int, error) {
	maxRetries := ep.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	retryDelay := ep.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	r := retry.New[struct{}](retry.Config{
		MaxAttempts:   maxRetries,
		InitialDelay:  retryDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[struct{}](timeout.Config{
		DefaultTimeout: n.attemptTimeout,
	})

	_, err := r.Do(ctx, func(ctx context.Context) (struct{}, error) {
		return t.Execute(ctx, n.attemptTimeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, n.send(ctx, ep, eventType, body)
		})
	})
	return maxRetries, err
}

// DeadLetters returns the recorded failed deliveries, oldest first.
func (n *Notifier) DeadLetters() ([]events.DeadLetter, error) {
	if n.deadLetters == nil {
		return nil, nil
	}
	return n.deadLetters.ReadAll()
}

// RedeliverResult counts the outcome of Redeliver.
type RedeliverResult struct {
	Delivered int
	Failed    int
	// Skipped entries name an endpoint that is gone or disabled. They stay
	// in the store.
	Skipped int
}

// Redeliver resends every dead letter synchronously to its endpoint's
// current URL. Delivered entries are removed; failed ones are kept with
// the new error and a raised attempt count.
func (n *Notifier) Redeliver(ctx context.Context) (RedeliverResult, error) {
	var res RedeliverResult
	if n.deadLetters == nil {
		return res, nil
	}

	byName := make(map[string]events.WebhookEndpoint, len(n.endpoints))
	for _, ep := range n.endpoints {
		if ep.Enabled {
			byName[ep.Name] = ep
		}
	}

	err := n.deadLetters.Update(func(entries []events.DeadLetter) []events.DeadLetter {
		var keep []events.DeadLetter
		for _, dl := range entries {
			ep, ok := byName[dl.WebhookName]
			if !ok || ctx.Err() != nil {
				res.Skipped++
				keep = append(keep, dl)
				continue
			}

			attempts, err := n.attempt(ctx, ep, dl.EventType, []byte(dl.Payload))
			if err == nil {
				res.Delivered++
				n.logger.Info("dead letter redelivered", "webhook", ep.Name, "type", dl.EventType)
				continue
			}
			res.Failed++
			dl.Timestamp = time.Now().UTC()
			dl.URL = ep.URL
			dl.Error = err.Error()
			dl.Attempts += attempts
			keep = append(keep, dl)
		}
		return keep
	})
	return res, err
}

func (n *Notifier) send(ctx context.Context, ep events.WebhookEndpoint, eventType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Planner-Webhook/1.0")
	req.Header.Set(HeaderEvent, eventType)
	if ep.Secret != "" {
		req.Header.Set(HeaderSignature, Sign(body, ep.Secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the HMAC-SHA256 signature header value for payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
