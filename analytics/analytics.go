// Package analytics wraps PostHog event capture behind a small capability
// interface so handlers never depend on the concrete client and a missing
// API key degrades to a no-op.
package analytics

import (
	"github.com/posthog/posthog-go"
	"go.uber.org/zap"
)

// Event names emitted by the service.
const (
	EventRedirectToMainApp          = "redirect-from-actions-server-to-main-app"
	EventDepositBlinkView           = "deposit-blink-view"
	EventElectionsBlinkView         = "elections-blink-view"
	EventCreateDepositTransaction   = "create-deposit-transaction"
	EventCreateElectionsTransaction = "create-elections-swap-transaction"
)

const posthogHost = "https://us.i.posthog.com"

// Client captures analytics events. Implementations must never fail the
// surrounding request.
type Client interface {
	Capture(distinctID, event string, properties map[string]any)
	Close() error
}

// New returns a PostHog-backed client, or a no-op when the key is empty.
func New(apiKey string, log *zap.Logger) Client {
	if log == nil {
		log = zap.NewNop()
	}
	if apiKey == "" {
		log.Warn("PostHog API key not found, analytics capture disabled")
		return Noop{}
	}
	ph, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: posthogHost})
	if err != nil {
		log.Warn("PostHog client init failed, analytics capture disabled", zap.Error(err))
		return Noop{}
	}
	return &posthogClient{ph: ph, log: log}
}

type posthogClient struct {
	ph  posthog.Client
	log *zap.Logger
}

func (c *posthogClient) Capture(distinctID, event string, properties map[string]any) {
	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	if err := c.ph.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: props,
	}); err != nil {
		c.log.Warn("analytics capture failed", zap.String("event", event), zap.Error(err))
	}
}

func (c *posthogClient) Close() error {
	return c.ph.Close()
}

// Noop drops every event.
type Noop struct{}

func (Noop) Capture(string, string, map[string]any) {}
func (Noop) Close() error                           { return nil }
