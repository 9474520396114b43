package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Dispatcher is the fire-and-forget event sink. Events are queued on a
// buffered channel and delivered by a background worker as JSON webhooks;
// delivery failures are logged, never retried synchronously, and never
// affect an already-sent response. A full queue drops the event.
type Dispatcher struct {
	webhookURL string
	http       *http.Client
	queue      chan event
}

type event struct {
	Name    string    `json:"event"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

const dispatchQueueSize = 256

func NewDispatcher(webhookURL string, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: timeout},
		queue:      make(chan event, dispatchQueueSize),
	}
}

// Start runs the delivery worker until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	if d.webhookURL == "" {
		log.Info().Msg("dispatcher: no webhook configured, events discarded")
	}
	for {
		select {
		case ev := <-d.queue:
			d.deliver(ev)
		case <-ctx.Done():
			log.Info().Msg("dispatcher: stopping")
			return
		}
	}
}

// Emit queues an event without blocking the caller.
func (d *Dispatcher) Emit(name string, payload any) {
	select {
	case d.queue <- event{Name: name, Payload: payload, At: time.Now().UTC()}:
	default:
		log.Warn().Str("event", name).Msg("dispatcher: queue full, event dropped")
	}
}

func (d *Dispatcher) deliver(ev event) {
	if d.webhookURL == "" {
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Warn().Err(err).Str("event", ev.Name).Msg("dispatcher: marshal failed")
		return
	}

	resp, err := d.http.Post(d.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Str("event", ev.Name).Msg("dispatcher: delivery failed")
		return
	}
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("event", ev.Name).
			Msg("dispatcher: webhook rejected event")
	}
}
