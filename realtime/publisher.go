package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chat-relay/contract"
	"chat-relay/domain/channel"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/observability"
	"github.com/samber/lo"
)

type OutcomeStatus string

const (
	OutcomeDelivered   OutcomeStatus = "delivered"
	OutcomeUnavailable OutcomeStatus = "transport_unavailable"
	OutcomeFailed      OutcomeStatus = "failed"
)

// PublishOutcome is a value, never a thrown error: publish sits downstream of
// an already-committed business operation, so failures are reported, logged
// and swallowed at this boundary.
type PublishOutcome struct {
	Status  OutcomeStatus
	Channel string
	Err     error
}

func (o PublishOutcome) Ok() bool { return o.Status == OutcomeDelivered }

const defaultPushTimeout = 5 * time.Second

// Publisher serializes events into wire envelopes and pushes them on resolved
// channels. It is stateless and safe for concurrent use.
type Publisher struct {
	log       *slog.Logger
	transport contract.Transport
	timeout   time.Duration
	monitor   *observability.PublishMonitor
	now       func() time.Time
}

func NewPublisher(log *slog.Logger, transport contract.Transport, timeout time.Duration, monitor *observability.PublishMonitor) *Publisher {
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	return &Publisher{log: log, transport: transport, timeout: timeout, monitor: monitor, now: time.Now}
}

// Publish pushes one event on one channel. The caller has already picked
// exactly one target scope; no room-vs-dm inference happens here.
func (p *Publisher) Publish(ctx context.Context, evt event.Event, scope channel.Scope) PublishOutcome {
	if scope.Kind() == "" {
		out := PublishOutcome{
			Status: OutcomeFailed,
			Err:    fmt.Errorf("%w: zero scope", errors.ErrInvalidScope),
		}
		p.log.Error("Publish aborted before push", "event", evt.Kind(), "err", out.Err)
		p.monitor.IncrFailed()
		return out
	}
	name := scope.Name()

	if p.transport == nil {
		p.log.Warn("Realtime transport not configured, event dropped",
			"event", evt.Kind(), "channel", name)
		p.monitor.IncrUnavailable()
		return PublishOutcome{Status: OutcomeUnavailable, Channel: name, Err: errors.ErrTransportUnavailable}
	}

	env := event.NewEnvelope(evt, p.now())

	pushCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.push(pushCtx, name, evt.Kind(), env)
	switch {
	case err == nil:
		p.monitor.IncrDelivered()
		return PublishOutcome{Status: OutcomeDelivered, Channel: name}
	case pushCtx.Err() != nil:
		p.log.Warn("Transport unreachable", "event", evt.Kind(), "channel", name, "err", err)
		p.monitor.IncrUnavailable()
		return PublishOutcome{Status: OutcomeUnavailable, Channel: name, Err: errors.ErrTransportUnavailable}
	default:
		p.log.Error("Transport rejected publish", "event", evt.Kind(), "channel", name, "err", err)
		p.monitor.IncrFailed()
		return PublishOutcome{
			Status:  OutcomeFailed,
			Channel: name,
			Err:     fmt.Errorf("%w: %v", errors.ErrPublishRejected, err),
		}
	}
}

// push shields the caller from a misbehaving transport: a panic inside the
// client library is converted into an error like any other transport failure.
func (p *Publisher) push(ctx context.Context, name, kind string, env event.Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport panic: %v", r)
		}
	}()
	return p.transport.Push(ctx, name, kind, env)
}

// FanOutToUsers publishes the same event to each recipient's personal channel.
// Recipients are independent: one failed delivery never blocks or fails the
// others, and the aggregate is returned for logging, not for rollback.
func (p *Publisher) FanOutToUsers(ctx context.Context, evt event.Event, userIDs []string) []PublishOutcome {
	recipients := lo.Uniq(userIDs)
	outcomes := make([]PublishOutcome, len(recipients))

	var wg sync.WaitGroup
	for i, userID := range recipients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scope, err := channel.User(userID)
			if err != nil {
				outcomes[i] = PublishOutcome{Status: OutcomeFailed, Err: err}
				return
			}
			outcomes[i] = p.Publish(ctx, evt, scope)
		}()
	}
	wg.Wait()

	p.monitor.AddFanOut(len(recipients))
	return outcomes
}

// DeliveredCount counts the successful outcomes of a fan-out.
func DeliveredCount(outcomes []PublishOutcome) int {
	return lo.CountBy(outcomes, PublishOutcome.Ok)
}
