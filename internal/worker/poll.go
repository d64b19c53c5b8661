// Package worker holds the two pipeline stages and the drain loop that
// feeds them. A worker invocation is short-lived: it empties its queue and
// returns, trusting redelivery for anything it could not finish.
package worker

import (
	"context"

	"github.com/tomislacker/photos3/internal/errs"
	"github.com/tomislacker/photos3/internal/logging"
	"github.com/tomislacker/photos3/internal/metrics"
	"github.com/tomislacker/photos3/internal/queue"
)

// Handler processes one queue message in full. A nil return means every
// event inside the message succeeded and the message may be deleted.
type Handler interface {
	HandleMessage(ctx context.Context, msg queue.Message) error
}

// PollLoop drains a queue through a Handler. Both workers run under it.
type PollLoop struct {
	name    string
	queue   queue.Consumer
	handler Handler
}

func NewPollLoop(name string, q queue.Consumer, h Handler) *PollLoop {
	return &PollLoop{name: name, queue: q, handler: h}
}

// Run receives until a poll comes back empty, then returns. A message is
// deleted only when its handler reports zero failures; otherwise it stays
// on the queue for redelivery. Transport errors, including queue access
// failures, abort the invocation.
func (p *PollLoop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return errs.Wrap(errs.KindTransport, "worker.PollLoop.Run", err)
		}

		msgs, err := p.queue.Receive(ctx)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			logging.Debug("%s: queue empty, stopping", p.name)
			return nil
		}

		for _, msg := range msgs {
			err := p.handler.HandleMessage(ctx, msg)
			if errs.IsTransport(err) {
				return err
			}
			if err != nil {
				logging.Warn("%s: message %s retained for redelivery: %v", p.name, msg.ID, err)
				metrics.MessagesProcessed.WithLabelValues("retained").Inc()
				continue
			}

			logging.Debug("%s: removing queue message %s", p.name, msg.ID)
			if err := p.queue.Delete(ctx, msg); err != nil {
				return err
			}
			metrics.MessagesProcessed.WithLabelValues("deleted").Inc()
		}
	}
}
