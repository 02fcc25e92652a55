package request

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
)

type Poller struct {
	Store mailbox.Store
}

func NewPoller(store mailbox.Store) *Poller {
	return &Poller{Store: store}
}

// Poll consumes at most one pending request. Any failure is logged and
// reported as "nothing pending"; the message (if it was malformed) is gone.
func (p *Poller) Poll(ctx context.Context) *Event {
	msg, err := p.Store.FetchOneAndClear(ctx, mailbox.TableRequests)
	if err != nil {
		logger.Warnf(ctx, "%v", activation.ErrTransientSignal{Source: string(mailbox.TableRequests), Err: err})
		return nil
	}
	if msg == nil {
		return nil
	}

	ev, err := eventFromMessage(*msg)
	if err != nil {
		logger.Warnf(ctx, "%v", activation.ErrTransientSignal{Source: string(mailbox.TableRequests), Err: err})
		return nil
	}
	logger.Debugf(ctx, "consumed request %s", ev)
	return ev
}
