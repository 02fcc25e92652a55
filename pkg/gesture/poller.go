package gesture

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
)

// Poller turns a stream of noisy per-frame gesture votes into at most one
// committed gesture. It is not safe for concurrent use; the arbitration loop
// owns it.
type Poller struct {
	Store     mailbox.Store
	Tally     Tally
	Threshold uint

	config config
}

func NewPoller(
	store mailbox.Store,
	opts ...Option,
) *Poller {
	cfg := Options(opts).config()
	p := &Poller{
		Store:     store,
		Threshold: cfg.Threshold,
		config:    cfg,
	}
	p.Tally.Reset(cfg.Now().Add(cfg.Window))
	return p
}

// Poll drains the pending votes and returns the committed gesture, if any.
// Store failures are logged and reported as "no gesture".
func (p *Poller) Poll(ctx context.Context) (activation.Gesture, bool) {
	now := p.config.Now()
	if now.After(p.Tally.WindowDeadline) {
		p.Tally.Reset(now.Add(p.config.Window))
	}

	votes, err := p.Store.FetchAllAndClear(ctx, mailbox.TableGestures)
	if err != nil {
		logger.Warnf(ctx, "%v", activation.ErrTransientSignal{Source: string(mailbox.TableGestures), Err: err})
		return activation.GestureUndefined, false
	}

	seen := map[activation.Gesture]struct{}{}
	for _, vote := range votes {
		if _, ok := seen[vote.Gesture]; ok {
			continue
		}
		seen[vote.Gesture] = struct{}{}
		if !p.Tally.Increment(vote.Gesture) {
			logger.Debugf(ctx, "ignoring a vote with an unknown gesture: %s", vote)
		}
	}
	if len(seen) > 0 {
		logger.Tracef(ctx, "gesture tally: %s", p.Tally)
	}

	for _, g := range activation.GesturePriority {
		if p.Tally.Get(g) < p.Threshold {
			continue
		}
		logger.Debugf(ctx, "gesture '%s' committed with tally %s", g, p.Tally)
		p.Tally.Reset(now.Add(p.config.Window))
		return g, true
	}
	return activation.GestureUndefined, false
}
