package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/taiwoajasa245/verse-courier/internal/corpus"
	"github.com/taiwoajasa245/verse-courier/internal/subscriber"
)

var errNothingToSend = errors.New("nothing to send")

func (d *Dispatcher) deliver(ctx context.Context, sub subscriber.Subscriber, day string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic delivering to %s: %v", sub.ID, r)
		}
	}()

	passages, err := d.selector.Select(ctx, sub, d.cfg.Count, day)
	if err != nil {
		return fmt.Errorf("selecting passages: %w", err)
	}
	if len(passages) == 0 {
		return errNothingToSend
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()
	if err := d.sender.Send(sendCtx, sub.ID, corpus.FormatPassages(passages)); err != nil {
		return fmt.Errorf("sending: %w", err)
	}
	return nil
}
