package controller

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrelay/pkg/surface"
)

// Bind subscribes the controller to UI events: input is validated after the
// debounce delay, blur immediately, and submit runs a cycle on the calling
// goroutine. The subscription ends when ctx is done or the returned func is
// called.
func (c *Controller) Bind(ctx context.Context, events surface.Events) (unbind func()) {
	if events == nil {
		return func() {}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	unsubscribe := events.Subscribe(func(event surface.Event) {
		switch event.Kind {
		case surface.EventInput:
			c.scheduleValidation(event.Field)
		case surface.EventBlur:
			c.cancelValidation(event.Field)
			c.ValidateField(event.Field)
		case surface.EventSubmit:
			if err := c.Submit(ctx); err != nil && !errors.Is(err, ErrSubmissionInFlight) {
				c.logger.Debug("bound submit finished with error", zap.Error(err))
			}
		}
	})

	stop := context.AfterFunc(ctx, unsubscribe)
	return func() {
		stop()
		unsubscribe()
	}
}

func (c *Controller) scheduleValidation(field string) {
	if field == "" {
		return
	}
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.closed {
		return
	}
	if timer, ok := c.debounce[field]; ok {
		timer.Stop()
	}
	delay := c.cfg.Debounce
	if delay <= 0 {
		delay = time.Nanosecond
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		c.timerMu.Lock()
		current, ok := c.debounce[field]
		if c.closed || !ok || current != timer {
			c.timerMu.Unlock()
			return
		}
		delete(c.debounce, field)
		c.timerMu.Unlock()
		c.ValidateField(field)
	})
	c.debounce[field] = timer
}

func (c *Controller) cancelValidation(field string) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if timer, ok := c.debounce[field]; ok {
		timer.Stop()
		delete(c.debounce, field)
	}
}
