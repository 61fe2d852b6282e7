package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formrelay/pkg/locale"
	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/status"
	"github.com/goliatone/go-formrelay/pkg/surface"
	"github.com/goliatone/go-formrelay/pkg/transport"
	"github.com/goliatone/go-formrelay/pkg/validation"
)

// TimestampLayout matches the ISO-8601 form browsers produce for
// Date.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Phase is the position of the controller in a submission cycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
	PhaseRetrying   Phase = "retrying"
)

// FormState is a snapshot of the controller's mutable state.
type FormState struct {
	Phase          Phase
	Submitting     bool
	RetryCount     int
	PendingPayload transport.Payload
}

// Controller mediates between one form surface and the remote endpoint.
type Controller struct {
	form       model.FormModel
	ui         surface.Surface
	transport  transport.Transport
	cfg        Config
	logger     *zap.Logger
	validator  *validation.Validator
	catalog    locale.Catalog
	catalogSet bool
	now        func() time.Time
	wait       func(ctx context.Context, d time.Duration) error
	newID      func() string

	mu    sync.Mutex
	state FormState

	timerMu      sync.Mutex
	statusGen    uint64
	dismissTimer *time.Timer
	debounce     map[string]*time.Timer
	closed       bool
}

// New builds a controller for form. The surface and transport are required.
func New(form model.FormModel, ui surface.Surface, tr transport.Transport, options ...Option) (*Controller, error) {
	if ui == nil {
		return nil, errors.New("controller: surface is required")
	}
	if tr == nil {
		return nil, errors.New("controller: transport is required")
	}

	c := &Controller{
		form:      form,
		ui:        ui,
		transport: tr,
		cfg:       DefaultConfig(),
		logger:    zap.NewNop(),
		now:       time.Now,
		wait:      sleepContext,
		newID:     uuid.NewString,
		state:     FormState{Phase: PhaseIdle},
		debounce:  make(map[string]*time.Timer),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.cfg = c.cfg.normalized()

	if !c.catalogSet {
		c.catalog = locale.For(c.cfg.Locale)
	}
	if c.validator == nil {
		v, err := validation.New(validation.WithCatalog(c.catalog))
		if err != nil {
			return nil, err
		}
		c.validator = v
	}
	return c, nil
}

// Form returns the form model the controller validates against.
func (c *Controller) Form() model.FormModel {
	return c.form
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// State returns a copy of the current state.
func (c *Controller) State() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := c.state
	snapshot.PendingPayload = c.state.PendingPayload.Clone()
	return snapshot
}

// Submitting reports whether a cycle is in flight.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Submitting
}

// Init warns, on the surface and in the log, when the endpoint still holds
// the placeholder URL or is empty. It reports whether the endpoint looks
// configured.
func (c *Controller) Init() bool {
	endpoint := strings.TrimSpace(c.cfg.Endpoint)
	if EndpointConfigured(endpoint) {
		return true
	}
	c.logger.Warn("form endpoint is not configured",
		zap.String("form", c.form.ID),
		zap.String("endpoint", endpoint),
	)
	c.showStatus(status.Warning(c.catalog.NotConfigured))
	return false
}

// EndpointConfigured reports whether endpoint is set and is not the
// shipped placeholder.
func EndpointConfigured(endpoint string) bool {
	endpoint = strings.TrimSpace(endpoint)
	return endpoint != "" && !strings.Contains(endpoint, "YOUR_SCRIPT_ID")
}

// ValidateField validates the named field against the current surface
// value and updates its inline error. Fields the form does not declare have
// no constraints.
func (c *Controller) ValidateField(name string) validation.Result {
	field, ok := c.form.Field(name)
	if !ok {
		return validation.Result{Field: name, Valid: true}
	}
	result := c.validator.ValidateField(field, c.ui.Values()[field.Name])
	c.renderResult(result)
	return result
}

// ValidateForm validates every field, renders all errors found and reports
// whether the form may be sent.
func (c *Controller) ValidateForm() bool {
	return len(c.validateAll()) == 0
}

func (c *Controller) validateAll() []validation.Result {
	results := c.validator.ValidateValues(c.form, c.ui.Values())
	for _, result := range results {
		c.renderResult(result)
	}
	return validation.Invalid(results)
}

func (c *Controller) renderResult(result validation.Result) {
	c.ui.ClearFieldError(result.Field)
	if !result.Valid {
		c.ui.SetFieldError(result.Field, result.Message)
	}
}

// Submit runs one submission cycle. It returns nil on delivery,
// ErrSubmissionInFlight when a cycle is already running, a
// *ValidationError when the form is invalid, or an *ExhaustedRetriesError
// when every attempt failed.
func (c *Controller) Submit(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	if c.state.Submitting {
		c.mu.Unlock()
		c.logger.Debug("submit ignored, cycle in flight", zap.String("form", c.form.ID))
		return ErrSubmissionInFlight
	}
	if c.isClosed() {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state.Submitting = true
	c.state.Phase = PhaseValidating
	c.mu.Unlock()

	if invalid := c.validateAll(); len(invalid) > 0 {
		c.finish()
		c.showStatus(status.Error(c.catalog.FixErrors))
		c.logger.Info("form submission rejected by validation",
			zap.String("form", c.form.ID),
			zap.Int("invalid_fields", len(invalid)),
		)
		return &ValidationError{Fields: invalid}
	}

	payload := c.buildPayload()
	submissionID := c.newID()
	log := c.logger.With(
		zap.String("form", c.form.ID),
		zap.String("submission_id", submissionID),
	)

	c.mu.Lock()
	c.state.Phase = PhaseSubmitting
	c.state.PendingPayload = payload
	c.mu.Unlock()

	c.ui.SetSubmitBusy(true)
	defer func() {
		c.ui.SetSubmitBusy(false)
		c.finish()
	}()
	c.showStatus(status.Info(c.catalog.Sending))

	err := c.deliver(ctx, log, payload)
	if err == nil {
		c.showStatus(status.Success(c.catalog.Sent))
		c.ui.Reset()
		for _, field := range c.form.Fields {
			c.ui.ClearFieldError(field.Name)
		}
		c.ui.ScrollIntoView(surface.TargetForm)
		log.Info("form submission delivered", zap.Int("retries", c.State().RetryCount))
		return nil
	}

	var exhausted *ExhaustedRetriesError
	if errors.As(err, &exhausted) {
		message := c.catalog.GenericFailure
		if exhausted.Network() {
			message = c.catalog.NetworkFailure
		}
		c.showStatus(status.Error(message))
		c.ui.ScrollIntoView(surface.TargetStatus)
		log.Error("form submission failed",
			zap.Int("attempts", exhausted.Attempts),
			zap.Bool("network", exhausted.Network()),
			zap.Error(err),
		)
	}
	return err
}

// deliver sends payload once plus up to MaxRetries more times, waiting
// RetryDelay between attempts. The same payload is reused for every attempt.
func (c *Controller) deliver(ctx context.Context, log *zap.Logger, payload transport.Payload) error {
	maxAttempts := c.cfg.MaxRetries + 1

	var last *TransportError
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.mu.Lock()
			c.state.RetryCount = attempt - 1
			c.state.Phase = PhaseRetrying
			c.mu.Unlock()

			log.Info("retrying form submission",
				zap.Int("retry", attempt-1),
				zap.Int("max_retries", c.cfg.MaxRetries),
			)
			if err := c.wait(ctx, c.cfg.RetryDelay); err != nil {
				return &ExhaustedRetriesError{Attempts: attempt - 1, Last: last, Cause: err}
			}
		}

		err := c.transport.Send(ctx, payload.Clone())
		if err == nil {
			return nil
		}
		last = newTransportError(attempt, err)
		log.Warn("form submission attempt failed",
			zap.Int("attempt", attempt),
			zap.Bool("network", last.Network),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			return &ExhaustedRetriesError{Attempts: attempt, Last: last, Cause: ctx.Err()}
		}
	}
	return &ExhaustedRetriesError{Attempts: maxAttempts, Last: last}
}

// buildPayload copies the surface values, drops internal fields (names
// starting with an underscore) and stamps the submission time.
func (c *Controller) buildPayload() transport.Payload {
	values := c.ui.Values()
	payload := make(transport.Payload, len(values)+1)
	for key, value := range values {
		name := strings.TrimSpace(key)
		if name == "" || strings.HasPrefix(name, "_") {
			continue
		}
		payload[name] = value
	}
	payload[transport.TimestampField] = c.now().UTC().Format(TimestampLayout)
	return payload
}

// finish returns the controller to Idle.
func (c *Controller) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = FormState{Phase: PhaseIdle}
}

// ShowStatus displays msg, replacing the current status. Non-error messages
// clear themselves after DismissAfter unless a newer message replaced them.
func (c *Controller) ShowStatus(msg status.Message) {
	c.showStatus(msg)
}

func (c *Controller) showStatus(msg status.Message) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	c.statusGen++
	gen := c.statusGen
	if c.dismissTimer != nil {
		c.dismissTimer.Stop()
		c.dismissTimer = nil
	}

	c.ui.ShowStatus(msg)

	if c.closed || !msg.AutoDismiss() || c.cfg.DismissAfter <= 0 {
		return
	}
	c.dismissTimer = time.AfterFunc(c.cfg.DismissAfter, func() {
		c.timerMu.Lock()
		defer c.timerMu.Unlock()
		if c.closed || c.statusGen != gen {
			return
		}
		c.dismissTimer = nil
		c.ui.ClearStatus()
	})
}

func (c *Controller) isClosed() bool {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	return c.closed
}

// Close stops pending dismiss and debounce timers. Submit fails with
// ErrClosed afterwards; an in-flight cycle still completes.
func (c *Controller) Close() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.dismissTimer != nil {
		c.dismissTimer.Stop()
		c.dismissTimer = nil
	}
	for name, timer := range c.debounce {
		timer.Stop()
		delete(c.debounce, name)
	}
}
