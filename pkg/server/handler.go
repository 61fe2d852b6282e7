package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrelay/pkg/controller"
	"github.com/goliatone/go-formrelay/pkg/locale"
	"github.com/goliatone/go-formrelay/pkg/render"
	"github.com/goliatone/go-formrelay/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrelay/pkg/status"
	"github.com/goliatone/go-formrelay/pkg/surface"
	"github.com/goliatone/go-formrelay/pkg/validation"
)

const maxFormBytes = 64 << 10

// Server relays browser posts through per-form controllers.
type Server struct {
	opts    Options
	limiter *clientLimiter

	mu    sync.Mutex
	forms map[string]*formEntry

	validatorsMu sync.Mutex
	validators   map[string]*validation.Validator
}

// formEntry serialises cycles for one rendered form instance.
type formEntry struct {
	busy     sync.Mutex
	lastSeen time.Time
}

type submitResponse struct {
	Status string              `json:"status"`
	Kind   string              `json:"kind,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
	Token  string              `json:"token,omitempty"`
}

// New builds a Server from the default options plus overrides. A transport
// is required; the vanilla renderer and its assets are used unless replaced.
func New(fns ...OptionFn) (*Server, error) {
	return NewWithOptions(NewOptions(fns...))
}

// NewWithOptions builds a Server from a pre-constructed Options value.
func NewWithOptions(opts Options) (*Server, error) {
	opts = NewOptions(func(o *Options) { *o = opts })
	if opts.Transport == nil {
		return nil, fmt.Errorf("server: transport is required")
	}
	if opts.Renderer == nil {
		r, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("server: default renderer: %w", err)
		}
		opts.Renderer = r
	}
	if opts.Assets == nil {
		opts.Assets = vanilla.AssetsFS()
	}
	return &Server{
		opts:       opts,
		limiter:    newClientLimiter(opts.RateLimit, opts.Burst, opts.IdleTTL, opts.Now),
		forms:      make(map[string]*formEntry),
		validators: make(map[string]*validation.Validator),
	}, nil
}

// Options returns the effective options.
func (s *Server) Options() Options {
	return s.opts
}

func (s *Server) handlePage(action string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := s.localeFor(r)
		s.writePage(w, r, http.StatusOK, render.RenderOptions{
			Action: action,
			Hidden: render.MergeHiddenFields(nil, render.FormToken("")),
			Locale: lang,
			Theme:  s.opts.Theme,
		})
	})
}

func (s *Server) handleSubmit(action string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := loggerFrom(r, s.opts.Logger)

		if !s.limiter.Allow(clientKey(r)) {
			log.Warn("submit rate limited", zap.String("client", clientKey(r)))
			w.Header().Set("Retry-After", "1")
			msg := status.Warning(locale.For(s.localeFor(r)).RateLimited)
			if wantsJSON(r) {
				writeJSON(w, http.StatusTooManyRequests, submitResponse{Status: msg.Text, Kind: string(msg.Kind)})
				return
			}
			http.Error(w, msg.Text, http.StatusTooManyRequests)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		token := strings.TrimSpace(r.PostForm.Get(render.FormTokenField))
		if !render.ValidFormToken(token) {
			http.Error(w, "missing or invalid form token", http.StatusBadRequest)
			return
		}

		lang := s.localeFor(r)
		catalog := locale.For(lang)
		values := make(map[string]string, len(r.PostForm))
		for key := range r.PostForm {
			values[key] = r.PostForm.Get(key)
		}

		entry := s.acquire(token)
		if !entry.busy.TryLock() {
			log.Info("submit rejected, form already in flight", zap.String("token", token))
			s.respond(w, r, http.StatusConflict, action, token, lang, surface.NewRecorder(values), status.Warning(catalog.InFlight))
			return
		}
		defer entry.busy.Unlock()

		ui := surface.NewRecorder(values)
		validator, err := s.validatorFor(lang, catalog)
		if err != nil {
			log.Error("build validator", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		cfg := s.opts.Controller
		cfg.Locale = lang
		ctrlOpts := append([]controller.Option{
			controller.WithConfig(cfg),
			controller.WithCatalog(catalog),
			controller.WithValidator(validator),
			controller.WithLogger(log),
		}, s.opts.ControllerOptions...)

		ctrl, err := controller.New(s.opts.Form, ui, s.opts.Transport, ctrlOpts...)
		if err != nil {
			log.Error("build controller", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer ctrl.Close()

		err = ctrl.Submit(r.Context())
		s.respond(w, r, statusFor(err), action, token, lang, ui, status.Message{})
	})
}

func statusFor(err error) int {
	var (
		invalid   *controller.ValidationError
		exhausted *controller.ExhaustedRetriesError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, controller.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &exhausted):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respond answers with JSON when the client asks for it and with the
// re-rendered page otherwise. A non-zero override replaces the surface
// status.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, code int, action, token, lang string, ui *surface.Recorder, override status.Message) {
	msg := ui.Status()
	if !override.IsZero() {
		msg = override
	}

	if wantsJSON(r) {
		writeJSON(w, code, submitResponse{
			Status: msg.Text,
			Kind:   string(msg.Kind),
			Errors: ui.FieldErrorList(),
			Token:  token,
		})
		return
	}

	s.writePage(w, r, code, render.RenderOptions{
		Action: action,
		Values: withoutInternal(ui.Values()),
		Errors: ui.FieldErrorList(),
		Status: msg,
		Hidden: render.MergeHiddenFields(nil, render.FormToken(token)),
		Locale: lang,
		Theme:  s.opts.Theme,
	})
}

func writeJSON(w http.ResponseWriter, code int, body submitResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(body)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, code int, options render.RenderOptions) {
	body, err := s.opts.Renderer.Render(r.Context(), s.opts.Form, options)
	if err != nil {
		loggerFrom(r, s.opts.Logger).Error("render form", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.opts.Renderer.ContentType())
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// acquire returns the entry for token, creating it on first use. Entries
// idle longer than IdleTTL and not running a cycle are dropped.
func (s *Server) acquire(token string) *formEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now()
	for key, entry := range s.forms {
		if key == token || now.Sub(entry.lastSeen) <= s.opts.IdleTTL {
			continue
		}
		if entry.busy.TryLock() {
			delete(s.forms, key)
			entry.busy.Unlock()
		}
	}

	entry, ok := s.forms[token]
	if !ok {
		entry = &formEntry{}
		s.forms[token] = entry
	}
	entry.lastSeen = now
	return entry
}

func (s *Server) trackedForms() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

func (s *Server) validatorFor(lang string, catalog locale.Catalog) (*validation.Validator, error) {
	if s.opts.Validator != nil {
		return s.opts.Validator, nil
	}
	s.validatorsMu.Lock()
	defer s.validatorsMu.Unlock()
	if v, ok := s.validators[lang]; ok {
		return v, nil
	}
	opts := append([]validation.Option{validation.WithCatalog(catalog)}, s.opts.ValidatorOptions...)
	v, err := validation.New(opts...)
	if err != nil {
		return nil, err
	}
	s.validators[lang] = v
	return v, nil
}

// localeFor prefers the configured locale, then the first Accept-Language
// tag.
func (s *Server) localeFor(r *http.Request) string {
	if s.opts.Locale != "" {
		return locale.Normalize(s.opts.Locale)
	}
	header := r.Header.Get("Accept-Language")
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	return locale.Normalize(strings.TrimSpace(first))
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func withoutInternal(values map[string]string) map[string]string {
	for key := range values {
		if strings.HasPrefix(key, "_") {
			delete(values, key)
		}
	}
	return values
}
