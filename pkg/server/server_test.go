package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-formrelay/pkg/controller"
	"github.com/goliatone/go-formrelay/pkg/locale"
	"github.com/goliatone/go-formrelay/pkg/render"
	"github.com/goliatone/go-formrelay/pkg/testsupport"
	"github.com/goliatone/go-formrelay/pkg/transport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var tokenPattern = regexp.MustCompile(`name="_form_token" value="([^"]+)"`)

type recordingTransport struct {
	mu       sync.Mutex
	err      error
	payloads []transport.Payload
}

func (r *recordingTransport) Send(_ context.Context, payload transport.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return r.err
}

func (r *recordingTransport) calls() []transport.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transport.Payload(nil), r.payloads...)
}

func noWait(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func newTestServer(t *testing.T, tr transport.Transport, fns ...OptionFn) *Server {
	t.Helper()
	base := []OptionFn{
		WithTransport(tr),
		WithLocale(locale.English),
		WithLogger(zaptest.NewLogger(t)),
		WithRateLimit(0, 0),
		WithControllerOptions(controller.WithWait(noWait)),
	}
	s, err := New(append(base, fns...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func validForm(token string) url.Values {
	form := url.Values{render.FormTokenField: {token}}
	for name, value := range testsupport.ContactValues() {
		form.Set(name, value)
	}
	return form
}

func postForm(handler http.Handler, path string, form url.Values, jsonResponse bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if jsonResponse {
		req.Header.Set("Accept", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) submitResponse {
	t.Helper()
	var body submitResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return body
}

func pageToken(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", rec.Code)
	}
	match := tokenPattern.FindStringSubmatch(rec.Body.String())
	if match == nil {
		t.Fatalf("page has no form token: %s", rec.Body.String())
	}
	return match[1]
}

func TestNew_RequiresTransport(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error without transport")
	}
}

func TestPage_RendersFreshToken(t *testing.T) {
	handler := newTestServer(t, &recordingTransport{}).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("content type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), `action="/contact"`) {
		t.Fatalf("page does not post to the relay: %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}

	first := pageToken(t, handler)
	second := pageToken(t, handler)
	if !render.ValidFormToken(first) || first == second {
		t.Fatalf("tokens %q and %q should be distinct and valid", first, second)
	}
}

func TestSubmit_DeliversAndClearsForm(t *testing.T) {
	tr := &recordingTransport{}
	handler := newTestServer(t, tr).Handler()
	token := pageToken(t, handler)

	rec := postForm(handler, "/contact", validForm(token), false)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	page := rec.Body.String()
	if !strings.Contains(page, locale.For(locale.English).Sent) {
		t.Fatalf("success status missing: %s", page)
	}
	if strings.Contains(page, `value="Maria Silva"`) {
		t.Fatal("form should be reset after delivery")
	}
	if !strings.Contains(page, `value="`+token+`"`) {
		t.Fatal("page should keep the form token")
	}

	payloads := tr.calls()
	if len(payloads) != 1 {
		t.Fatalf("transport calls = %d, want 1", len(payloads))
	}
	if _, ok := payloads[0][render.FormTokenField]; ok {
		t.Fatal("form token leaked into the payload")
	}
	if payloads[0]["email"] != "maria@example.com" || payloads[0][transport.TimestampField] == "" {
		t.Fatalf("unexpected payload %v", payloads[0])
	}
}

func TestSubmit_ValidationErrorsAsJSON(t *testing.T) {
	tr := &recordingTransport{}
	handler := newTestServer(t, tr).Handler()

	form := url.Values{render.FormTokenField: {render.FormToken("").Value}}
	rec := postForm(handler, "/contact", form, true)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := decodeResponse(t, rec)
	fields := make([]string, 0, len(body.Errors))
	for name := range body.Errors {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	if diff := cmp.Diff([]string{"email", "nome", "telefone"}, fields); diff != "" {
		t.Fatalf("invalid fields mismatch (-want +got):\n%s", diff)
	}
	if body.Kind != "error" || body.Status != locale.For(locale.English).FixErrors {
		t.Fatalf("unexpected status %+v", body)
	}
	if len(tr.calls()) != 0 {
		t.Fatal("invalid form reached the transport")
	}
}

func TestSubmit_InvalidFieldsRenderedInline(t *testing.T) {
	handler := newTestServer(t, &recordingTransport{}).Handler()
	form := validForm(render.FormToken("").Value)
	form.Set("email", "not-an-email")

	rec := postForm(handler, "/contact", form, false)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	page := rec.Body.String()
	for _, fragment := range []string{
		`id="fr-email-error" class="error-message"`,
		`aria-invalid="true"`,
		`value="Maria Silva"`,
	} {
		if !strings.Contains(page, fragment) {
			t.Fatalf("page missing %q", fragment)
		}
	}
}

func TestSubmit_ExhaustedRetriesIsBadGateway(t *testing.T) {
	tr := &recordingTransport{err: &transport.Error{Network: true, Err: errors.New("dial tcp: connection refused")}}
	handler := newTestServer(t, tr).Handler()

	rec := postForm(handler, "/contact", validForm(render.FormToken("").Value), true)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	body := decodeResponse(t, rec)
	if body.Status != locale.For(locale.English).NetworkFailure {
		t.Fatalf("status text = %q", body.Status)
	}
	if got := len(tr.calls()); got != controller.DefaultMaxRetries+1 {
		t.Fatalf("attempts = %d, want %d", got, controller.DefaultMaxRetries+1)
	}
}

func TestSubmit_SameTokenInFlightConflicts(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	tr := transport.Func(func(ctx context.Context, _ transport.Payload) error {
		once.Do(func() { close(started) })
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	handler := newTestServer(t, tr).Handler()
	token := render.FormToken("").Value

	done := make(chan int, 1)
	go func() {
		done <- postForm(handler, "/contact", validForm(token), true).Code
	}()
	<-started

	rec := postForm(handler, "/contact", validForm(token), true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	body := decodeResponse(t, rec)
	if body.Kind != "warning" || body.Status != locale.For(locale.English).InFlight {
		t.Fatalf("unexpected conflict body %+v", body)
	}

	other := postForm(handler, "/contact", url.Values{render.FormTokenField: {render.FormToken("").Value}}, true)
	if other.Code != http.StatusUnprocessableEntity {
		t.Fatalf("other form status = %d, want 422", other.Code)
	}

	close(release)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("first submit status = %d, want 200", code)
	}
}

func TestSubmit_RejectsMissingToken(t *testing.T) {
	handler := newTestServer(t, &recordingTransport{}).Handler()
	form := validForm("")
	form.Del(render.FormTokenField)

	if rec := postForm(handler, "/contact", form, false); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	form.Set(render.FormTokenField, "not-a-token")
	if rec := postForm(handler, "/contact", form, false); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubmit_RateLimitedPerClient(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	handler := newTestServer(t, &recordingTransport{},
		WithRateLimit(rate.Limit(1), 1),
		WithClock(func() time.Time { return now }),
	).Handler()

	if rec := postForm(handler, "/contact", validForm(render.FormToken("").Value), true); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", rec.Code)
	}
	rec := postForm(handler, "/contact", validForm(render.FormToken("").Value), true)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q, want JSON", ct)
	}
	want := submitResponse{Status: locale.For(locale.English).RateLimited, Kind: "warning"}
	if diff := cmp.Diff(want, decodeResponse(t, rec)); diff != "" {
		t.Fatalf("rate limited body mismatch (-want +got):\n%s", diff)
	}

	page := postForm(handler, "/contact", validForm(render.FormToken("").Value), false)
	if page.Code != http.StatusTooManyRequests || !strings.Contains(page.Body.String(), want.Status) {
		t.Fatalf("plain rate limited = %d %q", page.Code, page.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "delivered", err: nil, want: http.StatusOK},
		{name: "in flight", err: controller.ErrSubmissionInFlight, want: http.StatusConflict},
		{name: "invalid", err: &controller.ValidationError{}, want: http.StatusUnprocessableEntity},
		{name: "exhausted", err: &controller.ExhaustedRetriesError{Attempts: 3}, want: http.StatusBadGateway},
		{name: "closed", err: controller.ErrClosed, want: http.StatusInternalServerError},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Fatalf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestHealthAndAssets(t *testing.T) {
	handler := newTestServer(t, &recordingTransport{}).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("healthz = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/formrelay.css", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Fatalf("stylesheet = %d", rec.Code)
	}
}

func TestRegister_BasePath(t *testing.T) {
	mux := http.NewServeMux()
	s, routes, err := RegisterRoutes(mux, "/forms/",
		WithTransport(&recordingTransport{}),
		WithRateLimit(0, 0),
	)
	if err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	want := Routes{
		Page:   "GET /forms/{$}",
		Submit: "POST /forms/contact",
		Health: "GET /forms/healthz",
		Assets: "GET /forms/assets/",
	}
	if diff := cmp.Diff(want, routes); diff != "" {
		t.Fatalf("routes mismatch (-want +got):\n%s", diff)
	}
	if s.Options().SubmitPath != DefaultSubmitPath {
		t.Fatalf("submit path = %q", s.Options().SubmitPath)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/", nil))
	if !strings.Contains(rec.Body.String(), `action="/forms/contact"`) {
		t.Fatalf("page action not mounted: %s", rec.Body.String())
	}

	if _, err := s.Register(nil, "/"); err == nil {
		t.Fatal("expected error for nil mux")
	}
}

func TestAcquire_PrunesIdleForms(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	s := newTestServer(t, &recordingTransport{}, WithClock(func() time.Time { return now }))

	s.acquire("a")
	busy := s.acquire("b")
	busy.busy.Lock()
	defer busy.busy.Unlock()

	now = now.Add(DefaultIdleTTL + time.Second)
	s.acquire("c")

	if got := s.trackedForms(); got != 2 {
		t.Fatalf("tracked forms = %d, want 2 (busy b and new c)", got)
	}
}

func TestClientLimiter_PrunesIdleVisitors(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	l := newClientLimiter(rate.Limit(1), 1, time.Minute, func() time.Time { return now })

	if !l.Allow("10.0.0.1") || l.Allow("10.0.0.1") {
		t.Fatal("burst of one should allow exactly one request")
	}
	l.Allow("10.0.0.2")
	if l.size() != 2 {
		t.Fatalf("visitors = %d, want 2", l.size())
	}

	now = now.Add(2 * time.Minute)
	if !l.Allow("10.0.0.3") {
		t.Fatal("new visitor should be allowed")
	}
	if l.size() != 1 {
		t.Fatalf("visitors = %d, want 1 after prune", l.size())
	}

	var disabled *clientLimiter
	if !disabled.Allow("anything") {
		t.Fatal("nil limiter must allow")
	}
}

func TestClientKey(t *testing.T) {
	cases := map[string]string{
		"192.0.2.1:1234":   "192.0.2.1",
		"[2001:db8::1]:80": "2001:db8::1",
		"unix":             "unix",
	}
	for remote, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if got := clientKey(req); got != want {
			t.Errorf("clientKey(%q) = %q, want %q", remote, got, want)
		}
	}
}

func TestLocaleFromAcceptLanguage(t *testing.T) {
	s := newTestServer(t, &recordingTransport{}, WithLocale(""))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")
	if got := s.localeFor(req); got != locale.Portuguese {
		t.Fatalf("locale = %q, want %q", got, locale.Portuguese)
	}
	req.Header.Set("Accept-Language", "")
	if got := s.localeFor(req); got != locale.English {
		t.Fatalf("locale = %q, want %q", got, locale.English)
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("listen: %v", err)
	}
	handler := newTestServer(t, &recordingTransport{}).Handler()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, handler, zaptest.NewLogger(t))
	}()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		cancel()
		<-done
		t.Fatalf("GET healthz: %v", err)
	}
	resp.Body.Close()
	client.CloseIdleConnections()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
