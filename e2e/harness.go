// Package e2e drives the procuration HTTP surface through godog scenarios.
// Every scenario gets a fresh in-memory stack behind a real listener, a fake
// address API, and an outbox capturing the mails that would have been sent.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"procuration/internal/audit"
	"procuration/internal/kv"
	"procuration/internal/lifecycle"
	"procuration/internal/locality"
	"procuration/internal/mail"
	"procuration/internal/matching"
	"procuration/internal/platform/metrics"
	ratelimitmetrics "procuration/internal/ratelimit/metrics"
	"procuration/internal/ratelimit/service/requestlimit"
	"procuration/internal/ratelimit/store/bucket"
	"procuration/internal/request/store"
	"procuration/internal/session"
	"procuration/internal/token"
	httptransport "procuration/internal/transport/http"
	"procuration/pkg/platform/middleware/admin"
)

const (
	cookieName = "procuration_session"
	adminToken = "e2e-admin-token"
	// ThrottleLimit is the per-origin submission allowance in scenarios.
	ThrottleLimit = 3
)

var verificationLink = regexp.MustCompile(`/etape-1/confirmation/([A-Za-z0-9_-]+)`)

// TestContext is the state shared by the step packages for one scenario.
type TestContext struct {
	server  *httptest.Server
	ban     *fakeBAN
	outbox  *outbox
	audit   *audit.MemoryPublisher
	client  *http.Client
	origin  string
	asAdmin bool

	lastStatus int
	lastHeader http.Header
	lastBody   []byte

	saved map[string]string
}

// NewTestContext returns an idle context; Reset starts the stack.
func NewTestContext() *TestContext {
	return &TestContext{}
}

// Reset tears down any previous stack and starts a new one.
func (tc *TestContext) Reset() error {
	tc.Close()

	tc.ban = newFakeBAN()
	tc.outbox = &outbox{}
	tc.audit = audit.NewMemoryPublisher()
	tc.origin = "192.0.2.1"
	tc.asAdmin = false
	tc.lastStatus, tc.lastHeader, tc.lastBody = 0, nil, nil
	tc.saved = map[string]string{}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	stores := kv.NewMemory()
	locker := kv.NewMemoryLocker()
	localities := locality.NewMetadataStore(stores)
	matches := matching.New(stores, locker)
	sessions := session.New("e2e-signing-key", time.Hour)

	throttle, err := requestlimit.New(bucket.New(),
		requestlimit.WithLimit(ThrottleLimit, time.Minute),
		requestlimit.WithLogger(log),
		requestlimit.WithAuditPublisher(tc.audit),
		requestlimit.WithMetrics(ratelimitmetrics.New(reg)),
	)
	if err != nil {
		return fmt.Errorf("build throttle: %w", err)
	}

	svc, err := lifecycle.New(lifecycle.Dependencies{
		Records:    store.New(stores),
		Tokens:     token.New(stores),
		Locker:     locker,
		Sessions:   sessions,
		Mailer:     tc.outbox,
		Geocoder:   locality.NewBANClient(tc.ban.URL(), 2*time.Second, locality.WithFallback(localities)),
		Localities: localities,
		Matches:    matches,
		Throttle:   throttle,
	},
		lifecycle.WithLogger(log),
		lifecycle.WithMetrics(m),
		lifecycle.WithAuditPublisher(tc.audit),
		lifecycle.WithHost("https://procuration.example.fr"),
		lifecycle.WithConsularListDest("lec@procuration.example.fr"),
	)
	if err != nil {
		return fmt.Errorf("build lifecycle service: %w", err)
	}

	handler := httptransport.New(svc, matches, log, httptransport.CookieConfig{Name: cookieName})
	router := httptransport.NewRouter(handler, httptransport.RouterConfig{
		Logger:     log,
		Metrics:    m,
		Gatherer:   reg,
		Sessions:   sessions,
		CookieName: cookieName,
		TrustProxy: true,
		AdminToken: adminToken,
	})
	tc.server = httptest.NewServer(router)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	tc.client = &http.Client{Jar: jar, Timeout: 5 * time.Second}
	return nil
}

// Close stops the servers of the current scenario.
func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
		tc.server = nil
	}
	if tc.ban != nil {
		tc.ban.Close()
		tc.ban = nil
	}
}

// SetOrigin makes later requests look like they come from ip.
func (tc *TestContext) SetOrigin(ip string) { tc.origin = ip }

// SetAdmin toggles the back-office credential on later requests.
func (tc *TestContext) SetAdmin(enabled bool) { tc.asAdmin = enabled }

// ForgetSession drops every cookie the client holds.
func (tc *TestContext) ForgetSession() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	tc.client.Jar = jar
	return nil
}

func (tc *TestContext) POST(path string, body any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	return tc.do(http.MethodPost, path, &buf)
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) do(method, path string, body io.Reader) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.server.URL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Forwarded-For", tc.origin)
	if tc.asAdmin {
		req.Header.Set(admin.HeaderAdminToken, adminToken)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastHeader = resp.Header
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) LastStatus() int { return tc.lastStatus }

func (tc *TestContext) LastBody() []byte { return tc.lastBody }

func (tc *TestContext) LastHeader(key string) string { return tc.lastHeader.Get(key) }

// ResponseField reads a top-level field of the last JSON response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w (body %q)", err, tc.lastBody)
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response %s", field, tc.lastBody)
	}
	return v, nil
}

// Save and Saved carry values such as tokens between steps.
func (tc *TestContext) Save(name, value string) { tc.saved[name] = value }

func (tc *TestContext) Saved(name string) (string, error) {
	v, ok := tc.saved[name]
	if !ok {
		return "", fmt.Errorf("nothing saved as %q", name)
	}
	return v, nil
}

// MailsTo returns every captured mail addressed to addr, oldest first.
func (tc *TestContext) MailsTo(addr string) []mail.Message {
	return tc.outbox.to(addr)
}

// VerificationToken extracts the token from the latest verification mail
// sent to addr.
func (tc *TestContext) VerificationToken(addr string) (string, error) {
	mails := tc.outbox.to(addr)
	for i := len(mails) - 1; i >= 0; i-- {
		if m := verificationLink.FindStringSubmatch(mails[i].Text); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("no verification mail sent to %s", addr)
}

// AuditActions lists the audit actions published so far.
func (tc *TestContext) AuditActions() []string {
	actions := tc.audit.Actions()
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, string(a))
	}
	return out
}

// AddLocality makes the fake address API know a municipality.
func (tc *TestContext) AddLocality(code, name, context string, postalCodes ...string) {
	tc.ban.add(code, name, context, postalCodes)
}

// FailGeocoder makes the fake address API answer 503 until restored.
func (tc *TestContext) FailGeocoder(failing bool) {
	tc.ban.setFailing(failing)
}

type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) to(addr string) []mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []mail.Message
	for _, m := range o.sent {
		if strings.EqualFold(m.To, addr) {
			out = append(out, m)
		}
	}
	return out
}
