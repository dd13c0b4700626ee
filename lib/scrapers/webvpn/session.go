package webvpn

import (
	"context"
	"gradewatch/lib/restyutil"
	"gradewatch/lib/telemetry"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"sync/atomic"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Session is an authenticated cookie jar and header set bound to one
// identity. The gateway keeps navigation state on the server, so requests
// of a session are serialized through Scope.
type Session struct {
	identity string
	origin   Origin
	http     *resty.Client
	mutex    sync.Mutex
	invalid  atomic.Bool
}

type SessionOptions struct {
	Origin Origin
	// HttpOutput receives full request/response dumps when debug logging
	// is enabled, it may be nil.
	HttpOutput restyutil.InstrumentOutput
}

func newSession(identity string, opts SessionOptions) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.Origin.BaseUrl)
	client.SetCookieJar(jar)
	if opts.Origin.BrowserTransport {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(opts.Origin.Hostname()))
	client.SetTimeout(time.Second * 30)
	client.SetHeaders(map[string]string{
		"User-Agent":      opts.Origin.UserAgent,
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.5",
		"Origin":          opts.Origin.BaseUrl,
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-origin",
	})

	limit := rate.Inf
	if opts.Origin.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.Origin.RequestsPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, "scrapers/webvpn/http")
	restyutil.InstrumentClient(client, "webvpn", opts.HttpOutput)

	return &Session{
		identity: identity,
		origin:   opts.Origin,
		http:     client,
	}, nil
}

func (s *Session) Identity() string {
	return s.identity
}

func (s *Session) Origin() Origin {
	return s.origin
}

// Invalidate marks the session unusable, it is called on any failure since
// the server side navigation state is unknown afterwards.
func (s *Session) Invalidate() {
	s.invalid.Store(true)
}

func (s *Session) Valid() bool {
	return !s.invalid.Load()
}

// Headers returns a copy of the session's default header set.
func (s *Session) Headers() http.Header {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.http.Header.Clone()
}

// Profile is a set of headers that apply to a group of requests.
type Profile struct {
	Name    string
	Headers map[string]string
}

// Scope is handed to a request group, requests made through it carry the
// group's context and header profile.
type Scope struct {
	ctx     context.Context
	session *Session
}

func (s *Scope) Context() context.Context {
	return s.ctx
}

func (s *Scope) Origin() Origin {
	return s.session.origin
}

// R creates a request bound to the scope's context.
func (s *Scope) R() *resty.Request {
	return s.session.http.R().SetContext(s.ctx)
}

// SetHeaders overlays more headers for the remainder of the group.
func (s *Scope) SetHeaders(headers map[string]string) {
	s.session.http.SetHeaders(headers)
}

// Scope runs fn with exclusive use of the session and the profile's headers
// applied on top of the session defaults. The previous header set is
// restored when fn returns, fails or panics.
func (s *Session) Scope(ctx context.Context, profile Profile, fn func(*Scope) error) error {
	if !s.Valid() {
		return ErrSessionInvalid
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	saved := s.http.Header.Clone()
	defer func() {
		s.http.Header = saved
	}()
	s.http.SetHeaders(profile.Headers)

	return fn(&Scope{ctx: ctx, session: s})
}
