// Package webvpntest provides an in-process fake of the webvpn gateway for
// tests of packages that need an authenticated session.
package webvpntest

import (
	"encoding/json"
	"gradewatch/lib/scrapers/webvpn"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const CsrfToken = "tok-0123456789abcdef"

// Request is a recorded request made against the gateway.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Form   url.Values
	Body   string
}

type Gateway struct {
	Server   *httptest.Server
	Origin   webvpn.Origin
	Identity string
	Secret   string

	mutex       sync.Mutex
	handlers    map[string]http.HandlerFunc
	requests    []Request
	logins      int
	rejectLogin bool
	noToken     bool
	homeStatus  int
}

// New starts a gateway accepting identity and secret, it is closed when the
// test ends.
func New(t testing.TB, identity, secret string) *Gateway {
	g := &Gateway{
		Identity:   identity,
		Secret:     secret,
		handlers:   map[string]http.HandlerFunc{},
		homeStatus: http.StatusOK,
	}
	g.Server = httptest.NewServer(g)
	t.Cleanup(g.Server.Close)

	g.Origin = webvpn.DefaultOrigin()
	g.Origin.BaseUrl = g.Server.URL
	g.Origin.RequestsPerSecond = 0
	return g
}

func (g *Gateway) Authenticator() webvpn.Authenticator {
	return webvpn.Authenticator{Origin: g.Origin}
}

// Handle registers a handler for a path relative to the academic system.
func (g *Gateway) Handle(eamsPath string, handler http.HandlerFunc) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.handlers[g.Origin.EamsPath(eamsPath)] = handler
}

func (g *Gateway) SetRejectLogin(reject bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.rejectLogin = reject
}

func (g *Gateway) SetNoToken(noToken bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.noToken = noToken
}

func (g *Gateway) SetHomeStatus(status int) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.homeStatus = status
}

// Requests returns every recorded request in arrival order.
func (g *Gateway) Requests() []Request {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	out := make([]Request, len(g.requests))
	copy(out, g.requests)
	return out
}

// RequestsTo returns the recorded requests whose path is the given
// academic system path.
func (g *Gateway) RequestsTo(eamsPath string) []Request {
	path := g.Origin.EamsPath(eamsPath)
	var out []Request
	for _, r := range g.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (g *Gateway) Logins() int {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.logins
}

func (g *Gateway) record(r *http.Request) Request {
	body, _ := io.ReadAll(r.Body)
	req := Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   string(body),
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		req.Form, _ = url.ParseQuery(string(body))
	}

	g.mutex.Lock()
	g.requests = append(g.requests, req)
	g.mutex.Unlock()
	return req
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := g.record(r)

	g.mutex.Lock()
	handler := g.handlers[r.URL.Path]
	rejectLogin := g.rejectLogin
	noToken := g.noToken
	homeStatus := g.homeStatus
	g.mutex.Unlock()

	if handler != nil {
		// the body was consumed by record
		r.Body = io.NopCloser(strings.NewReader(req.Body))
		if req.Form != nil {
			r.Form = req.Form
			r.PostForm = req.Form
		}
		handler(w, r)
		return
	}

	switch r.URL.Path {
	case "/", g.Origin.IamPath("/login"), g.Origin.EamsPath(""):
		w.WriteHeader(http.StatusOK)
	case "/wengine-vpn/cookie":
		if noToken {
			io.WriteString(w, "wengine_vpn_ticket=abc")
			return
		}
		io.WriteString(w, "wengine_vpn_ticket=abc; csrf-token="+CsrfToken+"; refresh=1")
	case "/wengine-vpn/input":
		if r.Header.Get("Content-Type") != "text/plain;charset=UTF-8" {
			http.Error(w, "bad content type", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	case g.Origin.IamPath("/api/v1/login"):
		g.serveLogin(w, req, rejectLogin)
	case g.Origin.EamsPath("home.action"):
		w.WriteHeader(homeStatus)
		if homeStatus == http.StatusOK {
			io.WriteString(w, "<html><title>南开大学教务系统</title></html>")
		}
	default:
		http.NotFound(w, r)
	}
}

func (g *Gateway) serveLogin(w http.ResponseWriter, req Request, reject bool) {
	g.mutex.Lock()
	g.logins++
	g.mutex.Unlock()

	var body struct {
		Account  string `json:"account"`
		Password string `json:"password"`
	}
	err := json.Unmarshal([]byte(req.Body), &body)
	if err != nil ||
		reject ||
		req.Header.Get("Csrf-Token") != CsrfToken ||
		body.Account != g.Identity ||
		body.Password != g.Secret {
		io.WriteString(w, `{"code":10001,"message":"invalid account or password"}`)
		return
	}
	io.WriteString(w, `{"code":0,"message":"success","data":{}}`)
}
