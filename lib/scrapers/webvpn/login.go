package webvpn

import (
	"context"
	"encoding/json"
	"fmt"
	"gradewatch/lib/restyutil"
	"gradewatch/lib/telemetry"
	"gradewatch/lib/textutil"
	"gradewatch/lib/timezone"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("scrapers/webvpn")

const (
	StepWarmUp = "warm-up"
	StepToken  = "token"
	StepInput  = "input"
	StepLogin  = "login"
	StepAccess = "access"
)

// Authenticator logs identities into the gateway. The zero value uses the
// default origin and the loose login verdict.
type Authenticator struct {
	Origin  Origin
	Verdict LoginVerdict
	// HttpOutput is passed on to every session created.
	HttpOutput restyutil.InstrumentOutput
}

func (a Authenticator) origin() Origin {
	if a.Origin.BaseUrl == "" {
		return DefaultOrigin()
	}
	return a.Origin
}

func (a Authenticator) verdict() LoginVerdict {
	if a.Verdict == nil {
		return LooseVerdict
	}
	return a.Verdict
}

var csrfTokenRegex = regexp.MustCompile(`csrf-token=([^;]+)`)

var inputProfile = Profile{
	Name: "input",
	Headers: map[string]string{
		"Content-Type": "text/plain;charset=UTF-8",
	},
}

type inputField struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type loginRequest struct {
	LoginScene  string `json:"login_scene"`
	AccountType string `json:"account_type"`
	Account     string `json:"account"`
	Password    string `json:"password"`
}

func transportError(step string, err error) *AuthError {
	return &AuthError{Kind: Transport, Step: step, Err: err}
}

// Login runs the gateway's login handshake for identity using its
// pre-encrypted secret. On failure the partial session is invalidated and
// an *AuthError is returned.
func (a Authenticator) Login(ctx context.Context, identity, encryptedSecret string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	origin := a.origin()
	span.SetAttributes(
		attribute.String("webvpn.identity", identity),
		attribute.String("webvpn.base_url", origin.BaseUrl),
	)

	session, err := newSession(identity, SessionOptions{
		Origin:     origin,
		HttpOutput: a.HttpOutput,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create session")
		return nil, err
	}

	err = a.login(ctx, session, identity, encryptedSecret)
	if err != nil {
		session.Invalidate()
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return nil, err
	}

	slog.InfoContext(ctx, "logged into webvpn", "identity", identity)
	return session, nil
}

func (a Authenticator) login(ctx context.Context, session *Session, identity, secret string) error {
	origin := session.Origin()

	err := session.Scope(ctx, Profile{Name: StepWarmUp}, func(s *Scope) error {
		_, err := s.R().Get("/")
		if err != nil {
			return transportError(StepWarmUp, err)
		}
		_, err = s.R().Get(origin.IamPath("/login"))
		if err != nil {
			return transportError(StepWarmUp, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	var csrfToken string
	err = session.Scope(ctx, Profile{Name: StepToken}, func(s *Scope) error {
		res, err := s.R().
			SetQueryParams(map[string]string{
				"method":        "get",
				"host":          origin.IamHost,
				"scheme":        "https",
				"path":          "/login",
				"vpn_timestamp": strconv.FormatInt(timezone.UnixMilli(), 10),
			}).
			Get("/wengine-vpn/cookie")
		if err != nil {
			return transportError(StepToken, err)
		}
		groups := csrfTokenRegex.FindStringSubmatch(res.String())
		if len(groups) < 2 {
			return &AuthError{
				Kind: TokenUnavailable,
				Step: StepToken,
				Err:  fmt.Errorf("no csrf token in response (status %d)", res.StatusCode()),
			}
		}
		csrfToken = strings.TrimSpace(groups[1])
		return nil
	})
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "got csrf token", "token", textutil.Truncate(csrfToken, 10))

	err = session.Scope(ctx, inputProfile, func(s *Scope) error {
		fields := []inputField{
			{Type: "text", Value: identity},
			{Type: "password", Value: secret},
		}
		for _, field := range fields {
			body, err := json.Marshal(field)
			if err != nil {
				return err
			}
			_, err = s.R().SetBody(body).Post("/wengine-vpn/input")
			if err != nil {
				return transportError(StepInput, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	loginProfile := Profile{
		Name: StepLogin,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			"Csrf-Token":      csrfToken,
			"X-Version-Check": "0",
			"X-Fe-Version":    origin.FrontendVersion,
			"Accept-Language": "zh-CN",
		},
	}
	return session.Scope(ctx, loginProfile, func(s *Scope) error {
		res, err := s.R().
			SetQueryParams(origin.IamQuery).
			SetBody(loginRequest{
				LoginScene:  "feilian",
				AccountType: "userid",
				Account:     identity,
				Password:    secret,
			}).
			Post(origin.IamPath("/api/v1/login"))
		if err != nil {
			return transportError(StepLogin, err)
		}
		if res.StatusCode() != http.StatusOK || !a.verdict()(res.StatusCode(), res.Body()) {
			return &AuthError{
				Kind: CredentialsRejected,
				Step: StepLogin,
				Err: fmt.Errorf(
					"login rejected (status %d): %s",
					res.StatusCode(), textutil.Truncate(res.String(), 120),
				),
			}
		}
		return nil
	})
}

// AccessResource enters the academic system through the gateway. It
// reports true when the home page answers with 200 or contains the
// resource marker. The session is invalidated when it reports false or
// fails.
func (a Authenticator) AccessResource(ctx context.Context, session *Session) (bool, error) {
	ctx, span := tracer.Start(ctx, "AccessResource")
	defer span.End()

	var ok bool
	err := session.Scope(ctx, Profile{Name: StepAccess}, func(s *Scope) error {
		origin := s.Origin()

		_, err := s.R().
			SetQueryParam("wrdrecordvisit", strconv.FormatInt(timezone.UnixMilli(), 10)).
			Get(origin.EamsPath(""))
		if err != nil {
			return transportError(StepAccess, err)
		}

		res, err := s.R().Get(origin.EamsPath("home.action"))
		if err != nil {
			return transportError(StepAccess, err)
		}
		ok = res.StatusCode() == http.StatusOK ||
			strings.Contains(res.String(), origin.ResourceMarker)
		return nil
	})
	if err != nil {
		session.Invalidate()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to access academic system")
		return false, err
	}
	if !ok {
		session.Invalidate()
		span.SetStatus(codes.Error, "academic system not reachable")
	}
	return ok, nil
}

// Open logs in and enters the academic system, it is what a polling cycle
// needs before fetching anything.
func (a Authenticator) Open(ctx context.Context, identity, encryptedSecret string) (*Session, error) {
	session, err := a.Login(ctx, identity, encryptedSecret)
	if err != nil {
		return nil, err
	}
	ok, err := a.AccessResource(ctx, session)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &AuthError{Kind: ResourceUnavailable, Step: StepAccess}
	}
	return session, nil
}
