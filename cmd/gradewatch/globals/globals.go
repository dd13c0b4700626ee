package globals

import (
	"context"
	"fmt"
	"gradewatch/lib/scrapers/webvpn"
)

type key struct{}

type Value struct {
	Config  Config
	Verbose bool
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}

// Target is the single target commands other than monitor act on.
func (v *Value) Target() (Target, error) {
	targets := v.Config.AllTargets()
	if len(targets) == 0 {
		return Target{}, fmt.Errorf("no identity configured, set identity in config.json5 or GRADEWATCH_IDENTITY")
	}
	t := targets[0]
	if t.Secret == "" {
		return Target{}, fmt.Errorf("no secret configured for %s", t.Identity)
	}
	return t, nil
}

// Session logs into the gateway and enters the academic system.
func (v *Value) Session(ctx context.Context) (*webvpn.Session, error) {
	target, err := v.Target()
	if err != nil {
		return nil, err
	}
	auth, err := v.Config.Authenticator(v.Verbose)
	if err != nil {
		return nil, err
	}
	return auth.Open(ctx, target.Identity, target.Secret)
}
