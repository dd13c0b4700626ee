package globals

import (
	"errors"
	"fmt"
	"gradewatch/lib/configutil"
	"gradewatch/lib/configutil/sqldb"
	"gradewatch/lib/gradestore"
	"gradewatch/lib/notify"
	"gradewatch/lib/restyutil"
	"gradewatch/lib/scrapers/webvpn"
	"log/slog"
	"os"
	"strconv"
)

type Target struct {
	Identity string `json:"identity"`
	// Secret is the password as encrypted by the login page's javascript,
	// it is captured once from a browser session.
	Secret          string `json:"secret"`
	SemesterID      string `json:"semester_id"`
	IntervalMinutes int    `json:"interval_minutes"`
}

type GatewayConfig struct {
	BaseUrl           string  `json:"base_url"`
	BrowserTransport  bool    `json:"browser_transport"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	// LoginVerdict is "loose" (default) or "structured".
	LoginVerdict string `json:"login_verdict"`
	// DumpHttp writes every exchange to <dev_state>/resty when verbose.
	DumpHttp bool `json:"dump_http"`
}

type Config struct {
	Identity        string `json:"identity"`
	Secret          string `json:"secret"`
	SemesterID      string `json:"semester_id"`
	IntervalMinutes int    `json:"interval_minutes"`
	// Targets are monitored in addition to the top level identity.
	Targets []Target `json:"targets"`

	Gateway     GatewayConfig `json:"gateway"`
	SnapshotDir string        `json:"snapshot_dir"`
	// Database selects the sql snapshot store instead of json files.
	Database sqldb.Struct `json:"database"`

	PushPlusToken string             `json:"pushplus_token"`
	Smtp          *notify.SmtpConfig `json:"smtp"`
	EmailTo       []string           `json:"email_to"`
}

const defaultSnapshotDir = "<dev_state>/snapshots"

// LoadConfig reads the json5 config (and its .local sibling), then applies
// GRADEWATCH_* environment overrides. A missing config file is fine when
// the environment provides everything.
func LoadConfig(path string) (Config, error) {
	configutil.LoadDotenv()

	config, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file, using environment only", "path", path)
	} else if err != nil {
		return Config{}, err
	}

	var databaseUrl string
	configutil.OverrideFromEnv(map[string]*string{
		"GRADEWATCH_IDENTITY":            &config.Identity,
		"GRADEWATCH_SECRET":              &config.Secret,
		"GRADEWATCH_SEMESTER":            &config.SemesterID,
		"GRADEWATCH_PUSHPLUS_TOKEN":      &config.PushPlusToken,
		"GRADEWATCH_SNAPSHOT_DIR":        &config.SnapshotDir,
		"GRADEWATCH_DATABASE_URL":        &databaseUrl,
		"GRADEWATCH_DATABASE_AUTH_TOKEN": &config.Database.AuthToken,
	})
	if databaseUrl != "" {
		config.Database.Url = databaseUrl
	}
	if interval, ok := os.LookupEnv("GRADEWATCH_INTERVAL"); ok && interval != "" {
		minutes, err := strconv.Atoi(interval)
		if err != nil {
			return Config{}, fmt.Errorf("GRADEWATCH_INTERVAL: %w", err)
		}
		config.IntervalMinutes = minutes
	}

	if config.SnapshotDir == "" {
		config.SnapshotDir = defaultSnapshotDir
	}
	return config, nil
}

// AllTargets returns the top level target followed by the extra targets,
// missing per-target fields are inherited from the top level.
func (c Config) AllTargets() []Target {
	var out []Target
	if c.Identity != "" {
		out = append(out, Target{
			Identity:        c.Identity,
			Secret:          c.Secret,
			SemesterID:      c.SemesterID,
			IntervalMinutes: c.IntervalMinutes,
		})
	}
	for _, t := range c.Targets {
		if t.SemesterID == "" {
			t.SemesterID = c.SemesterID
		}
		if t.IntervalMinutes == 0 {
			t.IntervalMinutes = c.IntervalMinutes
		}
		out = append(out, t)
	}
	return out
}

func (c Config) Authenticator(verbose bool) (webvpn.Authenticator, error) {
	origin := webvpn.DefaultOrigin()
	if c.Gateway.BaseUrl != "" {
		origin.BaseUrl = c.Gateway.BaseUrl
	}
	origin.BrowserTransport = c.Gateway.BrowserTransport
	if c.Gateway.RequestsPerSecond != 0 {
		origin.RequestsPerSecond = c.Gateway.RequestsPerSecond
	}

	auth := webvpn.Authenticator{Origin: origin}
	switch c.Gateway.LoginVerdict {
	case "", "loose":
		auth.Verdict = webvpn.LooseVerdict
	case "structured":
		auth.Verdict = webvpn.StructuredVerdict
	default:
		return webvpn.Authenticator{}, fmt.Errorf("unknown login verdict %q", c.Gateway.LoginVerdict)
	}

	if c.Gateway.DumpHttp && verbose {
		output, err := restyutil.NewFilesystemOutput("<dev_state>/resty")
		if err != nil {
			return webvpn.Authenticator{}, err
		}
		auth.HttpOutput = output
	}
	return auth, nil
}

// Notifier builds the configured sinks, the log sink is always included.
func (c Config) Notifier() notify.Notifier {
	sinks := notify.Multi{notify.Log{}}
	if c.PushPlusToken != "" {
		sinks = append(sinks, notify.NewPushPlus(notify.PushPlusOptions{Token: c.PushPlusToken}))
	}
	if c.Smtp != nil && len(c.EmailTo) > 0 {
		sinks = append(sinks, notify.NewEmail(*c.Smtp, c.EmailTo))
	}
	return sinks
}

func (c Config) OpenStore() (gradestore.Store, func(), error) {
	store, closer, err := gradestore.Open(c.SnapshotDir, c.Database)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		err := closer.Close()
		if err != nil {
			slog.Warn("failed to close snapshot store", "err", err)
		}
	}, nil
}
