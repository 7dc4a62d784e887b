package cmdutil

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/steviee/nidhogg/internal/config"
	"github.com/steviee/nidhogg/pkg/data"
	"github.com/steviee/nidhogg/pkg/mojang"
	"github.com/steviee/nidhogg/pkg/yggdrasil"
)

// Env is the resolved configuration a command runs with.
type Env struct {
	Config      *config.Config
	SessionPath string
}

// LoadEnv loads the configuration file and applies the overrides viper has
// collected from the environment.
func LoadEnv() (*Env, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	ApplyOverrides(cfg)
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	sessionPath := viper.GetString("session_file")
	if sessionPath == "" {
		sessionPath, err = config.GetSessionPath()
		if err != nil {
			return nil, err
		}
	}

	slog.Debug("loaded config", "path", path, "session", sessionPath)
	return &Env{Config: cfg, SessionPath: sessionPath}, nil
}

// ConfigPath returns the --config path, or the default location.
func ConfigPath() (string, error) {
	if path := viper.GetString("config"); path != "" {
		return path, nil
	}
	return config.GetConfigPath()
}

// ApplyOverrides copies values set through viper (environment variables
// such as NIDHOGG_ENDPOINTS_API) over cfg.
func ApplyOverrides(cfg *config.Config) {
	overrideString(&cfg.Endpoints.Auth, "endpoints.auth")
	overrideString(&cfg.Endpoints.API, "endpoints.api")
	overrideString(&cfg.Endpoints.Session, "endpoints.session")
	overrideString(&cfg.HTTP.UserAgent, "http.user_agent")
	overrideString(&cfg.Auth.ClientToken, "auth.client_token")
	overrideString(&cfg.Logging.Level, "logging.level")

	if viper.IsSet("http.timeout") {
		cfg.HTTP.Timeout = viper.GetDuration("http.timeout")
	}
	if n := viper.GetInt("batch.concurrency"); n > 0 {
		cfg.Batch.Concurrency = n
	}
}

func overrideString(dst *string, key string) {
	if v := viper.GetString(key); v != "" {
		*dst = v
	}
}

// AuthClient creates an authentication client from the configuration.
func (e *Env) AuthClient() (*yggdrasil.Client, error) {
	cfg, err := e.Config.YggdrasilConfig()
	if err != nil {
		return nil, err
	}
	return yggdrasil.NewClient(cfg), nil
}

// MojangClient creates an account API client from the configuration.
func (e *Env) MojangClient() (*mojang.Client, error) {
	cfg, err := e.Config.MojangConfig()
	if err != nil {
		return nil, err
	}
	return mojang.NewClient(cfg), nil
}

// Session returns the stored session.
func (e *Env) Session() (data.Session, error) {
	stored, err := config.LoadSession(e.SessionPath)
	if err != nil {
		return data.Session{}, err
	}
	return stored.Session(), nil
}

// SaveSession stores session for later commands.
func (e *Env) SaveSession(session data.Session) error {
	return config.SaveSession(e.SessionPath, session)
}

// ClearSession removes the stored session.
func (e *Env) ClearSession() error {
	return config.ClearSession(e.SessionPath)
}

// Credentials builds account credentials for username. The password comes
// from NIDHOGG_PASSWORD or, when fromStdin is set, the first line of in.
func Credentials(username string, fromStdin bool, in io.Reader) (data.AccountCredentials, error) {
	creds := data.AccountCredentials{Username: username}

	if fromStdin {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return creds, fmt.Errorf("read password: %w", err)
		}
		creds.Password = strings.TrimRight(line, "\r\n")
	} else {
		creds.Password = viper.GetString("password")
	}

	if err := creds.Validate(); err != nil {
		return creds, fmt.Errorf("%w (use --password-stdin or NIDHOGG_PASSWORD)", err)
	}
	return creds, nil
}
