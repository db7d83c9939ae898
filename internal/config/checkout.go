package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// ClientConfig configures the terminal checkout client.
type ClientConfig struct {
	BackendURL    string        `mapstructure:"backend_url"`
	SessionID     string        `mapstructure:"session"`
	Seats         string        `mapstructure:"seats"`
	Hold          time.Duration `mapstructure:"hold"`
	Tick          time.Duration `mapstructure:"tick"`
	MessageTTL    time.Duration `mapstructure:"message_ttl"`
	LoaderDelay   time.Duration `mapstructure:"loader_delay"`
	RedirectDelay time.Duration `mapstructure:"redirect_delay"`
	RequestTTL    time.Duration `mapstructure:"request_timeout"`
	DownloadDir   string        `mapstructure:"download_dir"`
	OpenDocument  bool          `mapstructure:"open_document"`
	Env           string        `mapstructure:"env"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFile       string        `mapstructure:"log_file"`
	ConfigFile    string        `mapstructure:"config"`
}

// ErrNoSelection means the client was started without a session or seat
// selection, so there is nothing to check out.
var ErrNoSelection = errors.New("a session id and at least one seat id are required")

// SeatIDs splits the comma separated seat flag.
func (c ClientConfig) SeatIDs() []model.ID { return model.SplitIDs(c.Seats) }

// ClientFlags declares the client's command line flags on fs.
func ClientFlags(fs *pflag.FlagSet) {
	fs.String("backend-url", "http://localhost:8080", "base URL of the reservation service")
	fs.StringP("session", "s", "", "session id being booked")
	fs.String("seats", "", "comma separated seat ids held for the session")
	fs.Duration("hold", 240*time.Second, "how long the seats are held")
	fs.Duration("tick", time.Second, "countdown refresh interval")
	fs.Duration("message-ttl", 3*time.Second, "how long error messages stay on screen")
	fs.Duration("loader-delay", 3*time.Second, "delay before the redirect loader after a purchase")
	fs.Duration("redirect-delay", 8*time.Second, "delay before leaving the checkout after a purchase")
	fs.Duration("request-timeout", 15*time.Second, "timeout of each backend request")
	fs.String("download-dir", ".", "directory the ticket PDF is saved to")
	fs.Bool("open-document", false, "open the ticket PDF once downloaded")
	fs.String("env", "dev", "environment (dev or prod)")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-file", "logs/checkout.log", "file the client logs to")
	fs.StringP("config", "c", "", "optional config file (yaml, json or toml)")
}

// LoadClientConfig resolves the client configuration. Precedence is
// flags, then CHECKOUT_* environment variables, then the optional config
// file, then defaults.
func LoadClientConfig(fs *pflag.FlagSet) (ClientConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("CHECKOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = errors.Join(bindErr, err)
		}
		if err := v.BindEnv(key); err != nil {
			bindErr = errors.Join(bindErr, err)
		}
	})
	if bindErr != nil {
		return ClientConfig{}, bindErr
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return ClientConfig{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if strings.TrimSpace(cfg.SessionID) == "" || len(cfg.SeatIDs()) == 0 {
		return cfg, ErrNoSelection
	}
	if cfg.Hold <= 0 {
		return cfg, fmt.Errorf("hold must be positive, got %s", cfg.Hold)
	}
	return cfg, nil
}
