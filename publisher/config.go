package publisher

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"offer_letter_publisher/render"
)

const (
	DefaultTarget     = "6281234567890"
	DefaultHost       = "wa.me"
	DefaultEndpoint   = "http://localhost:3000/api/upload"
	DefaultTimeout    = 60 * time.Second
	DefaultServerAddr = ":8080"
)

// Config holds everything the generate-and-deliver pipeline needs.
type Config struct {
	WhatsApp   WhatsAppConfig `json:"whatsapp" yaml:"whatsapp"`
	Upload     UploadConfig   `json:"upload" yaml:"upload"`
	Render     render.Options `json:"render" yaml:"render"`
	OutputDir  string         `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	ServerAddr string         `json:"server_addr,omitempty" yaml:"server_addr,omitempty"`
	LogLevel   string         `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// WhatsAppConfig names the chat the deep link opens.
type WhatsAppConfig struct {
	// Target is the recipient phone number in international form, digits only.
	Target string `json:"target" yaml:"target"`
	Host   string `json:"host,omitempty" yaml:"host,omitempty"`
}

// UploadConfig points at the remote object-storage collaborator.
type UploadConfig struct {
	Endpoint string   `json:"endpoint" yaml:"endpoint"`
	Timeout  Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Duration accepts "45s"-style strings or a number of seconds.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.set(raw)
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return d.set(raw)
}

func (d *Duration) set(raw any) error {
	switch v := raw.(type) {
	case string:
		if secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return d.set(secs)
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case nil:
	default:
		return fmt.Errorf("invalid duration %v", raw)
	}
	return nil
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		WhatsApp:   WhatsAppConfig{Target: DefaultTarget, Host: DefaultHost},
		Upload:     UploadConfig{Endpoint: DefaultEndpoint, Timeout: Duration(DefaultTimeout)},
		Render:     render.DefaultOptions(),
		OutputDir:  ".",
		ServerAddr: DefaultServerAddr,
		LogLevel:   "info",
	}
}

// LoadConfig reads a JSON or YAML config from disk on top of the defaults,
// then applies a .env file from the working directory and environment
// overrides. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, &cfg)
		default:
			err = json.Unmarshal(data, &cfg)
		}
		if err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.WhatsApp.Target = getEnv("WA_TARGET_NUMBER", c.WhatsApp.Target)
	c.WhatsApp.Host = getEnv("WA_HOST", c.WhatsApp.Host)
	c.Upload.Endpoint = getEnv("UPLOAD_ENDPOINT", c.Upload.Endpoint)
	if v, ok := os.LookupEnv("UPLOAD_TIMEOUT"); ok {
		if err := c.Upload.Timeout.set(v); err != nil {
			return fmt.Errorf("UPLOAD_TIMEOUT: %w", err)
		}
	}
	c.OutputDir = getEnv("OUTPUT_DIR", c.OutputDir)
	c.ServerAddr = getEnv("SERVER_ADDR", c.ServerAddr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	return nil
}

// Validate reports the first setting the pipeline cannot run with.
func (c Config) Validate() error {
	if c.WhatsApp.Target == "" {
		return errors.New("config must include whatsapp.target")
	}
	for _, r := range c.WhatsApp.Target {
		if r < '0' || r > '9' {
			return fmt.Errorf("whatsapp.target %q must contain digits only", c.WhatsApp.Target)
		}
	}
	if c.WhatsApp.Host == "" {
		return errors.New("config must include whatsapp.host")
	}
	if c.Upload.Endpoint == "" {
		return errors.New("config must include upload.endpoint")
	}
	if c.Upload.Timeout < 0 {
		return errors.New("upload.timeout must not be negative")
	}
	return c.Render.Validate()
}

func getEnv(key, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}
