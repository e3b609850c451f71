package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Paths struct {
		LogDir     string `yaml:"log_dir" validate:"required"`
		OutputDir  string `yaml:"output_dir" validate:"required"`
		SummaryDir string `yaml:"summary_dir" validate:"required"`
		UploadDir  string `yaml:"upload_dir" validate:"required"`
	} `yaml:"paths"`
	OCR struct {
		Provider string        `yaml:"provider" validate:"oneof=TESSERACT NONE"`
		Binary   string        `yaml:"binary"`
		Language string        `yaml:"language"`
		Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	} `yaml:"ocr"`
	LLM struct {
		Provider    string        `yaml:"provider" validate:"oneof=DEEPSEEK CLAUDE NONE"`
		Model       string        `yaml:"model"`
		Endpoint    string        `yaml:"endpoint"`
		APIKey      string        `yaml:"-"`
		MaxTokens   int           `yaml:"max_tokens" validate:"gte=0"`
		Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
		System      string        `yaml:"system"`
		Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
		Summary     struct {
			Enabled     bool    `yaml:"enabled"`
			MaxTokens   int     `yaml:"max_tokens"`
			Temperature float32 `yaml:"temperature"`
		} `yaml:"summary"`
	} `yaml:"llm"`
	Email struct {
		Enabled  bool          `yaml:"enabled"`
		Endpoint string        `yaml:"endpoint"`
		APIKey   string        `yaml:"-"`
		From     string        `yaml:"from"`
		To       string        `yaml:"to"`
		Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	} `yaml:"email"`
	Pipeline struct {
		Workers int `yaml:"workers" validate:"gte=1,lte=32"`
	} `yaml:"pipeline"`
	Journal struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"journal"`
	Archive struct {
		Enabled        bool   `yaml:"enabled"`
		Endpoint       string `yaml:"endpoint"`
		Region         string `yaml:"region"`
		Bucket         string `yaml:"bucket"`
		Prefix         string `yaml:"prefix"`
		AccessKey      string `yaml:"-"`
		SecretKey      string `yaml:"-"`
		UseSSL         bool   `yaml:"use_ssl"`
		ForcePathStyle bool   `yaml:"force_path_style"`
	} `yaml:"archive"`
	Server struct {
		Port        int      `yaml:"port" validate:"gte=1,lte=65535"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Retention struct {
		Days int `yaml:"days" validate:"gte=0"`
	} `yaml:"retention"`
}

var validate = validator.New()

// EmailConfigured reports whether every SendGrid setting is present.
func (c *Config) EmailConfigured() bool {
	return c.Email.Enabled && c.Email.APIKey != "" && c.Email.From != "" && c.Email.To != ""
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.LLM.Provider != "NONE" && c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required for provider '%s'", c.LLM.Provider)
	}
	if c.Archive.Enabled && (c.Archive.Bucket == "" || c.Archive.Region == "") {
		return errors.New("archive.bucket and archive.region are required when archive is enabled")
	}
	if c.Email.Enabled {
		if c.Email.From != "" && !strings.Contains(c.Email.From, "@") {
			return fmt.Errorf("email.from '%s' is not an address", c.Email.From)
		}
		if c.Email.To != "" && !strings.Contains(c.Email.To, "@") {
			return fmt.Errorf("email.to '%s' is not an address", c.Email.To)
		}
	}
	return nil
}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	var c Config
	c.Paths.LogDir = "logs"
	c.Paths.OutputDir = "output"
	c.Paths.SummaryDir = "summaries"
	c.Paths.UploadDir = "uploads"
	c.OCR.Provider = "TESSERACT"
	c.OCR.Binary = "tesseract"
	c.OCR.Language = "eng"
	c.OCR.Timeout = 60 * time.Second
	c.LLM.Provider = "DEEPSEEK"
	c.LLM.Model = "deepseek-chat"
	c.LLM.MaxTokens = 500
	c.LLM.Temperature = 0.1
	c.LLM.Timeout = 30 * time.Second
	c.LLM.Summary.Enabled = true
	c.LLM.Summary.MaxTokens = 800
	c.LLM.Summary.Temperature = 0.7
	c.Email.Endpoint = "https://api.sendgrid.com/v3/mail/send"
	c.Email.Timeout = 15 * time.Second
	c.Pipeline.Workers = 1
	c.Archive.Prefix = "tradeshot"
	c.Server.Port = 8001
	return c
}

// LoadConfig reads path on top of Defaults, overlays secrets and overrides
// from the environment, and validates the result. A missing file is not an
// error; the defaults plus environment are used instead.
func LoadConfig(path string) (*Config, error) {
	c := Defaults()

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	setStr(&c.LLM.Provider, "TRADESHOT_LLM_PROVIDER")
	setStr(&c.OCR.Provider, "TRADESHOT_OCR_PROVIDER")
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NONE"
	}
	c.LLM.Provider = strings.ToUpper(c.LLM.Provider)
	c.OCR.Provider = strings.ToUpper(c.OCR.Provider)

	applyEnv(&c)

	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = 1
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// applyEnv copies secrets and TRADESHOT_* overrides into the config. Only
// non-empty variables take effect. Providers must already be normalised.
func applyEnv(c *Config) {
	switch c.LLM.Provider {
	case "CLAUDE":
		setStr(&c.LLM.APIKey, "CLAUDE_API_KEY")
		setStr(&c.LLM.Endpoint, "CLAUDE_API_ENDPOINT")
	default:
		setStr(&c.LLM.APIKey, "DeepSeek_api_key")
		setStr(&c.LLM.APIKey, "DEEPSEEK_API_KEY")
		setStr(&c.LLM.Endpoint, "DeepSeek_api_base")
		setStr(&c.LLM.Endpoint, "DEEPSEEK_API_BASE")
	}

	setStr(&c.Email.APIKey, "SENDGRID_API_KEY")
	setStr(&c.Email.From, "FROM_EMAIL")
	setStr(&c.Email.To, "TO_EMAIL")

	setStr(&c.Archive.AccessKey, "TRADESHOT_S3_ACCESS_KEY")
	setStr(&c.Archive.SecretKey, "TRADESHOT_S3_SECRET_KEY")
	setStr(&c.Archive.Bucket, "TRADESHOT_S3_BUCKET")

	setStr(&c.Paths.LogDir, "TRADER_LOG_DIR")
	setStr(&c.Paths.LogDir, "TRADESHOT_LOG_DIR")
	setStr(&c.Paths.OutputDir, "TRADESHOT_OUTPUT_DIR")
	setInt(&c.Pipeline.Workers, "TRADESHOT_WORKERS")
	setInt(&c.Server.Port, "TRADESHOT_PORT")
	setInt(&c.Retention.Days, "TRADER_LOG_RETENTION_DAYS")
	setBool(&c.Email.Enabled, "TRADESHOT_EMAIL_ENABLED")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
