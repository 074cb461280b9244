package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	envconfig "speech-whisper/internal/config"
)

// KnownProviders lists the provider types the engine can be configured with.
var KnownProviders = []string{"whisper_cpp", "whisper_server", "openai"}

// AppConfig is the whole s2t configuration file.
type AppConfig struct {
	WorkDir    string           `yaml:"work_dir" validate:"required"`
	Log        LogConfig        `yaml:"log"`
	Capture    CaptureConfig    `yaml:"capture"`
	Engine     EngineConfig     `yaml:"engine"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Server     ServerConfig     `yaml:"server"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Development bool `yaml:"development"`
}

// CaptureConfig describes how microphone audio is captured
type CaptureConfig struct {
	Backend            string `yaml:"backend" validate:"oneof=ffmpeg arecord"`
	BinaryPath         string `yaml:"binary_path" validate:"required"`
	InputFormat        string `yaml:"input_format,omitempty"`
	InputDevice        string `yaml:"input_device,omitempty"`
	SampleRate         int    `yaml:"sample_rate" validate:"min=8000,max=192000"`
	MinDurationSec     int    `yaml:"min_duration_sec"`
	MaxDurationSec     int    `yaml:"max_duration_sec"`
	DefaultDurationSec int    `yaml:"default_duration_sec"`
}

// EngineConfig selects and configures the transcription provider
type EngineConfig struct {
	Provider    string                    `yaml:"provider" validate:"required"`
	Model       string                    `yaml:"model"`
	Language    string                    `yaml:"language"`
	TimeoutSec  int                       `yaml:"timeout_sec" validate:"min=0"`
	FFmpegPath  string                    `yaml:"ffmpeg_path" validate:"required"`
	FFprobePath string                    `yaml:"ffprobe_path" validate:"required"`
	Providers   map[string]ProviderConfig `yaml:"providers,omitempty"`
}

// ProviderConfig represents configuration for a single provider
type ProviderConfig struct {
	Auth     map[string]interface{} `yaml:"auth,omitempty"`
	Settings map[string]interface{} `yaml:"settings,omitempty"`
}

// TranscriptConfig says where transcripts are written
type TranscriptConfig struct {
	Dir      string `yaml:"dir" validate:"required"`
	FileName string `yaml:"file_name" validate:"required,excludesall=/\\"`
}

// ServerConfig represents API server configuration
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port" validate:"required,numeric"`
	Environment     string `yaml:"environment" validate:"oneof=development production"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec" validate:"min=0"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec" validate:"min=0"`
	IdleTimeoutSec  int    `yaml:"idle_timeout_sec" validate:"min=0"`
	MaxUploadMB     int    `yaml:"max_upload_mb" validate:"min=1"`
}

// Load reads the YAML file at configPath (empty means defaults only), applies
// environment overrides and defaults, then validates.
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	if configPath != "" {
		configPath = os.ExpandEnv(configPath)

		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	config.expandEnvironmentVariables()
	config.applyEnvOverrides()
	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// DefaultConfigPath returns $S2T_CONFIG, or ./config.yaml when it exists, or "".
func DefaultConfigPath() string {
	if path := os.Getenv("S2T_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

// expandEnvironmentVariables replaces "${VAR}" values in provider sections
// and expands variables in path fields.
func (c *AppConfig) expandEnvironmentVariables() {
	for _, provider := range c.Engine.Providers {
		expandMap(provider.Auth)
		expandMap(provider.Settings)
	}

	c.WorkDir = os.ExpandEnv(c.WorkDir)
	c.Transcript.Dir = os.ExpandEnv(c.Transcript.Dir)
	c.Capture.BinaryPath = os.ExpandEnv(c.Capture.BinaryPath)
	c.Engine.FFmpegPath = os.ExpandEnv(c.Engine.FFmpegPath)
	c.Engine.FFprobePath = os.ExpandEnv(c.Engine.FFprobePath)
}

func expandMap(values map[string]interface{}) {
	for key, value := range values {
		if strValue, ok := value.(string); ok {
			if strings.HasPrefix(strValue, "${") && strings.HasSuffix(strValue, "}") {
				envVar := strings.TrimSuffix(strings.TrimPrefix(strValue, "${"), "}")
				values[key] = os.Getenv(envVar)
			}
		}
	}
}

// applyEnvOverrides lets the environment win over the file for the handful
// of settings people change per machine.
func (c *AppConfig) applyEnvOverrides() {
	if v := os.Getenv("S2T_WORK_DIR"); v != "" {
		c.WorkDir = v
	}
	if v := os.Getenv("S2T_PROVIDER"); v != "" {
		c.Engine.Provider = v
	}

	c.setProviderValue("whisper_cpp", "settings", "binary_path", os.Getenv("WHISPER_CPP_BINARY"))
	c.setProviderValue("whisper_cpp", "settings", "model_path", os.Getenv("WHISPER_CPP_MODEL"))
	c.setProviderValue("whisper_server", "settings", "base_url", os.Getenv("WHISPER_SERVER_URL"))

	// The API key only fills a gap; an explicit key in the file wins.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if p, ok := c.Engine.Providers["openai"]; !ok || p.Auth["api_key"] == nil || p.Auth["api_key"] == "" {
			c.setProviderValue("openai", "auth", "api_key", key)
		}
	}
}

func (c *AppConfig) setProviderValue(provider, section, key, value string) {
	if value == "" {
		return
	}
	if c.Engine.Providers == nil {
		c.Engine.Providers = make(map[string]ProviderConfig)
	}

	p := c.Engine.Providers[provider]
	switch section {
	case "auth":
		if p.Auth == nil {
			p.Auth = make(map[string]interface{})
		}
		p.Auth[key] = value
	default:
		if p.Settings == nil {
			p.Settings = make(map[string]interface{})
		}
		p.Settings[key] = value
	}
	c.Engine.Providers[provider] = p
}

// setDefaults sets default values for the configuration
func (c *AppConfig) setDefaults() {
	c.WorkDir = lo.Ternary(c.WorkDir == "", "data", c.WorkDir)

	if c.Capture.Backend == "" {
		c.Capture.Backend = "ffmpeg"
	}
	if c.Capture.BinaryPath == "" {
		c.Capture.BinaryPath = c.Capture.Backend
	}
	if c.Capture.SampleRate == 0 {
		c.Capture.SampleRate = 44100
	}
	if c.Capture.MinDurationSec == 0 {
		c.Capture.MinDurationSec = 3
	}
	if c.Capture.MaxDurationSec == 0 {
		c.Capture.MaxDurationSec = 30
	}
	if c.Capture.DefaultDurationSec == 0 {
		c.Capture.DefaultDurationSec = 5
	}

	if c.Engine.Provider == "" {
		c.Engine.Provider = "whisper_cpp"
	}
	if c.Engine.Model == "" {
		c.Engine.Model = "base"
	}
	if c.Engine.Language == "" {
		c.Engine.Language = "auto"
	}
	if c.Engine.FFmpegPath == "" {
		c.Engine.FFmpegPath = "ffmpeg"
	}
	if c.Engine.FFprobePath == "" {
		c.Engine.FFprobePath = "ffprobe"
	}

	if c.Transcript.Dir == "" {
		c.Transcript.Dir = c.WorkDir
	}
	if c.Transcript.FileName == "" {
		c.Transcript.FileName = "transcription.txt"
	}

	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8081"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if c.Server.ReadTimeoutSec == 0 {
		c.Server.ReadTimeoutSec = 60
	}
	if c.Server.WriteTimeoutSec == 0 {
		// long enough for a max-length recording plus inference
		c.Server.WriteTimeoutSec = 600
	}
	if c.Server.IdleTimeoutSec == 0 {
		c.Server.IdleTimeoutSec = 120
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 25
	}
}

// Validate validates the configuration
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if !lo.Contains(KnownProviders, c.Engine.Provider) {
		return fmt.Errorf("unknown provider %q (known: %s)", c.Engine.Provider, strings.Join(KnownProviders, ", "))
	}

	if err := envconfig.ValidateDurationRange(c.Capture.MinDurationSec, c.Capture.MaxDurationSec, c.Capture.DefaultDurationSec); err != nil {
		return err
	}

	return envconfig.ValidateTimeout(c.EngineTimeout(), "engine")
}

// EngineTimeout is the optional inference deadline; zero means none.
func (c *AppConfig) EngineTimeout() time.Duration {
	return time.Duration(c.Engine.TimeoutSec) * time.Second
}

// ProviderConfigMap returns the selected provider's configuration in the
// {"auth": ..., "settings": ...} shape provider creators expect.
func (c *AppConfig) ProviderConfigMap() map[string]interface{} {
	p := c.Engine.Providers[c.Engine.Provider]

	settings := make(map[string]interface{}, len(p.Settings)+3)
	for k, v := range p.Settings {
		settings[k] = v
	}
	if _, ok := settings["language"]; !ok {
		settings["language"] = c.Engine.Language
	}
	if _, ok := settings["ffmpeg_path"]; !ok {
		settings["ffmpeg_path"] = c.Engine.FFmpegPath
	}
	if _, ok := settings["model"]; !ok && c.Engine.Provider != "openai" {
		settings["model"] = c.Engine.Model
	}
	if _, ok := settings["temp_dir"]; !ok {
		settings["temp_dir"] = filepath.Join(c.WorkDir, "tmp")
	}

	auth := make(map[string]interface{}, len(p.Auth))
	for k, v := range p.Auth {
		auth[k] = v
	}

	return map[string]interface{}{
		"settings": settings,
		"auth":     auth,
	}
}
