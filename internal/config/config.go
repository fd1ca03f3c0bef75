package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all adapter configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Platform PlatformConfig
	GCP      GCPConfig
	Models   ModelsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PlatformConfig holds the content-platform API settings.
type PlatformConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIToken    string `mapstructure:"api_token"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	MaxItemMB   int64  `mapstructure:"max_item_mb"`
}

// GCPConfig holds cloud identity settings. Integration is the name of the
// environment slot carrying the base64-wrapped service account document.
type GCPConfig struct {
	Integration string `mapstructure:"integration"`
}

// ModelConfig holds settings for a single model adapter.
type ModelConfig struct {
	ModelID      string  `mapstructure:"model_id"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float64 `mapstructure:"temperature"`
	TopP         float64 `mapstructure:"top_p"`
	TopK         int     `mapstructure:"top_k"`
	SystemPrompt string  `mapstructure:"system_prompt"`
	Region       string  `mapstructure:"region"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
}

// ModelsConfig holds one section per supported provider.
type ModelsConfig struct {
	Bison      ModelConfig `mapstructure:"bison"`
	Gemini     ModelConfig `mapstructure:"gemini"`
	Claude     ModelConfig `mapstructure:"claude"`
	MistralOCR ModelConfig `mapstructure:"mistral_ocr"`
}

// ByProvider returns the model section for a registered provider name, or
// nil for an unknown name.
func (m *ModelsConfig) ByProvider(name string) *ModelConfig {
	switch name {
	case "bison":
		return &m.Bison
	case "gemini":
		return &m.Gemini
	case "claude":
		return &m.Claude
	case "mistral-ocr":
		return &m.MistralOCR
	default:
		return nil
	}
}

// Load reads configuration from environment variables with the VTX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VTX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Platform defaults
	v.SetDefault("platform.base_url", "")
	v.SetDefault("platform.api_token", "")
	v.SetDefault("platform.timeout_secs", 60)
	v.SetDefault("platform.max_item_mb", 50)

	// GCP defaults
	v.SetDefault("gcp.integration", "GCP_SERVICE_ACCOUNT")

	// Model defaults, one section per provider
	setModelDefaults(v, "bison", "chat-bison@002")
	setModelDefaults(v, "gemini", "gemini-2.5-flash")
	setModelDefaults(v, "claude", "claude-opus-4@20250514")
	setModelDefaults(v, "mistral_ocr", "mistral-ocr-2505")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":           "VTX_SERVER_PORT",
		"server.read_timeout":   "VTX_SERVER_READ_TIMEOUT",
		"server.write_timeout":  "VTX_SERVER_WRITE_TIMEOUT",
		"server.environment":    "VTX_SERVER_ENVIRONMENT",
		"log.level":             "VTX_LOG_LEVEL",
		"log.format":            "VTX_LOG_FORMAT",
		"platform.base_url":     "VTX_PLATFORM_BASE_URL",
		"platform.api_token":    "VTX_PLATFORM_API_TOKEN",
		"platform.timeout_secs": "VTX_PLATFORM_TIMEOUT_SECS",
		"platform.max_item_mb":  "VTX_PLATFORM_MAX_ITEM_MB",
		"gcp.integration":       "VTX_GCP_INTEGRATION",
	}
	for _, section := range []string{"bison", "gemini", "claude", "mistral_ocr"} {
		upper := strings.ToUpper(section)
		for _, key := range []string{"model_id", "max_tokens", "temperature", "top_p", "top_k", "system_prompt", "region", "timeout_secs"} {
			envBindings["models."+section+"."+key] = "VTX_MODELS_" + upper + "_" + strings.ToUpper(key)
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}
	cfg.Server = ServerConfig{
		Port:         v.GetString("server.port"),
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Platform = PlatformConfig{
		BaseURL:     v.GetString("platform.base_url"),
		APIToken:    v.GetString("platform.api_token"),
		TimeoutSecs: v.GetInt("platform.timeout_secs"),
		MaxItemMB:   v.GetInt64("platform.max_item_mb"),
	}
	cfg.GCP = GCPConfig{
		Integration: v.GetString("gcp.integration"),
	}
	cfg.Models = ModelsConfig{
		Bison:      modelSection(v, "bison"),
		Gemini:     modelSection(v, "gemini"),
		Claude:     modelSection(v, "claude"),
		MistralOCR: modelSection(v, "mistral_ocr"),
	}

	return cfg, nil
}

func setModelDefaults(v *viper.Viper, section, modelID string) {
	v.SetDefault("models."+section+".model_id", modelID)
	v.SetDefault("models."+section+".max_tokens", 1024)
	v.SetDefault("models."+section+".temperature", 0.2)
	v.SetDefault("models."+section+".top_p", 0.7)
	v.SetDefault("models."+section+".top_k", 40)
	v.SetDefault("models."+section+".system_prompt", "")
	v.SetDefault("models."+section+".region", "")
	v.SetDefault("models."+section+".timeout_secs", 120)
}

func modelSection(v *viper.Viper, section string) ModelConfig {
	return ModelConfig{
		ModelID:      v.GetString("models." + section + ".model_id"),
		MaxTokens:    v.GetInt("models." + section + ".max_tokens"),
		Temperature:  v.GetFloat64("models." + section + ".temperature"),
		TopP:         v.GetFloat64("models." + section + ".top_p"),
		TopK:         v.GetInt("models." + section + ".top_k"),
		SystemPrompt: v.GetString("models." + section + ".system_prompt"),
		Region:       v.GetString("models." + section + ".region"),
		TimeoutSecs:  v.GetInt("models." + section + ".timeout_secs"),
	}
}
