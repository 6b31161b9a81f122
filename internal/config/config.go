package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// SafetyConfig extends the built-in crisis screening phrase list
type SafetyConfig struct {
	ExtraPhrases []string `yaml:"extra_phrases"`
}

// Config holds all application configuration
type Config struct {
	OpenAI      OpenAIConfig
	Safety      SafetyConfig
	DBPath      string
	StaticDir   string
	SettingsDir string
}

// Load loads configuration from the environment and settings files.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	// Missing .env is fine; real env vars win either way
	_ = godotenv.Load()

	settingsDir := os.Getenv("SETTINGS_DIR")
	if settingsDir == "" {
		settingsDir = "settings"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/app.db"
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "static"
	}

	cfg := &Config{
		DBPath:      dbPath,
		StaticDir:   staticDir,
		SettingsDir: settingsDir,
	}

	// Load OpenAI config; the env var overrides the secrets file
	openaiCfg, err := loadOpenAIConfig(filepath.Join(settingsDir, "secrets", "openai.yaml"))
	if err == nil {
		cfg.OpenAI = *openaiCfg
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.OpenAI.Model = model
	}

	// Optional extra crisis phrases
	safetyCfg, err := loadSafetyConfig(filepath.Join(settingsDir, "safety.yaml"))
	if err == nil {
		cfg.Safety = *safetyCfg
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return cfg, nil
}

// loadOpenAIConfig loads OpenAI configuration from a YAML file
func loadOpenAIConfig(path string) (*OpenAIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg OpenAIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadSafetyConfig loads extra screening phrases from a YAML file
func loadSafetyConfig(path string) (*SafetyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg SafetyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
