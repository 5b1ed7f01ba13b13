package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Output        string        `mapstructure:"output"`
	Author        string        `mapstructure:"author"`
	InferGit      bool          `mapstructure:"infer_git"`
	GitTimeout    time.Duration `mapstructure:"git_timeout"`
	Concurrency   int           `mapstructure:"concurrency"`
	ServeAddr     string        `mapstructure:"serve_addr"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	LogLevel      string        `mapstructure:"log_level"`
	ColorTitle    string        `mapstructure:"color_title"`
	ColorLocation string        `mapstructure:"color_location"`
	ColorBase     string        `mapstructure:"color_base"`
	ColorDim      string        `mapstructure:"color_dim"`
	ColorSelected string        `mapstructure:"color_selected"`
	ColorBorder   string        `mapstructure:"color_border"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	setDefaults()

	viper.SetConfigName("virgil")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "virgil"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("VIRGIL")
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

func setDefaults() {
	viper.SetDefault("output", "file")
	viper.SetDefault("author", defaultAuthor())
	viper.SetDefault("infer_git", true)
	viper.SetDefault("git_timeout", 5*time.Second)
	viper.SetDefault("concurrency", 4)
	viper.SetDefault("serve_addr", "127.0.0.1:7420")
	viper.SetDefault("max_body_bytes", 1<<20)
	viper.SetDefault("watch_debounce", 200*time.Millisecond)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("color_title", "36")     // Cyan
	viper.SetDefault("color_location", "32")  // Green
	viper.SetDefault("color_base", "33")      // Yellow
	viper.SetDefault("color_dim", "90")       // Gray
	viper.SetDefault("color_selected", "212") // Pink
	viper.SetDefault("color_border", "240")
}

// GetOutput returns the output mode
func GetOutput() string {
	return viper.GetString("output")
}

// GetAuthor returns the default comment author
func GetAuthor() string {
	return viper.GetString("author")
}

// GetInferGit returns whether repository details are read from the working tree
func GetInferGit() bool {
	return viper.GetBool("infer_git")
}

// GetGitTimeout returns the timeout for a single git invocation
func GetGitTimeout() time.Duration {
	return viper.GetDuration("git_timeout")
}

// GetConcurrency returns how many files are converted at once
func GetConcurrency() int {
	return viper.GetInt("concurrency")
}

// GetServeAddr returns the listen address of the HTTP API
func GetServeAddr() string {
	return viper.GetString("serve_addr")
}

// GetMaxBodyBytes returns the request body limit of the HTTP API
func GetMaxBodyBytes() int64 {
	return viper.GetInt64("max_body_bytes")
}

// GetWatchDebounce returns the quiet period before a watched file is reconverted
func GetWatchDebounce() time.Duration {
	return viper.GetDuration("watch_debounce")
}

// GetLogLevel returns the configured slog level, defaulting to info
func GetLogLevel() slog.Level {
	switch strings.ToLower(viper.GetString("log_level")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetColorTitle returns ANSI color code for step titles
func GetColorTitle() string {
	return viper.GetString("color_title")
}

// GetColorLocation returns ANSI color code for head locations
func GetColorLocation() string {
	return viper.GetString("color_location")
}

// GetColorBase returns ANSI color code for base locations
func GetColorBase() string {
	return viper.GetString("color_base")
}

// GetColorDim returns ANSI color code for secondary text
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// GetColorSelected returns ANSI color code for the selected step
func GetColorSelected() string {
	return viper.GetString("color_selected")
}

// GetColorBorder returns ANSI color code for pane borders
func GetColorBorder() string {
	return viper.GetString("color_border")
}

// SetOutput sets output mode at runtime
func SetOutput(mode string) {
	viper.Set("output", mode)
	C.Output = mode
}

// SetInferGit toggles git inference at runtime
func SetInferGit(enabled bool) {
	viper.Set("infer_git", enabled)
	C.InferGit = enabled
}

func defaultAuthor() string {
	for _, key := range []string{"VIRGIL_AUTHOR", "USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "anonymous"
}
