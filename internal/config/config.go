// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/heartmind/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete heartmind configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	API     APIConfig     `toml:"api" json:"api"`
	Chat    ChatConfig    `toml:"chat" json:"chat"`
	Payment PaymentConfig `toml:"payment" json:"payment"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Log     LogConfig     `toml:"log" json:"log"`
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// APIConfig configures the backend HTTP client.
type APIConfig struct {
	BaseURL     string `toml:"base_url" json:"base_url"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs"`
	// Retries is the number of extra attempts after a network error or 5xx.
	// Only 0 and 1 are accepted.
	Retries int `toml:"retries" json:"retries"`
	// RateLimit is requests per second, 0 disables client-side pacing.
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	RateBurst int     `toml:"rate_burst" json:"rate_burst"`
}

// ChatConfig configures the chat session.
type ChatConfig struct {
	Greeting         string `toml:"greeting" json:"greeting"`
	FailureMessage   string `toml:"failure_message" json:"failure_message"`
	RevealIntervalMs int    `toml:"reveal_interval_ms" json:"reveal_interval_ms"`
}

// PaymentConfig configures the subscription flow.
type PaymentConfig struct {
	// CallbackURL is where the payment provider sends the user back.
	// "?userId=<id>" is appended when a session is created.
	CallbackURL string `toml:"callback_url" json:"callback_url"`
	// CallbackListen, when set, starts a loopback listener (e.g. 127.0.0.1:8789)
	// and uses it as the callback instead of CallbackURL.
	CallbackListen  string `toml:"callback_listen" json:"callback_listen"`
	OpenBrowser     bool   `toml:"open_browser" json:"open_browser"`
	WaitTimeoutSecs int    `toml:"wait_timeout_secs" json:"wait_timeout_secs"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme    string `toml:"theme" json:"theme"` // dark, light, auto
	Markdown bool   `toml:"markdown" json:"markdown"`
	// WrapWidth caps the width of rendered replies, 0 means terminal width.
	WrapWidth int `toml:"wrap_width" json:"wrap_width"`
}

// LogConfig configures the file logger.
type LogConfig struct {
	Level string `toml:"level" json:"level"` // debug, info, warn, error
	File  string `toml:"file" json:"file"`
}

// StorageConfig configures local persisted state.
type StorageConfig struct {
	Path string `toml:"path" json:"path"`
	// Seal encrypts the stored token at rest.
	Seal bool `toml:"seal" json:"seal"`
	// Passphrase keys the seal. It is read from the environment only and
	// never written to disk.
	Passphrase string `toml:"-" json:"-"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultBaseURL is the hosted HeartMind backend.
	DefaultBaseURL = "https://heartmind-vghw.onrender.com"

	// DefaultCallbackURL is the hosted payment return page.
	DefaultCallbackURL = "https://heartmindai.netlify.app/payment-success"

	// DefaultGreeting seeds every chat session.
	DefaultGreeting = "Hi I'm HeartMind. Tell me how you’re feeling."

	// DefaultFailureMessage is shown when a chat turn fails.
	DefaultFailureMessage = "Sorry, something went wrong."

	// DefaultRevealIntervalMs is the per-character reveal cadence.
	DefaultRevealIntervalMs = 30

	configVersion = "1"
)

// Default returns a Config with built-in defaults.
func Default() *Config {
	return &Config{
		Version: configVersion,
		API: APIConfig{
			BaseURL:     DefaultBaseURL,
			TimeoutSecs: 30,
			Retries:     1,
			RateLimit:   5,
			RateBurst:   5,
		},
		Chat: ChatConfig{
			Greeting:         DefaultGreeting,
			FailureMessage:   DefaultFailureMessage,
			RevealIntervalMs: DefaultRevealIntervalMs,
		},
		Payment: PaymentConfig{
			CallbackURL:     DefaultCallbackURL,
			OpenBrowser:     true,
			WaitTimeoutSecs: 600,
		},
		UI: UIConfig{
			Theme:    "auto",
			Markdown: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Seal: true,
		},
	}
}

// Timeout returns the API timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// RevealInterval returns the reveal cadence as a duration.
func (c ChatConfig) RevealInterval() time.Duration {
	return time.Duration(c.RevealIntervalMs) * time.Millisecond
}

// WaitTimeout returns how long to wait for the payment callback.
func (p PaymentConfig) WaitTimeout() time.Duration {
	return time.Duration(p.WaitTimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the heartmind directory, ~/.heartmind unless HEARTMIND_HOME is set.
func ConfigDir() (string, error) {
	if dir := os.Getenv("HEARTMIND_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".heartmind"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ActivePath returns the file Load reads: explicit when set, otherwise the
// TOML file, the JSON file if only that exists, or the TOML path for a
// file not yet written.
func ActivePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if fileExists(tomlPath) {
		return tomlPath, nil
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return "", err
	}
	if fileExists(jsonPath) {
		return jsonPath, nil
	}
	return tomlPath, nil
}

// EnsureConfigDir creates the config directory with private permissions.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, util.DirPerm)
}

// StoragePath returns the resolved storage database path.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.db"), nil
}

// LogPath returns the resolved log file path.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "heartmind.log"), nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults. A file that fails to
// parse is reported in the returned error alongside a usable default config.
func Load() (*Config, error) {
	loadDotEnv()

	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return nil, err
	}

	var loadErr error
	switch {
	case fileExists(tomlPath):
		cfg := Default()
		if err := LoadTOML(cfg, tomlPath); err != nil {
			loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			break
		}
		return finish(cfg)
	case fileExists(jsonPath):
		cfg := Default()
		if err := LoadJSON(cfg, jsonPath); err != nil {
			loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			break
		}
		return finish(cfg)
	}

	cfg, err := finish(Default())
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	// SECURITY: the file may sit next to the stored credential
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads .env and .env.local without overriding the real environment.
// Each file is loaded on its own so a missing .env does not skip .env.local.
func loadDotEnv() {
	for _, name := range []string{".env", ".env.local"} {
		if fileExists(name) {
			_ = godotenv.Load(name)
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# heartmind configuration file")
	fmt.Fprintln(&buf, "# Generated by heartmind - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validThemes    = map[string]bool{"dark": true, "light": true, "auto": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks every field and returns ValidateErrors when any is invalid.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if err := validateHTTPURL(c.API.BaseURL); err != nil {
		errs = append(errs, ValidationError{"api.base_url", err.Error()})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{"api.timeout_secs", "must be between 1 and 600"})
	}
	if c.API.Retries < 0 || c.API.Retries > 1 {
		errs = append(errs, ValidationError{"api.retries", "must be 0 or 1"})
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, ValidationError{"api.rate_limit", "must not be negative"})
	}
	if c.API.RateLimit > 0 && c.API.RateBurst < 1 {
		errs = append(errs, ValidationError{"api.rate_burst", "must be at least 1 when rate_limit is set"})
	}

	if c.Chat.RevealIntervalMs < 0 || c.Chat.RevealIntervalMs > 1000 {
		errs = append(errs, ValidationError{"chat.reveal_interval_ms", "must be between 0 and 1000"})
	}

	if err := validateHTTPURL(c.Payment.CallbackURL); err != nil {
		errs = append(errs, ValidationError{"payment.callback_url", err.Error()})
	}
	if c.Payment.CallbackListen != "" {
		if err := validateLoopback(c.Payment.CallbackListen); err != nil {
			errs = append(errs, ValidationError{"payment.callback_listen", err.Error()})
		}
	}
	if c.Payment.WaitTimeoutSecs < 0 {
		errs = append(errs, ValidationError{"payment.wait_timeout_secs", "must not be negative"})
	}

	if !validThemes[c.UI.Theme] {
		errs = append(errs, ValidationError{"ui.theme", fmt.Sprintf("invalid theme %q (valid: dark, light, auto)", c.UI.Theme)})
	}
	if c.UI.WrapWidth < 0 {
		errs = append(errs, ValidationError{"ui.wrap_width", "must not be negative"})
	}
	if !validLogLevels[c.Log.Level] {
		errs = append(errs, ValidationError{"log.level", fmt.Sprintf("invalid level %q (valid: debug, info, warn, error)", c.Log.Level)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// validateLoopback accepts only host:port pairs on a loopback interface.
func validateLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address: %v", err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return errors.New("must be a loopback address")
	}
	return nil
}

// SetDefaults fills zero values that have a sensible default.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.Chat.Greeting == "" {
		c.Chat.Greeting = d.Chat.Greeting
	}
	if c.Chat.FailureMessage == "" {
		c.Chat.FailureMessage = d.Chat.FailureMessage
	}
	if c.Payment.CallbackURL == "" {
		c.Payment.CallbackURL = d.Payment.CallbackURL
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - HEARTMIND_API_URL (or REACT_APP_API_URL): overrides api.base_url
//   - HEARTMIND_API_TIMEOUT: overrides api.timeout_secs
//   - HEARTMIND_LOG_LEVEL: overrides log.level
//   - HEARTMIND_THEME: overrides ui.theme
//   - HEARTMIND_CALLBACK_URL: overrides payment.callback_url
//   - HEARTMIND_STORAGE_PATH: overrides storage.path
//   - HEARTMIND_SEAL_PASSPHRASE: keys the token seal instead of the machine
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("REACT_APP_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("HEARTMIND_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("HEARTMIND_API_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("HEARTMIND_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("HEARTMIND_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
	if v := os.Getenv("HEARTMIND_CALLBACK_URL"); v != "" {
		c.Payment.CallbackURL = v
	}
	if v := os.Getenv("HEARTMIND_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("HEARTMIND_SEAL_PASSPHRASE"); v != "" {
		c.Storage.Passphrase = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts snake_case or kebab-case to the Go field name.
// "base_url" becomes "BaseUrl", matched case-insensitively against "BaseURL".
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(part[:1]))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(n)
			return nil
		case reflect.Float64:
			f, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(f)
			return nil
		case reflect.Bool:
			b, err := parseBool(strVal)
			if err != nil {
				return err
			}
			field.SetBool(b)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value: %q", s)
}

// AllKeys returns every settable key in dot notation.
func AllKeys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", &keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.Split(f.Tag.Get("toml"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		if f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, name, keys)
			continue
		}
		*keys = append(*keys, name)
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
