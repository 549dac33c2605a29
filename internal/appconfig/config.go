package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"pkt.systems/retroterm/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int            `mapstructure:"config_version" yaml:"config_version"`
	HTTP          HTTPConfig     `mapstructure:"http" yaml:"http"`
	SSH           SSHConfig      `mapstructure:"ssh" yaml:"ssh"`
	Terminal      TerminalConfig `mapstructure:"terminal" yaml:"terminal"`
	Font          FontConfig     `mapstructure:"font" yaml:"font"`
	Canvas        CanvasConfig   `mapstructure:"canvas" yaml:"canvas"`
	Logging       LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// HTTPConfig configures the browser host.
type HTTPConfig struct {
	Addr              string `mapstructure:"addr" yaml:"addr"`
	BasePath          string `mapstructure:"base_path" yaml:"base_path"`
	SessionTTLMinutes int    `mapstructure:"session_ttl_minutes" yaml:"session_ttl_minutes"`
}

// SSHConfig configures the SSH host.
type SSHConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	HostKeyPath string `mapstructure:"host_key_path" yaml:"host_key_path"`
}

// TerminalConfig holds per-session terminal settings.
type TerminalConfig struct {
	MaxLines      int    `mapstructure:"max_lines" yaml:"max_lines"`
	ScrollCap     int    `mapstructure:"scroll_cap" yaml:"scroll_cap"`
	ScrollStep    int    `mapstructure:"scroll_step" yaml:"scroll_step"`
	HistoryMax    int    `mapstructure:"history_max" yaml:"history_max"`
	FollowOutput  bool   `mapstructure:"follow_output" yaml:"follow_output"`
	Prompt        string `mapstructure:"prompt" yaml:"prompt"`
	User          string `mapstructure:"user" yaml:"user"`
	Hostname      string `mapstructure:"hostname" yaml:"hostname"`
	SkipBoot      bool   `mapstructure:"skip_boot" yaml:"skip_boot"`
	CursorBlinkMS int    `mapstructure:"cursor_blink_ms" yaml:"cursor_blink_ms"`
}

// FontConfig describes the monospace grid in device pixels.
type FontConfig struct {
	Size       float64 `mapstructure:"size" yaml:"size"`
	LineHeight float64 `mapstructure:"line_height" yaml:"line_height"`
	CharWidth  float64 `mapstructure:"char_width" yaml:"char_width"`
}

// CanvasConfig sizes headless renders such as screenshots and snapshots.
type CanvasConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// LoggingConfig controls audit logging behavior.
type LoggingConfig struct {
	DisableAuditTrails bool `mapstructure:"disable_audit_trails" yaml:"disable_audit_trails"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	font := schema.DefaultFontMetrics()
	return Config{
		ConfigVersion: CurrentConfigVersion,
		HTTP: HTTPConfig{
			Addr:              ":27580",
			BasePath:          "",
			SessionTTLMinutes: 60,
		},
		SSH: SSHConfig{
			Addr:        ":27522",
			HostKeyPath: filepath.Join(home, ".retroterm", "ssh_host_key"),
		},
		Terminal: TerminalConfig{
			MaxLines:      schema.DefaultMaxLines,
			ScrollCap:     schema.DefaultScrollCap,
			ScrollStep:    schema.DefaultScrollStep,
			HistoryMax:    schema.DefaultHistoryMax,
			FollowOutput:  true,
			User:          schema.DefaultUser,
			Hostname:      schema.DefaultHostname,
			SkipBoot:      false,
			CursorBlinkMS: int(schema.DefaultCursorBlink / time.Millisecond),
		},
		Font: FontConfig{
			Size:       font.FontSize,
			LineHeight: font.LineHeight,
			CharWidth:  font.CharWidth,
		},
		Canvas: CanvasConfig{
			Width:  schema.DefaultCanvasWidth,
			Height: schema.DefaultCanvasHeight,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".retroterm", "config.yaml"), nil
}

// TerminalConfig converts the loaded settings into a normalized session
// config.
func (c Config) TerminalConfig() (schema.TerminalConfig, error) {
	font := schema.DefaultFontMetrics()
	if c.Font.Size > 0 {
		font.FontSize = c.Font.Size
	}
	if c.Font.LineHeight > 0 {
		font.LineHeight = c.Font.LineHeight
	}
	if c.Font.CharWidth > 0 {
		font.CharWidth = c.Font.CharWidth
	}
	return schema.NormalizeTerminalConfig(schema.TerminalConfig{
		MaxLines:     c.Terminal.MaxLines,
		ScrollCap:    c.Terminal.ScrollCap,
		ScrollStep:   c.Terminal.ScrollStep,
		HistoryMax:   c.Terminal.HistoryMax,
		FollowOutput: c.Terminal.FollowOutput,
		Prompt:       c.Terminal.Prompt,
		User:         c.Terminal.User,
		Hostname:     c.Terminal.Hostname,
		SkipBoot:     c.Terminal.SkipBoot,
		CursorBlink:  time.Duration(c.Terminal.CursorBlinkMS) * time.Millisecond,
		Font:         font,
		CanvasWidth:  c.Canvas.Width,
		CanvasHeight: c.Canvas.Height,
	})
}

// SessionTTL returns how long an idle browser session is kept.
func (c Config) SessionTTL() time.Duration {
	if c.HTTP.SessionTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.HTTP.SessionTTLMinutes) * time.Minute
}
