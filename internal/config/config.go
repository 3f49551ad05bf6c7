package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"gte=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gte=0"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format" validate:"omitempty,oneof=console json"`

	// SignalingEnabled turns the WebRTC signaling relay on. Fixed for the process lifetime.
	SignalingEnabled bool `mapstructure:"signaling_enabled" yaml:"signaling_enabled"`
	// CacheSize is the number of messages replayed to newcomers. Zero disables history.
	CacheSize int `mapstructure:"cache_size" yaml:"cache_size" validate:"gte=0"`
	// MaxPayloadMB caps the size of a single inbound frame.
	MaxPayloadMB int64 `mapstructure:"max_payload_mb" yaml:"max_payload_mb" validate:"gte=1"`
	// SendBuffer is the outbound queue length per connection.
	SendBuffer int `mapstructure:"send_buffer" yaml:"send_buffer" validate:"gte=1"`
	// RateLimit caps inbound frames per connection per minute. Zero disables it.
	RateLimit    int           `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
	PingInterval time.Duration `mapstructure:"ping_interval" yaml:"ping_interval" validate:"gte=0"`

	StaticDir   string `mapstructure:"static_dir" yaml:"static_dir"`
	ArchivePath string `mapstructure:"archive_path" yaml:"archive_path"`

	ICE ICEConfig `mapstructure:"ice" yaml:"ice"`
	TLS TLSConfig `mapstructure:"tls" yaml:"tls"`
}

// ICEConfig describes where ICE servers advertised to clients come from.
type ICEConfig struct {
	Servers []ICEServer `mapstructure:"servers" yaml:"servers" validate:"dive"`
	// CommandFile holds a command line whose output is a JSON array of ICE servers.
	CommandFile     string        `mapstructure:"command_file" yaml:"command_file"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval" validate:"gte=0"`
}

// ICEServer is one STUN/TURN entry.
type ICEServer struct {
	URLs       []string `mapstructure:"urls" yaml:"urls" validate:"min=1,dive,required"`
	Username   string   `mapstructure:"username" yaml:"username,omitempty"`
	Credential string   `mapstructure:"credential" yaml:"credential,omitempty"`
}

// TLSConfig enables HTTPS either with static files or ACME certificates.
type TLSConfig struct {
	CertFile         string   `mapstructure:"cert_file" yaml:"cert_file" validate:"required_with=KeyFile"`
	KeyFile          string   `mapstructure:"key_file" yaml:"key_file" validate:"required_with=CertFile"`
	AutocertHosts    []string `mapstructure:"autocert_hosts" yaml:"autocert_hosts" validate:"dive,hostname"`
	AutocertCacheDir string   `mapstructure:"autocert_cache_dir" yaml:"autocert_cache_dir"`
}

// Enabled reports whether any TLS mode is configured.
func (t TLSConfig) Enabled() bool {
	return (t.CertFile != "" && t.KeyFile != "") || len(t.AutocertHosts) > 0
}

// MaxPayloadBytes converts MaxPayloadMB to bytes.
func (c Config) MaxPayloadBytes() int64 {
	return c.MaxPayloadMB * 1024 * 1024
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8090",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		SignalingEnabled:  false,
		CacheSize:         0,
		MaxPayloadMB:      1,
		SendBuffer:        256,
		RateLimit:         0,
		PingInterval:      54 * time.Second,
		StaticDir:         "html",
		ICE: ICEConfig{
			RefreshInterval: 10 * time.Minute,
		},
		TLS: TLSConfig{
			AutocertCacheDir: "autocert",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.SignalingEnabled {
		c.SignalingEnabled = true
	}
	if other.CacheSize != 0 {
		c.CacheSize = other.CacheSize
	}
	if other.MaxPayloadMB != 0 {
		c.MaxPayloadMB = other.MaxPayloadMB
	}
}
