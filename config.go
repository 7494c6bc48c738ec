package main

import (
	"fmt"
	"os"
	"time"

	"github.com/astaxie/beego/config"
	"github.com/astaxie/beego/logs"
)

// Config holds everything a server needs. The resource root is always
// explicit; nothing reads the working directory behind its back.
type Config struct {
	Addr            string
	Root            string
	ServerName      string // replaces the server marker in pages
	ServerHeader    string // value of the Server header
	ReadTimeout     time.Duration
	MaxRequestBytes int64
	LogLevel        int
	LogFile         string
}

func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		Root:            ".",
		ServerName:      "Simple Web Server",
		ServerHeader:    "simple-web-server",
		ReadTimeout:     0,
		MaxRequestBytes: 1 << 20,
		LogLevel:        logs.LevelInformational,
	}
}

// LoadConfig reads an ini file on top of the defaults. An empty name
// returns the defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	cnf, err := config.NewConfig("ini", filename)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", filename, err)
	}
	if err := cfg.apply(cnf); err != nil {
		return nil, fmt.Errorf("config %s: %w", filename, err)
	}
	return cfg, nil
}

// ParseConfig is LoadConfig for in-memory ini data.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cnf, err := config.NewConfigData("ini", data)
	if err != nil {
		return nil, err
	}
	if err := cfg.apply(cnf); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(cnf config.Configer) error {
	c.Addr = cnf.DefaultString("addr", c.Addr)
	c.Root = cnf.DefaultString("root", c.Root)
	c.ServerName = cnf.DefaultString("server_name", c.ServerName)
	c.ServerHeader = cnf.DefaultString("server_header", c.ServerHeader)
	c.MaxRequestBytes = cnf.DefaultInt64("max_request_bytes", c.MaxRequestBytes)
	c.LogLevel = cnf.DefaultInt("log_level", c.LogLevel)
	c.LogFile = cnf.DefaultString("log_file", c.LogFile)
	if s := cnf.String("read_timeout"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid read_timeout %q: %w", s, err)
		}
		c.ReadTimeout = d
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("empty resource root")
	}
	fi, err := os.Stat(c.Root)
	if err != nil {
		return fmt.Errorf("resource root: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("resource root %s is not a directory", c.Root)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("negative read timeout %v", c.ReadTimeout)
	}
	if c.MaxRequestBytes < 0 {
		return fmt.Errorf("negative max request bytes %d", c.MaxRequestBytes)
	}
	if c.LogLevel < logs.LevelEmergency || c.LogLevel > logs.LevelDebug {
		return fmt.Errorf("log level %d out of range", c.LogLevel)
	}
	return nil
}
