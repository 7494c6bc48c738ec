package main

import (
	"encoding/json"

	"github.com/astaxie/beego/logs"
)

// NewLogger builds a console logger, plus a file logger when LogFile is set.
func NewLogger(cfg *Config) (*logs.BeeLogger, error) {
	l := logs.NewLogger()
	console, err := json.Marshal(map[string]interface{}{
		"level": cfg.LogLevel,
		"color": false,
	})
	if err != nil {
		return nil, err
	}
	if err := l.SetLogger(logs.AdapterConsole, string(console)); err != nil {
		return nil, err
	}
	if cfg.LogFile != "" {
		file, err := json.Marshal(map[string]interface{}{
			"filename": cfg.LogFile,
			"level":    cfg.LogLevel,
		})
		if err != nil {
			return nil, err
		}
		if err := l.SetLogger(logs.AdapterFile, string(file)); err != nil {
			return nil, err
		}
	}
	l.SetLevel(cfg.LogLevel)
	return l, nil
}
