package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

var (
	configFile = flag.String("config", "", "ini config file")
	addr       = flag.String("addr", "", "listen address, overrides the config file")
	root       = flag.String("root", "", "resource root, defaults to the working directory")
	logLevel   = flag.Int("log-level", -1, "beego log level 0-7, overrides the config file")
)

func loadConfig() (*Config, error) {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *root != "" {
		cfg.Root = *root
	}
	if *logLevel >= 0 {
		cfg.LogLevel = *logLevel
	}
	if cfg.Root, err = filepath.Abs(cfg.Root); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := NewLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Flush()

	srv := NewServer(cfg, log)
	stopped := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		log.Info("got %v, shutting down", s)
		srv.Shutdown()
		close(stopped)
	}()

	err = srv.ListenAndServe()
	if err == ErrServerClosed {
		<-stopped
		return
	}
	log.Critical("listen: %v", err)
	log.Flush()
	os.Exit(1)
}
