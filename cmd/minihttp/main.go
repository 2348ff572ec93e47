package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/indigo-web/minihttp"
	"github.com/indigo-web/minihttp/config"
)

func main() {
	var (
		port      = flag.Int("port", 4221, "TCP port to listen on")
		directory = flag.String("directory", "", "base directory served by /files/")
		cfgPath   = flag.String("config", "", "path to a JSON config file")
		logLevel  = flag.String("log-level", "", "log level, overrides the config")
	)
	flag.Parse()

	cfg := config.Default()
	if len(*cfgPath) > 0 {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintln(os.Stderr, "minihttp:", err)
			os.Exit(2)
		}
	}

	// explicitly set flags take precedence over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "directory":
			cfg.Files.Directory = *directory
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})

	app := minihttp.New(":" + strconv.Itoa(*port)).Tune(cfg)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		app.Stop()
	}()

	if err := app.Serve(); err != nil {
		fmt.Fprintln(os.Stderr, "minihttp:", err)
		os.Exit(1)
	}
}
