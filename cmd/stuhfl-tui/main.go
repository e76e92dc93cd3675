package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"stuhfl_go/internal/config"
	"stuhfl_go/internal/daemon"
	"stuhfl_go/internal/tui"
)

func main() {
	envFile := flag.String("env", envOr("STUHFL_ENV_FILE", ".env"), "dotenv file loaded before the environment")
	cfgFile := flag.String("config", "", "optional YAML or TOML config file")
	port := flag.String("port", "", "serial device or host:port, overrides the config")
	sim := flag.Bool("sim", false, "drive the built-in simulated reader")
	flag.Parse()

	cfg, err := config.Resolve(*envFile, *cfgFile)
	if err != nil {
		log.Fatal(err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *sim {
		cfg.Driver = config.DriverSim
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "stuhfl-tui:", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	// The alternate screen owns the terminal, so logs go to a file.
	logDir := envOr("STUHFL_LOG_DIR", "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(logDir, "stuhfl-tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	logger := logrus.New()
	logger.SetOutput(logFile)

	if !cfg.Simulated() {
		resume := borrowFromDaemon(cfg.IPCSocket)
		defer resume()
	}

	setup := tui.DefaultSetup()
	fromCfg := cfg.Gen2Setup()
	setup.Antenna = fromCfg.Antenna
	setup.Profile = fromCfg.Profile

	return tui.Run(tui.Options{Dial: daemon.NewDialer(cfg, logger), Setup: setup})
}
