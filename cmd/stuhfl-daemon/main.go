package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"stuhfl_go/internal/config"
	"stuhfl_go/internal/daemon"
	"stuhfl_go/internal/httpapi"
	"stuhfl_go/internal/ipc"
	"stuhfl_go/internal/publish"
)

const statusInterval = 30 * time.Second

func main() {
	envFile := flag.String("env", ".env", "dotenv file loaded before the environment")
	cfgFile := flag.String("config", "", "optional YAML or TOML config file")
	port := flag.String("port", "", "serial device or host:port, overrides the config")
	sim := flag.Bool("sim", false, "run against the built-in simulated reader")
	trace := flag.Bool("trace", false, "log every reader command")
	send := flag.String("send", "", "send one request (status, scan_start, scan_stop, inventory, tags, reset_tags, release) to a running daemon and exit")
	flag.Parse()

	cfg, err := config.Resolve(*envFile, *cfgFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *sim {
		cfg.Driver = config.DriverSim
	}

	if *send != "" {
		os.Exit(sendRequest(cfg.IPCSocket, *send))
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *trace {
		logger.SetLevel(logrus.TraceLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pub := publish.New(publish.FromConfig(cfg))
	if err := pub.Connect(); err != nil {
		log.Printf("[mqtt] connect failed, retrying in background: %v", err)
	}
	defer pub.Close()

	mgr := daemon.New(cfg, daemon.NewDialer(cfg, logger), pub.HandleTag)
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("[daemon] close: %v", err)
		}
	}()

	log.Printf("[daemon] starting: driver=%s port=%s profile=%s antenna=%d rounds=%d",
		cfg.Driver, fallback(cfg.Port, "auto"), cfg.Profile, cfg.Antenna, cfg.Rounds)
	if cfg.AutoStart {
		if err := mgr.Start(ctx); err != nil {
			log.Printf("[daemon] auto start failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	runService := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				log.Printf("[%s] stopped: %v", name, err)
				stop()
			}
		}()
	}
	if cfg.HTTPAddr != "" {
		runService("http", httpapi.New(cfg.HTTPAddr, mgr).Run)
	}
	if cfg.IPCSocket != "" {
		runService("ipc", ipc.New(cfg.IPCSocket, mgr).Run)
	}
	if pub.Enabled() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statusLoop(ctx, mgr, pub)
		}()
	}

	<-ctx.Done()
	log.Printf("[daemon] shutting down")
	mgr.Stop()
	wg.Wait()
}

// statusLoop publishes a retained status snapshot on a fixed interval.
func statusLoop(ctx context.Context, mgr *daemon.Manager, pub *publish.Publisher) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := pub.PublishStatus(mgr.Status()); err != nil {
				log.Printf("[mqtt] status publish failed: %v", err)
			}
		}
	}
}

func sendRequest(socketPath, typ string) int {
	if socketPath == "" {
		fmt.Fprintln(os.Stderr, "ipc socket disabled")
		return 2
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Type: typ, Source: "cli"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "send %s: %v\n", typ, err)
		return 1
	}
	out, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(out))
	if !resp.OK {
		return 1
	}
	return 0
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
