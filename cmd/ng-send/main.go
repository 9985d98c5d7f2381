package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"NetGauge/internal/config"
	"NetGauge/internal/sender"
)

func usage() {
	fmt.Println("Run like : ng-send [flags] <arg1:target ip> <arg2:target port>")
	flag.PrintDefaults()
}

func main() {
	count := flag.Int("c", 2000, "Number of datagrams to send.")
	size := flag.Int("s", 1024, "Datagram size in bytes.")
	interval := flag.Duration("i", 10*time.Millisecond, "Pacing interval between datagrams (0 for unpaced).")
	configPath := flag.String("config", "", "Optional YAML config supplying sender defaults.")
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}

	cfg := sender.Config{Count: *count, Size: *size, Interval: *interval}
	if *configPath != "" {
		fileCfg, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = applyDefaults(cfg, fileCfg.Sender, flag.CommandLine)
	}

	ip := net.ParseIP(flag.Arg(0))
	port, err := strconv.Atoi(flag.Arg(1))
	if err != nil || ip == nil || port < 0 || port > 65535 {
		usage()
		os.Exit(1)
	}
	target := &net.UDPAddr{IP: ip, Port: port}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, stopping sender...")
		cancel()
	}()

	log.Printf("Sending %d datagrams of %d bytes to %s (interval %s)...",
		cfg.Count, cfg.Size, target, cfg.Interval)
	start := time.Now()

	sent, err := sender.Run(ctx, target, cfg)
	if err != nil {
		log.Fatalf("Send run failed: %v", err)
	}

	elapsed := time.Since(start)
	log.Printf("Sent %d datagrams (%d bytes) in %s.", sent, sent*cfg.Size, elapsed)
}

// applyDefaults fills in config-file values for flags the user did not set
// explicitly on the command line.
func applyDefaults(cfg sender.Config, fileCfg config.SenderConfig, fs *flag.FlagSet) sender.Config {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["c"] && fileCfg.Count > 0 {
		cfg.Count = fileCfg.Count
	}
	if !set["s"] && fileCfg.Size > 0 {
		cfg.Size = fileCfg.Size
	}
	if !set["i"] && fileCfg.Interval != "" {
		if d, err := time.ParseDuration(fileCfg.Interval); err == nil {
			cfg.Interval = d
		} else {
			log.Printf("Ignoring invalid sender interval in config: %v", err)
		}
	}
	return cfg
}
