package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"NetGauge/internal/capture"
	"NetGauge/internal/export"
	"NetGauge/internal/meter"
	"NetGauge/internal/recv"
)

func usage() {
	fmt.Println("Run like : ng-recv [flags] <arg1:server ip:this system IP 192.168.1.6> <arg2:server port:4444 >")
}

// bindAddr resolves the bind address, accepting both IP literals and
// hostnames.
func bindAddr(host string, port int) (*net.UDPAddr, error) {
	return net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
}

func main() {
	natsURL := flag.String("publish", "", "Publish measurement events to this NATS URL (optional).")
	subject := flag.String("subject", export.DefaultSubject, "NATS subject for measurement events.")
	pcapPath := flag.String("pcap", "", "Record received datagrams to this pcap file (optional).")
	runID := flag.String("run-id", "", "Run identifier for published events (default: timestamp).")
	flag.Parse()

	// Exactly two positional arguments; usage on anything else, before any
	// socket is created.
	if flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}

	host := flag.Arg(0)
	port, err := strconv.Atoi(flag.Arg(1))
	if err != nil || port < 0 || port > 65535 {
		usage()
		os.Exit(1)
	}

	// The address string goes to the resolver untouched, so hostnames work
	// and an unusable address is a bind-time fatal, not a usage error.
	addr, err := bindAddr(host, port)
	if err != nil {
		log.Fatalf("Failed to resolve %s:%d: %v", host, port, err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		log.Fatalf("Failed to bind %s:%d: %v", host, port, err)
	}
	defer conn.Close()

	loop := recv.NewLoop(conn, meter.New(meter.StopThreshold, nil), os.Stdout)

	if *pcapPath != "" {
		recorder, err := capture.NewRecorder(*pcapPath, conn.LocalAddr().(*net.UDPAddr))
		if err != nil {
			log.Fatalf("Failed to create pcap recorder: %v", err)
		}
		defer recorder.Close()
		loop.SetRecorder(recorder)
		log.Printf("Recording received datagrams to %s", *pcapPath)
	}

	if *natsURL != "" {
		id := *runID
		if id == "" {
			id = time.Now().Format("2006-01-02_15-04-05")
		}
		publisher, err := export.NewPublisher(*natsURL, *subject, id)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer publisher.Close()
		loop.SetEventSink(publisher)
		log.Printf("Publishing events for run '%s' to subject '%s'", id, *subject)
	}

	// No signal handler: an interrupt kills the process before the summary
	// is printed.
	if _, err := loop.Run(); err != nil {
		log.Fatalf("Receive loop failed: %v", err)
	}
}
