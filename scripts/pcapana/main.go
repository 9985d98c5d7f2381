// Offline throughput analysis: replays a run capture recorded by ng-recv
// through the interval accumulator, reproducing the per-second readings and
// the summary block from the file instead of the wire.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"NetGauge/internal/meter"
	"NetGauge/internal/report"
	"NetGauge/pkg/pcap"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/pcapana/main.go <path_to_pcap_file>")
		os.Exit(1)
	}

	reader, err := pcap.NewReader(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	defer reader.Close()

	out := make(chan pcap.Datagram)
	errs := make(chan error, 1)
	go func() {
		errs <- reader.ReadDatagrams(out)
	}()

	// Drive the accumulator's clock from the capture timestamps, so the
	// replay buckets bytes into the same one-second intervals as the live
	// run did.
	var now time.Time
	m := meter.New(meter.StopThreshold, func() time.Time { return now })

	first := true
	stopped := false
	for d := range out {
		if stopped {
			continue // drain the rest of the file
		}
		now = d.Timestamp
		if first {
			m.Start()
			first = false
		}

		readings, done := m.Observe(d.Length)
		for _, r := range readings {
			report.WriteReading(os.Stdout, r)
		}
		stopped = done
	}
	if err := <-errs; err != nil {
		log.Fatal(err)
	}

	report.WriteSummary(os.Stdout, m.Finalize())
}
