// Package sender generates paced UDP test traffic for ng-send, the
// counterpart of the measurement receiver.
package sender

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"math/rand"
	"net"
	"time"
)

// MinPacketSize leaves room for the leading sequence number.
const MinPacketSize = 8

// Config describes one send run.
type Config struct {
	Count    int           // number of datagrams to send
	Size     int           // datagram size in bytes, >= MinPacketSize
	Interval time.Duration // pacing gap between datagrams, 0 for unpaced
}

// Run sends cfg.Count datagrams to target. Each datagram starts with a
// big-endian sequence number followed by random fill; the measurement
// receiver ignores the contents, but sequence-aware tools can use them.
// Cancelling ctx stops the run early without error.
func Run(ctx context.Context, target *net.UDPAddr, cfg Config) (sent int, err error) {
	if cfg.Size < MinPacketSize {
		return 0, fmt.Errorf("packet size %d is below the minimum of %d", cfg.Size, MinPacketSize)
	}

	conn, err := net.DialUDP("udp", nil, target)
	if err != nil {
		return 0, fmt.Errorf("failed to dial %s: %w", target, err)
	}
	defer conn.Close()

	payload := make([]byte, cfg.Size)
	rand.Read(payload[MinPacketSize:])

	var ticker *time.Ticker
	if cfg.Interval > 0 {
		ticker = time.NewTicker(cfg.Interval)
		defer ticker.Stop()
	}

	for seq := uint64(0); seq < uint64(cfg.Count); seq++ {
		select {
		case <-ctx.Done():
			log.Printf("Send run cancelled after %d packets.", sent)
			return sent, nil
		default:
		}

		binary.BigEndian.PutUint64(payload[:MinPacketSize], seq)
		if _, err := conn.Write(payload); err != nil {
			return sent, fmt.Errorf("failed to send datagram %d: %w", seq, err)
		}
		sent++

		if (seq+1)%1000 == 0 {
			log.Printf("%d packets sent...", seq+1)
		}

		if ticker != nil && seq+1 < uint64(cfg.Count) {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				log.Printf("Send run cancelled after %d packets.", sent)
				return sent, nil
			}
		}
	}

	return sent, nil
}
