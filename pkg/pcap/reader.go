// Package pcap reads run capture files written by the receiver, yielding one
// event per recorded datagram. It decodes with pcapgo, so no libpcap is
// required.
package pcap

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Datagram is one recorded datagram: its UDP payload length and the capture
// timestamp.
type Datagram struct {
	Timestamp time.Time
	SrcPort   uint16
	DstPort   uint16
	Length    int
}

// Reader reads datagrams from a run capture file.
type Reader struct {
	file   *os.File
	reader *pcapgo.Reader
}

// NewReader opens the capture file at filePath.
func NewReader(filePath string) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	reader, err := pcapgo.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read pcap header: %w", err)
	}
	return &Reader{file: file, reader: reader}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() {
	r.file.Close()
}

// ReadDatagrams reads every frame from the capture file and sends the decoded
// datagrams to the provided channel. It closes the channel when done.
func (r *Reader) ReadDatagrams(out chan<- Datagram) error {
	defer close(out)

	for {
		data, ci, err := r.reader.ReadPacketData()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read frame: %w", err)
		}

		packet := gopacket.NewPacket(data, layers.LinkTypeEthernet, gopacket.Default)
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			// Not one of ours; run captures only hold UDP frames.
			continue
		}
		udp := udpLayer.(*layers.UDP)

		out <- Datagram{
			Timestamp: ci.Timestamp,
			SrcPort:   uint16(udp.SrcPort),
			DstPort:   uint16(udp.DstPort),
			Length:    len(udp.Payload),
		}
	}
}
