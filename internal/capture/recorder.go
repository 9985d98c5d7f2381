// Package capture records received datagrams to a pcap file. The receiver
// only sees UDP payloads, so each datagram is re-wrapped in synthesized
// Ethernet/IPv4/UDP headers carrying the real source and bind addresses.
package capture

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

const snapshotLen = 65536

// Recorder writes one pcap file for the lifetime of a run.
type Recorder struct {
	file      *os.File
	writer    *pcapgo.Writer
	localIP   net.IP
	localPort uint16
}

// NewRecorder creates the output file and writes the pcap header. local is
// the receiver's bind address, used as the destination of every frame.
func NewRecorder(path string, local *net.UDPAddr) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}

	writer := pcapgo.NewWriter(file)
	if err := writer.WriteFileHeader(snapshotLen, layers.LinkTypeEthernet); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}

	return &Recorder{
		file:      file,
		writer:    writer,
		localIP:   v4OrZero(local.IP),
		localPort: uint16(local.Port),
	}, nil
}

// Record wraps one datagram in synthesized headers and appends it.
func (r *Recorder) Record(payload []byte, src *net.UDPAddr) error {
	ethLayer := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xaa},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ipLayer := &layers.IPv4{
		SrcIP:    v4OrZero(src.IP),
		DstIP:    r.localIP,
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
	}
	udpLayer := &layers.UDP{
		SrcPort: layers.UDPPort(src.Port),
		DstPort: layers.UDPPort(r.localPort),
	}
	udpLayer.SetNetworkLayerForChecksum(ipLayer)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		ComputeChecksums: true,
		FixLengths:       true,
	}
	if err := gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, udpLayer, gopacket.Payload(payload)); err != nil {
		return fmt.Errorf("failed to serialize datagram: %w", err)
	}

	data := buf.Bytes()
	ci := gopacket.CaptureInfo{
		Timestamp:     time.Now(),
		CaptureLength: len(data),
		Length:        len(data),
	}
	if err := r.writer.WritePacket(ci, data); err != nil {
		return fmt.Errorf("failed to write datagram to capture file: %w", err)
	}
	return nil
}

// Close flushes and closes the capture file.
func (r *Recorder) Close() error {
	return r.file.Close()
}

// v4OrZero coerces an address to 4-byte form; non-IPv4 sources fall back to
// the zero address since the synthesized header is IPv4 only.
func v4OrZero(ip net.IP) net.IP {
	if v4 := ip.To4(); v4 != nil {
		return v4
	}
	return net.IPv4zero.To4()
}
