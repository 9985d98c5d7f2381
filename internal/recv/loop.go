// Package recv runs the blocking UDP receive loops behind ng-recv and
// ng-dump. The measurement loop is strictly single-threaded: one blocking
// read per iteration, no read timeout, and elapsed seconds derived only at
// datagram-arrival points.
package recv

import (
	"fmt"
	"io"
	"net"
	"time"

	"NetGauge/internal/meter"
	"NetGauge/internal/model"
	"NetGauge/internal/report"
)

// BufferSize is the upper read-size bound for one datagram.
const BufferSize = 4096000

// DatagramRecorder receives a copy of every datagram pulled off the socket.
type DatagramRecorder interface {
	Record(payload []byte, src *net.UDPAddr) error
	Close() error
}

// EventSink receives the measurement events the loop produces.
type EventSink interface {
	PublishReading(r model.Reading) error
	PublishSummary(s model.Summary) error
	Close() error
}

// Loop drives one measurement run over a bound UDP socket.
type Loop struct {
	conn     *net.UDPConn
	meter    *meter.Meter
	out      io.Writer
	recorder DatagramRecorder
	events   EventSink
}

// NewLoop creates a measurement loop. recorder and events may be nil.
func NewLoop(conn *net.UDPConn, m *meter.Meter, out io.Writer) *Loop {
	return &Loop{conn: conn, meter: m, out: out}
}

// SetRecorder attaches an optional datagram recorder.
func (l *Loop) SetRecorder(r DatagramRecorder) {
	l.recorder = r
}

// SetEventSink attaches an optional measurement event sink.
func (l *Loop) SetEventSink(s EventSink) {
	l.events = s
}

// Run receives datagrams until the meter reports the stop threshold, then
// writes the summary block. A receive failure is fatal: the error is
// returned without any retry, and no summary is written.
func (l *Loop) Run() (model.Summary, error) {
	local := l.conn.LocalAddr().(*net.UDPAddr)
	fmt.Fprintln(l.out, "Do Ctrl+c to exit the program !!")
	fmt.Fprintf(l.out, "## server is listening from %s on Port %d \n", local.IP, local.Port)
	fmt.Fprintf(l.out, "start: %s\n", time.Now().Format("15:04:05.000000"))

	l.meter.Start()

	buf := make([]byte, BufferSize)
	for {
		n, src, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			return model.Summary{}, fmt.Errorf("failed to receive datagram: %w", err)
		}

		if l.recorder != nil {
			if err := l.recorder.Record(buf[:n], src); err != nil {
				return model.Summary{}, fmt.Errorf("failed to record datagram: %w", err)
			}
		}

		readings, done := l.meter.Observe(n)
		for _, r := range readings {
			report.WriteReading(l.out, r)
			if l.events != nil {
				if err := l.events.PublishReading(r); err != nil {
					return model.Summary{}, fmt.Errorf("failed to publish reading: %w", err)
				}
			}
		}
		if done {
			break
		}
	}

	summary := l.meter.Finalize()
	report.WriteSummary(l.out, summary)
	if l.events != nil {
		if err := l.events.PublishSummary(summary); err != nil {
			return summary, fmt.Errorf("failed to publish summary: %w", err)
		}
	}
	return summary, nil
}

// Dump receives datagrams forever, printing each one with a running counter
// and the sender address. It only returns on a receive failure.
func Dump(conn *net.UDPConn, out io.Writer) error {
	buf := make([]byte, BufferSize)
	count := 0
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			return fmt.Errorf("failed to receive datagram: %w", err)
		}
		count++
		fmt.Fprintf(out, "Packet #%d from %s: %s\n", count, src, string(buf[:n]))
	}
}
