// Package report renders readings and run summaries in the receiver's fixed
// console format.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"NetGauge/internal/model"
)

const ruleWidth = 72

// IntervalLine formats one per-second throughput reading, e.g.
// "3-4:    498 KB/s".
func IntervalLine(r model.Reading) string {
	return fmt.Sprintf("%d-%d:    %.0f KB/s", r.Interval, r.Interval+1, r.KBPerSec)
}

// WriteReading writes one per-second line to w.
func WriteReading(w io.Writer, r model.Reading) {
	fmt.Fprintln(w, IntervalLine(r))
}

// WriteSummary writes the end-of-run summary block, delimited above and below
// by a rule line of dashes.
func WriteSummary(w io.Writer, s model.Summary) {
	rule := strings.Repeat("-", ruleWidth)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Number of packets received : %d\n", s.PacketsReceived)
	fmt.Fprintf(w, "Total bytes received       :   %d\n", s.BytesTotal)
	fmt.Fprintf(w, "Bytes received             : %s KB/s\n", formatFloat(float64(s.BytesFolded)/1000))
	fmt.Fprintf(w, "Bytes received             : %d B/s\n", s.BytesFolded)
	fmt.Fprintf(w, "Average Bytes received     : %s KB/s\n", formatFloat(s.AvgFoldedKBPerSec))
	fmt.Fprintf(w, "packets out of order       : %d / %d\n", s.PacketsOutOfOrder, s.PacketsReceived)
	fmt.Fprintf(w, "duplicated packets         : %d\n", s.DuplicatedPackets)
	fmt.Fprintf(w, "duration : %d\n", s.DurationSeconds)
	fmt.Fprintf(w, "Average throughput:     %.1f KB/s\n", s.AvgKBPerSec)
	fmt.Fprintln(w, rule)
}

// formatFloat renders a float with no fixed precision, the shortest exact
// representation.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
