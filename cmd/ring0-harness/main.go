// Command ring0-harness measures decode, apply and render cost for
// synthetic shell output without a pseudo-terminal.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/andyrewlee/ring0/internal/logging"
	"github.com/andyrewlee/ring0/internal/screen"
	"github.com/andyrewlee/ring0/internal/vt"
)

type stats struct {
	avg time.Duration
	min time.Duration
	max time.Duration
	p50 time.Duration
	p95 time.Duration
	p99 time.Duration
}

func main() {
	width := flag.Int("width", 160, "screen width in columns")
	height := flag.Int("height", 48, "screen height in rows")
	frames := flag.Int("frames", 300, "number of measured frames")
	warmup := flag.Int("warmup", 30, "warmup frames to ignore")
	payloadBytes := flag.Int("payload-bytes", 4096, "bytes fed per frame")
	newlineEvery := flag.Int("newline-every", 80, "emit CRLF every N bytes (0 disables)")
	verbose := flag.Bool("v", false, "log per-frame timings to stderr")
	flag.Parse()

	logging.InitializeWriter(os.Stderr, logging.LevelDebug)
	logging.SetEnabled(*verbose)

	scr, err := screen.New(screen.Size{Cols: *width, Rows: *height})
	if err != nil {
		fmt.Fprintf(os.Stderr, "harness init failed: %v\n", err)
		os.Exit(1)
	}

	totalFrames := *warmup + *frames
	if totalFrames <= 0 {
		fmt.Fprintln(os.Stderr, "frames + warmup must be > 0")
		os.Exit(1)
	}

	payload := makePayload(*payloadBytes, *newlineEvery)
	dec := vt.NewDecoder()
	var ops []vt.Op
	var rows []rune

	durations := make([]time.Duration, 0, *frames)
	startAll := time.Now()

	for i := 0; i < totalFrames; i++ {
		start := time.Now()
		ops = dec.Advance(payload, ops[:0])
		scr.ApplyAll(ops)
		rows = scr.Render(rows)
		d := time.Since(start)
		if i >= *warmup {
			durations = append(durations, d)
		}
		logging.Debug("frame %d: ops=%d took=%s", i, len(ops), d)
	}

	total := time.Since(startAll)
	s := summarize(durations)
	fmt.Printf("frames=%d warmup=%d size=%dx%d payload=%dB newline_every=%d scrollback=%d\n",
		*frames, *warmup, *width, *height, *payloadBytes, *newlineEvery, scr.ScrollbackLen())
	fmt.Printf("total=%s avg=%s p50=%s p95=%s p99=%s min=%s max=%s throughput=%.2fMB/s\n",
		total, s.avg, s.p50, s.p95, s.p99, s.min, s.max, throughput(durations, len(payload)))
}

// makePayload builds printable text broken by CRLF every n bytes.
func makePayload(size, n int) []byte {
	var b bytes.Buffer
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789 "
	col := 0
	for b.Len() < size {
		if n > 0 && col == n {
			b.WriteString("\r\n")
			col = 0
			continue
		}
		b.WriteByte(alphabet[b.Len()%len(alphabet)])
		col++
	}
	return b.Bytes()
}

func summarize(durations []time.Duration) stats {
	if len(durations) == 0 {
		return stats{}
	}
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return stats{
		avg: total / time.Duration(len(durations)),
		min: sorted[0],
		max: sorted[len(sorted)-1],
		p50: percentile(sorted, 0.50),
		p95: percentile(sorted, 0.95),
		p99: percentile(sorted, 0.99),
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := int(float64(len(sorted)-1) * p)
	return sorted[pos]
}

func throughput(durations []time.Duration, perFrame int) float64 {
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	if total <= 0 {
		return 0
	}
	return float64(len(durations)*perFrame) / total.Seconds() / (1 << 20)
}
