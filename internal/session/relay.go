package session

import (
	"errors"
	"io"
	"os"

	"github.com/andyrewlee/ring0/internal/logging"
	"github.com/andyrewlee/ring0/internal/perf"
	"github.com/andyrewlee/ring0/internal/safego"
)

// ReadBufferSize is the relay's read chunk size.
const ReadBufferSize = 4096

// Relay copies r onto q until r fails. Each chunk is pushed as its own copy.
// EOF or a read error ends the relay with a single Closed message; a Push
// rejected by a closed queue ends it silently.
func Relay(r io.Reader, q *Queue) {
	buf := make([]byte, ReadBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			perf.Count("session.relay_bytes", int64(n))
			if !q.Push(Message{Data: chunk}) {
				logging.Debug("relay: consumer gone, stopping")
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				logging.Warn("relay: read failed: %v", err)
			} else {
				logging.Debug("relay: output closed")
			}
			q.Push(Message{Closed: true})
			return
		}
	}
}

// StartRelay runs Relay on a panic-safe goroutine. The returned channel
// closes when the relay has exited.
func StartRelay(r io.Reader, q *Queue) <-chan struct{} {
	return safego.GoWait("session.relay", func() { Relay(r, q) })
}
