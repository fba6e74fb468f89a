package session

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestQueuePreservesOrder(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		if !q.Push(Message{Data: []byte(strconv.Itoa(i))}) {
			t.Fatalf("push %d rejected", i)
		}
	}
	q.Push(Message{Closed: true})

	got := q.Drain(nil)
	if len(got) != 6 {
		t.Fatalf("drained %d messages, want 6", len(got))
	}
	for i := 0; i < 5; i++ {
		if string(got[i].Data) != strconv.Itoa(i) {
			t.Fatalf("message %d = %q", i, got[i].Data)
		}
	}
	if !got[5].Closed {
		t.Fatalf("expected trailing Closed")
	}
	if q.Len() != 0 || len(q.Drain(nil)) != 0 {
		t.Fatalf("queue not empty after drain")
	}
}

func TestQueueDrainAppends(t *testing.T) {
	q := NewQueue()
	q.Push(Message{Data: []byte("b")})
	dst := []Message{{Data: []byte("a")}}
	dst = q.Drain(dst)
	if len(dst) != 2 || string(dst[0].Data) != "a" || string(dst[1].Data) != "b" {
		t.Fatalf("unexpected drain result %+v", dst)
	}
}

func TestQueuePushAfterClose(t *testing.T) {
	q := NewQueue()
	q.Push(Message{Data: []byte("x")})
	q.Close()
	if q.Push(Message{Data: []byte("y")}) {
		t.Fatalf("push accepted after Close")
	}
	if !q.Closed() || q.Len() != 0 {
		t.Fatalf("closed queue retained messages")
	}
}

func TestQueueReadySignals(t *testing.T) {
	q := NewQueue()
	select {
	case <-q.Ready():
		t.Fatalf("ready before push")
	default:
	}
	q.Push(Message{Data: []byte("x")})
	q.Push(Message{Data: []byte("y")})
	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatalf("no ready signal")
	}
	if n := len(q.Drain(nil)); n != 2 {
		t.Fatalf("drained %d, want 2", n)
	}
}

func TestQueueConcurrentProducer(t *testing.T) {
	q := NewQueue()
	const total = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			q.Push(Message{Data: []byte{byte(i)}})
		}
	}()

	var got []Message
	deadline := time.After(5 * time.Second)
	for len(got) < total {
		select {
		case <-q.Ready():
			got = q.Drain(got)
		case <-deadline:
			t.Fatalf("received %d of %d", len(got), total)
		}
	}
	wg.Wait()
	for i, m := range got {
		if m.Data[0] != byte(i) {
			t.Fatalf("message %d out of order", i)
		}
	}
}
