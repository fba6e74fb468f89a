//go:build windows

package pty

import (
	"testing"
	"time"
)

func TestCoordClamps(t *testing.T) {
	tests := []struct {
		size Size
		x, y int16
	}{
		{Size{Cols: 80, Rows: 24}, 80, 24},
		{Size{Cols: 0x7fff, Rows: 0x8000}, 0x7fff, 0x7fff},
		{SizeOf(1<<20, 1<<20), 0x7fff, 0x7fff},
	}
	for _, tt := range tests {
		c := coord(tt.size)
		if c.X != tt.x || c.Y != tt.y {
			t.Errorf("coord(%s) = %d,%d, want %d,%d", tt.size, c.X, c.Y, tt.x, tt.y)
		}
	}
}

func TestCloseWithUnreadOutput(t *testing.T) {
	s, err := Spawn(`cmd.exe /c for /l %i in (1,1,2000) do @echo line %i`, Size{Cols: 80, Rows: 24})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	time.Sleep(500 * time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- s.Close() }()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("Close blocked with output pending")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if running, _ := s.IsRunning(); running {
		t.Fatalf("process still reported running after Close")
	}
}

func TestCloseWhileReading(t *testing.T) {
	s, err := Spawn("cmd.exe", Size{Cols: 80, Rows: 24})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		buf := make([]byte, 256)
		for {
			if _, err := s.Read(buf); err != nil {
				return
			}
		}
	}()
	time.Sleep(200 * time.Millisecond)

	if err := s.Close(); err != nil {
		t.Logf("Close: %v", err)
	}
	select {
	case <-readDone:
	case <-time.After(5 * time.Second):
		t.Fatalf("reader not released by Close")
	}
}
