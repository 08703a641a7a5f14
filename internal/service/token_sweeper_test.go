package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingPurger struct {
	mu sync.Mutex
	n  int
}

func (p *countingPurger) PurgeExpired(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	return nil
}

func (p *countingPurger) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

func TestPurgeTokensSweepsUntilCancelled(t *testing.T) {
	p := &countingPurger{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		PurgeTokens(ctx, p, time.Millisecond, zerolog.Nop())
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for p.calls() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweep never ran")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper kept running after cancel")
	}
}
