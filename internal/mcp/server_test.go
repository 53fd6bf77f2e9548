package mcp

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatchSignals(t *testing.T) {
	tests := []struct {
		name   string
		signal bool
	}{
		{name: "interrupt cancels", signal: true},
		{name: "context end stops watching", signal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			done := watchSignals(ctx, cancel, sigChan)

			if tt.signal {
				sigChan <- os.Interrupt
			} else {
				cancel()
			}

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("signal watcher did not exit")
			}
			if ctx.Err() == nil {
				t.Error("context not cancelled")
			}
		})
	}
}
