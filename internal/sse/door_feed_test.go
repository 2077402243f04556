package sse_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"eventgate/internal/models"
	"eventgate/internal/sse"
)

func TestSubscribeAndEmit(t *testing.T) {
	feed := sse.NewDoorFeed()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := feed.SubscribeToEvent(ctx, "evt-1")

	feed.Emit(models.ScanEvent{EventID: "evt-1", AttendeeID: "att-1", Direction: models.ScanDirectionEntry})
	scan := <-ch
	assert.Equal(t, "att-1", scan.AttendeeID)

	// Scans for other events never reach this subscriber
	feed.Emit(models.ScanEvent{EventID: "evt-2", AttendeeID: "att-2", Direction: models.ScanDirectionEntry})
	select {
	case unexpected := <-ch:
		t.Fatalf("received scan for wrong event: %+v", unexpected)
	default:
	}
}

func TestSlowClientDoesNotBlockEmit(t *testing.T) {
	feed := sse.NewDoorFeed()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Never read from the channel; its buffer fills and further emits
	// must still return.
	feed.SubscribeToEvent(ctx, "evt-1")

	for i := 0; i < 100; i++ {
		feed.Emit(models.ScanEvent{EventID: "evt-1", AttendeeID: "att-1"})
	}
}

// A scan arriving while a dashboard client disconnects must never panic:
// the entry state machine emits after committing the transition, and a
// blown emit would fail a scan that already succeeded.
func TestEmitDuringDisconnect(t *testing.T) {
	feed := sse.NewDoorFeed()

	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				feed.Emit(models.ScanEvent{EventID: "evt-1", AttendeeID: "att-1", Direction: models.ScanDirectionEntry})
			}
		}
	}()

	// Churn subscribers: each cancel closes the client channel while the
	// emitter is mid-broadcast.
	for i := 0; i < 1000; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		ch := feed.SubscribeToEvent(ctx, "evt-1")
		go func() {
			for range ch {
			}
		}()
		cancel()
	}

	close(done)
	wg.Wait()
}
