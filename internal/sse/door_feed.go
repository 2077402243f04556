package sse

import (
	"context"
	"sync"

	"eventgate/internal/models"
)

// DoorFeed manages SSE connections and broadcasting for live door scans.
// The dashboard's attendance view subscribes per event.
type DoorFeed struct {
	// Event channel clients map - key: eventID, value: slice of client channels
	eventClients     map[string][]chan models.ScanEvent
	eventClientMutex sync.RWMutex
}

// NewDoorFeed creates a new SSE broadcaster for scan events
func NewDoorFeed() *DoorFeed {
	return &DoorFeed{
		eventClients: make(map[string][]chan models.ScanEvent),
	}
}

// SubscribeToEvent adds a client to the event's scan feed
func (f *DoorFeed) SubscribeToEvent(ctx context.Context, eventID string) chan models.ScanEvent {
	clientChan := make(chan models.ScanEvent, 10)

	f.eventClientMutex.Lock()
	if f.eventClients[eventID] == nil {
		f.eventClients[eventID] = []chan models.ScanEvent{}
	}
	f.eventClients[eventID] = append(f.eventClients[eventID], clientChan)
	f.eventClientMutex.Unlock()

	// Remove client when context is done
	go func() {
		<-ctx.Done()
		f.removeEventClient(eventID, clientChan)
	}()

	return clientChan
}

// Emit broadcasts a scan to all clients subscribed to its event. Slow
// clients are skipped rather than blocking the door. The read lock is held
// across the sends: channels are closed under the write lock, so a send can
// never race a disconnecting client's close.
func (f *DoorFeed) Emit(scan models.ScanEvent) {
	f.eventClientMutex.RLock()
	defer f.eventClientMutex.RUnlock()

	for _, clientChan := range f.eventClients[scan.EventID] {
		select {
		case clientChan <- scan:
		default:
		}
	}
}

func (f *DoorFeed) removeEventClient(eventID string, clientChan chan models.ScanEvent) {
	f.eventClientMutex.Lock()
	defer f.eventClientMutex.Unlock()

	clients := f.eventClients[eventID]
	for i, ch := range clients {
		if ch == clientChan {
			f.eventClients[eventID] = append(clients[:i], clients[i+1:]...)
			close(ch)
			break
		}
	}
	if len(f.eventClients[eventID]) == 0 {
		delete(f.eventClients, eventID)
	}
}
