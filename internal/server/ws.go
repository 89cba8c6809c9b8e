package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bjarke-xyz/portfolio/internal/domain"
	"github.com/gorilla/websocket"
)

const clientBufferSize = 8

// DirectoryBroker fans directory events out to the connected live feed
// clients. Only the Listen goroutine closes client channels.
type DirectoryBroker struct {
	// Events are pushed to this channel by Publish
	notifier chan []byte

	// New client connections
	newClients chan chan []byte

	// Closed client connections
	closingClients chan chan []byte

	// Client connections registry
	clients map[chan []byte]bool

	*sync.RWMutex

	done   chan struct{}
	logger *slog.Logger
}

func NewDirectoryBroker(logger *slog.Logger) *DirectoryBroker {
	return &DirectoryBroker{
		notifier:       make(chan []byte, clientBufferSize),
		newClients:     make(chan chan []byte),
		closingClients: make(chan chan []byte),
		clients:        make(map[chan []byte]bool),
		RWMutex:        &sync.RWMutex{},
		done:           make(chan struct{}),
		logger:         logger,
	}
}

// Publish never blocks the caller. Events are dropped when the broker is
// behind or stopped.
func (b *DirectoryBroker) Publish(ev domain.DirectoryEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error("failed to encode directory event", "error", err)
		return
	}
	select {
	case b.notifier <- msg:
	default:
		b.logger.Warn("dropped directory event", "type", ev.Type, "id", ev.ID)
	}
}

func (b *DirectoryBroker) Count() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.clients)
}

func (b *DirectoryBroker) registerClient(s chan []byte) {
	b.Lock()
	defer b.Unlock()
	b.clients[s] = true
}

func (b *DirectoryBroker) delClient(s chan []byte) bool {
	b.Lock()
	defer b.Unlock()
	_, ok := b.clients[s]
	delete(b.clients, s)
	return ok
}

func (b *DirectoryBroker) closeAll() {
	b.Lock()
	defer b.Unlock()
	for s := range b.clients {
		close(s)
		delete(b.clients, s)
	}
}

func (b *DirectoryBroker) Listen(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			b.logger.Info("Directory broker stopped")
			return
		case s := <-b.newClients:
			b.registerClient(s)
			b.logger.Info("Client added", "clients", b.Count())
		case s := <-b.closingClients:
			if b.delClient(s) {
				close(s)
			}
			b.logger.Info("Removed client", "clients", b.Count())
		case event := <-b.notifier:
			b.RLock()
			for clientMessageChan := range b.clients {
				// a slow client misses the event rather than stalling the others
				select {
				case clientMessageChan <- event:
				default:
				}
			}
			b.RUnlock()
		}
	}
}

// subscribe returns false once the broker has stopped.
func (b *DirectoryBroker) subscribe() (chan []byte, bool) {
	messageChan := make(chan []byte, clientBufferSize)
	select {
	case b.newClients <- messageChan:
		return messageChan, true
	case <-b.done:
		return nil, false
	}
}

func (b *DirectoryBroker) unsubscribe(messageChan chan []byte) {
	select {
	case b.closingClients <- messageChan:
	case <-b.done:
	}
}

const (
	readBuffSize = 2 << 10
	writeBuffSize
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  readBuffSize,
	WriteBufferSize: writeBuffSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
