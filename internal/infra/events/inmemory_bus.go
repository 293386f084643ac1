package events

import (
	"context"
	"encoding/json"
	"sync"

	sharedBus "github.com/davicafu/listingsearch/shared/platform/bus"
)

// InMemoryEventBus reparte los eventos de un topic entre sus suscriptores.
// Si el canal de un suscriptor está lleno, el evento se descarta para ese suscriptor.
type InMemoryEventBus struct {
	subscribers []chan []byte
	mu          sync.RWMutex
	topic       string
}

var _ sharedBus.EventPublisher = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus(topic string) *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make([]chan []byte, 0),
		topic:       topic,
	}
}

func (b *InMemoryEventBus) Topic() string {
	return b.topic
}

// Publish serializa el evento y lo entrega en segundo plano.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	subs := append([]chan []byte(nil), b.subscribers...)
	b.mu.RUnlock()

	if len(subs) > 0 {
		go distribute(subs, payload)
	}
	return nil
}

func distribute(subs []chan []byte, payload []byte) {
	for _, ch := range subs {
		select {
		case ch <- payload:
		default:
		}
	}
}

// Subscribe registra un nuevo oyente con el buffer indicado.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []byte, bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Consume entrega los mensajes del canal al handler hasta que ctx se cancele.
func Consume(ctx context.Context, ch <-chan []byte, handler MessageHandler) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case payload := <-ch:
				handler.HandleMessage(ctx, "", payload)
			}
		}
	}()
}
