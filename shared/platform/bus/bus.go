package bus

import "context"

// Keyer lo implementan los eventos que necesitan orden por agregado.
// La clave suele ser el ID del listing.
type Keyer interface {
	PartitionKey() string
}

// EventPublisher publica un evento ya construido; topic y codificación los decide cada adapter.
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}

// PartitionKeyOf devuelve la clave de partición si el evento implementa Keyer.
func PartitionKeyOf(event interface{}) (string, bool) {
	k, ok := event.(Keyer)
	if !ok {
		return "", false
	}
	return k.PartitionKey(), true
}
