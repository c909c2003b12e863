// Package notify dispara avisos visibles al usuario. El render de los avisos no es parte
// del backend: aquí solo se encolan para que la vista los recoja.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Kind tipo de aviso.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notifier contrato fire-and-forget: no devuelve nada y nunca bloquea.
type Notifier interface {
	Notify(kind Kind, title, description string)
}

// Notification aviso encolado.
type Notification struct {
	Kind        Kind
	Title       string
	Description string
	At          time.Time
}

// DefaultCapacity capacidad de la cola si no se configura.
const DefaultCapacity = 20

// Queue cola acotada en memoria. Al llenarse descarta el aviso más antiguo.
type Queue struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	dropped  int
	log      zerolog.Logger
	now      func() time.Time
}

var _ Notifier = (*Queue)(nil)

// NewQueue construye la cola con la capacidad dada (<= 0 usa DefaultCapacity).
func NewQueue(capacity int, log zerolog.Logger) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{capacity: capacity, log: log, now: time.Now}
}

// Notify encola el aviso y lo registra en el log.
func (q *Queue) Notify(kind Kind, title, description string) {
	n := Notification{Kind: kind, Title: title, Description: description, At: q.now()}

	q.mu.Lock()
	if len(q.items) >= q.capacity {
		q.items = q.items[1:]
		q.dropped++
	}
	q.items = append(q.items, n)
	q.mu.Unlock()

	ev := q.log.Info()
	if kind == KindError {
		ev = q.log.Warn()
	}
	ev.Str("kind", string(kind)).Str("title", title).Msg("aviso al usuario")
}

// Drain devuelve los avisos pendientes en orden de llegada y vacía la cola.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len avisos pendientes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped avisos descartados por capacidad.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
