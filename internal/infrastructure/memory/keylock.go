package memory

import (
	"sync"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// KeyLocker entrega un mutex por clave (producto, bodega).
// Las entradas se liberan cuando nadie las usa, así el mapa no crece con claves inactivas.
type KeyLocker struct {
	mu    sync.Mutex
	locks map[entity.StockKey]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyLocker crea un locker vacío.
func NewKeyLocker() *KeyLocker {
	return &KeyLocker{locks: make(map[entity.StockKey]*keyLock)}
}

// Lock bloquea la clave y devuelve la función que la libera.
func (l *KeyLocker) Lock(key entity.StockKey) (unlock func()) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// Len número de claves con lock vivo.
func (l *KeyLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
