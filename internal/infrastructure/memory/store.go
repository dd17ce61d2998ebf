// Package memory implementa los puertos de inventario en memoria de proceso.
// Serializa por clave con KeyLocker y publica cada mutación bajo un único write lock,
// por lo que las lecturas nunca ven un registro de kardex sin su snapshot.
// Sólo protege contra concurrencia dentro de un mismo proceso.
package memory

import (
	"sync"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// Store estado compartido de los repositorios en memoria.
type Store struct {
	mu         sync.RWMutex
	snapshots  map[entity.StockKey]entity.StockSnapshot
	entries    []entity.LedgerEntry
	byKey      map[entity.StockKey][]int // índices en entries, en orden de Sequence
	byIdem     map[string]int
	seq        int64
	reasons    map[string]entity.MovementReason // por ID
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	locker     *KeyLocker
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		snapshots:  make(map[entity.StockKey]entity.StockSnapshot),
		byKey:      make(map[entity.StockKey][]int),
		byIdem:     make(map[string]int),
		reasons:    make(map[string]entity.MovementReason),
		products:   make(map[string]entity.Product),
		warehouses: make(map[string]entity.Warehouse),
		locker:     NewKeyLocker(),
	}
}

// commit publica los cambios de una transacción de forma atómica para los lectores.
// El motivo de cada registro se vuelve a comprobar bajo el mismo lock que usa el borrado
// de motivos, así un motivo borrado durante la transacción nunca queda citado.
func (s *Store) commit(entries []*entity.LedgerEntry, snapshots map[entity.StockKey]entity.StockSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if !s.reasonCodeExists(e.ReasonCode) {
			return domain.ErrInvalidReason
		}
		if e.IdempotencyKey != nil {
			if _, dup := s.byIdem[*e.IdempotencyKey]; dup {
				return domain.ErrConflict
			}
		}
	}
	for _, e := range entries {
		s.seq++
		e.Sequence = s.seq
		idx := len(s.entries)
		s.entries = append(s.entries, e.Clone())
		key := e.Key()
		s.byKey[key] = append(s.byKey[key], idx)
		if e.IdempotencyKey != nil {
			s.byIdem[*e.IdempotencyKey] = idx
		}
	}
	for key, snap := range snapshots {
		s.snapshots[key] = snap.Clone()
	}
	return nil
}

// reasonCodeExists requiere s.mu tomado.
func (s *Store) reasonCodeExists(code string) bool {
	for _, r := range s.reasons {
		if r.Code == code {
			return true
		}
	}
	return false
}

// reasonReferenced requiere s.mu tomado.
func (s *Store) reasonReferenced(code string) bool {
	for _, e := range s.entries {
		if e.ReasonCode == code {
			return true
		}
	}
	return false
}

func (s *Store) snapshot(key entity.StockKey) (entity.StockSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[key]
	return snap.Clone(), ok
}

func (s *Store) lastEntry(key entity.StockKey) (entity.LedgerEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.byKey[key]
	if len(idx) == 0 {
		return entity.LedgerEntry{}, false
	}
	return s.entries[idx[len(idx)-1]].Clone(), true
}

func (s *Store) entriesByKey(key entity.StockKey) []entity.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.byKey[key]
	out := make([]entity.LedgerEntry, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.entries[i].Clone())
	}
	return out
}

func (s *Store) entryByIdempotencyKey(k string) (entity.LedgerEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byIdem[k]
	if !ok {
		return entity.LedgerEntry{}, false
	}
	return s.entries[i].Clone(), true
}
