package memory

import "github.com/jhoicas/Inventario-kardex/internal/domain/entity"

// CorruptSnapshot sobrescribe la cantidad confirmada sin pasar por el kardex.
func (s *Store) CorruptSnapshot(key entity.StockKey, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshots[key]
	snap.Quantity = qty
	s.snapshots[key] = snap
}
