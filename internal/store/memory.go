package store

import (
	"context"
	"sync"

	"area-picker/internal/region"
)

// MemoryStore：进程内实现，语义与 GormStore 一致；用于测试与 STORE=memory
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[region.Level][]region.Area
	byID   map[int64]region.Area
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[region.Level][]region.Area),
		byID: make(map[int64]region.Area),
	}
}

func (m *MemoryStore) Find(ctx context.Context, scope region.Scope) ([]region.Area, error) {
	if !scope.Level.Valid() {
		return nil, region.ErrInvalidLevel
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]region.Area, 0)
	for _, a := range m.rows[scope.Level] {
		if scope.Level == region.LevelProvince || a.ParentID == scope.ParentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryStore) SaveBatch(ctx context.Context, scope region.Scope, areas []region.Area) (int, error) {
	if err := checkBatch(scope, areas); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(areas) == 0 {
		return 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows[scope.Level] {
		if scope.Level == region.LevelProvince || a.ParentID == scope.ParentID {
			return 0, nil
		}
	}
	if parentLevel, ok := scope.Level.Parent(); ok {
		p, exists := m.byID[scope.ParentID]
		if !exists || p.Level != parentLevel {
			return 0, region.ErrUnknownParent
		}
	}
	for _, a := range areas {
		m.nextID++
		a.ID = m.nextID
		if scope.Level == region.LevelProvince {
			a.ParentID = 0
		} else {
			a.ParentID = scope.ParentID
		}
		m.rows[scope.Level] = append(m.rows[scope.Level], a)
		m.byID[a.ID] = a
	}
	return len(areas), nil
}

// Len：某一级别的记录总数
func (m *MemoryStore) Len(level region.Level) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows[level])
}

var _ Store = (*MemoryStore)(nil)
