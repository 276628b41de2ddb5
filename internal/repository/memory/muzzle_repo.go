package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/moomingle/go-backend/internal/domain"
	"github.com/moomingle/go-backend/pkg/e"
)

// MuzzleRepo — реестр биометрий в памяти процесса.
//
// Записи хранятся в порядке вставки; Scan и FindByListing обходят их в этом
// порядке. Реестр только растёт: записи не изменяются и не удаляются, поэтому
// снимок Scan безопасен для чтения параллельно с вставками.
type MuzzleRepo struct {
	mu      sync.RWMutex
	byID    map[string]int
	records []domain.MuzzleRecord
}

func NewMuzzleRepo() *MuzzleRepo {
	return &MuzzleRepo{
		byID: make(map[string]int),
	}
}

// Insert добавляет новую запись в конец реестра.
// Вектор копируется: реестр единолично владеет содержимым записи.
func (m *MuzzleRepo) Insert(_ context.Context, record *domain.MuzzleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[record.ID]; exists {
		return fmt.Errorf("muzzle id %s already registered", record.ID)
	}

	stored := *record
	stored.Features = append([]float32(nil), record.Features...)

	m.byID[record.ID] = len(m.records)
	m.records = append(m.records, stored)
	return nil
}

// Scan возвращает снимок всех записей в порядке вставки.
func (m *MuzzleRepo) Scan(_ context.Context) ([]domain.MuzzleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make([]domain.MuzzleRecord, len(m.records))
	copy(snapshot, m.records)
	return snapshot, nil
}

// FindByListing возвращает первую запись с данным listing_id в порядке вставки.
func (m *MuzzleRepo) FindByListing(_ context.Context, listingID string) (*domain.MuzzleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.records {
		if m.records[i].ListingID == listingID {
			found := m.records[i]
			return &found, nil
		}
	}

	return nil, e.ErrBiometricNotFound
}

// Count возвращает число записей в реестре.
func (m *MuzzleRepo) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records), nil
}
