package domain

import (
	"fmt"

	"github.com/moomingle/go-backend/pkg/e"
)

// Prototype — эталонный вектор (центроид) одной породы.
type Prototype struct {
	Breed  string
	Vector []float32
}

// PrototypeSet — неизменяемый набор прототипов пород с фиксированным
// порядком обхода. Порядок задаётся при загрузке артефакта и важен:
// при равных score выигрывает первая встреченная порода.
type PrototypeSet struct {
	prototypes []Prototype
	dimension  int
}

// NewPrototypeSet строит набор прототипов, проверяя уникальность имён
// и единую размерность векторов.
func NewPrototypeSet(prototypes []Prototype) (*PrototypeSet, error) {
	if len(prototypes) == 0 {
		return nil, e.ErrNoPrototypes
	}

	dim := len(prototypes[0].Vector)
	seen := make(map[string]bool, len(prototypes))
	for _, p := range prototypes {
		if p.Breed == "" {
			return nil, fmt.Errorf("prototype with empty breed name")
		}
		if seen[p.Breed] {
			return nil, fmt.Errorf("duplicate prototype breed %q", p.Breed)
		}
		seen[p.Breed] = true

		if len(p.Vector) == 0 {
			return nil, e.Wrap(p.Breed, e.ErrEmptyVector)
		}
		if len(p.Vector) != dim {
			return nil, e.Wrap(p.Breed, e.ErrDimensionMismatch)
		}
	}

	return &PrototypeSet{prototypes: prototypes, dimension: dim}, nil
}

// All возвращает прототипы в порядке загрузки.
func (s *PrototypeSet) All() []Prototype {
	return s.prototypes
}

// Len возвращает число прототипов в наборе.
func (s *PrototypeSet) Len() int {
	return len(s.prototypes)
}

// Dimension возвращает размерность векторов набора.
func (s *PrototypeSet) Dimension() int {
	return s.dimension
}
