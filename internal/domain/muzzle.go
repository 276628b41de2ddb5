package domain

import "time"

// MuzzleStatus — статус биометрической записи.
type MuzzleStatus string

const (
	// MuzzleStatusVerified — запись подтверждена при регистрации.
	// Единственный статус на текущий момент; тип оставлен расширяемым
	// (например, под будущий revoked).
	MuzzleStatusVerified MuzzleStatus = "verified"
)

// MuzzleRecord описывает зарегистрированную биометрию одного животного.
// Features, ListingID и RegisteredAt неизменяемы после вставки в реестр.
type MuzzleRecord struct {
	ID           string
	Features     []float32
	ListingID    string
	AnimalName   string
	RegisteredAt time.Time
	Status       MuzzleStatus
}

func NewMuzzleRecord(id string, features []float32, listingID string, animalName string) *MuzzleRecord {
	return &MuzzleRecord{
		ID:           id,
		Features:     features,
		ListingID:    listingID,
		AnimalName:   animalName,
		RegisteredAt: time.Now().UTC(),
		Status:       MuzzleStatusVerified,
	}
}
