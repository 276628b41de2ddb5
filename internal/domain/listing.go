package domain

import "time"

// Listing описывает объявление о продаже животного.
type Listing struct {
	ID          int64
	Name        string
	Breed       string
	AnimalType  AnimalType
	Price       int64 // Цена хранится в пайсах
	Location    string
	Age         *int32
	YieldAmount *int64 // Надой в мл/день
	SellerName  *string
	ImageURL    *string
	IsVerified  bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewListing(name, breed string, animalType AnimalType, price int64, location string) *Listing {
	return &Listing{
		Name:       name,
		Breed:      breed,
		AnimalType: animalType,
		Price:      price,
		Location:   location,
	}
}
