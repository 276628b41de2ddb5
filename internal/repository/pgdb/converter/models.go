package converter

import "time"

// ListingModel представляет запись таблицы listings в PostgreSQL.
type ListingModel struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	Breed       string     `db:"breed"`
	AnimalType  string     `db:"animal_type"`
	Price       int64      `db:"price"`
	Location    string     `db:"location"`
	Age         *int32     `db:"age"`
	YieldAmount *int64     `db:"yield_amount"`
	SellerName  *string    `db:"seller_name"`
	ImageURL    *string    `db:"image_url"`
	IsVerified  bool       `db:"is_verified"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
