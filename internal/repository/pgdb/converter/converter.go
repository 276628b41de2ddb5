package converter

import (
	"github.com/moomingle/go-backend/internal/domain"
	"github.com/moomingle/go-backend/internal/usecase"
)

// ListingConverter преобразует сущности Listing между domain и моделью PostgreSQL.
type ListingConverter interface {
	ToModel(entity *domain.Listing) *ListingModel
	ToEntity(model *ListingModel) *domain.Listing
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type listingConverter struct{}

func NewListingConverter() ListingConverter {
	return listingConverter{}
}

func (listingConverter) ToModel(entity *domain.Listing) *ListingModel {
	return &ListingModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Breed:       entity.Breed,
		AnimalType:  string(entity.AnimalType),
		Price:       entity.Price,
		Location:    entity.Location,
		Age:         entity.Age,
		YieldAmount: entity.YieldAmount,
		SellerName:  entity.SellerName,
		ImageURL:    entity.ImageURL,
		IsVerified:  entity.IsVerified,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (listingConverter) ToEntity(model *ListingModel) *domain.Listing {
	return &domain.Listing{
		ID:          model.ID,
		Name:        model.Name,
		Breed:       model.Breed,
		AnimalType:  domain.AnimalType(model.AnimalType),
		Price:       model.Price,
		Location:    model.Location,
		Age:         model.Age,
		YieldAmount: model.YieldAmount,
		SellerName:  model.SellerName,
		ImageURL:    model.ImageURL,
		IsVerified:  model.IsVerified,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

type outboxEventConverter struct{}

func NewOutboxEventConverter() OutboxEventConverter {
	return outboxEventConverter{}
}

func (outboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   entity.EventType,
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (outboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   model.EventType,
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c outboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	entities := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		entities = append(entities, c.ToEntity(model))
	}

	return entities
}
