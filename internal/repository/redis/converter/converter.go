package converter

import (
	"github.com/moomingle/go-backend/internal/domain"
	"github.com/moomingle/go-backend/internal/usecase"
)

type ClassificationConverter interface {
	ToRedisModel(res *usecase.ClassifyBreedRes) *ClassificationRedisModel
	ToUseCase(model *ClassificationRedisModel) *usecase.ClassifyBreedRes
}

type classificationConverter struct{}

func NewClassificationConverter() ClassificationConverter {
	return classificationConverter{}
}

func (classificationConverter) ToRedisModel(res *usecase.ClassifyBreedRes) *ClassificationRedisModel {
	scores := make([]BreedScoreModel, 0, len(res.AllScores))
	for _, score := range res.AllScores {
		scores = append(scores, BreedScoreModel{Breed: score.Breed, Score: score.Score})
	}

	return &ClassificationRedisModel{
		Breed:      res.Breed,
		Confidence: res.Confidence,
		AnimalType: string(res.AnimalType),
		IsVerified: res.IsVerified,
		AllScores:  scores,
		Source:     string(res.Source),
	}
}

func (classificationConverter) ToUseCase(model *ClassificationRedisModel) *usecase.ClassifyBreedRes {
	scores := make([]usecase.BreedScore, 0, len(model.AllScores))
	for _, score := range model.AllScores {
		scores = append(scores, usecase.BreedScore{Breed: score.Breed, Score: score.Score})
	}

	return &usecase.ClassifyBreedRes{
		Breed:      model.Breed,
		Confidence: model.Confidence,
		AnimalType: domain.AnimalType(model.AnimalType),
		IsVerified: model.IsVerified,
		AllScores:  scores,
		Source:     usecase.ClassificationSource(model.Source),
	}
}
