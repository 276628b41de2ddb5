package http

import (
	"net/http"

	"github.com/moomingle/go-backend/internal/usecase"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/moomingle/go-backend/pkg/logger"
)

type BreedHandler struct {
	breedUsecase usecase.BreedUC
	logger       logger.Logger
}

func NewBreedHandler(breedUsecase usecase.BreedUC, logger logger.Logger) *BreedHandler {
	return &BreedHandler{breedUsecase: breedUsecase, logger: logger}
}

type breedScoreResponse struct {
	Breed string  `json:"breed"`
	Score float64 `json:"score"`
}

type predictResponse struct {
	Breed      string               `json:"breed"`
	Confidence float64              `json:"confidence"`
	AnimalType string               `json:"animal_type"`
	IsVerified bool                 `json:"is_verified"`
	AllScores  []breedScoreResponse `json:"all_scores"`
	Source     string               `json:"source"`
}

// predict
//
//	@Summary		Определение породы животного
//	@Description	Классифицирует породу по фотографии, при недоступности модели возвращает фолбэк-результат
//	@Tags			breeds
//	@Accept			multipart/form-data
//	@Accept			json
//	@Produce		json
//	@Param			image	formData	file	true	"Фотография животного"
//	@Success		200		{object}	predictResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/predict [post]
func (b *BreedHandler) predict(w http.ResponseWriter, r *http.Request) {
	form, err := parseImageForm(w, r)
	if err != nil {
		b.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := b.breedUsecase.Classify(r.Context(), usecase.NewClassifyBreedReq(form.Image))
	if err != nil {
		b.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	scores := make([]breedScoreResponse, 0, len(res.AllScores))
	for _, score := range res.AllScores {
		scores = append(scores, breedScoreResponse{Breed: score.Breed, Score: score.Score})
	}

	WriteSuccess(w, http.StatusOK, predictResponse{
		Breed:      res.Breed,
		Confidence: res.Confidence,
		AnimalType: string(res.AnimalType),
		IsVerified: res.IsVerified,
		AllScores:  scores,
		Source:     string(res.Source),
	})
}

// listBreeds
//
//	@Summary	Списки поддерживаемых пород
//	@Tags		breeds
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/breeds [get]
func (b *BreedHandler) listBreeds(w http.ResponseWriter, _ *http.Request) {
	res := b.breedUsecase.Breeds()

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"buffalo_breeds": res.Buffalo,
		"cattle_breeds":  res.Cattle,
		"total":          res.Total,
	})
}
