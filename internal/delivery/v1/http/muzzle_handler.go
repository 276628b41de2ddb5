package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/moomingle/go-backend/internal/usecase"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/moomingle/go-backend/pkg/logger"
)

type MuzzleHandler struct {
	biometricUsecase usecase.BiometricUC
	logger           logger.Logger
}

func NewMuzzleHandler(biometricUsecase usecase.BiometricUC, logger logger.Logger) *MuzzleHandler {
	return &MuzzleHandler{biometricUsecase: biometricUsecase, logger: logger}
}

type registerResponse struct {
	Registered bool    `json:"registered"`
	MuzzleID   string  `json:"muzzle_id,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Status     string  `json:"status,omitempty"`
}

type duplicateResponse struct {
	Registered       bool    `json:"registered"`
	Error            string  `json:"error"`
	ExistingMuzzleID string  `json:"existing_muzzle_id"`
	Similarity       float64 `json:"similarity"`
}

type verifyResponse struct {
	Matched         bool    `json:"matched"`
	MuzzleID        string  `json:"muzzle_id,omitempty"`
	ListingID       string  `json:"listing_id,omitempty"`
	AnimalName      string  `json:"animal_name,omitempty"`
	Confidence      float64 `json:"confidence,omitempty"`
	IsExpectedMatch *bool   `json:"is_expected_match,omitempty"`
	BestSimilarity  float64 `json:"best_similarity"`
}

type statusResponse struct {
	MuzzleID     string  `json:"muzzle_id"`
	Status       string  `json:"status"`
	RegisteredAt string  `json:"registered_at"`
	AnimalName   string  `json:"animal_name,omitempty"`
	Confidence   float64 `json:"confidence"`
}

// register
//
//	@Summary		Регистрация биометрии животного
//	@Description	Сохраняет отпечаток носогубного зеркала, отклоняет дубликаты со статусом 409
//	@Tags			muzzle
//	@Accept			multipart/form-data
//	@Accept			json
//	@Produce		json
//	@Param			image		formData	file	true	"Снимок носогубного зеркала"
//	@Param			listing_id	formData	string	true	"Идентификатор объявления"
//	@Param			animal_name	formData	string	false	"Кличка животного"
//	@Success		201			{object}	registerResponse
//	@Failure		400			{object}	ErrorResponse		"Ошибка валидации"
//	@Failure		409			{object}	duplicateResponse	"Животное уже зарегистрировано"
//	@Router			/muzzle/register [post]
func (m *MuzzleHandler) register(w http.ResponseWriter, r *http.Request) {
	form, err := parseImageForm(w, r)
	if err != nil {
		m.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := m.biometricUsecase.Register(r.Context(), usecase.NewRegisterMuzzleReq(form.Image, form.ListingID, form.AnimalName))
	if err != nil {
		m.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	if !res.Registered {
		WriteSuccess(w, http.StatusConflict, duplicateResponse{
			Registered:       false,
			Error:            "muzzle already registered",
			ExistingMuzzleID: res.Duplicate.ExistingMuzzleID,
			Similarity:       res.Duplicate.Similarity,
		})
		return
	}

	WriteSuccess(w, http.StatusCreated, registerResponse{
		Registered: true,
		MuzzleID:   res.MuzzleID,
		Confidence: res.Confidence,
		Status:     string(res.Status),
	})
}

// verify
//
//	@Summary		Верификация животного по биометрии
//	@Description	Ищет ближайшую запись реестра, опционально сверяет с ожидаемым listing_id
//	@Tags			muzzle
//	@Accept			multipart/form-data
//	@Accept			json
//	@Produce		json
//	@Param			image		formData	file	true	"Снимок носогубного зеркала"
//	@Param			listing_id	formData	string	false	"Ожидаемый идентификатор объявления"
//	@Success		200			{object}	verifyResponse
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/muzzle/verify [post]
func (m *MuzzleHandler) verify(w http.ResponseWriter, r *http.Request) {
	form, err := parseImageForm(w, r)
	if err != nil {
		m.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	var expected *string
	if form.ListingID != "" {
		expected = &form.ListingID
	}

	res, err := m.biometricUsecase.Verify(r.Context(), usecase.NewVerifyMuzzleReq(form.Image, expected))
	if err != nil {
		m.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	response := verifyResponse{
		Matched:        res.Matched,
		BestSimilarity: res.BestSimilarity,
	}
	if res.Matched {
		isExpected := res.IsExpectedMatch
		response.MuzzleID = res.MuzzleID
		response.ListingID = res.ListingID
		response.AnimalName = res.AnimalName
		response.Confidence = res.Confidence
		response.IsExpectedMatch = &isExpected
	}

	WriteSuccess(w, http.StatusOK, response)
}

// status
//
//	@Summary	Статус биометрии по объявлению
//	@Tags		muzzle
//	@Produce	json
//	@Param		listing_id	path		string	true	"Идентификатор объявления"
//	@Success	200			{object}	statusResponse
//	@Failure	404			{object}	ErrorResponse	"Биометрия не найдена"
//	@Router		/muzzle/status/{listing_id} [get]
func (m *MuzzleHandler) status(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listing_id")

	res, err := m.biometricUsecase.StatusFor(r.Context(), listingID)
	if err != nil {
		m.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, statusResponse{
		MuzzleID:     res.MuzzleID,
		Status:       string(res.Status),
		RegisteredAt: res.RegisteredAt.UTC().Format(time.RFC3339),
		AnimalName:   res.AnimalName,
		Confidence:   res.Confidence,
	})
}

// stats
//
//	@Summary	Статистика реестра биометрий
//	@Tags		muzzle
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/muzzle/stats [get]
func (m *MuzzleHandler) stats(w http.ResponseWriter, r *http.Request) {
	res, err := m.biometricUsecase.Stats(r.Context())
	if err != nil {
		m.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"total_registered": res.TotalRegistered,
	})
}
