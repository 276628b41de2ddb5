package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/jimlawless/whereami"
	"github.com/moomingle/go-backend/internal/usecase"
	"github.com/moomingle/go-backend/pkg/e"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error()
	case errors.Is(err, e.ErrMissingImage):
		return http.StatusBadRequest, e.ErrMissingImage.Error()
	case errors.Is(err, e.ErrMissingListingID):
		return http.StatusBadRequest, e.ErrMissingListingID.Error()
	case errors.Is(err, e.ErrInvalidBase64):
		return http.StatusBadRequest, e.ErrInvalidBase64.Error()
	case errors.Is(err, e.ErrBiometricNotFound):
		return http.StatusNotFound, e.ErrBiometricNotFound.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrEmbedderUnavailable):
		return http.StatusServiceUnavailable, e.ErrEmbedderUnavailable.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// imageRequest — JSON-вариант запроса с изображением в base64.
type imageRequest struct {
	Image      string `json:"image"`
	ListingID  string `json:"listing_id"`
	AnimalName string `json:"animal_name"`
}

// parsedImageForm — изображение плюс поля формы, общие для всех операций.
type parsedImageForm struct {
	Image      usecase.AnimalImage
	ListingID  string
	AnimalName string
}

// parseImageForm принимает изображение в двух видах: multipart-форма с полем
// image или JSON с base64 в поле image. Оба варианта поддерживаются, потому
// что мобильный клиент шлёт multipart, а интеграции — JSON.
func parseImageForm(w http.ResponseWriter, r *http.Request) (*parsedImageForm, error) {
	const (
		maxTotalRequestSize = 20 << 20
		maxMemory           = 8 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest)
		}

		form := &parsedImageForm{
			ListingID:  r.FormValue("listing_id"),
			AnimalName: r.FormValue("animal_name"),
		}

		files := r.MultipartForm.File["image"]
		if len(files) == 0 {
			return form, nil
		}

		image, err := readImageFile(files[0])
		if err != nil {
			return nil, err
		}
		form.Image = *image

		return form, nil
	}

	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest)
	}

	form := &parsedImageForm{
		ListingID:  req.ListingID,
		AnimalName: req.AnimalName,
	}
	if req.Image == "" {
		return form, nil
	}

	data, err := base64.StdEncoding.DecodeString(stripDataURLPrefix(req.Image))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrInvalidBase64)
	}

	form.Image = *usecase.NewAnimalImage(data, detectMime(data), int64(len(data)), "image")
	return form, nil
}

func readImageFile(fh *multipart.FileHeader) (*usecase.AnimalImage, error) {
	const maxFileSize = 15 << 20

	src, err := fh.Open()
	if err != nil {
		return nil, e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, e.ErrInternalServerError
	}
	if int64(len(data)) > maxFileSize {
		return nil, e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	return usecase.NewAnimalImage(data, detectMime(data), int64(len(data)), fh.Filename), nil
}

// stripDataURLPrefix срезает префикс data:image/...;base64, если клиент
// прислал data-URL вместо чистого base64.
func stripDataURLPrefix(s string) string {
	if idx := strings.Index(s, ";base64,"); idx != -1 && strings.HasPrefix(s, "data:") {
		return s[idx+len(";base64,"):]
	}
	return s
}

func detectMime(data []byte) string {
	return http.DetectContentType(data[:min(len(data), 512)])
}
