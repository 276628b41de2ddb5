package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки с векторами
	ErrEmptyVector       = fmt.Errorf("embedding vector is empty")
	ErrDimensionMismatch = fmt.Errorf("embedding dimension mismatch")
	ErrNoPrototypes      = fmt.Errorf("no breed prototypes loaded")

	// Ошибки биометрии
	ErrMissingImage        = fmt.Errorf("image is required")
	ErrMissingListingID    = fmt.Errorf("listing_id is required")
	ErrBiometricNotFound   = fmt.Errorf("no muzzle biometric found for this listing")
	ErrEmbedderUnavailable = fmt.Errorf("embedding model is unavailable")

	// Ошибки импорта листингов
	ErrNoRows           = fmt.Errorf("csv file contains no data rows")
	ErrValidationFailed = fmt.Errorf("csv validation failed")
	ErrInvalidPrice     = fmt.Errorf("invalid price")
	ErrPricePrecision   = fmt.Errorf("price must have at most 2 decimal places")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrInvalidBase64        = fmt.Errorf("image is not valid base64")
	ErrFileTooLarge         = fmt.Errorf("file is too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")

	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
