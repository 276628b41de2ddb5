package infrastructure

import "github.com/moomingle/go-backend/pkg/e"

// GetExtensionFromMIME переводит MIME-тип снимка в расширение файла для
// ключа объекта в S3. Неподдерживаемый тип даёт e.ErrUnsupportedMediaType.
func GetExtensionFromMIME(mime string) (string, error) {
	switch mime {
	case "image/jpeg", "image/jpg":
		return "jpg", nil
	case "image/png":
		return "png", nil
	case "image/webp":
		return "webp", nil
	default:
		return "bin", e.ErrUnsupportedMediaType
	}
}
