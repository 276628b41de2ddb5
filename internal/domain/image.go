package domain

// Image — снимок носогубного зеркала, сохранённый в S3.
type Image struct {
	ID        string // uuid
	Bucket    string
	ObjectKey string
	Bytes     []byte
	// Size равный -1 означает поток неизвестной длины; minio в этом
	// случае буферизует объект целиком.
	Size        *int64
	ContentType *string // например "image/jpeg"
}

func NewImage(id string, bucket string, objectKey string, data []byte, size *int64, contentType *string) *Image {
	return &Image{
		ID:          id,
		Bucket:      bucket,
		ObjectKey:   objectKey,
		Bytes:       data,
		Size:        size,
		ContentType: contentType,
	}
}
