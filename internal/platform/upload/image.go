// Package upload valida las imágenes que suben los clientes (fotos de
// galería y avatares). El tipo se decide por sniffing, nunca por el nombre
// ni por el Content-Type que manda el cliente.
package upload

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"cat-care/internal/platform/apperr"
)

const MaxBytes = 5 << 20

var (
	ErrInvalidFile  = apperr.BadRequest("invalid_file")
	ErrFileTooLarge = apperr.BadRequest("file_too_large")
)

// extensiones aceptadas por content type sniffeado
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// ReadImage lee como máximo MaxBytes+1 bytes. Un reader nil es invalid_file.
func ReadImage(r io.Reader) (Image, error) {
	if r == nil {
		return Image{}, ErrInvalidFile
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil || len(data) == 0 {
		return Image{}, ErrInvalidFile
	}
	if len(data) > MaxBytes {
		return Image{}, ErrFileTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return Image{}, ErrInvalidFile
	}
	return Image{Data: data, ContentType: contentType, Ext: ext}, nil
}

// IsMultipart distingue un PUT con archivo de uno JSON.
func IsMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// FormFile limita el body y abre el archivo del campo. Si el campo no viene
// (o el body no es multipart) devuelve nil sin error: el service decide si
// era obligatorio, después de chequear permisos.
func FormFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, error) {
	// margen para los headers del multipart
	r.Body = http.MaxBytesReader(w, r.Body, MaxBytes+1<<20)

	file, _, err := r.FormFile(field)
	if err == nil {
		return file, nil
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return nil, ErrFileTooLarge
	}
	return nil, nil
}
