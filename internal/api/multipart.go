package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"

	"github.com/anonto42/nano-midea/social/internal/apperrors"
)

// Upload is a file sent as a multipart part.
type Upload struct {
	Filename string
	Content  io.Reader
}

type formField struct {
	name, value string
}

// doMultipart sends fields and an optional file as multipart/form-data.
func (c *Client) doMultipart(ctx context.Context, method, path string, fields []formField, fileField string, file *Upload, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "writing form field "+f.name, err)
		}
	}
	if file != nil && file.Content != nil {
		part, err := w.CreateFormFile(fileField, file.Filename)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "creating form file", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "reading upload "+file.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "closing form", err)
	}

	return c.do(ctx, request{
		method:      method,
		path:        path,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, out)
}
