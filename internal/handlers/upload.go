package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UploadURLPrefix is the public path uploaded files are served under.
const UploadURLPrefix = "/uploads/"

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// saveUpload stores the multipart file field under dir and returns its public
// path. A request without the field returns "".
func saveUpload(c echo.Context, field, dir string) (string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid "+field+" upload")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExt[ext] {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Unsupported image type "+ext)
	}

	src, err := fh.Open()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid "+field+" upload")
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to store upload")
	}
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to store upload")
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to store upload")
	}
	return UploadURLPrefix + name, nil
}
