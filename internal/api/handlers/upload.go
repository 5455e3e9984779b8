package handlers

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/DropShort/Short-File-Service/internal/services/command"
	"github.com/gin-gonic/gin"
)

// Upload handles POST /<secret>/ with a multipart "file" field and an
// optional "expire" form field (days). Responds with the short link as
// plain text.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.String(http.StatusBadRequest, "no file part")
		return
	}

	filename := sanitizeFilename(fileHeader.Filename)
	if filename == "" {
		c.String(http.StatusBadRequest, "no selected file")
		return
	}

	expireDays := 0
	if v := c.PostForm("expire"); v != "" {
		expireDays, err = strconv.Atoi(v)
		if err != nil || expireDays < 1 {
			c.String(http.StatusBadRequest, "invalid expire value")
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	defer file.Close()

	link, err := h.Uploader.Upload(file, filename, expireDays)
	if err != nil {
		if errors.Is(err, command.ErrFileExists) {
			c.String(http.StatusConflict, "file exists")
			return
		}
		log.Printf("upload failed: %v", err)
		c.String(http.StatusInternalServerError, "failed to store file")
		return
	}

	c.String(http.StatusOK, link)
}

// sanitizeFilename strips any path the client sent along with the name.
// Browsers may include a full path; so may crafted requests.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Trim(name, ". ")
	if name == "/" || name == "." || name == ".." {
		return ""
	}
	return name
}
