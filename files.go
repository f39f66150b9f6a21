package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"adminpanel/pkg/vault"

	"github.com/gin-gonic/gin"
)

func (a *app) listFilesHandler(c *gin.Context) {
	files, err := a.vault.ListFiles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, files)
}

// uploadFileHandler stores multipart field "file" in the vault. When the
// object store rejects the put its message is returned unchanged.
func (a *app) uploadFileHandler(c *gin.Context) {
	limit := int64(a.cfg.MaxUploadMB) << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fh.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx := c.Request.Context()
	meta, err := a.vault.Upload(ctx, fh.Filename, f, fh.Size, contentType, strings.TrimSpace(c.PostForm("uploaded_by")))
	a.metrics.uploads.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		var se *vault.StorageError
		if errors.As(err, &se) {
			a.log.Warn(ctx, "vault put failed", "key", se.Key, "err", se.Err)
			c.JSON(http.StatusBadGateway, gin.H{"error": se.Error()})
			return
		}
		a.log.Error(ctx, "vault upload", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meta)
}

// thumbHandler renders a JPEG preview of an image file.
func (a *app) thumbHandler(c *gin.Context) {
	id, ok := parseFileID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	meta, err := a.vault.File(ctx, id)
	if err != nil {
		if errors.Is(err, vault.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if vault.PreviewKind(meta.Name) != vault.KindImage {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "no thumbnail for this file type"})
		return
	}
	body, err := a.vault.Open(ctx, meta)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	defer body.Close()
	var buf bytes.Buffer
	if err := vault.Thumbnail(body, &buf); err != nil {
		// the browser can still show formats we cannot decode
		a.log.Warn(ctx, "thumbnail", "file", meta.Name, "err", err)
		c.Redirect(http.StatusFound, meta.URL)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
}

// objectHandler serves stored bytes by key. Memory mode issues URLs pointing
// here; with S3 the public bucket URL is used instead.
func (a *app) objectHandler(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	body, err := a.storage.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
		return
	}
	defer body.Close()
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}
