package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"eduhub/api/internal/gallery"
	"eduhub/api/internal/media/sniffer"
)

// PublicGallery serves the read-only paginated listing used by the
// marketing pages.
func (h HandlerSet) PublicGallery(c *gin.Context) {
	category := c.Param("category")
	if _, err := h.galleries.Browser(category); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown_category"})
		return
	}

	page, err := h.publicGallery.ListPage(c.Request.Context(), category, c.Query("cursor"))
	if err != nil {
		h.log.Error().Err(err).Str("category", category).Msg("public gallery listing failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "listing_failed"})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h HandlerSet) browserFor(c *gin.Context) (*gallery.Browser, bool) {
	b, err := h.galleries.Browser(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown_category"})
		return nil, false
	}
	return b, true
}

type galleryStateResponse struct {
	Category string          `json:"category"`
	Images   []gallery.Image `json:"images"`
	Count    int             `json:"count"`
	HasMore  bool            `json:"hasMore"`
}

func (h HandlerSet) galleryState(c *gin.Context, b *gallery.Browser) {
	snapshot := b.Snapshot()
	c.JSON(http.StatusOK, galleryStateResponse{
		Category: c.Param("category"),
		Images:   snapshot,
		Count:    len(snapshot),
		HasMore:  b.HasMore(),
	})
}

// GalleryState returns the browser's current list, fetching the first
// page if the category has never been loaded.
func (h HandlerSet) GalleryState(c *gin.Context) {
	b, ok := h.browserFor(c)
	if !ok {
		return
	}

	if !b.Primed() {
		if err := b.ListPage(c.Request.Context(), false); err != nil {
			h.log.Error().Err(err).Msg("gallery listing failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "listing_failed"})
			return
		}
	}

	h.galleryState(c, b)
}

func (h HandlerSet) GalleryReload(c *gin.Context) {
	b, ok := h.browserFor(c)
	if !ok {
		return
	}

	if err := b.ListPage(c.Request.Context(), false); err != nil {
		h.log.Error().Err(err).Msg("gallery reload failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "listing_failed"})
		return
	}
	h.galleryState(c, b)
}

func (h HandlerSet) GalleryLoadMore(c *gin.Context) {
	b, ok := h.browserFor(c)
	if !ok {
		return
	}

	if err := b.ListPage(c.Request.Context(), true); err != nil {
		h.log.Error().Err(err).Msg("gallery load-more failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "listing_failed"})
		return
	}
	h.galleryState(c, b)
}

// GalleryUpload accepts a multipart batch under the "files" field. The
// whole batch is rejected when it would exceed the category cap.
func (h HandlerSet) GalleryUpload(c *gin.Context) {
	b, ok := h.browserFor(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart_required"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files_required"})
		return
	}

	files := make([]gallery.File, 0, len(headers))
	var opened []io.Closer
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()

	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_file"})
			return
		}
		opened = append(opened, f)

		head := make([]byte, 512)
		n, err := f.Read(head)
		if err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_file"})
			return
		}

		detected, err := sniffer.DetectHead(head[:n])
		if err != nil {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{
				"error": "unsupported_media_type",
				"file":  header.Filename,
			})
			return
		}

		if _, err := f.Seek(0, io.SeekStart); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_file"})
			return
		}

		files = append(files, gallery.File{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: detected.MIME,
			Reader:      f,
		})
	}

	result, err := b.Upload(c.Request.Context(), files)
	if err != nil {
		if errors.Is(err, gallery.ErrLimitExceeded) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "limit_exceeded",
				"skipped": result.Skipped,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"skipped":  result.Skipped,
		"outcomes": result.Outcomes,
		"images":   b.Snapshot(),
	})
}

type resolveRequest struct {
	Path string `json:"path" binding:"required"`
}

// GalleryResolve retries URL resolution for a single image, clearing a
// prior terminal error.
func (h HandlerSet) GalleryResolve(c *gin.Context) {
	b, ok := h.browserFor(c)
	if !ok {
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := b.ResolveURL(c.Request.Context(), req.Path); err != nil {
		if errors.Is(err, gallery.ErrUnknownPath) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown_path"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "resolution_failed"})
		return
	}

	h.galleryState(c, b)
}

// GalleryDelete removes one image. The destructive call requires the
// caller to confirm explicitly.
func (h HandlerSet) GalleryDelete(c *gin.Context) {
	b, ok := h.browserFor(c)
	if !ok {
		return
	}

	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path_required"})
		return
	}
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation_required"})
		return
	}

	if err := b.Delete(c.Request.Context(), path); err != nil {
		h.log.Error().Err(err).Str("path", path).Msg("gallery delete failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "delete_failed"})
		return
	}

	c.Status(http.StatusNoContent)
}
