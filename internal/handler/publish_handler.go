package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cristianxmm/tv-signage-system/internal/domain"
	"github.com/cristianxmm/tv-signage-system/internal/ingest"
	"github.com/cristianxmm/tv-signage-system/internal/metrics"
	"github.com/cristianxmm/tv-signage-system/internal/response"
	"github.com/cristianxmm/tv-signage-system/internal/service"
	"github.com/cristianxmm/tv-signage-system/internal/storage"
)

// uploadField is the multipart field name the admin panel has always used;
// "files" is accepted as an alias for newer clients.
const (
	uploadField      = "archivos"
	uploadFieldAlias = "files"
)

// PublishHandler owns the publish endpoint: multipart upload in, content
// update out to every matching display.
type PublishHandler struct {
	service        service.DispatchService
	ingestor       *ingest.Ingestor
	cleaner        *storage.Cleaner
	maxUploadBytes int64
}

func NewPublishHandler(svc service.DispatchService, ing *ingest.Ingestor, cleaner *storage.Cleaner, maxUploadBytes int64) *PublishHandler {
	return &PublishHandler{
		service:        svc,
		ingestor:       ing,
		cleaner:        cleaner,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandlePublish accepts a multipart upload, normalizes it into a content
// descriptor and dispatches it. Validation failures never reach a display.
func (h *PublishHandler) HandlePublish(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "invalid multipart form")
		return
	}

	files := form.File[uploadField]
	if len(files) == 0 {
		files = form.File[uploadFieldAlias]
	}
	if len(files) == 0 {
		response.BadRequest(c, "upload contains no files")
		return
	}

	var totalBytes int64
	for _, fh := range files {
		totalBytes += fh.Size
	}
	if h.maxUploadBytes > 0 && totalBytes > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", "upload exceeds the size limit")
		return
	}

	target := c.PostForm("target")
	if target == "" {
		target = domain.TargetAll
	}

	desc, err := h.ingestor.FromMultipart(c.Request.Context(), target, files, parseOptions(c))
	if err != nil {
		h.writeIngestError(c, err)
		return
	}

	if err := h.service.Publish(c.Request.Context(), desc); err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingTarget),
			errors.Is(err, domain.ErrEmptyContent),
			errors.Is(err, domain.ErrPayloadTypeMix):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to publish content")
		}
		return
	}

	metrics.UploadBytesTotal.Add(float64(totalBytes))

	// The publish is done; reclaiming disk space happens off-request.
	h.cleaner.Trigger()

	response.Success(c, gin.H{
		"status":  "ok",
		"message": "content published",
		"target":  desc.Target,
		"type":    desc.Type,
	})
}

func (h *PublishHandler) writeIngestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ingest.ErrEmptyUpload):
		response.BadRequest(c, "upload contains no files")
	case errors.Is(err, ingest.ErrTooManyFiles):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		response.Error(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", err.Error())
	case errors.Is(err, ingest.ErrParseFailure):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, "failed to process upload")
	}
}

// HandleCurrentState returns what a display joining the zone right now
// would be shown: the zone's own assignment, else the "all" one.
func (h *PublishHandler) HandleCurrentState(c *gin.Context) {
	zone := c.Param("zone")

	desc, err := h.service.CurrentState(c.Request.Context(), zone)
	if err != nil {
		response.InternalError(c, "failed to resolve state")
		return
	}
	if desc == nil {
		response.NotFound(c, "no content assigned")
		return
	}

	response.Success(c, desc)
}

// parseOptions reads the gallery display options from the form, applying
// defaults for anything missing.
func parseOptions(c *gin.Context) domain.DisplayOptions {
	opts := domain.DefaultDisplayOptions()

	switch c.PostForm("autoPlay") {
	case "false", "0", "off":
		opts.AutoPlay = false
	}

	raw := c.PostForm("durationSeconds")
	if raw == "" {
		raw = c.PostForm("duration")
	}
	if raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			opts.DurationSeconds = secs
		}
	}

	return opts
}
