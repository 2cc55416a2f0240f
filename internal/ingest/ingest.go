package ingest

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/cristianxmm/tv-signage-system/internal/domain"
	"github.com/cristianxmm/tv-signage-system/internal/storage"
)

var (
	ErrEmptyUpload       = errors.New("upload contains no files")
	ErrTooManyFiles      = errors.New("upload exceeds the file limit")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrParseFailure      = errors.New("failed to parse spreadsheet")
)

var videoExtensions = map[string]bool{
	".mp4": true, ".webm": true, ".mov": true, ".mkv": true, ".avi": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".bmp": true, ".svg": true,
}

var spreadsheetExtensions = map[string]bool{
	".xlsx": true, ".xlsm": true, ".csv": true,
}

// Ingestor turns a multipart upload into a validated ContentDescriptor,
// storing media files along the way. Kind derivation follows the upload
// rules of the admin panel: a video wins over everything else, a
// spreadsheet becomes a table, several images become a gallery, a single
// image stays an image.
type Ingestor struct {
	storage  storage.Storage
	maxFiles int
}

func NewIngestor(store storage.Storage, maxFiles int) *Ingestor {
	if maxFiles <= 0 {
		maxFiles = 10
	}
	return &Ingestor{storage: store, maxFiles: maxFiles}
}

// FromMultipart builds the descriptor for one publish request.
func (i *Ingestor) FromMultipart(ctx context.Context, target string, files []*multipart.FileHeader, opts domain.DisplayOptions) (*domain.ContentDescriptor, error) {
	if len(files) == 0 {
		return nil, ErrEmptyUpload
	}
	if len(files) > i.maxFiles {
		return nil, fmt.Errorf("%w: %d files, limit %d", ErrTooManyFiles, len(files), i.maxFiles)
	}
	if target == "" {
		target = domain.TargetAll
	}
	if opts.DurationSeconds <= 0 {
		opts.DurationSeconds = domain.DefaultDisplayOptions().DurationSeconds
	}

	first := files[0]
	kind, err := detectKind(first)
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.ContentVideo:
		// Only the video is published, even if more files were attached.
		url, err := i.store(ctx, first)
		if err != nil {
			return nil, err
		}
		return &domain.ContentDescriptor{
			Target: target,
			Type:   domain.ContentVideo,
			URL:    url,
		}, nil

	case domain.ContentTable:
		columns, rows, err := parseSpreadsheet(first)
		if err != nil {
			return nil, err
		}
		return &domain.ContentDescriptor{
			Target:  target,
			Type:    domain.ContentTable,
			Columns: columns,
			Rows:    rows,
		}, nil

	default:
		urls := make([]string, 0, len(files))
		for _, fh := range files {
			url, err := i.store(ctx, fh)
			if err != nil {
				return nil, err
			}
			urls = append(urls, url)
		}
		if len(urls) == 1 {
			return &domain.ContentDescriptor{
				Target: target,
				Type:   domain.ContentImage,
				URL:    urls[0],
			}, nil
		}
		return &domain.ContentDescriptor{
			Target:  target,
			Type:    domain.ContentGallery,
			URLs:    urls,
			Options: &opts,
		}, nil
	}
}

// store writes one uploaded file under a collision-free key and returns
// the URL displays will fetch it from.
func (i *Ingestor) store(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	key := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String()[:8], ext)

	contentType := fh.Header.Get("Content-Type")
	if err := i.storage.Write(ctx, key, src, fh.Size, contentType); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return i.storage.URL(ctx, key)
}

// detectKind derives the content kind from the extension, falling back to
// MIME sniffing when the extension is unknown.
func detectKind(fh *multipart.FileHeader) (domain.ContentType, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	switch {
	case videoExtensions[ext]:
		return domain.ContentVideo, nil
	case spreadsheetExtensions[ext]:
		return domain.ContentTable, nil
	case imageExtensions[ext]:
		return domain.ContentImage, nil
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to sniff content type: %w", err)
	}

	switch {
	case strings.HasPrefix(mtype.String(), "video/"):
		return domain.ContentVideo, nil
	case strings.HasPrefix(mtype.String(), "image/"):
		return domain.ContentImage, nil
	case mtype.Is("text/csv"),
		mtype.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
		return domain.ContentTable, nil
	}

	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, fh.Filename, mtype.String())
}
