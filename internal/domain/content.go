package domain

import "errors"

// TargetAll is the reserved target that addresses every connected display.
const TargetAll = "all"

// ContentType identifies what kind of content a descriptor carries.
type ContentType string

const (
	ContentImage   ContentType = "image"
	ContentVideo   ContentType = "video"
	ContentGallery ContentType = "gallery"
	ContentTable   ContentType = "table"
)

var (
	ErrMissingTarget  = errors.New("content descriptor has no target")
	ErrEmptyContent   = errors.New("content descriptor has no payload")
	ErrPayloadTypeMix = errors.New("content descriptor payload does not match its type")
)

// DisplayOptions controls how a display renders gallery content. It is
// ignored for other content types but always sent with defaults so older
// display clients keep working when new options appear.
type DisplayOptions struct {
	AutoPlay        bool `json:"autoPlay"`
	DurationSeconds int  `json:"durationSeconds"`
}

// DefaultDisplayOptions returns the options applied when the publisher
// does not specify any.
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{AutoPlay: true, DurationSeconds: 10}
}

// ContentDescriptor is the normalized description of one published unit of
// content. It doubles as the wire message sent to displays: exactly one of
// URL, URLs or Rows is populated, depending on Type.
//
// Columns preserves the source column order for table content, since the
// row maps themselves carry no ordering.
type ContentDescriptor struct {
	Target  string              `json:"target"`
	Type    ContentType         `json:"type"`
	URL     string              `json:"url,omitempty"`
	URLs    []string            `json:"urls,omitempty"`
	Columns []string            `json:"columns,omitempty"`
	Rows    []map[string]string `json:"rows,omitempty"`
	Options *DisplayOptions     `json:"options,omitempty"`
}

// Validate checks the descriptor invariants: a non-empty target and exactly
// one populated payload matching the declared type.
func (d *ContentDescriptor) Validate() error {
	if d == nil {
		return ErrEmptyContent
	}
	if d.Target == "" {
		return ErrMissingTarget
	}

	hasURL := d.URL != ""
	hasURLs := len(d.URLs) > 0
	hasRows := len(d.Rows) > 0

	switch d.Type {
	case ContentImage, ContentVideo:
		if !hasURL {
			return ErrEmptyContent
		}
		if hasURLs || hasRows {
			return ErrPayloadTypeMix
		}
	case ContentGallery:
		if !hasURLs {
			return ErrEmptyContent
		}
		if hasURL || hasRows {
			return ErrPayloadTypeMix
		}
	case ContentTable:
		if !hasRows {
			return ErrEmptyContent
		}
		if hasURL || hasURLs {
			return ErrPayloadTypeMix
		}
	default:
		return ErrEmptyContent
	}

	if d.Options != nil && d.Options.DurationSeconds <= 0 {
		d.Options.DurationSeconds = DefaultDisplayOptions().DurationSeconds
	}

	return nil
}

// Clone returns a deep copy so cached descriptors cannot be mutated by
// callers after a publish.
func (d *ContentDescriptor) Clone() *ContentDescriptor {
	if d == nil {
		return nil
	}
	cp := *d
	if d.URLs != nil {
		cp.URLs = append([]string(nil), d.URLs...)
	}
	if d.Columns != nil {
		cp.Columns = append([]string(nil), d.Columns...)
	}
	if d.Rows != nil {
		cp.Rows = make([]map[string]string, len(d.Rows))
		for i, row := range d.Rows {
			rowCopy := make(map[string]string, len(row))
			for k, v := range row {
				rowCopy[k] = v
			}
			cp.Rows[i] = rowCopy
		}
	}
	if d.Options != nil {
		opts := *d.Options
		cp.Options = &opts
	}
	return &cp
}
