package exifmeta

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"exifatlas/internal/logging"
	"exifatlas/internal/services"
)

// Extractor reads metadata from image files.
type Extractor struct {
	logger *slog.Logger
	now    func() time.Time
}

// New constructs an Extractor. A nil logger discards debug output.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{logger: logger, now: time.Now}
}

// Extract reads the file at path. It never panics and never returns both
// metadata and a failure.
func (e *Extractor) Extract(ctx context.Context, path string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Failure: newFailure(services.KindCorruptMetadata, "decode", "metadata decoder panicked", fmt.Errorf("%v", r))}
		}
	}()
	if err := ctx.Err(); err != nil {
		return Result{Failure: newFailure(services.KindUnreadable, "open", "extraction cancelled", err)}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{Failure: newFailure(services.KindUnreadable, "stat", "stat file", err)}
	}
	if info.IsDir() {
		return Result{Failure: newFailure(services.KindUnreadable, "stat", "path is a directory", nil)}
	}
	if info.Size() == 0 {
		return Result{Failure: newFailure(services.KindUnreadable, "read", "file is empty", nil)}
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{Failure: newFailure(services.KindUnreadable, "open", "open file", err)}
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Result{Failure: newFailure(services.KindUnreadable, "read", "read header", err)}
	}
	head = head[:n]

	container, detected := sniff(head)
	if container == "" {
		return Result{Failure: newFailure(services.KindUnsupportedFormat, "sniff", fmt.Sprintf("content type %s", detected), nil)}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Result{Failure: newFailure(services.KindUnreadable, "read", "rewind file", err)}
	}

	meta := &Metadata{
		Container: container,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
	}

	x, failure := e.decode(f, container)
	if failure != nil {
		return Result{Failure: failure}
	}
	if x != nil {
		e.mapTags(x, meta)
	}
	e.applyCaptureFallback(meta, info.ModTime())

	e.logger.Debug("metadata extracted",
		logging.String(logging.FieldPath, path),
		logging.String("container", string(container)),
		logging.Bool("has_gps", meta.GPS != nil),
		logging.String("capture_source", string(meta.CaptureSource)),
	)
	return Result{Metadata: meta}
}

// decode returns the parsed EXIF block, or nil when the container carries
// none.
func (e *Extractor) decode(f *os.File, container Container) (*exif.Exif, *Failure) {
	var (
		src io.Reader
		err error
	)
	switch container {
	case ContainerTIFF:
		src = f
	case ContainerJPEG:
		var payload []byte
		payload, err = findJPEGExif(f)
		if err != nil {
			return nil, newFailure(services.KindCorruptMetadata, "jpeg", "walk jpeg segments", err)
		}
		if payload == nil {
			return nil, nil
		}
		src = bytes.NewReader(payload)
	case ContainerPNG:
		var payload []byte
		payload, err = findPNGExif(f)
		if err != nil {
			return nil, newFailure(services.KindCorruptMetadata, "png", "walk png chunks", err)
		}
		if payload == nil {
			return nil, nil
		}
		src = bytes.NewReader(payload)
	default:
		return nil, newFailure(services.KindUnsupportedFormat, "sniff", "unknown container", nil)
	}

	x, err := exif.Decode(src)
	if err != nil {
		if x != nil && !exif.IsCriticalError(err) {
			// A broken sub-IFD still leaves IFD0 usable.
			e.logger.Debug("partial exif decode", logging.Error(err))
			return x, nil
		}
		return nil, newFailure(services.KindCorruptMetadata, "decode", "decode exif", err)
	}
	return x, nil
}
