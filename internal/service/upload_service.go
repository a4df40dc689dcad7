package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/mathgrader-api/internal/observability"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrUploadEmpty indicates an empty file part.
	ErrUploadEmpty = errors.New("file is empty")
)

var allowedSheetTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"image/heic":      {},
	"image/heif":      {},
	"application/pdf": {},
}

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error)
}

// StoredFile describes an answer sheet after it was written to storage.
type StoredFile struct {
	URL       string
	FileName  string
	MimeType  string
	SizeBytes int64
	Checksum  string
}

// SheetUploader validates and stores answer sheet images.
type SheetUploader interface {
	Store(ctx context.Context, examID, studentID uint, file *multipart.FileHeader) (StoredFile, error)
}

type sheetUploader struct {
	storage FileStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewSheetUploader constructs an uploader. A nil storage makes every upload fail
// with ErrStorageUnavailable.
func NewSheetUploader(storage FileStorage, maxSizeMB int, logger zerolog.Logger) SheetUploader {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &sheetUploader{
		storage: storage,
		logger:  logger.With().Str("component", "sheet_uploader").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/noah-isme/mathgrader-api/internal/service/upload"),
	}
}

func (s *sheetUploader) Store(ctx context.Context, examID, studentID uint, file *multipart.FileHeader) (StoredFile, error) {
	ctx, span := s.tracer.Start(ctx, "submission.upload")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("upload.max_bytes", s.maxSize),
		attribute.Int("upload.exam_id", int(examID)),
		attribute.Int("upload.student_id", int(studentID)),
	)

	fail := func(outcome string, err error) (StoredFile, error) {
		observability.Uploads().WithLabelValues(outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return StoredFile{}, err
	}

	if s.storage == nil {
		return fail("unavailable", ErrStorageUnavailable)
	}
	if file == nil || file.Size == 0 {
		return fail("empty", ErrUploadEmpty)
	}
	span.SetAttributes(attribute.String("upload.original_name", strings.TrimSpace(file.Filename)))

	if file.Size > s.maxSize {
		return fail("size", ErrUploadTooLarge)
	}

	handle, err := file.Open()
	if err != nil {
		return fail("read", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		return fail("read", err)
	}
	if int64(buf.Len()) > s.maxSize {
		return fail("size", ErrUploadTooLarge)
	}
	if buf.Len() == 0 {
		return fail("empty", ErrUploadEmpty)
	}

	detected := mimetype.Detect(buf.Bytes())
	fileType := normalizeMime(detected.String())
	span.SetAttributes(attribute.String("upload.detected_mime", fileType))
	if _, ok := allowedSheetTypes[fileType]; !ok {
		return fail("type", ErrUploadTypeNotAllowed)
	}

	checksum := sha256.Sum256(buf.Bytes())
	name := sheetObjectName(examID, studentID, file.Filename, detected.Extension())

	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()), int64(buf.Len()), fileType)
	if err != nil {
		return fail("storage", fmt.Errorf("store answer sheet: %w", err))
	}

	observability.Uploads().WithLabelValues("stored").Inc()
	span.SetStatus(codes.Ok, "stored")
	s.logger.Info().Uint("exam_id", examID).Uint("student_id", studentID).Str("mime", fileType).Msg("answer sheet stored")

	return StoredFile{
		URL:       url,
		FileName:  name,
		MimeType:  fileType,
		SizeBytes: int64(buf.Len()),
		Checksum:  hex.EncodeToString(checksum[:]),
	}, nil
}

// sheetObjectName builds exams/<exam>/<student>-<slug>-<short uuid><ext>.
func sheetObjectName(examID, studentID uint, original, detectedExt string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "sheet"
	}

	ext := strings.ToLower(detectedExt)
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(original))
	}

	return fmt.Sprintf("exams/%d/%d-%s-%s%s", examID, studentID, base, uuid.NewString()[:8], ext)
}

func normalizeMime(m string) string {
	lower := strings.ToLower(strings.TrimSpace(m))
	if idx := strings.Index(lower, ";"); idx >= 0 {
		lower = strings.TrimSpace(lower[:idx])
	}
	return lower
}
