package service

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/log"
)

const pdfMagic = "%PDF-"

var errResumeTooLarge = errors.New("resume exceeds size limit")

// cappedReader fails once more than n bytes have been read, so an upload
// whose declared size understates the body is aborted instead of truncated.
type cappedReader struct {
	r    io.Reader
	n    int64
	over bool
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n -= int64(n)
	if c.n < 0 {
		c.over = true
		return n, errResumeTooLarge
	}
	return n, err
}

type ResumeService struct {
	users    UserStore
	objects  ObjectStore
	maxBytes int64
	log      *zap.Logger
}

func NewResumeService(users UserStore, objects ObjectStore, maxBytes int64, logger *zap.Logger) *ResumeService {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResumeService{users: users, objects: objects, maxBytes: maxBytes, log: logger}
}

// Update stores up as the user's resume and returns the updated user.
// A nil upload changes nothing.
func (s *ResumeService) Update(ctx context.Context, user *domain.User, up *Upload) (*domain.User, error) {
	if up == nil || up.Body == nil {
		return user, nil
	}
	if up.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidResume, s.maxBytes)
	}
	if !looksLikePDF(up) {
		return nil, fmt.Errorf("%w: only PDF files are accepted", ErrInvalidResume)
	}

	body := &cappedReader{r: up.Body, n: s.maxBytes}
	br := bufio.NewReader(body)
	head, _ := br.Peek(len(pdfMagic))
	if !bytes.Equal(head, []byte(pdfMagic)) {
		return nil, fmt.Errorf("%w: not a PDF document", ErrInvalidResume)
	}

	key := fmt.Sprintf("resumes/%s/%s.pdf", user.ID.Hex(), uuid.NewString())
	url, err := s.objects.Upload(ctx, key, br, "application/pdf")
	if errors.Is(err, errResumeTooLarge) {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidResume, s.maxBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("service/resume: upload: %w", err)
	}

	l := log.WithDD(ctx, s.log, zap.String("user_id", user.ID.Hex()))
	if body.over {
		// the store stopped reading early but the body was oversized
		if derr := s.objects.Delete(context.WithoutCancel(ctx), key); derr != nil {
			l.Error("orphaned resume object", zap.String("key", key), zap.Error(derr))
		}
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidResume, s.maxBytes)
	}
	if err := s.users.UpdateUserResume(ctx, user.ID, url, key); err != nil {
		// the upload would be orphaned otherwise
		if derr := s.objects.Delete(context.WithoutCancel(ctx), key); derr != nil {
			l.Error("orphaned resume object", zap.String("key", key), zap.Error(derr))
		}
		return nil, fmt.Errorf("service/resume: save: %w", err)
	}

	if prev := user.ResumeKey; prev != "" && prev != key {
		if err := s.objects.Delete(ctx, prev); err != nil {
			l.Warn("delete previous resume", zap.String("key", prev), zap.Error(err))
		}
	}

	updated := *user
	updated.Resume = url
	updated.ResumeKey = key
	return &updated, nil
}

func looksLikePDF(up *Upload) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(up.ContentType, ";", 2)[0]))
	if ct == "application/pdf" {
		return true
	}
	return strings.EqualFold(filepath.Ext(up.Filename), ".pdf")
}
