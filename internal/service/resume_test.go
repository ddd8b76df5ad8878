package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/jobboard/internal/memstore"
	"github.com/tazhibayda/jobboard/internal/service"
)

const pdf = "%PDF-1.4\n%fake\n"

func pdfUpload(body string) *service.Upload {
	return &service.Upload{
		Filename:    "cv.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	}
}

func TestResumeUpdate_NoFileIsANoop(t *testing.T) {
	store := memstore.New()
	objects := memstore.NewObjects()
	svc := service.NewResumeService(store, objects, 0, nil)
	u := seedUser(t, store, "user_1")

	got, err := svc.Update(context.Background(), u, nil)
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.Equal(t, 0, objects.Len())
}

func TestResumeUpdate_StoresAndReplaces(t *testing.T) {
	store := memstore.New()
	objects := memstore.NewObjects()
	svc := service.NewResumeService(store, objects, 0, nil)
	u := seedUser(t, store, "user_1")

	first, err := svc.Update(context.Background(), u, pdfUpload(pdf))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ResumeKey, "resumes/"+u.ID.Hex()+"/"))
	assert.Equal(t, "https://objects.test/"+first.ResumeKey, first.Resume)
	assert.True(t, objects.Has(first.ResumeKey))

	stored, _ := store.FindUserByID(context.Background(), u.ID)
	assert.Equal(t, first.Resume, stored.Resume)

	second, err := svc.Update(context.Background(), first, pdfUpload(pdf))
	require.NoError(t, err)
	assert.NotEqual(t, first.ResumeKey, second.ResumeKey)
	assert.False(t, objects.Has(first.ResumeKey), "previous resume is removed")
	assert.True(t, objects.Has(second.ResumeKey))
}

func TestResumeUpdate_SaveFailureRemovesUpload(t *testing.T) {
	store := memstore.New()
	objects := memstore.NewObjects()
	svc := service.NewResumeService(store, objects, 0, nil)
	u := seedUser(t, store, "user_1")

	store.ErrUpdateResume = errors.New("write failed")
	_, err := svc.Update(context.Background(), u, pdfUpload(pdf))
	require.Error(t, err)
	assert.Equal(t, 0, objects.Len())
	require.Len(t, objects.Deleted, 1)

	stored, _ := store.FindUserByID(context.Background(), u.ID)
	assert.Empty(t, stored.Resume)
}

func TestResumeUpdate_Rejects(t *testing.T) {
	store := memstore.New()
	objects := memstore.NewObjects()
	svc := service.NewResumeService(store, objects, 64, nil)
	u := seedUser(t, store, "user_1")

	cases := map[string]*service.Upload{
		"too large": pdfUpload(pdf + strings.Repeat("x", 100)),
		"not pdf type": {
			Filename: "cv.docx", ContentType: "application/msword",
			Size: int64(len(pdf)), Body: strings.NewReader(pdf),
		},
		"pdf name, not pdf bytes": {
			Filename: "cv.pdf", ContentType: "application/octet-stream",
			Size: 5, Body: strings.NewReader("hello"),
		},
	}
	for name, up := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), u, up)
			assert.ErrorIs(t, err, service.ErrInvalidResume)
		})
	}
	assert.Equal(t, 0, objects.Len())
}

func TestResumeUpdate_UploadFailure(t *testing.T) {
	store := memstore.New()
	objects := memstore.NewObjects()
	objects.ErrUpload = errors.New("bucket gone")
	svc := service.NewResumeService(store, objects, 0, nil)
	u := seedUser(t, store, "user_1")

	_, err := svc.Update(context.Background(), u, pdfUpload(pdf))
	require.Error(t, err)
	stored, _ := store.FindUserByID(context.Background(), u.ID)
	assert.Empty(t, stored.Resume)
}

func TestResumeUpdate_UnderstatedSizeIsRejected(t *testing.T) {
	store := memstore.New()
	objects := memstore.NewObjects()
	svc := service.NewResumeService(store, objects, 64, nil)
	u := seedUser(t, store, "user_1")

	body := pdf + strings.Repeat("x", 200)
	up := &service.Upload{
		Filename:    "cv.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(pdf)), // the client lies about the length
		Body:        strings.NewReader(body),
	}
	_, err := svc.Update(context.Background(), u, up)
	require.ErrorIs(t, err, service.ErrInvalidResume)
	assert.Equal(t, 0, objects.Len(), "no truncated copy is kept")

	stored, _ := store.FindUserByID(context.Background(), u.ID)
	assert.Empty(t, stored.Resume)
}

func TestResumeUpdate_ExactlyAtLimit(t *testing.T) {
	store := memstore.New()
	objects := memstore.NewObjects()
	body := pdf + strings.Repeat("x", 64-len(pdf))
	svc := service.NewResumeService(store, objects, int64(len(body)), nil)
	u := seedUser(t, store, "user_1")

	got, err := svc.Update(context.Background(), u, pdfUpload(body))
	require.NoError(t, err)
	assert.True(t, objects.Has(got.ResumeKey))
}
