package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/service"
)

// GetUser godoc
// @Summary Current user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/users/user [get]
func (h *Handler) GetUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "user": currentUser(c)})
}

type applyReq struct {
	JobID string `json:"jobId"`
}

// Apply godoc
// @Summary Apply for a job
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body applyReq true "job id"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/users/apply [post]
func (h *Handler) Apply(c *gin.Context) {
	var in applyReq
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if _, err := h.Apps.Apply(c.Request.Context(), currentUser(c), in.JobID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Applied Successfully"})
}

// Applications godoc
// @Summary Applications of the current user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/users/applications [get]
func (h *Handler) Applications(c *gin.Context) {
	list, err := h.Apps.ListForUser(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "applications": list})
}

// UpdateResume godoc
// @Summary Upload or replace the resume (PDF)
// @Tags users
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param resume formData file false "resume PDF"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/users/update-resume [post]
func (h *Handler) UpdateResume(c *gin.Context) {
	up, closeFn, err := formUpload(c, "resume")
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid upload")
		return
	}
	defer closeFn()

	var user *domain.User
	err = WithSpan(c.Request.Context(), "resume.update", func(ctx context.Context) error {
		var err error
		user, err = h.Resumes.Update(ctx, currentUser(c), up)
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Resume Updated", "user": user})
}

// formUpload returns the named multipart file, or nil when the request has none.
func formUpload(c *gin.Context, field string) (*service.Upload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
