package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListJobs godoc
// @Summary Publicly visible jobs
// @Tags jobs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/jobs [get]
func (h *Handler) ListJobs(c *gin.Context) {
	jobs, err := h.Jobs.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "jobs": jobs})
}

// SearchJobs godoc
// @Summary Search visible jobs
// @Tags jobs
// @Produce json
// @Param q query string false "search text"
// @Param limit query int false "max results (default 50)"
// @Success 200 {object} map[string]interface{}
// @Router /api/jobs/search [get]
func (h *Handler) SearchJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	jobs, err := h.Jobs.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "jobs": jobs})
}

// GetJob godoc
// @Summary A visible job by id
// @Tags jobs
// @Produce json
// @Param id path string true "job id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/jobs/{id} [get]
func (h *Handler) GetJob(c *gin.Context) {
	j, err := h.Jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job": j})
}
