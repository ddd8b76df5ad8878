package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/jobboard/internal/service"
)

type registerReq struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// RegisterCompany godoc
// @Summary Register a company
// @Tags company
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param name formData string true "company name"
// @Param email formData string true "email"
// @Param password formData string true "password (min 8)"
// @Param image formData file false "logo"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Router /api/company/register [post]
func (h *Handler) RegisterCompany(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBind(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload")
		return
	}
	var (
		logo    *service.Upload
		closeFn = func() {}
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var err error
		if logo, closeFn, err = formUpload(c, "image"); err != nil {
			fail(c, http.StatusBadRequest, "invalid upload")
			return
		}
	}
	defer closeFn()

	res, err := h.Companies.Register(c.Request.Context(), service.RegisterInput{
		Name: in.Name, Email: in.Email, Password: in.Password, Logo: logo,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "company": res.Company, "token": res.Token})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginCompany godoc
// @Summary Company login
// @Tags company
// @Accept json
// @Produce json
// @Param payload body loginReq true "credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Router /api/company/login [post]
func (h *Handler) LoginCompany(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.Companies.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "company": res.Company, "token": res.Token})
}

// GetCompany godoc
// @Summary Current company
// @Tags company
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/company/company [get]
func (h *Handler) GetCompany(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "company": currentCompany(c)})
}

type postJobReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Level       string `json:"level"`
	Salary      int64  `json:"salary"`
}

// PostJob godoc
// @Summary Post a new job
// @Tags company
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body postJobReq true "job"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/company/post-job [post]
func (h *Handler) PostJob(c *gin.Context) {
	var in postJobReq
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	j, err := h.Companies.PostJob(c.Request.Context(), currentCompany(c), service.JobInput(in))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Job Added", "job": j})
}

// CompanyJobs godoc
// @Summary Jobs posted by the current company, with applicant counts
// @Tags company
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/company/list-jobs [get]
func (h *Handler) CompanyJobs(c *gin.Context) {
	jobs, err := h.Companies.ListJobs(c.Request.Context(), currentCompany(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "jobsData": jobs})
}

// Applicants godoc
// @Summary Applications received by the current company
// @Tags company
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/company/applicants [get]
func (h *Handler) Applicants(c *gin.Context) {
	list, err := h.Companies.ListApplicants(c.Request.Context(), currentCompany(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "applications": list})
}

type changeStatusReq struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ChangeStatus godoc
// @Summary Accept or reject an application
// @Tags company
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body changeStatusReq true "application id and status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/company/change-status [post]
func (h *Handler) ChangeStatus(c *gin.Context) {
	var in changeStatusReq
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	a, err := h.Companies.ChangeStatus(c.Request.Context(), currentCompany(c), in.ID, in.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status Changed", "application": a})
}

type changeVisibilityReq struct {
	ID string `json:"id"`
}

// ChangeVisibility godoc
// @Summary Toggle whether a job is publicly listed
// @Tags company
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body changeVisibilityReq true "job id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/company/change-visibility [post]
func (h *Handler) ChangeVisibility(c *gin.Context) {
	var in changeVisibilityReq
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	j, err := h.Companies.ChangeVisibility(c.Request.Context(), currentCompany(c), in.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job": j})
}
