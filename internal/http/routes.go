package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/tazhibayda/jobboard/internal/ratelimit"
)

type RouterDeps struct {
	Identity       IdentityVerifier
	Sessions       SessionValidator
	Limiter        ratelimit.Limiter // optional
	AllowedOrigins []string
	RequestTimeout time.Duration
	ServiceName    string
}

func NewRouter(h *Handler, d RouterDeps) *gin.Engine {
	logger := h.Log
	if logger == nil {
		logger = zap.L()
	}
	if d.ServiceName == "" {
		d.ServiceName = "jobboard"
	}

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(CORS(d.AllowedOrigins))
	r.Use(Trace(d.ServiceName))
	r.Use(Metrics())
	r.Use(Logger(logger))
	r.Use(Timeout(d.RequestTimeout))

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limited := func(scope string) gin.HandlerFunc {
		if d.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return RateLimit(d.Limiter, scope)
	}

	users := r.Group("/api/users", RequireIdentity(d.Identity), ResolveUser(h.Identity))
	{
		users.GET("/user", h.GetUser)
		users.POST("/apply", h.Apply)
		users.GET("/applications", h.Applications)
		users.POST("/update-resume", h.UpdateResume)
	}

	company := r.Group("/api/company")
	{
		company.POST("/register", limited("register"), h.RegisterCompany)
		company.POST("/login", limited("login"), h.LoginCompany)

		authed := company.Group("", RequireCompany(d.Sessions, h.Companies))
		authed.GET("/company", h.GetCompany)
		authed.POST("/post-job", h.PostJob)
		authed.GET("/list-jobs", h.CompanyJobs)
		authed.GET("/applicants", h.Applicants)
		authed.POST("/change-status", h.ChangeStatus)
		authed.POST("/change-visibility", h.ChangeVisibility)
	}

	jobs := r.Group("/api/jobs")
	{
		jobs.GET("", h.ListJobs)
		jobs.GET("/search", h.SearchJobs)
		jobs.GET("/:id", h.GetJob)
	}
	return r
}
