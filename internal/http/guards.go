package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/security"
	"github.com/tazhibayda/jobboard/internal/service"
)

const (
	identityKey = "identity"
	userKey     = "user"
	companyKey  = "company"
)

// Rejection is a guard's refusal to let a request through.
type Rejection struct {
	Status  int
	Message string
}

func (r Rejection) Error() string { return r.Message }

var (
	RejectNoToken   = Rejection{Status: http.StatusUnauthorized, Message: "Not authorized, Login Again"}
	RejectBadToken  = Rejection{Status: http.StatusUnauthorized, Message: "Invalid token, authorization failed"}
	RejectNoCompany = Rejection{Status: http.StatusNotFound, Message: "Company not found"}
)

func reject(c *gin.Context, r Rejection) { fail(c, r.Status, r.Message) }

type IdentityVerifier interface {
	ParseAndVerify(ctx context.Context, token string) (*security.IdentityClaims, error)
}

type UserResolver interface {
	Resolve(ctx context.Context, id domain.Identity) (*domain.User, error)
}

type SessionValidator interface {
	Validate(token string) (string, error)
}

type CompanyLookup interface {
	CompanyByID(ctx context.Context, id string) (*domain.Company, error)
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) < len("Bearer ") || !strings.EqualFold(h[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[len("Bearer "):])
}

// RequireIdentity verifies the caller's identity token and stores the identity.
func RequireIdentity(v IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c)
		if tok == "" {
			reject(c, RejectNoToken)
			return
		}
		claims, err := v.ParseAndVerify(c.Request.Context(), tok)
		if errors.Is(err, security.ErrKeySource) {
			writeError(c, err)
			return
		}
		if err != nil {
			reject(c, RejectBadToken)
			return
		}
		c.Set(identityKey, domain.Identity{
			ExternalID: claims.Subject,
			Email:      claims.Email,
			Name:       claims.Name,
			ImageURL:   claims.ImageURL,
		})
		c.Next()
	}
}

// ResolveUser maps the verified identity to a local user, creating it on first use.
func ResolveUser(r UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := c.Get(identityKey)
		if !ok {
			reject(c, RejectNoToken)
			return
		}
		u, err := r.Resolve(c.Request.Context(), id.(domain.Identity))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

// RequireCompany admits requests carrying a valid session token of an existing company.
func RequireCompany(tokens SessionValidator, companies CompanyLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c)
		if tok == "" {
			reject(c, RejectNoToken)
			return
		}
		id, err := tokens.Validate(tok)
		if err != nil {
			reject(c, RejectBadToken)
			return
		}
		company, err := companies.CompanyByID(c.Request.Context(), id)
		if errors.Is(err, service.ErrCompanyNotFound) {
			reject(c, RejectNoCompany)
			return
		}
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(companyKey, company)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	u, _ := c.Get(userKey)
	user, _ := u.(*domain.User)
	return user
}

func currentCompany(c *gin.Context) *domain.Company {
	v, _ := c.Get(companyKey)
	company, _ := v.(*domain.Company)
	return company
}
