package http_test

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	api "github.com/tazhibayda/jobboard/internal/http"
	"github.com/tazhibayda/jobboard/internal/memstore"
	"github.com/tazhibayda/jobboard/internal/ratelimit"
	"github.com/tazhibayda/jobboard/internal/security"
	"github.com/tazhibayda/jobboard/internal/service"
)

const (
	testIssuer = "https://identity.test"
	testKid    = "kid-test"
)

type testEnv struct {
	T        *testing.T
	Store    *memstore.Store
	Objects  *memstore.Objects
	Pub      *memstore.Publisher
	Sessions *security.SessionTokens
	Handler  *api.Handler
	Router   *gin.Engine

	key *rsa.PrivateKey
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	jwks := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(security.PublicJWKS(testKid, &key.PublicKey))
	}))
	t.Cleanup(jwks.Close)

	sessions, err := security.NewSessionTokens("http-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	store := memstore.New()
	objects := memstore.NewObjects()
	pub := &memstore.Publisher{}
	events := &service.Events{Pub: pub, Exchange: "jobboard.events", Log: zap.NewNop()}

	h := &api.Handler{
		Identity: service.NewIdentityResolver(store, nil),
		Apps:     service.NewApplicationService(store, store, store, events, nil),
		Resumes:  service.NewResumeService(store, objects, 1<<20, nil),
		Companies: service.NewCompanyService(service.CompanyDeps{
			Companies: store, Jobs: store, Apps: store, Users: store,
			Tokens: sessions, Objects: objects, Events: events,
		}),
		Jobs: service.NewJobCatalog(store, nil, nil),
		Log:  zap.NewNop(),
	}
	r := api.NewRouter(h, api.RouterDeps{
		Identity:       security.NewFetcher(jwks.URL, testIssuer, time.Minute),
		Sessions:       sessions,
		Limiter:        ratelimit.NewMemory(3, time.Minute),
		RequestTimeout: 5 * time.Second,
	})

	return &testEnv{T: t, Store: store, Objects: objects, Pub: pub, Sessions: sessions, Handler: h, Router: r, key: key}
}

// identityToken mints a token the way the identity provider would.
func (e *testEnv) identityToken(sub string, ttl time.Duration) string {
	e.T.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":       sub,
		"iss":       testIssuer,
		"exp":       time.Now().Add(ttl).Unix(),
		"email":     sub + "@example.com",
		"name":      "Jane Doe",
		"image_url": "https://img.test/" + sub + ".png",
	})
	tok.Header["kid"] = testKid
	s, err := tok.SignedString(e.key)
	require.NoError(e.T, err)
	return s
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(path, token, field, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	e.T.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(e.T, err)
		_, _ = part.Write(content)
	}
	require.NoError(e.T, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success      bool             `json:"success"`
	Message      string           `json:"message"`
	Token        string           `json:"token"`
	User         map[string]any   `json:"user"`
	Company      map[string]any   `json:"company"`
	Job          map[string]any   `json:"job"`
	Jobs         []map[string]any `json:"jobs"`
	JobsData     []map[string]any `json:"jobsData"`
	Applications []map[string]any `json:"applications"`
	Application  map[string]any   `json:"application"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body=%s", w.Body.String())
	return env
}
