package http_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/queue"
)

func (e *testEnv) registerCompany(name, email string) (token string, id string) {
	e.T.Helper()
	w := e.do("POST", "/api/company/register",
		`{"name":"`+name+`","email":"`+email+`","password":"StrongP@ss1"}`, "")
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())
	res := decode(e.T, w)
	require.NotEmpty(e.T, res.Token)
	return res.Token, res.Company["id"].(string)
}

func Test_Company_Register_Login(t *testing.T) {
	env := newTestEnv(t)
	_, id := env.registerCompany("Acme", "hr@acme.io")

	w := env.do("POST", "/api/company/register", `{"name":"Acme","email":"HR@acme.io","password":"StrongP@ss1"}`, "")
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = env.do("POST", "/api/company/login", `{"email":"hr@acme.io","password":"StrongP@ss1"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode(t, w)
	assert.Equal(t, id, res.Company["id"])
	assert.NotContains(t, res.Company, "passwordHash")
	assert.NotContains(t, res.Company, "password_hash")
	assert.NotEmpty(t, res.Token)

	w = env.do("POST", "/api/company/login", `{"email":"hr@acme.io","password":"nope-nope"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	res = decode(t, w)
	assert.Empty(t, res.Token)
	assert.Equal(t, "Invalid email or password", res.Message)
}

func Test_Company_Guard(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/api/company/company", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, Login Again", decode(t, w).Message)

	before := env.Store.CompanyLookups()
	w = env.do("GET", "/api/company/company", "", "not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token, authorization failed", decode(t, w).Message)

	expired, err := env.Sessions.GenerateWithDuration(primitive.NewObjectID().Hex(), -time.Minute)
	require.NoError(t, err)
	w = env.do("GET", "/api/company/company", "", expired)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, before, env.Store.CompanyLookups(), "invalid tokens never reach the store")

	ghost, err := env.Sessions.Generate(primitive.NewObjectID().Hex())
	require.NoError(t, err)
	w = env.do("GET", "/api/company/company", "", ghost)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Company not found", decode(t, w).Message)

	tok, id := env.registerCompany("Acme", "hr@acme.io")
	w = env.do("GET", "/api/company/company", "", tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode(t, w)
	assert.Equal(t, id, res.Company["id"])
	assert.NotContains(t, w.Body.String(), "password")
}

func Test_Company_Jobs_And_Applicants(t *testing.T) {
	env := newTestEnv(t)
	tok, _ := env.registerCompany("Acme", "hr@acme.io")
	otherTok, _ := env.registerCompany("Other", "hr@other.io")

	w := env.do("POST", "/api/company/post-job", `{"title":"Go Engineer"}`, tok)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.do("POST", "/api/company/post-job",
		`{"title":"Go Engineer","description":"Build","location":"Remote","category":"Programming","level":"Senior","salary":100}`, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	jobID := decode(t, w).Job["id"].(string)

	userTok := env.identityToken("user_1", time.Minute)
	w = env.do("POST", "/api/users/apply", `{"jobId":"`+jobID+`"}`, userTok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do("GET", "/api/company/list-jobs", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	jobs := decode(t, w).JobsData
	require.Len(t, jobs, 1)
	assert.EqualValues(t, 1, jobs[0]["applicants"])

	w = env.do("GET", "/api/company/applicants", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	apps := decode(t, w).Applications
	require.Len(t, apps, 1)
	appID := apps[0]["id"].(string)
	assert.Equal(t, "Jane Doe", apps[0]["user"].(map[string]any)["name"])

	// another company cannot touch it
	w = env.do("POST", "/api/company/change-status", `{"id":"`+appID+`","status":"Accepted"}`, otherTok)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	w = env.do("POST", "/api/company/change-status", `{"id":"`+appID+`","status":"Maybe"}`, tok)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.do("POST", "/api/company/change-status", `{"id":"`+appID+`","status":"Accepted"}`, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusAccepted, decode(t, w).Application["status"])
	assert.Contains(t, env.Pub.Keys(), queue.KeyStatusChanged)

	w = env.do("POST", "/api/company/change-visibility", `{"id":"`+jobID+`"}`, otherTok)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("POST", "/api/company/change-visibility", `{"id":"`+jobID+`"}`, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, decode(t, w).Job["visible"])

	w = env.do("GET", "/api/jobs", "", "")
	assert.Empty(t, decode(t, w).Jobs)
}

func Test_Company_Login_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		w := env.do("POST", "/api/company/login", `{"email":"x@acme.io","password":"whatever1"}`, "")
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{401, 401, 401, 429, 429}, codes)
}

func Test_Company_Register_Multipart(t *testing.T) {
	env := newTestEnv(t)
	w := env.upload("/api/company/register?name=Acme", "", "image", "logo.png", "image/png", []byte("\x89PNG"))
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "Missing Details", decode(t, w).Message)
	assert.Equal(t, 0, env.Objects.Len(), "logo is not stored for a rejected registration")
}
