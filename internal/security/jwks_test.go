package security_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/jobboard/internal/security"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}

func jwksServer(t *testing.T, kid string, pub *rsa.PublicKey, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		_ = json.NewEncoder(w).Encode(security.PublicJWKS(kid, pub))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sign(t *testing.T, k *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(k)
	require.NoError(t, err)
	return s
}

func TestFetcher_VerifiesAndCaches(t *testing.T) {
	k := newKey(t)
	var hits int32
	srv := jwksServer(t, "kid-1", &k.PublicKey, &hits)
	f := security.NewFetcher(srv.URL, "https://issuer.example", time.Minute)

	tok := sign(t, k, "kid-1", jwt.MapClaims{
		"sub":   "user_abc",
		"iss":   "https://issuer.example",
		"exp":   time.Now().Add(time.Minute).Unix(),
		"email": "jane@example.com",
		"name":  "Jane",
	})

	for i := 0; i < 3; i++ {
		c, err := f.ParseAndVerify(context.Background(), tok)
		require.NoError(t, err)
		assert.Equal(t, "user_abc", c.Subject)
		assert.Equal(t, "jane@example.com", c.Email)
		assert.Equal(t, "Jane", c.Name)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetcher_Rejects(t *testing.T) {
	k := newKey(t)
	other := newKey(t)
	srv := jwksServer(t, "kid-1", &k.PublicKey, nil)
	f := security.NewFetcher(srv.URL, "https://issuer.example", time.Minute)
	valid := func() jwt.MapClaims {
		return jwt.MapClaims{"sub": "u", "iss": "https://issuer.example", "exp": time.Now().Add(time.Minute).Unix()}
	}

	cases := map[string]string{
		"garbage":     "not-a-token",
		"unknown kid": sign(t, k, "kid-2", valid()),
		"wrong key":   sign(t, other, "kid-1", valid()),
		"expired": sign(t, k, "kid-1", jwt.MapClaims{
			"sub": "u", "iss": "https://issuer.example", "exp": time.Now().Add(-time.Hour).Unix(),
		}),
		"wrong issuer": sign(t, k, "kid-1", jwt.MapClaims{
			"sub": "u", "iss": "https://evil.example", "exp": time.Now().Add(time.Minute).Unix(),
		}),
		"no subject": sign(t, k, "kid-1", jwt.MapClaims{
			"iss": "https://issuer.example", "exp": time.Now().Add(time.Minute).Unix(),
		}),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.ParseAndVerify(context.Background(), tok)
			assert.Error(t, err)
		})
	}

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, valid())
	hs.Header["kid"] = "kid-1"
	s, err := hs.SignedString([]byte("whatever-secret"))
	require.NoError(t, err)
	_, err = f.ParseAndVerify(context.Background(), s)
	assert.Error(t, err, "HS256 must not be accepted for identity tokens")
}

func TestFetcher_UnknownKidRefetchIsThrottled(t *testing.T) {
	k := newKey(t)
	var hits int32
	srv := jwksServer(t, "kid-1", &k.PublicKey, &hits)
	f := security.NewFetcher(srv.URL, "", time.Minute)
	claims := func() jwt.MapClaims {
		return jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Minute).Unix()}
	}

	_, err := f.ParseAndVerify(context.Background(), sign(t, k, "kid-1", claims()))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := f.ParseAndVerify(context.Background(), sign(t, k, "random-kid", claims()))
		require.Error(t, err)
		assert.NotErrorIs(t, err, security.ErrKeySource)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	// once the interval has passed an unknown kid may trigger a refetch
	f.MinRefresh = 0
	_, err = f.ParseAndVerify(context.Background(), sign(t, k, "random-kid", claims()))
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFetcher_ConcurrentMissesShareOneFetch(t *testing.T) {
	k := newKey(t)
	var hits int32
	srv := jwksServer(t, "kid-1", &k.PublicKey, &hits)
	f := security.NewFetcher(srv.URL, "", time.Minute)
	tok := sign(t, k, "kid-1", jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Minute).Unix()})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ParseAndVerify(context.Background(), tok)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetcher_KeySourceDown(t *testing.T) {
	k := newKey(t)
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	f := security.NewFetcher(srv.URL, "", time.Minute)
	tok := sign(t, k, "kid-1", jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Minute).Unix()})

	for i := 0; i < 3; i++ {
		_, err := f.ParseAndVerify(context.Background(), tok)
		assert.ErrorIs(t, err, security.ErrKeySource)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "a failing key source is not hammered")
}
