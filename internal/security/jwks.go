package security

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrKeySource means the JWKS could not be fetched. Callers treat it as a
// server failure rather than a bad token.
var ErrKeySource = errors.New("security: identity key source unavailable")

var errUnknownKid = errors.New("kid not found in JWKS")

// Fetcher verifies identity tokens issued by the external identity provider
// against its published JWKS. Keys are cached for TTL and refetched on an
// unknown kid, at most once per MinRefresh.
type Fetcher struct {
	JWKSURL    string
	Issuer     string // checked when non-empty
	TTL        time.Duration
	MinRefresh time.Duration

	mu    sync.RWMutex
	keys  map[string]*rsa.PublicKey
	expAt time.Time

	fetchMu   sync.Mutex // one refresh at a time
	lastFetch time.Time
	lastErr   error

	http *http.Client
}

func NewFetcher(jwksURL, issuer string, ttl time.Duration) *Fetcher {
	return &Fetcher{
		JWKSURL:    jwksURL,
		Issuer:     issuer,
		TTL:        ttl,
		MinRefresh: 30 * time.Second,
		keys:       make(map[string]*rsa.PublicKey),
		http:       &http.Client{Timeout: 5 * time.Second},
	}
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"` // base64url
	E   string `json:"e"` // base64url
}

type JWKS struct {
	Keys []jwk `json:"keys"`
}

// PublicJWKS renders an RSA public key as a JWKS document.
func PublicJWKS(kid string, pub *rsa.PublicKey) JWKS {
	return JWKS{Keys: []jwk{{
		Kty: "RSA", Kid: kid, Alg: "RS256", Use: "sig",
		N: base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E: base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}}}
}

func (f *Fetcher) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.JWKSURL, nil)
	if err != nil {
		return err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks: unexpected status %d", resp.StatusCode)
	}

	var doc JWKS
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return err
	}
	tmp := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		nb, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		eb, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil || len(eb) == 0 {
			continue
		}
		e := 0
		for _, b := range eb {
			e = e<<8 + int(b)
		}
		tmp[k.Kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}
	}
	f.mu.Lock()
	f.keys = tmp
	f.expAt = time.Now().Add(f.TTL)
	f.mu.Unlock()
	return nil
}

func (f *Fetcher) cached(kid string) (pk *rsa.PublicKey, ok, fresh bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	pk, ok = f.keys[kid]
	return pk, ok, time.Now().Before(f.expAt)
}

func (f *Fetcher) getKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if pk, ok, fresh := f.cached(kid); ok && fresh {
		return pk, nil
	}

	f.fetchMu.Lock()
	defer f.fetchMu.Unlock()

	// a concurrent caller may have refreshed while we waited
	pk, ok, fresh := f.cached(kid)
	if ok && fresh {
		return pk, nil
	}
	if !f.lastFetch.IsZero() && time.Since(f.lastFetch) < f.MinRefresh {
		if f.lastErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeySource, f.lastErr)
		}
		if ok {
			return pk, nil
		}
		return nil, errUnknownKid
	}

	f.lastFetch = time.Now()
	f.lastErr = f.refresh(ctx)
	if f.lastErr != nil {
		err := f.lastErr
		if ctx.Err() != nil {
			// the caller gave up; let the next request retry
			f.lastFetch, f.lastErr = time.Time{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrKeySource, err)
	}
	if pk, ok, _ := f.cached(kid); ok {
		return pk, nil
	}
	return nil, errUnknownKid
}

// IdentityClaims are the claims we read from an identity token. Email, name and
// image are present only when the provider's session template adds them.
type IdentityClaims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	jwt.RegisteredClaims
}

func (f *Fetcher) ParseAndVerify(ctx context.Context, tokenStr string) (*IdentityClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	token, parts, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil || len(parts) != 3 {
		return nil, errors.New("bad token")
	}
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("no kid")
	}
	pub, err := f.getKey(ctx, kid)
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if f.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(f.Issuer))
	}
	claims := &IdentityClaims{}
	_, err = jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("bad method")
		}
		return pub, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("no subject")
	}
	return claims, nil
}
