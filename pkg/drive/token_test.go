package drive

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testKeyB64(t *testing.T, tokenURI string) (string, *rsa.PublicKey) {
	t.Helper()

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(rsaKey)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	raw, err := json.Marshal(serviceAccountKey{
		ClientEmail: "vault@test.iam.gserviceaccount.com",
		PrivateKey:  string(pemKey),
		TokenURI:    tokenURI,
	})
	if err != nil {
		t.Fatalf("marshal key json: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw), &rsaKey.PublicKey
}

func TestTokenSource_ExchangeAndCache(t *testing.T) {
	var calls int
	var pub *rsa.PublicKey

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != jwtBearerGrant {
			t.Fatalf("unexpected grant_type: %q", got)
		}

		assertion := r.PostForm.Get("assertion")
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(assertion, claims, func(tok *jwt.Token) (any, error) {
			return pub, nil
		}, jwt.WithValidMethods([]string{"RS256"}))
		if err != nil {
			t.Fatalf("verify assertion: %v", err)
		}
		if claims["iss"] != "vault@test.iam.gserviceaccount.com" || claims["scope"] != driveScope {
			t.Fatalf("unexpected claims: %v", claims)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	keyB64, pubKey := testKeyB64(t, srv.URL)
	pub = pubKey

	ts, err := newTokenSource(keyB64, &http.Client{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new token source: %v", err)
	}

	tok, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok != "tok-123" {
		t.Fatalf("unexpected token: %q", tok)
	}

	// Second call must hit the cache, not the endpoint.
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("cached token: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 exchange call, got %d", calls)
	}
}

func TestNewTokenSource_BadKey(t *testing.T) {
	if _, err := newTokenSource("not-base64!!", nil); err == nil {
		t.Fatalf("expected error for bad base64")
	}

	raw := base64.StdEncoding.EncodeToString([]byte(`{"client_email":""}`))
	if _, err := newTokenSource(raw, nil); err == nil {
		t.Fatalf("expected error for missing fields")
	}
}
