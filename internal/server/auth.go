package server

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/wethinkt/go-csvview/internal/tuilog"
)

// EnvToken names the environment variable a server token can come from.
const EnvToken = "CSVVIEW_SERVER_TOKEN"

const authRealm = `Bearer realm="csvview"`

var (
	errNoToken    = errors.New("missing bearer token")
	errBadScheme  = errors.New("authorization is not a bearer token")
	errWrongToken = errors.New("invalid token")
)

// Auth is the bearer token the dataset routes require. The zero value
// leaves them open.
type Auth struct {
	Token  string
	Source string // flag, config or env
}

// ResolveAuth takes the first token set among flagToken, configToken and
// the EnvToken variable.
func ResolveAuth(flagToken, configToken string) Auth {
	candidates := []Auth{
		{Token: flagToken, Source: "flag"},
		{Token: configToken, Source: "config"},
		{Token: os.Getenv(EnvToken), Source: "env"},
	}
	for _, c := range candidates {
		if c.Token = strings.TrimSpace(c.Token); c.Token != "" {
			return c
		}
	}
	return Auth{}
}

// Enabled reports whether requests must carry the token.
func (a Auth) Enabled() bool {
	return a.Token != ""
}

// Middleware rejects requests without the token. With auth disabled it
// returns next unchanged.
func (a Auth) Middleware(next http.Handler) http.Handler {
	if !a.Enabled() {
		return next
	}
	want := []byte(a.Token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, err := requestToken(r)
		if err == nil && subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			err = errWrongToken
		}
		if err != nil {
			tuilog.Log.Info("Rejected request", "path", r.URL.Path, "remote", r.RemoteAddr, "reason", err)
			w.Header().Set("WWW-Authenticate", authRealm)
			writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestToken reads the bearer token from the Authorization header, or
// from ?token= for links opened in a browser.
func requestToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if t := r.URL.Query().Get("token"); t != "" {
			return t, nil
		}
		return "", errNoToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errBadScheme
	}
	return strings.TrimSpace(token), nil
}

// GenerateSecureToken returns 32 random bytes as a 64-character hex string.
func GenerateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
