// internal/httpserver/session.go
//
// Session cookie handling. The cookie carries an HS256 JWT naming the
// game session and player; it identifies a browser's game and grants
// nothing else.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const cookieName = "puzzle_session"

// ctxSessionKey is the context key type for the session id.
type ctxSessionKey struct{}

// sessionID returns the id placed in ctx by requireSession.
func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(ctxSessionKey{}).(string)
	return id
}

// signSession creates the token for a new game session.
func (s *Server) signSession(id, player string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.cfg.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":    id,
		"player": player,
		"exp":    exp.Unix(),
		"iat":    now.Unix(),
	})
	ss, err := t.SignedString(s.cfg.SessionKey)
	return ss, exp, err
}

// parseSession validates a token and returns its session id.
func (s *Server) parseSession(tok string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.SessionKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", errors.New("invalid session token")
	}
	id, _ := claims["sid"].(string)
	if id == "" {
		return "", errors.New("session token without id")
	}
	return id, nil
}

// setSessionCookie writes the token cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.Production {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a token from the Authorization header or the cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// requireSession enforces a valid session token and injects its id into
// the request context.
func (s *Server) requireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerOrCookie(r)
			if tok == "" {
				writeJSON(w, http.StatusUnauthorized, errorRes{Error: "no_session", Reason: "start a new game first"})
				return
			}
			id, err := s.parseSession(tok)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorRes{Error: "invalid_session", Reason: err.Error()})
				return
			}
			ctx := context.WithValue(r.Context(), ctxSessionKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
