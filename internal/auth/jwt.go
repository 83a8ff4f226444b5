package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/models"
)

// CookieName is the cookie that carries the session token.
const CookieName = "token"

var (
	// ErrNoSession means the request carried no token at all.
	ErrNoSession = errors.New("missing auth token")
	// ErrSessionExpired means the token was well formed but past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidSession covers every other token failure.
	ErrInvalidSession = errors.New("invalid auth token")
)

// Claims defines the JWT claims structure.
type Claims struct {
	UserID  string      `json:"userId"`
	Email   string      `json:"email"`
	Role    models.Role `json:"role"`
	Name    string      `json:"name"`
	VoterID string      `json:"voterId"`
	jwt.RegisteredClaims
}

// User rebuilds the session identity from the claims.
func (c *Claims) User() models.User {
	return models.User{ID: c.UserID, Email: c.Email, Role: c.Role, Name: c.Name, VoterID: c.VoterID}
}

// UserClaimsKey is the context key for user claims.
type contextKey string

const (
	UserClaimsKey = contextKey("userClaims")
	sessionErrKey = contextKey("sessionErr")
)

// Manager signs and validates session tokens.
type Manager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewManager creates a Manager signing with secret; tokens live for ttl.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{key: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime given to new tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// GenerateJWT creates a new JWT for a given user.
func (m *Manager) GenerateJWT(user models.User) (string, time.Time, error) {
	issuedAt := m.now()
	expirationTime := issuedAt.Add(m.ttl)
	claims := &Claims{
		UserID:  user.ID,
		Email:   user.Email,
		Role:    user.Role,
		Name:    user.Name,
		VoterID: user.VoterID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expirationTime, nil
}

// ValidateJWT parses and validates a JWT string.
func (m *Manager) ValidateJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !token.Valid || !claims.Role.Valid() {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// tokenFromRequest looks at the Authorization header first, then the cookie.
func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Session loads the session, if any, into the request context. It never
// rejects a request; guards downstream decide what a missing or expired
// session means for them.
func (m *Manager) Session() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				ctx := context.WithValue(r.Context(), sessionErrKey, ErrNoSession)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			claims, err := m.ValidateJWT(tokenStr)
			if err != nil {
				log.Debug().Err(err).Msg("Rejected session token")
				ctx := context.WithValue(r.Context(), sessionErrKey, err)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the session claims, or the reason there are none.
func ClaimsFromContext(ctx context.Context) (*Claims, error) {
	if claims, ok := ctx.Value(UserClaimsKey).(*Claims); ok {
		return claims, nil
	}
	if err, ok := ctx.Value(sessionErrKey).(error); ok {
		return nil, err
	}
	return nil, ErrNoSession
}

// SetCookie stores token in the session cookie.
func SetCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// ClearCookie removes the session cookie.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}
