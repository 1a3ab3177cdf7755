package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/projectoasis/hydroflow/config"
	"github.com/projectoasis/hydroflow/models"
)

// Claims are the custom payload in the admin JWT.
type Claims struct {
	AdminID string `json:"adminId"`
	Email   string `json:"email"`
	AreaID  string `json:"areaId,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// unexported type prevents collisions in context
type ctxKey int

const adminClaimsKey ctxKey = iota

func jwtKey() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// GenerateToken creates a signed JWT valid for 24 h.
func GenerateToken(admin *models.Admin) (string, error) {
	claims := Claims{
		AdminID: admin.ID.String(),
		Email:   admin.Email,
		IsAdmin: admin.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	if admin.AreaID != nil {
		claims.AreaID = admin.AreaID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey())
}

// ParseToken validates a raw token string and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return jwtKey(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// JWTMiddleware validates the bearer token and stashes the Claims in ctx.
func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "missing Authorization header", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			http.Error(w, "invalid auth header", http.StatusUnauthorized)
			return
		}

		claims, err := ParseToken(parts[1])
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin re-checks the token subject against the admins table so a
// revoked account cannot keep using an unexpired token.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r)
		if claims == nil || !claims.IsAdmin {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		var count int64
		if err := config.DB.Model(&models.Admin{}).
			Where("id = ? AND is_admin = ?", claims.AdminID, true).
			Count(&count).Error; err != nil || count == 0 {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClaims pulls the *Claims out of the request context (or nil).
func GetClaims(r *http.Request) *Claims {
	if c, ok := r.Context().Value(adminClaimsKey).(*Claims); ok {
		return c
	}
	return nil
}

// RandomSecret returns 32 bytes of hex-encoded randomness, used as an
// unusable placeholder password for OAuth-provisioned accounts. A
// failed entropy read must not degrade into a guessable value.
func RandomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// GetAdmin loads the full admin record for the current request.
func GetAdmin(r *http.Request) *models.Admin {
	c := GetClaims(r)
	if c == nil {
		return nil
	}
	var admin models.Admin
	if err := config.DB.First(&admin, "id = ?", c.AdminID).Error; err != nil {
		return nil
	}
	return &admin
}
