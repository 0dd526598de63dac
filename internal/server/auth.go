package server

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sokinpui/maano.go/internal/models"
)

const userIDKey = "user_id"

// Claims are carried in tokens issued by the login route.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Authenticator issues and checks HS256 bearer tokens. With no secret it
// lets every request through.
type Authenticator struct {
	secret   []byte
	ttl      time.Duration
	email    string
	password string
	now      func() time.Time
}

func NewAuthenticator(secret string, ttl time.Duration, demoEmail, demoPassword string) *Authenticator {
	return &Authenticator{
		secret:   []byte(secret),
		ttl:      ttl,
		email:    strings.ToLower(strings.TrimSpace(demoEmail)),
		password: demoPassword,
		now:      time.Now,
	}
}

func (a *Authenticator) Enabled() bool {
	return a != nil && len(a.secret) > 0
}

func (a *Authenticator) LoginEnabled() bool {
	return a.Enabled() && a.email != "" && a.password != ""
}

// Login checks the demo credentials and returns the matching user.
func (a *Authenticator) Login(email, password string) (models.User, bool) {
	if !a.LoginEnabled() {
		return models.User{}, false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(email)), []byte(a.email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !emailOK || !passwordOK {
		return models.User{}, false
	}
	return models.User{ID: "admin-1", Email: a.email, Role: "admin", Name: "Admin User"}, true
}

// Issue signs a token for user.
func (a *Authenticator) Issue(user models.User) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, errors.New("auth secret is not configured")
	}
	now := a.now()
	expires := now.Add(a.ttl)
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse validates tokenString and returns its claims.
func (a *Authenticator) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Middleware enforces bearer auth when enabled.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	if !a.Enabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := a.Parse(tokenString)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
		Success: false,
		Error:   message,
	})
}
