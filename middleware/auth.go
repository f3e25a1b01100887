package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ContextActor = "actor"

// Claims is the identity token issued by the identity provider.
type Claims struct {
	UserID  uint   `json:"userId"`
	Role    string `json:"role"`
	HotelID uint   `json:"hotelId,omitempty"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// IssueToken signs claims the way the identity provider does. Used by tooling and tests.
func (a *Authenticator) IssueToken(userID uint, role services.Role, hotelID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Role:    string(role),
		HotelID: hotelID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates an HS256 token and turns it into an actor. Only customers and
// managers can hold tokens.
func (a *Authenticator) Parse(tokenStr string) (services.Actor, error) {
	if tokenStr == "" {
		return services.Actor{}, errors.New("missing token")
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return services.Actor{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return services.Actor{}, errors.New("invalid token")
	}
	role := services.Role(strings.ToLower(claims.Role))
	if role != services.RoleCustomer && role != services.RoleManager {
		return services.Actor{}, errors.New("unsupported role")
	}
	if claims.UserID == 0 {
		return services.Actor{}, errors.New("missing userId")
	}
	return services.Actor{UserID: claims.UserID, Role: role, HotelID: claims.HotelID}, nil
}

func bearer(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}

// RequireAuth rejects requests without a valid token.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, present := bearer(c)
		if !present {
			utils.AbortJSONError(c, http.StatusUnauthorized, "error.unauthenticated", "Authorization header missing")
			return
		}
		actor, err := a.Parse(tokenStr)
		if err != nil {
			utils.AbortJSONError(c, http.StatusUnauthorized, "error.unauthenticated", "Invalid or expired token")
			return
		}
		c.Set(ContextActor, actor)
		c.Next()
	}
}

func ActorFrom(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(ContextActor)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}
