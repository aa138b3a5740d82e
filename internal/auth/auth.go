// Package auth issues and validates the signed bearer tokens used by both
// the HTTP API and the websocket comment channel.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apierrors "github.com/maruel/colldb/internal/errors"
	"github.com/maruel/colldb/internal/models"
	"github.com/maruel/colldb/internal/storage"
)

// TokenTTL is the validity window of an issued token.
const TokenTTL = time.Hour

// Authenticator signs tokens and resolves them back to users.
type Authenticator struct {
	secret      []byte
	userService *storage.UserService
}

// NewAuthenticator creates an Authenticator with the given signing secret.
func NewAuthenticator(secret []byte, userService *storage.UserService) *Authenticator {
	return &Authenticator{secret: secret, userService: userService}
}

// IssueToken mints an HS256 token for the user, valid for TokenTTL.
func (a *Authenticator) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": now.Add(TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Resolve validates a token and returns the user it belongs to. Every
// failure mode (malformed, expired, bad signature, unknown subject) yields
// the same unauthorized error so none of them is distinguishable.
func (a *Authenticator) Resolve(tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apierrors.Unauthorized().Wrap(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierrors.Unauthorized()
	}
	userID, ok := claims["sub"].(string)
	if !ok {
		return nil, apierrors.Unauthorized()
	}

	user, err := a.userService.GetByID(userID)
	if err != nil {
		return nil, apierrors.Unauthorized().Wrap(err)
	}
	return user, nil
}
