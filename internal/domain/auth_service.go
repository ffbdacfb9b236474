package domain

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/Vovarama1992/voxbridge/internal/ports"
)

// AuthService verifies tokens of the form "<userID>.<hex hmac-sha256>".
// Tokens are issued by the account service that shares AUTH_SECRET.
type AuthService struct {
	secret string
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: secret}
}

func (s *AuthService) UserID(ctx context.Context, token string) (int64, bool) {
	if s.secret == "" {
		return 0, false
	}

	idPart, sig, ok := strings.Cut(token, ".")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	if !hmac.Equal([]byte(sig), []byte(s.sign(idPart))) {
		return 0, false
	}
	return id, true
}

// Sign issues a token for userID.
func (s *AuthService) Sign(userID int64) string {
	idPart := strconv.FormatInt(userID, 10)
	return idPart + "." + s.sign(idPart)
}

func (s *AuthService) sign(msg string) string {
	h := hmac.New(sha256.New, []byte(s.secret))
	h.Write([]byte(msg))
	return hex.EncodeToString(h.Sum(nil))
}
