package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"jobboard/internal/domain/user"
)

var (
	ErrTokenFormat    = errors.New("invalid token format")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenExpired   = errors.New("token expired")
)

type JWTProvider struct {
	secret []byte
	now    func() time.Time
}

func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), now: func() time.Time { return time.Now().UTC() }}
}

type Claims struct {
	Sub       string `json:"sub,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Role      string `json:"role,omitempty"`
	IsStaff   bool   `json:"is_staff,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	Exp       int64  `json:"exp"`
	Iat       int64  `json:"iat"`
}

// Generate issues an HS256 token for the user. It is used by operators and tests;
// token issuance for end users lives outside this service.
func (p *JWTProvider) Generate(u user.User, ttl time.Duration) (string, time.Time, error) {
	issuedAt := p.now()
	expiresAt := issuedAt.Add(ttl)
	claims := Claims{
		Sub:     u.ID.String(),
		UserID:  u.ID.String(),
		Role:    string(u.Role),
		IsStaff: u.IsStaff,
		Exp:     expiresAt.Unix(),
		Iat:     issuedAt.Unix(),
	}
	if u.CompanyID != nil {
		claims.CompanyID = u.CompanyID.String()
	}
	headerJSON, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		return "", time.Time{}, err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	return signingInput + "." + signHS256(signingInput, p.secret), expiresAt, nil
}

func (p *JWTProvider) Parse(tokenString string) (*Claims, error) {
	parts := strings.Split(strings.TrimSpace(tokenString), ".")
	if len(parts) != 3 {
		return nil, ErrTokenFormat
	}
	if !verifyHS256(parts[0]+"."+parts[1], parts[2], p.secret) {
		return nil, ErrTokenSignature
	}
	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, err
	}
	var claims Claims
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		claims.UserID = claims.Sub
	}
	if claims.Exp > 0 && p.now().Unix() > claims.Exp {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}

func signHS256(input string, secret []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func verifyHS256(input, signature string, secret []byte) bool {
	return hmac.Equal([]byte(signature), []byte(signHS256(input, secret)))
}
