package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/gofiber/fiber/v3"
)

// JWTConfig holds JWT middleware configuration.
type JWTConfig struct {
	Secret    string
	Issuer    string
	ExpiresIn time.Duration
}

// JWTMiddleware creates a Fiber middleware that validates session tokens
// and injects a UserContext into the request context.
func JWTMiddleware(cfg JWTConfig) fiber.Handler {
	return func(c fiber.Ctx) error {
		var token string

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token = parts[1]
			}
		}

		// EventSource cannot set headers.
		if token == "" {
			token = c.Query("token")
		}

		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authorization",
			})
		}

		claims, err := ValidateJWT(token, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals("user", &domain.UserContext{
			UserID:      claims.Subject,
			Fingerprint: claims.Fingerprint,
		})

		return c.Next()
	}
}

// GetUserContext extracts the UserContext from Fiber locals.
func GetUserContext(c fiber.Ctx) *domain.UserContext {
	u, ok := c.Locals("user").(*domain.UserContext)
	if !ok {
		return nil
	}
	return u
}

// Claims represents the JWT payload.
type Claims struct {
	Subject     string `json:"sub"`
	Fingerprint string `json:"fpr"`
	Issuer      string `json:"iss"`
	IssuedAt    int64  `json:"iat"`
	ExpiresAt   int64  `json:"exp"`
}

// GenerateJWT creates a new HS256 token for the given user.
func GenerateJWT(user *domain.User, cfg JWTConfig) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("generate jwt: empty secret")
	}

	now := time.Now()
	claims := Claims{
		Subject:     user.ID,
		Fingerprint: user.TokenFingerprint,
		Issuer:      cfg.Issuer,
		IssuedAt:    now.Unix(),
		ExpiresAt:   now.Add(cfg.ExpiresIn).Unix(),
	}

	headerJSON, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		return "", fmt.Errorf("marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(claimsJSON)

	return signingInput + "." + signHS256(signingInput, cfg.Secret), nil
}

// ValidateJWT checks signature, expiry and issuer and returns the claims.
// Failures wrap port.ErrTokenInvalid or port.ErrTokenExpired.
func ValidateJWT(tokenStr string, cfg JWTConfig) (*Claims, error) {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: bad format", port.ErrTokenInvalid)
	}

	signingInput := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(signHS256(signingInput, cfg.Secret))) {
		return nil, fmt.Errorf("%w: bad signature", port.ErrTokenInvalid)
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad encoding", port.ErrTokenInvalid)
	}

	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, fmt.Errorf("%w: bad claims", port.ErrTokenInvalid)
	}

	if time.Now().Unix() > claims.ExpiresAt {
		return nil, port.ErrTokenExpired
	}

	if claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("%w: unexpected issuer", port.ErrTokenInvalid)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", port.ErrTokenInvalid)
	}

	return &claims, nil
}

func signHS256(input, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
