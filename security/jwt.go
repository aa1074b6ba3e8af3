package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// APIClaims are the identity claims carried in a bearer token
type APIClaims struct {
	Email     string
	Name      string
	Roles     []string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// JWTSigner implements RS256 token signing and parsing for API clients.
type JWTSigner struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

// NewJWTSigner builds a signer from configured PEM keys
func NewJWTSigner(privateKeyPEM, publicKeyPEM string) (*JWTSigner, error) {
	if privateKeyPEM == "" || publicKeyPEM == "" {
		return nil, errors.New("jwt private/public keys are required")
	}

	priv, err := parseRSAPrivate(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	pub, err := parseRSAPublic(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &JWTSigner{privateKey: priv, publicKey: pub}, nil
}

// NewEphemeralJWTSigner creates an in-memory keypair for local/dev use.
// Tokens do not survive a restart, which is acceptable for development.
func NewEphemeralJWTSigner() (*JWTSigner, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return &JWTSigner{privateKey: privateKey, publicKey: &privateKey.PublicKey}, nil
}

type apiJWTClaims struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Sign issues a token for the given identity
func (s *JWTSigner) Sign(claims APIClaims) (string, error) {
	tokenID := claims.TokenID
	if tokenID == "" {
		tokenID = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, apiJWTClaims{
		Email: claims.Email,
		Name:  claims.Name,
		Roles: claims.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	return token.SignedString(s.privateKey)
}

// ParseAndValidate checks a raw token and returns its identity claims
func (s *JWTSigner) ParseAndValidate(raw string) (APIClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &apiJWTClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return APIClaims{}, err
	}

	claims, ok := parsed.Claims.(*apiJWTClaims)
	if !ok || !parsed.Valid {
		return APIClaims{}, errors.New("invalid token claims")
	}

	return APIClaims{
		Email:     claims.Email,
		Name:      claims.Name,
		Roles:     claims.Roles,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

func parseRSAPrivate(raw string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, errors.New("invalid private PEM")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := keyAny.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return key, nil
}

func parseRSAPublic(raw string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, errors.New("invalid public PEM")
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	keyAny, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := keyAny.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return key, nil
}
