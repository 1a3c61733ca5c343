package services

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"khosta-backend-go/internal/models"
)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
}

// Claims is what an access token proves about its bearer.
type Claims struct {
	UserID string
	Email  string
	Role   models.Role
}

type TokenService struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

func (t TokenService) now() time.Time {
	if t.Now != nil {
		return t.Now().UTC()
	}
	return time.Now().UTC()
}

func (t TokenService) HashPassword(raw string) (string, error) {
	return hashArgon2id(raw)
}

// VerifyPassword accepts argon2id hashes and legacy bcrypt hashes.
func (t TokenService) VerifyPassword(raw, hashed string) bool {
	if strings.HasPrefix(hashed, "$argon2") {
		return verifyArgon2id(raw, hashed)
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(raw)) == nil
}

func (t TokenService) Issue(user models.User) (TokenPair, error) {
	now := t.now()
	exp := now.Add(t.AccessTTL)
	access, err := t.sign(jwt.MapClaims{
		"iss":   t.Issuer,
		"sub":   user.ID,
		"typ":   tokenAccess,
		"email": user.Email,
		"roles": []string{string(user.Role)},
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	})
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.sign(jwt.MapClaims{
		"iss": t.Issuer,
		"sub": user.ID,
		"typ": tokenRefresh,
		"iat": now.Unix(),
		"exp": now.Add(t.RefreshTTL).Unix(),
	})
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp.Unix()}, nil
}

func (t TokenService) sign(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

func (t TokenService) parse(tokenStr, typ string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	},
		jwt.WithIssuer(t.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized("Authentication failed")
	}
	if claims["typ"] != typ {
		return nil, ErrUnauthorized("Authentication failed")
	}
	return claims, nil
}

func (t TokenService) ParseAccess(tokenStr string) (Claims, error) {
	claims, err := t.parse(tokenStr, tokenAccess)
	if err != nil {
		return Claims{}, err
	}
	out := Claims{}
	out.UserID, _ = claims["sub"].(string)
	out.Email, _ = claims["email"].(string)
	if rawRoles, ok := claims["roles"].([]interface{}); ok && len(rawRoles) > 0 {
		if raw, ok := rawRoles[0].(string); ok {
			out.Role, _ = models.ParseRole(raw)
		}
	}
	if out.UserID == "" || out.Role == "" {
		return Claims{}, ErrUnauthorized("Authentication failed")
	}
	return out, nil
}

// ParseRefresh returns the user id a refresh token was issued to.
func (t TokenService) ParseRefresh(tokenStr string) (string, error) {
	claims, err := t.parse(tokenStr, tokenRefresh)
	if err != nil {
		return "", err
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		return "", ErrUnauthorized("Authentication failed")
	}
	return userID, nil
}

type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  int
	keyLength   int
}

var defaultArgon2 = argon2Params{
	memory:      65536,
	iterations:  3,
	parallelism: 1,
	saltLength:  16,
	keyLength:   32,
}

func hashArgon2id(raw string) (string, error) {
	params := defaultArgon2
	salt := make([]byte, params.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(raw), salt, params.iterations, params.memory, params.parallelism, uint32(params.keyLength))
	return "$argon2id$v=19$m=" + strconv.FormatUint(uint64(params.memory), 10) +
		",t=" + strconv.FormatUint(uint64(params.iterations), 10) +
		",p=" + strconv.FormatUint(uint64(params.parallelism), 10) +
		"$" + base64.RawStdEncoding.EncodeToString(salt) +
		"$" + base64.RawStdEncoding.EncodeToString(key), nil
}

func verifyArgon2id(raw, encoded string) bool {
	params, salt, hash, err := decodeArgon2id(encoded)
	if err != nil {
		return false
	}
	key := argon2.IDKey([]byte(raw), salt, params.iterations, params.memory, params.parallelism, uint32(params.keyLength))
	return subtle.ConstantTimeCompare(hash, key) == 1
}

func decodeArgon2id(encoded string) (argon2Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return argon2Params{}, nil, nil, errors.New("invalid hash format")
	}
	var params argon2Params
	for _, kv := range strings.Split(parts[3], ",") {
		pair := strings.SplitN(kv, "=", 2)
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "m":
			value, _ := strconv.ParseUint(pair[1], 10, 32)
			params.memory = uint32(value)
		case "t":
			value, _ := strconv.ParseUint(pair[1], 10, 32)
			params.iterations = uint32(value)
		case "p":
			value, _ := strconv.ParseUint(pair[1], 10, 8)
			params.parallelism = uint8(value)
		}
	}
	if params.memory == 0 || params.iterations == 0 || params.parallelism == 0 {
		return argon2Params{}, nil, nil, errors.New("invalid hash parameters")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return argon2Params{}, nil, nil, err
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return argon2Params{}, nil, nil, err
	}
	params.saltLength = len(salt)
	params.keyLength = len(hash)
	return params, salt, hash, nil
}
