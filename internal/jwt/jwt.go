package jwt

import (
	"errors"
	"strconv"
	"time"

	"portal-service/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
	ErrEmptySecret  = errors.New("jwt secret must not be empty")
)

const DefaultTTL = time.Hour

type Claims struct {
	UsuarioID int64  `json:"id"`
	Rol       string `json:"rol"`
	Correo    string `json:"correo,omitempty"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *Issuer) IssueToken(usuario *model.Usuario) (string, error) {
	now := i.now()

	claims := Claims{
		UsuarioID: usuario.ID,
		Rol:       usuario.Rol,
		Correo:    usuario.Correo,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(usuario.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *Issuer) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid || claims.UsuarioID <= 0 || !model.IsValidRol(claims.Rol) {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
