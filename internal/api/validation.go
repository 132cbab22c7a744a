package api

import (
	"net/url"
	"strings"

	"portal-service/internal/password"

	"github.com/go-playground/validator/v10"
)

// maxFotoLength bounds inline data:image payloads stored in the foto column.
const maxFotoLength = 2 << 20

var inlineImageTypes = []string{"png", "jpeg", "jpg", "gif", "webp"}

func NewValidator() *validator.Validate {
	v := validator.New()
	// registration only fails on a duplicate tag name
	_ = v.RegisterValidation("foto", validateFoto)
	_ = v.RegisterValidation("bcryptmax", validateBcryptMax)
	return v
}

// validateFoto accepts an http(s) URL or a base64 data:image URI.
func validateFoto(fl validator.FieldLevel) bool {
	return IsValidFoto(fl.Field().String())
}

// validateBcryptMax bounds the UTF-8 byte length, which is what bcrypt limits.
func validateBcryptMax(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= password.MaxBytes
}

func IsValidFoto(foto string) bool {
	if foto == "" || len(foto) > maxFotoLength {
		return false
	}

	if rest, ok := strings.CutPrefix(foto, "data:image/"); ok {
		mediaType, payload, found := strings.Cut(rest, ";base64,")
		if !found || payload == "" {
			return false
		}
		for _, t := range inlineImageTypes {
			if mediaType == t {
				return true
			}
		}
		return false
	}

	u, err := url.ParseRequestURI(foto)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
