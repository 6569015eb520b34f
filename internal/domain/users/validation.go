package users

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"cat-care/internal/platform/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	usernameRe   = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,30}$`)
	personNameRe = regexp.MustCompile(`^\p{L}[\p{L} \-]{0,49}$`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9]`)
)

// weakPhrases se comparan contra la contraseña normalizada (minúsculas, solo a-z0-9).
var weakPhrases = []string{
	"pantadeusz",
	"password",
	"haslo",
	"qwerty",
	"letmein",
	"welcome",
	"123456",
}

const (
	minPasswordLen = 8
	maxPasswordLen = 64
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return personNameRe.MatchString(fl.Field().String())
	})
	return v
}

// createInput es lo que se valida con tags; la contraseña va aparte
// porque su error lleva un motivo legible.
type createInput struct {
	Username  string `validate:"required,username"`
	Email     string `validate:"required,max=254,email"`
	FirstName string `validate:"required,person_name"`
	LastName  string `validate:"required,person_name"`
	Role      string `validate:"required,oneof=user admin"`
}

type profileInput struct {
	FirstName string `validate:"required,person_name"`
	LastName  string `validate:"required,person_name"`
}

// fieldCodes traduce el campo que falló al código de la API.
var fieldCodes = map[string]*apperr.Error{
	"Username":  ErrInvalidUsername,
	"Email":     ErrInvalidEmail,
	"FirstName": ErrInvalidName,
	"LastName":  ErrInvalidName,
	"Role":      ErrInvalidRole,
}

func (s *Service) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if code, ok := fieldCodes[verrs[0].Field()]; ok {
			return code
		}
	}
	return apperr.BadRequest("invalid_data")
}

// CheckPassword aplica la política de contraseñas. Devuelve weak_password con
// el motivo en Message.
func CheckPassword(password, username, email string) error {
	weak := func(reason string) error { return ErrWeakPassword.WithMessage(reason) }

	n := len([]rune(password))
	if n < minPasswordLen || n > maxPasswordLen {
		return weak("password must be 8-64 characters long")
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return weak("password must not contain whitespace")
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		return weak("password needs a lowercase letter, an uppercase letter, a digit and a special character")
	}

	normalized := normalize(password)
	for _, phrase := range weakPhrases {
		if strings.Contains(normalized, phrase) {
			return weak("password contains a common phrase")
		}
	}
	if u := normalize(username); u != "" && strings.Contains(normalized, u) {
		return weak("password must not contain the username")
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		if local := normalize(email[:at]); local != "" && strings.Contains(normalized, local) {
			return weak("password must not contain the email name")
		}
	}
	return nil
}

func normalize(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(s), "")
}
