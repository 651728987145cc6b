package helper

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/google/uuid"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

const passwordSpecials = "@$!%*?&"

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// NewHTTPHelper builds the helper with an english translator and the
// custom validation tags used by the request DTOs.
func NewHTTPHelper() *HTTPHelper {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	registerCustom(validate, trans, "username", validUsername,
		"{0} can only contain letters, numbers, underscores, and hyphens")
	registerCustom(validate, trans, "strongpassword", validPassword,
		"{0} must contain at least one uppercase letter, one lowercase letter, one number, and one special character")
	registerCustom(validate, trans, "objectid", validObjectID,
		"{0} must be a valid id")

	return &HTTPHelper{Validate: validate, Translator: trans}
}

func registerCustom(v *validator.Validate, trans ut.Translator, tag string, fn validator.Func, message string) {
	_ = v.RegisterValidation(tag, fn)
	_ = v.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
		return ut.Add(tag, message, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(tag, fe.Field())
		return t
	})
}

func validUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

func validPassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

func validObjectID(fl validator.FieldLevel) bool {
	return IsValidID(fl.Field().String())
}

// IsStrongPassword requires a lowercase letter, an uppercase letter, a digit
// and one of @$!%*?&.
func IsStrongPassword(password string) bool {
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

// BindJSON decodes the body into req and validates it, writing the error
// response itself. It reports whether the handler may continue.
func (u *HTTPHelper) BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		u.SendBadRequest(c, "Invalid request body: "+err.Error(), u.EmptyJsonMap())
		return false
	}
	return u.validate(c, req)
}

// BindQuery is BindJSON for query strings.
func (u *HTTPHelper) BindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		u.SendBadRequest(c, "Invalid query parameters: "+err.Error(), u.EmptyJsonMap())
		return false
	}
	return u.validate(c, req)
}

func (u *HTTPHelper) validate(c *gin.Context, req interface{}) bool {
	if err := u.Validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			u.SendValidationError(c, validationErrors)
			return false
		}
		u.SendBadRequest(c, err.Error(), u.EmptyJsonMap())
		return false
	}
	return true
}
