package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	personNameTag   = "personname"
	personNameText  = "only letters, spaces, apostrophes and dashes are allowed"
	personNameRegex = regexp.MustCompile(`^[\p{L}][\p{L}\s'-]{0,79}$`)

	idNumberTag   = "idnumber"
	idNumberText  = "ID number can include letters, numbers, dot, dash, and underscore"
	idNumberRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{2,64}$`)

	phoneTag      = "phone"
	phoneText     = "please enter a valid phone number"
	phoneRegex    = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
	phoneDigitsRe = regexp.MustCompile(`[^0-9]`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(personNameTag, personNameValidation)
	RegisterCustomTranslation(validate, translator, personNameTag, personNameText)

	_ = validate.RegisterValidation(idNumberTag, idNumberValidation)
	RegisterCustomTranslation(validate, translator, idNumberTag, idNumberText)

	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	RegisterCustomTranslation(validate, translator, phoneTag, phoneText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

func personNameValidation(fl validator.FieldLevel) bool {
	return personNameRegex.MatchString(fl.Field().String())
}

func idNumberValidation(fl validator.FieldLevel) bool {
	return idNumberRegex.MatchString(fl.Field().String())
}

// phoneValidation allows an international-looking phone number carrying
// 7 to 15 digits.
func phoneValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !phoneRegex.MatchString(s) {
		return false
	}
	digits := phoneDigitsRe.ReplaceAllString(s, "")
	return len(digits) >= 7 && len(digits) <= 15
}
