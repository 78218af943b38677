package forms

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// bcrypt rejects passwords longer than 72 bytes; max counts runes.
	_ = validate.RegisterValidation("maxbytes", maxBytes)

	english := en.New()
	trans, _ = ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	// Messages shown next to the fields.
	override(validate, trans, "eqfield", "Passwords must match")
	override(validate, trans, "email", "Invalid email address")
	override(validate, trans, "maxbytes", "Password is too long")
}

func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

func override(v *validator.Validate, t ut.Translator, tag, msg string) {
	_ = v.RegisterTranslation(tag, t,
		func(tr ut.Translator) error { return tr.Add(tag, msg, true) },
		func(tr ut.Translator, fe validator.FieldError) string {
			s, _ := tr.T(tag)
			return s
		},
	)
}

// Errors maps a form field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Has(field string) bool { return len(e[field]) > 0 }

func (e Errors) Valid() bool { return len(e) == 0 }

// validateStruct runs the validator and converts failures into field errors.
func validateStruct(v any) (Errors, error) {
	errs := Errors{}
	err := validate.Struct(v)
	if err == nil {
		return errs, nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil, domain.ErrInvalidForm(err)
	}
	for _, fe := range ves {
		errs.Add(fe.Field(), fe.Translate(trans))
	}
	return errs, nil
}

func parse(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return domain.ErrInvalidForm(err)
	}
	return nil
}

// RegisterForm is the registration form.
type RegisterForm struct {
	Email           string `form:"email" validate:"required,email,max=254"`
	Password        string `form:"password" validate:"required,min=6,maxbytes=72"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`

	Errors Errors `form:"-" validate:"-"`
}

func ParseRegister(r *http.Request) (*RegisterForm, error) {
	if err := parse(r); err != nil {
		return nil, err
	}
	f := &RegisterForm{
		Email:           strings.TrimSpace(r.PostForm.Get("email")),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
	}
	errs, err := validateStruct(f)
	if err != nil {
		return nil, err
	}
	f.Errors = errs
	return f, nil
}

func (f *RegisterForm) Valid() bool { return f.Errors.Valid() }

// LoginForm is the login form. Next is carried through a hidden field.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email,max=254"`
	Password string `form:"password" validate:"required,maxbytes=72"`
	Next     string `form:"next" validate:"-"`

	Errors Errors `form:"-" validate:"-"`
}

func ParseLogin(r *http.Request) (*LoginForm, error) {
	if err := parse(r); err != nil {
		return nil, err
	}
	f := &LoginForm{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
		Next:     strings.TrimSpace(r.PostForm.Get("next")),
	}
	errs, err := validateStruct(f)
	if err != nil {
		return nil, err
	}
	f.Errors = errs
	return f, nil
}

func (f *LoginForm) Valid() bool { return f.Errors.Valid() }
