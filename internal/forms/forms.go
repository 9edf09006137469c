// Package forms declares the site's input forms and validates them before any
// database write.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

type Register struct {
	Name     string `form:"name" validate:"notblank,max=100"`
	Email    string `form:"email" validate:"notblank,email,max=100"`
	Password string `form:"password" validate:"notblank,maxbytes=72"`
}

type Login struct {
	Email    string `form:"email" validate:"notblank,email"`
	Password string `form:"password" validate:"notblank,maxbytes=72"`
}

// Post backs both the new-post and edit-post pages.
type Post struct {
	Title    string `form:"title" validate:"notblank,max=250"`
	Subtitle string `form:"subtitle" validate:"notblank,max=250"`
	ImgURL   string `form:"img_url" validate:"notblank,url,max=250"`
	Body     string `form:"body" validate:"notblank"`
}

type Comment struct {
	Text string `form:"comment_text" validate:"notblank"`
}

// Errors maps a form field name to its message.
type Errors map[string]string

// Has reports whether field failed validation.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

var (
	decoder  = form.NewDecoder()
	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// bcrypt rejects passwords longer than 72 bytes; max counts runes.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= n
	})
	return v
}

// Decode fills dst from the request body and validates it. A non-nil error
// means the body could not be read; validation failures come back as Errors.
func Decode(r *http.Request, dst any) (Errors, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	return Validate(dst), nil
}

// Validate checks dst against its validate tags. It returns nil when dst is valid.
func Validate(dst any) Errors {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"": err.Error()}
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "url":
		return "Invalid URL."
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Field cannot be longer than %s bytes.", fe.Param())
	default:
		return "Invalid value."
	}
}
