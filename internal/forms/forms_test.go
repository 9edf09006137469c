package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestDecode_Register(t *testing.T) {
	var f Register
	errs, err := Decode(postRequest(url.Values{
		"name":     {"A"},
		"email":    {"a@x.com"},
		"password": {"p"},
	}), &f)
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, Register{Name: "A", Email: "a@x.com", Password: "p"}, f)
}

func TestDecode_RegisterInvalid(t *testing.T) {
	var f Register
	errs, err := Decode(postRequest(url.Values{
		"name":  {"   "},
		"email": {"not-an-email"},
	}), &f)
	require.NoError(t, err)
	assert.Equal(t, "This field is required.", errs["name"])
	assert.Equal(t, "Invalid email address.", errs["email"])
	assert.True(t, errs.Has("password"))
}

func TestValidate_Post(t *testing.T) {
	tests := []struct {
		name    string
		form    Post
		invalid []string
	}{
		{"valid", Post{Title: "T", Subtitle: "S", ImgURL: "https://example.com/a.png", Body: "B"}, nil},
		{"bad url", Post{Title: "T", Subtitle: "S", ImgURL: "nope", Body: "B"}, []string{"img_url"}},
		{"too long", Post{Title: strings.Repeat("t", 251), Subtitle: "S", ImgURL: "https://example.com", Body: "B"}, []string{"title"}},
		{"empty", Post{}, []string{"title", "subtitle", "img_url", "body"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.form)
			assert.Len(t, errs, len(tt.invalid))
			for _, field := range tt.invalid {
				assert.True(t, errs.Has(field), field)
			}
		})
	}
}

func TestValidate_Comment(t *testing.T) {
	assert.Nil(t, Validate(&Comment{Text: "hi"}))
	assert.Equal(t, "This field is required.", Validate(&Comment{Text: "\n"})["comment_text"])
}

func TestValidate_PasswordBytes(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"72 ascii", strings.Repeat("a", 72), true},
		{"80 ascii", strings.Repeat("a", 80), false},
		// 30 runes, 90 bytes
		{"multibyte", strings.Repeat("€", 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			register := Validate(&Register{Name: "A", Email: "a@x.com", Password: tt.password})
			login := Validate(&Login{Email: "a@x.com", Password: tt.password})
			if tt.valid {
				assert.Nil(t, register)
				assert.Nil(t, login)
				return
			}
			assert.Equal(t, "Field cannot be longer than 72 bytes.", register["password"])
			assert.Equal(t, "Field cannot be longer than 72 bytes.", login["password"])
		})
	}
}
