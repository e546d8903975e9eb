package web

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/JonMunkholm/ecole-console/internal/api"
)

// classNameTag limits class labels to something that reads well in a filter.
const (
	classNameTag  = "classname"
	classNameText = "{0} must be a short class label without slashes"
)

// formValidator checks decoded forms and renders English field messages.
type formValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newFormValidator() *formValidator {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	// Report errors under the form field names the user sees.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(classNameTag, func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return len(v) <= 32 && !strings.ContainsAny(v, "/\\")
	})
	_ = validate.RegisterTranslation(classNameTag, trans,
		func(t ut.Translator) error { return t.Add(classNameTag, classNameText, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(classNameTag, fe.Field())
			return s
		},
	)

	return &formValidator{validate: validate, trans: trans}
}

// Check validates v and returns field name -> message, or nil when valid.
func (fv *formValidator) Check(v any) map[string]string {
	err := fv.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(fv.trans)
	}
	return out
}

func formValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostFormValue(name))
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func decodeLogin(r *http.Request) loginForm {
	return loginForm{
		Email:    formValue(r, "email"),
		Password: r.PostFormValue("password"),
	}
}

type schoolForm struct {
	Name    string `form:"name" validate:"required,max=120"`
	Email   string `form:"email" validate:"required,email"`
	Address string `form:"address" validate:"max=200"`
	City    string `form:"city" validate:"max=80"`
	Phone   string `form:"phone" validate:"max=32"`
	Active  bool   `form:"active"`
}

func decodeSchool(r *http.Request) schoolForm {
	return schoolForm{
		Name:    formValue(r, "name"),
		Email:   formValue(r, "email"),
		Address: formValue(r, "address"),
		City:    formValue(r, "city"),
		Phone:   formValue(r, "phone"),
		Active:  r.PostFormValue("active") == "on",
	}
}

func (f schoolForm) toAPI() api.School {
	return api.School{
		Name:    f.Name,
		Email:   f.Email,
		Address: f.Address,
		City:    f.City,
		Phone:   f.Phone,
		Active:  f.Active,
	}
}

func schoolFormFrom(s api.School) schoolForm {
	return schoolForm{Name: s.Name, Email: s.Email, Address: s.Address, City: s.City, Phone: s.Phone, Active: s.Active}
}

type studentForm struct {
	FirstName   string `form:"first_name" validate:"required,max=80"`
	LastName    string `form:"last_name" validate:"required,max=80"`
	Class       string `form:"class" validate:"required,classname"`
	Email       string `form:"email" validate:"omitempty,email"`
	ParentPhone string `form:"parent_phone" validate:"max=32"`
}

func decodeStudent(r *http.Request) studentForm {
	return studentForm{
		FirstName:   formValue(r, "first_name"),
		LastName:    formValue(r, "last_name"),
		Class:       formValue(r, "class"),
		Email:       formValue(r, "email"),
		ParentPhone: formValue(r, "parent_phone"),
	}
}

func (f studentForm) toAPI() api.Student {
	return api.Student{
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		Class:       f.Class,
		Email:       f.Email,
		ParentPhone: f.ParentPhone,
	}
}

func studentFormFrom(s api.Student) studentForm {
	return studentForm{FirstName: s.FirstName, LastName: s.LastName, Class: s.Class, Email: s.Email, ParentPhone: s.ParentPhone}
}

// contentForm mirrors one import record. Only the title is mandatory when
// entering a single content by hand.
type contentForm struct {
	No          string `form:"no" validate:"max=32"`
	Titre       string `form:"titre" validate:"required,max=255"`
	Auteur      string `form:"auteur" validate:"max=255"`
	Description string `form:"description"`
}

func decodeContent(r *http.Request) contentForm {
	return contentForm{
		No:          formValue(r, "no"),
		Titre:       formValue(r, "titre"),
		Auteur:      formValue(r, "auteur"),
		Description: formValue(r, "description"),
	}
}

func (f contentForm) toAPI() api.Content {
	return api.Content{No: f.No, Titre: f.Titre, Auteur: f.Auteur, Description: f.Description}
}

func contentFormFrom(c api.Content) contentForm {
	return contentForm{No: c.No, Titre: c.Titre, Auteur: c.Auteur, Description: c.Description}
}

// ValidationResponse is the JSON body of a rejected form.
type ValidationResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func writeValidationErrors(w http.ResponseWriter, errs map[string]string) {
	writeJSONStatus(w, http.StatusUnprocessableEntity, ValidationResponse{
		Error:  "Please correct the highlighted fields",
		Code:   "FORM001",
		Fields: errs,
	})
}
