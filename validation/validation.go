package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Violations maps a field name to a violation code (e.g. "required").
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Merge copies other's entries into v, keeping existing codes.
func (v Violations) Merge(other Violations) {
	for k, c := range other {
		if _, ok := v[k]; !ok {
			v[k] = c
		}
	}
}

// Required records field=required when value is blank.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// codes maps validator tags to the violation codes exposed to clients.
var codes = map[string]string{
	"required": "required",
	"email":    "invalid_email",
	"gt":       "must_be_positive",
	"min":      "at_least_one",
	"oneof":    "invalid_choice",
	"max":      "too_long",
	"dive":     "invalid",
}

// Struct checks the `validate` tags of s and flattens failures into
// Violations keyed by JSON field name.
func Struct(s any) Violations {
	v := Violations{}
	err := engine().Struct(s)
	if err == nil {
		return v
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v["_"] = "invalid"
		return v
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, ok := v[field]; ok {
			continue
		}
		code, ok := codes[fe.Tag()]
		if !ok {
			code = "invalid"
		}
		v[field] = code
	}
	return v
}
