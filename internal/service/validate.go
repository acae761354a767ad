package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Error messages name fields by their French label.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		return f.Name
	})
	return v
}

// Validate checks s against its `validate` tags and returns the first
// failure as a *ValidationError.  It backs the echo validator too.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{Field: fe.StructField(), Message: message(fe), Err: err}
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Le champ « %s » est obligatoire.", label)
	case "min", "gte":
		return fmt.Sprintf("Le champ « %s » doit être au moins %s.", label, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Le champ « %s » ne doit pas dépasser %s caractères.", label, fe.Param())
		}
		return fmt.Sprintf("Le champ « %s » ne doit pas dépasser %s.", label, fe.Param())
	case "email":
		return "L'adresse e-mail n'est pas valide."
	case "hexcolor", "len":
		return fmt.Sprintf("La couleur « %s » doit être au format #RRGGBB.", label)
	case "oneof":
		return fmt.Sprintf("La valeur du champ « %s » n'est pas valide (%s).", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("Le champ « %s » n'est pas valide.", label)
}
