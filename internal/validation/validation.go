package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/HlaKarki/ImageProcessor/internal/usecase/job"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Tell the validator to use the JSON tag as the “field name”
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// validate our UUIDs as their string form; the zero UUID counts as empty
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		id, ok := v.Interface().(uuid.UUID)
		if !ok || id == (uuid.UUID{}) {
			return ""
		}
		return id.String()
	}, uuid.UUID{})

	_ = validate.RegisterValidation("imageext", func(fl validator.FieldLevel) bool {
		return job.IsExtensionAllowed(fl.Field().String())
	})
	_ = validate.RegisterValidation("imagemime", func(fl validator.FieldLevel) bool {
		return job.IsMimeTypeAllowed(fl.Field().String())
	})
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ErrorsToJson(validationErrs error) (string, error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(validationErrs, &fieldErrs) {
		return "", validationErrs
	}

	errsMap := make(map[string]string)
	for _, fieldErr := range fieldErrs {
		errsMap[fieldErr.Field()] = fieldErr.Tag()
	}

	errsJson, err := json.Marshal(errsMap)
	if err != nil {
		return "", err
	}
	return string(errsJson), nil
}
