package shell

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	entityIDPattern = regexp.MustCompile(`^[A-Z]+\d{3,}$`)
)

// Validator returns the shared validator with the circulation tags registered:
//
//	entityid=B   an id with the given prefix followed by at least three digits
//	memberid     M### or ENT####
//	role         admin, librarian or student
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		_ = validate.RegisterValidation("entityid", func(fl validator.FieldLevel) bool {
			id := fl.Field().String()
			return strings.HasPrefix(id, fl.Param()) && entityIDPattern.MatchString(id)
		})

		_ = validate.RegisterValidation("memberid", func(fl validator.FieldLevel) bool {
			id := fl.Field().String()
			return core.IsExternalMemberID(id) || (strings.HasPrefix(id, core.MemberIDPrefix) && entityIDPattern.MatchString(id))
		})

		_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return core.Role(fl.Field().String()).Valid()
		})
	})

	return validate
}

// ValidateStruct checks validate tags on v and reports the first problems as a ValidationError failure.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return core.NewFailure(core.ValidationError, err.Error(), "")
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}

	return core.NewFailure(core.ValidationError, strings.Join(problems, "; "), "")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be an email address", fe.Field())
	case "entityid":
		return fmt.Sprintf("%s must look like %s001", fe.Field(), fe.Param())
	case "memberid":
		return fmt.Sprintf("%s must look like M001 or ENT0001", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}
