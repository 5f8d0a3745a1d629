package dashboard

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"proedualt/internal/errors"

	"github.com/go-playground/validator/v10"
)

// MsgHandleRequired is shown when a profile is saved without a GitHub username
const MsgHandleRequired = "Please enter a GitHub username."

// githubHandle matches GitHub usernames: alphanumerics separated by single hyphens
var githubHandle = regexp.MustCompile(`^[A-Za-z0-9](?:-?[A-Za-z0-9])*$`)

// handleRules matches the github_username tag of types.ProfileUpdate
const handleRules = "required,max=39,githubhandle"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("githubhandle", func(fl validator.FieldLevel) bool {
		return githubHandle.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateStruct checks s against its validate tags. Failures come back
// as a single validation AppError listing every offending field.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.NewInternalError(errors.ErrCodeInvalidRequest, "validation failed", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe.Field(), fe))
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, strings.Join(msgs, "; "), err)
}

// ValidateHandle checks a GitHub username on its own
func ValidateHandle(handle string) error {
	err := validate.Var(handle, handleRules)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return errors.NewInternalError(errors.ErrCodeInvalidRequest, "validation failed", err)
	}
	code := errors.ErrCodeInvalidRequest
	if fieldErrs[0].Tag() == "required" {
		code = errors.ErrCodeMissingHandle
	}
	return errors.NewValidationError(code, fieldMessage("github_username", fieldErrs[0]), err)
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if field == "github_username" {
			return MsgHandleRequired
		}
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "uuid":
		return fmt.Sprintf("%s must be a UUID", field)
	case "githubhandle":
		return fmt.Sprintf("%q is not a valid GitHub username", fe.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
