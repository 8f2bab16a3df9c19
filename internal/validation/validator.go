package validation

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/terra-ansible-demo/status-page/internal/messages"
	"github.com/terra-ansible-demo/status-page/internal/serviceerrors"
)

// profile names end up in log fields and in the status page so keep them simple
var profileNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// NewValidator creates the validator used for the service configuration,
// with the custom rules registered.
func NewValidator() (*validator.Validate, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("profilename", validateProfileName); err != nil {
		return nil, err
	}
	return validate, nil
}

func validateProfileName(fl validator.FieldLevel) bool {
	return profileNamePattern.MatchString(fl.Field().String())
}

// ValidateConfig validates a configuration struct and converts the first failing
// rule into a ServiceError that names the field, the rule and the offending value.
func ValidateConfig(validate *validator.Validate, conf any) error {
	err := validate.Struct(conf)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		first := validationErrors[0]
		return serviceerrors.NewServiceError(messages.ConfigurationInvalid,
			"Field", first.Namespace(),
			"Rule", first.Tag(),
			"Value", first.Value(),
		).WithCause(err)
	}
	return serviceerrors.NewServiceError(messages.ConfigurationFailed, "Error", err.Error()).WithCause(err)
}
