package pipeline

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// newValidator panics when a custom rule cannot be registered.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	rules := map[string]validator.Func{
		"period": func(fl validator.FieldLevel) bool {
			_, err := models.ParsePeriod(fl.Field().String())
			return err == nil
		},
		"location_kind": func(fl validator.FieldLevel) bool {
			return models.LocationKind(fl.Field().String()).IsValid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}
	return v
}

// validateRequest maps validator failures to an invalid_input error naming the first bad field.
func (o *Orchestrator) validateRequest(req models.PipelineRequest) error {
	err := o.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.WrapError(models.ErrInvalidInput, "", "requisição inválida", err)
	}

	fe := fieldErrs[0]
	var msg string
	switch fe.Field() {
	case "Location":
		msg = "localização é obrigatória"
	case "Kind":
		msg = fmt.Sprintf("Tipo de localização inválido: %v", fe.Value())
	case "Period":
		msg = fmt.Sprintf("período inválido %q: use o formato YYYY-MM", fe.Value())
	default:
		msg = fmt.Sprintf("campo inválido: %s", fe.Field())
	}
	return models.NewError(models.ErrInvalidInput, "", msg)
}
