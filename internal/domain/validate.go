package domain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// ValidationError lists field problems found before any network call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Validate checks struct tags and the bank rules.
func Validate(v any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(bankQuestionRules, BankQuestion{})
	})

	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Namespace()] = message(fe)
	}
	return out
}

// bankQuestionRules requires exactly one correct option.
func bankQuestionRules(sl validator.StructLevel) {
	q := sl.Current().Interface().(BankQuestion)
	correct := 0
	for _, o := range q.Options {
		if o.Correct {
			correct++
		}
	}
	if correct != 1 {
		sl.ReportError(q.Options, "Options", "options", "onecorrect", "")
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "Code" {
			return MsgCodeRequired
		}
		return "campo requerido"
	case "email":
		return "correo inválido"
	case "alphanum":
		return "solo letras y números"
	case "onecorrect":
		return "debe haber exactamente una respuesta correcta"
	case "min":
		return fmt.Sprintf("mínimo %s", fe.Param())
	case "max":
		return fmt.Sprintf("máximo %s", fe.Param())
	default:
		return fmt.Sprintf("no cumple %s", fe.Tag())
	}
}
