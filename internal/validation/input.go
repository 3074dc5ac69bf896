package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TaskInput is the user-supplied part of a task before it is saved
type TaskInput struct {
	Title    string     `validate:"required,max=200"`
	StartAt  time.Time  `validate:"required"`
	EndAt    *time.Time
	Priority int        `validate:"gte=0,lte=5"`
}

// BlockInput is the user-supplied part of a fixed schedule block
type BlockInput struct {
	Title   string    `validate:"required,max=200"`
	StartAt time.Time `validate:"required"`
	EndAt   time.Time `validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(taskInputValidation, TaskInput{})
	v.RegisterStructValidation(blockInputValidation, BlockInput{})
	return v
}

func taskInputValidation(sl validator.StructLevel) {
	in := sl.Current().Interface().(TaskInput)
	if in.EndAt != nil && !in.EndAt.After(in.StartAt) {
		sl.ReportError(in.EndAt, "EndAt", "EndAt", "after_start", "")
	}
}

func blockInputValidation(sl validator.StructLevel) {
	in := sl.Current().Interface().(BlockInput)
	if !in.EndAt.IsZero() && !in.EndAt.After(in.StartAt) {
		sl.ReportError(in.EndAt, "EndAt", "EndAt", "after_start", "")
	}
}

// ValidateTaskInput rejects a task whose title is missing or whose end is
// not strictly after its start.
func ValidateTaskInput(in TaskInput) error {
	return describe(validate.Struct(in))
}

// ValidateBlockInput rejects a fixed block with a missing title or bounds.
func ValidateBlockInput(in BlockInput) error {
	return describe(validate.Struct(in))
}

func describe(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldName(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "after_start":
			msgs = append(msgs, "end must be after start")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s is out of range", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldName(field string) string {
	switch field {
	case "StartAt":
		return "start"
	case "EndAt":
		return "end"
	default:
		return strings.ToLower(field)
	}
}
