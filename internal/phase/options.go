package phase

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/dotcommander/frontgen/internal/agent"
	"github.com/dotcommander/frontgen/internal/core"
	"github.com/dotcommander/frontgen/internal/ledger"
	"github.com/dotcommander/frontgen/internal/requirements"
)

// ModelOptions are the sampling flags every stage accepts.
type ModelOptions struct {
	Model       string  `flag:"model" validate:"required"`
	Temperature float64 `flag:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `flag:"max_tokens" validate:"gte=1,lte=200000"`
}

func (m ModelOptions) Params() agent.Params {
	return agent.Params{Temperature: m.Temperature, MaxTokens: m.MaxTokens}
}

// Options are the inputs shared by the requirement-driven stages.
type Options struct {
	ProjectName        string `flag:"project_name" validate:"required"`
	RequirementsPath   string `flag:"requirements_path" validate:"required"`
	RequirementsFormat string `flag:"requirements_format" validate:"required,oneof=markdown json text"`
	OutputDir          string `flag:"output_dir" validate:"required"`
	ModelOptions
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("flag"); name != "" {
			return name
		}
		return field.Name
	})
	return v
}

// Validate checks the validate tags of opts and reports the first rejected
// field as a *core.ValidationError named after its flag.
func Validate(opts any) error {
	err := validate.Struct(opts)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := fe.Tag()
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		return core.NewValidationError(fe.Field(), "must satisfy "+msg, fe.Value())
	}
	return fmt.Errorf("validating options: %w", err)
}

// LoadRequirements reads the requirements document named by opts.
func LoadRequirements(opts Options) (requirements.Document, error) {
	format, err := requirements.ParseFormat(opts.RequirementsFormat)
	if err != nil {
		return requirements.Document{}, err
	}
	return requirements.Load(opts.RequirementsPath, format)
}

// LedgerPath is where the cost ledger of an output directory lives.
func LedgerPath(outputDir string) string {
	return filepath.Join(outputDir, ledger.FileName)
}
