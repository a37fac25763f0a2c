package pipeline

import (
	"fmt"
	"strings"
)

// SchemaError reports every required column missing from an upload, not just
// the first, so the caller can fix the file in one pass.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// SchemaValidator checks a decoded dataset for the required invoice columns.
// It must run before any analysis stage; the stages assume the columns exist.
type SchemaValidator struct {
	required []string
}

// NewSchemaValidator creates a validator for the standard invoice schema.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{required: RequiredColumns}
}

// Validate returns a *SchemaError naming all absent required columns, or nil
// when the dataset is complete. The dataset is not modified.
func (v *SchemaValidator) Validate(ds Dataset) error {
	have := make(map[string]bool, len(ds.Columns))
	for _, c := range ds.Columns {
		have[c] = true
	}

	var missing []string
	for _, c := range v.required {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}
