package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"research-portal/constants"
	"research-portal/internal/common"
	"research-portal/internal/entity"
)

// Result holds whichever task shape validated. Exactly one field is set.
type Result struct {
	Financial *entity.FinancialExtraction
	Earnings  *entity.EarningsSummary
}

// ValidateForTask parses and shape-checks a normalized candidate for the
// given task. Validation is all-or-nothing: a candidate that fails any check
// is discarded in full, never patched.
func ValidateForTask(task constants.TaskType, candidate []byte, logger *slog.Logger) (*Result, error) {
	switch task {
	case constants.TaskFinancial:
		fin, err := ValidateFinancial(candidate)
		if err != nil {
			return nil, err
		}
		return &Result{Financial: fin}, nil
	case constants.TaskEarningsCall:
		sum, err := ValidateEarnings(candidate, logger)
		if err != nil {
			return nil, err
		}
		return &Result{Earnings: sum}, nil
	default:
		return nil, fmt.Errorf("%w: unknown task type %q", common.ErrInvalidInput, task)
	}
}

// ValidateFinancial checks a candidate against the financial contract and
// decodes it. Beyond the schema it enforces the positional invariant:
// every line item carries exactly one value slot per period.
func ValidateFinancial(candidate []byte) (*entity.FinancialExtraction, error) {
	if err := validateAgainstSchema(BuildFinancialJSONSchema(), candidate); err != nil {
		return nil, err
	}

	var out entity.FinancialExtraction
	if err := json.Unmarshal(candidate, &out); err != nil {
		return nil, fmt.Errorf("%w: decode financial extraction: %v", common.ErrSchema, err)
	}

	for _, item := range out.LineItems {
		if len(item.Values) != len(out.Periods) {
			return nil, fmt.Errorf("%w: line item %q has %d values for %d periods",
				common.ErrSchema, item.Name, len(item.Values), len(out.Periods))
		}
	}
	return &out, nil
}

// ValidateEarnings checks a candidate against the earnings-call contract and
// decodes it. Point counts outside the advisory 3-5 window log a warning but
// do not fail.
func ValidateEarnings(candidate []byte, logger *slog.Logger) (*entity.EarningsSummary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := validateAgainstSchema(BuildEarningsJSONSchema(), candidate); err != nil {
		return nil, err
	}

	var out entity.EarningsSummary
	if err := json.Unmarshal(candidate, &out); err != nil {
		return nil, fmt.Errorf("%w: decode earnings summary: %v", common.ErrSchema, err)
	}

	warnCount := func(field string, n int) {
		if n < constants.AdvisoryMinPoints || n > constants.AdvisoryMaxPoints {
			logger.Warn("llm.validate.count_outside_advisory",
				"field", field,
				"count", n,
				"advisory_min", constants.AdvisoryMinPoints,
				"advisory_max", constants.AdvisoryMaxPoints,
			)
		}
	}
	warnCount("key_positives", len(out.KeyPositives))
	warnCount("key_concerns", len(out.KeyConcerns))

	return &out, nil
}

// validateAgainstSchema parses candidate JSON and validates it against
// schemaMap. Malformed JSON maps to ErrParse; shape failures map to ErrSchema
// except closed-enum violations, which map to ErrEnum.
func validateAgainstSchema(schemaMap map[string]any, candidate []byte) error {
	var v any
	if err := json.Unmarshal(candidate, &v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrParse, err)
	}

	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		kind := common.ErrSchema
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) && hasEnumCause(ve) {
			kind = common.ErrEnum
		}
		return fmt.Errorf("%w: %v", kind, err)
	}
	return nil
}

// hasEnumCause walks the validation error tree looking for an enum keyword
// failure, so closed-set violations are reported distinctly from missing or
// mistyped fields.
func hasEnumCause(ve *jsonschema.ValidationError) bool {
	if strings.HasSuffix(ve.KeywordLocation, "/enum") {
		return true
	}
	for _, cause := range ve.Causes {
		if hasEnumCause(cause) {
			return true
		}
	}
	return false
}
