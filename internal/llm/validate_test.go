package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-portal/constants"
	"research-portal/internal/common"
)

const validFinancialJSON = `{
	"currency": "INR",
	"scale": "Crores",
	"periods": ["Q3FY26", "Q3FY25"],
	"line_items": [
		{"name": "Revenue from Operations", "values": [1234.56, 1100.23], "category": "Revenue"},
		{"name": "Other Income", "values": [100, null], "category": "Revenue"},
		{"name": "Employee Benefit Expenses", "values": [400.5, 380.1], "category": "Expense"},
		{"name": "Net Profit", "values": [300, 250], "category": "Profit"}
	]
}`

const validEarningsJSON = `{
	"management_tone": "optimistic",
	"confidence_level": "high",
	"key_positives": ["record revenue", "margin expansion", "strong order book"],
	"key_concerns": ["input cost inflation", "currency headwinds", "attrition"],
	"forward_guidance": {
		"revenue": "double digit growth expected in FY27",
		"margin": "Not mentioned",
		"capex": "INR 500 crores planned"
	},
	"capacity_utilization": "85% and trending up",
	"growth_initiatives": ["new plant in Pune", "export expansion"]
}`

func TestValidateFinancial_OK(t *testing.T) {
	fin, err := ValidateFinancial([]byte(validFinancialJSON))
	require.NoError(t, err)

	assert.Equal(t, "INR", fin.Currency)
	assert.Equal(t, "Crores", fin.Scale)
	assert.Equal(t, []string{"Q3FY26", "Q3FY25"}, fin.Periods)
	require.Len(t, fin.LineItems, 4)

	for _, item := range fin.LineItems {
		assert.Len(t, item.Values, len(fin.Periods), "item %q", item.Name)
	}
}

func TestValidateFinancial_NullPreserved(t *testing.T) {
	fin, err := ValidateFinancial([]byte(validFinancialJSON))
	require.NoError(t, err)

	other := fin.LineItems[1]
	require.NotNil(t, other.Values[0])
	assert.Equal(t, 100.0, *other.Values[0])
	assert.Nil(t, other.Values[1], "null must be preserved, not coerced")
}

func TestValidateFinancial_MalformedJSON(t *testing.T) {
	_, err := ValidateFinancial([]byte(`{"currency": "INR",`))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrParse)
}

func TestValidateFinancial_MissingScale(t *testing.T) {
	_, err := ValidateFinancial([]byte(`{
		"currency": "INR",
		"periods": ["Q3FY26"],
		"line_items": []
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSchema)
}

func TestValidateFinancial_UnknownCategory(t *testing.T) {
	_, err := ValidateFinancial([]byte(`{
		"currency": "INR",
		"scale": "Crores",
		"periods": ["Q3FY26"],
		"line_items": [
			{"name": "Revenue", "values": [10], "category": "Income"}
		]
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEnum)
}

func TestValidateFinancial_ValuesPeriodsMismatch(t *testing.T) {
	_, err := ValidateFinancial([]byte(`{
		"currency": "INR",
		"scale": "Crores",
		"periods": ["Q3FY26", "Q3FY25"],
		"line_items": [
			{"name": "Revenue", "values": [10], "category": "Revenue"}
		]
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSchema)
	assert.Contains(t, err.Error(), "Revenue")
}

func TestValidateFinancial_StringValueRejected(t *testing.T) {
	_, err := ValidateFinancial([]byte(`{
		"currency": "INR",
		"scale": "Crores",
		"periods": ["Q3FY26"],
		"line_items": [
			{"name": "Revenue", "values": ["1,234"], "category": "Revenue"}
		]
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSchema)
}

func TestValidateEarnings_OK(t *testing.T) {
	sum, err := ValidateEarnings([]byte(validEarningsJSON), nil)
	require.NoError(t, err)

	assert.Equal(t, "optimistic", sum.ManagementTone)
	assert.Equal(t, "high", sum.ConfidenceLevel)
	assert.Equal(t, "Not mentioned", sum.ForwardGuidance.Margin)
	assert.Equal(t, "85% and trending up", sum.CapacityUtilization)
	assert.Len(t, sum.GrowthInitiatives, 2)
}

func TestValidateEarnings_UnknownTone(t *testing.T) {
	bad := []byte(`{
		"management_tone": "bullish",
		"confidence_level": "high",
		"key_positives": ["a", "b", "c"],
		"key_concerns": ["x", "y", "z"],
		"forward_guidance": {"revenue": "Not mentioned", "margin": "Not mentioned", "capex": "Not mentioned"},
		"capacity_utilization": "Not mentioned",
		"growth_initiatives": ["i1", "i2"]
	}`)
	_, err := ValidateEarnings(bad, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEnum)
}

func TestValidateEarnings_MissingGuidanceKey(t *testing.T) {
	bad := []byte(`{
		"management_tone": "neutral",
		"confidence_level": "medium",
		"key_positives": ["a", "b", "c"],
		"key_concerns": ["x", "y", "z"],
		"forward_guidance": {"revenue": "Not mentioned", "margin": "Not mentioned"},
		"capacity_utilization": "Not mentioned",
		"growth_initiatives": ["i1", "i2"]
	}`)
	_, err := ValidateEarnings(bad, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSchema)
}

// Counts outside the 3-5 window the prompt asks for are advisory only;
// a two-positive or six-concern summary is still usable.
func TestValidateEarnings_AdvisoryCountsDoNotFail(t *testing.T) {
	lenient := []byte(`{
		"management_tone": "cautious",
		"confidence_level": "low",
		"key_positives": ["only one positive", "and another"],
		"key_concerns": ["c1", "c2", "c3", "c4", "c5", "c6"],
		"forward_guidance": {"revenue": "Not mentioned", "margin": "Not mentioned", "capex": "Not mentioned"},
		"capacity_utilization": "Not mentioned",
		"growth_initiatives": ["i1"]
	}`)
	sum, err := ValidateEarnings(lenient, nil)
	require.NoError(t, err)
	assert.Len(t, sum.KeyPositives, 2)
	assert.Len(t, sum.KeyConcerns, 6)
}

func TestValidateEarnings_EmptyListRejected(t *testing.T) {
	bad := []byte(`{
		"management_tone": "neutral",
		"confidence_level": "medium",
		"key_positives": [],
		"key_concerns": ["x", "y", "z"],
		"forward_guidance": {"revenue": "Not mentioned", "margin": "Not mentioned", "capex": "Not mentioned"},
		"capacity_utilization": "Not mentioned",
		"growth_initiatives": ["i1"]
	}`)
	_, err := ValidateEarnings(bad, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSchema)
}

func TestValidateForTask_Dispatch(t *testing.T) {
	res, err := ValidateForTask(constants.TaskFinancial, []byte(validFinancialJSON), nil)
	require.NoError(t, err)
	require.NotNil(t, res.Financial)
	assert.Nil(t, res.Earnings)

	res, err = ValidateForTask(constants.TaskEarningsCall, []byte(validEarningsJSON), nil)
	require.NoError(t, err)
	require.NotNil(t, res.Earnings)
	assert.Nil(t, res.Financial)

	_, err = ValidateForTask(constants.TaskType("unknown"), []byte(`{}`), nil)
	require.Error(t, err)
}
