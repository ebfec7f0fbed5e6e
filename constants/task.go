package constants

// TaskType selects which extraction pipeline a request runs through.
type TaskType string

const (
	TaskFinancial    TaskType = "financial"
	TaskEarningsCall TaskType = "earnings-call"
)

// PromptVariant distinguishes the primary instruction text from the lenient
// fallback used after the primary attempts are exhausted.
type PromptVariant string

const (
	VariantPrimary  PromptVariant = "primary"
	VariantFallback PromptVariant = "fallback"
)

// LineCategory is the closed set of categories a financial line item may carry.
type LineCategory string

const (
	CategoryRevenue LineCategory = "Revenue"
	CategoryExpense LineCategory = "Expense"
	CategoryProfit  LineCategory = "Profit"
)

var allLineCategories = []LineCategory{CategoryRevenue, CategoryExpense, CategoryProfit}

// LineCategories returns the allowed category values as strings, for schema enums.
func LineCategories() []string {
	result := make([]string, len(allLineCategories))
	for i, c := range allLineCategories {
		result[i] = string(c)
	}
	return result
}

// ManagementTones is the closed enum for the earnings-call tone field.
var ManagementTones = []string{"optimistic", "cautious", "neutral", "pessimistic"}

// ConfidenceLevels is the closed enum for the earnings-call confidence field.
var ConfidenceLevels = []string{"high", "medium", "low"}

// NotMentioned is the sentinel the model is instructed to use for guidance
// fields it cannot ground in the transcript. Fields carry it explicitly;
// an absent key is a validation failure, not an omission.
const NotMentioned = "Not mentioned"

// Advisory bounds for key_positives/key_concerns. The prompt requests 3-5
// entries but responses outside that range are still usable, so these gate
// a warning only, never a validation failure.
const (
	AdvisoryMinPoints = 3
	AdvisoryMaxPoints = 5
)
