package entity

// ForwardGuidance carries outlook statements lifted from the call. Each field
// is always present; the model writes the literal "Not mentioned" when the
// transcript is silent.
type ForwardGuidance struct {
	Revenue string `json:"revenue"`
	Margin  string `json:"margin"`
	Capex   string `json:"capex"`
}

// EarningsSummary is the validated shape of an earnings-call summary.
// ManagementTone and ConfidenceLevel are closed enums; the list fields are
// non-empty once validated.
type EarningsSummary struct {
	ManagementTone      string          `json:"management_tone"`   // optimistic | cautious | neutral | pessimistic
	ConfidenceLevel     string          `json:"confidence_level"`  // high | medium | low
	KeyPositives        []string        `json:"key_positives"`
	KeyConcerns         []string        `json:"key_concerns"`
	ForwardGuidance     ForwardGuidance `json:"forward_guidance"`
	CapacityUtilization string          `json:"capacity_utilization"`
	GrowthInitiatives   []string        `json:"growth_initiatives"`
}
