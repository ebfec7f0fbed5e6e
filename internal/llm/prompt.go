package llm

import "research-portal/constants"

// The instruction texts are fixed per (task, variant); nothing is substituted
// at runtime. The fallback variant exists only for financial extraction and
// trades structural strictness for recall on poorly scanned documents.

const financialPrimaryPrompt = `Extract financial statement data from this document and provide it in a structured JSON format.

CRITICAL REQUIREMENTS:
1. Extract ALL line items from the Income Statement/Profit & Loss statement
2. Include ALL periods/years present in the document
3. For each line item, extract:
   - Line item name (standardized)
   - Values for each period (with proper numeric format)
   - Currency and units (if mentioned)
4. Handle missing values explicitly as null
5. Identify the currency and scale (e.g., INR Crores, USD Millions)

Return ONLY a JSON object with this structure:
{
    "currency": "string (e.g., INR)",
    "scale": "string (e.g., Crores, Millions)",
    "periods": ["Q3FY26", "Q3FY25", ...],
    "line_items": [
        {
            "name": "Revenue from Operations",
            "values": [1234.56, 1100.23, ...],
            "category": "Revenue/Expense/Profit"
        }
    ]
}

IMPORTANT: Return ONLY the JSON, no markdown formatting, no explanation text.`

const financialFallbackPrompt = `This is an OCR backup extraction. Extract financial data even if the structure is imperfect.

Focus on finding:
1. Revenue/Sales figures
2. Expenses (Operating, Admin, etc.)
3. Profit figures (Operating, Net, EBITDA)
4. Any time periods mentioned

Return as JSON:
{
    "currency": "best guess",
    "scale": "best guess",
    "periods": ["extracted periods"],
    "line_items": [
        {"name": "item name", "values": [numbers], "category": "Revenue/Expense/Profit"}
    ]
}

Return ONLY JSON, no markdown.`

const earningsPrimaryPrompt = `Analyze this earnings call transcript and provide a structured summary.

REQUIREMENTS:
1. Management Tone/Sentiment: optimistic, cautious, neutral, or pessimistic (choose ONE)
2. Confidence Level: high, medium, or low (choose ONE)
3. Key Positives: List 3-5 specific positive points mentioned
4. Key Concerns/Challenges: List 3-5 specific concerns or challenges
5. Forward Guidance: Extract any revenue, margin, or capex outlook mentioned
6. Capacity Utilization: Extract any trends or mentions
7. Growth Initiatives: List 2-3 new initiatives described

CRITICAL: Base your analysis ONLY on what is explicitly stated in the transcript. Do not infer or hallucinate information.

Return ONLY a JSON object:
{
    "management_tone": "optimistic/cautious/neutral/pessimistic",
    "confidence_level": "high/medium/low",
    "key_positives": ["point 1", "point 2", ...],
    "key_concerns": ["concern 1", "concern 2", ...],
    "forward_guidance": {
        "revenue": "specific guidance or 'Not mentioned'",
        "margin": "specific guidance or 'Not mentioned'",
        "capex": "specific guidance or 'Not mentioned'"
    },
    "capacity_utilization": "specific mention or 'Not mentioned'",
    "growth_initiatives": ["initiative 1", "initiative 2", ...]
}

Return ONLY the JSON, no markdown, no explanations.`

type promptKey struct {
	task    constants.TaskType
	variant constants.PromptVariant
}

var prompts = map[promptKey]string{
	{constants.TaskFinancial, constants.VariantPrimary}:    financialPrimaryPrompt,
	{constants.TaskFinancial, constants.VariantFallback}:   financialFallbackPrompt,
	{constants.TaskEarningsCall, constants.VariantPrimary}: earningsPrimaryPrompt,
}

// PromptFor returns the instruction text for a (task, variant) pair.
func PromptFor(task constants.TaskType, variant constants.PromptVariant) (string, bool) {
	p, ok := prompts[promptKey{task, variant}]
	return p, ok
}

// HasFallback reports whether the task defines a fallback prompt.
func HasFallback(task constants.TaskType) bool {
	_, ok := prompts[promptKey{task, constants.VariantFallback}]
	return ok
}
