package llm

import (
	"context"

	"research-portal/constants"
)

// SubmitRequest is one outbound call to the document-understanding provider:
// a fixed instruction prompt plus the uploaded PDF bytes.
type SubmitRequest struct {
	Task     constants.TaskType
	Variant  constants.PromptVariant
	Prompt   string
	Document []byte // raw PDF bytes, encoded by the submitter
	Filename string // original upload name, for logging only
}

// DocumentSubmitter is the interface the retry loop depends on. One call per
// attempt; implementations are stateless across calls. Transport failures,
// rate limits, and empty completions all surface as errors wrapping
// common.ErrTransport.
type DocumentSubmitter interface {
	Submit(ctx context.Context, req SubmitRequest) (string, error)
}
