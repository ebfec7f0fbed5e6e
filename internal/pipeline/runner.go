package pipeline

import (
	"context"
	"log/slog"
	"time"

	"research-portal/constants"
	"research-portal/internal/common"
	"research-portal/internal/llm"
	"research-portal/internal/metrics"
)

// Request is one document to run through the pipeline. It lives for the
// duration of a single Run call and is not retained.
type Request struct {
	Task     constants.TaskType
	Document []byte
	Filename string
}

// Outcome is a successful pipeline run: the validated data plus which prompt
// variant produced it and how many primary attempts were spent.
type Outcome struct {
	Result   *llm.Result
	Variant  constants.PromptVariant
	Attempts int
}

// Runner drives the retry policy: up to maxAttempts sequential attempts with
// the primary prompt, then exactly one fallback attempt for tasks that define
// a fallback. Attempts are independent: the prompt never changes in reaction
// to a previous failure. All attempt-level errors are absorbed here; the only
// error Run returns is *common.TerminalError.
type Runner struct {
	submitter   llm.DocumentSubmitter
	maxAttempts int
	logger      *slog.Logger
}

func NewRunner(submitter llm.DocumentSubmitter, maxAttempts int, logger *slog.Logger) *Runner {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{submitter: submitter, maxAttempts: maxAttempts, logger: logger}
}

// Run executes the retry policy for one document. The first attempt whose
// response normalizes and validates wins; exhaustion (including the fallback,
// when the task has one) yields a TerminalError carrying the last failure.
func (r *Runner) Run(ctx context.Context, req Request) (*Outcome, error) {
	prompt, ok := llm.PromptFor(req.Task, constants.VariantPrimary)
	if !ok {
		term := &common.TerminalError{Last: common.WrapError(common.ErrInvalidInput, "no prompt for task "+string(req.Task))}
		metrics.ExtractionRequests.WithLabelValues(string(req.Task), "failed").Inc()
		return nil, term
	}

	var lastErr error
	attempts := 0
	for k := 1; k <= r.maxAttempts; k++ {
		attempts = k
		result, err := r.attempt(ctx, req, prompt, constants.VariantPrimary, k)
		if err == nil {
			metrics.ExtractionRequests.WithLabelValues(string(req.Task), "success").Inc()
			return &Outcome{Result: result, Variant: constants.VariantPrimary, Attempts: k}, nil
		}
		lastErr = err

		// A dead context means every further attempt is doomed; stop
		// burning the budget and report what we have.
		if ctx.Err() != nil {
			break
		}
	}

	if ctx.Err() == nil && llm.HasFallback(req.Task) {
		fallbackPrompt, _ := llm.PromptFor(req.Task, constants.VariantFallback)
		result, err := r.attempt(ctx, req, fallbackPrompt, constants.VariantFallback, attempts+1)
		if err == nil {
			r.logger.Info("pipeline.fallback.recovered",
				"task", string(req.Task),
				"primary_attempts", attempts,
			)
			metrics.ExtractionRequests.WithLabelValues(string(req.Task), "success").Inc()
			return &Outcome{Result: result, Variant: constants.VariantFallback, Attempts: attempts}, nil
		}
		lastErr = err
		metrics.ExtractionRequests.WithLabelValues(string(req.Task), "failed").Inc()
		return nil, &common.TerminalError{Attempts: attempts, Fallback: true, Last: lastErr}
	}

	metrics.ExtractionRequests.WithLabelValues(string(req.Task), "failed").Inc()
	return nil, &common.TerminalError{Attempts: attempts, Last: lastErr}
}

// attempt is one full submit -> normalize -> validate cycle against a single
// prompt variant.
func (r *Runner) attempt(ctx context.Context, req Request, prompt string, variant constants.PromptVariant, number int) (*llm.Result, error) {
	start := time.Now()
	log := r.logger.With(
		"task", string(req.Task),
		"variant", string(variant),
		"attempt", number,
	)
	log.Info("pipeline.attempt.start", "document_bytes", len(req.Document))

	raw, err := r.submitter.Submit(ctx, llm.SubmitRequest{
		Task:     req.Task,
		Variant:  variant,
		Prompt:   prompt,
		Document: req.Document,
		Filename: req.Filename,
	})
	metrics.ProviderRequestDuration.WithLabelValues(string(req.Task), string(variant)).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warn("pipeline.attempt.submit_failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		metrics.ExtractionAttempts.WithLabelValues(string(req.Task), string(variant), "transport_error").Inc()
		return nil, err
	}

	candidate, err := llm.ExtractJSON(raw)
	if err != nil {
		log.Warn("pipeline.attempt.normalize_failed", "error", err, "response_chars", len(raw))
		metrics.ExtractionAttempts.WithLabelValues(string(req.Task), string(variant), "malformed_response").Inc()
		return nil, err
	}

	result, err := llm.ValidateForTask(req.Task, []byte(candidate), r.logger)
	if err != nil {
		log.Warn("pipeline.attempt.validate_failed", "error", err)
		metrics.ExtractionAttempts.WithLabelValues(string(req.Task), string(variant), "validation_error").Inc()
		return nil, err
	}

	log.Info("pipeline.attempt.ok", "elapsed_ms", time.Since(start).Milliseconds())
	metrics.ExtractionAttempts.WithLabelValues(string(req.Task), string(variant), "success").Inc()
	return result, nil
}
