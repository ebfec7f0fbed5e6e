package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"research-portal/constants"
	"research-portal/internal/common"
	"research-portal/internal/entity"
	"research-portal/internal/ingest"
	"research-portal/internal/pipeline"
)

// Pipeline is the slice of the retry orchestrator the handlers need.
type Pipeline interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Outcome, error)
}

// ArtifactResolver maps a recorded artifact filename to a servable path.
type ArtifactResolver interface {
	Resolve(ctx context.Context, filename string) (string, error)
}

// Exporter renders a validated financial extraction to a workbook artifact.
type Exporter interface {
	RenderFinancialXLSX(ctx context.Context, fin *entity.FinancialExtraction, sourceName string, meta entity.FinancialMetadata) (string, error)
}

type Handler struct {
	pipe           Pipeline
	exporter       Exporter
	resolver       ArtifactResolver
	requestTimeout time.Duration
	logger         *slog.Logger
}

func NewHandler(pipe Pipeline, exporter Exporter, resolver ArtifactResolver, requestTimeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		pipe:           pipe,
		exporter:       exporter,
		resolver:       resolver,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

type financialResponse struct {
	Status   string                   `json:"status"`
	FilePath string                   `json:"file_path"`
	Metadata entity.FinancialMetadata `json:"metadata"`
}

type earningsResponse struct {
	Status string `json:"status"`
	entity.EarningsSummary
}

type healthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Endpoints map[string]string `json:"endpoints"`
}

// ExtractFinancials handles POST /api/extract-financials: one PDF in the
// "file" multipart field, a workbook reference plus metadata summary out.
func (h *Handler) ExtractFinancials(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := common.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	document, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	outcome, err := h.pipe.Run(ctx, pipeline.Request{
		Task:     constants.TaskFinancial,
		Document: document,
		Filename: filename,
	})
	if err != nil {
		h.logger.Error("server.extract_financials.terminal",
			"req_id", common.RequestIDFromContext(ctx),
			"error", err,
			"filename", filename,
		)
		if !common.IsTerminal(err) {
			writeFailed(w, http.StatusInternalServerError, "Extraction pipeline error")
			return
		}
		writeFailed(w, http.StatusOK, "Failed to extract financials: "+err.Error())
		return
	}

	fin := outcome.Result.Financial
	meta := fin.Metadata()
	if outcome.Variant == constants.VariantFallback {
		meta.Method = "ocr_fallback"
	}

	artifact, err := h.exporter.RenderFinancialXLSX(ctx, fin, filename, meta)
	if err != nil {
		h.logger.Error("server.extract_financials.render_failed", "error", err, "filename", filename)
		writeFailed(w, http.StatusInternalServerError, "Failed to render extraction workbook")
		return
	}

	writeJSON(w, http.StatusOK, financialResponse{
		Status:   "success",
		FilePath: artifact,
		Metadata: meta,
	})
}

// SummarizeEarningsCall handles POST /api/summarize-earnings-call. The
// validated summary is the payload; no artifact is produced.
func (h *Handler) SummarizeEarningsCall(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := common.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	document, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	outcome, err := h.pipe.Run(ctx, pipeline.Request{
		Task:     constants.TaskEarningsCall,
		Document: document,
		Filename: filename,
	})
	if err != nil {
		h.logger.Error("server.summarize_earnings.terminal",
			"req_id", common.RequestIDFromContext(ctx),
			"error", err,
			"filename", filename,
		)
		if !common.IsTerminal(err) {
			writeFailed(w, http.StatusInternalServerError, "Extraction pipeline error")
			return
		}
		writeFailed(w, http.StatusOK, "Failed to summarize earnings call: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, earningsResponse{
		Status:          "success",
		EarningsSummary: *outcome.Result.Earnings,
	})
}

// Download handles GET /api/download/{filename}, serving only workbooks the
// artifact registry knows about.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	path, err := h.resolver.Resolve(r.Context(), filename)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeFailed(w, http.StatusNotFound, "File not found")
			return
		}
		h.logger.Error("server.download.resolve_failed", "error", err, "filename", filename)
		writeFailed(w, http.StatusInternalServerError, "Failed to resolve artifact")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, path)
}

// Health handles GET /, the service descriptor the frontend probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "online",
		Service: "Research Portal API",
		Endpoints: map[string]string{
			"extract_financials": "/api/extract-financials",
			"summarize_earnings": "/api/summarize-earnings-call",
			"download":           "/api/download/{filename}",
		},
	})
}

// readUpload pulls the "file" multipart field, caps its size, and preflights
// it as a PDF. A bad upload is rejected here, before any attempt is spent.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeFailed(w, http.StatusBadRequest, "Missing or unreadable 'file' upload")
		return nil, "", false
	}
	defer func() {
		if err := file.Close(); err != nil {
			h.logger.Warn("server.upload.close_error", "error", err)
		}
	}()

	if !constants.IsAllowedExt(filepath.Ext(header.Filename)) {
		writeFailed(w, http.StatusBadRequest, "Only PDF uploads are accepted")
		return nil, "", false
	}

	document, err := io.ReadAll(file)
	if err != nil {
		writeFailed(w, http.StatusBadRequest, "Failed to read upload")
		return nil, "", false
	}

	pages, err := ingest.PreflightPDF(document)
	if err != nil {
		h.logger.Warn("server.upload.preflight_failed", "error", err, "filename", header.Filename)
		writeFailed(w, http.StatusBadRequest, "Upload is not a valid PDF document")
		return nil, "", false
	}

	h.logger.Info("server.upload.ok",
		"filename", header.Filename,
		"bytes", len(document),
		"pages", pages,
	)
	return document, header.Filename, true
}
