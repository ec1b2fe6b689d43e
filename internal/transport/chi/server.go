package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/corpus"
	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/logger"
	"github.com/kailas-cloud/recdex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/recdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/recdex/internal/usecase/ingest"
	recommenduc "github.com/kailas-cloud/recdex/internal/usecase/recommend"
	summaryuc "github.com/kailas-cloud/recdex/internal/usecase/summary"
)

const defaultMaxBodyBytes = 32 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	catalog       *catalog.Catalog
	ingest        *ingestuc.Service
	recommend     *recommenduc.Service
	summary       *summaryuc.Service
	health        *healthuc.Service
	maxBodyBytes  int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	cat *catalog.Catalog,
	ingest *ingestuc.Service,
	recommend *recommenduc.Service,
	summary *summaryuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		catalog:      cat,
		ingest:       ingest,
		recommend:    recommend,
		summary:      summary,
		health:       health,
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		incompleteIngestHandler,
		sentinelHandler(domain.ErrEmptyText, http.StatusBadRequest, ErrorResponseCodeEmptyText),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, ErrorResponseCodeVectorDimMismatch),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeCollectionNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorResponseCodeAlreadyExists),
		sentinelHandler(domain.ErrProviderFailure, http.StatusBadGateway, ErrorResponseCodeProviderError),
		sentinelHandler(domain.ErrGeneratorFailure, http.StatusBadGateway, ErrorResponseCodeGeneratorError),
	}
	return s
}

// WithMaxBodyBytes caps request bodies.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Recommend handles POST /v1/recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request, params RecommendParams) {
	var req RecommendRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Text == nil || *req.Text == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "No text provided")
		return
	}

	k := 0
	switch {
	case req.K != nil:
		k = *req.K
	case params.K != nil:
		k = *params.K
	}

	recs, err := s.recommend.Recommend(r.Context(), *req.Text, k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RecommendResponse{Recommendations: recs})
}

// Summarize handles POST /v1/summarize.
func (s *Server) Summarize(w http.ResponseWriter, r *http.Request) {
	if !s.summary.CanGenerate() {
		writeError(w, http.StatusNotImplemented, ErrorResponseCodeNotImplemented, "summarization is not configured")
		return
	}

	var req SummarizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "No text provided")
		return
	}

	res, err := s.summary.Summarize(r.Context(), *req.Text)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SummarizeResponse{Summary: res.Summary, RawSummary: res.RawSummary})
}

// Structure handles POST /v1/structure.
func (s *Server) Structure(w http.ResponseWriter, r *http.Request) {
	var req StructureRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, StructureResponse{Summary: s.summary.Structure(req.Text)})
}

// Ingest handles POST /v1/ingest. The body is a JSON array corpus.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request, params IngestParams) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	docs, err := corpus.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	batchSize := 0
	if params.BatchSize != nil {
		if *params.BatchSize < 1 {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "batch_size must be at least 1")
			return
		}
		batchSize = *params.BatchSize
	}

	report, err := s.ingest.Ingest(r.Context(), docs, batchSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IngestResponse{
		Collection: report.Collection,
		Documents:  report.Documents,
		Indexed:    report.Indexed,
		Batches:    report.Batches,
		Dimensions: report.Dimensions,
		DurationMs: float64(report.Duration.Microseconds()) / 1000,
	})
}

// DescribeIndex handles GET /v1/index.
func (s *Server) DescribeIndex(w http.ResponseWriter, r *http.Request) {
	col, err := s.catalog.Describe(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IndexResponse{
		Collection: col.Name(),
		Count:      col.Count(),
		Dimensions: col.VectorDim(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    report.Status,
		Checks:    report.Checks,
		Documents: report.Documents,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "No text provided")
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
		Error:   message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyText,
		domain.ErrInvalidArgument,
		domain.ErrDimensionMismatch,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrProviderFailure,
		domain.ErrGeneratorFailure,
		domain.ErrIncompleteIngest,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// incompleteIngestHandler reports both counts of a partial rebuild.
func incompleteIngestHandler(w http.ResponseWriter, err error, msg string) bool {
	var ie *domain.IncompleteIngestError
	if !errors.As(err, &ie) {
		return false
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"code":     ErrorResponseCodeIncompleteIngest,
		"message":  msg,
		"error":    msg,
		"expected": ie.Expected,
		"indexed":  ie.Indexed,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
