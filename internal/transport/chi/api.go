package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/recdex/internal/domain/recommendation"
	healthuc "github.com/kailas-cloud/recdex/internal/usecase/health"
)

// ErrorResponseCode classifies an API error.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest         ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized       ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed   ErrorResponseCode = "validation_failed"
	ErrorResponseCodeEmptyText          ErrorResponseCode = "empty_text"
	ErrorResponseCodeVectorDimMismatch  ErrorResponseCode = "vector_dim_mismatch"
	ErrorResponseCodeCollectionNotFound ErrorResponseCode = "collection_not_found"
	ErrorResponseCodeAlreadyExists      ErrorResponseCode = "collection_already_exists"
	ErrorResponseCodeProviderError      ErrorResponseCode = "embedding_provider_error"
	ErrorResponseCodeGeneratorError     ErrorResponseCode = "generator_error"
	ErrorResponseCodeIncompleteIngest   ErrorResponseCode = "incomplete_ingest"
	ErrorResponseCodeNotImplemented     ErrorResponseCode = "not_implemented"
	ErrorResponseCodeInternalError      ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
	// Error repeats Message for clients that only read the error field.
	Error string `json:"error"`
}

// RecommendRequest is the body of POST /v1/recommend.
type RecommendRequest struct {
	Text *string `json:"text"`
	K    *int    `json:"k,omitempty"`
}

// RecommendParams are the query parameters of POST /v1/recommend.
type RecommendParams struct {
	K *int `form:"k,omitempty" json:"k,omitempty"`
}

// RecommendResponse is the body of a successful recommendation.
type RecommendResponse struct {
	Recommendations []recommendation.Recommendation `json:"recommendations"`
}

// SummarizeRequest is the body of POST /v1/summarize.
type SummarizeRequest struct {
	Text *string `json:"text"`
}

// SummarizeResponse is the body of a successful summarization.
type SummarizeResponse struct {
	Summary    string `json:"summary"`
	RawSummary string `json:"raw_summary"`
}

// StructureRequest is the body of POST /v1/structure. Text may hold any JSON value.
type StructureRequest struct {
	Text any `json:"text"`
}

// StructureResponse is the body of a successful structuring call.
type StructureResponse struct {
	Summary string `json:"summary"`
}

// IngestParams are the query parameters of POST /v1/ingest.
type IngestParams struct {
	BatchSize *int `form:"batch_size,omitempty" json:"batch_size,omitempty"`
}

// IngestResponse reports a finished rebuild.
type IngestResponse struct {
	Collection string  `json:"collection"`
	Documents  int     `json:"documents"`
	Indexed    int     `json:"indexed"`
	Batches    int     `json:"batches"`
	Dimensions int     `json:"dimensions"`
	DurationMs float64 `json:"duration_ms"`
}

// IndexResponse describes the served collection.
type IndexResponse struct {
	Collection string `json:"collection"`
	Count      int    `json:"count"`
	Dimensions int    `json:"dimensions"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    healthuc.Status                 `json:"status"`
	Checks    map[string]healthuc.CheckResult `json:"checks"`
	Documents int                             `json:"documents"`
}

// ServerInterface lists the API operations.
type ServerInterface interface {
	// (POST /v1/recommend)
	Recommend(w http.ResponseWriter, r *http.Request, params RecommendParams)
	// (POST /v1/summarize)
	Summarize(w http.ResponseWriter, r *http.Request)
	// (POST /v1/structure)
	Structure(w http.ResponseWriter, r *http.Request)
	// (POST /v1/ingest)
	Ingest(w http.ResponseWriter, r *http.Request, params IngestParams)
	// (GET /v1/index)
	DescribeIndex(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts the API routes on options.BaseRouter (or a new router).
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	errorHandler := options.ErrorHandlerFunc
	if errorHandler == nil {
		errorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	w := &serverInterfaceWrapper{handler: si, errorHandlerFunc: errorHandler}

	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/v1/recommend", w.Recommend)
		r.Post(options.BaseURL+"/v1/summarize", w.handler.Summarize)
		r.Post(options.BaseURL+"/v1/structure", w.handler.Structure)
		r.Post(options.BaseURL+"/v1/ingest", w.Ingest)
		r.Get(options.BaseURL+"/v1/index", w.handler.DescribeIndex)
		r.Get(options.BaseURL+"/health", w.handler.HealthCheck)
		r.Get(options.BaseURL+"/metrics", w.handler.Metrics)
	})
	return r
}

type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Recommend binds query parameters for POST /v1/recommend.
func (siw *serverInterfaceWrapper) Recommend(w http.ResponseWriter, r *http.Request) {
	var params RecommendParams
	if err := runtime.BindQueryParameter("form", true, false, "k", r.URL.Query(), &params.K); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "k", Err: err})
		return
	}
	siw.handler.Recommend(w, r, params)
}

// Ingest binds query parameters for POST /v1/ingest.
func (siw *serverInterfaceWrapper) Ingest(w http.ResponseWriter, r *http.Request) {
	var params IngestParams
	if err := runtime.BindQueryParameter("form", true, false, "batch_size", r.URL.Query(), &params.BatchSize); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "batch_size", Err: err})
		return
	}
	siw.handler.Ingest(w, r, params)
}
