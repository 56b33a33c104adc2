// package http implements the HTTP transport layer for the service.
// It handles incoming requests, decodes them, calls the appropriate service methods,
// and encodes the responses.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/YusovID/donor-match-service/internal/service"
	"github.com/YusovID/donor-match-service/internal/validation"
	"github.com/YusovID/donor-match-service/pkg/api"
	"github.com/YusovID/donor-match-service/pkg/logger/sl"
	"github.com/YusovID/donor-match-service/swagger"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// callerHeader carries the identity set by the authenticating gateway.
const callerHeader = "X-Caller-ID"

// Pinger reports whether the storage behind the service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server holds the dependencies for the HTTP server, including the logger and service interfaces.
type Server struct {
	log                *slog.Logger
	requestService     service.RequestService
	fulfillmentService service.FulfillmentService
	donorService       service.DonorService
	db                 Pinger
}

// NewServer creates a new instance of the HTTP server. db may be nil, in
// which case the health check does not touch storage.
func NewServer(
	log *slog.Logger,
	rs service.RequestService,
	fs service.FulfillmentService,
	ds service.DonorService,
	db Pinger,
) *Server {
	return &Server{
		log:                log,
		requestService:     rs,
		fulfillmentService: fs,
		donorService:       ds,
		db:                 db,
	}
}

// Routes sets up the router with all middleware and API endpoints.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.recoverPanic)
	mux.Use(s.metricsMiddleware)

	swaggerHandler, err := swagger.GetHandler()
	if err != nil {
		s.log.Error("failed to get swagger handler", sl.Err(err))
	} else {
		mux.Mount("/swagger", http.StripPrefix("/swagger", swaggerHandler))
	}

	mux.Handle("/metrics", promhttp.Handler())
	mux.Mount("/", api.HandlerWithOptions(s, api.ChiServerOptions{
		ErrorHandlerFunc: s.handleParamError,
	}))

	return mux
}

func (s *Server) CreateRequest(w http.ResponseWriter, r *http.Request, params api.CreateRequestParams) {
	const op = "internal.transport.http.CreateRequest"

	if err := validateCaller(params.XCallerID, params); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	var req api.CreateRequestJSONRequestBody
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	created, err := s.requestService.CreateRequest(r.Context(), params.XCallerID, req)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]*api.BloodRequest{"request": created})
}

func (s *Server) ListRequests(w http.ResponseWriter, r *http.Request, params api.ListRequestsParams) {
	const op = "internal.transport.http.ListRequests"

	if err := validation.ValidateStruct(params); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	requests, err := s.requestService.ListRequests(r.Context(), params)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]api.BloodRequest{"requests": requests})
}

func (s *Server) GetRequest(w http.ResponseWriter, r *http.Request, id api.ID) {
	const op = "internal.transport.http.GetRequest"

	req, err := s.requestService.GetRequest(r.Context(), id)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*api.BloodRequest{"request": req})
}

// AcceptMatch books one unit of the request for the calling donor.
func (s *Server) AcceptMatch(w http.ResponseWriter, r *http.Request, id api.ID, params api.AcceptMatchParams) {
	const op = "internal.transport.http.AcceptMatch"

	if err := validateCaller(params.XCallerID, params); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	resp, err := s.fulfillmentService.AcceptMatch(r.Context(), id, params.XCallerID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, resp)
}

func (s *Server) DeclineMatch(w http.ResponseWriter, r *http.Request, id api.ID, params api.DeclineMatchParams) {
	const op = "internal.transport.http.DeclineMatch"

	if err := validateCaller(params.XCallerID, params); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	match, err := s.fulfillmentService.DeclineMatch(r.Context(), id, params.XCallerID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*api.DonorMatch{"match": match})
}

func (s *Server) CancelRequest(w http.ResponseWriter, r *http.Request, id api.ID, params api.CancelRequestParams) {
	const op = "internal.transport.http.CancelRequest"

	if err := validateCaller(params.XCallerID, params); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	req, err := s.requestService.CancelRequest(r.Context(), params.XCallerID, id)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*api.BloodRequest{"request": req})
}

func (s *Server) FindNearbyDonors(w http.ResponseWriter, r *http.Request, params api.FindNearbyDonorsParams) {
	const op = "internal.transport.http.FindNearbyDonors"

	if err := validation.ValidateStruct(params); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	donors, err := s.requestService.FindNearbyDonors(r.Context(), params)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]api.DonorMatch{"donors": donors})
}

func (s *Server) UpsertDonorProfile(w http.ResponseWriter, r *http.Request, params api.UpsertDonorProfileParams) {
	const op = "internal.transport.http.UpsertDonorProfile"

	if err := validateCaller(params.XCallerID, params); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	var req api.UpsertDonorProfileJSONRequestBody
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	donor, err := s.donorService.UpsertDonorProfile(r.Context(), params.XCallerID, req)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*api.Donor{"donor": donor})
}

func (s *Server) SetAvailability(w http.ResponseWriter, r *http.Request, params api.SetAvailabilityParams) {
	const op = "internal.transport.http.SetAvailability"

	if err := validateCaller(params.XCallerID, params); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	var req api.SetAvailabilityJSONRequestBody
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	donor, err := s.donorService.SetAvailability(r.Context(), params.XCallerID, *req.IsAvailable)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*api.Donor{"donor": donor})
}

func (s *Server) GetDonor(w http.ResponseWriter, r *http.Request, id api.ID) {
	const op = "internal.transport.http.GetDonor"

	donor, err := s.donorService.GetDonor(r.Context(), id)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*api.Donor{"donor": donor})
}

// GetDonorStats answers the donor dashboard counters.
func (s *Server) GetDonorStats(w http.ResponseWriter, r *http.Request, id api.ID) {
	const op = "internal.transport.http.GetDonorStats"

	stats, err := s.donorService.GetDonorStats(r.Context(), id)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, stats)
}

func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetStats"

	stats, err := s.requestService.GetStats(r.Context())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, stats)
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetHealth"

	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			s.log.Error("storage is unreachable", slog.String("op", op), sl.Err(err))
			s.respond(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})

			return
		}
	}

	s.respond(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// respond is a helper function to encode data to JSON and write it to the response.
// It centralizes setting the Content-Type header and writing the status code.
func (s *Server) respond(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

// respondError is a convenience wrapper around respond for sending simple error messages.
func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respond(w, code, map[string]string{"error": message})
}

// respondAPIError formats and sends a structured error response that conforms to the OpenAPI specification.
func (s *Server) respondAPIError(w http.ResponseWriter, code int, apiCode api.ErrorResponseErrorCode, message string) {
	errResp := api.ErrorResponse{}
	errResp.Error.Code = apiCode
	errResp.Error.Message = message

	s.respond(w, code, errResp)
}

// decodeAndValidate is a helper that deserializes a JSON request body into a struct
// and then runs validation checks on it.
func (s *Server) decodeAndValidate(r *http.Request, v interface{}) error {
	if err := s.decode(r.Body, v); err != nil {
		return err
	}

	if err := validation.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}

// decode is a helper function to decode a JSON request body.
func (s *Server) decode(body io.ReadCloser, v interface{}) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

// validateCaller rejects an empty caller header as missing and any other
// value the header's validate tags refuse, such as ids longer than the
// 64 characters the storage columns hold.
func validateCaller(callerID string, params interface{}) error {
	if callerID == "" {
		return apperrors.ErrMissingCaller
	}

	return validation.ValidateStruct(params)
}

// handleParamError answers binding failures of path, query and header parameters.
func (s *Server) handleParamError(w http.ResponseWriter, r *http.Request, err error) {
	const op = "internal.transport.http.handleParamError"

	var headerErr *api.RequiredHeaderError
	if errors.As(err, &headerErr) && headerErr.ParamName == callerHeader {
		err = fmt.Errorf("%w: %w", apperrors.ErrMissingCaller, err)
	} else {
		err = fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	s.handleServiceError(w, r, op, err)
}

// handleServiceError provides centralized error handling for all HTTP handlers.
// It logs the internal error and maps it to a user-friendly HTTP response.
func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := s.log.With(slog.String("op", op), slog.String("request_id", getRequestID(r.Context())))

	var validationErr *validation.ValidationError

	switch {
	case apperrors.IsDomain(err) || errors.As(err, &validationErr):
		log.Warn("request rejected", sl.Err(err))
	default:
		log.Error("service error occurred", sl.Err(err))
	}

	switch {
	case errors.As(err, &validationErr):
		wrappedErr := fmt.Errorf("%w: %s", apperrors.ErrValidation, validationErr.Error())
		s.respondError(w, http.StatusBadRequest, wrappedErr.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, "invalid request body")
	case errors.Is(err, apperrors.ErrMissingCaller):
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("%s header is required", callerHeader))
	case errors.Is(err, apperrors.ErrValidation):
		s.respondError(w, http.StatusBadRequest, fromSentinel(err, apperrors.ErrValidation))
	case errors.Is(err, apperrors.ErrInvalidCoordinate):
		s.respondAPIError(w, http.StatusBadRequest, api.INVALIDCOORDINATE, rootMessage(err, apperrors.ErrInvalidCoordinate))
	case errors.Is(err, apperrors.ErrUnknownBloodType):
		s.respondAPIError(w, http.StatusBadRequest, api.UNKNOWNBLOODTYPE, rootMessage(err, apperrors.ErrUnknownBloodType))
	case errors.Is(err, apperrors.ErrForbidden):
		s.respondAPIError(w, http.StatusForbidden, api.FORBIDDEN, apperrors.ErrForbidden.Error())
	case errors.Is(err, apperrors.ErrMatchNotFound):
		s.respondAPIError(w, http.StatusNotFound, api.MATCHNOTFOUND, apperrors.ErrMatchNotFound.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		s.respondAPIError(w, http.StatusNotFound, api.NOTFOUND, "resource not found")
	case errors.Is(err, apperrors.ErrAlreadyDecided):
		s.respondAPIError(w, http.StatusConflict, api.ALREADYDECIDED, rootMessage(err, apperrors.ErrAlreadyDecided))
	case errors.Is(err, apperrors.ErrRequestTerminal):
		s.respondAPIError(w, http.StatusConflict, api.REQUESTTERMINAL, rootMessage(err, apperrors.ErrRequestTerminal))
	case errors.Is(err, apperrors.ErrRequestAlreadySatisfied):
		s.respondAPIError(w, http.StatusConflict, api.REQUESTSATISFIED, apperrors.ErrRequestAlreadySatisfied.Error())
	case errors.Is(err, apperrors.ErrStorageTimeout):
		w.Header().Set("Retry-After", "1")
		s.respondAPIError(w, http.StatusServiceUnavailable, api.STORAGETIMEOUT, "storage did not answer in time, retry later")
	default:
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// rootMessage returns the message of the typed error behind sentinel, so
// clients see "request is fulfilled" rather than the wrapping chain.
func rootMessage(err, sentinel error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch e.(type) {
		case *apperrors.InvalidCoordinateError, *apperrors.UnknownBloodTypeError,
			*apperrors.AlreadyDecidedError, *apperrors.RequestTerminalError:
			return e.Error()
		}
	}

	return sentinel.Error()
}

// fromSentinel drops the op prefixes in front of sentinel's text.
func fromSentinel(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}

	return sentinel.Error()
}
