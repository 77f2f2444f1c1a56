package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"phonestore/internal/guard"
	"phonestore/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// maxRequestBody bounds the size of JSON request bodies.
const maxRequestBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// listFunc fetches one page of a listing.
type listFunc[T any] func(ctx context.Context, req model.PageRequest) (*model.Page[T], error)

// checkoutErrorResponse reports a checkout that stopped part way.
type checkoutErrorResponse struct {
	model.ErrorResponse
	SagaID      string `json:"sagaId"`
	FailedStep  string `json:"failedStep"`
	Compensated bool   `json:"compensated"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError maps err onto a status code and a {error, message} body.
// Internal details are logged, never returned.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var (
		domainErr  *model.DomainError
		partialErr *model.PartialCheckoutError
	)

	switch {
	case errors.As(err, &partialErr):
		logger.Error().Err(err).Str("saga_id", partialErr.SagaID).Msg("partial checkout")
		writeJSON(w, http.StatusBadGateway, checkoutErrorResponse{
			ErrorResponse: model.ErrorResponse{Error: partialErr.Code(), Message: partialMessage(partialErr)},
			SagaID:        partialErr.SagaID,
			FailedStep:    partialErr.FailedStep,
			Compensated:   partialErr.Compensated,
		})
	case errors.As(err, &domainErr) && domainErr.Code != model.ErrCodeRemoteCallFailure:
		status := statusFor(domainErr.Code)
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
		writeJSON(w, status, model.ErrorResponse{Error: domainErr.Code, Message: domainErr.Message})
	case model.IsRemoteFailure(err):
		logger.Error().Err(err).Msg("backend call failed")
		writeJSON(w, http.StatusBadGateway, model.ErrorResponse{
			Error:   model.ErrCodeRemoteCallFailure,
			Message: model.ErrRemoteCallFailure.Message,
		})
	default:
		logger.Error().Err(err).Msg("handler error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "internal server error",
		})
	}
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeInvalidJSON, model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodePhoneNotFound, model.ErrCodeCartLineNotFound, model.ErrCodeSupplierNotFound, model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeProfileIncomplete, model.ErrCodeNoOpenCart, model.ErrCodeConfirmationRequired,
		model.ErrCodeInvalidTransition, model.ErrCodeCheckoutInProgress:
		return http.StatusConflict
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func partialMessage(e *model.PartialCheckoutError) string {
	if e.Compensated {
		return "Checkout failed and every completed step was rolled back"
	}
	return "Checkout failed part way; some changes may remain"
}

// decodeJSON reads the request body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return decodeBody(w, r, v, false)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be omitted.
// An empty body leaves v untouched, whatever the Content-Length says.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return decodeBody(w, r, v, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return model.NewDomainError(model.ErrCodeInvalidJSON, "invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return model.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), strings.Split(fe.Namespace(), ".")[0]+".")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s needs at least %s entries", field, fe.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return model.NewValidationError(strings.Join(msgs, "; "))
}

// pageRequest reads the page and limit query parameters.
func pageRequest(r *http.Request) (model.PageRequest, error) {
	var req model.PageRequest
	for name, dst := range map[string]*int{"page": &req.Page, "limit": &req.Limit} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, model.NewValidationError("invalid " + name + " parameter")
		}
		*dst = n
	}
	if req.Page > model.MaxPage {
		return req, model.NewValidationError("page parameter must not exceed " + strconv.Itoa(model.MaxPage))
	}
	return req, nil
}

// callerID returns the authenticated user id.
func callerID(r *http.Request) (string, error) {
	id, ok := guard.IdentityFromContext(r.Context())
	if !ok || id.UserID == "" {
		return "", model.NewDomainError(model.ErrCodeUnauthorised, "authentication required")
	}
	return id.UserID, nil
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}
