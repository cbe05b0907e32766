package common

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/onflow/icq-watcher/engine/watcher"
	"github.com/onflow/icq-watcher/model/icq"
)

// RawJSON is a handler response which is already JSON encoded.
type RawJSON []byte

// ApiHandlerFunc is a function that contains endpoint handling logic,
// it fetches necessary resources and returns an error or response model.
type ApiHandlerFunc func(r *Request, api watcher.API) (interface{}, error)

// Handler is custom http handler implementing custom handler function.
// Handler function allows easier handling of errors and responses as it
// wraps functionality for handling error and responses outside of endpoint handling.
type Handler struct {
	logger         zerolog.Logger
	api            watcher.API
	apiHandlerFunc ApiHandlerFunc
}

func NewHandler(logger zerolog.Logger, api watcher.API, handlerFunc ApiHandlerFunc) *Handler {
	return &Handler{
		logger:         logger,
		api:            api,
		apiHandlerFunc: handlerFunc,
	}
}

// ServeHTTP function acts as a wrapper to each request providing common handling functionality
// such as logging, error handling, request decorators
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	errLog := h.logger.With().Str("request_url", r.URL.String()).Logger()

	response, err := h.apiHandlerFunc(Decorate(r), h.api)
	if err != nil {
		h.errorHandler(w, err, errLog)
		return
	}

	h.jsonResponse(w, http.StatusOK, response, errLog)
}

func (h *Handler) errorHandler(w http.ResponseWriter, err error, errorLogger zerolog.Logger) {
	se := ToStatusError(err)
	if se.Status() >= http.StatusInternalServerError {
		errorLogger.Error().Err(err).Int("status", se.Status()).Msg("request failed")
	} else {
		errorLogger.Debug().Err(err).Int("status", se.Status()).Msg("request rejected")
	}
	h.errorResponse(w, se.Status(), se.UserMessage(), se.Response(), errorLogger)
}

// jsonResponse encodes the response as JSON and writes it with the given status code.
func (h *Handler) jsonResponse(w http.ResponseWriter, code int, response interface{}, errLogger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	var encoded []byte
	switch r := response.(type) {
	case RawJSON:
		encoded = r
	default:
		var err error
		encoded, err = icq.Marshal(response)
		if err != nil {
			errLogger.Error().Err(err).Msg("failed to encode response")
			h.errorResponse(w, http.StatusInternalServerError, "error generating response", nil, errLogger)
			return
		}
	}

	w.WriteHeader(code)
	_, err := w.Write(encoded)
	if err != nil {
		errLogger.Error().Err(err).Msg("failed to write http response")
	}
}

// ModelError is the body of an error response.
type ModelError struct {
	Code     int32       `json:"code"`
	Message  string      `json:"message"`
	Response interface{} `json:"response,omitempty"`
}

// errorResponse sends an HTTP error response to the client with the given return code
// and a model error with the given response message in the response body
func (h *Handler) errorResponse(w http.ResponseWriter, returnCode int, responseMessage string, response interface{}, logger zerolog.Logger) {
	modelError := ModelError{
		Code:     int32(returnCode),
		Message:  responseMessage,
		Response: response,
	}
	encoded, err := icq.Marshal(modelError)
	if err != nil {
		logger.Error().Str("response_message", responseMessage).Msg("failed to json encode error message")
		w.WriteHeader(returnCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(returnCode)
	_, err = w.Write(encoded)
	if err != nil {
		logger.Error().Err(err).Msg("failed to send error response")
	}
}
