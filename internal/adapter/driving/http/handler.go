// Package httphandler is the HTTP driving adapter: it authenticates requests,
// serves the WSDL and operation documentation, and dispatches SOAP calls.
package httphandler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/soapmock/internal/application"
	"github.com/ericfisherdev/soapmock/internal/soap"
)

// AuthRealm is the realm advertised in the Basic challenge.
const AuthRealm = "SOAP Service"

// Handler is the single SOAP endpoint of the service.
type Handler struct {
	auth       *application.AuthService
	dispatcher *Dispatcher
	service    soap.Service
	wsdl       []byte
	docPage    []byte
	maxBody    int64
	logger     *slog.Logger
}

// NewHandler creates a Handler. The WSDL and documentation page are rendered
// once here from the dispatcher's operation table.
func NewHandler(
	auth *application.AuthService,
	dispatcher *Dispatcher,
	svc soap.Service,
	maxBody int64,
	logger *slog.Logger,
) (*Handler, error) {
	svc.Operations = dispatcher.Operations()

	wsdl, err := soap.GenerateWSDL(svc)
	if err != nil {
		return nil, err
	}

	return &Handler{
		auth:       auth,
		dispatcher: dispatcher,
		service:    svc,
		wsdl:       wsdl,
		docPage:    renderDocPage(svc),
		maxBody:    maxBody,
		logger:     logger,
	}, nil
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request id, logging, recovery and timeout middleware. A zero
// requestTimeout disables the per-request deadline.
func NewServeMux(h *Handler, requestTimeout time.Duration, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/{$}", h.ServeSOAP)
	mux.HandleFunc("GET /healthz", h.Health)

	var wrapped http.Handler = mux
	if requestTimeout > 0 {
		wrapped = timeoutMiddleware(requestTimeout, wrapped)
	}
	// Recovery inside logging so recovered panics are still logged with their status.
	wrapped = recoveryMiddleware(logger, wrapped)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// ServeSOAP authenticates the caller, then serves GET metadata requests or
// dispatches a POSTed SOAP call. Protocol errors are answered with a fault
// body at HTTP 200.
func (h *Handler) ServeSOAP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("client", r.RemoteAddr, "request_id", RequestIDFromContext(r.Context()))

	if _, ok := h.auth.Authenticate(r.Context(), r.Header.Get("Authorization"), r.RemoteAddr); !ok {
		logger.Warn("unauthorized access")
		w.Header().Set("WWW-Authenticate", `Basic realm="`+AuthRealm+`"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.serveMetadata(w, r, logger)
	case http.MethodPost:
		h.serveCall(w, r, logger)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) serveMetadata(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	query := strings.ToLower(r.URL.RawQuery)

	switch {
	case strings.Contains(query, "wsdl"):
		logger.Info("wsdl requested")
		w.Header().Set("Cache-Control", "private, max-age=300")
		writeXML(w, http.StatusOK, h.wsdl)
	case strings.Contains(query, "doc"):
		logger.Info("documentation requested")
		w.Header().Set("Content-Type", contentTypeHTML)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(h.docPage)
	default:
		writeFault(w, http.StatusOK, soap.ClientFault("GET requires ?wsdl or ?doc; POST a SOAP envelope to call an operation"))
	}
}

func (h *Handler) serveCall(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("soap request too large", "limit", tooLarge.Limit)
			writeFault(w, http.StatusOK, soap.ClientFault("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		logger.Warn("failed to read soap request", "error", err)
		writeFault(w, http.StatusOK, soap.ClientFault("unreadable request body"))
		return
	}
	logger.Debug("soap request xml", "xml", string(body))

	call, err := soap.DecodeCall(bytes.NewReader(body))
	if err != nil {
		code := soap.FaultClient
		if errors.Is(err, soap.ErrVersionMismatch) {
			code = soap.FaultVersionMismatch
		}
		logger.Warn("undecodable soap request", "error", err)
		h.respondFault(w, r, logger, &soap.Fault{Code: code, String: err.Error()})
		return
	}

	logger.Info("soap request received", "operation", call.Name)

	values, fault := h.dispatcher.Dispatch(r.Context(), call)
	if fault != nil {
		h.respondFault(w, r, logger, fault)
		return
	}

	resp, err := soap.MarshalResponse(h.service.Namespace, h.service.Prefix, call.Name, values)
	if err != nil {
		logger.Error("failed to encode soap response", "operation", call.Name, "error", err)
		h.respondFault(w, r, logger, soap.ServerFault("internal error"))
		return
	}
	logger.Debug("soap response xml", "xml", string(resp))
	writeXML(w, http.StatusOK, resp)
}

func (h *Handler) respondFault(w http.ResponseWriter, r *http.Request, logger *slog.Logger, f *soap.Fault) {
	if logger.Enabled(r.Context(), slog.LevelDebug) {
		if body, err := soap.MarshalFault(f); err == nil {
			logger.Debug("soap response xml", "xml", string(body))
		}
	}
	writeFault(w, http.StatusOK, f)
}

// Health returns a simple health check response. It is not authenticated.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
