package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/cwa-proxy-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// Error messages shown by the front end, keyed by failure kind.
var (
	cycloneErrorMessages = map[domain.ErrorKind]string{
		domain.KindTransport: "無法從中央氣象署獲取資料",
		domain.KindDecode:    "解析 API 回應失敗",
		domain.KindInternal:  msgInternal,
	}
	warningsErrorMessages = map[domain.ErrorKind]string{
		domain.KindTransport: "無法從中央氣象署獲取警特報資料",
		domain.KindDecode:    "解析警特報 XML 失敗",
		domain.KindInternal:  msgInternal,
	}
)

const msgInternal = "伺服器內部錯誤"

func (s *Server) handleTyphoonData(w http.ResponseWriter, r *http.Request) {
	data, err := s.proxy.Cyclone(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "fetch typhoon data failed", "error", err, "kind", domain.KindOf(err))
		s.writeJSON(w, RouteTyphoonData, http.StatusInternalServerError, newErrorResponse(err, cycloneErrorMessages, true))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	s.countResponse(RouteTyphoonData, http.StatusOK)
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	items, err := s.proxy.Warnings(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "fetch warnings failed", "error", err, "kind", domain.KindOf(err))
		s.writeJSON(w, RouteCWAWarnings, http.StatusInternalServerError, newErrorResponse(err, warningsErrorMessages, false))
		return
	}
	s.writeJSON(w, RouteCWAWarnings, http.StatusOK, domain.NewWarningsResponse(items))
}

// newErrorResponse builds the 500 envelope. withUpstream adds the upstream
// status and body when a response was received.
func newErrorResponse(err error, messages map[domain.ErrorKind]string, withUpstream bool) domain.ErrorResponse {
	resp := domain.ErrorResponse{
		Error:   messages[domain.KindOf(err)],
		Details: err.Error(),
	}

	var ue *domain.UpstreamError
	if withUpstream && errors.As(err, &ue) && ue.Response != nil {
		status := ue.Response.Status
		text := string(ue.Response.Body)
		resp.CWAResponseStatus = &status
		resp.CWAResponseText = &text
	}
	return resp
}

// recoverer turns a handler panic into the internal error envelope.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
				panic(rec)
			}
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			s.logger.ErrorContext(r.Context(), "handler panic", "panic", rec, "path", r.URL.Path)
			s.writeJSON(w, route, http.StatusInternalServerError, domain.ErrorResponse{
				Error:   msgInternal,
				Details: fmt.Sprint(rec),
			})
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, route string, status int, v any) {
	sharedobs.WriteJSON(w, status, v)
	s.countResponse(route, status)
}

func (s *Server) countResponse(route string, status int) {
	s.metrics.Responses.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
