package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"procuration/internal/lifecycle"
	"procuration/internal/matching"
	"procuration/internal/token"
	dErrors "procuration/pkg/domain-errors"
	"procuration/pkg/platform/httputil"
	"procuration/pkg/platform/middleware/auth"
	request "procuration/pkg/platform/middleware/request"
	"procuration/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,Matcher

// Service is the lifecycle surface the HTTP layer drives.
type Service interface {
	Submit(ctx context.Context, rawEmail string) (*lifecycle.SubmitResult, error)
	VerifyEmail(ctx context.Context, tok string) (*lifecycle.VerifyResult, error)
	LocalityView(ctx context.Context, identity string) (*lifecycle.LocalityView, error)
	ChooseLocality(ctx context.Context, identity, query string) (*lifecycle.LocalityResult, error)
	RequestConsularList(ctx context.Context, identity, list string) error
	AcknowledgeConfirmation(ctx context.Context, tok string) (string, error)
	CheckCancellation(ctx context.Context, tok string) (token.Payload, error)
	Cancel(ctx context.Context, tok string, withDelete bool) (*lifecycle.CancelResult, error)
	IssueConfirmationToken(ctx context.Context, identity string) (string, error)
	IssueCancellationToken(ctx context.Context, identity, offer string) (string, error)
	Requesters(ctx context.Context) ([]string, error)
}

// Matcher records a match between a request and a proxy offer.
type Matcher interface {
	Match(ctx context.Context, request, offer string) error
}

// CookieConfig names the session cookie and whether it is HTTPS-only.
type CookieConfig struct {
	Name   string
	Secure bool
}

const maxBodyBytes = 16 << 10

// Handler maps the lifecycle onto the public routes and the back-office routes.
type Handler struct {
	service Service
	matcher Matcher
	logger  *slog.Logger
	cookie  CookieConfig
}

// New creates a Handler.
func New(service Service, matcher Matcher, logger *slog.Logger, cookie CookieConfig) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		matcher: matcher,
		logger:  logger,
		cookie:  cookie,
	}
}

// Register mounts the requester-facing routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/etape-1", h.handleSubmit)
	r.Get("/etape-1/confirmation/{token}", h.handleVerifyEmail)
	r.Get("/etape-2", h.handleLocalityView)
	r.Post("/etape-2", h.handleChooseLocality)
	r.Post("/etape-2-liste-consulaire", h.handleConsularList)
	r.Get("/confirmation/{token}", h.handleAcknowledge)
	r.Get("/annulation/{token}", h.handleCheckCancellation)
	r.Post("/annulation/{token}", h.handleCancel)
}

// RegisterAdmin mounts the routes the matching back office calls. The caller
// is responsible for guarding them.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/requesters", h.handleRequesters)
	r.Post("/matches", h.handleMatch)
	r.Post("/confirmation-tokens", h.handleIssueConfirmation)
	r.Post("/cancellation-tokens", h.handleIssueCancellation)
}

type submitRequest struct {
	Email string `json:"email"`
}

type localityRequest struct {
	Commune string `json:"commune"`
}

type consularListRequest struct {
	Liste string `json:"liste"`
}

type cancelRequest struct {
	Type *string `json:"type"`
}

type pairRequest struct {
	Email string `json:"email"`
	Offer string `json:"offer"`
}

type identityResponse struct {
	Email string `json:"email"`
}

type sessionResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type pairResponse struct {
	Request string `json:"request"`
	Offer   string `json:"offer"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type requestersResponse struct {
	Requesters []string `json:"requesters"`
}

// handleSubmit starts a request. The verification token only travels by
// email, never in the response.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.service.Submit(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, identityResponse{Email: res.Identity})
}

func (h *Handler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.VerifyEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	maxAge := int(res.ExpiresAt.Sub(requestcontext.Now(r.Context())).Seconds())
	auth.SetSessionCookie(w, h.cookie.Name, res.Session, maxAge, h.cookie.Secure)
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{Email: res.Identity, ExpiresAt: res.ExpiresAt})
}

func (h *Handler) handleLocalityView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.LocalityView(ctx, requestcontext.Identity(ctx))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleChooseLocality(w http.ResponseWriter, r *http.Request) {
	var req localityRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	res, err := h.service.ChooseLocality(ctx, requestcontext.Identity(ctx), req.Commune)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleConsularList(w http.ResponseWriter, r *http.Request) {
	var req consularListRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	if err := h.service.RequestConsularList(ctx, requestcontext.Identity(ctx), req.Liste); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	identity, err := h.service.AcknowledgeConfirmation(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, identityResponse{Email: identity})
}

func (h *Handler) handleCheckCancellation(w http.ResponseWriter, r *http.Request) {
	pair, err := h.service.CheckCancellation(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pairResponse{Request: pair.Identity, Offer: pair.Offer})
}

// handleCancel requires a "type" field; "delete" also removes the locality.
// A missing type is rejected before the token is looked at.
func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Type == nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "type is required"))
		return
	}

	res, err := h.service.Cancel(r.Context(), chi.URLParam(r, "token"), *req.Type == "delete")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleRequesters(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Requesters(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, requestersResponse{Requesters: list})
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Offer) == "" {
		h.writeError(w, r, dErrors.New(dErrors.CodeInvalidInput, "email and offer are required"))
		return
	}

	if err := h.matcher.Match(r.Context(), req.Email, req.Offer); err != nil {
		if errors.Is(err, matching.ErrAlreadyMatched) {
			h.writeError(w, r, dErrors.Wrap(err, dErrors.CodeAlreadyMatched, "request or offer already matched"))
			return
		}
		h.writeError(w, r, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record match"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleIssueConfirmation(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !h.decode(w, r, &req) {
		return
	}

	tok, err := h.service.IssueConfirmationToken(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tokenResponse{Token: tok})
}

func (h *Handler) handleIssueCancellation(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !h.decode(w, r, &req) {
		return
	}

	tok, err := h.service.IssueCancellationToken(r.Context(), req.Email, req.Offer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tokenResponse{Token: tok})
}

// decode reads a bounded JSON body into v; on failure it has already written
// the 400.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		ctx := r.Context()
		h.logger.WarnContext(ctx, "invalid request body",
			"path", r.URL.Path,
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var throttled *lifecycle.ThrottledError
	if errors.As(err, &throttled) && throttled.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(throttled.RetryAfter))
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "request failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
