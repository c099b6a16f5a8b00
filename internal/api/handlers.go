package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/checkinapp/checkin/internal/account/session"
	apperrors "github.com/checkinapp/checkin/internal/platform/errors"
)

type loginRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type socialLoginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type phoneRequest struct {
	Phone string `json:"phone"`
}

type profileRequest struct {
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
}

// sessionResponse is the common success envelope: the session snapshot plus,
// when signed in, a bearer token for the protected routes.
type sessionResponse struct {
	Session       session.State `json:"session"`
	Token         string        `json:"token,omitempty"`
	PhoneRequired bool          `json:"phone_required,omitempty"`
}

type errorResponse struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{Session: h.accounts.Snapshot()})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.accounts.LoginUser(r.Context(), req.Username, req.Name); err != nil {
		writeError(w, err)
		return
	}
	h.writeSignedIn(w, http.StatusOK)
}

func (h *Handler) handleInstantLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.accounts.LoginUserInstantly(r.Context(), req.Username, req.Name); err != nil {
		writeError(w, err)
		return
	}
	h.writeSignedIn(w, http.StatusOK)
}

func (h *Handler) handleSocialLogin(w http.ResponseWriter, r *http.Request) {
	var req socialLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.accounts.CompleteSocialSignIn(r.Context(), req.Email, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.PhoneRequired {
		writeJSON(w, http.StatusAccepted, sessionResponse{
			Session:       h.accounts.Snapshot(),
			PhoneRequired: true,
		})
		return
	}
	h.writeSignedIn(w, http.StatusOK)
}

func (h *Handler) handleSubmitPhone(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.accounts.SubmitPhoneNumber(r.Context(), req.Phone); err != nil {
		writeError(w, err)
		return
	}
	h.writeSignedIn(w, http.StatusOK)
}

func (h *Handler) handleGuest(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.EnterGuestMode(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.writeSignedIn(w, http.StatusOK)
}

func (h *Handler) handleSkipOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.SkipOnboardingWithRandomUser(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.writeSignedIn(w, http.StatusOK)
}

func (h *Handler) handleUpdateUsername(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.accounts.UpdateUsername(r.Context(), req.Username); err != nil {
		writeError(w, err)
		return
	}
	h.writeSignedIn(w, http.StatusOK)
}

func (h *Handler) handleUpdateName(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.accounts.UpdateName(r.Context(), req.Name); err != nil {
		writeError(w, err)
		return
	}
	h.writeSignedIn(w, http.StatusOK)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: h.accounts.Snapshot()})
}

// requireSession guards profile and logout routes with a bearer token.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if _, err := h.tokens.Verify(token); err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeSignedIn responds with the current snapshot and, if the session is
// signed in, a freshly minted bearer token.
func (h *Handler) writeSignedIn(w http.ResponseWriter, status int) {
	snapshot := h.accounts.Snapshot()
	resp := sessionResponse{Session: snapshot}
	if snapshot.SignedIn() {
		token, err := h.tokens.Issue(snapshot.Username, snapshot.GuestMode)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Token = token
	}
	writeJSON(w, status, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeBadRequest, "invalid request body", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{
		Code:    string(apperrors.CodeUnknown),
		Message: "internal error",
	}
	status := http.StatusInternalServerError

	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		resp.Code = string(domainErr.Code)
		resp.Message = domainErr.Message
		resp.Metadata = domainErr.Metadata
		status = domainErr.Code.HTTPStatus()
	}
	writeJSON(w, status, resp)
}
