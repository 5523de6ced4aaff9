package handlers

import (
	"net/http"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/service"
	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// CredentialRequest carries the password, which domain.UserCredential never
// serializes.
type CredentialRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Active   *bool  `json:"active"`
}

type VerifyRequest struct {
	Password string `json:"password"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "users.Create", err)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	cred, err := h.users.CreateCredential(r.Context(), service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Active:   active,
	})
	if err != nil {
		writeError(w, r, "users.Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, cred)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	creds, err := h.users.ListCredentials(r.Context())
	if err != nil {
		writeError(w, r, "users.List", err)
		return
	}
	writeJSON(w, http.StatusOK, creds)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	cred, err := h.users.GetCredential(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, "users.Get", err)
		return
	}
	writeJSON(w, http.StatusOK, cred)
}

// Update changes the password and active flag of the named credential. An
// omitted password keeps the current one; an omitted active flag keeps the
// current flag.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "users.Update", err)
		return
	}

	cred, err := h.users.GetCredential(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, "users.Update", err)
		return
	}

	incoming := domain.UserCredential{Password: req.Password, Active: cred.Active}
	if req.Active != nil {
		incoming.Active = *req.Active
	}
	updated, err := h.users.UpdateCredential(r.Context(), cred.ID, incoming)
	if err != nil {
		writeError(w, r, "users.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteCredential(r.Context(), chi.URLParam(r, "username")); err != nil {
		writeError(w, r, "users.Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "users.Verify", err)
		return
	}
	cred, err := h.users.VerifyPassword(r.Context(), chi.URLParam(r, "username"), req.Password)
	if err != nil {
		writeError(w, r, "users.Verify", err)
		return
	}
	writeJSON(w, http.StatusOK, cred)
}

func (h *UserHandler) CreateDetail(w http.ResponseWriter, r *http.Request) {
	var detail domain.UserDetail
	if err := decodeJSON(r, &detail); err != nil {
		writeError(w, r, "users.CreateDetail", err)
		return
	}
	created, err := h.users.CreateDetail(r.Context(), chi.URLParam(r, "username"), detail)
	if err != nil {
		writeError(w, r, "users.CreateDetail", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *UserHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.users.GetDetail(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, "users.GetDetail", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *UserHandler) UpdateDetail(w http.ResponseWriter, r *http.Request) {
	var incoming domain.UserDetail
	if err := decodeJSON(r, &incoming); err != nil {
		writeError(w, r, "users.UpdateDetail", err)
		return
	}

	current, err := h.users.GetDetail(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, "users.UpdateDetail", err)
		return
	}
	updated, err := h.users.UpdateDetail(r.Context(), current.ID, incoming)
	if err != nil {
		writeError(w, r, "users.UpdateDetail", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
