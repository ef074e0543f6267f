package department

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/org-management/internal/transport"
	"github.com/go-chi/chi"
)

type MembershipHandler struct {
	*transport.BaseHandler
	Service MembershipServiceAPI
}

func NewMembershipHandler(lg *slog.Logger, svc MembershipServiceAPI) *MembershipHandler {
	return &MembershipHandler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// AssignMember handles POST /user-departments
func (h *MembershipHandler) AssignMember(w http.ResponseWriter, r *http.Request) {
	var dto AssignMemberDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	membership, err := h.Service.Assign(r.Context(), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, membership)
}

// BatchAssignMembers handles POST /user-departments/batch
func (h *MembershipHandler) BatchAssignMembers(w http.ResponseWriter, r *http.Request) {
	var dto BatchAssignDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.BatchAssign(r.Context(), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// UpdateMembership handles PATCH /user-departments/{id}
func (h *MembershipHandler) UpdateMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateMembershipDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	membership, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, membership)
}

// RemoveMembership handles DELETE /user-departments/{id}
func (h *MembershipHandler) RemoveMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	removed, err := h.Service.Remove(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !removed {
		h.WriteError(w, http.StatusNotFound, "membership not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetMembership handles GET /user-departments/{id}
func (h *MembershipHandler) GetMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	membership, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, membership)
}

// ListUserMemberships handles GET /users/{userId}/departments
func (h *MembershipHandler) ListUserMemberships(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.parseID(w, r, "userId")
	if !ok {
		return
	}

	memberships, err := h.Service.ListByUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, memberships)
}

// GetPrimaryDepartment handles GET /users/{userId}/departments/primary
func (h *MembershipHandler) GetPrimaryDepartment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.parseID(w, r, "userId")
	if !ok {
		return
	}

	membership, err := h.Service.PrimaryOf(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if membership == nil {
		h.WriteError(w, http.StatusNotFound, "no primary department")
		return
	}

	h.WriteJSON(w, http.StatusOK, membership)
}

// ListDepartmentMembers handles GET /departments/{id}/members
func (h *MembershipHandler) ListDepartmentMembers(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	memberships, err := h.Service.ListByDepartment(r.Context(), departmentID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, memberships)
}

func (h *MembershipHandler) parseID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *MembershipHandler) writeServiceError(w http.ResponseWriter, err error) {
	var vErr ValidationError
	if errors.As(err, &vErr) {
		h.WriteError(w, http.StatusBadRequest, vErr.Msg)
		return
	}
	h.WriteAppError(w, err)
}
