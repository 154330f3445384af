package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"slotdesk/internal/core/domain"
)

type releaseResponse struct {
	ID             int64      `json:"id"`
	WorkOrderID    int64      `json:"work_order_id"`
	Status         string     `json:"status"`
	RejectReason   string     `json:"reject_reason,omitempty"`
	RejectedByRole string     `json:"rejected_by_role,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`
	Settlement     string     `json:"settlement"`
}

func toReleaseResponse(ro domain.ReleaseOrder) releaseResponse {
	return releaseResponse{
		ID:             ro.ID,
		WorkOrderID:    ro.WorkOrderID,
		Status:         string(ro.Status),
		RejectReason:   ro.RejectReason,
		RejectedByRole: string(ro.RejectedByRole),
		RejectedAt:     ro.RejectedAt,
		Settlement:     string(ro.Settlement),
	}
}

func (h *Handler) handleApproveRelease(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	ro, err := h.releases.Approve(r.Context(), actorFrom(r), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReleaseResponse(ro))
}

func (h *Handler) handleRejectRelease(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid JSON")
		return
	}
	ro, err := h.releases.Reject(r.Context(), actorFrom(r), id, req.Reason)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReleaseResponse(ro))
}

func (h *Handler) handleReturnToClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid JSON")
		return
	}
	ro, err := h.releases.ReturnToClient(r.Context(), actorFrom(r), id, req.Reason)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReleaseResponse(ro))
}

func (h *Handler) handleResubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	ro, err := h.releases.Resubmit(r.Context(), actorFrom(r), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReleaseResponse(ro))
}

func (h *Handler) handleSettle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	ro, err := h.releases.Settle(r.Context(), actorFrom(r), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReleaseResponse(ro))
}
