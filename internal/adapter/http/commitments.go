package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"slotdesk/internal/core/port"
)

type bannerRequest struct {
	BannerRef string `json:"banner_ref"`
}

// handleUploadBanner attaches an uploaded banner's storage ref to a slot
// commitment. The upload itself happens against the external object store;
// only the returned ref travels through here.
func (h *Handler) handleUploadBanner(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	var req bannerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid JSON")
		return
	}
	c, err := h.releases.UploadBanner(r.Context(), actorFrom(r), id, req.BannerRef)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commitmentResponse{
		ID:        c.ID,
		SlotID:    c.SlotID,
		Channel:   string(c.Channel),
		Section:   c.Section,
		Start:     c.Window.Start,
		End:       c.Window.End,
		Price:     c.Price,
		BannerRef: c.BannerRef,
		BannerAt:  c.BannerUploadedAt,
	})
}

type deploymentResponse struct {
	ID           int64     `json:"id"`
	CommitmentID int64     `json:"commitment_id"`
	BannerRef    string    `json:"banner_ref"`
	DeployedAt   time.Time `json:"deployed_at"`
	Status       string    `json:"status"`
}

func toDeploymentResponse(v port.DeploymentView) deploymentResponse {
	return deploymentResponse{
		ID:           v.Deployment.ID,
		CommitmentID: v.Deployment.CommitmentID,
		BannerRef:    v.Deployment.BannerRef,
		DeployedAt:   v.Deployment.DeployedAt,
		Status:       string(v.Status),
	}
}

func (h *Handler) handleDeploy(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	var req bannerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid JSON")
		return
	}
	view, err := h.deployments.Deploy(r.Context(), actorFrom(r), id, req.BannerRef)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDeploymentResponse(view))
}

// handleListDeployments returns the order's deployments with status
// derived against the current clock, never a stored flag.
func (h *Handler) handleListDeployments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	views, err := h.deployments.ListByWorkOrder(r.Context(), id, time.Time{})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	resp := make([]deploymentResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toDeploymentResponse(v))
	}
	writeJSON(w, http.StatusOK, resp)
}
