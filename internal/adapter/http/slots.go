package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"slotdesk/internal/core/domain"
)

type slotResponse struct {
	ID          int64      `json:"id"`
	Channel     string     `json:"channel"`
	SubPage     string     `json:"sub_page,omitempty"`
	Position    string     `json:"position,omitempty"`
	WidthPx     int        `json:"width_px,omitempty"`
	HeightPx    int        `json:"height_px,omitempty"`
	Price       int64      `json:"price"`
	Status      string     `json:"status"`
	Blocked     bool       `json:"blocked"`
	BlockReason string     `json:"block_reason,omitempty"`
	BlockStart  *time.Time `json:"block_start,omitempty"`
	BlockEnd    *time.Time `json:"block_end,omitempty"`
}

func toSlotResponse(s domain.Slot) slotResponse {
	resp := slotResponse{
		ID:          s.ID,
		Channel:     string(s.Channel),
		SubPage:     s.SubPage,
		Position:    s.Position,
		WidthPx:     s.WidthPx,
		HeightPx:    s.HeightPx,
		Price:       s.Price,
		Status:      string(s.Status),
		Blocked:     s.Blocked,
		BlockReason: s.BlockReason,
	}
	if s.BlockWindow != nil {
		resp.BlockStart = &s.BlockWindow.Start
		resp.BlockEnd = &s.BlockWindow.End
	}
	return resp
}

func (h *Handler) handleListSlots(w http.ResponseWriter, r *http.Request) {
	var channel *domain.Channel
	if q := r.URL.Query().Get("channel"); q != "" {
		c := domain.Channel(q)
		if !domain.ValidChannel(c) {
			writeError(w, http.StatusBadRequest, codeValidation, "unknown channel")
			return
		}
		channel = &c
	}
	slots, err := h.availability.ListSlots(r.Context(), channel)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	resp := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		resp = append(resp, toSlotResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createSlotRequest struct {
	Channel  string `json:"channel"`
	SubPage  string `json:"sub_page"`
	Position string `json:"position"`
	WidthPx  int    `json:"width_px"`
	HeightPx int    `json:"height_px"`
	Price    int64  `json:"price"`
}

func (h *Handler) handleCreateSlot(w http.ResponseWriter, r *http.Request) {
	var req createSlotRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid JSON")
		return
	}
	slot, err := h.availability.CreateSlot(r.Context(), actorFrom(r), domain.Slot{
		Channel:  domain.Channel(req.Channel),
		SubPage:  req.SubPage,
		Position: req.Position,
		WidthPx:  req.WidthPx,
		HeightPx: req.HeightPx,
		Price:    req.Price,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSlotResponse(slot))
}

type blockSlotRequest struct {
	Reason string     `json:"reason"`
	Start  *time.Time `json:"start_date"`
	End    *time.Time `json:"end_date"`
}

func (h *Handler) handleBlockSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	var req blockSlotRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid JSON")
		return
	}
	var window *domain.Window
	if req.Start != nil && req.End != nil {
		window = &domain.Window{Start: *req.Start, End: *req.End}
	}
	if err := h.availability.BlockSlot(r.Context(), actorFrom(r), id, req.Reason, window); err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnblockSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	if err := h.availability.UnblockSlot(r.Context(), actorFrom(r), id); err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
