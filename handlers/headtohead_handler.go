package handlers

import (
	"net/http"

	"github.com/NicoMontoya/tennisworld/services"
)

type HeadToHeadHandler struct {
	headToHeadService services.HeadToHeadService
}

func NewHeadToHeadHandler(headToHeadService services.HeadToHeadService) *HeadToHeadHandler {
	return &HeadToHeadHandler{headToHeadService: headToHeadService}
}

// Get returns the full pairwise record between two players. The order of the
// path parameters does not matter.
func (h *HeadToHeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	playerA, err := idParam(r, "playerA")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerB, err := idParam(r, "playerB")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	record, err := h.headToHeadService.GetPairRecord(r.Context(), playerA, playerB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"head_to_head": record}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Repair re-normalizes stored pair records; admin only.
func (h *HeadToHeadHandler) Repair(w http.ResponseWriter, r *http.Request) {
	repaired, err := h.headToHeadService.RepairOrientations(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"repaired": repaired}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
