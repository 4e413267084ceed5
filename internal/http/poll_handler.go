package api

import (
	"net/http"

	"livepoll/internal/platform/apperr"
)

type pollOptionOut struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

type pollOut struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Options     []pollOptionOut `json:"options"`
}

// @Summary     Get a poll with its options
// @Tags        polls
// @Produce     json
// @Param       id   path     int64  true  "Poll ID"
// @Success     200  {object} pollOut
// @Failure     400  {object}  map[string]string  "invalid poll id"
// @Failure     404  {object}  map[string]string  "not found"
// @Failure     500  {object}  map[string]string  "server error"
// @Router      /polls/{id} [get]
func (h *Handler) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	p, options, err := h.pollSvc.Get(r.Context(), pollID)
	if err != nil {
		errorResponse(w, err)
		return
	}

	out := pollOut{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Options:     make([]pollOptionOut, 0, len(options)),
	}
	for _, o := range options {
		out.Options = append(out.Options, pollOptionOut{ID: o.ID, Label: o.Label})
	}

	writeJSON(w, http.StatusOK, out)
}
