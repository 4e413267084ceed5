package api

import (
	"encoding/json"
	"net/http"
	"time"

	"livepoll/internal/event"
	"livepoll/internal/platform/apperr"
)

type voteRequest struct {
	OptionID   int64  `json:"optionId"`
	VoterToken string `json:"voterToken"`
}

// @Summary     Cast, change, or cancel a vote
// @Tags        votes
// @Accept      json
// @Produce     json
// @Param       id       path      int64        true  "Poll ID"
// @Param       request  body      voteRequest  true  "Vote payload"
// @Success     200      {object}  vote.SubmitResult
// @Failure     400      {object}  map[string]string  "invalid body or inactive poll"
// @Failure     404      {object}  map[string]string  "poll or option not found"
// @Failure     409      {object}  map[string]string  "concurrent vote conflict"
// @Failure     500      {object}  map[string]string  "server error"
// @Router      /polls/{id}/votes [post]
func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.OptionID == 0 {
		errorResponse(w, apperr.BadRequest("invalid_input", "optionId is required", nil))
		return
	}

	res, err := h.voteSvc.Submit(r.Context(), pollID, req.OptionID, req.VoterToken)
	if err != nil {
		errorResponse(w, err)
		return
	}

	select {
	case h.voteCh <- event.VoteEvent{
		PollID:    pollID,
		OptionID:  req.OptionID,
		Action:    string(res.Action),
		Timestamp: time.Now().UTC(),
	}:
	default:
	}

	writeJSON(w, http.StatusOK, res)
}

// @Summary     Poll results
// @Tags        polls
// @Produce     json
// @Param       id   path     int64  true  "Poll ID"
// @Success     200  {object} vote.Snapshot
// @Failure     400  {object}  map[string]string  "invalid poll id"
// @Failure     404  {object}  map[string]string  "not found"
// @Failure     500  {object}  map[string]string  "server error"
// @Router      /polls/{id}/results [get]
func (h *Handler) handlePollResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	snap, err := h.voteSvc.GetResults(r.Context(), pollID)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// @Summary     Results for the latest active poll
// @Tags        polls
// @Produce     json
// @Success     200  {object} vote.Snapshot
// @Failure     404  {object}  map[string]string  "no active poll"
// @Failure     500  {object}  map[string]string  "server error"
// @Router      /polls/results [get]
func (h *Handler) handleActivePollResults(w http.ResponseWriter, r *http.Request) {
	snap, err := h.voteSvc.GetActivePollResults(r.Context())
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
