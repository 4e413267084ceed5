package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"livepoll/internal/domain/poll"
	"livepoll/internal/domain/vote"
	"livepoll/internal/event"
	"livepoll/internal/pubsub"
)

type testPollRepo struct {
	mu     sync.Mutex
	polls  map[int64]*poll.Poll
	opts   map[int64][]poll.Option
	nextID int64
}

func newTestPollRepo() *testPollRepo {
	return &testPollRepo{
		polls:  make(map[int64]*poll.Poll),
		opts:   make(map[int64][]poll.Option),
		nextID: 1,
	}
}

func (r *testPollRepo) Create(ctx context.Context, p *poll.Poll, options []poll.Option) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	copyPoll := *p
	r.polls[p.ID] = &copyPoll

	cloned := make([]poll.Option, len(options))
	for i, opt := range options {
		opt.ID = p.ID*100 + int64(i+1)
		opt.PollID = p.ID
		cloned[i] = opt
	}
	r.opts[p.ID] = cloned
	return p.ID, nil
}

func (r *testPollRepo) GetByID(ctx context.Context, id int64) (*poll.Poll, []poll.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return nil, nil, poll.ErrNotFound
	}
	copyPoll := *p
	copied := make([]poll.Option, len(r.opts[id]))
	copy(copied, r.opts[id])
	return &copyPoll, copied, nil
}

func (r *testPollRepo) FindLatestActive(ctx context.Context) (*poll.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *poll.Poll
	for _, p := range r.polls {
		if p.IsActive && (latest == nil || p.ID > latest.ID) {
			latest = p
		}
	}
	if latest == nil {
		return nil, poll.ErrNotFound
	}
	copyPoll := *latest
	return &copyPoll, nil
}

type testVoteRepo struct {
	mu     sync.Mutex
	votes  map[int64]*vote.Vote
	nextID int64
}

func newTestVoteRepo() *testVoteRepo {
	return &testVoteRepo{votes: make(map[int64]*vote.Vote), nextID: 1}
}

func (r *testVoteRepo) InTx(ctx context.Context, fn func(vote.Repository) error) error {
	return fn(r)
}

func (r *testVoteRepo) Find(ctx context.Context, pollID int64, voterToken string) (*vote.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.votes {
		if v.PollID == pollID && v.VoterToken == voterToken {
			copyVote := *v
			return &copyVote, nil
		}
	}
	return nil, nil
}

func (r *testVoteRepo) Insert(ctx context.Context, v *vote.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.votes {
		if existing.PollID == v.PollID && existing.VoterToken == v.VoterToken {
			return vote.ErrConflict
		}
	}
	v.ID = r.nextID
	r.nextID++
	copyVote := *v
	r.votes[v.ID] = &copyVote
	return nil
}

func (r *testVoteRepo) UpdateOption(ctx context.Context, voteID, optionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.votes[voteID]
	if !ok {
		return errors.New("vote not found")
	}
	v.OptionID = optionID
	return nil
}

func (r *testVoteRepo) Delete(ctx context.Context, voteID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.votes, voteID)
	return nil
}

func (r *testVoteRepo) CountByOption(ctx context.Context, pollID int64) (map[int64]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make(map[int64]int64)
	for _, v := range r.votes {
		if v.PollID == pollID {
			res[v.OptionID]++
		}
	}
	return res, nil
}

// coldCache never warms up, forcing every read through the ledger. The
// cache/ledger interplay has its own tests in the vote package.
type coldCache struct{}

func (coldCache) Ready(ctx context.Context, pollID int64) (bool, error) { return false, nil }
func (coldCache) Counts(ctx context.Context, pollID int64) (map[int64]int64, int64, bool, error) {
	return map[int64]int64{}, 0, false, nil
}
func (coldCache) Store(ctx context.Context, pollID int64, counts map[int64]int64, total int64) error {
	return nil
}
func (coldCache) StoreTotal(ctx context.Context, pollID int64, total int64) error { return nil }
func (coldCache) AddVote(ctx context.Context, pollID, optionID int64) error       { return nil }
func (coldCache) SwitchVote(ctx context.Context, pollID, fromOption, toOption int64) error {
	return nil
}
func (coldCache) RemoveVote(ctx context.Context, pollID, optionID int64) error { return nil }

type testEnv struct {
	router  http.Handler
	hub     *pubsub.Hub
	pollID  int64
	optionA int64
	optionB int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	pollRepo := newTestPollRepo()
	voteRepo := newTestVoteRepo()
	hub := pubsub.NewHub()

	pollID, err := pollRepo.Create(context.Background(),
		&poll.Poll{Title: "Lunch", IsActive: true},
		[]poll.Option{
			{Label: "Pizza", SortOrder: 1},
			{Label: "Sushi", SortOrder: 2},
		})
	if err != nil {
		t.Fatalf("seed poll: %v", err)
	}
	opts := pollRepo.opts[pollID]

	pollSvc := poll.NewService(pollRepo)
	voteSvc := vote.NewService(pollRepo, voteRepo, coldCache{}, hub)
	voteCh := make(chan event.VoteEvent, 100)

	return &testEnv{
		router:  NewRouter(pollSvc, voteSvc, hub, voteCh, nil, nil),
		hub:     hub,
		pollID:  pollID,
		optionA: opts[0].ID,
		optionB: opts[1].ID,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestGetPoll(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/polls/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out pollOut
	decodeInto(t, rec, &out)
	if out.ID != e.pollID || out.Title != "Lunch" {
		t.Fatalf("unexpected poll: %+v", out)
	}
	if len(out.Options) != 2 || out.Options[0].Label != "Pizza" {
		t.Fatalf("unexpected options: %+v", out.Options)
	}

	rec = e.do(t, http.MethodGet, "/polls/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var errBody map[string]string
	decodeInto(t, rec, &errBody)
	if errBody["error"] != "poll_not_found" {
		t.Fatalf("expected poll_not_found, got %q", errBody["error"])
	}
}

func TestVoteFlow(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/polls/1/votes", map[string]any{"optionId": e.optionA})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var created vote.SubmitResult
	decodeInto(t, rec, &created)
	if created.Action != vote.ActionCreated {
		t.Fatalf("expected created, got %s", created.Action)
	}
	if created.VoterToken == "" {
		t.Fatalf("expected a generated voter token")
	}

	rec = e.do(t, http.MethodPost, "/polls/1/votes", map[string]any{
		"optionId":   e.optionB,
		"voterToken": created.VoterToken,
	})
	var updated vote.SubmitResult
	decodeInto(t, rec, &updated)
	if updated.Action != vote.ActionUpdated {
		t.Fatalf("expected updated, got %s", updated.Action)
	}
	if updated.PreviousOptionID == nil || *updated.PreviousOptionID != e.optionA {
		t.Fatalf("expected previousOptionId %d, got %v", e.optionA, updated.PreviousOptionID)
	}

	rec = e.do(t, http.MethodGet, "/polls/1/results", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap vote.Snapshot
	decodeInto(t, rec, &snap)
	if snap.TotalVotes != 1 || snap.Results[0].Count != 0 || snap.Results[1].Count != 1 {
		t.Fatalf("unexpected results: %+v", snap)
	}

	rec = e.do(t, http.MethodGet, "/polls/results", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from active poll results, got %d", rec.Code)
	}
	var active vote.Snapshot
	decodeInto(t, rec, &active)
	if active.PollID != e.pollID || active.TotalVotes != 1 {
		t.Fatalf("unexpected active results: %+v", active)
	}
}

func TestVoteValidation(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/polls/1/votes", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing optionId, got %d", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/polls/1/votes", map[string]any{"optionId": 999})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown option, got %d", rec.Code)
	}
	var errBody map[string]string
	decodeInto(t, rec, &errBody)
	if errBody["error"] != "option_not_found" {
		t.Fatalf("expected option_not_found, got %q", errBody["error"])
	}

	rec = e.do(t, http.MethodPost, "/polls/999/votes", map[string]any{"optionId": 1})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown poll, got %d", rec.Code)
	}
}

func TestWebSocketReceivesResultUpdates(t *testing.T) {
	e := newTestEnv(t)

	srv := httptest.NewServer(e.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/ws/polls/1"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// the subscription lands shortly after the handshake completes
	deadline := time.Now().Add(2 * time.Second)
	for e.hub.SubscriberCount(e.pollID) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscription never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	body, _ := json.Marshal(map[string]any{"optionId": e.optionA})
	resp, err := http.Post(srv.URL+"/polls/1/votes", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("vote post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from vote, got %d", resp.StatusCode)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}

	var ev vote.ResultsEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if ev.Type != vote.EventResultsUpdated {
		t.Fatalf("expected %q event, got %q", vote.EventResultsUpdated, ev.Type)
	}
	if ev.PollID != e.pollID || ev.TotalVotes != 1 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if len(ev.Results) != 2 || ev.Results[0].Count != 1 {
		t.Fatalf("unexpected event results: %+v", ev.Results)
	}
}
