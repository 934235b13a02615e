package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fitpet-app/fitpet/internal/app/game"
	"github.com/fitpet-app/fitpet/internal/health"
	"github.com/fitpet-app/fitpet/internal/infra/clock"
	"github.com/fitpet-app/fitpet/internal/infra/sqlite"
)

func newTestServer(t *testing.T) (*Server, *clock.Fake) {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clk := clock.NewFake(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC))
	eng, err := game.NewEngine(db, clk, game.DefaultRules(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	srv := NewServer(eng, nil)
	srv.SetHealth(health.NewChecker(db, dir, nil))
	return srv, clk
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, w, &body)
	return body.Error.Code
}

func createPlayer(t *testing.T, srv *Server) string {
	t.Helper()
	w := do(t, srv, "POST", "/api/players",
		`{"display_name":"Robin","pet_name":"Ember","species":"dragon"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create player status = %d, body = %s", w.Code, w.Body.String())
	}
	var st game.Status
	decode(t, w, &st)
	return st.Player.ID
}

// ─── Health & Version ───────────────────────────────────────────────────────

func TestAPI_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]interface{}
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestAPI_Version(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.SetVersion("1.2.3")

	w := do(t, srv, "GET", "/api/version", "")
	var body map[string]string
	decode(t, w, &body)
	if body["version"] != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", body["version"])
	}
}

func TestAPI_MetricsDisabledByDefault(t *testing.T) {
	srv, _ := newTestServer(t)
	if w := do(t, srv, "GET", "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("/metrics status = %d, want 404", w.Code)
	}
	srv.EnableMetrics()
	if w := do(t, srv, "GET", "/metrics", ""); w.Code != http.StatusOK {
		t.Errorf("/metrics status = %d, want 200", w.Code)
	}
}

// ─── Players ────────────────────────────────────────────────────────────────

func TestAPI_CreateAndGetPlayer(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createPlayer(t, srv)

	w := do(t, srv, "GET", "/api/players/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var st game.Status
	decode(t, w, &st)
	if st.Player.DisplayName != "Robin" || st.Level != 1 {
		t.Errorf("status = %+v", st)
	}
	if st.Pet == nil || st.Pet.Name != "Ember" {
		t.Errorf("pet = %+v", st.Pet)
	}

	w = do(t, srv, "GET", "/api/players", "")
	var list struct {
		Players []json.RawMessage `json:"players"`
	}
	decode(t, w, &list)
	if len(list.Players) != 1 {
		t.Errorf("players = %d, want 1", len(list.Players))
	}
}

func TestAPI_CreatePlayer_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"malformed", `{`, http.StatusBadRequest, "invalid_input"},
		{"unknown field", `{"display_name":"A","level":99}`, http.StatusBadRequest, "invalid_input"},
		{"blank name", `{"display_name":"  "}`, http.StatusBadRequest, "invalid_input"},
		{"legacy species", `{"display_name":"A","species":"wolf"}`, http.StatusBadRequest, "unknown_species"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "POST", "/api/players", tt.body)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if got := errorCode(t, w); got != tt.wantErr {
				t.Errorf("code = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestAPI_UnknownPlayer(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/api/players/nope", "/api/players/nope/ledger", "/api/players/nope/shop"} {
		w := do(t, srv, "GET", path, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, w.Code)
		}
	}
	w := do(t, srv, "POST", "/api/players/nope/workouts", `{"type":"cardio","cardio":{"duration_minutes":20}}`)
	if w.Code != http.StatusNotFound || errorCode(t, w) != "player_not_found" {
		t.Errorf("POST workouts status = %d", w.Code)
	}
}

// ─── Workouts ───────────────────────────────────────────────────────────────

func TestAPI_LogWorkout(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createPlayer(t, srv)

	w := do(t, srv, "POST", "/api/players/"+id+"/workouts",
		`{"type":"strength","strength":{"weight":135,"reps":10,"sets":3}}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res game.WorkoutResult
	decode(t, w, &res)
	if res.Workout.XPEarned != 48 {
		t.Errorf("xp_earned = %d, want 48", res.Workout.XPEarned)
	}
	if res.Streak.State.Current != 1 {
		t.Errorf("streak = %d, want 1", res.Streak.State.Current)
	}
	if res.EssenceEarned <= 0 {
		t.Errorf("essence_earned = %d, want > 0", res.EssenceEarned)
	}

	w = do(t, srv, "GET", "/api/players/"+id+"/workouts?limit=5", "")
	var hist struct {
		Workouts []json.RawMessage `json:"workouts"`
	}
	decode(t, w, &hist)
	if len(hist.Workouts) != 1 {
		t.Errorf("history = %d, want 1", len(hist.Workouts))
	}
}

func TestAPI_LogWorkout_InvalidMetric(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createPlayer(t, srv)

	tests := []string{
		`{"type":"strength","strength":{"weight":-5,"reps":10,"sets":3}}`,
		`{"type":"cardio"}`,
		`{"type":"yoga"}`,
	}
	for _, body := range tests {
		w := do(t, srv, "POST", "/api/players/"+id+"/workouts", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestAPI_Templates(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createPlayer(t, srv)

	w := do(t, srv, "POST", "/api/templates", `{"name":"Leg Day","type":"strength","base_xp":120}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create template status = %d, body = %s", w.Code, w.Body.String())
	}
	var tmpl struct {
		ID string `json:"id"`
	}
	decode(t, w, &tmpl)

	w = do(t, srv, "POST", "/api/players/"+id+"/workouts",
		`{"type":"strength","template_id":"`+tmpl.ID+`","strength":{"weight":100,"reps":5,"sets":5}}`)
	if w.Code != http.StatusCreated {
		t.Errorf("templated workout status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, srv, "POST", "/api/players/"+id+"/workouts",
		`{"type":"strength","template_id":"missing","strength":{"weight":100,"reps":5,"sets":5}}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing template status = %d, want 404", w.Code)
	}

	w = do(t, srv, "GET", "/api/templates", "")
	var list struct {
		Templates []json.RawMessage `json:"templates"`
	}
	decode(t, w, &list)
	if len(list.Templates) != 1 {
		t.Errorf("templates = %d, want 1", len(list.Templates))
	}
}

// ─── Pet ────────────────────────────────────────────────────────────────────

func TestAPI_FeedAndRefresh(t *testing.T) {
	srv, clk := newTestServer(t)
	id := createPlayer(t, srv)

	w := do(t, srv, "POST", "/api/players/"+id+"/pet/feed", `{"tier":"small"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("feed status = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, srv, "POST", "/api/players/"+id+"/pet/feed", `{"tier":"enormous"}`)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "unknown_treat" {
		t.Errorf("unknown treat status = %d", w.Code)
	}

	clk.AdvanceDays(2)
	w = do(t, srv, "POST", "/api/players/"+id+"/refresh", "")
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", w.Code)
	}
	var body struct {
		Status game.Status `json:"status"`
	}
	decode(t, w, &body)
	if body.Status.Pet == nil || body.Status.Pet.Happiness >= 100 {
		t.Errorf("pet after refresh = %+v", body.Status.Pet)
	}
}

func TestAPI_RecoverIneligible(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createPlayer(t, srv)

	w := do(t, srv, "POST", "/api/players/"+id+"/pet/recover", `{"method":"workouts"}`)
	if w.Code != http.StatusUnprocessableEntity || errorCode(t, w) != "recovery_ineligible" {
		t.Errorf("recover status = %d", w.Code)
	}
}

// ─── Shop ───────────────────────────────────────────────────────────────────

func TestAPI_ShopFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createPlayer(t, srv)
	base := "/api/players/" + id

	if w := do(t, srv, "POST", base+"/pet/accessories/hat_sweatband", ""); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("equip unowned status = %d, want 422", w.Code)
	}
	if w := do(t, srv, "POST", base+"/shop/hat_sweatband", ""); w.Code != http.StatusOK {
		t.Fatalf("purchase status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := do(t, srv, "POST", base+"/shop/hat_sweatband", ""); w.Code != http.StatusConflict {
		t.Errorf("repurchase status = %d, want 409", w.Code)
	}
	if w := do(t, srv, "POST", base+"/shop/hat_crown", ""); w.Code != http.StatusPaymentRequired {
		t.Errorf("unaffordable status = %d, want 402", w.Code)
	}
	if w := do(t, srv, "POST", base+"/shop/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown accessory status = %d, want 404", w.Code)
	}

	w := do(t, srv, "POST", base+"/pet/accessories/hat_sweatband", "")
	if w.Code != http.StatusOK {
		t.Fatalf("equip status = %d", w.Code)
	}
	var st game.Status
	decode(t, w, &st)
	if !st.Pet.EquippedAccessoryIDs.Has("hat_sweatband") {
		t.Error("accessory not equipped")
	}

	w = do(t, srv, "DELETE", base+"/pet/accessories/hat_sweatband", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unequip status = %d", w.Code)
	}

	w = do(t, srv, "GET", base+"/ledger", "")
	var ledger struct {
		Entries []struct {
			Amount int64  `json:"amount"`
			Reason string `json:"reason"`
		} `json:"entries"`
	}
	decode(t, w, &ledger)
	if len(ledger.Entries) != 2 || ledger.Entries[0].Amount != -40 {
		t.Errorf("ledger = %+v", ledger.Entries)
	}
}

func TestAPI_Catalogs(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/api/catalog", "/api/treats", "/api/milestones", "/api/unlocks"} {
		w := do(t, srv, "GET", path, "")
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, w.Code)
		}
	}

	w := do(t, srv, "GET", "/api/milestones", "")
	var body struct {
		Milestones []struct {
			Level int `json:"level"`
		} `json:"milestones"`
	}
	decode(t, w, &body)
	if len(body.Milestones) == 0 || body.Milestones[0].Level != 5 {
		t.Errorf("milestones = %+v", body.Milestones)
	}
}

// ─── Concurrency ────────────────────────────────────────────────────────────

func TestAPI_ConcurrentWorkoutsSamePlayer(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createPlayer(t, srv)
	h := srv.Handler()

	const n = 8
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest("POST", "/api/players/"+id+"/workouts",
				strings.NewReader(`{"type":"cardio","cardio":{"duration_minutes":20}}`))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	for i, c := range codes {
		if c != http.StatusCreated {
			t.Errorf("request %d status = %d", i, c)
		}
	}
	w := do(t, srv, "GET", "/api/players/"+id, "")
	var st game.Status
	decode(t, w, &st)
	if st.WorkoutCount != n {
		t.Errorf("workout_count = %d, want %d", st.WorkoutCount, n)
	}
	if srv.locks.size() != 0 {
		t.Errorf("lock entries = %d after all requests, want 0", srv.locks.size())
	}
}

func TestPlayerLocks_Serializes(t *testing.T) {
	locks := newPlayerLocks()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("p1")
			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxSeen)
	}
	if locks.size() != 0 {
		t.Errorf("size() = %d, want 0", locks.size())
	}
}

func TestPlayerLocks_IndependentPlayers(t *testing.T) {
	locks := newPlayerLocks()
	unlockA := locks.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("b")
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
	unlockA()
}

// size reports how many players currently have a lock entry.
func (p *playerLocks) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}
