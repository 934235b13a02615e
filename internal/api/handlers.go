package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fitpet-app/fitpet/internal/app/game"
	"github.com/fitpet-app/fitpet/internal/domain"
)

// ─── Catalog & Rules ────────────────────────────────────────────────────────

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accessories": s.engine.Catalog(),
	})
}

func (s *Server) handleTreats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"treats": s.engine.Treats(),
	})
}

func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	type milestone struct {
		Level   int      `json:"level"`
		Unlocks []string `json:"unlocks"`
	}
	levels := s.engine.Milestones()
	out := make([]milestone, 0, len(levels))
	for _, lvl := range levels {
		unlocks := s.engine.MilestoneUnlocks(lvl)
		if unlocks == nil {
			unlocks = []string{}
		}
		out = append(out, milestone{Level: lvl, Unlocks: unlocks})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"milestones": out})
}

func (s *Server) handleUnlocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"unlocks": s.engine.Requirements(),
	})
}

// ─── Templates ──────────────────────────────────────────────────────────────

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.Templates(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.WorkoutTemplate{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": list})
}

type createTemplateRequest struct {
	Name   string             `json:"name"`
	Type   domain.WorkoutType `json:"type"`
	BaseXP int64              `json:"base_xp"`
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	tmpl, err := s.engine.CreateTemplate(r.Context(), req.Name, req.Type, req.BaseXP)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}

// ─── Players ────────────────────────────────────────────────────────────────

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.engine.Players(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if players == nil {
		players = []domain.Player{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"players": players})
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req game.NewPlayer
	if err := decodeJSON(r, &req); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	st, err := s.engine.CreatePlayer(r.Context(), req)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.Status(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	st, decay, err := s.engine.Refresh(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": st,
		"decay":  decay,
	})
}

// ─── Workouts ───────────────────────────────────────────────────────────────

func (s *Server) handleLogWorkout(w http.ResponseWriter, r *http.Request) {
	var req game.WorkoutInput
	if err := decodeJSON(r, &req); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	res, err := s.engine.LogWorkout(r.Context(), chi.URLParam(r, "playerID"), req)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.History(r.Context(), chi.URLParam(r, "playerID"), queryLimit(r))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"workouts": list})
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := s.engine.Ledger(r.Context(), chi.URLParam(r, "playerID"), queryLimit(r))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// ─── Pet ────────────────────────────────────────────────────────────────────

type feedRequest struct {
	Tier domain.TreatTier `json:"tier"`
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	var req feedRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	st, err := s.engine.FeedTreat(r.Context(), chi.URLParam(r, "playerID"), req.Tier)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type recoverRequest struct {
	Method domain.RecoveryMethod `json:"method"`
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	st, err := s.engine.RecoverPet(r.Context(), chi.URLParam(r, "playerID"), req.Method)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleEquip(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.EquipAccessory(r.Context(),
		chi.URLParam(r, "playerID"), chi.URLParam(r, "accessoryID"))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUnequip(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.UnequipAccessory(r.Context(),
		chi.URLParam(r, "playerID"), chi.URLParam(r, "accessoryID"))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ─── Shop ───────────────────────────────────────────────────────────────────

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	items, err := s.engine.Shop(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.PurchaseAccessory(r.Context(),
		chi.URLParam(r, "playerID"), chi.URLParam(r, "accessoryID"))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
