// Package api provides the HTTP API for observing and steering the colony.
// GET endpoints are public (read-only observation).
// POST and DELETE endpoints require a bearer token and are rate limited.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/engine"
	"github.com/talgya/colony/internal/persistence"
	"github.com/talgya/colony/internal/resources"
	"github.com/talgya/colony/internal/world"
	"github.com/talgya/colony/internal/zones"
)

const maxBodySize = 1 << 16

// Server serves the colony over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB // optional
	AdminKey string          // Bearer token for writes. Empty = writes disabled.

	log     zerolog.Logger
	limiter *RateLimiter
}

// NewServer creates an API server. Writes are limited to 60 per minute per
// client.
func NewServer(sim *engine.Simulation, eng *engine.Engine, db *persistence.DB, adminKey string, log zerolog.Logger) *Server {
	return &Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		AdminKey: adminKey,
		log:      log.With().Str("component", "api").Logger(),
		limiter:  NewRateLimiter(60, time.Minute),
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/status", s.handleStatus)
		v1.Get("/agents", s.handleAgents)
		v1.Get("/agents/{id}", s.handleAgent)
		v1.Get("/tiles/{x}/{y}", s.handleTile)
		v1.Get("/zones", s.handleZones)
		v1.Get("/events", s.handleEvents)

		v1.Group(func(admin chi.Router) {
			admin.Use(s.limiter.Middleware)
			admin.Use(s.adminOnly)
			admin.Post("/agents", s.handleSpawnAgent)
			admin.Post("/agents/{id}/order", s.handleOrder)
			admin.Delete("/agents/{id}/order", s.handleClearOrder)
			admin.Post("/agents/{id}/remotivate", s.handleRemotivate)
			admin.Post("/agents/{id}/condition", s.handleCondition)
			admin.Post("/zones", s.handleDesignateZone)
			admin.Patch("/zones/{id}", s.handleUpdateZone)
			admin.Delete("/zones/{id}", s.handleUndesignateZone)
			admin.Post("/zones/{id}/deliver", s.handleDeliver)
			admin.Post("/plants/{x}/{y}/designate", s.handleDesignatePlant)
			admin.Post("/regenerate", s.handleRegenerate)
			admin.Post("/index/rebuild", s.handleRebuildIndex)
			admin.Post("/speed", s.handleSpeed)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go s.limiter.RunCleanup(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Bool("admin_auth", s.AdminKey != "").Msg("HTTP API starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires the bearer token on every request it wraps.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			writeJSON(w, http.StatusForbidden, map[string]any{"error": "admin endpoints disabled (no COLONY_ADMIN_KEY set)"})
			return
		}
		if !s.checkBearerToken(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.Sim.StatsSnapshot()
	tick := s.Sim.CurrentTick()
	dims := s.Sim.Index.Dimensions()

	motivations := make(map[string]int, len(st.Motivations))
	for m, n := range st.Motivations {
		motivations[m.String()] = n
	}
	status := map[string]any{
		"tick":        tick,
		"sim_time":    engine.SimTime(tick),
		"seed":        s.Sim.Seed(),
		"generation":  s.Sim.Generation(),
		"width":       dims.Width,
		"length":      dims.Length,
		"population":  st.Population,
		"plants":      st.Plants,
		"food_items":  st.FoodItems,
		"avg_food":    st.AvgFood,
		"avg_sleep":   st.AvgSleep,
		"motivations": motivations,
		"zones":       len(s.Sim.ZoneList()),
	}
	tiles := make(map[string]int)
	for t, n := range s.Sim.Index.TileCounts() {
		tiles[t.String()] = n
	}
	status["tiles"] = tiles
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
	}
	if s.DB != nil {
		status["session"] = s.DB.Session()
		if last, err := s.DB.GetMeta("last_tick"); err == nil {
			status["persisted_tick"] = last
		}
		if days, err := s.DB.DailyStatsCount(); err == nil {
			status["days_recorded"] = days
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleAgents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Agents())
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := agentIDParam(w, r)
	if !ok {
		return
	}
	view, err := s.Sim.Agent(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid coordinates"})
		return
	}
	view, err := s.Sim.Tile(x, y)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type zoneResponse struct {
	ID                zones.ZoneID `json:"id"`
	Type              string       `json:"type"`
	Plant             string       `json:"plant,omitempty"`
	MaterialDelivered bool         `json:"material_delivered"`
	Area              world.Rect   `json:"area"`
}

func newZoneResponse(d zones.Designation) zoneResponse {
	out := zoneResponse{ID: d.ID, Type: d.Zone.Type.String(), MaterialDelivered: d.Zone.MaterialDelivered, Area: d.Area}
	if crop, ok := d.Zone.FarmPlant(); ok {
		out.Plant = crop.String()
	}
	return out
}

func (s *Server) handleZones(w http.ResponseWriter, _ *http.Request) {
	list := s.Sim.ZoneList()
	out := make([]zoneResponse, 0, len(list))
	for _, d := range list {
		out = append(out, newZoneResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleEvents serves recent events, newest first. ?source=db reads the
// persisted log instead of the in-memory buffer.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "limit must be 1-1000"})
			return
		}
		limit = n
	}

	if r.URL.Query().Get("source") == "db" && s.DB != nil {
		events, err := s.DB.RecentEvents(limit)
		if err != nil {
			s.log.Error().Err(err).Msg("recent events query failed")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "event store unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, events)
		return
	}

	all, _ := s.Sim.EventsSince(0)
	out := make([]engine.Event, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSpawnAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actor string `json:"actor"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	actor, ok := agents.ParseActorType(req.Actor)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown actor type"})
		return
	}
	id, err := s.Sim.SpawnAgent(actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := agentIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Order string `json:"order"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Order) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "order must not be empty"})
		return
	}
	if err := s.Sim.IssueOrder(id, req.Order); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"agent_id": id, "order": req.Order})
}

func (s *Server) handleClearOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := agentIDParam(w, r)
	if !ok {
		return
	}
	if err := s.Sim.ClearOrder(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemotivate(w http.ResponseWriter, r *http.Request) {
	id, ok := agentIDParam(w, r)
	if !ok {
		return
	}
	if err := s.Sim.Remotivate(id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"agent_id": id})
}

func (s *Server) handleCondition(w http.ResponseWriter, r *http.Request) {
	id, ok := agentIDParam(w, r)
	if !ok {
		return
	}
	var c engine.Condition
	if !decodeBody(w, r, &c) {
		return
	}
	if err := s.Sim.SetCondition(id, c); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, c)
}

func (s *Server) handleDesignateZone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type   string `json:"type"`
		Plant  string `json:"plant"`
		X      int    `json:"x"`
		Y      int    `json:"y"`
		Width  int    `json:"width"`
		Length int    `json:"length"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	z := zones.Default()
	if req.Type != "" {
		t, ok := zones.ParseZoneType(req.Type)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown zone type"})
			return
		}
		z.Type = t
	}
	if req.Plant != "" {
		p, ok := resources.ParsePlantType(req.Plant)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown plant type"})
			return
		}
		z.Plant = p
	}
	id, err := s.Sim.DesignateZone(world.NewRect(req.X, req.Y, req.Width, req.Length), z)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleUpdateZone(w http.ResponseWriter, r *http.Request) {
	id, ok := zoneIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Type  string `json:"type"`
		Plant string `json:"plant"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	var (
		zt   *zones.ZoneType
		crop *resources.PlantType
	)
	if req.Type != "" {
		t, ok := zones.ParseZoneType(req.Type)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown zone type"})
			return
		}
		zt = &t
	}
	if req.Plant != "" {
		p, ok := resources.ParsePlantType(req.Plant)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown plant type"})
			return
		}
		crop = &p
	}
	if err := s.Sim.UpdateZone(id, zt, crop); err != nil {
		s.writeError(w, err)
		return
	}
	d, _ := s.Sim.Zone(id)
	writeJSON(w, http.StatusOK, newZoneResponse(d))
}

func (s *Server) handleUndesignateZone(w http.ResponseWriter, r *http.Request) {
	id, ok := zoneIDParam(w, r)
	if !ok {
		return
	}
	if err := s.Sim.UndesignateZone(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeliver(w http.ResponseWriter, r *http.Request) {
	id, ok := zoneIDParam(w, r)
	if !ok {
		return
	}
	if err := s.Sim.DeliverMaterial(id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"id": id})
}

func (s *Server) handleDesignatePlant(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid coordinates"})
		return
	}
	var req struct {
		Work string `json:"work"` // "forage" or "chop"
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Work != "forage" && req.Work != "chop" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "work must be forage or chop"})
		return
	}
	if err := s.Sim.DesignatePlant(world.Position{X: x, Y: y}, req.Work == "chop"); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"x": x, "y": y, "work": req.Work})
}

func (s *Server) handleRegenerate(w http.ResponseWriter, _ *http.Request) {
	if err := s.Sim.Regenerate(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"generation": s.Sim.Generation()})
}

// handleRebuildIndex rebuilds the spatial index from the tile list and
// reports whether it matched the live one.
func (s *Server) handleRebuildIndex(w http.ResponseWriter, _ *http.Request) {
	matched := s.Sim.RebuildIndex()
	if !matched {
		s.log.Warn().Msg("rebuilt index differed from live index")
	}
	writeJSON(w, http.StatusOK, map[string]any{"matched": matched})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "engine not attached"})
		return
	}
	var req struct {
		Speed float64 `json:"speed"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Speed < 0 || req.Speed > 1000 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "speed must be 0-1000"})
		return
	}
	s.Eng.SetSpeed(req.Speed)
	s.log.Info().Float64("speed", req.Speed).Msg("speed changed")
	writeJSON(w, http.StatusOK, map[string]float64{"speed": s.Eng.Speed()})
}

// writeError maps domain errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrAgentNotFound), errors.Is(err, zones.ErrZoneNotFound), errors.Is(err, engine.ErrNoPlant):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	case errors.Is(err, world.ErrOutOfBounds):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
	case errors.Is(err, engine.ErrNoStandingRoom):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}

func agentIDParam(w http.ResponseWriter, r *http.Request) (agents.AgentID, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid agent id"})
		return 0, false
	}
	return agents.AgentID(n), true
}

func zoneIDParam(w http.ResponseWriter, r *http.Request) (zones.ZoneID, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid zone id"})
		return 0, false
	}
	return zones.ZoneID(n), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}
