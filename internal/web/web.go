// Package web serves the engine's derived artifacts over HTTP: the event
// list, per-week shopping lists, prep blocks, an iCalendar feed, and a
// small embedded calendar page used by the snapshot capture.
package web

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/csiqueirasilva/diet-helper/internal/config"
	"github.com/csiqueirasilva/diet-helper/internal/dates"
	"github.com/csiqueirasilva/diet-helper/internal/icsfeed"
	appLog "github.com/csiqueirasilva/diet-helper/internal/log"
	"github.com/csiqueirasilva/diet-helper/internal/model"
	"github.com/csiqueirasilva/diet-helper/internal/plan"
	"github.com/csiqueirasilva/diet-helper/internal/schedule"
)

// Server exposes the meal-plan API and the static calendar page.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	// anchorInput is the user-editable anchor date (YYYY-MM-DD) passed on
	// the command line; empty means "most recent Sunday from today".
	anchorInput string

	// Derived snapshot cache. Rebuilding means re-reading the source
	// documents and rerunning the whole derivation; handlers reuse the
	// cached result until the cron refresh fires or the civil day rolls
	// over.
	snapMu sync.RWMutex
	snap   *snapshot
}

// snapshot is one fully derived engine result plus its cache metadata.
type snapshot struct {
	result    schedule.Result
	todayKey  string
	updatedAt time.Time
}

//go:embed static
var embeddedStatic embed.FS

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, anchorInput string) *Server {
	s := &Server{
		cfg:         cfg,
		anchorInput: anchorInput,
		mux:         http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/shopping", s.handleShopping)
	s.mux.HandleFunc("/api/prep", s.handlePrep)
	s.mux.HandleFunc("/calendar.ics", s.handleICS)
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Refresh discards the cached snapshot and rebuilds it from the source
// documents. Used by the cron refresh in serve mode.
func (s *Server) Refresh() {
	if _, err := s.rebuild(); err != nil {
		appLog.Error("refresh failed", err, "data_dir", s.cfg.DataDir)
	}
}

// current returns a usable snapshot, rebuilding when none is cached yet
// or the civil day has rolled over since the last build.
func (s *Server) current() (*snapshot, error) {
	todayKey := dates.FormatDayKey(time.Now())

	s.snapMu.RLock()
	snap := s.snap
	s.snapMu.RUnlock()
	if snap != nil && snap.todayKey == todayKey {
		return snap, nil
	}

	return s.rebuild()
}

func (s *Server) rebuild() (*snapshot, error) {
	sources, err := plan.LoadSources(s.cfg.DataDir)
	if err != nil {
		return nil, err
	}

	result := schedule.Build(schedule.BuildInput{
		Catalog:               sources.Catalog,
		Meals:                 sources.Meals,
		Today:                 time.Now(),
		AnchorInput:           s.anchorInput,
		HorizonDays:           s.cfg.HorizonDays,
		ShoppingFrequencyDays: s.cfg.ShoppingFrequencyDays,
		ShoppingAnchorInput:   s.cfg.ShoppingAnchorDate,
		PrepTasks:             s.cfg.PrepTasks,
	})

	snap := &snapshot{
		result:    result,
		todayKey:  dates.FormatDayKey(time.Now()),
		updatedAt: time.Now(),
	}

	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()

	appLog.Info("snapshot rebuilt",
		"anchor", dates.FormatDayKey(result.Anchor),
		"horizon_days", result.HorizonDays,
		"day_count", len(result.Days),
		"event_count", len(result.Events),
	)

	return snap, nil
}

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	Anchor      string     `json:"anchor"`
	HorizonDays int        `json:"horizon_days"`
	GeneratedAt time.Time  `json:"generated_at"`
	Events      []eventDTO `json:"events"`
}

type eventDTO struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Date      string            `json:"date"`
	Category  string            `json:"category"`
	Order     float64           `json:"order"`
	SlotTime  string            `json:"slot_time,omitempty"`
	WeekLabel string            `json:"week_label,omitempty"`
	Items     []itemDTO         `json:"items,omitempty"`
	Shopping  []shoppingItemDTO `json:"shopping,omitempty"`
	Tasks     []string          `json:"tasks,omitempty"`
	Covers    *coverDTO         `json:"covers,omitempty"`
}

type itemDTO struct {
	MealID   string  `json:"meal_id"`
	MealName string  `json:"meal_name"`
	Servings float64 `json:"servings"`
}

type shoppingItemDTO struct {
	Name    string   `json:"name"`
	Unit    string   `json:"unit"`
	Total   float64  `json:"total"`
	Sources []string `json:"sources"`
}

type coverDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// shoppingResponse is the JSON response shape for /api/shopping.
type shoppingResponse struct {
	WeekIndex        int               `json:"week_index"`
	Label            string            `json:"label"`
	Start            string            `json:"start"`
	NextShoppingDate string            `json:"next_shopping_date"`
	Items            []shoppingItemDTO `json:"items"`
	Lines            []string          `json:"lines"`
}

// prepResponse is the JSON response shape for /api/prep.
type prepResponse struct {
	Blocks []prepBlockDTO `json:"blocks"`
}

type prepBlockDTO struct {
	Kind   string   `json:"kind"`
	Label  string   `json:"label"`
	Date   string   `json:"date"`
	Covers coverDTO `json:"covers"`
	Tasks  []string `json:"tasks"`
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.current()
	if err != nil {
		appLog.Error("api events: snapshot unavailable", err)
		writeError(w, http.StatusInternalServerError, "failed to load plan data")
		return
	}

	events := make([]eventDTO, 0, len(snap.result.Events))
	for _, ev := range snap.result.Events {
		events = append(events, toEventDTO(ev))
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Anchor:      dates.FormatDayKey(snap.result.Anchor),
		HorizonDays: snap.result.HorizonDays,
		GeneratedAt: snap.updatedAt,
		Events:      events,
	})
}

// handleShopping returns one week's aggregated shopping list.
//
// GET /api/shopping?week=N — N defaults to the current week from today.
func (s *Server) handleShopping(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current()
	if err != nil {
		appLog.Error("api shopping: snapshot unavailable", err)
		writeError(w, http.StatusInternalServerError, "failed to load plan data")
		return
	}

	weekIndex := snap.result.CurrentWeekIndex
	if raw := r.URL.Query().Get("week"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "week must be a non-negative integer")
			return
		}
		weekIndex = n
	}

	week, ok := snap.result.Week(weekIndex)
	if !ok {
		writeError(w, http.StatusNotFound, "week outside the horizon")
		return
	}

	writeJSON(w, http.StatusOK, shoppingResponse{
		WeekIndex:        week.WeekIndex,
		Label:            week.Label,
		Start:            dates.FormatDayKey(week.Start),
		NextShoppingDate: dates.FormatDayKey(snap.result.NextShoppingDate),
		Items:            toShoppingDTOs(week.ShoppingList),
		Lines:            schedule.FormatShoppingLines(week.ShoppingList),
	})
}

func (s *Server) handlePrep(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.current()
	if err != nil {
		appLog.Error("api prep: snapshot unavailable", err)
		writeError(w, http.StatusInternalServerError, "failed to load plan data")
		return
	}

	blocks := make([]prepBlockDTO, 0, len(snap.result.Prep))
	for _, block := range snap.result.Prep {
		blocks = append(blocks, prepBlockDTO{
			Kind:  block.Kind,
			Label: block.Label,
			Date:  dates.FormatDayKey(block.Date),
			Covers: coverDTO{
				Start: dates.FormatDayKey(block.Covers.Start),
				End:   dates.FormatDayKey(block.Covers.End),
			},
			Tasks: block.Tasks,
		})
	}

	writeJSON(w, http.StatusOK, prepResponse{Blocks: blocks})
}

func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.current()
	if err != nil {
		appLog.Error("api ics: snapshot unavailable", err)
		writeError(w, http.StatusInternalServerError, "failed to load plan data")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(icsfeed.Render(snap.result.Events, snap.updatedAt)))
}

// staticFileServer serves the embedded calendar page. API paths never fall
// through to it.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "calendar page not available", http.StatusServiceUnavailable)
		})
	}
	return http.FileServer(http.FS(sub))
}

func toEventDTO(ev model.Event) eventDTO {
	dto := eventDTO{
		ID:        ev.ID,
		Title:     ev.Title,
		Date:      dates.FormatDayKey(ev.Date),
		Category:  string(ev.Category),
		Order:     ev.Order,
		SlotTime:  ev.SlotTime,
		WeekLabel: ev.WeekLabel,
		Shopping:  toShoppingDTOs(ev.Shopping),
		Tasks:     ev.Tasks,
	}
	for _, item := range ev.Items {
		dto.Items = append(dto.Items, itemDTO{
			MealID:   item.MealID,
			MealName: item.MealName,
			Servings: item.Servings,
		})
	}
	if ev.Covers != nil {
		dto.Covers = &coverDTO{
			Start: dates.FormatDayKey(ev.Covers.Start),
			End:   dates.FormatDayKey(ev.Covers.End),
		}
	}
	return dto
}

func toShoppingDTOs(items []model.ShoppingItem) []shoppingItemDTO {
	if len(items) == 0 {
		return nil
	}
	out := make([]shoppingItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, shoppingItemDTO{
			Name:    item.Name,
			Unit:    item.Unit,
			Total:   item.Total,
			Sources: item.Sources,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to encode JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
