package model

import (
	"encoding/json"
	"time"
)

// RotatingProteinKey is the wire value used by slot items whose meal is
// decided by the active week of the protein rotation rather than being a
// fixed meal id.
const RotatingProteinKey = "week-protein"

// MealRef identifies the meal of a slot item. It is either a literal meal
// id or the rotating-protein placeholder. Keeping the placeholder as a tag
// instead of a magic string makes resolution exhaustive: every consumer
// must decide what a rotating reference means.
type MealRef struct {
	ID       string
	Rotating bool
}

// LiteralRef returns a reference to a concrete meal id.
func LiteralRef(id string) MealRef { return MealRef{ID: id} }

// RotatingRef returns the rotating-protein placeholder reference.
func RotatingRef() MealRef { return MealRef{Rotating: true} }

func (r MealRef) MarshalJSON() ([]byte, error) {
	if r.Rotating {
		return json.Marshal(RotatingProteinKey)
	}
	return json.Marshal(r.ID)
}

func (r *MealRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == RotatingProteinKey {
		*r = MealRef{Rotating: true}
		return nil
	}
	*r = MealRef{ID: s}
	return nil
}

// Ingredient is a single line of a meal's ingredient list. Quantity is the
// amount for one serving.
type Ingredient struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

// Meal is one entry of the meal catalog. Immutable once loaded.
type Meal struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
}

// SlotItem is one meal placement inside a slot.
type SlotItem struct {
	MealRef  MealRef `json:"mealId"`
	Servings float64 `json:"servings"`
}

// Slot is a named moment of a template day (e.g. "almoco", "jantar")
// holding one or more meal placements.
type Slot struct {
	Time  string     `json:"time"`
	Items []SlotItem `json:"items"`
}

// UnmarshalJSON accepts both the current shape ({time, items}) and the
// legacy single-meal shape ({time, mealId, servings}), normalizing the
// latter to a one-item list.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var raw struct {
		Time     string     `json:"time"`
		Items    []SlotItem `json:"items"`
		MealID   *MealRef   `json:"mealId"`
		Servings float64    `json:"servings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Time = raw.Time
	s.Items = raw.Items
	if len(s.Items) == 0 && raw.MealID != nil {
		servings := raw.Servings
		if servings == 0 {
			servings = 1
		}
		s.Items = []SlotItem{{MealRef: *raw.MealID, Servings: servings}}
	}
	return nil
}

// TemplateDay is a positional element of the template cycle. It is not
// bound to a specific weekday; the cycle repeats by its own length.
type TemplateDay struct {
	Slots []Slot `json:"slots"`
}

// Template is the ordered day cycle of a plan.
type Template struct {
	Days []TemplateDay `json:"days"`
}

// RotationEntry is one week of the protein rotation.
type RotationEntry struct {
	ID        string `json:"id"`
	ProteinID string `json:"proteinId"`
	Label     string `json:"label"`
}

// Plan is one meal plan of the catalog.
type Plan struct {
	ID                string          `json:"id"`
	Template          Template        `json:"template"`
	ProteinRotation   []RotationEntry `json:"proteinRotation"`
	FallbackProteinID string          `json:"fallbackProteinId"`
}

// PlanCatalog is the plan source document.
type PlanCatalog struct {
	DefaultPlanID string `json:"defaultPlanId"`
	Plans         []Plan `json:"plans"`
}

// ResolvedItem is a slot item after rotating references have been resolved
// to a concrete meal id and a display name.
type ResolvedItem struct {
	MealID   string
	MealName string
	Servings float64
}

// ResolvedSlot mirrors Slot with all items resolved.
type ResolvedSlot struct {
	Time  string
	Items []ResolvedItem
}

// ScheduleDay is one materialized day of the horizon. Derived, never
// persisted.
type ScheduleDay struct {
	Date      time.Time
	WeekIndex int
	WeekLabel string
	Slots     []ResolvedSlot
}

// ShoppingItem is one aggregated ingredient line, keyed by (name, unit).
type ShoppingItem struct {
	Name    string
	Unit    string
	Total   float64
	Sources []string
}

// DateRange is a half-open [Start, End) span of civil days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// PrepBlock is a recurring prep reminder covering a span of days.
type PrepBlock struct {
	Kind   string
	Label  string
	Date   time.Time
	Covers DateRange
	Tasks  []string
}

// Category classifies calendar events for rendering and ordering.
type Category string

const (
	CategoryPrep        Category = "prep"
	CategoryShopping    Category = "shopping"
	CategoryPackedLunch Category = "marmita"
	CategoryLunch       Category = "almoco"
	CategoryDinner      Category = "jantar"
	CategoryMeal        Category = "meal"
)

// Event is a calendar-ready, all-day event. Order is the primary tie-break
// among events of the same date, before title comparison.
type Event struct {
	ID       string
	Title    string
	Date     time.Time
	Category Category
	Order    float64

	// Payload, populated per category.
	SlotTime  string
	WeekLabel string
	Items     []ResolvedItem
	Shopping  []ShoppingItem
	Tasks     []string
	Covers    *DateRange
}
