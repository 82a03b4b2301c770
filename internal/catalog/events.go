// Package catalog holds the static competition data the service is
// configured with: the event registry, distance configuration, the
// all-around distance sequences and reference record times. Upstream
// event listings can be merged in at runtime.
package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lapedge/lapedge/internal/domain/model"
)

// Source identifiers for provider adapter resolution.
const (
	SourceISUResults = "isuresults"
	SourceSchaatsen  = "schaatsen"
)

// Event types.
const (
	TypeSprint    = "sprint"
	TypeAllround  = "allround"
	TypeDistances = "distances"
)

var configEvents = []model.Event{
	{
		ID:        "owg-milano-2026",
		Name:      "Olympic Winter Games Milano Cortina 2026",
		Location:  "Milano Speed Skating Stadium",
		Country:   "ITA",
		StartDate: "2026-02-06",
		EndDate:   "2026-02-21",
		Timezone:  "Europe/Rome",
		Source:    SourceISUResults,
		SourceURL: "https://live.isuresults.eu",
		Venue:     "milano",
		Olympic:   true,
	},
	{
		ID:        "wc-heerenveen-2024",
		Name:      "World Cup Heerenveen",
		Location:  "Thialf, Heerenveen",
		Country:   "NED",
		StartDate: "2024-12-13",
		EndDate:   "2024-12-15",
		Timezone:  "Europe/Amsterdam",
		Source:    SourceISUResults,
		SourceURL: "https://live.isuresults.eu",
		Venue:     "thialf",
	},
	{
		ID:        "wc-calgary-2024",
		Name:      "World Cup Calgary",
		Location:  "Olympic Oval, Calgary",
		Country:   "CAN",
		StartDate: "2024-12-06",
		EndDate:   "2024-12-08",
		Timezone:  "America/Edmonton",
		Source:    SourceISUResults,
		SourceURL: "https://live.isuresults.eu",
		Venue:     "calgary",
	},
	{
		ID:        "nk-sprint-2024",
		Name:      "NK Sprint",
		Location:  "Thialf, Heerenveen",
		Country:   "NED",
		StartDate: "2024-12-21",
		EndDate:   "2024-12-22",
		Timezone:  "Europe/Amsterdam",
		Source:    SourceSchaatsen,
		SourceURL: "https://liveresults.schaatsen.nl",
		Venue:     "thialf",
	},
}

// Distance sets per event type.
var (
	sprintDistances   = []int{500, 1000}
	allroundDistances = []int{500, 1500, 3000, 5000, 10000}
	allDistances      = []int{500, 1000, 1500, 3000, 5000, 10000}
)

// Meerkamp sequences in skating order. Women's allround tops out at
// 5000m, men's at 10000m.
var meerkampSequences = map[string]map[model.Gender][]int{
	TypeSprint: {
		model.GenderWomen: {500, 1000},
		model.GenderMen:   {500, 1000},
	},
	TypeAllround: {
		model.GenderWomen: {500, 3000, 1500, 5000},
		model.GenderMen:   {500, 5000, 1500, 10000},
	},
}

var distanceConfigs = map[int]model.DistanceInfo{
	500:   {Laps: 1, InnerStart: true, Name: "500m"},
	1000:  {Laps: 2.5, InnerStart: false, Name: "1000m"},
	1500:  {Laps: 3.75, InnerStart: true, Name: "1500m"},
	3000:  {Laps: 7.5, InnerStart: false, Name: "3000m"},
	5000:  {Laps: 12.5, InnerStart: true, Name: "5000m"},
	10000: {Laps: 25, InnerStart: false, Name: "10.000m"},
}

// Catalog is the event registry. The static configuration is fixed at
// construction; discovered upstream events can be registered later and
// are kept separate from the configured set.
type Catalog struct {
	mu         sync.RWMutex
	events     []model.Event
	discovered map[string]model.Event
	now        func() time.Time
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// WithEvents replaces the built-in event registry.
func WithEvents(events []model.Event) Option {
	return func(c *Catalog) {
		c.events = events
	}
}

// New builds a Catalog over the built-in registry.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		events:     configEvents,
		discovered: make(map[string]model.Event),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Event looks up a configured or discovered event by id.
func (c *Catalog) Event(id string) (model.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ev := range c.events {
		if ev.ID == id {
			return ev, true
		}
	}
	ev, ok := c.discovered[id]
	return ev, ok
}

// ActiveEvents returns configured events that have not yet ended (end
// date extended by one day to tolerate end-of-day races).
func (c *Catalog) ActiveEvents() []model.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	active := make([]model.Event, 0, len(c.events))
	for _, ev := range c.events {
		end, err := ev.EndAt()
		if err != nil {
			continue
		}
		if end.AddDate(0, 0, 1).After(now) {
			ev.EventType = EventType(ev)
			active = append(active, ev)
		}
	}
	return active
}

// RegisterDiscovered stores events found in upstream listings so later
// race-data lookups can resolve them by id.
func (c *Catalog) RegisterDiscovered(events []model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ev := range events {
		if ev.ID == "" {
			continue
		}
		c.discovered[ev.ID] = ev
	}
}

// MergedEvents returns active configured events plus discovered ones
// that do not duplicate a configured upstream id, sorted by start date.
func (c *Catalog) MergedEvents() []model.Event {
	active := c.ActiveEvents()

	c.mu.RLock()
	seen := make(map[string]bool, len(active))
	for _, ev := range active {
		if ev.ISUEventID != "" {
			seen[ev.ISUEventID] = true
		}
	}
	extra := make([]model.Event, 0, len(c.discovered))
	for _, ev := range c.discovered {
		if !seen[ev.ISUEventID] {
			ev.EventType = EventType(ev)
			extra = append(extra, ev)
		}
	}
	c.mu.RUnlock()

	merged := append(active, extra...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartDate < merged[j].StartDate
	})
	return merged
}

// EventType classifies an event by its name: sprint and allround
// championships are multi-distance (meerkamp) events, everything else
// races individual distances.
func EventType(ev model.Event) string {
	name := strings.ToLower(ev.Name)
	switch {
	case strings.Contains(name, "sprint"):
		return TypeSprint
	case strings.Contains(name, "allround"):
		return TypeAllround
	default:
		return TypeDistances
	}
}

// Distances returns the contested distances for an event.
func (c *Catalog) Distances(eventID string) []int {
	ev, ok := c.Event(eventID)
	if !ok {
		return allDistances
	}
	switch EventType(ev) {
	case TypeSprint:
		return sprintDistances
	case TypeAllround:
		return allroundDistances
	default:
		return allDistances
	}
}

// MeerkampDistances returns the ordered all-around sequence for an
// event and gender, or false when the event is not a meerkamp event.
func (c *Catalog) MeerkampDistances(eventID string, gender model.Gender) ([]int, bool) {
	ev, ok := c.Event(eventID)
	if !ok {
		return nil, false
	}
	byGender, ok := meerkampSequences[EventType(ev)]
	if !ok {
		return nil, false
	}
	seq, ok := byGender[gender]
	if !ok {
		return nil, false
	}
	out := make([]int, len(seq))
	copy(out, seq)
	return out, true
}

// DistanceConfig returns the lap configuration for a distance.
func DistanceConfig(distance int) (model.DistanceInfo, bool) {
	cfg, ok := distanceConfigs[distance]
	return cfg, ok
}
