// Package telemetry writes per-day colony statistics and the event stream
// as CSV files for offline analysis.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/engine"
)

// DailyRecord is one row of stats.csv.
type DailyRecord struct {
	Tick             uint64  `csv:"tick"`
	Day              uint64  `csv:"day"`
	Generation       int     `csv:"generation"`
	Population       int     `csv:"population"`
	Plants           int     `csv:"plants"`
	MaturePlants     int     `csv:"mature_plants"`
	FoodItems        int     `csv:"food_items"`
	RottenFood       int     `csv:"rotten_food"`
	Materials        int     `csv:"materials"`
	AvgFood          float32 `csv:"avg_food"`
	AvgSleep         float32 `csv:"avg_sleep"`
	AvgEntertainment float32 `csv:"avg_entertainment"`
	Meals            int     `csv:"meals"`
	Harvests         int     `csv:"harvests"`
	TopMotivation    string  `csv:"top_motivation"`
	Tasks            string  `csv:"tasks"` // "Task=n;..." sorted by name
}

// EventRecord is one row of events.csv.
type EventRecord struct {
	Tick        uint64 `csv:"tick"`
	Category    string `csv:"category"`
	Description string `csv:"description"`
}

// NewDailyRecord flattens simulation stats into a CSV row.
func NewDailyRecord(st engine.SimStats, ticksPerDay uint64) DailyRecord {
	r := DailyRecord{
		Tick:             st.Tick,
		Generation:       st.Generation,
		Population:       st.Population,
		Plants:           st.Plants,
		MaturePlants:     st.MaturePlants,
		FoodItems:        st.FoodItems,
		RottenFood:       st.RottenFood,
		Materials:        st.Materials,
		AvgFood:          st.AvgFood,
		AvgSleep:         st.AvgSleep,
		AvgEntertainment: st.AvgEntertainment,
		Meals:            st.Meals,
		Harvests:         st.Harvests,
	}
	if ticksPerDay > 0 {
		r.Day = st.Tick / ticksPerDay
	}

	// Ties go to the higher-priority motivation so the column is stable.
	var top agents.Motivation
	best := -1
	for m, n := range st.Motivations {
		if n > best || (n == best && m.Outranks(top)) {
			best, top = n, m
		}
	}
	if best >= 0 {
		r.TopMotivation = top.String()
	}

	parts := make([]string, 0, len(st.Tasks))
	for t, n := range st.Tasks {
		parts = append(parts, fmt.Sprintf("%s=%d", t, n))
	}
	sort.Strings(parts)
	r.Tasks = strings.Join(parts, ";")
	return r
}

// OutputManager handles CSV logging into one directory.
type OutputManager struct {
	dir        string
	statsFile  *os.File
	eventsFile *os.File

	// Track if headers have been written
	statsHeaderWritten  bool
	eventsHeaderWritten bool
}

// NewOutputManager creates the output directory and files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	f, err := os.Create(filepath.Join(dir, "stats.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	om.statsFile = f

	f, err = os.Create(filepath.Join(dir, "events.csv"))
	if err != nil {
		om.statsFile.Close()
		return nil, fmt.Errorf("creating events.csv: %w", err)
	}
	om.eventsFile = f
	return om, nil
}

// WriteConfig saves the effective configuration next to the CSV files.
func (om *OutputManager) WriteConfig(cfg config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteDaily appends one day's record to stats.csv.
func (om *OutputManager) WriteDaily(r DailyRecord) error {
	if om == nil {
		return nil
	}
	records := []DailyRecord{r}
	if !om.statsHeaderWritten {
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		om.statsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// WriteEvents appends events to events.csv.
func (om *OutputManager) WriteEvents(events []engine.Event) error {
	if om == nil || len(events) == 0 {
		return nil
	}
	records := make([]EventRecord, len(events))
	for i, e := range events {
		records[i] = EventRecord{Tick: e.Tick, Category: e.Category, Description: e.Description}
	}
	if !om.eventsHeaderWritten {
		if err := gocsv.Marshal(records, om.eventsFile); err != nil {
			return fmt.Errorf("writing events: %w", err)
		}
		om.eventsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.eventsFile); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, f := range []*os.File{om.statsFile, om.eventsFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
