package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/universe25/components"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPhaseChange     BookmarkType = "phase_change"
	BookmarkPopulationCrash BookmarkType = "population_crash"
	BookmarkExtinction      BookmarkType = "extinction"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	RunID       string       `csv:"run_id" json:"run_id" db:"run_id"`
	Type        BookmarkType `csv:"type" json:"type" db:"type"`
	Tick        int64        `csv:"tick" json:"tick" db:"tick"`
	From        string       `csv:"from" json:"from,omitempty" db:"from_phase"`
	To          string       `csv:"to" json:"to,omitempty" db:"to_phase"`
	Population  int          `csv:"population" json:"population" db:"population"`
	Density     float64      `csv:"density" json:"density" db:"density"`
	Description string       `csv:"description" json:"description" db:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"population", b.Population,
		"density", b.Density,
		"description", b.Description,
	)
}

// Crash detection thresholds
const (
	crashDrop    = 0.30 // Fraction lost from the recent peak
	crashMinLoss = 10   // Absolute mice lost from the recent peak
)

// BookmarkDetector detects interesting moments in the colony.
type BookmarkDetector struct {
	runID string

	started    bool
	lastPhase  components.Phase
	lastPop    int
	recentPeak int
}

// NewBookmarkDetector creates a detector that stamps bookmarks with runID.
func NewBookmarkDetector(runID string) *BookmarkDetector {
	return &BookmarkDetector{runID: runID}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats TickStats) []Bookmark {
	if !bd.started {
		bd.started = true
		bd.lastPhase = stats.Phase
		bd.lastPop = stats.Population
		bd.recentPeak = stats.Population
		return nil
	}

	var bookmarks []Bookmark
	if b := bd.checkPhaseChange(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCrash(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkExtinction(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.lastPhase = stats.Phase
	bd.lastPop = stats.Population
	if stats.Population > bd.recentPeak {
		bd.recentPeak = stats.Population
	}
	return bookmarks
}

func (bd *BookmarkDetector) newBookmark(t BookmarkType, stats TickStats, desc string) *Bookmark {
	return &Bookmark{
		RunID:       bd.runID,
		Type:        t,
		Tick:        stats.Tick,
		Population:  stats.Population,
		Density:     stats.DensityFactor,
		Description: desc,
	}
}

func (bd *BookmarkDetector) checkPhaseChange(stats TickStats) *Bookmark {
	if stats.Phase == bd.lastPhase {
		return nil
	}
	b := bd.newBookmark(BookmarkPhaseChange, stats,
		fmt.Sprintf("Phase %s -> %s at density %.2f", bd.lastPhase, stats.Phase, stats.DensityFactor))
	b.From = bd.lastPhase.String()
	b.To = stats.Phase.String()
	return b
}

func (bd *BookmarkDetector) checkCrash(stats TickStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	dropPercent := 1.0 - float64(stats.Population)/float64(bd.recentPeak)
	if dropPercent > crashDrop && stats.Population <= bd.recentPeak-crashMinLoss {
		// Reset peak after crash
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Population
		return bd.newBookmark(BookmarkPopulationCrash, stats,
			fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Population))
	}
	return nil
}

func (bd *BookmarkDetector) checkExtinction(stats TickStats) *Bookmark {
	if stats.Population > 0 || bd.lastPop == 0 {
		return nil
	}
	return bd.newBookmark(BookmarkExtinction, stats, "Colony is extinct")
}
