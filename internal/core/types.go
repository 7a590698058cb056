package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/birthmatrix/internal/catalog"
	"github.com/JonMunkholm/birthmatrix/internal/numerology"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// CellView is one matrix cell ready for display.
type CellView struct {
	Digit   int    `json:"digit"`
	Count   int    `json:"count"`
	Label   string `json:"label"`   // Digit repeated Count times, or the empty-cell sentinel
	Quality string `json:"quality"` // Catalog quality of the digit
}

// KarmicView is a karmic number with its explanation.
type KarmicView struct {
	Number int `json:"number"`
	catalog.KarmicDebt
}

// ProgramView is a birth program with its catalog entry.
type ProgramView struct {
	Digit int `json:"digit"`
	catalog.Program
}

// RecommendationView is a ranked issue with the practices that address it.
type RecommendationView struct {
	numerology.Recommendation
	Focus     string             `json:"focus"`
	Keywords  []string           `json:"keywords"`
	Practices []catalog.Practice `json:"practices"`
}

// PhaseView is one stage of a practice plan.
type PhaseView struct {
	Stage     int                `json:"stage"`
	Name      string             `json:"name"`
	Goal      string             `json:"goal"`
	FirstDay  int                `json:"firstDay"`
	LastDay   int                `json:"lastDay"`
	Focus     string             `json:"focus"`
	Issue     numerology.Issue   `json:"issue"`
	Practices []catalog.Practice `json:"practices"`
}

// PlanView is a personal practice plan.
type PlanView struct {
	Days           int         `json:"days"`
	Phases         []PhaseView `json:"phases"`
	TotalPractices int         `json:"totalPractices"`
}

// Result is what a calculation returns to transports.
type Result struct {
	Reading         numerology.Reading   `json:"reading"`
	Analysis        numerology.Analysis  `json:"analysis"`
	Cells           []CellView           `json:"cells"`
	Karmic          []KarmicView         `json:"karmic"`
	Programs        []ProgramView        `json:"programs"`
	Recommendations []RecommendationView `json:"recommendations"`
	Plan            PlanView             `json:"plan"`
	HistoryID       string               `json:"historyId,omitempty"`
	Cached          bool                 `json:"cached"`
}

// MonthView is a favorable month with its display name and reason.
type MonthView struct {
	Month  int    `json:"month"`
	Name   string `json:"name"`
	Energy int    `json:"energy"`
	Reason string `json:"reason"`
}

// DayView is a favorable day with its reason.
type DayView struct {
	Date   time.Time `json:"date"`
	Energy int       `json:"energy"`
	Reason string    `json:"reason"`
}

// ForecastResult is the forecast plus its interpretation.
type ForecastResult struct {
	Forecast   numerology.Forecast `json:"forecast"`
	MonthName  string              `json:"monthName"`
	YearTheme  catalog.YearTheme   `json:"yearTheme"`
	MonthTheme catalog.YearTheme   `json:"monthTheme"`
	Months     []MonthView         `json:"months"`
	Days       []DayView           `json:"days"`
}
