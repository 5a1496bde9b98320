// Package screens holds the dependencies shared by the terminal screens.
package screens

import (
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/faultdrill/internal/debrief"
	"github.com/abhisek/faultdrill/internal/feedback"
	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/session"
	"github.com/abhisek/faultdrill/internal/timer"
)

// Deps is passed to every screen constructor.
type Deps struct {
	Supplier scenario.Supplier
	History  *history.Repo

	// Debrief is optional; nil or disabled hides the coach debrief.
	Debrief *debrief.Service

	Sink      feedback.Sink
	Scheduler feedback.Scheduler
	Logger    *zap.Logger

	// NewTicker builds the countdown ticker for each session. Nil uses a
	// one-second WallTicker.
	NewTicker func() timer.Ticker

	// OnClose callbacks run for every closed session.
	OnClose []func(history.SessionRecord)

	Now func() time.Time
}

// NewController builds a session controller from d.
func (d Deps) NewController() *session.Controller {
	var t timer.Ticker
	if d.NewTicker != nil {
		t = d.NewTicker()
	}
	var rec session.Recorder
	if d.History != nil {
		rec = d.History
	}
	return session.NewController(session.Options{
		Supplier:  d.Supplier,
		Ticker:    t,
		Recorder:  rec,
		Sink:      d.Sink,
		Scheduler: d.Scheduler,
		Logger:    d.Logger,
		Now:       d.Now,
		OnClose:   d.OnClose,
	})
}
