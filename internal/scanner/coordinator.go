package scanner

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pickbetter/labelscan/internal/client"
	"github.com/pickbetter/labelscan/internal/history"
	"github.com/pickbetter/labelscan/internal/models"
	"github.com/pickbetter/labelscan/internal/normalize"
)

// EventSink receives lifecycle events for every attempt. Implemented
// by the events package emitters.
type EventSink interface {
	Emit(ctx context.Context, ev models.ScanEvent) error
}

// Coordinator owns the navigation state for scan attempts. All state
// changes go through the Transition function; concurrent scans are
// serialized and the last one wins.
type Coordinator struct {
	Backend client.Backend
	Store   history.Store
	Events  EventSink
	Profile *models.UserProfile
	Now     func() time.Time

	mu    sync.Mutex
	state State
}

func NewCoordinator(backend client.Backend, store history.Store, sink EventSink, profile *models.UserProfile) *Coordinator {
	return &Coordinator{
		Backend: backend,
		Store:   store,
		Events:  sink,
		Profile: profile,
		Now:     time.Now,
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Scan runs one attempt end to end: validate the barcode, fetch the
// raw payload, normalize it and route on the outcome. A ResultsReady
// outcome appends a HistoryItem before returning.
func (c *Coordinator) Scan(ctx context.Context, barcode string) (normalize.Outcome, error) {
	if !ValidBarcode(barcode) {
		return normalize.Outcome{}, fmt.Errorf("invalid barcode %q: must be numeric and at least 6 digits", barcode)
	}

	c.apply(ScanRequested)
	c.emit(ctx, models.EventScanStarted, func(ev *models.ScanEvent) {
		ev.Barcode = barcode
	})

	raw, status, err := c.Backend.Scan(ctx, barcode)
	if err != nil {
		c.apply(ScanFailed)
		out := normalize.Outcome{
			Kind:    normalize.ScanFailed,
			Barcode: barcode,
			Message: "Could not reach the analysis service. Please try again.",
		}
		c.emit(ctx, models.EventScanError, func(ev *models.ScanEvent) {
			ev.Barcode = barcode
			ev.Message = out.Message
		})
		return out, err
	}

	out := normalize.Scan(raw, status, barcode, c.Profile)
	switch out.Kind {
	case normalize.ResultsReady:
		c.apply(AnalysisReceived)
		c.record(ctx, barcode, out.Analysis)
	case normalize.ContributionNeeded:
		c.apply(ProductUnknown)
		c.emit(ctx, models.EventContributionNeeded, func(ev *models.ScanEvent) {
			ev.Barcode = barcode
		})
	default:
		c.apply(ScanFailed)
		c.emit(ctx, models.EventScanError, func(ev *models.ScanEvent) {
			ev.Barcode = barcode
			ev.Message = out.Message
		})
	}
	return out, nil
}

// Contribute submits label photos for an unknown product. A rate
// limited submission is a soft success with no analysis. When the
// review comes back with a payload the attempt transitions to results
// and the item is recorded like a normal scan.
func (c *Coordinator) Contribute(ctx context.Context, in client.ContributionInput) (*client.ContributionResult, *models.FoodAnalysis, error) {
	// a direct contribution is an attempt for a product already known
	// to be missing
	if c.State() != ContributionNeeded {
		c.apply(ScanRequested)
		c.apply(ProductUnknown)
	}
	res, err := c.Backend.Contribute(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	c.emit(ctx, models.EventContributionSent, func(ev *models.ScanEvent) {
		ev.Barcode = in.Barcode
	})
	if res.RateLimited || len(res.Payload) == 0 {
		return res, nil, nil
	}

	analysis := normalize.Analysis(res.Payload, c.Profile)
	c.apply(ContributionReviewed)
	c.record(ctx, in.Barcode, &analysis)
	return res, &analysis, nil
}

// Dismiss returns to Idle so the next attempt starts clean.
func (c *Coordinator) Dismiss() {
	c.apply(Dismissed)
}

// Run consumes barcodes from src until the source drains or ctx is
// cancelled, invoking handle with each outcome.
func (c *Coordinator) Run(ctx context.Context, src BarcodeSource, handle func(normalize.Outcome)) error {
	codes, err := src.Subscribe(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case code, ok := <-codes:
			if !ok {
				return nil
			}
			out, err := c.Scan(ctx, code)
			if err != nil {
				log.Printf("scan %s: %v", code, err)
				c.Dismiss()
				continue
			}
			handle(out)
			c.Dismiss()
		}
	}
}

func (c *Coordinator) apply(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := Transition(c.state, e)
	if err != nil {
		log.Printf("scanner: %v", err)
	}
	c.state = next
}

func (c *Coordinator) record(ctx context.Context, barcode string, analysis *models.FoodAnalysis) {
	item := models.NewHistoryItem(*analysis, c.now())
	if c.Store != nil {
		if err := c.Store.Append(ctx, c.userID(), item); err != nil {
			log.Printf("scanner: append history: %v", err)
		}
	}
	c.emit(ctx, models.EventResultsReady, func(ev *models.ScanEvent) {
		ev.Barcode = barcode
		ev.Grade = analysis.Grade
		ev.Score = analysis.Score
	})
	c.emit(ctx, models.EventHistoryAppended, func(ev *models.ScanEvent) {
		ev.Barcode = barcode
	})
}

func (c *Coordinator) emit(ctx context.Context, eventType string, mutate func(*models.ScanEvent)) {
	if c.Events == nil {
		return
	}
	ev := models.NewScanEvent(eventType, c.now())
	ev.UserID = c.userID()
	if mutate != nil {
		mutate(&ev)
	}
	if err := c.Events.Emit(ctx, ev); err != nil {
		log.Printf("scanner: emit %s: %v", eventType, err)
	}
}

func (c *Coordinator) userID() string {
	if c.Profile == nil {
		return ""
	}
	return c.Profile.UserID
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
