package main

import (
	"context"
	"time"
)

const staleCartAge = 60 * 24 * time.Hour // 60 days

// sweepStaleCartsEvery6Hours deactivates carts that have neither been reported
// nor reviewed in the last 60 days. Street carts move on; their pins should
// too.
func (app *application) sweepStaleCartsEvery6Hours() {
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()

		// Run once immediately
		app.sweepStaleCarts()

		// Then run every 6 hours
		for range ticker.C {
			app.sweepStaleCarts()
		}
	}()
}

func (app *application) sweepStaleCarts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-staleCartAge)
	n, err := app.store.Carts.MarkStaleInactive(ctx, cutoff)
	if err != nil {
		app.logger.Errorf("Error deactivating stale carts: %v", err)
		return
	}
	if n > 0 {
		app.logger.Infof("Deactivated %d stale carts at %s", n, time.Now().Format(time.RFC1123))
	}
}
