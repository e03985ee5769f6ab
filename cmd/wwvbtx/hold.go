package main

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/ftl/wwvb/wwvb"
)

// hold keeps the carrier at the given amplitude until the context is done. The tick source keeps
// running, because the PCM carrier only produces output while it ticks.
func hold(ctx context.Context, c wwvb.Carrier, ticks wwvb.TickSource, amplitude wwvb.Amplitude, logger *log.Logger) {
	c.SetAmplitude(amplitude)
	ticks.Start(func() {})
	logger.Info("holding the carrier", "amplitude", amplitude)

	<-ctx.Done()

	ticks.Stop()
	logger.Info("carrier released")
}
