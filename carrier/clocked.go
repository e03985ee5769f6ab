package carrier

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Clocked is a software tick source. A goroutine wakes up in the configured resolution and delivers
// all ticks that became due since the start, measured with the monotonic clock. The ticks are therefore
// delivered in bursts, but no tick is lost if the goroutine is delayed.
//
// Clocked implements wwvb.Suppressor, the ticks that become due while suppressed are delivered
// after the release.
type Clocked struct {
	rate       float64
	resolution time.Duration
	logger     *log.Logger

	mu      sync.Mutex // held while ticks are delivered
	stop    chan struct{}
	done    chan struct{}
	lagging bool
}

// NewClocked returns a tick source with the given rate in Hz.
func NewClocked(rate float64, opts ...Option) *Clocked {
	o := applyOptions(opts)
	return &Clocked{
		rate:       rate,
		resolution: o.resolution,
		logger:     o.logger,
	}
}

// Rate returns the number of ticks per second.
func (c *Clocked) Rate() float64 {
	return c.rate
}

// Start begins to deliver ticks to the given function. A running source is stopped first.
func (c *Clocked) Start(tick func()) {
	c.Stop()
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(tick, c.stop, c.done)
}

// Stop halts the ticks and waits until the last tick returned. Stop must not be called while the source is suppressed.
func (c *Clocked) Stop() {
	if c.stop == nil {
		return
	}
	close(c.stop)
	<-c.done
	c.stop = nil
	c.done = nil
}

// Suppress holds back the ticks until Release is called.
func (c *Clocked) Suppress() {
	c.mu.Lock()
}

// Release delivers the ticks that became due while suppressed.
func (c *Clocked) Release() {
	c.mu.Unlock()
}

func (c *Clocked) run(tick func(), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.resolution)
	defer ticker.Stop()

	start := time.Now()
	var delivered int64
	maxBurst := int64(c.rate) // one second
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			due := int64(time.Since(start).Seconds() * c.rate)
			c.mu.Lock()
			c.reportLag(due-delivered > maxBurst, due-delivered)
			for ; delivered < due; delivered++ {
				tick()
			}
			c.mu.Unlock()
		}
	}
}

func (c *Clocked) reportLag(lagging bool, pending int64) {
	if lagging == c.lagging {
		return
	}
	c.lagging = lagging
	if lagging {
		c.logger.Warn("tick source is lagging", "pending", pending, "rate", c.rate)
	} else {
		c.logger.Info("tick source caught up")
	}
}
