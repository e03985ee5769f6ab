/*
The wwvbtx command transmits the WWVB time code on a local low power carrier.

The carrier is either a GPIO line that keys an external 60kHz oscillator, or a tone that is written as
raw PCM samples (e.g. pipe it into "aplay -f S16_LE -r 48000 -c 1"). The time is taken from the system
clock, from a GPS receiver or from fixed date and time strings.
*/
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ftl/wwvb/carrier"
	"github.com/ftl/wwvb/wwvb"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "wwvbtx",
	})

	config, help, err := parseArgs(os.Args[1:])
	if help {
		return
	}
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	level, err := log.ParseLevel(config.Log.Level)
	if err != nil {
		logger.Fatal("invalid log level", "error", err)
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Fatal("transmission failed", "error", err)
	}
}

func run(ctx context.Context, config Config, logger *log.Logger) error {
	utcHours, utcMinutes, err := parseUTCOffset(config.Time.UTCOffset)
	if err != nil {
		return err
	}
	dst, err := parseDST(config.Time.DST)
	if err != nil {
		return err
	}

	if config.Hold != "" {
		amplitude, err := parseHold(config.Hold)
		if err != nil {
			return err
		}
		tx, err := openTransmitter(ctx, config.Carrier, logger)
		if err != nil {
			return err
		}
		defer tx.close()
		hold(ctx, tx.carrier, tx.ticks, amplitude, logger)
		return tx.err()
	}

	now, err := seedTime(ctx, config.Source, logger)
	if err != nil {
		return err
	}
	if config.Dump {
		return dump(os.Stdout, now(), utcHours, utcMinutes, dst, config.Log.TimestampFormat)
	}

	if config.LockMemory {
		if err := lockMemory(); err != nil {
			logger.Warn("running without locked memory", "error", err)
		}
	}

	tx, err := openTransmitter(ctx, config.Carrier, logger)
	if err != nil {
		return err
	}
	defer tx.close()
	if config.Carrier.OutputLatency > 0 {
		logger.Info("compensating the output latency", "latency", config.Carrier.OutputLatency)
		now = ahead(now, config.Carrier.OutputLatency)
	}

	scheduler := wwvb.NewScheduler(tx.carrier, tx.ticks, wwvb.TimingForRate(tx.rate))
	scheduler.Calibrate(config.Timing.CalibrateEven, config.Timing.CalibrateOdd)
	scheduler.SetTimezone(utcHours, utcMinutes)

	if config.Metrics.Addr != "" {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)
		scheduler.OnBit(func(index int, symbol wwvb.Symbol) {
			metrics.ObserveBit(index, symbol, scheduler.Clock())
		})
		go serveMetrics(ctx, config.Metrics.Addr, registry, logger)
	}

	logger.Info("transmitter ready", "carrier", config.Carrier.Type, "rate", tx.rate, "utc_offset", config.Time.UTCOffset, "dst", dst)
	wwvb.Send(ctx, scheduler, now, dst, logger)
	return tx.err()
}

// transmitter bundles the carrier and the tick source that drive the scheduler.
type transmitter struct {
	carrier wwvb.Carrier
	ticks   wwvb.TickSource
	rate    float64
	close   func()
	err     func() error
}

func openTransmitter(ctx context.Context, config CarrierConfig, logger *log.Logger) (*transmitter, error) {
	switch config.Type {
	case "gpio":
		gpio, err := carrier.NewGPIO(config.GPIOChip, config.GPIOLine,
			carrier.Inverted(config.Invert),
			carrier.WithConsumer("wwvbtx"),
			carrier.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return &transmitter{
			carrier: gpio,
			ticks:   carrier.NewClocked(config.TickRate, carrier.WithLogger(logger)),
			rate:    config.TickRate,
			close: func() {
				if err := gpio.Close(); err != nil {
					logger.Error("cannot release GPIO line", "error", err)
				}
			},
			err: gpio.Err,
		}, nil
	case "pcm":
		out, closeOutput, err := openOutput(config.Output)
		if err != nil {
			return nil, err
		}
		pcm := carrier.NewPCM(out, config.SampleRate, config.Tone,
			carrier.WithLowLevel(config.LowLevel),
			carrier.WithLogger(logger),
		)
		pcm.AbortWhenDone(ctx.Done())
		return &transmitter{
			carrier: pcm,
			ticks:   pcm,
			rate:    pcm.Rate(),
			close:   closeOutput,
			err: func() error {
				err := pcm.Err()
				if errors.Is(err, carrier.ErrWriteAborted) {
					return nil
				}
				return err
			},
		}, nil
	case "none":
		null := new(carrier.Null)
		return &transmitter{
			carrier: null,
			ticks:   carrier.NewClocked(config.TickRate, carrier.WithLogger(logger)),
			rate:    config.TickRate,
			close: func() {
				logger.Info("carrier closed", "amplitude_changes", null.Changes())
			},
			err: func() error { return nil },
		}, nil
	default:
		return nil, errors.Errorf("unknown carrier %q", config.Type)
	}
}

func openOutput(filename string) (io.Writer, func(), error) {
	if filename == "" || filename == "-" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot create PCM output")
	}
	return file, func() { file.Close() }, nil
}
