package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ftl/wwvb/carrier"
	"github.com/ftl/wwvb/wwvb"
)

// Config contains all settings of the transmitter. It is read from a YAML file, the command line flags
// override the values of the file.
type Config struct {
	Carrier    CarrierConfig `yaml:"carrier"`
	Timing     TimingConfig  `yaml:"timing"`
	Time       TimeConfig    `yaml:"time"`
	Source     SourceConfig  `yaml:"source"`
	Metrics    MetricsConfig `yaml:"metrics"`
	Log        LogConfig     `yaml:"log"`
	LockMemory bool          `yaml:"lock_memory"`
	Dump       bool          `yaml:"-"`
	Hold       string        `yaml:"-"` // low or high
}

// CarrierConfig selects and configures the carrier.
type CarrierConfig struct {
	Type          string        `yaml:"type"` // gpio, pcm or none
	GPIOChip      string        `yaml:"gpio_chip"`
	GPIOLine      int           `yaml:"gpio_line"`
	Invert        bool          `yaml:"invert"`
	SampleRate    float64       `yaml:"sample_rate"`
	Tone          float64       `yaml:"tone"`
	LowLevel      float64       `yaml:"low_level"`
	Output        string        `yaml:"output"` // "-" is stdout
	OutputLatency time.Duration `yaml:"output_latency"`
	TickRate      float64       `yaml:"tick_rate"`
}

// TimingConfig contains the tick corrections at the end of the even and odd bits.
type TimingConfig struct {
	CalibrateEven int `yaml:"calibrate_even"`
	CalibrateOdd  int `yaml:"calibrate_odd"`
}

// TimeConfig contains the properties of the transmitted time.
type TimeConfig struct {
	UTCOffset string `yaml:"utc_offset"` // [+-]HH:MM
	DST       string `yaml:"dst"`        // none, ends, begins, in-effect
}

// SourceConfig selects the source of the time.
type SourceConfig struct {
	Type           string        `yaml:"type"` // system, gps or fixed
	GPSDevice      string        `yaml:"gps_device"`
	GPSBaud        int           `yaml:"gps_baud"`
	GPSLeapSeconds int           `yaml:"gps_leap_seconds"`
	GPSTimeout     time.Duration `yaml:"gps_timeout"`
	GPSDelay       time.Duration `yaml:"gps_delay"`
	Date           string        `yaml:"date"` // e.g. "Feb 12 1996"
	Time           string        `yaml:"time"` // e.g. "23:59:01"
}

// MetricsConfig contains the listen address of the metrics endpoint, empty disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig contains the log level and the timestamp format of the dump.
type LogConfig struct {
	Level           string `yaml:"level"`
	TimestampFormat string `yaml:"timestamp_format"`
}

// DefaultConfig returns the settings that are used if neither the config file nor a flag sets a value.
func DefaultConfig() Config {
	return Config{
		Carrier: CarrierConfig{
			Type:       "none",
			GPIOChip:   "gpiochip0",
			GPIOLine:   18,
			SampleRate: 48000,
			Tone:       1000,
			LowLevel:   carrier.LowLevel,
			Output:     "-",
			TickRate:   1000,
		},
		Time: TimeConfig{
			UTCOffset: "00:00",
			DST:       "none",
		},
		Source: SourceConfig{
			Type:       "system",
			GPSDevice:  "/dev/ttyUSB0",
			GPSBaud:    9600,
			GPSTimeout: 2 * time.Minute,
		},
		Log: LogConfig{
			Level:           "info",
			TimestampFormat: "%Y-%m-%d %H:%M:%S",
		},
	}
}

// LoadConfig reads the given YAML file on top of the given configuration.
func LoadConfig(filename string, config *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "cannot read config file")
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return errors.Wrapf(err, "cannot parse config file %s", filename)
	}
	return nil
}

// Validate checks the values that are interpreted later.
func (c Config) Validate() error {
	switch c.Carrier.Type {
	case "gpio", "none":
		if c.Carrier.TickRate < 10 {
			return errors.Errorf("tick rate too low: %v", c.Carrier.TickRate)
		}
	case "pcm":
		if c.Carrier.SampleRate <= 2*c.Carrier.Tone || c.Carrier.Tone <= 0 {
			return errors.Errorf("tone %vHz does not fit the sample rate %vHz", c.Carrier.Tone, c.Carrier.SampleRate)
		}
	default:
		return errors.Errorf("unknown carrier %q", c.Carrier.Type)
	}
	if c.Carrier.LowLevel < 0 || c.Carrier.LowLevel >= 1 {
		return errors.Errorf("low level %v out of range [0, 1)", c.Carrier.LowLevel)
	}
	if c.Carrier.OutputLatency < 0 || c.Source.GPSDelay < 0 {
		return errors.New("the output latency and the GPS delay must not be negative")
	}
	if c.Hold != "" {
		if _, err := parseHold(c.Hold); err != nil {
			return err
		}
	}
	switch c.Source.Type {
	case "system", "gps":
	case "fixed":
		if len(c.Source.Date) < 11 || len(c.Source.Time) < 8 {
			return errors.New("the fixed source needs a date like \"Feb 12 1996\" and a time like \"23:59:01\"")
		}
	default:
		return errors.Errorf("unknown time source %q", c.Source.Type)
	}
	if _, _, err := parseUTCOffset(c.Time.UTCOffset); err != nil {
		return err
	}
	if _, err := parseDST(c.Time.DST); err != nil {
		return err
	}
	return nil
}

// parseUTCOffset parses an offset like "-05:30" into hours and minutes with the same sign.
func parseUTCOffset(s string) (hours, minutes int, err error) {
	sign := 1
	value := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(value, "-"):
		sign = -1
		value = value[1:]
	case strings.HasPrefix(value, "+"):
		value = value[1:]
	}
	h, m, found := strings.Cut(value, ":")
	if !found {
		m = "0"
	}
	hours, err = strconv.Atoi(h)
	if err != nil || hours > 23 {
		return 0, 0, errors.Errorf("invalid UTC offset %q", s)
	}
	minutes, err = strconv.Atoi(m)
	if err != nil || minutes > 59 {
		return 0, 0, errors.Errorf("invalid UTC offset %q", s)
	}
	return sign * hours, sign * minutes, nil
}

var dstNames = map[string]wwvb.DST{
	"none":      wwvb.DSTNone,
	"ends":      wwvb.DSTEnds,
	"begins":    wwvb.DSTBegins,
	"in-effect": wwvb.DSTInEffect,
}

func parseDST(s string) (wwvb.DST, error) {
	result, ok := dstNames[strings.ToLower(s)]
	if !ok {
		return wwvb.DSTNone, errors.Errorf("invalid daylight savings code %q, use none, ends, begins or in-effect", s)
	}
	return result, nil
}

func parseHold(s string) (wwvb.Amplitude, error) {
	switch strings.ToLower(s) {
	case "low":
		return wwvb.Low, nil
	case "high":
		return wwvb.High, nil
	default:
		return wwvb.Low, errors.Errorf("invalid carrier level %q, use low or high", s)
	}
}

// parseArgs returns the configuration from the defaults, the config file given with --config and the flags, in this order.
func parseArgs(args []string) (Config, bool, error) {
	config := DefaultConfig()
	flags := pflag.NewFlagSet("wwvbtx", pflag.ContinueOnError)

	configFile := flags.String("config", "", "read the configuration from this YAML file")
	help := flags.BoolP("help", "h", false, "show this help")
	flags.StringVar(&config.Carrier.Type, "carrier", config.Carrier.Type, "carrier: gpio, pcm or none")
	flags.StringVar(&config.Carrier.GPIOChip, "gpio-chip", config.Carrier.GPIOChip, "GPIO chip of the modulation line")
	flags.IntVar(&config.Carrier.GPIOLine, "gpio-line", config.Carrier.GPIOLine, "offset of the modulation line")
	flags.BoolVar(&config.Carrier.Invert, "invert", config.Carrier.Invert, "drive the modulation line low for the full amplitude")
	flags.Float64Var(&config.Carrier.SampleRate, "sample-rate", config.Carrier.SampleRate, "sample rate of the PCM output in Hz")
	flags.Float64Var(&config.Carrier.Tone, "tone", config.Carrier.Tone, "frequency of the PCM tone in Hz")
	flags.Float64Var(&config.Carrier.LowLevel, "low-level", config.Carrier.LowLevel, "reduced amplitude of the PCM tone relative to the full amplitude")
	flags.StringVar(&config.Carrier.Output, "output", config.Carrier.Output, "file for the PCM output, - for stdout")
	flags.DurationVar(&config.Carrier.OutputLatency, "output-latency", config.Carrier.OutputLatency, "start the minute this much early to compensate the buffering of the output")
	flags.Float64Var(&config.Carrier.TickRate, "tick-rate", config.Carrier.TickRate, "tick rate of the software clock in Hz")
	flags.IntVar(&config.Timing.CalibrateEven, "calibrate-even", config.Timing.CalibrateEven, "ticks added to the end of the even bits")
	flags.IntVar(&config.Timing.CalibrateOdd, "calibrate-odd", config.Timing.CalibrateOdd, "ticks added to the end of the odd bits")
	flags.StringVar(&config.Time.UTCOffset, "utc-offset", config.Time.UTCOffset, "offset of the transmitted time to UTC, [+-]HH:MM")
	flags.StringVar(&config.Time.DST, "dst", config.Time.DST, "daylight savings code: none, ends, begins or in-effect")
	flags.StringVar(&config.Source.Type, "source", config.Source.Type, "time source: system, gps or fixed")
	flags.StringVar(&config.Source.GPSDevice, "gps-device", config.Source.GPSDevice, "serial device of the GPS receiver")
	flags.IntVar(&config.Source.GPSBaud, "gps-baud", config.Source.GPSBaud, "baud rate of the GPS receiver")
	flags.IntVar(&config.Source.GPSLeapSeconds, "gps-leap-seconds", config.Source.GPSLeapSeconds, "seconds that the GPS receiver is ahead of UTC")
	flags.DurationVar(&config.Source.GPSTimeout, "gps-timeout", config.Source.GPSTimeout, "maximum time to wait for a GPS fix")
	flags.DurationVar(&config.Source.GPSDelay, "gps-delay", config.Source.GPSDelay, "time between the start of a second and the arrival of its NMEA sentence")
	flags.StringVar(&config.Source.Date, "date", config.Source.Date, "date of the fixed source, e.g. \"Feb 12 1996\"")
	flags.StringVar(&config.Source.Time, "time", config.Source.Time, "time of the fixed source, e.g. \"23:59:01\"")
	flags.BoolVar(&config.Dump, "dump", false, "print the first frame and its envelope, then exit")
	flags.StringVar(&config.Hold, "hold", "", "hold the carrier at the low or high level until interrupted, e.g. to tune the antenna")
	flags.StringVar(&config.Log.TimestampFormat, "timestamp-format", config.Log.TimestampFormat, "strftime format of the timestamps in the dump")
	flags.StringVar(&config.Metrics.Addr, "metrics-addr", config.Metrics.Addr, "serve Prometheus metrics on this address, e.g. :9160")
	flags.StringVar(&config.Log.Level, "log-level", config.Log.Level, "log level: debug, info, warn or error")
	flags.BoolVar(&config.LockMemory, "lock-memory", config.LockMemory, "lock the process memory to avoid page faults")

	if err := flags.Parse(args); err != nil {
		return config, false, err
	}
	if *help {
		flags.PrintDefaults()
		return config, true, nil
	}
	if *configFile == "" {
		return config, false, config.Validate()
	}

	overrides := make(map[string]string)
	flags.Visit(func(f *pflag.Flag) {
		overrides[f.Name] = f.Value.String()
	})
	if err := LoadConfig(*configFile, &config); err != nil {
		return config, false, err
	}
	for name, value := range overrides {
		if err := flags.Set(name, value); err != nil {
			return config, false, errors.Wrapf(err, "cannot apply --%s", name)
		}
	}
	return config, false, config.Validate()
}
