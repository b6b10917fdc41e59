package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"wallet-lens/pkg/parser"
	"wallet-lens/pkg/utils"
)

// ErrInvalidOption is wrapped by every validation failure
var ErrInvalidOption = errors.New("invalid option")

// Option is one entry of the command line schema. Field returns a pointer
// (*string, *int or *bool) into the config it configures.
type Option struct {
	Name      string
	Shorthand string
	Usage     string
	Field     func(c *Config) any
	Validate  func(c *Config) error
}

// Options is the schema shared by flag registration, overrides and validation
var Options = []Option{
	{
		Name:  "strategy",
		Usage: "extraction strategy (auto, tagged, entropy); overrides --type",
		Field: func(c *Config) any { return &c.Extract.Strategy },
		Validate: func(c *Config) error {
			return oneOf(c.Extract.Strategy, "", parser.StrategyAuto, parser.StrategyTagged, parser.StrategyEntropy)
		},
	},
	{
		Name:  "type",
		Usage: "wallet format (legacy, current, auto)",
		Field: func(c *Config) any { return &c.Extract.Format },
		Validate: func(c *Config) error {
			return oneOf(c.Extract.Format, parser.FormatLegacy, parser.FormatCurrent, parser.FormatAuto)
		},
	},
	{
		Name:  "sec",
		Usage: "security level 1-3; raises the low-entropy warning threshold",
		Field: func(c *Config) any { return &c.Extract.SecurityLevel },
		Validate: func(c *Config) error {
			return intRange(c.Extract.SecurityLevel, 1, 3)
		},
	},
	{
		Name:  "automated-detection",
		Usage: "detect the wallet format from its contents",
		Field: func(c *Config) any { return &c.Extract.AutomatedDetection },
	},
	{
		Name:  "marker",
		Usage: "4-byte ASCII record marker",
		Field: func(c *Config) any { return &c.Extract.Marker },
		Validate: func(c *Config) error {
			if c.Extract.MarkerHex != "" {
				return nil
			}
			if len(c.Extract.Marker) != parser.MarkerLen {
				return fmt.Errorf("must be %d bytes, got %d", parser.MarkerLen, len(c.Extract.Marker))
			}
			return nil
		},
	},
	{
		Name:  "marker-hex",
		Usage: "record marker as 8 hex digits; takes precedence over --marker",
		Field: func(c *Config) any { return &c.Extract.MarkerHex },
		Validate: func(c *Config) error {
			if c.Extract.MarkerHex == "" {
				return nil
			}
			b, err := utils.HexToBytes(c.Extract.MarkerHex)
			if err != nil {
				return err
			}
			_, err = parser.ParseMarker(b)
			return err
		},
	},
	{
		Name:  "window",
		Usage: "entropy window length in bytes",
		Field: func(c *Config) any { return &c.Extract.WindowLen },
		Validate: func(c *Config) error {
			return intRange(c.Extract.WindowLen, 1, 256)
		},
	},
	{
		Name:  "key-len",
		Usage: "number of leading record bytes reported as the key",
		Field: func(c *Config) any { return &c.Extract.KeyLen },
		Validate: func(c *Config) error {
			return intRange(c.Extract.KeyLen, 1, 65535)
		},
	},
	{
		Name:  "workers",
		Usage: "goroutines used for the entropy window scan",
		Field: func(c *Config) any { return &c.Extract.Workers },
		Validate: func(c *Config) error {
			return intRange(c.Extract.Workers, 1, 256)
		},
	},
	{
		Name:  "timeout",
		Usage: "operation timeout in seconds",
		Field: func(c *Config) any { return &c.Extract.TimeoutSeconds },
		Validate: func(c *Config) error {
			return intRange(c.Extract.TimeoutSeconds, 1, 86400)
		},
	},
	{
		Name:      "output",
		Shorthand: "o",
		Usage:     "also write the report to this file",
		Field:     func(c *Config) any { return &c.Output.Path },
	},
	{
		Name:  "json",
		Usage: "render the report as JSON",
		Field: func(c *Config) any { return &c.Output.JSON },
	},
	{
		Name:  "no-color",
		Usage: "disable coloured console output",
		Field: func(c *Config) any { return &c.Output.NoColor },
	},
	{
		Name:      "verbose",
		Shorthand: "v",
		Usage:     "show analysis details and debug logging",
		Field:     func(c *Config) any { return &c.Output.Verbose },
	},
	{
		Name:  "log-level",
		Usage: "log level (debug, info, warn, error)",
		Field: func(c *Config) any { return &c.Logging.Level },
		Validate: func(c *Config) error {
			_, err := logrus.ParseLevel(c.Logging.Level)
			return err
		},
	},
}

// RegisterFlags adds one flag per schema entry, defaulting to the values in
// defaults.
func RegisterFlags(fs *pflag.FlagSet, defaults *Config) {
	for _, o := range Options {
		switch p := o.Field(defaults).(type) {
		case *string:
			fs.StringP(o.Name, o.Shorthand, *p, o.Usage)
		case *int:
			fs.IntP(o.Name, o.Shorthand, *p, o.Usage)
		case *bool:
			fs.BoolP(o.Name, o.Shorthand, *p, o.Usage)
		}
	}
}

// ApplyFlags copies every flag the user actually set onto c
func ApplyFlags(fs *pflag.FlagSet, c *Config) error {
	for _, o := range Options {
		if !fs.Changed(o.Name) {
			continue
		}
		var err error
		switch p := o.Field(c).(type) {
		case *string:
			*p, err = fs.GetString(o.Name)
		case *int:
			*p, err = fs.GetInt(o.Name)
		case *bool:
			*p, err = fs.GetBool(o.Name)
		}
		if err != nil {
			return fmt.Errorf("%w: --%s: %v", ErrInvalidOption, o.Name, err)
		}
	}
	return nil
}

// ApplyValues sets the named options from string values, as found in an
// HTTP query. Names missing from lookup are left alone.
func ApplyValues(c *Config, lookup func(name string) (string, bool), names ...string) error {
	for _, o := range Options {
		if !contains(names, o.Name) {
			continue
		}
		raw, ok := lookup(o.Name)
		if !ok {
			continue
		}
		var err error
		switch p := o.Field(c).(type) {
		case *string:
			*p = raw
		case *int:
			*p, err = strconv.Atoi(raw)
		case *bool:
			*p, err = strconv.ParseBool(raw)
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidOption, o.Name, err)
		}
	}
	return nil
}

// Validate runs every schema predicate
func (c *Config) Validate() error {
	for _, o := range Options {
		if o.Validate == nil {
			continue
		}
		if err := o.Validate(c); err != nil {
			return fmt.Errorf("%w: --%s: %v", ErrInvalidOption, o.Name, err)
		}
	}
	return nil
}

// Marker returns the configured record marker
func (c *Config) Marker() (parser.Marker, error) {
	if c.Extract.MarkerHex != "" {
		b, err := utils.HexToBytes(c.Extract.MarkerHex)
		if err != nil {
			return parser.Marker{}, fmt.Errorf("%w: --marker-hex: %v", ErrInvalidOption, err)
		}
		return parser.ParseMarker(b)
	}
	return parser.ParseMarker([]byte(c.Extract.Marker))
}

// LogLevel returns the effective log level; verbose output implies debug
func (c *Config) LogLevel() logrus.Level {
	if c.Output.Verbose {
		return logrus.DebugLevel
	}
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}

// ExtractOptions builds the engine options for one extraction call
func (c *Config) ExtractOptions(log *logrus.Logger) (parser.Options, error) {
	marker, err := c.Marker()
	if err != nil {
		return parser.Options{}, err
	}
	format := c.Extract.Format
	if c.Extract.AutomatedDetection {
		format = parser.FormatAuto
	}
	return parser.Options{
		Strategy:      parser.ResolveStrategy(c.Extract.Strategy, format),
		Format:        format,
		SecurityLevel: c.Extract.SecurityLevel,
		Marker:        &marker,
		WindowLen:     c.Extract.WindowLen,
		KeyLen:        c.Extract.KeyLen,
		Shards:        c.Extract.Workers,
		Logger:        log,
	}, nil
}

func oneOf(v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%q is not one of %s", v, strings.Join(nonEmpty(allowed), ", "))
}

func contains(vals []string, v string) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}

func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func intRange(v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%d is outside %d-%d", v, lo, hi)
	}
	return nil
}

// ValidateServer checks the web front end settings
func (c *Config) ValidateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port: %d is outside 1-65535", ErrInvalidOption, c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: server.max_upload_bytes must be positive", ErrInvalidOption)
	}
	return nil
}
