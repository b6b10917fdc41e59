package parser

import (
	"io"
	"time"

	"wallet-lens/pkg/analyzer"
	"wallet-lens/pkg/types"
	"wallet-lens/pkg/utils"

	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"
)

// Extraction strategies
const (
	StrategyAuto    = "auto"
	StrategyTagged  = "tagged"
	StrategyEntropy = "entropy"
)

// Wallet formats accepted on the command line
const (
	FormatAuto    = "auto"
	FormatCurrent = "current"
	FormatLegacy  = "legacy"
)

// Key sources
const (
	SourceTaggedRecord  = types.SourceTaggedRecord
	SourceEntropyWindow = types.SourceEntropyWindow
)

// DefaultKeyLen is how many leading value bytes are reported as the key
const DefaultKeyLen = 5

// Options controls one extraction call
type Options struct {
	Strategy      string
	Format        string
	SecurityLevel int
	Marker        *Marker // nil scans for DefaultMarker
	WindowLen     int
	KeyLen        int
	Shards        int
	WalletPath    string
	Logger        *logrus.Logger
	Now           func() time.Time
}

// ResolveStrategy picks the strategy for a wallet format unless one was
// given explicitly.
func ResolveStrategy(strategy, format string) string {
	if strategy != "" {
		return strategy
	}
	switch format {
	case FormatCurrent:
		return StrategyTagged
	case FormatLegacy:
		return StrategyEntropy
	default:
		return StrategyAuto
	}
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatAuto
	}
	o.Strategy = ResolveStrategy(o.Strategy, o.Format)
	if o.SecurityLevel == 0 {
		o.SecurityLevel = 2
	}
	if o.Marker == nil {
		m := DefaultMarker
		o.Marker = &m
	}
	if o.WindowLen <= 0 {
		o.WindowLen = analyzer.DefaultWindowLen
	}
	if o.KeyLen <= 0 {
		o.KeyLen = DefaultKeyLen
	}
	if o.Logger == nil {
		o.Logger = logrus.New()
		o.Logger.SetOutput(io.Discard)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Extract runs the configured strategy over an in-memory wallet buffer. The
// buffer is only read; nothing in the output references it.
func Extract(buffer []byte, opts Options) *types.ExtractionOutput {
	opts = opts.withDefaults()
	log := opts.Logger.WithFields(logrus.Fields{
		"strategy": opts.Strategy,
		"size":     len(buffer),
	})

	out := &types.ExtractionOutput{
		OK:            true,
		ReportID:      ksuid.New().String(),
		WalletPath:    opts.WalletPath,
		WalletDigest:  utils.WalletDigest(buffer),
		SizeBytes:     len(buffer),
		Format:        opts.Format,
		SecurityLevel: opts.SecurityLevel,
		Strategy:      opts.Strategy,
		Marker:        opts.Marker.String(),
		WindowLen:     opts.WindowLen,
		AnalyzedAt:    opts.Now().Unix(),
		Records:       make([]types.RecordOutput, 0),
	}

	var (
		recordsScanned bool
		truncated      bool
		fellBack       bool
	)

	if opts.Strategy == StrategyTagged || opts.Strategy == StrategyAuto {
		recordsScanned = true
		log.WithField("marker", opts.Marker.String()).Debug("scanning for tagged records")

		scan := ScanTaggedRecords(buffer, *opts.Marker)
		for i, rec := range scan.Records {
			out.Records = append(out.Records, recordOutput(i, rec, opts.KeyLen))
		}
		if scan.Truncated != nil {
			truncated = true
			out.Truncation = scan.Truncated.Output()
			log.WithFields(logrus.Fields{
				"offset":    scan.Truncated.Offset,
				"declared":  scan.Truncated.Declared,
				"available": scan.Truncated.Available,
			}).Warn("tagged record truncated, scan stopped")
		}
		log.WithField("records", len(scan.Records)).Debug("tagged record scan complete")

		if len(scan.Records) > 0 {
			first := scan.Records[0]
			out.Key = keyReport(first.Key(opts.KeyLen), SourceTaggedRecord, first.Offset+recordHeader)
		}
	}

	if out.Key == nil && (opts.Strategy == StrategyEntropy || opts.Strategy == StrategyAuto) {
		fellBack = opts.Strategy == StrategyAuto
		log.WithField("window", opts.WindowLen).Debug("scanning windows for highest entropy")

		if c, ok := analyzer.FindEntropyKeyParallel(buffer, opts.WindowLen, opts.Shards); ok {
			out.Key = keyReportScored(c.Bytes, SourceEntropyWindow, c.Offset, c.Score)
		} else {
			log.Debug("buffer shorter than window, no candidate")
		}
	}

	out.Found = out.Key != nil
	out.Warnings = analyzer.GenerateWarnings(
		out.Key,
		recordsScanned,
		len(out.Records),
		truncated,
		fellBack,
		opts.KeyLen,
		opts.SecurityLevel,
	)

	if out.Found {
		log.WithFields(logrus.Fields{
			"source":     out.Key.Source,
			"offset":     out.Key.Offset,
			"confidence": out.Key.Confidence,
		}).Info("key material located")
	} else {
		log.Info("no key material located")
	}
	return out
}

func recordOutput(index int, rec TaggedRecord, keyLen int) types.RecordOutput {
	key := rec.Key(keyLen)
	a := analyzer.Assess(key)
	ro := types.RecordOutput{
		Index:        index,
		Offset:       rec.Offset,
		Length:       rec.Length,
		ValueHex:     utils.FormatHex(rec.Value),
		KeyHex:       utils.FormatHex(key),
		KeyEntropy:   a.Score,
		EntropyLevel: a.Level,
	}
	if mk, ok := DecodeMasterKey(rec.Value); ok {
		ro.MasterKey = mk
	}
	return ro
}

func keyReport(key []byte, source string, offset int) *types.KeyReport {
	return keyReportScored(key, source, offset, analyzer.Entropy(key))
}

func keyReportScored(key []byte, source string, offset int, score float64) *types.KeyReport {
	a := analyzer.AssessScore(score, len(key))
	return &types.KeyReport{
		Hex:          utils.FormatHex(key),
		Length:       len(key),
		Source:       source,
		Offset:       offset,
		EntropyScore: a.Score,
		MaxEntropy:   a.MaxScore,
		Confidence:   a.Confidence,
		EntropyLevel: a.Level,
		Hash160:      utils.KeyFingerprint(key),
	}
}
