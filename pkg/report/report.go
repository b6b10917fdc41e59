package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"wallet-lens/pkg/types"
	"wallet-lens/pkg/utils"
)

// previewBytes is how much of the wallet a verbose report dumps
const previewBytes = 32

// Options controls one rendering call
type Options struct {
	Color   bool
	Verbose bool
	Preview []byte // leading wallet bytes, shown when Verbose
}

type palette struct {
	header  *color.Color
	label   *color.Color
	key     *color.Color
	info    *color.Color
	warning *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		header:  color.New(color.FgCyan, color.Bold),
		label:   color.New(color.FgWhite),
		key:     color.New(color.FgGreen, color.Bold),
		info:    color.New(color.FgBlue),
		warning: color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.header, p.label, p.key, p.info, p.warning} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// RenderJSON writes the report as indented JSON
func RenderJSON(w io.Writer, out *types.ExtractionOutput) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// RenderText writes the human-readable analysis summary
func RenderText(w io.Writer, out *types.ExtractionOutput, opts Options) error {
	p := newPalette(opts.Color)
	var sb strings.Builder

	if opts.Verbose {
		p.info.Fprintf(&sb, "[Info] Wallet size %d bytes, strategy %s\n", out.SizeBytes, out.Strategy)
		if len(opts.Preview) > 0 {
			p.info.Fprintf(&sb, "[Data] Pattern buffer (first %d bytes):\n", min(previewBytes, len(opts.Preview)))
			fmt.Fprintf(&sb, "   %s\n", utils.HexDump(opts.Preview, previewBytes))
		}
		for _, rec := range out.Records {
			p.info.Fprintf(&sb, "[Record %d] offset %d, length %d, key %s, entropy %.4f (%s)\n",
				rec.Index, rec.Offset, rec.Length, rec.KeyHex, rec.KeyEntropy, rec.EntropyLevel)
			if mk := rec.MasterKey; mk != nil {
				p.info.Fprintf(&sb, "           master key: %d-byte ciphertext, salt %s, %s, %d iterations\n",
					mk.EncryptedKeyLen, mk.SaltHex, mk.DerivationLabel, mk.DeriveIterations)
			}
		}
		if t := out.Truncation; t != nil {
			p.warning.Fprintf(&sb, "[Warn] Record at offset %d truncated (declared %d, available %d)\n",
				t.Offset, t.Declared, t.Available)
		}
	}

	if !out.Found {
		if len(out.Records) == 0 && out.Strategy != "entropy" {
			p.info.Fprintf(&sb, "[INFO] No %s entries found in wallet\n", out.Marker)
		}
		p.info.Fprintln(&sb, "[INFO] No key material located")
		writeWarnings(&sb, p, out.Warnings)
		_, err := io.WriteString(w, sb.String())
		return err
	}

	key := out.Key
	p.header.Fprintln(&sb, "[ANALYSIS SUMMARY]")
	field := func(name, format string, args ...any) {
		p.label.Fprintf(&sb, "%-19s: ", name)
		fmt.Fprintf(&sb, format+"\n", args...)
	}
	if out.WalletPath != "" {
		field("Wallet File", "%s", out.WalletPath)
	}
	field("Wallet Format", "%s", out.Format)
	field("Security Level", "%d", out.SecurityLevel)
	field("Strategy", "%s", out.Strategy)
	field("Analysis Date", "%s", time.Unix(out.AnalyzedAt, 0).UTC().Format(time.RFC3339))
	field("Report ID", "%s", out.ReportID)
	field("Wallet SHA256d", "%s", out.WalletDigest)
	field("Key Source", "%s at offset %d", key.Source, key.Offset)
	field("Records Found", "%d", len(out.Records))
	field("Confidence Score", "%.1f%%", key.Confidence)
	field("Entropy Level", "%s (%.4f of %.4f bits)", key.EntropyLevel, key.EntropyScore, key.MaxEntropy)
	field("Key HASH160", "%s", key.Hash160)
	p.label.Fprintf(&sb, "%-19s: ", "Final key")
	p.key.Fprintln(&sb, key.Hex)

	writeWarnings(&sb, p, out.Warnings)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeWarnings(sb *strings.Builder, p palette, warnings []types.Warning) {
	if len(warnings) == 0 {
		return
	}
	codes := make([]string, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	p.warning.Fprintf(sb, "%-19s: %s\n", "Warnings", strings.Join(codes, ", "))
}
