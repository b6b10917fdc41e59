package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"wallet-lens/pkg/config"
	"wallet-lens/pkg/parser"
	"wallet-lens/pkg/report"
	"wallet-lens/pkg/types"
	"wallet-lens/pkg/utils"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const previewLen = 32

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Locate key material in a wallet file",
		Args:  cobra.NoArgs,
		RunE:  runExtract,
	}
	cmd.Flags().StringP("wallet", "w", "", "wallet.dat file path")
	cmd.Flags().StringP("config", "c", "", "YAML config file")
	config.RegisterFlags(cmd.Flags(), config.DefaultConfig())
	return cmd
}

type extraction struct {
	out     *types.ExtractionOutput
	preview []byte
	err     error
}

func runExtract(cmd *cobra.Command, _ []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	walletPath, _ := cmd.Flags().GetString("wallet")
	configPath, _ := cmd.Flags().GetString("config")
	if walletPath == "" {
		return printError(stdout, stderr, "INVALID_ARGS", "wallet file not specified, use --wallet <path>")
	}

	// Defaults, then the config file, then explicitly set flags
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return printError(stdout, stderr, "INVALID_CONFIG", err.Error())
		}
		cfg = loaded
	}
	if err := config.ApplyFlags(cmd.Flags(), cfg); err != nil {
		return printError(stdout, stderr, "INVALID_ARGS", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return printError(stdout, stderr, "INVALID_ARGS", err.Error())
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetLevel(cfg.LogLevel())

	opts, err := cfg.ExtractOptions(log)
	if err != nil {
		return printError(stdout, stderr, "INVALID_ARGS", err.Error())
	}
	opts.WalletPath = walletPath

	timeout := time.Duration(cfg.Extract.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	log.WithFields(logrus.Fields{
		"wallet":  walletPath,
		"timeout": timeout,
	}).Debug("starting wallet analysis")

	done := make(chan extraction, 1)
	go func() {
		buffer, err := utils.LoadBuffer(walletPath)
		if err != nil {
			done <- extraction{err: err}
			return
		}
		preview := append([]byte(nil), buffer[:min(previewLen, len(buffer))]...)
		done <- extraction{out: parser.Extract(buffer, opts), preview: preview}
	}()

	var res extraction
	select {
	case <-ctx.Done():
		return printError(stdout, stderr, "TIMEOUT",
			fmt.Sprintf("analysis did not finish within %s", timeout))
	case res = <-done:
	}

	if res.err != nil {
		var ioErr *utils.IOError
		if errors.As(res.err, &ioErr) && ioErr.NotFound() {
			return printError(stdout, stderr, "FILE_NOT_FOUND", res.err.Error())
		}
		return printError(stdout, stderr, "IO_ERROR", res.err.Error())
	}

	if err := writeReport(stdout, res, cfg, !cfg.Output.NoColor && !color.NoColor); err != nil {
		return printError(stdout, stderr, "IO_ERROR", err.Error())
	}

	if cfg.Output.Path != "" {
		var file bytes.Buffer
		if err := writeReport(&file, res, cfg, false); err != nil {
			return printError(stdout, stderr, "IO_ERROR", err.Error())
		}
		if err := os.WriteFile(cfg.Output.Path, file.Bytes(), 0600); err != nil {
			return printError(stdout, stderr, "IO_ERROR",
				fmt.Sprintf("failed to write output file: %v", err))
		}
		log.WithField("path", cfg.Output.Path).Info("report written")
	}

	log.Debug("operation completed")
	return nil
}

func writeReport(w io.Writer, res extraction, cfg *config.Config, useColor bool) error {
	if cfg.Output.JSON {
		return report.RenderJSON(w, res.out)
	}
	return report.RenderText(w, res.out, report.Options{
		Color:   useColor,
		Verbose: cfg.Output.Verbose,
		Preview: res.preview,
	})
}
