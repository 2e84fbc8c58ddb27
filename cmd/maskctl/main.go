package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eco2-team/backend/domains/json-masker/internal/config"
	"github.com/eco2-team/backend/domains/json-masker/internal/constants"
	"github.com/eco2-team/backend/domains/json-masker/internal/logging"
	"github.com/eco2-team/backend/domains/json-masker/internal/masking"
)

type rootFlags struct {
	fields  string
	mask    string
	envFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var args rootFlags

	cmd := &cobra.Command{
		Use:   "maskctl [file]",
		Short: "Mask configured JSON fields in a document",
		Long: "maskctl reads JSON text from file, or stdin when no file is given,\n" +
			"and writes it to stdout with the values of the configured fields masked.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, positional []string) error {
			return runMask(cmd, positional, args)
		},
	}

	cmd.Flags().StringVarP(&args.fields, "fields", "f", "", "Comma-separated field names (default $"+constants.EnvMaskedFields+")")
	cmd.Flags().StringVarP(&args.mask, "mask", "m", "", "Mask character (default $"+constants.EnvMaskChar+" or \""+constants.DefaultMaskChar+"\")")
	cmd.Flags().StringVarP(&args.envFile, "env-file", "", constants.DefaultEnvFile, "Optional .env file read before resolving defaults")

	return cmd
}

func runMask(cmd *cobra.Command, positional []string, args rootFlags) error {
	if _, err := config.LoadEnvFile(args.envFile); err != nil {
		return fmt.Errorf("load env file %q: %w", args.envFile, err)
	}
	cfg := config.Load()

	fields := cfg.MaskedFields
	if cmd.Flags().Changed("fields") {
		fields = args.fields
	}
	maskChar := cfg.MaskChar
	if cmd.Flags().Changed("mask") {
		maskChar = args.mask
	}

	logCfg := logging.DefaultConfig()
	logCfg.Output = cmd.ErrOrStderr()
	if _, ok := os.LookupEnv(constants.EnvLogLevel); !ok {
		logCfg.Level = logging.LevelWarn
	}
	logger := logging.New(logCfg)

	masker, err := masking.New(fields, logger)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(positional) == 1 {
		f, err := os.Open(positional[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	body, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	_, err = io.WriteString(cmd.OutOrStdout(), masker.MaskFieldsContext(cmd.Context(), string(body), maskChar))
	return err
}
