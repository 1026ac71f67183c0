package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	libOTP "github.com/pquerna/otp"
	"github.com/shandysiswandi/twofactor/internal/pkg/config"
	"github.com/shandysiswandi/twofactor/internal/pkg/gridcard"
	"github.com/shandysiswandi/twofactor/internal/pkg/otp"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	json       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "twofactorctl",
		Short: "Operator tooling for the twofactor service",
		Long: `twofactorctl works directly with the service secrets, without a running server.

Examples:
  twofactorctl gridcard generate            Print a new grid card
  twofactorctl gridcard check brzguxg3uw5   Validate a printed key
  twofactorctl token mint --service identity --scope twofactor:verify`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "./config/config.yaml"
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultPath, "Path to the service config file")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Output as JSON")

	cmd.AddCommand(newGridCardCmd(opts), newTokenCmd(opts))

	return cmd
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.NewViper(o.configPath,
		config.WithDotEnv(".env"),
		config.WithEnvPrefix("TWOFACTOR"),
		config.WithoutWatch(),
	)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) codec(cfg config.Config) (*gridcard.Codec, error) {
	codes := otp.NewGenerator(otp.Config{
		Issuer: cfg.GetString("twofactor.issuer"),
		Digits: libOTP.Digits(cfg.GetInt("twofactor.digits")),
	})

	codec, err := gridcard.NewCodec([]byte(cfg.GetString("twofactor.secret_key")), codes)
	if err != nil {
		return nil, fmt.Errorf("building grid card codec: %w", err)
	}
	return codec, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
