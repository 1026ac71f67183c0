package main

import (
	"fmt"

	"github.com/shandysiswandi/twofactor/internal/pkg/clock"
	"github.com/shandysiswandi/twofactor/internal/pkg/jwt"
	"github.com/shandysiswandi/twofactor/internal/pkg/uid"
	"github.com/spf13/cobra"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage service tokens",
	}

	cmd.AddCommand(newTokenMintCmd(opts))

	return cmd
}

func newTokenMintCmd(opts *rootOptions) *cobra.Command {
	var (
		service string
		scopes  []string
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a service token for a calling service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			defer cfg.Close()

			signer, err := jwt.NewHS512(jwt.Config{
				Secret:    []byte(cfg.GetString("jwt.secret")),
				Issuer:    cfg.GetString("jwt.issuer"),
				Audiences: cfg.GetArray("jwt.audiences"),
				TTL:       cfg.GetMinute("jwt.ttl_minutes"),
				Clock:     clock.New(),
				UUID:      uid.NewUUID(),
			})
			if err != nil {
				return fmt.Errorf("building signer: %w", err)
			}

			token, err := signer.Generate(service, scopes)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"token": token})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "Name of the calling service")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{jwt.ScopeVerify}, "Granted scopes")
	_ = cmd.MarkFlagRequired("service")

	return cmd
}
