package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/twofactor/internal/pkg/gridcard"
	"github.com/spf13/cobra"
)

const gridRowWidth = 10

var errBadChecksum = errors.New("key checksum does not match")

type sheetOutput struct {
	Key   string   `json:"key"`
	Codes []string `json:"codes"`
}

func newGridCardCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gridcard",
		Short: "Print and check HOTP grid cards",
	}

	cmd.AddCommand(
		newGridCardGenerateCmd(opts),
		newGridCardCodesCmd(opts),
		newGridCardCheckCmd(opts),
	)

	return cmd
}

func newGridCardGenerateCmd(opts *rootOptions) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new key and its code sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			defer cfg.Close()

			codec, err := opts.codec(cfg)
			if err != nil {
				return err
			}

			sheet, err := codec.NewSheet(size)
			if err != nil {
				return fmt.Errorf("generating sheet: %w", err)
			}

			return printSheet(cmd.OutOrStdout(), opts.json, sheetOutput{Key: sheet.Key, Codes: sheet.Codes})
		},
	}

	cmd.Flags().IntVar(&size, "size", gridcard.DefaultSheetSize, "Number of codes on the card")

	return cmd
}

// newGridCardCodesCmd reprints the sheet for an existing key.
func newGridCardCodesCmd(opts *rootOptions) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "codes <key>",
		Short: "Reprint the code sheet of an existing key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gridcard.VerifyChecksum(args[0]) {
				return errBadChecksum
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			defer cfg.Close()

			codec, err := opts.codec(cfg)
			if err != nil {
				return err
			}

			seed, err := codec.KeyToSeed(args[0])
			if err != nil {
				return err
			}

			codes, err := codec.ListCodes(seed, size)
			if err != nil {
				return err
			}

			return printSheet(cmd.OutOrStdout(), opts.json, sheetOutput{Key: gridcard.Normalize(args[0]), Codes: codes})
		},
	}

	cmd.Flags().IntVar(&size, "size", gridcard.DefaultSheetSize, "Number of codes on the card")

	return cmd
}

func newGridCardCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <key>",
		Short: "Validate the checksum of a printed key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok := gridcard.VerifyChecksum(args[0])

			if opts.json {
				if err := writeJSON(cmd.OutOrStdout(), map[string]bool{"valid": ok}); err != nil {
					return err
				}
			} else if ok {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
			}

			if !ok {
				return errBadChecksum
			}
			return nil
		},
	}
}

func printSheet(w io.Writer, asJSON bool, out sheetOutput) error {
	if asJSON {
		return writeJSON(w, out)
	}

	fmt.Fprintf(w, "key: %s\n\n", out.Key)
	for i, row := range lo.Chunk(out.Codes, gridRowWidth) {
		fmt.Fprintf(w, "%3d  %s\n", i*gridRowWidth, strings.Join(row, " "))
	}
	return nil
}
