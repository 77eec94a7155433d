// Command rosterctl là công cụ offline cho file roster (lw.json):
// kiểm tra, liệt kê tên, chuẩn hóa/xuất excel và tạo admin password hash.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lw-rpg-backend/internal/domains/character/model"
	"lw-rpg-backend/internal/domains/roster"
	"lw-rpg-backend/internal/domains/roster/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	noCompanions bool
	xlsxOut      string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "rosterctl",
		Short:         "rosterctl - LW-RPG roster tooling",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVar(&opts.noCompanions, "no-companions", false, "Treat companions as an unknown key")

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a roster file decodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d characters\n", store.Count())
			return nil
		},
	}

	namesCmd := &cobra.Command{
		Use:   "names <file>",
		Short: "Print character names in roster order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, name := range splitIndex(store.NameIndex()) {
				fmt.Fprintf(out, "%d\t%s\n", i, name)
			}
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Print the canonical pretty JSON, optionally write an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.load(args[0])
			if err != nil {
				return err
			}
			if opts.xlsxOut == "" {
				fmt.Fprintln(cmd.OutOrStdout(), store.SerializeRoster())
				return nil
			}
			data, err := service.WorkbookBytes(store.Characters())
			if err != nil {
				return err
			}
			if err := os.WriteFile(opts.xlsxOut, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.xlsxOut, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d characters)\n", opts.xlsxOut, store.Count())
			return nil
		},
	}
	exportCmd.Flags().StringVar(&opts.xlsxOut, "xlsx", "", "Write an xlsx workbook to this path")

	hashCmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Generate ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := service.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	rootCmd.AddCommand(validateCmd, namesCmd, exportCmd, hashCmd)
	return rootCmd
}

func (o *rootOptions) load(path string) (*roster.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	store, err := roster.New(string(data), roster.WithSchema(model.Schema{Companions: !o.noCompanions}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// splitIndex tách name index (name\0name\0...) thành từng tên
func splitIndex(index []byte) []string {
	parts := bytes.Split(index, []byte{0})
	names := make([]string, 0, len(parts))
	for _, p := range parts[:len(parts)-1] {
		names = append(names, string(p))
	}
	return names
}
