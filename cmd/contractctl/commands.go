package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"contracthub/internal/contractabi"
	"contracthub/internal/extension"

	"github.com/spf13/cobra"
)

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func newExtensionsCommand() *cobra.Command {
	var treeOnly bool
	cmd := &cobra.Command{
		Use:   "extensions <abi.json|->",
		Short: "Detect the extensions implemented by an ABI",
		Example: `  contractctl extensions out/Drop.abi.json
  cat Drop.abi.json | contractctl extensions -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			parsed, err := contractabi.Parse(raw)
			if err != nil {
				return err
			}
			tree := extension.Detect(parsed)
			if treeOnly {
				return printJSON(cmd.OutOrStdout(), tree)
			}
			return printJSON(cmd.OutOrStdout(), extension.ExtractExtensions(tree))
		},
	}
	cmd.Flags().BoolVar(&treeOnly, "tree", false, "print the full feature tree instead of enabled and suggested extensions")
	return cmd
}

func newMetadataCommand(flags *rootFlags) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "metadata <contract-id>",
		Short: "Resolve the publish metadata of a built-in key or IPFS URI",
		Example: `  contractctl metadata drop-erc721
  contractctl metadata ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/0 --full`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.service(flags.logger(cmd.ErrOrStderr()), false)
			if err != nil {
				return err
			}
			defer e.Close()
			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			if full {
				meta, err := e.svc.FetchFullPublishMetadata(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), meta)
			}
			record, err := e.svc.FetchPublishMetadataFromURI(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), record)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "fetch the full publish document with the publisher resolved")
	return cmd
}

func newENSCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ens <address-or-name>",
		Short: "Resolve an address or ENS name to both forms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.service(flags.logger(cmd.ErrOrStderr()), false)
			if err != nil {
				return err
			}
			defer e.Close()
			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			id, err := e.svc.ResolveIdentity(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), id)
		},
	}
}

func newVersionsCommand(flags *rootFlags) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "versions <publisher> [contract-name]",
		Short: "List the published versions of a contract, newest first",
		Long: `List the published versions of a contract, newest first.

With --list, or without a contract name, every contract of the publisher is
listed with its latest metadata instead.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.service(flags.logger(cmd.ErrOrStderr()), true)
			if err != nil {
				return err
			}
			defer e.Close()
			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			if list || len(args) == 1 {
				contracts, err := e.svc.FetchPublishedContracts(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), contracts)
			}
			versions, err := e.svc.FetchAllVersions(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				return fmt.Errorf("no published versions of %q by %s", args[1], args[0])
			}
			return printJSON(cmd.OutOrStdout(), versions)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list every contract of the publisher")
	return cmd
}
