package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gogogo1024/cultura/internal/catalog"
	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/gateway"
)

const seedDocumentName = "cultura-seed.txt"

func readSeed(path string) ([]catalog.SeedOrganization, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return catalog.ParseSeed(b)
}

func newSeedCmd(root *rootOptions) *cobra.Command {
	var file, owner string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import organizations and events into the catalog store",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readSeed(file)
			if err != nil {
				return err
			}
			ctx, cancel := root.context()
			defer cancel()
			comp, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer comp.Close()
			if comp.Backend == gateway.BackendMemory {
				common.L().Warn("seeding the in-memory store; data is dropped on exit")
			}
			events := 0
			for _, row := range rows {
				org := row.ToOrganization(owner)
				if err := comp.Catalog.SaveOrganization(ctx, org); err != nil {
					return fmt.Errorf("save %q: %w", row.Name, err)
				}
				events += len(org.Events)
				common.L().Debug("seeded organization", zap.String("id", org.ID), zap.String("name", org.Name))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d organizations (%d events) into %s\n", len(rows), events, comp.Backend)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (YAML or JSON list of organizations)")
	cmd.Flags().StringVar(&owner, "owner", "seed", "owner id recorded on imported organizations")
	return cmd
}

func newFlattenCmd(root *rootOptions) *cobra.Command {
	var file, out string
	var upload bool
	cmd := &cobra.Command{
		Use:   "flatten",
		Short: "Render a seed file as the assistant seed document",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readSeed(file)
			if err != nil {
				return err
			}
			doc := catalog.Flatten(rows)
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), doc)
			} else if err := os.WriteFile(out, []byte(doc+"\n"), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			if !upload {
				return nil
			}
			ctx, cancel := root.context()
			defer cancel()
			comp, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer comp.Close()
			if err := comp.Assistant.UploadAssistantDocument(ctx, seedDocumentName, []byte(doc)); err != nil {
				return fmt.Errorf("upload seed document: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "uploaded %s (%d organizations)\n", seedDocumentName, len(rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (YAML or JSON list of organizations)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the document here instead of stdout")
	cmd.Flags().BoolVar(&upload, "upload", false, "also upload the document to the assistant")
	return cmd
}
