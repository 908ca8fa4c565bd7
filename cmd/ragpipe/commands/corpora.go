// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragpipe/ragpipe/internal/logging"
	"github.com/ragpipe/ragpipe/internal/rag"
)

// NewCorporaCmd constructs the `ragpipe corpora` command, which lists all
// corpora visible in the configured project and location.
func NewCorporaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "corpora",
		Short: "List RAG corpora in the project and location",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := cfg.Validate(); err != nil {
				return err
			}

			svc, err := rag.NewService(ctx, cfg.Project, cfg.Location,
				rag.WithLogger(logging.FromContext(ctx)),
			)
			if err != nil {
				return fmt.Errorf("corpora: %w", err)
			}
			defer svc.Close()

			corpora, err := svc.ListCorpora(ctx)
			if err != nil {
				return fmt.Errorf("corpora: %w", err)
			}

			if len(corpora) == 0 {
				fmt.Println("No corpora found.")
				return nil
			}

			for _, c := range corpora {
				fmt.Printf("%s\t%s\t%s\n", c.DisplayName, c.State, c.Name)
			}

			return nil
		},
	}
}
