// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vecserve-dev/vecserve/pkg/client"
	vecerr "github.com/vecserve-dev/vecserve/pkg/errors"
	"github.com/vecserve-dev/vecserve/pkg/protocol"
	"gopkg.in/yaml.v3"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored chunks by similarity",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().IntP("top-k", "k", 0, "maximum number of results (server default when omitted)")
	cmd.Flags().String("doc-id", "", "restrict results to one document")
	cmd.Flags().StringP("output", "o", "text", "output format: text, json, or yaml")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("output")
	if format != "text" && format != "json" && format != "yaml" {
		return vecerr.Errorf(vecerr.CodeCLIInputInvalid, "unknown output format %q (want text, json, or yaml)", format)
	}

	topK, _ := cmd.Flags().GetInt("top-k")
	docID, _ := cmd.Flags().GetString("doc-id")

	c := client.New(client.Config{
		Addr:           cfg.Addr(),
		DialTimeout:    cfg.Client.DialTimeout,
		RequestTimeout: cfg.Client.RequestTimeout,
	})

	results, err := c.Search(cmd.Context(), args[0], topK, docID)
	if err != nil {
		return err
	}

	return printResults(cmd.OutOrStdout(), results, format)
}

// printedResult is the CLI-facing shape of a search hit; metadata is decoded
// so json and yaml output render it as a mapping rather than raw bytes.
type printedResult struct {
	ChunkID  string         `json:"chunk_id" yaml:"chunk_id"`
	Score    float64        `json:"score" yaml:"score"`
	Text     string         `json:"text" yaml:"text"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

func printResults(w io.Writer, results []protocol.SearchResult, format string) error {
	printed := make([]printedResult, 0, len(results))
	for _, r := range results {
		p := printedResult{ChunkID: r.ChunkID, Score: r.Score, Text: r.Text}
		if len(r.Metadata) > 0 {
			// Metadata was validated server-side; decode failures would mean
			// a corrupted response, which the caller should see.
			if err := json.Unmarshal(r.Metadata, &p.Metadata); err != nil {
				return vecerr.Wrap(err, vecerr.CodeClientRequestFailure, "decoding result metadata")
			}
		}
		printed = append(printed, p)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(printed)
	case "yaml":
		return yaml.NewEncoder(w).Encode(printed)
	default:
		if len(printed) == 0 {
			_, err := fmt.Fprintln(w, "no results")
			return err
		}
		for i, p := range printed {
			if _, err := fmt.Fprintf(w, "%d. %s (score %.4f)\n   %s\n", i+1, p.ChunkID, p.Score, p.Text); err != nil {
				return err
			}
		}
		return nil
	}
}
