// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vecserve-dev/vecserve/pkg/client"
	vecerr "github.com/vecserve-dev/vecserve/pkg/errors"
)

func newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store [text]",
		Short: "Embed and store one chunk of text",
		Long:  "Store a chunk in the running server. Text is taken from the argument, or from stdin when omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStore,
	}

	cmd.Flags().String("doc-id", "", "document id the chunk belongs to (required)")
	cmd.Flags().String("chunk-id", "", "chunk id (generated when omitted)")
	cmd.Flags().String("metadata", "", "metadata as an inline JSON object")
	_ = cmd.MarkFlagRequired("doc-id")

	return cmd
}

func runStore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, err := readText(cmd, args)
	if err != nil {
		return err
	}

	chunkID, _ := cmd.Flags().GetString("chunk-id")
	if chunkID == "" {
		chunkID = uuid.NewString()
	}
	docID, _ := cmd.Flags().GetString("doc-id")

	metadata, err := parseMetadata(cmd)
	if err != nil {
		return err
	}

	c := client.New(client.Config{
		Addr:           cfg.Addr(),
		DialTimeout:    cfg.Client.DialTimeout,
		RequestTimeout: cfg.Client.RequestTimeout,
	})

	if err := c.Store(cmd.Context(), chunkID, docID, text, metadata); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored chunk %s in doc %s\n", chunkID, docID)
	return err
}

func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", vecerr.Wrap(err, vecerr.CodeCLIInputInvalid, "reading text from stdin")
	}

	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return "", vecerr.New(vecerr.CodeCLIInputInvalid, "no text provided on argument or stdin")
	}
	return text, nil
}

func parseMetadata(cmd *cobra.Command) (map[string]any, error) {
	raw, _ := cmd.Flags().GetString("metadata")
	if raw == "" {
		return nil, nil
	}

	var metadata map[string]any
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, vecerr.Wrap(err, vecerr.CodeCLIInputInvalid, "parsing --metadata as a JSON object")
	}
	return metadata, nil
}
