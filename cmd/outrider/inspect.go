package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardenworks/outrider/internal/store"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [prefix]",
	Short: "Dump coordination records from the store",
	Long: `Inspect prints every stored record whose key starts with the given
prefix, one JSON document per line. Useful prefixes: safety/, access/,
explore/, survey/, profit/, assign/, rr/, transit/.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) {
	st, err := store.Open(backend, storePath)
	if err != nil {
		slog.Error("opening store", "error", err, "backend", backend, "path", storePath)
		os.Exit(1)
	}
	defer st.Close()

	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}

	keys, err := st.Keys(prefix)
	if err != nil {
		slog.Error("listing keys", "error", err, "prefix", prefix)
		os.Exit(1)
	}

	for _, key := range keys {
		var raw json.RawMessage
		ok, err := st.Get(key, &raw)
		if err != nil {
			slog.Error("reading record", "error", err, "key", key)
			continue
		}
		if !ok {
			continue
		}
		fmt.Printf("%s\t%s\n", key, raw)
	}
	slog.Info("inspect complete", "prefix", prefix, "records", len(keys))
}
