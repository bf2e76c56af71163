package youtubeppt

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sandudorogan/youtube-ppt/cachestore"
	"github.com/sandudorogan/youtube-ppt/metadata"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the conversion cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached videos and frame sets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}

		manifest, err := metadata.Open(filepath.Join(cfg.CacheDir, manifestFilename))
		if err != nil {
			return err
		}
		defer manifest.Close() // nolint: errcheck

		entries, err := manifest.List(cmd.Context())
		if err != nil {
			return err
		}

		// Pretty print the entries as json
		o, _ := json.MarshalIndent(entries, "", "  ")
		cmd.Println(string(o))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached video and frame set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}

		store, err := cachestore.NewLocalStore(cfg.CacheDir)
		if err != nil {
			return err
		}

		manifest, err := metadata.Open(filepath.Join(store.Root(), manifestFilename))
		if err != nil {
			return err
		}
		defer manifest.Close() // nolint: errcheck

		entries, err := manifest.List(cmd.Context())
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if err := store.Remove(entry.Key); err != nil {
				return fmt.Errorf("remove cache entry %s: %w", entry.Key, err)
			}
		}
		if err := manifest.Clear(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", len(entries))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}
