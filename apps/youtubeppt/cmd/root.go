package youtubeppt

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sandudorogan/youtube-ppt/cachestore"
	"github.com/sandudorogan/youtube-ppt/deck"
	"github.com/sandudorogan/youtube-ppt/downloader"
	"github.com/sandudorogan/youtube-ppt/metadata"
	"github.com/sandudorogan/youtube-ppt/pipeline"
	processor "github.com/sandudorogan/youtube-ppt/processors"
	"github.com/sandudorogan/youtube-ppt/slides"
)

const manifestFilename = "manifest.db"

var rootCmd = &cobra.Command{
	Use:           "youtube-ppt url",
	Short:         "Create a PowerPoint presentation from a YouTube video",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cropSpec, _ := cmd.Flags().GetString("crop")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		output, _ := cmd.Flags().GetString("output")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		cfg, err := LoadConfig()
		if err != nil {
			return err
		}

		videoID, err := downloader.ResolveVideoID(args[0])
		if err != nil {
			return err
		}

		var crop *slides.CropRect
		if cropSpec != "" {
			crop, err = slides.ParseCropRect(cropSpec)
			if err != nil {
				return err
			}
		}

		rng, err := slides.ParseTimeRange(start, end)
		if err != nil {
			return err
		}

		if output == "" {
			output = videoID + ".pptx"
		}

		store, err := cachestore.NewLocalStore(cfg.CacheDir)
		if err != nil {
			return err
		}

		// The manifest is bookkeeping only; a broken one must not block
		// the conversion.
		var manifest *metadata.Manifest
		manifest, err = metadata.Open(filepath.Join(store.Root(), manifestFilename))
		if err != nil {
			log.Warn().Err(err).Msg("cache manifest unavailable, continuing without it")
			manifest = nil
		} else {
			defer manifest.Close() // nolint: errcheck
		}

		runner := &pipeline.Runner{
			Store:    store,
			Manifest: manifest,
			Acquirer: downloader.New(store, downloader.FetchYouTube),
			Sampler: processor.NewSampler(processor.SamplerConfig{
				SampleInterval: time.Duration(cfg.SampleIntervalSeconds * float64(time.Second)),
			}),
			Threshold: cfg.MSEThreshold,
		}

		deckPath, err := runner.Run(cmd.Context(), pipeline.Options{
			URL:        args[0],
			VideoID:    videoID,
			Crop:       crop,
			Range:      rng,
			OutputPath: output,
			NoCache:    noCache,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "PowerPoint presentation created: %s\n", deckPath)
		return nil
	},
}

func init() {
	rootCmd.Flags().String("crop", "", "crop rectangle in format x,y,width,height")
	rootCmd.Flags().String("start", "", "start time in format MM:SS")
	rootCmd.Flags().String("end", "", "end time in format MM:SS")
	rootCmd.Flags().String("output", "", "output PowerPoint file path (defaults to <videoID>.pptx)")
	rootCmd.Flags().Bool("no-cache", false, "disable caching and force redownload of video and regeneration of images")

	rootCmd.PersistentFlags().String("cache-dir", DefaultCacheDir(), "directory for cached videos and frame sets")
	rootCmd.PersistentFlags().Float64("threshold", slides.DefaultMSEThreshold, "MSE above which a frame becomes a new slide")
	rootCmd.PersistentFlags().Float64("sample-interval", 1.0, "seconds between sampled frames")

	viper.BindPFlag("cache_dir", rootCmd.PersistentFlags().Lookup("cache-dir"))                     // nolint: errcheck
	viper.BindPFlag("mse_threshold", rootCmd.PersistentFlags().Lookup("threshold"))                 // nolint: errcheck
	viper.BindPFlag("sample_interval_seconds", rootCmd.PersistentFlags().Lookup("sample-interval")) // nolint: errcheck

	viper.SetEnvPrefix("YTPPT")
	viper.AutomaticEnv()
}

// Execute runs the CLI and maps the error taxonomy onto exit codes: 2 for
// invalid input, 3 for download failures, 4 for internal invariant
// violations, 5 for unusable output destinations.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("conversion failed")
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, slides.ErrInvalidInput):
		return 2
	case errors.Is(err, downloader.ErrDownload):
		return 3
	case errors.Is(err, slides.ErrFrameSizeMismatch):
		return 4
	case errors.Is(err, deck.ErrWrite):
		return 5
	}
	return 1
}
