package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/dragonpano/pkg/config"
	"github.com/tauraamui/dragonpano/pkg/configdef"
	"github.com/tauraamui/dragonpano/pkg/log"
	"github.com/tauraamui/dragonpano/pkg/pano"
	"github.com/tauraamui/dragonpano/pkg/video/videobackend"
)

const (
	name        = "dragonpano"
	description = "Samples key frames from a panning video and stitches them into a panorama"
)

type options struct {
	configPath   string
	videoPath    string
	outputFolder string
	outputPath   string
	rate         int
	count        int
	orderBy      string
	ext          string
	maxFrames    int
	store        string
	backend      string
	progress     bool
	debug        bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           name,
		Short:         description,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd, opts, func(ctx context.Context, p *pano.Pipeline) error {
				report, err := p.Run(ctx)
				if err != nil {
					return err
				}
				log.Info("Panorama %s written to %s from %d samples", report.Stitch.Panorama, report.Stitch.OutputPath, report.Sampling.Samples)
				return nil
			})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file")
	flags.StringVar(&opts.videoPath, "video", "", "video to sample")
	flags.StringVar(&opts.outputFolder, "output-folder", "", "folder to persist sampled frames to")
	flags.StringVar(&opts.outputPath, "output", "", "path to write the panorama to")
	flags.IntVar(&opts.rate, "rate", 0, "samples per second of video")
	flags.IntVar(&opts.count, "count", 0, "number of samples to stitch")
	flags.StringVar(&opts.orderBy, "order-by", "", "stitch order, width or index")
	flags.StringVar(&opts.ext, "ext", "", "sampled frame extension, .jpg or .png")
	flags.IntVar(&opts.maxFrames, "max-frames", 0, "stop sampling after this many frames, 0 for no limit")
	flags.StringVar(&opts.store, "store", "", "artifact store, directory or sqlite")
	flags.StringVar(&opts.backend, "backend", "", "video backend, opencv or mock")
	flags.BoolVar(&opts.progress, "progress", false, "show sampling progress")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "sample",
		Short: "Only sample frames from the video into the output folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd, opts, func(ctx context.Context, p *pano.Pipeline) error {
				_, err := p.Sample(ctx)
				return err
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "stitch",
		Short: "Only stitch previously sampled frames into a panorama",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd, opts, func(ctx context.Context, p *pano.Pipeline) error {
				_, err := p.Stitch()
				return err
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "setup",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info("Setting up %s...", name)
			err := config.DefaultCreator().Create()
			if err != nil {
				if !errors.Is(err, configdef.ErrConfigAlreadyExists) {
					return err
				}
				log.Error(err.Error())
			}
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "remove-setup",
		Short: "Delete the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info("Removing setup for %s...", name)
			return config.DefaultDestroyer().Destroy()
		},
	})

	return rootCmd
}

func withPipeline(cmd *cobra.Command, opts *options, run func(context.Context, *pano.Pipeline) error) error {
	if opts.debug {
		log.SetLevel("debug")
	}

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	if cfg.Debug {
		log.SetLevel("debug")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cancelOnSignal(ctx, cancel)

	pipelineOpts := []pano.Option{}
	if opts.progress {
		pipelineOpts = append(pipelineOpts, pano.WithProgress(progressBar))
	}

	return run(ctx, pano.New(cfg, videobackend.Resolve(cfg.VideoBackend), pipelineOpts...))
}

func resolveConfig(cmd *cobra.Command, opts *options) (configdef.Values, error) {
	resolver := config.DefaultResolver()
	if len(opts.configPath) > 0 {
		resolver = config.PathResolver(opts.configPath)
	}

	cfg, err := resolver.Resolve()
	if err != nil {
		return configdef.Values{}, err
	}

	applyOverrides(cmd, opts, &cfg)
	if err := cfg.RunValidate(); err != nil {
		return configdef.Values{}, err
	}
	return cfg, nil
}

// applyOverrides copies only the flags set on the command line over
// the resolved config.
func applyOverrides(cmd *cobra.Command, opts *options, cfg *configdef.Values) {
	changed := func(flag string) bool {
		return cmd.Flags().Changed(flag)
	}

	if changed("video") {
		cfg.VideoPath = opts.videoPath
	}
	if changed("output-folder") {
		cfg.OutputFolder = opts.outputFolder
	}
	if changed("output") {
		cfg.OutputPath = opts.outputPath
	}
	if changed("rate") {
		cfg.SampleRate = opts.rate
	}
	if changed("count") {
		cfg.SampleCount = opts.count
	}
	if changed("order-by") {
		cfg.OrderBy = opts.orderBy
	}
	if changed("ext") {
		cfg.FrameExt = opts.ext
	}
	if changed("max-frames") {
		cfg.MaxFrames = opts.maxFrames
	}
	if changed("store") {
		cfg.ArtifactStore = opts.store
	}
	if changed("backend") {
		cfg.VideoBackend = opts.backend
	}
	if changed("debug") {
		cfg.Debug = opts.debug
	}
}

func cancelOnSignal(ctx context.Context, cancel context.CancelFunc) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	select {
	case killSignal := <-interrupt:
		log.Error("Received signal: %s", killSignal)
		cancel()
	case <-ctx.Done():
	}
}

func progressBar(total int) func(int) {
	if total <= 0 {
		log.Warn("Video frame count unknown, not showing progress")
		return nil
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Sampling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { os.Stderr.WriteString("\n") }),
		progressbar.OptionSetWriter(os.Stderr),
	)
	return func(decoded int) {
		if decoded >= total {
			bar.Finish() //nolint
			return
		}
		bar.Set(decoded) //nolint
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	logging.CallbackLabelLevel = 5
	logging.ColorLogLevelLabelOnly = true
	log.SetLevel(os.Getenv("DRAGON_PANO_LOGGING_LEVEL"))
}
