// Command postimage generates one branded LinkedIn graphic for a topic.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhpenta/postimage"
	"github.com/mhpenta/postimage/config"
	"github.com/mhpenta/postimage/provider/gemini"
)

var (
	style        string
	templateDesc string
	heroCopy     string
	referenceDir string
	debugMode    bool
)

var rootCmd = &cobra.Command{
	Use:           "postimage <topic>",
	Short:         "Generate a branded LinkedIn post graphic",
	Long:          `Builds a branded prompt for a topic, sends it with the newest reference images to Gemini and saves the returned image as PNG.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if debugMode {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		pipeline := postimage.NewPipeline(cfg, gemini.Factory, postimage.WithLogger(logger))
		res := pipeline.GeneratePostImage(context.Background(), postimage.Request{
			Topic:               args[0],
			Style:               style,
			TemplateDescription: templateDesc,
			HeroCopy:            heroCopy,
			ReferenceDir:        referenceDir,
		})

		path, ok := res.Path()
		if !ok {
			return res.Err()
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&style, "style", postimage.DefaultStyle, "Style hint (recorded, not sent to the model)")
	rootCmd.Flags().StringVar(&templateDesc, "template", "", "Template description overriding the brand template")
	rootCmd.Flags().StringVar(&heroCopy, "hero-copy", "", "Headline source text (first 10 words are used)")
	rootCmd.Flags().StringVar(&referenceDir, "reference-dir", "", "Directory of reference images (defaults to <base>/images)")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
