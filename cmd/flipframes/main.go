// Package main provides flipframes, an offline exporter that replays a page
// turn through the flipbook module and writes every frame as a WebP image.
//
// Usage:
//
//	go run ./cmd/flipframes --out frames [flags]
//
// Examples:
//
//	# 从右下角拖到左侧并在 600ms 后松手（完成翻页）
//	flipframes --out frames --from 399,299 --to 50,150 --hold 600ms
//
//	# 快速轻扫：100ms 内几乎不动就松手，仍然会翻页
//	flipframes --out flick --from 399,299 --to 390,295 --hold 100ms
//
//	# 程序化翻页（方向键效果）
//	flipframes --out next --turn next
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var opts exportOptions

var rootCmd = &cobra.Command{
	Use:   "flipframes",
	Short: "Render a scripted page turn to WebP frames",
	Long: `Replays a pointer gesture (press, drag, release) or a programmatic turn
through the flipbook module at a fixed frame rate, rasterizes each frame on
the CPU and writes frame_NNNN.webp files to the output directory.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := runExport(opts, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s (page %d -> %d)\n",
			summary.Frames, opts.OutDir, summary.StartPage, summary.EndPage)
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&opts.ConfigPath, "config", "data/flipbook.yaml", "flipbook YAML config")
	f.StringVarP(&opts.OutDir, "out", "o", "frames", "output directory")
	f.Float64SliceVar(&opts.From, "from", nil, "press point x,y in page coordinates (default: just inside the bottom-right corner)")
	f.Float64SliceVar(&opts.To, "to", nil, "release point x,y in page coordinates (default: left of center)")
	f.DurationVar(&opts.Hold, "hold", 600*time.Millisecond, "time between press and release")
	f.StringVar(&opts.Turn, "turn", "", "programmatic turn instead of a drag: next or prev")
	f.IntVar(&opts.StartPage, "start-page", 0, "page shown before the gesture")
	f.IntVar(&opts.FPS, "fps", 60, "frames per second")
	f.IntVar(&opts.Scale, "scale", 2, "supersampling factor")
	f.IntVar(&opts.MaxFrames, "max-frames", 600, "stop after this many frames")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
