package main

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"time"

	"github.com/decker502/flipbook/pkg/components"
	"github.com/decker502/flipbook/pkg/config"
	"github.com/decker502/flipbook/pkg/modules"
	"github.com/decker502/flipbook/pkg/render"
	"github.com/decker502/flipbook/pkg/utils"
)

// exportOptions 命令行参数
type exportOptions struct {
	ConfigPath string
	OutDir     string
	From, To   []float64
	Hold       time.Duration
	Turn       string
	StartPage  int
	FPS        int
	Scale      int
	MaxFrames  int
}

// exportSummary 导出结果
type exportSummary struct {
	Frames    int
	StartPage int
	EndPage   int
}

// gestureScript 一次脚本化的翻页
// Turn 非空时是程序化翻页，否则是 From -> To 的拖拽，Hold 后松手
type gestureScript struct {
	Turn     string
	From, To utils.Point2D
	Hold     time.Duration
}

func runExport(o exportOptions, out io.Writer) (exportSummary, error) {
	if o.FPS <= 0 {
		return exportSummary{}, fmt.Errorf("--fps must be > 0, got %d", o.FPS)
	}
	if o.MaxFrames <= 0 {
		return exportSummary{}, fmt.Errorf("--max-frames must be > 0, got %d", o.MaxFrames)
	}

	cfg, err := config.LoadFlipbookConfig(o.ConfigPath)
	if err != nil {
		return exportSummary{}, err
	}
	script, err := buildScript(o, cfg.Width, cfg.Height)
	if err != nil {
		return exportSummary{}, err
	}

	book, err := newBook(cfg)
	if err != nil {
		return exportSummary{}, err
	}
	book.SetPage(o.StartPage)

	scale := max(o.Scale, 1)
	pages := pageImages(cfg, filepath.Dir(o.ConfigPath), scale, out)
	rast := render.NewFrameRasterizer(pages, cfg.Width, cfg.Height, scale)
	rast.BackColor = config.MustParseHexColor(cfg.BackColor)
	rast.Background = config.MustParseHexColor(cfg.Background)

	summary := exportSummary{StartPage: book.CurrentPage()}
	tick := time.Second / time.Duration(o.FPS)
	frames, err := playScript(book, script, tick, o.MaxFrames, func(i int, frame components.FlipFrame) error {
		path := filepath.Join(o.OutDir, fmt.Sprintf("frame_%04d.webp", i))
		return render.WriteWebP(path, rast.Rasterize(frame))
	})
	summary.Frames = frames
	summary.EndPage = book.CurrentPage()
	return summary, err
}

// buildScript 由参数生成脚本；缺省的起点在右下角内侧，终点在页面左半部
func buildScript(o exportOptions, width, height float64) (gestureScript, error) {
	switch o.Turn {
	case "":
	case "next", "prev":
		return gestureScript{Turn: o.Turn}, nil
	default:
		return gestureScript{}, fmt.Errorf("--turn must be next or prev, got %q", o.Turn)
	}

	from := utils.Pt(width-1, height-1)
	to := utils.Pt(width/8, height/2)
	if o.From != nil {
		p, err := pointArg("from", o.From)
		if err != nil {
			return gestureScript{}, err
		}
		from = p
	}
	if o.To != nil {
		p, err := pointArg("to", o.To)
		if err != nil {
			return gestureScript{}, err
		}
		to = p
	}
	if o.Hold < 0 {
		return gestureScript{}, fmt.Errorf("--hold must be >= 0, got %v", o.Hold)
	}
	return gestureScript{From: from, To: to, Hold: o.Hold}, nil
}

func pointArg(name string, v []float64) (utils.Point2D, error) {
	if len(v) != 2 {
		return utils.Point2D{}, fmt.Errorf("--%s expects x,y, got %v", name, v)
	}
	p := utils.Pt(v[0], v[1])
	if !p.IsFinite() {
		return utils.Point2D{}, fmt.Errorf("--%s must be finite, got %v", name, v)
	}
	return p, nil
}

func newBook(cfg *config.FlipbookConfig) (*modules.FlipbookModule, error) {
	pages := make([]any, len(cfg.Pages))
	for i := range cfg.Pages {
		pages[i] = cfg.Pages[i]
	}
	return modules.NewFlipbookModule(modules.FlipbookOptions{
		Pages:      pages,
		Width:      cfg.Width,
		Height:     cfg.Height,
		CornerSize: cfg.CornerSize,
		Animation: components.AnimationConfig{
			Duration:  cfg.Duration(),
			Easing:    cfg.EasingControlPoints(),
			Lift:      cfg.Lift,
			MaxShadow: cfg.MaxShadow,
		},
		QuickFlipThreshold: cfg.QuickFlipThreshold(),
		DisableBackward:    cfg.DisableBackward,
	})
}

// pageImages 生成超采样的页面位图；图片加载失败时退回纯色页面
func pageImages(cfg *config.FlipbookConfig, baseDir string, scale int, out io.Writer) []image.Image {
	pages := make([]image.Image, len(cfg.Pages))
	for i, page := range cfg.Pages {
		img, err := render.PageImage(page, i, len(cfg.Pages), cfg.Width, cfg.Height, scale, baseDir)
		if err != nil {
			fmt.Fprintf(out, "warning: page %d: %v (using plain page)\n", i, err)
			page.Image = ""
			img, _ = render.PageImage(page, i, len(cfg.Pages), cfg.Width, cfg.Height, scale, baseDir)
		}
		pages[i] = img
	}
	return pages
}

// playScript 以固定帧间隔驱动翻页组件，每帧调用 emit
//
// 第 0 帧是手势开始前的画面；之后每个 tick 先投递指针事件再推进动画。
// 动画结束后再输出一帧静止画面。返回输出的帧数。
func playScript(book *modules.FlipbookModule, s gestureScript, tick time.Duration, maxFrames int, emit func(int, components.FlipFrame) error) (int, error) {
	frames := 0
	next := func() error {
		if frames >= maxFrames {
			return fmt.Errorf("gesture did not settle within %d frames", maxFrames)
		}
		err := emit(frames, book.Frame())
		frames++
		return err
	}

	if err := next(); err != nil {
		return frames, err
	}

	switch s.Turn {
	case "next":
		if !book.FlipNext() {
			return frames, fmt.Errorf("cannot turn forward from page %d", book.CurrentPage())
		}
	case "prev":
		if !book.FlipPrev() {
			return frames, fmt.Errorf("cannot turn back from page %d", book.CurrentPage())
		}
	default:
		if err := playDrag(book, s, tick, next); err != nil {
			return frames, err
		}
	}

	for book.State().IsAnimating {
		book.OnAnimationFrame(tick)
		if err := next(); err != nil {
			return frames, err
		}
	}
	return frames, nil
}

func playDrag(book *modules.FlipbookModule, s gestureScript, tick time.Duration, next func() error) error {
	press := components.PointerEvent{ID: 0, Pos: s.From, At: 0}
	if !book.OnPointerDown(press) {
		return fmt.Errorf("press point %s is not inside a corner zone", s.From)
	}

	for clock := tick; clock < s.Hold; clock += tick {
		t := float64(clock) / float64(s.Hold)
		book.OnPointerMove(components.PointerEvent{ID: 0, Pos: s.From.Lerp(s.To, t), At: clock})
		book.OnAnimationFrame(tick)
		if err := next(); err != nil {
			return err
		}
	}

	book.OnPointerMove(components.PointerEvent{ID: 0, Pos: s.To, At: s.Hold})
	book.OnPointerUp(components.PointerEvent{ID: 0, Pos: s.To, At: s.Hold})
	return nil
}
