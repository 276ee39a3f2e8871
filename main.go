// flipbook 是一个可拖拽翻页的查看器
//
// 用法：
//
//	flipbook [--config path] [--verbose] [--debug]
//
// 拖动页面右下角向前翻页，左下角向后翻页；松手后页面会完成翻页或回弹。
// 不指定 --config 时使用内嵌的 data/flipbook.yaml。
package main

import (
	"flag"
	"log"
	"path/filepath"

	"github.com/decker502/flipbook/pkg/app"
	"github.com/decker502/flipbook/pkg/config"
	"github.com/decker502/flipbook/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	configPath = flag.String("config", "", "flipbook YAML config (default: embedded data/flipbook.yaml)")
	verbose    = flag.Bool("verbose", false, "enable verbose logging")
	debug      = flag.Bool("debug", false, "show corner zones and crease")
)

func main() {
	flag.Parse()

	embedded.Init(dataFS)

	cfg := app.Config{
		Verbose:    *verbose,
		Debug:      *debug,
		ConfigPath: *configPath,
	}
	if *configPath != "" {
		cfg.BaseDir = filepath.Dir(*configPath)
	} else {
		data, err := embedded.DefaultConfig()
		if err != nil {
			log.Fatalf("读取内嵌配置失败: %v", err)
		}
		cfg.ConfigData = data
	}

	viewer, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
	ebiten.SetWindowTitle("Flipbook")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err = ebiten.RunGame(viewer)
	viewer.GetSceneManager().SaveOnExit()
	if err != nil {
		log.Fatal(err)
	}
}
