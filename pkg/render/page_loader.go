// Package render 离线栅格化翻页画面
//
// 与 systems.FlipbookRenderSystem 使用同一份 FlipFrame 数据，但不依赖 GPU：
// 页面内容、遮罩与仿射采样全部在 CPU 上用 golang.org/x/image 完成。
// 查看器也用这里生成的页面图片作为纹理来源。
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/decker502/flipbook/pkg/config"
	"github.com/decker502/flipbook/pkg/embedded"
	_ "github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// 页面排版参数（像素，未缩放）
const (
	pagePadding   = 16
	titleGap      = 10
	lineHeight    = 15
	pageNumMargin = 8
)

// LoadImage 读取并解码图片（png / jpeg / tga）
// 磁盘上不存在的 data/ 路径从内嵌资源读取
func LoadImage(path string) (image.Image, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && embedded.Exists(path) {
		raw, err = embedded.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("render: read %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("render: decode %s: %w", path, err)
	}
	return img, nil
}

// ScaleTo 把图片缩放到 w×h（CatmullRom）
func ScaleTo(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// PageImage 按配置生成一页的位图
//
// 参数：
//   - page: 页面配置（纸张颜色、标题、正文、可选图片）
//   - index, count: 页码与总页数，用于角标
//   - width, height: 页面尺寸
//   - scale: 超采样倍数，>= 1
//   - baseDir: page.Image 为相对路径时的基准目录
//
// 图片读取失败时返回错误；调用方可以决定是否退回纯色页面。
func PageImage(page config.PageConfig, index, count int, width, height float64, scale int, baseDir string) (*image.RGBA, error) {
	if scale < 1 {
		scale = 1
	}
	w, h := int(width)*scale, int(height)*scale
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	paper, err := config.ParseHexColor(page.Color)
	if err != nil {
		paper = config.MustParseHexColor(config.DefaultPageColor)
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(paper), image.Point{}, draw.Src)

	if page.Image != "" {
		path := page.Image
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		img, err := LoadImage(path)
		if err != nil {
			return nil, err
		}
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	}

	drawPageText(dst, page, index, count, scale)
	return dst, nil
}

// drawPageText 用 basicfont 写标题、正文和页码
// 字体是位图字体，超采样时先画在 1 倍图上再放大
func drawPageText(dst *image.RGBA, page config.PageConfig, index, count, scale int) {
	b := dst.Bounds()
	layer := image.NewRGBA(image.Rect(0, 0, b.Dx()/scale, b.Dy()/scale))

	ink := image.NewUniform(color.RGBA{R: 0x3B, G: 0x42, B: 0x52, A: 0xFF})
	d := &font.Drawer{Dst: layer, Src: ink, Face: basicfont.Face7x13}

	y := pagePadding + basicfont.Face7x13.Ascent
	if page.Title != "" {
		d.Dot = fixed.P(pagePadding, y)
		d.DrawString(page.Title)
		y += lineHeight + titleGap
	}
	maxChars := (layer.Bounds().Dx() - 2*pagePadding) / basicfont.Face7x13.Advance
	for _, line := range wrapText(page.Body, maxChars) {
		if y > layer.Bounds().Dy()-pagePadding {
			break
		}
		d.Dot = fixed.P(pagePadding, y)
		d.DrawString(line)
		y += lineHeight
	}

	label := fmt.Sprintf("%d / %d", index+1, count)
	lw := d.MeasureString(label).Ceil()
	d.Dot = fixed.P(layer.Bounds().Dx()-lw-pageNumMargin, layer.Bounds().Dy()-pageNumMargin)
	d.DrawString(label)

	if scale == 1 {
		draw.Draw(dst, b, layer, image.Point{}, draw.Over)
		return
	}
	draw.NearestNeighbor.Scale(dst, b, layer, layer.Bounds(), draw.Over, nil)
}

// wrapText 按字符数折行，保留原有换行
func wrapText(s string, maxChars int) []string {
	if maxChars < 1 {
		maxChars = 1
	}
	var out []string
	for _, para := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, w := range words {
			for len(w) > maxChars {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				out = append(out, w[:maxChars])
				w = w[maxChars:]
			}
			switch {
			case line == "":
				line = w
			case len(line)+1+len(w) <= maxChars:
				line += " " + w
			default:
				out = append(out, line)
				line = w
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
