package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/decker502/flipbook/pkg/config"
	"github.com/decker502/flipbook/pkg/embedded"
	"github.com/google/go-cmp/cmp"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxChars int
		want     []string
	}{
		{"单行足够", "one two three", 20, []string{"one two three"}},
		{"按单词折行", "hello world", 5, []string{"hello", "world"}},
		{"超长单词切开", "abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"保留空行", "a\n\nb", 10, []string{"a", "", "b"}},
		{"去掉末尾换行", "a\nb\n", 10, []string{"a", "b"}},
		{"空字符串", "", 10, []string{""}},
		{"maxChars 非正", "ab", 0, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.input, tt.maxChars)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("wrapText(%q, %d) (-want +got):\n%s", tt.input, tt.maxChars, diff)
			}
		})
	}
}

func TestPageImage(t *testing.T) {
	page := config.PageConfig{Title: "Title", Body: "body text", Color: "#102030"}

	tests := []struct {
		name  string
		scale int
		wantW int
		wantH int
	}{
		{"1 倍", 1, 200, 150},
		{"2 倍超采样", 2, 400, 300},
		{"非法倍数按 1 倍", 0, 200, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := PageImage(page, 0, 3, 200, 150, tt.scale, "")
			if err != nil {
				t.Fatalf("PageImage: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("尺寸 = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
			// 左上角没有文字，是纸张颜色
			if got := img.RGBAAt(1, 1); got != (color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF}) {
				t.Errorf("纸张颜色 = %v", got)
			}
		})
	}
}

func TestPageImageBadColorFallsBack(t *testing.T) {
	img, err := PageImage(config.PageConfig{Color: "oops"}, 0, 1, 50, 50, 1, "")
	if err != nil {
		t.Fatalf("PageImage: %v", err)
	}
	want := config.MustParseHexColor(config.DefaultPageColor)
	if got := img.RGBAAt(1, 1); got != want {
		t.Errorf("纸张颜色 = %v, want %v", got, want)
	}
}

func TestPageImageWithPicture(t *testing.T) {
	dir := t.TempDir()
	red := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range red.Pix {
		if i%4 == 0 || i%4 == 3 {
			red.Pix[i] = 0xFF
		}
	}
	writePNG(t, filepath.Join(dir, "red.png"), red)

	img, err := PageImage(config.PageConfig{Color: "#FFFFFF", Image: "red.png"}, 0, 1, 60, 40, 1, dir)
	if err != nil {
		t.Fatalf("PageImage: %v", err)
	}
	got := img.RGBAAt(2, 2)
	if got.R < 0xF0 || got.G > 0x10 || got.B > 0x10 {
		t.Errorf("图片应覆盖纸张, 像素 = %v", got)
	}

	if _, err := PageImage(config.PageConfig{Image: "missing.png"}, 0, 1, 60, 40, 1, dir); err == nil {
		t.Error("图片不存在应报错")
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	path := filepath.Join(dir, "a.png")
	writePNG(t, path, src)

	img, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("尺寸 = %v", img.Bounds())
	}

	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(bad); err == nil {
		t.Error("无法解码的文件应报错")
	}
}

// TestLoadImageEmbedded 内嵌配置引用的图片从内嵌资源读取
func TestLoadImageEmbedded(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 5, 4))); err != nil {
		t.Fatal(err)
	}
	embedded.Init(fstest.MapFS{"data/pages/emb.png": {Data: buf.Bytes()}})
	defer embedded.Init(nil)

	img, err := LoadImage("data/pages/emb.png")
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Bounds().Dx() != 5 || img.Bounds().Dy() != 4 {
		t.Errorf("尺寸 = %v", img.Bounds())
	}
	if _, err := LoadImage("data/pages/none.png"); err == nil {
		t.Error("内嵌资源中也不存在时应报错")
	}
}

func TestScaleTo(t *testing.T) {
	src := uniformRGBA(10, 10, color.RGBA{R: 50, G: 100, B: 150, A: 255})
	dst := ScaleTo(src, 4, 3)
	if dst.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("Bounds = %v", dst.Bounds())
	}
	if got := dst.RGBAAt(2, 1); got != (color.RGBA{R: 50, G: 100, B: 150, A: 255}) {
		t.Errorf("纯色缩放后 = %v", got)
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func uniformRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
