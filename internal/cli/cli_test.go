package cli

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/artemshloyda/imagetoolbox/internal/config"
	"github.com/artemshloyda/imagetoolbox/internal/geometry"
	"github.com/artemshloyda/imagetoolbox/internal/job"
	"github.com/artemshloyda/imagetoolbox/internal/storage"
)

// execute запускает CLI с изолированным HOME и возвращает вывод.
func execute(t *testing.T, a *app, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 90, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestParseRegions(t *testing.T) {
	tests := []struct {
		name     string
		rects    []string
		ellipses []string
		polygons []string
		want     []geometry.Region
		wantErr  bool
	}{
		{
			name:  "rect",
			rects: []string{"0,0,0.5,0.5"},
			want:  []geometry.Region{{X: 0, Y: 0, Width: 0.5, Height: 0.5}},
		},
		{
			name:     "ellipse bounding box",
			ellipses: []string{"0.5, 0.5, 0.25, 0.125"},
			want:     []geometry.Region{{X: 0.25, Y: 0.375, Width: 0.5, Height: 0.25}},
		},
		{
			name:     "polygon bounding box",
			polygons: []string{"0.25,0,0.75,0.5,0,0.25"},
			want:     []geometry.Region{{X: 0, Y: 0, Width: 0.75, Height: 0.5}},
		},
		{
			name:     "order rect ellipse polygon",
			rects:    []string{"0,0,1,1"},
			ellipses: []string{"0.5,0.5,0.5,0.5"},
			polygons: []string{"0,0,1,0,0,1"},
			want: []geometry.Region{
				{X: 0, Y: 0, Width: 1, Height: 1},
				{X: 0, Y: 0, Width: 1, Height: 1},
				{X: 0, Y: 0, Width: 1, Height: 1},
			},
		},
		{name: "nothing", wantErr: true},
		{name: "short rect", rects: []string{"0,0,1"}, wantErr: true},
		{name: "not a number", rects: []string{"0,a,1,1"}, wantErr: true},
		{name: "two point polygon", polygons: []string{"0,0,1,1"}, wantErr: true},
		{name: "odd polygon", polygons: []string{"0,0,1,1,0.5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRegions(tt.rects, tt.ellipses, tt.polygons)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRegions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseRegions() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("region %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPrompter_Ask(t *testing.T) {
	tests := []struct {
		name   string
		policy config.OverwritePolicy
		input  string
		want   bool
	}{
		{"always", config.OverwriteAlways, "", true},
		{"never", config.OverwriteNever, "y\n", false},
		{"ask yes", config.OverwriteAsk, "y\n", true},
		{"ask russian yes", config.OverwriteAsk, "Да\n", true},
		{"ask no", config.OverwriteAsk, "n\n", false},
		{"ask empty line", config.OverwriteAsk, "\n", false},
		{"ask eof", config.OverwriteAsk, "", false},
		{"ask without newline", config.OverwriteAsk, "yes", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := newPrompter(strings.NewReader(tt.input), &out, tt.policy)
			if got := p.Ask("/out/a.jpg"); got != tt.want {
				t.Errorf("Ask() = %v, want %v", got, tt.want)
			}
			if tt.policy == config.OverwriteAsk && !strings.Contains(out.String(), "/out/a.jpg") {
				t.Errorf("prompt should name the file, got %q", out.String())
			}
		})
	}
}

func TestIsOwnOutput(t *testing.T) {
	if !isOwnOutput("/w/a_compressed_20240102030405.jpg") {
		t.Error("compressed output should be ignored")
	}
	if isOwnOutput("/w/compressed.jpg") || isOwnOutput("/w/a_resized_20240102030405.jpg") {
		t.Error("other files should not be ignored")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:           "0 B",
		1023:        "1023 B",
		1024:        "1.0 KB",
		1536:        "1.5 KB",
		5 * 1 << 20: "5.0 MB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestConfigPrecedence(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "imagetoolbox.yaml")
	yaml := "output:\n  quality: 70\ncompress:\n  scale: 40\nsplit:\n  x: 4\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	db := filepath.Join(dir, "h.sqlite")

	a := newApp()
	if _, err := execute(t, a, "", "history", "--config", cfgPath, "--db", db); err != nil {
		t.Fatalf("history error = %v", err)
	}
	if a.cfg.Quality != 70 || a.cfg.Scale != 40 || a.cfg.XSplits != 4 {
		t.Errorf("file values not applied: %+v", a.cfg)
	}

	a = newApp()
	if _, err := execute(t, a, "", "history", "--config", cfgPath, "--db", db, "--quality", "33", "--yes"); err != nil {
		t.Fatalf("history error = %v", err)
	}
	if a.cfg.Quality != 33 || a.cfg.Scale != 40 {
		t.Errorf("flag should override file: quality=%d scale=%d", a.cfg.Quality, a.cfg.Scale)
	}
	if a.cfg.Overwrite != config.OverwriteAlways {
		t.Errorf("Overwrite = %s, want always", a.cfg.Overwrite)
	}

	a = newApp()
	if _, err := execute(t, a, "", "history", "--db", db, "--preset", "web", "--quality", "50"); err != nil {
		t.Fatalf("history error = %v", err)
	}
	if a.cfg.Quality != 50 || a.cfg.Scale != 80 || a.cfg.Preset != "web" {
		t.Errorf("preset plus flag = %+v", a.cfg)
	}
}

func TestRootFlagErrors(t *testing.T) {
	isolateHome(t)
	db := filepath.Join(t.TempDir(), "h.sqlite")

	tests := [][]string{
		{"history", "--db", db, "--yes", "--no"},
		{"history", "--db", db, "--quality", "0"},
		{"history", "--db", db, "--out-format", "gif"},
		{"history", "--db", db, "--preset", "poster"},
		{"history", "--db", db, "--align", "diagonal"},
	}
	for _, args := range tests {
		if _, err := execute(t, newApp(), "", args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestCompressCommand_RecordsHistory(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	writePNG(t, src, 40, 20)
	db := filepath.Join(t.TempDir(), "h.sqlite")

	out, err := execute(t, newApp(), "",
		"compress", src, "--scale", "50", "--no-progress", "--db", db, "--yes")
	if err != nil {
		t.Fatalf("compress error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Обработано: 1 из 1") {
		t.Errorf("summary missing in output:\n%s", out)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "a_compressed_*.png"))
	if len(matches) != 1 {
		t.Fatalf("outputs = %v, want one compressed file", matches)
	}
	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("output is not png: %v", err)
	}
	if cfg.Width != 20 || cfg.Height != 10 {
		t.Errorf("output size = %dx%d, want 20x10", cfg.Width, cfg.Height)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		t.Fatal(err)
	}
	outInfo, err := os.Stat(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	ratio := job.CompressionRatio(srcInfo.Size(), outInfo.Size())
	percent := fmt.Sprintf("(%.1f%%)", ratio*100)
	if !strings.Contains(out, percent) {
		t.Errorf("output should show saving as %s:\n%s", percent, out)
	}

	store, err := storage.New(db)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	runs, err := store.ListRuns(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Operation != "compressed" || runs[0].Status != storage.StatusOK || runs[0].OutputCount != 1 {
		t.Errorf("history = %+v", runs)
	}
}

func TestGridCommand(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "tile.png")
	writePNG(t, src, 30, 20)

	if _, err := execute(t, newApp(), "", "grid", src, "--x", "1", "--y", "1", "--no-history"); err == nil {
		t.Error("1x1 grid should be rejected")
	}

	out, err := execute(t, newApp(), "", "grid", src, "--x", "3", "--y", "2", "--no-history", "--no-progress")
	if err != nil {
		t.Fatalf("grid error = %v\n%s", err, out)
	}

	pieces, _ := filepath.Glob(filepath.Join(dir, "tile_split_3x2", "tile_split_*_*_*.png"))
	if len(pieces) != 6 {
		t.Errorf("pieces = %v, want 6", pieces)
	}
	if !strings.Contains(out, "Сохранено частей: 6") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestCropCommand_DeclinedOverwrite(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "pic.png")
	writePNG(t, src, 40, 40)
	outDir := filepath.Join(dir, "out")

	args := []string{"crop", src, "--rect", "0,0,0.5,0.5", "--ellipse", "0.5,0.5,0.25,0.25",
		"--out", outDir, "--no-history", "--no-progress", "--no"}
	out, err := execute(t, newApp(), "", args...)
	if err != nil {
		t.Fatalf("crop error = %v\n%s", err, out)
	}
	pieces, _ := filepath.Glob(filepath.Join(outDir, "pic_crop_2_regions", "*.png"))
	if len(pieces) != 2 {
		t.Fatalf("pieces = %v, want 2", pieces)
	}

	if _, err := execute(t, newApp(), "", "crop", src, "--no-history"); err == nil {
		t.Error("crop without regions should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, newApp(), "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "imagetoolbox ") {
		t.Errorf("version output = %q", out)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imagetoolbox.yaml")
	if _, err := execute(t, newApp(), "", "config", "init", "--write", path); err != nil {
		t.Fatal(err)
	}
	fc, err := config.LoadFromFile(path)
	if err != nil || fc == nil {
		t.Fatalf("LoadFromFile() = %v, %v", fc, err)
	}
	cfg := config.DefaultConfig()
	if err := fc.ApplyToConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("example config is invalid: %v", err)
	}
}
