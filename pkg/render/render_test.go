package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/tileme/pkg/errors"
	"github.com/matzehuels/tileme/pkg/layout"
	"github.com/matzehuels/tileme/pkg/tiler"
)

func buildLayout(t *testing.T, width float64, items []layout.ItemSpec) layout.Layout {
	t.Helper()
	tl, err := tiler.New(width, tiler.DefaultConfig())
	if err != nil {
		t.Fatalf("tiler.New() error: %v", err)
	}
	return layout.FromResult(tl.Tile(layout.Requests(items)), items, width, tiler.DefaultSpacing)
}

func heroLayout(t *testing.T) layout.Layout {
	return buildLayout(t, 800, []layout.ItemSpec{
		{ID: "hero", Cols: 2, Rows: 2, Label: "Hero <1>", URL: "https://example.com/?a=1&b=2"},
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
	})
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(heroLayout(t)))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800 400" width="800" height="400">`) {
		t.Errorf("unexpected header: %.120s", svg)
	}
	if got := strings.Count(svg, `class="tile tiled"`); got != 5 {
		t.Errorf("tile rects = %d, want 5", got)
	}
	if !strings.Contains(svg, `<rect id="tile-hero" class="tile tiled" x="0" y="0" width="399" height="399"`) {
		t.Error("hero rect missing or misplaced")
	}
	if !strings.Contains(svg, `id="tile-c" class="tile tiled" x="400" y="200"`) {
		t.Error("c rect missing or misplaced")
	}
	if strings.Contains(svg, "<text") || strings.Contains(svg, "<a ") {
		t.Error("labels or links rendered without options")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("missing closing tag")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	svg := string(RenderSVG(heroLayout(t), WithLabels(), WithLinks(), WithBackground("#eee"), WithPalette([]string{"#123456"})))

	if !strings.Contains(svg, "Hero &lt;1&gt;") {
		t.Error("label not escaped")
	}
	if !strings.Contains(svg, `<a href="https://example.com/?a=1&amp;b=2" target="_blank">`) {
		t.Error("link missing or not escaped")
	}
	if !strings.Contains(svg, `class="container"`) || !strings.Contains(svg, `fill="#eee"`) {
		t.Error("background missing")
	}
	if got := strings.Count(svg, `fill="#123456"`); got != 5 {
		t.Errorf("palette fills = %d, want 5", got)
	}
	if got := strings.Count(svg, `<text class="tile-text"`); got != 5 {
		t.Errorf("labels = %d, want 5", got)
	}
}

func TestRenderSVGDegraded(t *testing.T) {
	l := buildLayout(t, 600, []layout.ItemSpec{{ID: "a"}, {ID: "big", Cols: 3}})
	svg := string(RenderSVG(l))
	if !strings.Contains(svg, `id="tile-big" class="tile tiled failed"`) {
		t.Errorf("degraded tile not marked failed:\n%s", svg)
	}
}

func renderText(t *testing.T, l layout.Layout) string {
	t.Helper()
	data, err := RenderText(l)
	if err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	return string(data)
}

func TestRenderText(t *testing.T) {
	got := renderText(t, heroLayout(t))
	want := "aabc\n" +
		"aade\n" +
		"\n" +
		"a hero 2x2\n" +
		"b a 1x1\n" +
		"c b 1x1\n" +
		"d c 1x1\n" +
		"e d 1x1\n"
	if got != want {
		t.Errorf("RenderText() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderTextDegraded(t *testing.T) {
	l := buildLayout(t, 600, []layout.ItemSpec{{ID: "a"}, {ID: "big", Cols: 3}})
	got := renderText(t, l)
	want := "aBB\n\na a 1x1\nB big 2x1 (forced from 3x1)\n"
	if got != want {
		t.Errorf("RenderText() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderTextEmpty(t *testing.T) {
	l := buildLayout(t, 800, nil)
	if got := renderText(t, l); len(got) != 0 {
		t.Errorf("RenderText(empty) = %q, want empty", got)
	}
}

func TestNewGridWithCenterSpacing(t *testing.T) {
	cfg := tiler.DefaultConfig()
	cfg.Spacing = 10
	cfg.CenterSpacing = true
	tl, _ := tiler.New(400, cfg)
	items := []layout.ItemSpec{{ID: "a"}, {ID: "b"}, {ID: "c", Cols: 2}}
	l := layout.FromResult(tl.Tile(layout.Requests(items)), items, 400, cfg.Spacing)

	g, err := NewGrid(l)
	if err != nil {
		t.Fatal(err)
	}
	if g.Rows != 2 || g.Cols != 2 {
		t.Fatalf("grid = %dx%d, want 2x2", g.Cols, g.Rows)
	}
	if g.Cells[1][0] != 2 || g.Cells[1][1] != 2 {
		t.Errorf("row 1 = %v, want tile 2 in both cells", g.Cells[1])
	}
}

func TestRenderTextTooLarge(t *testing.T) {
	cfg := tiler.Config{BaseWidth: 1, BaseHeight: 1, MaxFailedTimes: 3}
	tl, err := tiler.New(tiler.MaxColumns, cfg)
	if err != nil {
		t.Fatal(err)
	}
	items := []layout.ItemSpec{{ID: "tall", Cols: 1, Rows: tiler.MaxColumns}}
	l := layout.FromResult(tl.Tile(layout.Requests(items)), items, tiler.MaxColumns, 0)

	cols, rows := GridSize(l)
	if cols != tiler.MaxColumns || rows != tiler.MaxColumns {
		t.Fatalf("GridSize() = %dx%d, want %dx%d", cols, rows, tiler.MaxColumns, tiler.MaxColumns)
	}
	if _, err := RenderText(l); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("RenderText() error = %v, want INVALID_INPUT", err)
	}
	if _, err := Render(l, FormatText, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Render(txt) error = %v, want INVALID_INPUT", err)
	}
	if _, err := NewGrid(l); err == nil {
		t.Error("NewGrid() should reject the layout")
	}
	if _, err := Render(l, FormatSVG, Options{}); err != nil {
		t.Errorf("Render(svg) error = %v, svg has no grid", err)
	}
}

func TestValidateGridForgedHeight(t *testing.T) {
	l := layout.Layout{TotalCols: 4, BaseHeight: 1, Height: 1e300}
	if err := ValidateGrid(l); err == nil {
		t.Error("ValidateGrid() should reject a huge height")
	}
	if err := ValidateGrid(layout.Layout{TotalCols: 4, BaseHeight: 200, Height: 400}); err != nil {
		t.Errorf("ValidateGrid(4x2) error: %v", err)
	}
}

func TestRender(t *testing.T) {
	l := heroLayout(t)
	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			data, err := Render(l, format, Options{})
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if len(data) == 0 {
				t.Error("empty output")
			}
			if ContentTypes[format] == "" {
				t.Error("missing content type")
			}
		})
	}

	data, err := Render(l, FormatJSON, Options{})
	if err != nil {
		t.Fatal(err)
	}
	back, err := layout.Unmarshal(data)
	if err != nil {
		t.Fatalf("json output does not decode: %v", err)
	}
	if len(back.Tiles) != 5 {
		t.Errorf("decoded tiles = %d, want 5", len(back.Tiles))
	}

	if _, err := Render(l, "png", Options{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(png) error = %v, want format error", err)
	}
}
