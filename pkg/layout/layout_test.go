package layout

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/tileme/pkg/errors"
	"github.com/matzehuels/tileme/pkg/tiler"
)

func tileItems(t *testing.T, width float64, items []ItemSpec) Layout {
	t.Helper()
	cfg := tiler.DefaultConfig()
	tl, err := tiler.New(width, cfg)
	if err != nil {
		t.Fatalf("tiler.New() error: %v", err)
	}
	return FromResult(tl.Tile(Requests(items)), items, width, cfg.Spacing)
}

func TestFromResult(t *testing.T) {
	items := []ItemSpec{
		{ID: "hero", Cols: 2, Rows: 2, Label: "Hero", Color: "#f00", URL: "https://example.com"},
		{ID: "a"},
		{ID: "tall", Rows: 9},
	}
	l := tileItems(t, 800, items)

	if l.TotalCols != 4 || l.BaseWidth != 200 || l.BaseHeight != 200 {
		t.Errorf("geometry = %d cols %vx%v", l.TotalCols, l.BaseWidth, l.BaseHeight)
	}
	if l.ContainerWidth != 800 || l.Spacing != 1 {
		t.Errorf("container = %v spacing %v", l.ContainerWidth, l.Spacing)
	}
	if len(l.Tiles) != 3 {
		t.Fatalf("Tiles = %d, want 3", len(l.Tiles))
	}

	hero := l.Tiles[0]
	if hero.Label != "Hero" || hero.Color != "#f00" || hero.URL != "https://example.com" {
		t.Errorf("hero presentation = %+v", hero)
	}
	if hero.X != 0 || hero.Y != 0 || hero.Width != 399 || hero.Height != 399 {
		t.Errorf("hero rect = %v,%v %vx%v", hero.X, hero.Y, hero.Width, hero.Height)
	}

	// Rows are clamped to the column count.
	tall := l.Tiles[2]
	if tall.Rows != 4 || tall.RequestedRows != 9 || tall.RequestedCols != 1 {
		t.Errorf("tall = %d rows (requested %dx%d)", tall.Rows, tall.RequestedCols, tall.RequestedRows)
	}
	if l.Height != 800 {
		t.Errorf("Height = %v, want 800", l.Height)
	}
}

func TestFromResultWithoutItems(t *testing.T) {
	tl, _ := tiler.New(400, tiler.DefaultConfig())
	res := tl.Tile([]tiler.Request{{ID: "a", Cols: 2}})

	l := FromResult(res, nil, 400, 1)
	if len(l.Tiles) != 1 || l.Tiles[0].ID != "a" || l.Tiles[0].RequestedCols != 2 {
		t.Errorf("Tiles = %+v", l.Tiles)
	}
}

func TestTileOverlaps(t *testing.T) {
	a := Tile{X: 0, Y: 0, Width: 10, Height: 10}
	tests := []struct {
		name string
		b    Tile
		want bool
	}{
		{"same", a, true},
		{"inside", Tile{X: 2, Y: 2, Width: 2, Height: 2}, true},
		{"touching right", Tile{X: 10, Y: 0, Width: 5, Height: 5}, false},
		{"touching below", Tile{X: 0, Y: 10, Width: 5, Height: 5}, false},
		{"apart", Tile{X: 20, Y: 20, Width: 1, Height: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	l := tileItems(t, 1000, []ItemSpec{{ID: "a", Cols: 2}, {ID: "b"}, {ID: "c", Rows: 2}})
	path := filepath.Join(t.TempDir(), "layout.json")

	if err := WriteFile(path, l); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if got.Height != l.Height || got.TotalCols != l.TotalCols || len(got.Tiles) != len(l.Tiles) {
		t.Errorf("round trip = %+v, want %+v", got, l)
	}
	for i := range l.Tiles {
		if got.Tiles[i] != l.Tiles[i] {
			t.Errorf("tile %d = %+v, want %+v", i, got.Tiles[i], l.Tiles[i])
		}
	}
}

func TestUnmarshalValidates(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"zero width", `{"container_width": 0, "total_cols": 1}`},
		{"zero cols", `{"container_width": 100, "total_cols": 0}`},
		{"zero span", `{"container_width": 100, "total_cols": 1, "tiles": [{"id": "a", "cols": 0, "rows": 1}]}`},
		{"overflow", `{"container_width": 100, "total_cols": 2, "tiles": [{"id": "a", "column": 1, "cols": 2, "rows": 1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			if err == nil {
				t.Fatal("Unmarshal() succeeded, want error")
			}
			if code := errors.GetCode(err); code != errors.ErrCodeInvalidInput && code != errors.ErrCodeInvalidConfig {
				t.Errorf("code = %s, want input or config error", code)
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile() error = %v, want not found", err)
	}
}
