package geometry

import (
	"errors"
	"image"
	"testing"
)

func TestGridCells_TilesImageExactly(t *testing.T) {
	tests := []struct {
		w, h, x, y int
	}{
		{100, 100, 2, 2},
		{101, 77, 3, 4},
		{640, 480, 7, 5},
		{20, 20, 20, 20},
		{33, 10, 1, 3},
	}

	for _, tt := range tests {
		cells, err := GridCells(tt.w, tt.h, tt.x, tt.y)
		if err != nil {
			t.Fatalf("GridCells(%d,%d,%d,%d) error = %v", tt.w, tt.h, tt.x, tt.y, err)
		}
		if len(cells) != tt.x*tt.y {
			t.Fatalf("got %d cells, want %d", len(cells), tt.x*tt.y)
		}

		// Каждая точка покрыта ровно одной ячейкой
		cover := make([]int, tt.w*tt.h)
		area := 0
		for _, c := range cells {
			area += c.Rect.Dx() * c.Rect.Dy()
			for py := c.Rect.Min.Y; py < c.Rect.Max.Y; py++ {
				for px := c.Rect.Min.X; px < c.Rect.Max.X; px++ {
					cover[py*tt.w+px]++
				}
			}
		}
		if area != tt.w*tt.h {
			t.Errorf("%dx%d/%dx%d: total area %d, want %d", tt.w, tt.h, tt.x, tt.y, area, tt.w*tt.h)
		}
		for i, n := range cover {
			if n != 1 {
				t.Fatalf("%dx%d/%dx%d: pixel %d covered %d times", tt.w, tt.h, tt.x, tt.y, i, n)
			}
		}

		// Последняя колонка и строка забирают остаток
		last := cells[len(cells)-1]
		if want := tt.w/tt.x + tt.w%tt.x; last.Rect.Dx() != want {
			t.Errorf("last column width = %d, want %d", last.Rect.Dx(), want)
		}
		if want := tt.h/tt.y + tt.h%tt.y; last.Rect.Dy() != want {
			t.Errorf("last row height = %d, want %d", last.Rect.Dy(), want)
		}
	}
}

func TestGridCells_RowMajorPositions(t *testing.T) {
	cells, err := GridCells(30, 20, 3, 2)
	if err != nil {
		t.Fatalf("GridCells() error = %v", err)
	}

	want := [][2]int{{1, 1}, {1, 2}, {1, 3}, {2, 1}, {2, 2}, {2, 3}}
	for i, c := range cells {
		if c.Row != want[i][0] || c.Col != want[i][1] {
			t.Errorf("cells[%d] = row %d col %d, want row %d col %d", i, c.Row, c.Col, want[i][0], want[i][1])
		}
	}
	if cells[4].Rect != image.Rect(10, 10, 20, 20) {
		t.Errorf("cells[4].Rect = %v, want (10,10)-(20,20)", cells[4].Rect)
	}
}

func TestGridCells_Errors(t *testing.T) {
	if _, err := GridCells(100, 100, 0, 2); !errors.Is(err, ErrInvalidSplit) {
		t.Errorf("x=0: error = %v, want ErrInvalidSplit", err)
	}
	if _, err := GridCells(100, 100, 2, 21); !errors.Is(err, ErrInvalidSplit) {
		t.Errorf("y=21: error = %v, want ErrInvalidSplit", err)
	}
	if _, err := GridCells(3, 100, 4, 1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("too narrow: error = %v, want ErrInvalidSize", err)
	}
}

func TestRegion_Rect(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		w, h   int
		want   image.Rectangle
	}{
		{"top left quarter", Region{0, 0, 0.5, 0.5}, 200, 100, image.Rect(0, 0, 100, 50)},
		{"truncates", Region{0.333, 0.333, 0.333, 0.333}, 100, 10, image.Rect(33, 3, 66, 6)},
		{"out of bounds kept", Region{0.75, 0.75, 0.5, 0.5}, 100, 100, image.Rect(75, 75, 125, 125)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.region.Rect(tt.w, tt.h); got != tt.want {
				t.Errorf("Rect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoundingRegion(t *testing.T) {
	r, err := BoundingRegion([]Point{{0.5, 0.1}, {0.9, 0.4}, {0.2, 0.3}})
	if err != nil {
		t.Fatalf("BoundingRegion() error = %v", err)
	}
	const eps = 1e-9
	if abs(r.X-0.2) > eps || abs(r.Y-0.1) > eps || abs(r.Width-0.7) > eps || abs(r.Height-0.3) > eps {
		t.Errorf("BoundingRegion() = %+v, want {0.2 0.1 0.7 0.3}", r)
	}

	if _, err := BoundingRegion(nil); err == nil {
		t.Error("BoundingRegion(nil) should fail")
	}

	if e := EllipseRegion(0.5, 0.5, 0.25, 0.125); e != (Region{0.25, 0.375, 0.5, 0.25}) {
		t.Errorf("EllipseRegion() = %+v", e)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
