package geometry

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// MaxSplits - максимальное количество частей по одной оси.
const MaxSplits = 20

// ErrInvalidSplit - некорректное количество частей сетки.
var ErrInvalidSplit = errors.New("количество частей должно быть от 1 до 20")

// Cell - одна ячейка сетки.
type Cell struct {
	// Row, Col - позиция ячейки, начиная с 1.
	Row, Col int

	// Rect - прямоугольник ячейки в координатах изображения.
	Rect image.Rectangle
}

// GridCells делит изображение width x height на xSplits x ySplits ячеек.
// Последняя колонка и последняя строка забирают остаток от деления.
// Ячейки возвращаются построчно (row-major).
func GridCells(width, height, xSplits, ySplits int) ([]Cell, error) {
	if xSplits < 1 || xSplits > MaxSplits || ySplits < 1 || ySplits > MaxSplits {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSplit, xSplits, ySplits)
	}
	blockW := width / xSplits
	blockH := height / ySplits
	if blockW < 1 || blockH < 1 {
		return nil, fmt.Errorf("изображение %dx%d слишком мало для сетки %dx%d: %w",
			width, height, xSplits, ySplits, ErrInvalidSize)
	}

	cells := make([]Cell, 0, xSplits*ySplits)
	for y := 0; y < ySplits; y++ {
		for x := 0; x < xSplits; x++ {
			left, top := x*blockW, y*blockH
			right, bottom := left+blockW, top+blockH
			if x == xSplits-1 {
				right = width
			}
			if y == ySplits-1 {
				bottom = height
			}
			cells = append(cells, Cell{
				Row:  y + 1,
				Col:  x + 1,
				Rect: image.Rect(left, top, right, bottom),
			})
		}
	}
	return cells, nil
}

// Region - область в нормированных координатах [0,1] относительно размеров изображения.
type Region struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Rect переводит область в пиксели с отбрасыванием дробной части.
// Выход за границы изображения не проверяется: обрезка выполняется при crop.
func (r Region) Rect(width, height int) image.Rectangle {
	w, h := float64(width), float64(height)
	return image.Rectangle{
		Min: image.Pt(int(r.X*w), int(r.Y*h)),
		Max: image.Pt(int((r.X+r.Width)*w), int((r.Y+r.Height)*h)),
	}
}

// Point - точка в нормированных координатах.
type Point struct {
	X, Y float64
}

// BoundingRegion возвращает нормированный ограничивающий прямоугольник набора точек.
// Эллипсы и многоугольники режутся по своему ограничивающему прямоугольнику.
func BoundingRegion(points []Point) (Region, error) {
	if len(points) == 0 {
		return Region{}, errors.New("пустой набор точек")
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Region{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, nil
}

// EllipseRegion возвращает ограничивающий прямоугольник эллипса с центром (cx, cy)
// и полуосями rx, ry.
func EllipseRegion(cx, cy, rx, ry float64) Region {
	return Region{X: cx - rx, Y: cy - ry, Width: 2 * rx, Height: 2 * ry}
}
