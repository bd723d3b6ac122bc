package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/artemshloyda/imagetoolbox/internal/geometry"
)

// parseFloats разбирает список чисел через запятую.
func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("некорректное число %q в %q", part, s)
		}
		values = append(values, v)
	}
	return values, nil
}

// parseRect разбирает прямоугольник "x,y,w,h" в нормированных координатах.
func parseRect(s string) (geometry.Region, error) {
	v, err := parseFloats(s)
	if err != nil {
		return geometry.Region{}, err
	}
	if len(v) != 4 {
		return geometry.Region{}, fmt.Errorf("прямоугольник задаётся как x,y,w,h, получено: %q", s)
	}
	return geometry.Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

// parseEllipse разбирает эллипс "cx,cy,rx,ry" и возвращает его ограничивающий прямоугольник.
func parseEllipse(s string) (geometry.Region, error) {
	v, err := parseFloats(s)
	if err != nil {
		return geometry.Region{}, err
	}
	if len(v) != 4 {
		return geometry.Region{}, fmt.Errorf("эллипс задаётся как cx,cy,rx,ry, получено: %q", s)
	}
	return geometry.EllipseRegion(v[0], v[1], v[2], v[3]), nil
}

// parsePolygon разбирает многоугольник "x1,y1,x2,y2,..." и возвращает его ограничивающий прямоугольник.
func parsePolygon(s string) (geometry.Region, error) {
	v, err := parseFloats(s)
	if err != nil {
		return geometry.Region{}, err
	}
	if len(v) < 6 || len(v)%2 != 0 {
		return geometry.Region{}, fmt.Errorf("многоугольник задаётся минимум тремя парами x,y, получено: %q", s)
	}
	points := make([]geometry.Point, 0, len(v)/2)
	for i := 0; i < len(v); i += 2 {
		points = append(points, geometry.Point{X: v[i], Y: v[i+1]})
	}
	return geometry.BoundingRegion(points)
}

// parseRegions собирает области из всех флагов в порядке: прямоугольники, эллипсы, многоугольники.
func parseRegions(rects, ellipses, polygons []string) ([]geometry.Region, error) {
	var regions []geometry.Region

	groups := []struct {
		values []string
		parse  func(string) (geometry.Region, error)
	}{
		{rects, parseRect},
		{ellipses, parseEllipse},
		{polygons, parsePolygon},
	}
	for _, g := range groups {
		for _, s := range g.values {
			r, err := g.parse(s)
			if err != nil {
				return nil, err
			}
			regions = append(regions, r)
		}
	}

	if len(regions) == 0 {
		return nil, fmt.Errorf("укажите хотя бы одну область: --rect, --ellipse или --polygon")
	}
	return regions, nil
}
