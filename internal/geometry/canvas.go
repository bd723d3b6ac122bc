// Package geometry вычисляет размеры холста и раскладку изображений при склейке,
// а также прямоугольники для сетки и произвольных областей.
package geometry

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrNoImages - нет изображений для раскладки.
	ErrNoImages = errors.New("нет изображений для склейки")

	// ErrInvalidSize - у изображения нулевая или отрицательная сторона.
	ErrInvalidSize = errors.New("некорректный размер изображения")

	// ErrInvalidScale - масштаб вне диапазона 1-100.
	ErrInvalidScale = errors.New("масштаб должен быть от 1 до 100")
)

// Direction - направление склейки.
type Direction int

const (
	// Horizontal - изображения идут слева направо.
	Horizontal Direction = iota
	// Vertical - изображения идут сверху вниз.
	Vertical
)

// String возвращает имя направления.
func (d Direction) String() string {
	if d == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// AlignMode определяет выравнивание по поперечной оси.
type AlignMode string

const (
	// AlignCenter - по центру поперечной оси.
	AlignCenter AlignMode = "center"
	// AlignStart - к началу (верх для горизонтальной склейки, лево для вертикальной).
	AlignStart AlignMode = "start"
	// AlignEnd - к концу (низ / право).
	AlignEnd AlignMode = "end"
	// AlignScaleUp - пропорционально увеличить все до максимального поперечного размера.
	AlignScaleUp AlignMode = "scale-up"
	// AlignScaleDown - пропорционально уменьшить все до минимального поперечного размера.
	AlignScaleDown AlignMode = "scale-down"
)

// ValidAlignModes возвращает список режимов выравнивания.
func ValidAlignModes() []string {
	return []string{
		string(AlignCenter),
		string(AlignStart),
		string(AlignEnd),
		string(AlignScaleUp),
		string(AlignScaleDown),
	}
}

// IsUniform возвращает true для режимов, приводящих изображения к одному поперечному размеру.
func (m AlignMode) IsUniform() bool {
	return m == AlignScaleUp || m == AlignScaleDown
}

// Valid проверяет, что режим известен.
func (m AlignMode) Valid() bool {
	switch m {
	case AlignCenter, AlignStart, AlignEnd, AlignScaleUp, AlignScaleDown:
		return true
	}
	return false
}

// Size - размеры изображения в пикселях.
type Size struct {
	Width  int
	Height int
}

// String возвращает размер в виде "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Placement - положение и итоговый размер одного изображения на холсте.
type Placement struct {
	// X, Y - левый верхний угол на холсте.
	X, Y int

	// Size - размер, до которого нужно привести изображение перед отрисовкой.
	Size Size
}

// Rect возвращает прямоугольник, занимаемый изображением на холсте.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Size.Width, p.Y+p.Size.Height)
}

// Layout - результат расчёта: размер холста и раскладка в исходном порядке.
type Layout struct {
	Canvas     Size
	Placements []Placement
}

// Options - параметры раскладки.
type Options struct {
	// Direction - направление склейки.
	Direction Direction

	// Align - режим выравнивания.
	Align AlignMode

	// ScalePercent - предварительное масштабирование (1-100); 0 отключает его.
	ScalePercent int
}

// Compute рассчитывает холст и раскладку для списка размеров.
func Compute(sizes []Size, opts Options) (Layout, error) {
	if len(sizes) == 0 {
		return Layout{}, ErrNoImages
	}
	for i, s := range sizes {
		if s.Width <= 0 || s.Height <= 0 {
			return Layout{}, fmt.Errorf("изображение %d (%s): %w", i+1, s, ErrInvalidSize)
		}
	}
	if opts.ScalePercent < 0 || opts.ScalePercent > 100 {
		return Layout{}, fmt.Errorf("%w, получено: %d", ErrInvalidScale, opts.ScalePercent)
	}
	if !opts.Align.Valid() {
		return Layout{}, fmt.Errorf("неизвестный режим выравнивания: %q", opts.Align)
	}

	// Работаем в координатах (main, cross), затем переводим в (x, y)
	axes := make([]axisSize, len(sizes))
	for i, s := range sizes {
		axes[i] = toAxes(s, opts.Direction)
	}

	var cross int
	placed := make([]axisSize, len(axes))

	if opts.Align.IsUniform() {
		cross = axes[0].cross
		for _, a := range axes[1:] {
			if opts.Align == AlignScaleUp {
				cross = max(cross, a.cross)
			} else {
				cross = min(cross, a.cross)
			}
		}
		cross = applyScale(cross, opts.ScalePercent)

		// Главная ось каждого изображения выводится из его собственных пропорций
		for i, a := range axes {
			placed[i] = axisSize{
				main:  atLeastOne(cross * a.main / a.cross),
				cross: cross,
			}
		}
	} else {
		for i, a := range axes {
			placed[i] = axisSize{
				main:  applyScale(a.main, opts.ScalePercent),
				cross: applyScale(a.cross, opts.ScalePercent),
			}
			cross = max(cross, placed[i].cross)
		}
	}

	layout := Layout{Placements: make([]Placement, len(placed))}
	offset := 0
	for i, p := range placed {
		crossPos := 0
		if !opts.Align.IsUniform() {
			crossPos = crossOffset(opts.Align, cross, p.cross)
		}
		layout.Placements[i] = fromAxes(offset, crossPos, p, opts.Direction)
		offset += p.main
	}
	layout.Canvas = toSize(axisSize{main: offset, cross: cross}, opts.Direction)

	return layout, nil
}

// axisSize - размер в координатах главной и поперечной осей.
type axisSize struct {
	main  int
	cross int
}

func toAxes(s Size, d Direction) axisSize {
	if d == Vertical {
		return axisSize{main: s.Height, cross: s.Width}
	}
	return axisSize{main: s.Width, cross: s.Height}
}

func toSize(a axisSize, d Direction) Size {
	if d == Vertical {
		return Size{Width: a.cross, Height: a.main}
	}
	return Size{Width: a.main, Height: a.cross}
}

func fromAxes(mainPos, crossPos int, a axisSize, d Direction) Placement {
	p := Placement{Size: toSize(a, d)}
	if d == Vertical {
		p.X, p.Y = crossPos, mainPos
	} else {
		p.X, p.Y = mainPos, crossPos
	}
	return p
}

// crossOffset - позиция по поперечной оси для неравномерных режимов.
func crossOffset(mode AlignMode, canvasCross, imageCross int) int {
	switch mode {
	case AlignStart:
		return 0
	case AlignEnd:
		return canvasCross - imageCross
	default:
		return (canvasCross - imageCross) / 2
	}
}

// applyScale применяет процент масштабирования с округлением вниз.
func applyScale(v, percent int) int {
	if percent <= 0 || percent == 100 {
		return v
	}
	return atLeastOne(v * percent / 100)
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

/*
Возможные расширения:
- Добавить отступы (gap) между изображениями
- Добавить раскладку сеткой (N колонок)
- Добавить выравнивание по произвольной доле поперечной оси
*/
