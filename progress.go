package tetraview

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/solarlune/tetra3d"
	"github.com/solarlune/tetraview/colors"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font/basicfont"
)

// ProgressFadeDuration is how long, in seconds, the progress bar and label take to fade out once hidden.
const ProgressFadeDuration = 0.6

// Percent returns ceil(loaded / total * 100), clamped to the range 0 - 100. ok is false if total is unknown (<= 0), in which
// case no percentage can be given. The math is done on integers so that, say, 29 / 100 is 29 and not 30.
func Percent(loaded, total int64) (percent int, ok bool) {

	if total <= 0 {
		return 0, false
	}

	if loaded <= 0 {
		return 0, true
	}

	p := (loaded*100 + total - 1) / total

	return clamp(int(p), 0, 100), true

}

// ProgressIndicator is the on-screen load progress bar and its text label. Hiding it hides both at once; visually they fade
// out over ProgressFadeDuration.
type ProgressIndicator struct {
	value  int
	label  string
	hidden bool

	alpha float32
	fade  *gween.Tween

	// Where the bar is drawn on screen, in pixels.
	X, Y, Width, Height float32

	BarColor   tetra3d.Color
	TrackColor tetra3d.Color
	LabelColor tetra3d.Color
}

// NewProgressIndicator creates a visible ProgressIndicator at 0% with an empty label.
func NewProgressIndicator() *ProgressIndicator {
	return &ProgressIndicator{
		alpha:      1,
		X:          8,
		Y:          8,
		Width:      160,
		Height:     12,
		BarColor:   colors.LightGray(),
		TrackColor: colors.DarkGray(),
		LabelColor: colors.White(),
	}
}

// Value returns the current progress, from 0 to 100.
func (p *ProgressIndicator) Value() int {
	return p.value
}

// SetValue sets the current progress; the value is clamped to 0 - 100.
func (p *ProgressIndicator) SetValue(value int) {
	p.value = clamp(value, 0, 100)
}

// Label returns the label text shown next to the bar.
func (p *ProgressIndicator) Label() string {
	return p.label
}

// SetLabel sets the label text shown next to the bar.
func (p *ProgressIndicator) SetLabel(label string) {
	p.label = label
}

// Hidden returns whether the indicator has been hidden.
func (p *ProgressIndicator) Hidden() bool {
	return p.hidden
}

// Hide hides the indicator and its label and starts the fade-out. Hiding an already hidden indicator does nothing.
func (p *ProgressIndicator) Hide() {
	if p.hidden {
		return
	}
	p.hidden = true
	p.fade = gween.New(p.alpha, 0, ProgressFadeDuration, ease.OutQuad)
}

// Alpha returns the current opacity of the indicator, from 1 (fully shown) to 0 (gone).
func (p *ProgressIndicator) Alpha() float32 {
	return p.alpha
}

// Update advances the fade-out by dt seconds.
func (p *ProgressIndicator) Update(dt float32) {
	if p.fade == nil {
		return
	}
	alpha, done := p.fade.Update(dt)
	p.alpha = alpha
	if done {
		p.alpha = 0
		p.fade = nil
	}
}

// Draw draws the bar and label onto the screen.
func (p *ProgressIndicator) Draw(screen *ebiten.Image) {

	if p.alpha <= 0 {
		return
	}

	track := colors.ToNRGBA(colors.WithAlpha(p.TrackColor, p.alpha))
	bar := colors.ToNRGBA(colors.WithAlpha(p.BarColor, p.alpha))

	vector.DrawFilledRect(screen, p.X, p.Y, p.Width, p.Height, track, false)

	if p.value > 0 {
		vector.DrawFilledRect(screen, p.X, p.Y, p.Width*float32(p.value)/100, p.Height, bar, false)
	}

	if p.label != "" {
		labelColor := colors.ToNRGBA(colors.WithAlpha(p.LabelColor, p.alpha))
		// basicfont's baseline sits 11 pixels below the top of a line.
		text.Draw(screen, p.label, basicfont.Face7x13, int(p.X+p.Width+8), int(p.Y)+11, labelColor)
	}

}
