package ui

import (
	"os"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-director/internal/assets"
	"scene-director/internal/section"
)

// Classes the overlay styles.
const (
	ClassPanel   = "panel"
	ClassTitle   = "panel-title"
	ClassBody    = "panel-body"
	ClassLoading = "loading"
	ClassFill    = "loading-fill"
)

// DefaultCSS is used when no stylesheet file is loaded.
const DefaultCSS = `
.panel { background: #101418c0; border: #ffffff30; width: 440; left: 6%; top: 50%; padding: 20; gap: 8; }
.panel-title { color: #f2efe6; font-size: 32; }
.panel-body { color: #c9c6bd; font-size: 20; gap: 4; }
.loading { background: #ffffff20; width: 320; height: 6; left: 50%; top: 92%; }
.loading-fill { background: #f2efe6; }
`

// Overlay draws the section panels and the loading bar on top of the 3D scene. Panels are drawn
// only while Shown, with their text faded by Opacity.
type Overlay struct {
	sheet  *Stylesheet
	styles map[string]Style
	font   rl.Font
}

// New returns an overlay using DefaultCSS.
func New() *Overlay {
	o := &Overlay{}
	sheet, err := ParseCSS(DefaultCSS)
	if err != nil {
		sheet = &Stylesheet{}
	}
	o.SetStylesheet(sheet)
	return o
}

// LoadCSS replaces the stylesheet with the file at path.
func (o *Overlay) LoadCSS(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sheet, err := ParseCSS(string(data))
	if err != nil {
		return err
	}
	o.SetStylesheet(sheet)
	return nil
}

func (o *Overlay) SetStylesheet(sheet *Stylesheet) {
	o.sheet = sheet
	o.styles = make(map[string]Style)
}

// LoadFont loads a TTF for all overlay text. Call after the window exists.
func (o *Overlay) LoadFont(path string) error {
	f := rl.LoadFont(path)
	if f.Texture.ID == 0 {
		return os.ErrNotExist
	}
	if o.font.Texture.ID != 0 {
		rl.UnloadFont(o.font)
	}
	o.font = f
	return nil
}

// Font returns the loaded font, or a zero font when none is loaded.
func (o *Overlay) Font() rl.Font {
	return o.font
}

func (o *Overlay) style(class string) Style {
	st, ok := o.styles[class]
	if !ok {
		st = o.sheet.Resolve(class)
		o.styles[class] = st
	}
	return st
}

// Draw draws every shown panel, then the loading bar while loads are outstanding.
func (o *Overlay) Draw(panels []section.Panel, progress assets.Progress) {
	for _, p := range panels {
		if p.Shown && p.Opacity > 0 {
			o.drawPanel(p)
		}
	}
	if !progress.Complete() {
		o.drawLoading(progress.Fraction())
	}
}

func (o *Overlay) drawPanel(p section.Panel) {
	box, title, body := o.style(ClassPanel), o.style(ClassTitle), o.style(ClassBody)
	inner := box.Width - 2*box.Padding
	lines := o.wrap(p.Body, body.FontSize, inner)

	h := 2*box.Padding + title.FontSize
	if len(lines) > 0 {
		h += box.Gap + int32(len(lines))*(body.FontSize+body.Gap) - body.Gap
	}
	screenW, screenH := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	x, y := box.Place(screenW, screenH, box.Width, h)

	if box.Background.A > 0 {
		rl.DrawRectangle(x, y, box.Width, h, Faded(box.Background, p.Opacity))
	}
	if box.HasBorder {
		rl.DrawRectangleLines(x, y, box.Width, h, Faded(box.Border, p.Opacity))
	}
	tx, ty := x+box.Padding, y+box.Padding
	o.text(p.Title, tx, ty, title.FontSize, Faded(title.Color, p.Opacity))
	ty += title.FontSize + box.Gap
	for _, line := range lines {
		o.text(line, tx, ty, body.FontSize, Faded(body.Color, p.Opacity))
		ty += body.FontSize + body.Gap
	}
}

func (o *Overlay) drawLoading(frac float32) {
	bar, fill := o.style(ClassLoading), o.style(ClassFill)
	x, y := bar.Place(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()), bar.Width, bar.Height)
	rl.DrawRectangle(x, y, bar.Width, bar.Height, bar.Background)
	rl.DrawRectangle(x, y, int32(float32(bar.Width)*frac), bar.Height, fill.Background)
}

// wrap splits s into lines no wider than width, breaking on spaces. Explicit newlines are kept.
func (o *Overlay) wrap(s string, size, width int32) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			next := word
			if line != "" {
				next = line + " " + word
			}
			if line != "" && o.measure(next, size) > width {
				out = append(out, line)
				next = word
			}
			line = next
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func (o *Overlay) measure(s string, size int32) int32 {
	if o.font.Texture.ID != 0 {
		return int32(rl.MeasureTextEx(o.font, s, float32(size), 1).X)
	}
	return rl.MeasureText(s, size)
}

func (o *Overlay) text(s string, x, y, size int32, c rl.Color) {
	if o.font.Texture.ID != 0 {
		rl.DrawTextEx(o.font, s, rl.NewVector2(float32(x), float32(y)), float32(size), 1, c)
		return
	}
	rl.DrawText(s, x, y, size, c)
}
