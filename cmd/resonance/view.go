package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Vapoor/Resonance/feedback"
)

// wallState is the view-side mirror of one wall's feedback.
type wallState struct {
	name      string
	color     feedback.ColorKind
	secondary bool
	intensity float64
}

// View renders the wall roster as intensity bars in the terminal. It is the
// demo's implementation of the engine's visual sink contract.
type View struct {
	screen tcell.Screen
	walls  []wallState
	status string

	cold, hot colorful.Color
}

func newView(screen tcell.Screen, names []string) *View {
	v := &View{
		screen: screen,
		walls:  make([]wallState, len(names)),
		cold:   colorful.Color{R: 0.15, G: 0.35, B: 0.8},
		hot:    colorful.Color{R: 0.95, G: 0.2, B: 0.25},
	}
	for i, n := range names {
		v.walls[i].name = n
	}
	return v
}

// Channel returns the visual sink for one wall row.
func (v *View) Channel(idx int) feedback.VisualSink {
	if idx < 0 || idx >= len(v.walls) {
		return feedback.NopVisual{}
	}
	return &viewSink{view: v, idx: idx}
}

func (v *View) setStatus(s string) { v.status = s }

func (v *View) draw() {
	v.screen.Clear()
	width, _ := v.screen.Size()
	if width > 80 {
		width = 80
	}

	drawText(v.screen, 1, 0, tcell.StyleDefault.Bold(true), "resonance walls")
	for i, w := range v.walls {
		y := 2 + i*2
		style := tcell.StyleDefault.Foreground(colorFor(w.color))
		marker := " "
		switch w.color {
		case feedback.ColorListening:
			marker = ">"
		case feedback.ColorSuccess:
			marker = "*"
		case feedback.ColorWrong:
			marker = "!"
		}
		drawText(v.screen, 1, y, style, fmt.Sprintf("%s %-14s", marker, w.name))

		barX := 20
		barW := width - barX - 2
		if barW < 10 {
			barW = 10
		}
		filled := int(w.intensity * float64(barW))
		for x := 0; x < barW; x++ {
			ch := ' '
			st := tcell.StyleDefault
			if x < filled {
				// Blend toward hot along the bar so stronger distortion
				// reads as a warmer ramp.
				t := float64(x) / float64(barW)
				blend := v.cold.BlendLab(v.hot, t).Clamped()
				r, g, b := blend.RGB255()
				st = st.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
			}
			v.screen.SetContent(barX+x, y, ch, nil, st)
		}
		if w.secondary {
			drawText(v.screen, barX+barW+1, y, style, "~")
		}
	}

	drawText(v.screen, 1, 2+len(v.walls)*2+1, tcell.StyleDefault.Dim(true), v.status)
	v.screen.Show()
}

func colorFor(kind feedback.ColorKind) tcell.Color {
	switch kind {
	case feedback.ColorListening:
		return tcell.ColorAqua
	case feedback.ColorWrong:
		return tcell.ColorRed
	case feedback.ColorSuccess:
		return tcell.ColorGreen
	}
	return tcell.ColorGray
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		s.SetContent(x+i, y, r, nil, style)
	}
}

// viewSink maps one wall's feedback onto its row.
type viewSink struct {
	view *View
	idx  int
}

func (s *viewSink) SetFeedbackColor(kind feedback.ColorKind) {
	s.view.walls[s.idx].color = kind
}

func (s *viewSink) SetSecondaryVisualActive(active bool) {
	s.view.walls[s.idx].secondary = active
}

func (s *viewSink) SetDistortionIntensity(intensity float64) {
	s.view.walls[s.idx].intensity = intensity
}
