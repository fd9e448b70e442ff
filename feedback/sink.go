package feedback

// ColorKind names the visual states a wall can show. The actual colors live
// on the rendering side of the boundary.
type ColorKind int

const (
	ColorInactive ColorKind = iota
	ColorListening
	ColorWrong
	ColorSuccess
)

func (k ColorKind) String() string {
	switch k {
	case ColorInactive:
		return "inactive"
	case ColorListening:
		return "listening"
	case ColorWrong:
		return "wrong"
	case ColorSuccess:
		return "success"
	}
	return "unknown"
}

// VisualSink receives a wall's visual feedback: a named color state, the
// secondary "distortion" object toggle, and a single continuous shader-style
// intensity parameter.
type VisualSink interface {
	SetFeedbackColor(kind ColorKind)
	SetSecondaryVisualActive(active bool)
	SetDistortionIntensity(intensity float64)
}

// AudioSink receives a wall's audio feedback. PlayHintTone fires on a
// recurring timer while a wall is active and still locked; pitchRatio is the
// expected answer's relative position in its space (0..1).
type AudioSink interface {
	PlayHintTone(pitchRatio float64)
}

// NopVisual discards all visual feedback.
type NopVisual struct{}

func (NopVisual) SetFeedbackColor(ColorKind)     {}
func (NopVisual) SetSecondaryVisualActive(bool)  {}
func (NopVisual) SetDistortionIntensity(float64) {}

// NopAudio discards all audio feedback.
type NopAudio struct{}

func (NopAudio) PlayHintTone(float64) {}
