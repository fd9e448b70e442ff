package feedback

// MultiVisual fans one wall's visual feedback out to several sinks.
func MultiVisual(sinks ...VisualSink) VisualSink {
	out := make(multiVisual, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

type multiVisual []VisualSink

func (m multiVisual) SetFeedbackColor(kind ColorKind) {
	for _, s := range m {
		s.SetFeedbackColor(kind)
	}
}

func (m multiVisual) SetSecondaryVisualActive(active bool) {
	for _, s := range m {
		s.SetSecondaryVisualActive(active)
	}
}

func (m multiVisual) SetDistortionIntensity(intensity float64) {
	for _, s := range m {
		s.SetDistortionIntensity(intensity)
	}
}
