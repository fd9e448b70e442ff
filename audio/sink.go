package audio

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Hint tones span two octaves from hintBaseFreq, indexed by the wall's
// pitch ratio.
const hintBaseFreq = 220.0

// DefaultSampleRate matches the synthesised content; nothing here resamples.
const DefaultSampleRate = beep.SampleRate(44100)

// Sink is the speaker-backed audio sink: hint tones on demand plus a single
// background-music channel with crossfade. Safe to share between walls.
type Sink struct {
	rate  beep.SampleRate
	music *swappable
	log   *slog.Logger
}

// NewSink initialises the speaker and starts the (initially silent) music
// channel.
func NewSink(rate beep.SampleRate, log *slog.Logger) (*Sink, error) {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if log == nil {
		log = slog.Default()
	}
	if err := speaker.Init(rate, rate.N(50*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("speaker init: %w", err)
	}
	s := &Sink{rate: rate, music: &swappable{}, log: log}
	speaker.Play(s.music)
	return s, nil
}

// PlayHintTone plays one hint tone. pitchRatio 0..1 selects the frequency
// across a two-octave band, so walls hint at where their answer sits.
func (s *Sink) PlayHintTone(pitchRatio float64) {
	if pitchRatio < 0 {
		pitchRatio = 0
	} else if pitchRatio > 1 {
		pitchRatio = 1
	}
	freq := hintBaseFreq * math.Pow(2, 2*pitchRatio)
	s.log.Debug("audio: hint tone", "freq", freq)
	speaker.Play(HintTone(freq, s.rate))
}

// PlayMusic replaces the music channel immediately.
func (s *Sink) PlayMusic(music beep.Streamer) {
	s.music.swap(music)
}

// CrossfadeMusic fades the music channel into next over dur.
func (s *Sink) CrossfadeMusic(next beep.Streamer, dur time.Duration) {
	s.log.Debug("audio: music crossfade", "duration", dur)
	s.music.crossfadeTo(next, s.rate, dur)
}

// Close silences the music channel.
func (s *Sink) Close() {
	s.music.swap(nil)
}

// swappable is an endless streamer whose inner streamer can be replaced
// while the speaker is pulling from it. A nil inner streams silence.
type swappable struct {
	mu    sync.Mutex
	inner beep.Streamer
}

func (w *swappable) swap(s beep.Streamer) {
	w.mu.Lock()
	w.inner = s
	w.mu.Unlock()
}

func (w *swappable) crossfadeTo(next beep.Streamer, rate beep.SampleRate, dur time.Duration) {
	w.mu.Lock()
	if w.inner == nil {
		w.inner = next
	} else {
		w.inner = Crossfade(w.inner, next, rate, dur)
	}
	w.mu.Unlock()
}

func (w *swappable) Stream(samples [][2]float64) (n int, ok bool) {
	w.mu.Lock()
	inner := w.inner
	w.mu.Unlock()

	if inner != nil {
		n, ok = inner.Stream(samples)
		if ok {
			return n, true
		}
		w.mu.Lock()
		if w.inner == inner {
			w.inner = nil // finished; fall back to silence
		}
		w.mu.Unlock()
	}
	for i := range samples {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (w *swappable) Err() error { return nil }
