package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// crossfade mixes two streamers with complementary linear gains over a fixed
// number of samples, then passes the incoming streamer through unchanged.
// Either side ending early is treated as silence for the remainder of the
// fade.
type crossfade struct {
	from, to beep.Streamer
	position int
	total    int
	fromDone bool
	toDone   bool
	buf      [][2]float64
}

// Crossfade fades from one streamer to another over dur. Deterministic:
// sample i of the fade always gets gain i/total.
func Crossfade(from, to beep.Streamer, rate beep.SampleRate, dur time.Duration) beep.Streamer {
	total := rate.N(dur)
	if total < 1 {
		total = 1
	}
	return &crossfade{from: from, to: to, total: total}
}

func (c *crossfade) Stream(samples [][2]float64) (n int, ok bool) {
	if c.position >= c.total {
		if c.toDone {
			return 0, false
		}
		n, ok = c.to.Stream(samples)
		if !ok {
			c.toDone = true
		}
		return n, ok
	}

	if cap(c.buf) < len(samples) {
		c.buf = make([][2]float64, len(samples))
	}
	buf := c.buf[:len(samples)]

	fn := c.streamSide(c.from, &c.fromDone, samples)
	tn := c.streamSide(c.to, &c.toDone, buf)
	if tn > fn {
		n = tn
	} else {
		n = fn
	}
	if n == 0 {
		return 0, false
	}

	for i := 0; i < n; i++ {
		gain := float64(c.position) / float64(c.total)
		if c.position >= c.total {
			gain = 1
		}
		samples[i][0] = samples[i][0]*(1-gain) + buf[i][0]*gain
		samples[i][1] = samples[i][1]*(1-gain) + buf[i][1]*gain
		c.position++
	}
	return n, true
}

// streamSide fills dst from s, zero-padding once the side is exhausted.
func (c *crossfade) streamSide(s beep.Streamer, done *bool, dst [][2]float64) int {
	if *done {
		for i := range dst {
			dst[i] = [2]float64{}
		}
		return len(dst)
	}
	n, ok := s.Stream(dst)
	for i := n; i < len(dst); i++ {
		dst[i] = [2]float64{}
	}
	if !ok {
		*done = true
	}
	return len(dst)
}

func (c *crossfade) Err() error { return nil }
