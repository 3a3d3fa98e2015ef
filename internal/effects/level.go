package effects

import "math"

// levelTracker implements the asymmetric rise/fall dynamics shared by bars,
// vu_meter and any effect needing a smoothed, peak-marked column height.
// Rising is a low-pass toward target; falling is a constant-rate linear
// decay so bars "drop" rather than snap between notes. Level and peak are
// capped at max, and a zero target (gated silence) falls at max units/sec
// so a full column clears within one second.
type levelTracker struct {
	level        float64
	peak         float64
	riseAlpha    float64
	fallRate     float64 // units/sec between notes
	peakFallRate float64
	max          float64
}

func newLevelTracker(riseAlpha, fallRate, peakFallRate, max float64) levelTracker {
	return levelTracker{riseAlpha: riseAlpha, fallRate: fallRate, peakFallRate: peakFallRate, max: max}
}

func (lt *levelTracker) update(target, dt float64) {
	if target > lt.max {
		target = lt.max
	}
	if target > lt.level {
		lt.level = (1-lt.riseAlpha)*lt.level + lt.riseAlpha*target
	} else {
		fall := lt.fallRate
		if target <= 0 && lt.max > fall {
			fall = lt.max
		}
		lt.level -= fall * dt
		if lt.level < 0 {
			lt.level = 0
		}
	}

	if lt.level > lt.peak {
		lt.peak = lt.level
	} else {
		peakFall := lt.peakFallRate
		if target <= 0 && lt.max > peakFall {
			peakFall = lt.max
		}
		lt.peak -= peakFall * dt
		if lt.peak < 0 {
			lt.peak = 0
		}
	}
}

// driveEnvelope gates the continuously-rendering effects (plasma, spiral,
// kaleidoscope) so their fields fade to black during sustained silence
// instead of animating forever at the palette's brightness floor. Rise is
// fast so the field reappears on the first loud block; fall is a constant
// rate so silence reaches full black in well under a second.
type driveEnvelope struct {
	drive float64
}

const driveFallPerSec = 1.8

func (d *driveEnvelope) update(target, dt float64) float64 {
	if target > d.drive {
		d.drive += (target - d.drive) * math.Min(1, dt*10)
	} else {
		d.drive -= driveFallPerSec * dt
		if d.drive < 0 {
			d.drive = 0
		}
	}
	return d.drive
}

// bandDrive condenses a band vector into the envelope's target signal.
func bandDrive(bands []float32) float64 {
	return math.Min(1, 2*float64(meanOf(bands)))
}
