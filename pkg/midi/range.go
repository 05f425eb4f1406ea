package midi

const defaultBeatsPerBar = 4

type barRange struct {
	cnt int

	lowerBound float64
	upperBound float64
}

func newBarRange(lowerBound float64, upperBound float64) *barRange {
	return &barRange{
		lowerBound: lowerBound,
		upperBound: upperBound,
	}
}

func (m *barRange) stepBy(n int) {
	m.cnt += n
	step := m.upperBound - m.lowerBound

	m.upperBound += step * float64(n)
	m.lowerBound += step * float64(n)
}

func (m *barRange) contains(item float64) bool {
	return item >= m.lowerBound && item < m.upperBound
}

// BarPosition splits a beat position into a zero-based bar index and the
// beat offset inside that bar. Non-positive beatsPerBar means 4/4.
func BarPosition(beat float64, beatsPerBar int) (int, float64) {
	if beatsPerBar <= 0 {
		beatsPerBar = defaultBeatsPerBar
	}
	if beat < 0 {
		beat = 0
	}

	n := float64(beatsPerBar)
	r := newBarRange(0, n)

	if !r.contains(beat) {
		r.stepBy(int(beat / n))
	}
	// rounding at the upper edge
	if !r.contains(beat) {
		r.stepBy(1)
	}

	return r.cnt, beat - r.lowerBound
}
