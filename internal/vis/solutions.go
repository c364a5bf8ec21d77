package vis

import (
	"sort"

	"github.com/arraydata/visibility.report/internal/jones"
)

// JonesSet maps an antenna index (position in the array layout) to its
// per-channel calibration solutions. Antennas without an entry have no
// solution; the pipeline flags their baselines rather than passing data
// through uncalibrated.
type JonesSet struct {
	numChannels int
	byAntenna   map[int][]jones.Jones
}

// NewJonesSet creates an empty solution set for the given channel count.
func NewJonesSet(numChannels int) *JonesSet {
	return &JonesSet{
		numChannels: numChannels,
		byAntenna:   make(map[int][]jones.Jones),
	}
}

// NumChannels returns the channel count every entry must match.
func (s *JonesSet) NumChannels() int { return s.numChannels }

// Set stores one antenna's per-channel solutions.
func (s *JonesSet) Set(antenna int, sols []jones.Jones) error {
	if len(sols) != s.numChannels {
		return &ShapeMismatchError{Buffer: "jones solutions", Want: s.numChannels, Got: len(sols)}
	}
	s.byAntenna[antenna] = append([]jones.Jones(nil), sols...)
	return nil
}

// Lookup returns an antenna's solutions, or false when none were loaded.
func (s *JonesSet) Lookup(antenna int) ([]jones.Jones, bool) {
	sols, ok := s.byAntenna[antenna]
	return sols, ok
}

// Antennas returns the antenna indices with solutions, ascending.
func (s *JonesSet) Antennas() []int {
	out := make([]int, 0, len(s.byAntenna))
	for a := range s.byAntenna {
		out = append(out, a)
	}
	sort.Ints(out)
	return out
}

// preparedSolutions is a JonesSet readied for application: optionally
// inverted, with singular or NaN channels replaced by the identity and
// marked invalid so the pipeline can flag them without poisoning data.
type preparedSolutions struct {
	matrices map[int][]jones.Jones
	valid    map[int][]bool
	singular int // antenna-channel entries rejected during preparation
}

func prepareSolutions(set *JonesSet, invert bool, eps float64) *preparedSolutions {
	p := &preparedSolutions{
		matrices: make(map[int][]jones.Jones, len(set.byAntenna)),
		valid:    make(map[int][]bool, len(set.byAntenna)),
	}
	for ant, sols := range set.byAntenna {
		mats := make([]jones.Jones, len(sols))
		valid := make([]bool, len(sols))
		for ch, j := range sols {
			if j.AnyNaN() {
				mats[ch] = jones.Identity()
				continue
			}
			if !invert {
				mats[ch] = j
				valid[ch] = true
				continue
			}
			inv, err := j.Inv(eps)
			if err != nil {
				// Recoverable: the affected cells get flagged, the
				// block keeps going.
				mats[ch] = jones.Identity()
				p.singular++
				continue
			}
			mats[ch] = inv
			valid[ch] = true
		}
		p.matrices[ant] = mats
		p.valid[ant] = valid
	}
	return p
}
