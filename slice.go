package goeq

import (
	"strconv"
	"strings"
)

// Slice selects a run of index keys: start (default 0) up to, but not
// including, stop, stepping by step (default 1). Start and stop are plain
// indices; a negative value is an ordinary key, not an offset from the end.
type Slice struct {
	start, stop, step          int
	hasStart, hasStop, hasStep bool
}

// To is the slice [:stop].
func To(stop int) Slice { return Slice{stop: stop, hasStop: true} }

// Between is the slice [start:stop].
func Between(start, stop int) Slice {
	return Slice{start: start, stop: stop, hasStart: true, hasStop: true}
}

// From is the open slice [start:]. Open slices are rejected when used.
func From(start int) Slice { return Slice{start: start, hasStart: true} }

// Full is the open slice [:]. Open slices are rejected when used.
func Full() Slice { return Slice{} }

// By returns s with the given step.
func (s Slice) By(step int) Slice {
	s.step, s.hasStep = step, true
	return s
}

// Stop reports the stop bound and whether one was given.
func (s Slice) Stop() (int, bool) { return s.stop, s.hasStop }

// MaxSliceLen bounds the number of indices a single slice may select.
const MaxSliceLen = 1 << 24

// Len returns how many indices s selects without enumerating them. It fails
// with ErrConfig when stop is missing or the count exceeds MaxSliceLen.
func (s Slice) Len() (int, error) {
	if !s.hasStop {
		return 0, newError(CodeConfig, s.String(), "slice must include stop index")
	}
	step := s.stepOrOne()
	var dist, stride uint
	switch {
	case step > 0 && s.start < s.stop:
		dist, stride = uint(s.stop)-uint(s.start), uint(step)
	case step < 0 && s.start > s.stop:
		dist, stride = uint(s.start)-uint(s.stop), uint(0)-uint(step)
	default:
		return 0, nil
	}
	n := (dist-1)/stride + 1
	if n > MaxSliceLen {
		return 0, newError(CodeConfig, s.String(), "slice selects %d indices, limit is %d", n, MaxSliceLen)
	}
	return int(n), nil
}

// Indices computes the index sequence of s.
//
// A zero step counts as unset and falls back to 1. A missing stop, or a
// selection longer than MaxSliceLen, fails with ErrConfig.
func (s Slice) Indices() ([]int, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	step := s.stepOrOne()
	out := make([]int, n)
	for k := range out {
		out[k] = s.start + k*step
	}
	return out, nil
}

func (s Slice) stepOrOne() int {
	if s.hasStep && s.step != 0 {
		return s.step
	}
	return 1
}

// String renders s in bracket notation, e.g. "[2:0:-1]".
func (s Slice) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if s.hasStart {
		b.WriteString(strconv.Itoa(s.start))
	}
	b.WriteByte(':')
	if s.hasStop {
		b.WriteString(strconv.Itoa(s.stop))
	}
	if s.hasStep {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(s.step))
	}
	b.WriteByte(']')
	return b.String()
}
