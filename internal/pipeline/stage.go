package pipeline

// Stage is a step of a run. A run moves Reading → Projecting → Writing and
// enters each stage at most once.
type Stage int

const (
	Reading Stage = iota + 1
	Projecting
	Writing
)

func (s Stage) String() string {
	switch s {
	case Reading:
		return "reading"
	case Projecting:
		return "projecting"
	case Writing:
		return "writing"
	default:
		return "unknown"
	}
}
