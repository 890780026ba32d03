package pipeline

import "fmt"

// UnitID identifies one compiled unit (a function) for the duration of a
// compilation session.
type UnitID string

// PassSetID selects an ordered group of passes. Pass sets are totally
// ordered; each set is fully applied before the next begins.
type PassSetID int

// PassIndex is the position of a pass within its pass set.
type PassIndex int

// Key identifies one memoized artifact: the state of a unit's IR after the
// pass at Index within Set has run. A resolved key always yields the same
// artifact for the rest of the session.
type Key struct {
	Set   PassSetID
	Index PassIndex
	Unit  UnitID
}

// BuildKey is the pseudo-key under which the external builder publishes a
// unit's zeroth-stage artifact. It never appears in the pipeline cache.
func BuildKey(unit UnitID) Key {
	return Key{Set: -1, Index: -1, Unit: unit}
}

func (k Key) String() string {
	if k.Set < 0 {
		return fmt.Sprintf("(build, %s)", k.Unit)
	}
	return fmt.Sprintf("(set %d, pass %d, %s)", k.Set, k.Index, k.Unit)
}

// SourceInfo is the site metadata of a locally defined unit. Units without
// a local definition have no pipeline history and therefore no SourceInfo.
type SourceInfo struct {
	Unit   UnitID
	File   string
	Line   int
	Column int
}

func (s SourceInfo) String() string {
	return fmt.Sprintf("%s (%s:%d:%d)", s.Unit, s.File, s.Line, s.Column)
}
