// Package capability resolves which optional lifecycle parameters the running
// platform version accepts.
package capability

import (
	"slices"

	"github.com/rpggio/dynamic-activities/internal/platform"
)

// Param tags an optional lifecycle parameter.
type Param string

const (
	ParamUpdateTimestamp Param = "update.timestamp"
	ParamEndTimestamp    Param = "end.timestamp"
	ParamStartStyle      Param = "start.style"
	ParamPendingState    Param = "content.pending"
	ParamStartAlert      Param = "start.alertConfiguration"
	ParamStartDate       Param = "start.startDate"
	ParamPushChannel     Param = "pushToken.channel"
)

// MinimumVersion is the first version with a working lifecycle.
var MinimumVersion = platform.Version{Major: 16, Minor: 1}

type tier struct {
	floor platform.Version
	adds  []Param
}

// tiers is ordered by floor; each tier inherits everything below it.
var tiers = []tier{
	{floor: MinimumVersion},
	{floor: platform.Version{Major: 16, Minor: 2}, adds: []Param{ParamUpdateTimestamp, ParamEndTimestamp}},
	{floor: platform.Version{Major: 17}, adds: []Param{ParamStartStyle, ParamPendingState}},
	{floor: platform.Version{Major: 18}, adds: []Param{ParamStartAlert, ParamStartDate, ParamPushChannel}},
}

// Snapshot is the feature availability of one platform version.
type Snapshot struct {
	Supported bool
	Version   platform.Version
	allowed   map[Param]struct{}
}

// Resolve computes the snapshot for v. It never fails; anything below the
// minimum is unsupported with no parameters.
func Resolve(v platform.Version) Snapshot {
	snap := Snapshot{Version: v, allowed: map[Param]struct{}{}}
	if !v.AtLeast(MinimumVersion) {
		return snap
	}
	snap.Supported = true
	for _, t := range tiers {
		if !v.AtLeast(t.floor) {
			break
		}
		for _, p := range t.adds {
			snap.allowed[p] = struct{}{}
		}
	}
	return snap
}

// Allows reports whether p may be submitted.
func (s Snapshot) Allows(p Param) bool {
	_, ok := s.allowed[p]
	return ok
}

// Params lists allowed parameters in a stable order.
func (s Snapshot) Params() []Param {
	out := make([]Param, 0, len(s.allowed))
	for p := range s.allowed {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// FloorFor returns the first version that allows p.
func FloorFor(p Param) (platform.Version, bool) {
	for _, t := range tiers {
		if slices.Contains(t.adds, p) {
			return t.floor, true
		}
	}
	return platform.Version{}, false
}
