package compare

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Selection bounds.
const (
	MaxSelected = 4
	MinCompare  = 2
)

// Query keys holding the persisted selection.
const (
	ParamCompare  = "compare"
	ParamSelected = "selected"
)

// State is the compare-mode flag and the selected assessment ids in the order
// they were picked. Selected never holds duplicates or more than MaxSelected ids.
type State struct {
	Active   bool
	Selected []string
}

// Contains reports whether id is selected.
func (s State) Contains(id string) bool {
	return slices.Contains(s.Selected, id)
}

// Equal reports whether two states match, selection order included.
func (s State) Equal(o State) bool {
	return s.Active == o.Active && slices.Equal(s.Selected, o.Selected)
}

// Serialize writes s as flat query values. An inactive state serializes to
// no values at all.
func Serialize(s State) url.Values {
	q := url.Values{}
	if !s.Active {
		return q
	}
	q.Set(ParamCompare, "1")
	if len(s.Selected) > 0 {
		q.Set(ParamSelected, strings.Join(s.Selected, ","))
	}
	return q
}

// Deserialize rebuilds a State from query values. It never fails: a missing or
// malformed compare flag gives the inactive empty state. Selected ids are
// trimmed and deduplicated but not checked for existence; only the first
// MaxSelected distinct ids are kept.
func Deserialize(q url.Values) State {
	active, err := strconv.ParseBool(strings.TrimSpace(q.Get(ParamCompare)))
	if err != nil || !active {
		return State{}
	}

	s := State{Active: true, Selected: []string{}}
	for _, raw := range q[ParamSelected] {
		for _, id := range strings.Split(raw, ",") {
			id = strings.TrimSpace(id)
			if id == "" || s.Contains(id) {
				continue
			}
			if len(s.Selected) == MaxSelected {
				return s
			}
			s.Selected = append(s.Selected, id)
		}
	}
	return s
}

// Merge copies the selection keys of s into q, leaving other keys intact.
func Merge(q url.Values, s State) url.Values {
	out := url.Values{}
	for k, v := range q {
		if k == ParamCompare || k == ParamSelected {
			continue
		}
		out[k] = slices.Clone(v)
	}
	for k, v := range Serialize(s) {
		out[k] = v
	}
	return out
}
