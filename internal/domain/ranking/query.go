package ranking

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/simboard/internal/domain/model"
)

// Query parameter names used by the dashboard.
const (
	ParamStatus   = "status"
	ParamStrength = "strength"
	ParamMinScore = "min_score"
	ParamSort     = "sort"

	allValue = "all"
)

// ParseQuery reads filters and the sort key from q. Invalid values fall back
// to "all" and the default sort instead of failing.
func ParseQuery(q url.Values) (Filters, SortKey) {
	var f Filters

	if s := strings.TrimSpace(q.Get(ParamStatus)); s != "" && !strings.EqualFold(s, allValue) {
		st := model.ParseStatus(s)
		f.Status = &st
	}
	if s := q.Get(ParamStrength); s != "" && !strings.EqualFold(s, allValue) {
		if t, ok := model.ParseTier(s); ok {
			f.Strength = &t
		}
	}
	if s := strings.TrimSpace(q.Get(ParamMinScore)); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) {
			f.MinScore = &v
		}
	}
	return f, ParseSortKey(q.Get(ParamSort))
}

// Encode writes filters and the sort key back into q, removing unset ones.
func Encode(q url.Values, f Filters, sortBy SortKey) {
	q.Del(ParamStatus)
	q.Del(ParamStrength)
	q.Del(ParamMinScore)
	q.Del(ParamSort)
	if f.Status != nil {
		q.Set(ParamStatus, f.Status.String())
	}
	if f.Strength != nil {
		q.Set(ParamStrength, f.Strength.String())
	}
	if f.MinScore != nil {
		q.Set(ParamMinScore, strconv.FormatFloat(*f.MinScore, 'f', -1, 64))
	}
	if sortBy != SortScore {
		q.Set(ParamSort, string(sortBy))
	}
}
