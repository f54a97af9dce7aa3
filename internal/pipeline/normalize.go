package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"builtwith/internal"
)

// Candidate source keys per record field, highest priority first.
var (
	CategoryKeys    = []string{"Category", "category"}
	NameKeys        = []string{"Name", "name", "Technology"}
	SubcategoryKeys = []string{"SubCategory", "Subcategory", "subcategory"}
	LiveCountKeys   = []string{"LiveCount", "live_count", "Live"}
	DeadCountKeys   = []string{"DeadCount", "dead_count", "Dead"}
	LatestKeys      = []string{"Latest", "latest", "LatestTimestamp"}
	OldestKeys      = []string{"Oldest", "oldest", "OldestTimestamp"}
)

// NormalizeTech builds one record from a technology entry. A non-empty
// categoryOverride beats any category carried by the entry itself; when
// neither exists the technology name stands in for the category.
//
// parent is the path or result the entry was found under. Nothing reads from
// it yet; it is accepted so path-level defaults can be added without changing
// the decomposers.
func NormalizeTech(tech, parent gjson.Result, categoryOverride string) internal.TechnologyRecord {
	_ = parent

	category := categoryOverride
	if category == "" {
		category = firstText(tech, CategoryKeys)
	}
	if category == "" {
		category = firstText(tech, NameKeys)
	}

	latest := firstText(tech, LatestKeys)
	oldest := firstText(tech, OldestKeys)

	return internal.TechnologyRecord{
		Category:        category,
		Subcategory:     firstText(tech, SubcategoryKeys),
		LiveCount:       toCount(firstTruthy(tech, LiveCountKeys)),
		DeadCount:       toCount(firstTruthy(tech, DeadCountKeys)),
		LatestTimestamp: latest,
		OldestTimestamp: oldest,
		LatestTime:      FormatTimestamp(latest),
		OldestTime:      FormatTimestamp(oldest),
	}
}

// firstTruthy returns the value of the first key holding a truthy value, or
// the zero Result.
func firstTruthy(obj gjson.Result, keys []string) gjson.Result {
	for _, key := range keys {
		if v := obj.Get(key); truthy(v) {
			return v
		}
	}
	return gjson.Result{}
}

func firstText(obj gjson.Result, keys []string) string {
	v := firstTruthy(obj, keys)
	if !v.Exists() {
		return ""
	}
	return v.String()
}

// truthy is false for missing, null, false, "", 0, [] and {}.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	default:
		empty := true
		v.ForEach(func(_, _ gjson.Result) bool {
			empty = false
			return false
		})
		return !empty
	}
}

// toCount coerces a count to int. Anything that is not a number or a numeric
// string becomes 0; fractional values are truncated toward zero.
func toCount(v gjson.Result) int {
	switch v.Type {
	case gjson.Number:
		if i, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return int(i)
		}
		return clampInt(v.Num)
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
			return clampInt(f)
		}
		return 0
	case gjson.True:
		return 1
	default:
		return 0
	}
}

func clampInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt
	case f <= math.MinInt64:
		return math.MinInt
	}
	return int(f)
}
