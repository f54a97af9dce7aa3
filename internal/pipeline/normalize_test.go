package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"

	"builtwith/internal"
)

func normalize(t *testing.T, tech string, override string) internal.TechnologyRecord {
	t.Helper()
	v := gjson.Parse(tech)
	if !v.IsObject() {
		t.Fatalf("fixture is not an object: %s", tech)
	}
	return NormalizeTech(v, gjson.Result{}, override)
}

func TestNormalizeMissingKeysUseDefaults(t *testing.T) {
	got := normalize(t, `{}`, "")
	if diff := cmp.Diff(internal.TechnologyRecord{}, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeKeyPriority(t *testing.T) {
	cases := []struct {
		name string
		tech string
		want internal.TechnologyRecord
	}{
		{
			name: "first key wins",
			tech: `{"Category": "A", "category": "B", "SubCategory": "S1", "subcategory": "S2", "LiveCount": 5, "Live": 9}`,
			want: internal.TechnologyRecord{Category: "A", Subcategory: "S1", LiveCount: 5},
		},
		{
			name: "falsy earlier keys are skipped",
			tech: `{"Category": "", "category": "B", "LiveCount": 0, "live_count": "7", "DeadCount": null, "Dead": 2}`,
			want: internal.TechnologyRecord{Category: "B", LiveCount: 7, DeadCount: 2},
		},
		{
			name: "name stands in for category",
			tech: `{"Technology": "jQuery"}`,
			want: internal.TechnologyRecord{Category: "jQuery"},
		},
		{
			name: "latest from alternate key",
			tech: `{"LatestTimestamp": "2023-12-01T08:30:00", "oldest": "2019-06-01 10:00:00"}`,
			want: internal.TechnologyRecord{
				LatestTimestamp: "2023-12-01T08:30:00",
				OldestTimestamp: "2019-06-01 10:00:00",
				LatestTime:      "2023-12-01 08:30:00",
				OldestTime:      "2019-06-01 10:00:00",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, normalize(t, tc.tech, "")); diff != "" {
				t.Fatalf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeOverrideBeatsEntryCategory(t *testing.T) {
	got := normalize(t, `{"Category": "Own", "Name": "x"}`, "Parent")
	if got.Category != "Parent" {
		t.Fatalf("category=%q", got.Category)
	}
	got = normalize(t, `{"Category": "Own"}`, "")
	if got.Category != "Own" {
		t.Fatalf("category=%q", got.Category)
	}
}

func TestNormalizeNonStringCategoryIsStringified(t *testing.T) {
	got := normalize(t, `{"Category": 42}`, "")
	if got.Category != "42" {
		t.Fatalf("category=%q", got.Category)
	}
}

func TestNormalizeCounts(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{raw: `12`, want: 12},
		{raw: `"12"`, want: 12},
		{raw: `" 12 "`, want: 12},
		{raw: `"12.5"`, want: 12},
		{raw: `12.9`, want: 12},
		{raw: `-3`, want: -3},
		{raw: `"abc"`, want: 0},
		{raw: `"inf"`, want: 0},
		{raw: `""`, want: 0},
		{raw: `0`, want: 0},
		{raw: `false`, want: 0},
		{raw: `true`, want: 1},
		{raw: `null`, want: 0},
		{raw: `[1]`, want: 0},
		{raw: `{"n": 1}`, want: 0},
		{raw: `9007199254740993`, want: 9007199254740993},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got := normalize(t, `{"LiveCount": `+tc.raw+`}`, "")
			if got.LiveCount != tc.want {
				t.Fatalf("LiveCount=%d want %d", got.LiveCount, tc.want)
			}
		})
	}
}

func TestNormalizeMissingCountIsZero(t *testing.T) {
	got := normalize(t, `{"Name": "x"}`, "")
	if got.LiveCount != 0 || got.DeadCount != 0 {
		t.Fatalf("counts=%d/%d", got.LiveCount, got.DeadCount)
	}
}

func TestNormalizeUnparseableTimestampKeepsRaw(t *testing.T) {
	got := normalize(t, `{"Latest": "not-a-date", "Oldest": "2024-03-15"}`, "")
	if got.LatestTimestamp != "not-a-date" || got.LatestTime != "" {
		t.Fatalf("latest=%q/%q", got.LatestTimestamp, got.LatestTime)
	}
	if got.OldestTime != "2024-03-15 00:00:00" {
		t.Fatalf("oldest time=%q", got.OldestTime)
	}
}

func TestTruthy(t *testing.T) {
	cases := map[string]bool{
		`null`:    false,
		`false`:   false,
		`true`:    true,
		`0`:       false,
		`0.0`:     false,
		`-1`:      true,
		`""`:      false,
		`" "`:     true,
		`[]`:      false,
		`[0]`:     true,
		`{}`:      false,
		`{"a":0}`: true,
	}
	for raw, want := range cases {
		if got := truthy(gjson.Parse(raw)); got != want {
			t.Fatalf("truthy(%s)=%v want %v", raw, got, want)
		}
	}
	if truthy(gjson.Result{}) {
		t.Fatal("missing value must not be truthy")
	}
}
