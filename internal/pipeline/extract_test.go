package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"

	"builtwith/internal"
)

const techEntries = `[
	{"Category": "Widgets", "SubCategory": "Analytics", "LiveCount": 3, "DeadCount": "1", "Latest": "2024-03-15", "Oldest": "01/02/2020"},
	{"Name": "nginx", "subcategory": "Web Server", "live_count": "12", "Dead": 0}
]`

func profile(json string) gjson.Result {
	return gjson.Parse(json)
}

func TestExtractEquivalentShapes(t *testing.T) {
	want := []internal.TechnologyRecord{
		{
			Category:        "Widgets",
			Subcategory:     "Analytics",
			LiveCount:       3,
			DeadCount:       1,
			LatestTimestamp: "2024-03-15",
			OldestTimestamp: "01/02/2020",
			LatestTime:      "2024-03-15 00:00:00",
			OldestTime:      "2020-01-02 00:00:00",
		},
		{Category: "nginx", Subcategory: "Web Server", LiveCount: 12},
	}

	cases := []struct {
		name string
		doc  string
	}{
		{name: "results paths", doc: `{"Results": [{"Paths": [{"Domain": "example.com", "Technologies": ` + techEntries + `}]}]}`},
		{name: "results technologies", doc: `{"Results": [{"Technologies": ` + techEntries + `}]}`},
		{name: "result object", doc: `{"result": {"Technologies": ` + techEntries + `}}`},
		{name: "result list", doc: `{"result": [{"Technologies": ` + techEntries + `}]}`},
		{name: "bare result", doc: `{"Technologies": ` + techEntries + `}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractTechnologies(profile(tc.doc))
			if diff := cmp.Diff(want, got.Records); diff != "" {
				t.Fatalf("records mismatch (-want +got):\n%s", diff)
			}
			if got.Warning != "" {
				t.Fatalf("unexpected warning %q", got.Warning)
			}
		})
	}
}

func TestExtractCategoriesOverride(t *testing.T) {
	doc := `{"Results": [{"Categories": {
		"Analytics": {"Technologies": ` + techEntries + `},
		"Hosting": {"Technologies": [{"Category": "ignored", "Name": "aws"}]},
		"Empty": {"Count": 0},
		"Broken": "not an object"
	}}]}`

	got := ExtractTechnologies(profile(doc)).Records
	if len(got) != 3 {
		t.Fatalf("len=%d", len(got))
	}
	for i, category := range []string{"Analytics", "Analytics", "Hosting"} {
		if got[i].Category != category {
			t.Fatalf("record %d category=%q want %q", i, got[i].Category, category)
		}
	}
	if got[0].Subcategory != "Analytics" || got[1].LiveCount != 12 {
		t.Fatalf("technology fields lost under categories: %+v", got[:2])
	}
}

func TestExtractCategoriesKeepDocumentOrder(t *testing.T) {
	doc := `{"Categories": {
		"zeta": {"Technologies": [{"Name": "a"}]},
		"alpha": {"Technologies": [{"Name": "b"}]},
		"mid": {"Technologies": [{"Name": "c"}]}
	}}`

	got := ExtractTechnologies(profile(doc)).Records
	var order []string
	for _, r := range got {
		order = append(order, r.Category)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractPriorityHasNoFallthrough(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want int
	}{
		{name: "empty paths hide technologies", doc: `{"Paths": [], "Technologies": [{"Name": "x"}]}`, want: 0},
		{name: "paths without technologies", doc: `{"Paths": [{"Url": "/"}], "Categories": {"A": {"Technologies": [{"Name": "x"}]}}}`, want: 0},
		{name: "technologies beat categories", doc: `{"Technologies": [{"Name": "x"}], "Categories": {"A": {"Technologies": [{"Name": "y"}, {"Name": "z"}]}}}`, want: 1},
		{name: "null paths", doc: `{"Paths": null, "Technologies": [{"Name": "x"}]}`, want: 0},
		{name: "paths from several entries", doc: `{"Paths": [{"Technologies": [{"Name": "a"}]}, "junk", {"Technologies": [{"Name": "b"}, 7]}]}`, want: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractTechnologies(profile(tc.doc)).Records
			if len(got) != tc.want {
				t.Fatalf("len=%d want %d", len(got), tc.want)
			}
		})
	}
}

func TestExtractUnrecognizedShapes(t *testing.T) {
	for _, doc := range []string{`{"foo": "bar"}`, `{}`, `[]`, `"text"`, `42`, `{"Results": "nope"}`, `{"Results": []}`} {
		got := ExtractTechnologies(profile(doc))
		if got.Records == nil || len(got.Records) != 0 {
			t.Fatalf("doc %s: want empty non-nil records, got %#v", doc, got.Records)
		}
		if got.Warning != NoTechnologyWarning {
			t.Fatalf("doc %s: warning=%q", doc, got.Warning)
		}
	}
}

func TestExtractRecordsShapes(t *testing.T) {
	doc := `{"Results": [{"Paths": []}, {"Technologies": []}, {"Categories": {}}, {"Meta": {}}]}`
	got := ExtractTechnologies(profile(doc))
	if diff := cmp.Diff([]string{"paths", "technologies", "categories", "none"}, got.Shapes); diff != "" {
		t.Fatalf("shapes mismatch (-want +got):\n%s", diff)
	}
	if got.Results != 4 {
		t.Fatalf("results=%d", got.Results)
	}
}
