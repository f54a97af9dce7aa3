package pipeline

import (
	"github.com/tidwall/gjson"

	"builtwith/internal"
)

// NoTechnologyWarning is reported when a profile carries no recognizable
// technology structure.
const NoTechnologyWarning = "No technology data found in BuiltWith response."

type resultShape int

const (
	shapeNone resultShape = iota
	shapePaths
	shapeTechnologies
	shapeCategories
)

func (s resultShape) String() string {
	switch s {
	case shapePaths:
		return "paths"
	case shapeTechnologies:
		return "technologies"
	case shapeCategories:
		return "categories"
	default:
		return "none"
	}
}

// Extraction is the outcome of flattening one profile. An empty Records with
// a Warning is a valid result, not a failure.
type Extraction struct {
	Records []internal.TechnologyRecord
	Results int
	// Shapes names the layout detected for each result, in order.
	Shapes  []string
	Warning string
}

// ExtractTechnologies flattens a decoded profile into technology records.
// It never fails: unknown shapes yield an empty slice and a warning.
func ExtractTechnologies(doc gjson.Result) Extraction {
	results := ResolveResults(doc)
	records := make([]internal.TechnologyRecord, 0)
	shapes := make([]string, 0, len(results))
	for _, result := range results {
		shapes = append(shapes, detectShape(result).String())
		records = append(records, DecomposeResult(result)...)
	}

	extraction := Extraction{Records: records, Results: len(results), Shapes: shapes}
	if len(records) == 0 {
		extraction.Warning = NoTechnologyWarning
	}
	return extraction
}

// ResolveResults finds the result objects of a profile: the "Results" list,
// else the "result" object or list, else the document itself.
func ResolveResults(doc gjson.Result) []gjson.Result {
	if doc.IsObject() {
		for _, key := range []string{"Results", "result"} {
			if v := doc.Get(key); v.Exists() {
				return asResults(v)
			}
		}
	}
	return asResults(doc)
}

func asResults(v gjson.Result) []gjson.Result {
	switch {
	case v.IsArray():
		return v.Array()
	case v.IsObject():
		return []gjson.Result{v}
	default:
		return nil
	}
}

func detectShape(result gjson.Result) resultShape {
	if !result.IsObject() {
		return shapeNone
	}
	switch {
	case result.Get("Paths").Exists():
		return shapePaths
	case result.Get("Technologies").Exists():
		return shapeTechnologies
	case result.Get("Categories").Exists():
		return shapeCategories
	default:
		return shapeNone
	}
}

// DecomposeResult turns one result object into records. The first matching
// layout wins even when it produces nothing.
func DecomposeResult(result gjson.Result) []internal.TechnologyRecord {
	switch detectShape(result) {
	case shapePaths:
		return decomposePaths(result)
	case shapeTechnologies:
		return normalizeAll(result.Get("Technologies"), result, "")
	case shapeCategories:
		return decomposeCategories(result)
	default:
		return nil
	}
}

// Path-level data never overrides the category.
func decomposePaths(result gjson.Result) []internal.TechnologyRecord {
	paths := result.Get("Paths")
	if !paths.IsArray() {
		return nil
	}
	var out []internal.TechnologyRecord
	paths.ForEach(func(_, path gjson.Result) bool {
		if !path.IsObject() {
			return true
		}
		if techs := path.Get("Technologies"); techs.Exists() {
			out = append(out, normalizeAll(techs, path, "")...)
		}
		return true
	})
	return out
}

// Category names come back in document order.
func decomposeCategories(result gjson.Result) []internal.TechnologyRecord {
	categories := result.Get("Categories")
	if !categories.IsObject() {
		return nil
	}
	var out []internal.TechnologyRecord
	categories.ForEach(func(name, data gjson.Result) bool {
		if !data.IsObject() {
			return true
		}
		if techs := data.Get("Technologies"); techs.Exists() {
			out = append(out, normalizeAll(techs, data, name.String())...)
		}
		return true
	})
	return out
}

func normalizeAll(techs, parent gjson.Result, categoryOverride string) []internal.TechnologyRecord {
	if !techs.IsArray() {
		return nil
	}
	var out []internal.TechnologyRecord
	techs.ForEach(func(_, tech gjson.Result) bool {
		if tech.IsObject() {
			out = append(out, NormalizeTech(tech, parent, categoryOverride))
		}
		return true
	})
	return out
}
