package transform

import (
	"reflect"
	"testing"
)

// ── taxonomy.add ───────────────────────────────────────────────────────────

func TestTaxonomyAdd_LowercasesAndTrims(t *testing.T) {
	tax := taxonomy{}
	tax.add(map[string]any{
		"programming": []any{" Python ", "SQL", "python"},
	})

	got := tax.sortedSkills("programming")
	want := []string{"python", "sql"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sortedSkills(programming) = %v, want %v", got, want)
	}
}

func TestTaxonomyAdd_KeepsCategoriesWithUnusableValues(t *testing.T) {
	tax := taxonomy{}
	tax.add(map[string]any{
		"cloud":    []any{"aws", 42, nil, "gcp"}, // non-strings dropped
		"broken":   "not a list",                 // key kept, no skills
		"numbers":  3.14,
		"empty":    []any{"", "   "},
		"":         []any{"ignored"}, // blank category dropped
		"analysis": []any{"tableau"},
	})

	cats := tax.sortedCategories()
	want := []string{"analysis", "broken", "cloud", "empty", "numbers"}
	if !reflect.DeepEqual(cats, want) {
		t.Errorf("sortedCategories() = %v, want %v", cats, want)
	}
	if got := tax.sortedSkills("cloud"); !reflect.DeepEqual(got, []string{"aws", "gcp"}) {
		t.Errorf("sortedSkills(cloud) = %v, want [aws gcp]", got)
	}
	for _, category := range []string{"broken", "numbers", "empty"} {
		if got := tax.sortedSkills(category); len(got) != 0 {
			t.Errorf("sortedSkills(%s) = %v, want no skills", category, got)
		}
	}
}

// A category staged with a null or empty skill array still earns its
// skill_categories row.
func TestTaxonomyAdd_NullAndEmptyArraysRegisterCategory(t *testing.T) {
	tax := taxonomy{}
	tax.add(map[string]any{"legacy": nil})      // staged as {"legacy":null}
	tax.add(map[string]any{"fresh": []any{}})   // staged as {"fresh":[]}

	cats := tax.sortedCategories()
	if !reflect.DeepEqual(cats, []string{"fresh", "legacy"}) {
		t.Errorf("sortedCategories() = %v, want [fresh legacy]", cats)
	}
}

func TestTaxonomyAdd_MergesAcrossRows(t *testing.T) {
	tax := taxonomy{}
	tax.add(map[string]any{"programming": []any{"python"}})
	tax.add(map[string]any{"programming": []any{"sql"}})
	tax.add(map[string]any{"databases": []any{"sql"}}) // same skill, second category

	if got := tax.sortedSkills("programming"); !reflect.DeepEqual(got, []string{"python", "sql"}) {
		t.Errorf("sortedSkills(programming) = %v, want [python sql]", got)
	}
	// Both categories keep the name host-side; the insert-if-absent conflict
	// policy resolves the winner at persistence time, in category sort order.
	if got := tax.sortedSkills("databases"); !reflect.DeepEqual(got, []string{"sql"}) {
		t.Errorf("sortedSkills(databases) = %v, want [sql]", got)
	}
}

func TestTaxonomySortedCategories_Deterministic(t *testing.T) {
	tax := taxonomy{}
	tax.add(map[string]any{
		"zeta": []any{"a"}, "alpha": []any{"b"}, "mid": []any{"c"},
	})
	want := []string{"alpha", "mid", "zeta"}
	for i := 0; i < 10; i++ {
		if got := tax.sortedCategories(); !reflect.DeepEqual(got, want) {
			t.Fatalf("sortedCategories() = %v, want %v (stable across calls)", got, want)
		}
	}
}
