package docpath

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
)

type lesson struct {
	Title    string   `json:"title"`
	Duration int      `json:"duration"`
	Tags     []string `json:"tags,omitempty"`
	Views    uint     `json:"views,omitempty"`
	internal string
}

type module struct {
	Title   string   `json:"title"`
	Lessons []lesson `json:"lessons"`
}

type doc struct {
	Title   string            `json:"title"`
	Modules []module          `json:"modules"`
	Meta    map[string]string `json:"meta,omitempty"`
	Extra   *lesson           `json:"extra,omitempty"`
	Skipped string            `json:"-"`
}

func sample() doc {
	return doc{
		Title: "Intro",
		Modules: []module{
			{Title: "M1", Lessons: []lesson{{Title: "A"}, {Title: "B"}, {Title: "C"}}},
			{Title: "M2", Lessons: []lesson{{Title: "D", Tags: []string{"x"}}}},
		},
		Meta:  map[string]string{"level": "beginner"},
		Extra: &lesson{Title: "bonus"},
	}
}

func TestGet(t *testing.T) {
	d := sample()
	cases := []struct {
		path Path
		want any
	}{
		{P("title"), "Intro"},
		{P("modules", 1, "title"), "M2"},
		{P("modules", 0, "lessons", 2, "title"), "C"},
		{P("meta", "level"), "beginner"},
		{P("extra", "title"), "bonus"},
	}
	for _, c := range cases {
		got, err := Get(d, c.path)
		if err != nil {
			t.Fatalf("Get(%s): %v", c.path, err)
		}
		if got != c.want {
			t.Errorf("Get(%s) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestGetErrors(t *testing.T) {
	d := sample()
	paths := []Path{
		P("nope"),
		P("modules", 5),
		P("modules", "title"),
		P("title", "x"),
		P("meta", "missing"),
		P("Skipped"),
	}
	for _, p := range paths {
		_, err := Get(d, p)
		if err == nil {
			t.Fatalf("Get(%s): expected error", p)
		}
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Get(%s): expected ErrInvalidPath, got %v", p, err)
		}
		var pe *PathError
		if !errors.As(err, &pe) || pe.Op != "get" {
			t.Errorf("Get(%s): expected *PathError with op get, got %#v", p, err)
		}
	}
}

func TestSetCopiesSpine(t *testing.T) {
	d := sample()
	out, err := Set(d, P("modules", 0, "lessons", 1, "title"), "B2")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if out.Modules[0].Lessons[1].Title != "B2" {
		t.Fatalf("expected B2, got %q", out.Modules[0].Lessons[1].Title)
	}
	if d.Modules[0].Lessons[1].Title != "B" {
		t.Fatalf("original modified: %q", d.Modules[0].Lessons[1].Title)
	}
	// Untouched subtree is shared.
	if &out.Modules[1].Lessons[0] != &d.Modules[1].Lessons[0] {
		t.Error("expected untouched module to share storage")
	}
}

func TestSetMapAndPointer(t *testing.T) {
	d := sample()
	out, err := Set(d, P("meta", "level"), "advanced")
	if err != nil {
		t.Fatalf("Set map: %v", err)
	}
	if out.Meta["level"] != "advanced" || d.Meta["level"] != "beginner" {
		t.Fatalf("unexpected map values: out=%v orig=%v", out.Meta, d.Meta)
	}

	out, err = Set(d, P("extra", "title"), "changed")
	if err != nil {
		t.Fatalf("Set pointer: %v", err)
	}
	if out.Extra == d.Extra {
		t.Fatal("expected pointer to be replaced")
	}
	if out.Extra.Title != "changed" || d.Extra.Title != "bonus" {
		t.Fatalf("unexpected titles: out=%q orig=%q", out.Extra.Title, d.Extra.Title)
	}
}

func TestSetConvertsNumbers(t *testing.T) {
	d := sample()
	out, err := Set(d, P("modules", 0, "lessons", 0, "duration"), float64(45))
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if out.Modules[0].Lessons[0].Duration != 45 {
		t.Fatalf("expected 45, got %d", out.Modules[0].Lessons[0].Duration)
	}

	if _, err := Set(d, P("modules", 0, "lessons", 0, "duration"), 4.5); err == nil {
		t.Fatal("expected error for non-integral value")
	}
	if _, err := Set(d, P("modules", 0, "lessons", 0, "duration"), json.Number("30")); err != nil {
		t.Fatalf("Set json.Number: %v", err)
	}
	if _, err := Set(d, P("title"), 3); err == nil {
		t.Fatal("expected error assigning int to string")
	}

	for _, f := range []float64{1e30, -1e30, math.Inf(1), math.NaN(), math.MaxInt64 + 1} {
		_, err := Set(d, P("modules", 0, "lessons", 0, "duration"), f)
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Set(duration, %v): expected path error, got %v", f, err)
		}
	}
	for _, f := range []float64{1e30, math.MaxUint64 + 1, -1} {
		if _, err := Set(d, P("modules", 0, "lessons", 0, "views"), f); err == nil {
			t.Errorf("Set(views, %v): expected error", f)
		}
	}
	out, err = Set(d, P("modules", 0, "lessons", 0, "views"), float64(7))
	if err != nil || out.Modules[0].Lessons[0].Views != 7 {
		t.Fatalf("Set(views, 7): %v %d", err, out.Modules[0].Lessons[0].Views)
	}
}

func TestSetRedecodesComposite(t *testing.T) {
	d := sample()
	var decoded any
	if err := json.Unmarshal([]byte(`{"title":"New","lessons":[{"title":"Z","duration":10}]}`), &decoded); err != nil {
		t.Fatal(err)
	}
	out, err := Set(d, P("modules", 1), decoded)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := module{Title: "New", Lessons: []lesson{{Title: "Z", Duration: 10}}}
	if !reflect.DeepEqual(out.Modules[1], want) {
		t.Fatalf("got %+v, want %+v", out.Modules[1], want)
	}
}

func TestSetDoesNotAliasValue(t *testing.T) {
	d := sample()
	tags := []string{"a", "b"}
	out, err := Set(d, P("modules", 0, "lessons", 0, "tags"), tags)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	tags[0] = "mutated"
	if out.Modules[0].Lessons[0].Tags[0] != "a" {
		t.Fatalf("stored value aliases caller slice: %v", out.Modules[0].Lessons[0].Tags)
	}
}

func TestSetErrors(t *testing.T) {
	d := sample()
	if _, err := Set(d, Path{}, "x"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("empty path: expected ErrInvalidPath, got %v", err)
	}
	if _, err := Set(d, P("modules", 9, "title"), "x"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("out of range: expected ErrInvalidPath, got %v", err)
	}
	if _, err := Set(d, P("meta", "missing"), "x"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("missing key: expected ErrInvalidPath, got %v", err)
	}
}

func TestSetGenericMap(t *testing.T) {
	var root any
	if err := json.Unmarshal([]byte(`{"a":{"b":[1,2,3]}}`), &root); err != nil {
		t.Fatal(err)
	}
	out, err := Set(root, P("a", "b", 1), "two")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := Get(out, P("a", "b", 1))
	if err != nil || got != "two" {
		t.Fatalf("Get after Set = %v, %v", got, err)
	}
	orig, _ := Get(root, P("a", "b", 1))
	if orig != float64(2) {
		t.Fatalf("original modified: %v", orig)
	}
}

func TestReorder(t *testing.T) {
	d := sample()
	p := P("modules", 0, "lessons")

	out, changed, err := Reorder(d, p, 0, 2)
	if err != nil || !changed {
		t.Fatalf("Reorder: changed=%v err=%v", changed, err)
	}
	got := titles(out.Modules[0].Lessons)
	if !reflect.DeepEqual(got, []string{"B", "C", "A"}) {
		t.Fatalf("expected [B C A], got %v", got)
	}
	if !reflect.DeepEqual(titles(d.Modules[0].Lessons), []string{"A", "B", "C"}) {
		t.Fatal("original modified")
	}

	out, _, _ = Reorder(d, p, 2, 0)
	if got := titles(out.Modules[0].Lessons); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Fatalf("expected [C A B], got %v", got)
	}
}

func TestReorderNoop(t *testing.T) {
	d := sample()
	p := P("modules", 0, "lessons")
	for _, idx := range [][2]int{{1, 1}, {-1, 0}, {0, 3}, {5, 0}} {
		out, changed, err := Reorder(d, p, idx[0], idx[1])
		if err != nil {
			t.Fatalf("Reorder(%d,%d): %v", idx[0], idx[1], err)
		}
		if changed {
			t.Errorf("Reorder(%d,%d): expected no change", idx[0], idx[1])
		}
		if !reflect.DeepEqual(out, d) {
			t.Errorf("Reorder(%d,%d): document changed", idx[0], idx[1])
		}
	}
}

func TestReorderRootSlice(t *testing.T) {
	root := []string{"A", "B", "C"}
	out, changed, err := Reorder(root, Path{}, 1, 0)
	if err != nil || !changed {
		t.Fatalf("Reorder: changed=%v err=%v", changed, err)
	}
	if !reflect.DeepEqual(out, []string{"B", "A", "C"}) {
		t.Fatalf("got %v", out)
	}
}

func TestReorderNotAList(t *testing.T) {
	_, _, err := Reorder(sample(), P("title"), 0, 1)
	if !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
}

func titles(ls []lesson) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Title
	}
	return out
}
