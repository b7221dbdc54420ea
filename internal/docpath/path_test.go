package docpath

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	p, err := Parse("curriculum.0.modules.12.title")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := P("curriculum", 0, "modules", 12, "title")
	if !p.Equal(want) {
		t.Fatalf("got %v, want %v", p, want)
	}
	if p.String() != "curriculum.0.modules.12.title" {
		t.Errorf("unexpected String(): %q", p.String())
	}

	for _, bad := range []string{"a..b", ".a", "a.-1"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q): expected error", bad)
		}
	}
}

func TestPathJSON(t *testing.T) {
	p := P("faq", 2, "answer")
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["faq",2,"answer"]` {
		t.Fatalf("unexpected JSON: %s", data)
	}

	var back Path
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal array: %v", err)
	}
	if !back.Equal(p) {
		t.Fatalf("got %v, want %v", back, p)
	}

	var dotted Path
	if err := json.Unmarshal([]byte(`"faq.2.answer"`), &dotted); err != nil {
		t.Fatalf("Unmarshal string: %v", err)
	}
	if !dotted.Equal(p) {
		t.Fatalf("got %v, want %v", dotted, p)
	}

	var bad Path
	if err := json.Unmarshal([]byte(`["a",1.5]`), &bad); err == nil {
		t.Fatal("expected error for fractional index")
	}
	if err := json.Unmarshal([]byte(`["a",true]`), &bad); err == nil {
		t.Fatal("expected error for bool key")
	}
}

func TestAppendDoesNotModify(t *testing.T) {
	base := make(Path, 1, 4)
	base[0] = Field("a")
	x := base.Append(Index(1))
	y := base.Append(Index(2))
	if x[1].Idx() != 1 || y[1].Idx() != 2 {
		t.Fatalf("appends share storage: %v %v", x, y)
	}
	if len(base) != 1 {
		t.Fatalf("base modified: %v", base)
	}
}
