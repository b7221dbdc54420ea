package outline

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dgallion1/coursedraft/internal/docpath"
)

func testCourse() Course {
	return Course{
		Title: "Go for Teams",
		Curriculum: []CurriculumDay{
			{Day: 1, Title: "Basics", Modules: []Module{
				{Title: "Syntax", Lessons: []Lesson{{Title: "Types"}, {Title: "Funcs"}}},
			}},
			{Day: 2, Title: "Concurrency", Modules: []Module{
				{Title: "Channels", Lessons: []Lesson{{Title: "Select"}}},
				{Title: "Sync", Lessons: []Lesson{{Title: "Mutex"}}},
			}},
		},
	}
}

func TestNewProjectID(t *testing.T) {
	p := NewProject("go", testCourse())
	if !strings.HasPrefix(p.ID, "proj_") {
		t.Fatalf("expected proj_ prefix, got %q", p.ID)
	}
	if p.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
	if NewProject("go", testCourse()).ID == p.ID {
		t.Fatal("expected unique ids")
	}
}

func TestEachLessonOrder(t *testing.T) {
	c := testCourse()
	var got []string
	c.EachLesson(func(ref LessonRef, l Lesson) {
		got = append(got, l.Title)
	})
	want := []string{"Types", "Funcs", "Select", "Mutex"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
	if c.LessonCount() != 4 {
		t.Fatalf("expected 4 lessons, got %d", c.LessonCount())
	}
}

func TestSelectorsResolve(t *testing.T) {
	c := testCourse()
	cases := []struct {
		path docpath.Path
		want string
	}{
		{Title(), "Go for Teams"},
		{DayTitle(1), "Concurrency"},
		{ModuleTitle(1, 1), "Sync"},
		{LessonField(0, 0, 1, "title"), "Funcs"},
	}
	for _, tc := range cases {
		got, err := docpath.Get(c, tc.path)
		if err != nil {
			t.Fatalf("Get(%s): %v", tc.path, err)
		}
		if got != tc.want {
			t.Errorf("Get(%s) = %v, want %q", tc.path, got, tc.want)
		}
	}
}

func TestLessonRefFromPath(t *testing.T) {
	ref := LessonRef{Day: 1, Module: 0, Lesson: 0}
	got, ok := LessonRefFromPath(LessonContent(ref, QuizQuestions))
	if !ok || got != ref {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
	if _, ok := LessonRefFromPath(Title()); ok {
		t.Fatal("expected title path to have no lesson ref")
	}
}

func TestContactCompanyAndLegacyReason(t *testing.T) {
	var c Contact
	if err := json.Unmarshal([]byte(`{"name":"Acme","linkedin":"x","reason":"old"}`), &c); err != nil {
		t.Fatal(err)
	}
	if !c.IsCompany() {
		t.Error("expected company lead")
	}
	if c.Why() != "old" {
		t.Errorf("expected legacy reason, got %q", c.Why())
	}
	c.RelevancyReason = "new"
	if c.Why() != "new" {
		t.Errorf("expected relevancyReason to win, got %q", c.Why())
	}

	person := Contact{Name: "Ada", ExpertiseSummary: "compilers"}
	if person.IsCompany() {
		t.Error("expected person")
	}
}

func TestEqual(t *testing.T) {
	a, b := testCourse(), testCourse()
	if !Equal(&a, &b) {
		t.Fatal("expected equal")
	}
	b.Curriculum[0].Modules[0].Lessons[0].Title = "Changed"
	if Equal(&a, &b) {
		t.Fatal("expected not equal")
	}
	if Equal(&a, nil) || !Equal(nil, nil) {
		t.Fatal("unexpected nil handling")
	}
}
