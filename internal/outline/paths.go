package outline

import "github.com/dgallion1/coursedraft/internal/docpath"

// Paths below are relative to a Course.

// ContentKind names the generated body fields of a lesson.
type ContentKind string

const (
	LectureNotes     ContentKind = "lectureNotes"
	KeyTalkingPoints ContentKind = "keyTalkingPoints"
	QuizQuestions    ContentKind = "quizQuestions"
)

// Valid reports whether k names a lesson content field.
func (k ContentKind) Valid() bool {
	switch k {
	case LectureNotes, KeyTalkingPoints, QuizQuestions:
		return true
	}
	return false
}

// ContactList names the two contact lists of a course.
type ContactList string

const (
	Instructors ContactList = "potentialInstructors"
	Leads       ContactList = "potentialLeads"
)

func Title() docpath.Path       { return docpath.P("title") }
func Description() docpath.Path { return docpath.P("description") }

func Outcome(i int) docpath.Path { return docpath.P("learningOutcomes", i) }

func DayTitle(d int) docpath.Path { return docpath.P("curriculum", d, "title") }

func Modules(d int) docpath.Path { return docpath.P("curriculum", d, "modules") }

func ModuleTitle(d, m int) docpath.Path {
	return docpath.P("curriculum", d, "modules", m, "title")
}

func Lessons(d, m int) docpath.Path {
	return docpath.P("curriculum", d, "modules", m, "lessons")
}

func LessonField(d, m, l int, field string) docpath.Path {
	return docpath.P("curriculum", d, "modules", m, "lessons", l, field)
}

// LessonContent addresses the generated body of kind for the lesson at ref.
func LessonContent(ref LessonRef, kind ContentKind) docpath.Path {
	return LessonField(ref.Day, ref.Module, ref.Lesson, string(kind))
}

func ContactField(list ContactList, i int, field string) docpath.Path {
	return docpath.P(string(list), i, field)
}

func FAQField(i int, field string) docpath.Path {
	return docpath.P("faq", i, field)
}

// LessonRefFromPath extracts the lesson location from a path of the form
// curriculum.D.modules.M.lessons.L[...].
func LessonRefFromPath(p docpath.Path) (LessonRef, bool) {
	if len(p) < 6 {
		return LessonRef{}, false
	}
	if p[0].Name() != "curriculum" || !p[1].IsIndex() ||
		p[2].Name() != "modules" || !p[3].IsIndex() ||
		p[4].Name() != "lessons" || !p[5].IsIndex() {
		return LessonRef{}, false
	}
	return LessonRef{Day: p[1].Idx(), Module: p[3].Idx(), Lesson: p[5].Idx()}, true
}
