// Package outline defines the course-outline document and its project envelope.
//
// Values of these types are treated as immutable snapshots once they enter
// editing history: edits go through docpath, which copies the containers it
// writes through.
package outline

import (
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Project is one generated outline plus the topic it was generated for.
type Project struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Course    Course    `json:"course"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewProject wraps a freshly generated course.
func NewProject(topic string, c Course) *Project {
	return &Project{
		ID:        "proj_" + uuid.NewString(),
		Topic:     topic,
		Course:    c,
		CreatedAt: time.Now().UTC(),
	}
}

type Course struct {
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	LearningOutcomes     []string        `json:"learningOutcomes"`
	KeyAssignment        string          `json:"keyAssignment"`
	Curriculum           []CurriculumDay `json:"curriculum"`
	MarketAnalysis       MarketAnalysis  `json:"marketAnalysis"`
	PotentialInstructors []Contact       `json:"potentialInstructors"`
	PotentialLeads       []Contact       `json:"potentialLeads"`
	FAQ                  []FAQ           `json:"faq"`
}

type CurriculumDay struct {
	Day     int      `json:"day"`
	Title   string   `json:"title"`
	Modules []Module `json:"modules"`
}

type Module struct {
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

type Lesson struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	LectureNotes     string `json:"lectureNotes,omitempty"`
	KeyTalkingPoints string `json:"keyTalkingPoints,omitempty"`
	QuizQuestions    string `json:"quizQuestions,omitempty"`
}

type MarketAnalysis struct {
	SuggestedPricing  string             `json:"suggestedPricing"`
	CompetitorCourses []CompetitorCourse `json:"competitorCourses"`
}

type CompetitorCourse struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// Contact is a potential instructor or lead. Leads are either people or
// companies; a company carries no expertise summary.
type Contact struct {
	Name             string  `json:"name"`
	LinkedIn         string  `json:"linkedin"`
	Title            string  `json:"title,omitempty"`
	Location         string  `json:"location,omitempty"`
	RelevancyScore   float64 `json:"relevancyScore,omitempty"`
	ExpertiseSummary string  `json:"expertiseSummary,omitempty"`
	RelevancyReason  string  `json:"relevancyReason,omitempty"`
	// Reason is the older spelling of RelevancyReason found in stored projects.
	Reason string `json:"reason,omitempty"`
}

// IsCompany reports whether the contact describes an organisation.
func (c Contact) IsCompany() bool {
	return strings.TrimSpace(c.ExpertiseSummary) == ""
}

// Why returns the relevancy reason, falling back to the legacy field.
func (c Contact) Why() string {
	if c.RelevancyReason != "" {
		return c.RelevancyReason
	}
	return c.Reason
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Equal reports structural equality of two courses.
func Equal(a, b *Course) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// LessonRef locates a lesson inside the curriculum.
type LessonRef struct {
	Day    int
	Module int
	Lesson int
}

// EachLesson calls fn for every lesson in curriculum order.
func (c *Course) EachLesson(fn func(ref LessonRef, l Lesson)) {
	for d, day := range c.Curriculum {
		for m, mod := range day.Modules {
			for l, lesson := range mod.Lessons {
				fn(LessonRef{Day: d, Module: m, Lesson: l}, lesson)
			}
		}
	}
}

// LessonCount returns the number of lessons across all days.
func (c *Course) LessonCount() int {
	n := 0
	c.EachLesson(func(LessonRef, Lesson) { n++ })
	return n
}

// LessonAt returns the lesson at ref.
func (c *Course) LessonAt(ref LessonRef) (Lesson, bool) {
	if ref.Day < 0 || ref.Day >= len(c.Curriculum) {
		return Lesson{}, false
	}
	day := c.Curriculum[ref.Day]
	if ref.Module < 0 || ref.Module >= len(day.Modules) {
		return Lesson{}, false
	}
	mod := day.Modules[ref.Module]
	if ref.Lesson < 0 || ref.Lesson >= len(mod.Lessons) {
		return Lesson{}, false
	}
	return mod.Lessons[ref.Lesson], true
}
