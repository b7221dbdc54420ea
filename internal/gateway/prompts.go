package gateway

import (
	"fmt"
	"strings"

	"github.com/dgallion1/coursedraft/internal/outline"
)

const courseStructure = `{
  "title": "string",
  "description": "string (detailed, 2-3 paragraphs)",
  "learningOutcomes": ["string"],
  "keyAssignment": "string (a project or exam description)",
  "curriculum": [{
    "day": "number",
    "title": "string",
    "modules": [{
      "title": "string",
      "lessons": [{"title": "string", "description": "string (brief, 1-2 sentences)"}]
    }]
  }],
  "marketAnalysis": {
    "suggestedPricing": "string (e.g., '$1,500 - $2,000 per participant')",
    "competitorCourses": [{"name": "string", "provider": "string", "url": "string (full URL)"}]
  },
  "potentialInstructors": [{
    "name": "string",
    "title": "string (e.g., 'Senior Cloud Engineer at Google')",
    "location": "string",
    "linkedin": "string (full URL)",
    "relevancyScore": "number (1-100, based on expertise and location)",
    "expertiseSummary": "string (1-2 sentences on their expertise related to the topic)"
  }],
  "potentialLeads": [{
    "name": "string (individual or group name)",
    "title": "string (e.g., 'Meetup Organizer')",
    "location": "string",
    "linkedin": "string (full URL to profile or group)",
    "relevancyScore": "number (1-100)",
    "expertiseSummary": "string (1-2 sentences on why they are a good lead)"
  }],
  "faq": [{"question": "string", "answer": "string"}]
}`

func outlinePrompt(p Params) string {
	var sb strings.Builder
	sb.WriteString("You are an expert curriculum designer and talent scout. Generate a comprehensive fact sheet for a corporate training course based on the following specifications.\n\n")

	sb.WriteString("Course specifications:\n")
	fmt.Fprintf(&sb, "- Topic: %q\n", p.Topic)
	fmt.Fprintf(&sb, "- Difficulty level: %s\n", p.Difficulty)
	fmt.Fprintf(&sb, "- Duration: %s\n", p.Duration)
	fmt.Fprintf(&sb, "- Location for instructors and leads: %s, %s\n", p.City, p.Country)
	if p.Summary != "" {
		fmt.Fprintf(&sb, "- Course summary: %s\n", p.Summary)
	}

	var prefs []string
	if p.Skills != "" {
		prefs = append(prefs, "- Required skills: "+p.Skills)
	}
	if p.Experience != "" && p.Experience != "Any" {
		prefs = append(prefs, "- Minimum experience: "+p.Experience)
	}
	if p.Style != "" && p.Style != "Any" {
		prefs = append(prefs, "- Preferred teaching style: "+p.Style)
	}
	if len(prefs) > 0 {
		sb.WriteString("\nInstructor preferences:\n")
		sb.WriteString(strings.Join(prefs, "\n"))
		sb.WriteString("\n")
	}

	sb.WriteString("\nYour output MUST be a single JSON object enclosed in a markdown code block (```json ... ```). It must follow this structure:\n")
	sb.WriteString(courseStructure)
	sb.WriteString("\n\nGuidelines:\n")
	fmt.Fprintf(&sb, "- title: a compelling, professional course title for %q.\n", p.Topic)
	sb.WriteString("- description: a detailed, engaging description that uses the summary if one was given.\n")
	fmt.Fprintf(&sb, "- learningOutcomes: at least 5 clear, measurable outcomes for the %s level.\n", p.Difficulty)
	fmt.Fprintf(&sb, "- curriculum: a realistic plan for a %s course; each day has 2-3 modules and each module 2-4 lessons.\n", p.Duration)
	sb.WriteString("- marketAnalysis: a suggestedPricing range for the topic, duration and location, and at least 3 competitorCourses with name, provider and URL.\n")
	fmt.Fprintf(&sb, "- potentialInstructors: at least 10 real experts based in or near %s, %s who meet the preferences, each with relevancyScore and expertiseSummary.\n", p.City, p.Country)
	fmt.Fprintf(&sb, "- potentialLeads: at least 10 individuals or small groups in or near %s, %s likely to be interested (community leaders, organizers, practitioners, not large companies), each with relevancyScore and expertiseSummary.\n", p.City, p.Country)
	sb.WriteString("- faq: 3-5 relevant questions with clear answers.\n")
	return sb.String()
}

func refinePrompt(text string, mode StyleMode) string {
	var instruction string
	switch mode {
	case StyleConcise:
		instruction = "Make the following text more concise."
	case StyleProfessional:
		instruction = "Rewrite the following text in a more professional tone."
	case StyleSimple:
		instruction = "Explain the following text in simpler terms."
	}
	return fmt.Sprintf("%s Reply with the refined text only.\n\nTEXT: %q\n\nREFINED TEXT:", instruction, text)
}

func lessonContentPrompt(courseTitle, lessonTitle, lessonDesc string, kind outline.ContentKind) string {
	var instruction, format string
	switch kind {
	case outline.LectureNotes:
		instruction = "Generate detailed lecture notes for the following lesson. They should be structured, clear and complete enough for an instructor to teach from."
		format = "Use clear headings (e.g. *HEADING*), bullet points (-) and numbered lists. Do not use complex markdown syntax."
	case outline.KeyTalkingPoints:
		instruction = "Generate 3-5 key talking points for the following lesson: concise, impactful statements an instructor can use to highlight the most important concepts."
		format = "Format the output as a simple numbered or bulleted list."
	case outline.QuizQuestions:
		instruction = "Generate 3 multiple-choice quiz questions with 4 options each for the following lesson, testing understanding of the key concepts."
		format = `Clearly label the question and the options (A, B, C, D), and state the correct answer (e.g. "Correct Answer: C").`
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Course context: %q\n", courseTitle)
	fmt.Fprintf(&sb, "Lesson title: %q\n", lessonTitle)
	fmt.Fprintf(&sb, "Lesson description: %q\n\n", lessonDesc)
	fmt.Fprintf(&sb, "Task:\n%s\n\n", instruction)
	fmt.Fprintf(&sb, "Formatting guidelines:\n%s\n\n", format)
	sb.WriteString("Output:\n")
	return sb.String()
}

func outreachPrompt(courseTitle string, c outline.Contact, kind RecipientKind) string {
	var info, instruction string
	switch {
	case kind == RecipientInstructor:
		info = fmt.Sprintf("Instructor name: %s\nTitle: %s\nExpertise: %s", c.Name, c.Title, c.ExpertiseSummary)
		instruction = "Write a professional, personalized and concise outreach message to a potential instructor to gauge their interest in teaching a corporate training course. Be respectful of their expertise and time, mention the course topic and why their profile is a great fit, and end with a clear call to action such as scheduling a brief chat."
	case !c.IsCompany():
		info = fmt.Sprintf("Lead name: %s\nTitle: %s\nReason for outreach: %s", c.Name, c.Title, c.ExpertiseSummary)
		instruction = `Write a professional, personalized and concise outreach message to a potential individual lead introducing a corporate training course that could benefit them. Keep it friendly yet professional and value-oriented, connect the course to their interests (based on the "Reason for outreach") and suggest a brief call.`
	default:
		info = fmt.Sprintf("Company name: %s\nReason for outreach: %s", c.Name, c.Why())
		instruction = `Write a professional, personalized and concise outreach message to a potential client company introducing a new corporate training course. Keep it professional and value-oriented, connect the course to the company's needs (based on the "Reason for outreach") and suggest a brief call.`
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Course title: %q\n\n", courseTitle)
	fmt.Fprintf(&sb, "Recipient information:\n%s\n\n", info)
	fmt.Fprintf(&sb, "Task:\n%s\n\n", instruction)
	sb.WriteString("Generate the message text only. Do not include a subject line.\n")
	return sb.String()
}
