package parser

import (
	"regexp"
	"strings"
)

var (
	taskHeadingRe  = regexp.MustCompile(`^### (Task \d+:.+)$`)
	taskProbeRe    = regexp.MustCompile(`(?m)^### Task \d+:`)
	checklistRe    = regexp.MustCompile(`^- \[(x| )\]`)
	checklistDoneRe = regexp.MustCompile(`^- \[x\]`)
)

// taskListProfile handles implementation plans structured as a run of
// "### Task N: ..." headings, each followed by prose and optional checklists.
type taskListProfile struct{}

func (taskListProfile) Name() string { return "task-list" }

func (taskListProfile) Detect(content string) bool {
	return taskProbeRe.MatchString(content)
}

func (taskListProfile) Parse(content string) Plan {
	phases := []Phase{}
	var current *Phase
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Status = statusFromBody(body)
		phases = append(phases, *current)
	}

	for _, line := range strings.Split(content, "\n") {
		if tm := taskHeadingRe.FindStringSubmatch(line); tm != nil {
			flush()
			current = &Phase{Name: strings.TrimSpace(tm[1]), Status: StatusNotStarted, Tasks: []Task{}}
			body = nil
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	return Plan{Title: extractTitle(content), Format: "task-list", Phases: phases}
}

// statusFromBody derives status from checklist lines in a task body. Prose
// steps cannot signal progress, so a body with no checklists is not_started.
func statusFromBody(body []string) string {
	total, done := 0, 0
	for _, line := range body {
		if checklistRe.MatchString(line) {
			total++
			if checklistDoneRe.MatchString(line) {
				done++
			}
		}
	}
	if total == 0 {
		return StatusNotStarted
	}
	switch {
	case done == total:
		return StatusCompleted
	case done > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}
