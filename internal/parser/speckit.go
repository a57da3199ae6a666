package parser

import (
	"regexp"
	"strings"
)

var (
	speckitTaskRe  = regexp.MustCompile(`^- \[([ xX])\] (T\d+.*)`)
	speckitProbeRe = regexp.MustCompile(`(?m)^- \[[ xX]\] T\d+`)
	headingH2Re    = regexp.MustCompile(`^## (.+)$`)
)

// speckitProfile handles spec-kit task documents, where every checklist item
// carries a T-prefixed task identifier (e.g. "- [x] T001 [P] Setup").
type speckitProfile struct{}

func (speckitProfile) Name() string { return "speckit-tasks" }

func (speckitProfile) Detect(content string) bool {
	return speckitProbeRe.MatchString(content)
}

func (speckitProfile) Parse(content string) Plan {
	phases := []Phase{}
	var current *Phase

	for _, line := range strings.Split(content, "\n") {
		if h2 := headingH2Re.FindStringSubmatch(line); h2 != nil {
			if current != nil {
				current.Status = deriveStatus(current.Tasks)
				phases = append(phases, *current)
			}
			current = &Phase{Name: strings.TrimSpace(h2[1]), Status: StatusNotStarted, Tasks: []Task{}}
			continue
		}

		if tm := speckitTaskRe.FindStringSubmatch(line); tm != nil {
			if current == nil {
				// Tasks before any phase heading collect into a synthetic phase.
				current = &Phase{Name: "Tasks", Status: StatusNotStarted, Tasks: []Task{}}
			}
			current.Tasks = append(current.Tasks, Task{
				Text: strings.TrimSpace(tm[2]),
				Done: strings.EqualFold(tm[1], "x"),
			})
		}
	}

	if current != nil {
		current.Status = deriveStatus(current.Tasks)
		phases = append(phases, *current)
	}

	return Plan{Title: extractTitle(content), Format: "speckit-tasks", Phases: phases}
}
