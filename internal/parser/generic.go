package parser

import (
	"regexp"
	"strings"
)

var (
	genericTaskRe  = regexp.MustCompile(`^- \[(x| )\] (.+)$`)
	genericProbeRe = regexp.MustCompile(`(?m)^- \[(x| )\] .+`)
	genericH2Re    = regexp.MustCompile(`(?m)^## .+`)
)

// genericProfile is the catch-all fallback: any document with second-level
// headings and checklist lines parses as phases of plain tasks.
type genericProfile struct{}

func (genericProfile) Name() string { return "generic-markdown" }

func (genericProfile) Detect(content string) bool {
	return genericH2Re.MatchString(content) && genericProbeRe.MatchString(content)
}

func (genericProfile) Parse(content string) Plan {
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

		// Checklist lines before the first heading are ignored here; unlike
		// speckit parsing there is no synthetic phase.
		if tm := genericTaskRe.FindStringSubmatch(line); tm != nil && current != nil {
			current.Tasks = append(current.Tasks, Task{
				Text: strings.TrimSpace(tm[2]),
				Done: tm[1] == "x",
			})
		}
	}

	if current != nil {
		current.Status = deriveStatus(current.Tasks)
		phases = append(phases, *current)
	}

	return Plan{Title: extractTitle(content), Format: "generic-markdown", Phases: phases}
}
