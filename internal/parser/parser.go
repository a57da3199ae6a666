// Package parser detects the authoring convention of a planning document and
// extracts a normalized phase/task tree from it.
//
// A Profile is a named (Detect, Parse) capability pair for one document
// convention. Profiles are consulted in priority order: ID-qualified formats
// first, the generic markdown fallback always last. A document can also force
// a profile by naming it in a front-matter "framework:" or "generator:" key.
package parser

import (
	"regexp"
	"strings"
)

// Phase status values derived from task completion.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Task is a single checklist entry within a phase.
type Task struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Phase is a named section of a plan with derived completion status.
type Phase struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Tasks  []Task `json:"tasks"`
}

// Plan is the normalized result of parsing one planning document.
type Plan struct {
	Title  string  `json:"title"`
	Format string  `json:"format"`
	Phases []Phase `json:"phases"`
}

// Profile is one planning-document convention.
type Profile interface {
	Name() string
	Detect(content string) bool
	Parse(content string) Plan
}

// fallbackName is the profile that must always stay last in the registry.
const fallbackName = "generic-markdown"

// Registry holds an ordered list of profiles, most specific first.
type Registry struct {
	profiles []Profile
}

// NewRegistry returns a registry with the built-in profiles in priority
// order: speckit-tasks, task-list, generic-markdown.
func NewRegistry() *Registry {
	return &Registry{
		profiles: []Profile{
			speckitProfile{},
			taskListProfile{},
			genericProfile{},
		},
	}
}

// Register inserts a profile immediately before the generic fallback so the
// fallback always remains last.
func (r *Registry) Register(p Profile) {
	for i, existing := range r.profiles {
		if existing.Name() == fallbackName {
			r.profiles = append(r.profiles[:i], append([]Profile{p}, r.profiles[i:]...)...)
			return
		}
	}
	r.profiles = append(r.profiles, p)
}

// ProfileNames returns the registered profile names in evaluation order.
func (r *Registry) ProfileNames() []string {
	names := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		names[i] = p.Name()
	}
	return names
}

var (
	frontmatterRe = regexp.MustCompile(`(?s)^---\n(.*?)\n---`)
	frameworkRe   = regexp.MustCompile(`(?m)^(?:framework|generator):\s*(.+)$`)
)

// declaredProfile extracts an explicit framework/generator declaration from a
// leading front-matter block, or "" if absent.
func declaredProfile(content string) string {
	fm := frontmatterRe.FindStringSubmatch(content)
	if fm == nil {
		return ""
	}
	decl := frameworkRe.FindStringSubmatch(fm[1])
	if decl == nil {
		return ""
	}
	return strings.TrimSpace(decl[1])
}

// DetectAndParse finds the first matching profile and returns its parse
// result. A front-matter framework declaration naming a registered profile
// bypasses detection. Returns ok=false when no profile matches; callers treat
// this as "unsupported document", not an error.
func (r *Registry) DetectAndParse(content string) (Plan, bool) {
	if declared := declaredProfile(content); declared != "" {
		for _, p := range r.profiles {
			if p.Name() == declared {
				return p.Parse(content), true
			}
		}
	}

	for _, p := range r.profiles {
		if p.Detect(content) {
			return p.Parse(content), true
		}
	}
	return Plan{}, false
}

// deriveStatus computes a phase status from its checklist tasks: all done is
// completed, some done is in_progress, none (or no tasks) is not_started.
func deriveStatus(tasks []Task) string {
	if len(tasks) == 0 {
		return StatusNotStarted
	}
	done := 0
	for _, t := range tasks {
		if t.Done {
			done++
		}
	}
	switch {
	case done == len(tasks):
		return StatusCompleted
	case done > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

var titleRe = regexp.MustCompile(`(?m)^# (.+)$`)

// extractTitle returns the first top-level heading, or "Untitled Plan".
func extractTitle(content string) string {
	m := titleRe.FindStringSubmatch(content)
	if m == nil {
		return "Untitled Plan"
	}
	return strings.TrimSpace(m[1])
}
