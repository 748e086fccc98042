package delegate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specflow-dev/specflow/internal/expertise"
	"github.com/specflow-dev/specflow/internal/task"
)

// priorityFiles are embedded first in the spec context, in this order.
var priorityFiles = []string{"spec.md", "tasks.md", "requirements.md"}

// InstructionInput carries everything one delegation instruction embeds.
type InstructionInput struct {
	// Agent is the target agent name.
	Agent string

	// Task is the task being delegated.
	Task *task.Task

	// SpecName is the spec the task belongs to.
	SpecName string

	// SpecPath is the spec folder path, referenced in the instruction so
	// the agent can find the source documents.
	SpecPath string

	// SpecFiles maps spec-folder-relative names to file contents.
	SpecFiles map[string]string

	// SpecVisuals lists visual reference files under planning/visuals.
	SpecVisuals []string

	// Expertise holds the domains detected as relevant to this task.
	Expertise []*expertise.Domain
}

// BuildInstruction renders the full delegation document handed to an
// agent: the task and its metadata, the complete spec context, expertise
// hints and the completion protocol. The instruction is self-contained
// so the agent needs no other briefing.
func BuildInstruction(in InstructionInput) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("# Delegation to %s subagent", in.Agent))
	parts = append(parts, fmt.Sprintf("\n## Task\n\n%s", in.Task.Description))
	parts = append(parts, fmt.Sprintf("\n**Task ID:** %s", in.Task.Key()))
	parts = append(parts, fmt.Sprintf("**Phase:** %s", taskPhase(in.Task)))

	if in.SpecPath != "" {
		parts = append(parts, fmt.Sprintf("\n## Spec Location\n\n`%s`", in.SpecPath))
	}

	if len(in.Task.FilePatterns) > 0 {
		var files []string
		for _, f := range in.Task.FilePatterns {
			files = append(files, fmt.Sprintf("- `%s`", f))
		}
		parts = append(parts, fmt.Sprintf("\n## Files to Focus On\n\n%s", strings.Join(files, "\n")))
	}

	if len(in.SpecFiles) > 0 {
		parts = append(parts, fmt.Sprintf("\n## Spec Context\n\n%s",
			formatSpecContext(in.SpecFiles, in.SpecVisuals, in.SpecPath)))

		if taskCtx := extractTaskContext(in.SpecFiles, in.Task.Description); taskCtx != "" {
			parts = append(parts, taskCtx)
		}
	}

	if hints := formatExpertise(in.Expertise); hints != "" {
		parts = append(parts, hints)
	}

	parts = append(parts, fmt.Sprintf(
		"\n## After Implementation\n\nUpdate `%s/tasks.md` to mark this task as complete: `- [x]`",
		in.SpecPath))

	return strings.Join(parts, "\n")
}

func taskPhase(t *task.Task) string {
	if t.Phase != "" {
		return t.Phase
	}
	return "implement"
}

// formatSpecContext embeds the spec folder's documents: priority files
// first, remaining root markdown sorted, planning documents grouped,
// YAML configs fenced, and a pointer to visual references.
func formatSpecContext(files map[string]string, visuals []string, specPath string) string {
	var sections []string
	used := make(map[string]bool)

	for _, name := range priorityFiles {
		if content, ok := files[name]; ok {
			sections = append(sections, fmt.Sprintf("### %s\n\n%s", name, content))
			used[name] = true
		}
	}

	var otherMD, planning, configs []string
	for name := range files {
		switch {
		case used[name]:
		case strings.HasPrefix(name, "planning/"):
			planning = append(planning, name)
		case strings.HasSuffix(name, ".md"):
			otherMD = append(otherMD, name)
		case strings.HasSuffix(name, ".yaml"), strings.HasSuffix(name, ".yml"):
			configs = append(configs, name)
		}
	}
	sort.Strings(otherMD)
	sort.Strings(planning)
	sort.Strings(configs)

	for _, name := range otherMD {
		sections = append(sections, fmt.Sprintf("### %s\n\n%s", name, files[name]))
	}

	if len(planning) > 0 {
		sections = append(sections, "### Planning Documents\n")
		for _, name := range planning {
			sections = append(sections, fmt.Sprintf("#### %s\n\n%s", name, files[name]))
		}
	}

	for _, name := range configs {
		sections = append(sections, fmt.Sprintf("### %s\n\n```yaml\n%s\n```", name, files[name]))
	}

	if len(visuals) > 0 {
		var list []string
		for _, v := range visuals {
			list = append(list, "- "+v)
		}
		sections = append(sections, fmt.Sprintf(
			"### Visual References\n\nThe following visual files are available in `%s/planning/visuals/`:\n%s",
			specPath, strings.Join(list, "\n")))
	}

	return strings.Join(sections, "\n\n---\n\n")
}

// extractTaskContext pulls the lines around the task's entry in tasks.md
// so the agent sees neighboring tasks and checkbox state.
func extractTaskContext(files map[string]string, description string) string {
	content := files["tasks.md"]
	if content == "" || description == "" {
		return ""
	}

	needle := strings.ToLower(description)
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		start := i - 5
		if start < 0 {
			start = 0
		}
		end := i + 10
		if end > len(lines) {
			end = len(lines)
		}
		return fmt.Sprintf("\n\n### Current Task Context (from tasks.md)\n\n```\n%s\n```",
			strings.Join(lines[start:end], "\n"))
	}
	return ""
}

// formatExpertise renders one hint line per relevant domain. Domains
// with nothing to say are skipped.
func formatExpertise(domains []*expertise.Domain) string {
	var notes []string
	for _, d := range domains {
		if d == nil {
			continue
		}
		if hint := hintFor(d); hint != "" {
			notes = append(notes, fmt.Sprintf("- **%s**: %s", d.Name, hint))
		}
	}
	if len(notes) == 0 {
		return ""
	}
	return "\n## Expertise Hints\n\n" + strings.Join(notes, "\n")
}

// hintFor summarizes a domain: its newest learnings when it has any,
// otherwise its recorded conventions, otherwise its frameworks.
func hintFor(d *expertise.Domain) string {
	if recent := d.RecentLearnings(3); len(recent) > 0 {
		var ss []string
		for _, l := range recent {
			ss = append(ss, l.Content)
		}
		return strings.Join(ss, "; ")
	}
	if len(d.Conventions) > 0 {
		keys := make([]string, 0, len(d.Conventions))
		for k := range d.Conventions {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var ss []string
		for _, k := range keys {
			ss = append(ss, d.Conventions[k])
		}
		return strings.Join(ss, "; ")
	}
	if len(d.Frameworks) > 0 {
		return "works with " + strings.Join(d.Frameworks, ", ")
	}
	return ""
}
