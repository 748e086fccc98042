package bootstrap

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectTechStackNodeProject(t *testing.T) {
	root := makeProject(t)
	a, err := Analyze(root, AnalyzeOptions{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	stack := DetectTechStack(root, a.ConfigFiles)

	cases := []struct {
		list []string
		want string
	}{
		{stack.Languages, "JavaScript,TypeScript"},
		{stack.Frameworks, "React,Next.js"},
		{stack.Databases, "PostgreSQL"},
		{stack.Tools, "Docker,Prisma"},
	}
	for _, tc := range cases {
		if got := strings.Join(tc.list, ","); got != tc.want {
			t.Errorf("stack list = %q, want %q", got, tc.want)
		}
	}
}

func TestDetectTechStackPythonProject(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, filepath.Join(root, "requirements.txt"),
		"Django==4.2\npsycopg2-binary>=2.9\nSQLAlchemy\n")

	stack := DetectTechStack(root, []string{"requirements.txt"})

	if got := strings.Join(stack.Languages, ","); got != "Python" {
		t.Errorf("Languages = %q, want Python", got)
	}
	if got := strings.Join(stack.Frameworks, ","); got != "Django" {
		t.Errorf("Frameworks = %q, want Django", got)
	}
	if got := strings.Join(stack.Tools, ","); got != "SQLAlchemy" {
		t.Errorf("Tools = %q, want SQLAlchemy", got)
	}
	if got := strings.Join(stack.Databases, ","); got != "PostgreSQL" {
		t.Errorf("Databases = %q, want PostgreSQL", got)
	}
}

func TestDetectTechStackGoProject(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, filepath.Join(root, "go.mod"), "module example.com/svc\n\ngo 1.25\n")

	stack := DetectTechStack(root, []string{"go.mod"})

	if got := strings.Join(stack.Languages, ","); got != "Go" {
		t.Errorf("Languages = %q, want Go", got)
	}
}

func TestDetectTechStackBrokenManifest(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, filepath.Join(root, "package.json"), "{not json")

	stack := DetectTechStack(root, []string{"package.json"})

	if got := strings.Join(stack.Languages, ","); got != "JavaScript" {
		t.Errorf("Languages = %q, want JavaScript despite the broken manifest", got)
	}
	if len(stack.Frameworks) != 0 {
		t.Errorf("Frameworks = %v, want none", stack.Frameworks)
	}
}

func TestDetectTechStackMissingFiles(t *testing.T) {
	stack := DetectTechStack(t.TempDir(), []string{"package.json", "go.mod"})

	// package.json could not be read, so only the presence-based
	// entries survive.
	if got := strings.Join(stack.Languages, ","); got != "JavaScript,Go" {
		t.Errorf("Languages = %q, want JavaScript,Go", got)
	}
}
