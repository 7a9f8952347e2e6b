package ai_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/ai"
)

func minimalDomain() *ai.Domain {
	return &ai.Domain{
		ID:    "test",
		Tasks: []*ai.Task{{ID: ai.RootTask}},
		Methods: []*ai.Method{{
			TaskID:   ai.RootTask,
			ID:       "m1",
			Subtasks: []string{"op1"},
		}},
		Operators: []*ai.Operator{{ID: "op1", Action: ai.OpMove, Target: ai.TargetFirst}},
	}
}

func TestDomain_Validate_RejectsEmpty(t *testing.T) {
	d := &ai.Domain{}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for empty Domain")
	}
}

func TestDomain_Validate_AcceptsMinimal(t *testing.T) {
	if err := minimalDomain().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDomain_Validate_Rejects(t *testing.T) {
	cases := map[string]func(d *ai.Domain){
		"missing root":       func(d *ai.Domain) { d.Tasks[0].ID = "other"; d.Methods[0].TaskID = "other" },
		"unknown action":     func(d *ai.Domain) { d.Operators[0].Action = "pass" },
		"dangling subtask":   func(d *ai.Domain) { d.Methods[0].Subtasks = []string{"nowhere"} },
		"unknown task":       func(d *ai.Domain) { d.Methods[0].TaskID = "nowhere" },
		"duplicate operator": func(d *ai.Domain) { d.Operators = append(d.Operators, d.Operators[0]) },
		"empty subtasks":     func(d *ai.Domain) { d.Methods[0].Subtasks = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := minimalDomain()
			mutate(d)
			if err := d.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDomain_OperatorByID_NotFound(t *testing.T) {
	d := &ai.Domain{}
	if _, ok := d.OperatorByID("missing"); ok {
		t.Fatal("expected not found")
	}
}

func TestDomain_MethodsForTask_ReturnsOrdered(t *testing.T) {
	d := &ai.Domain{
		Methods: []*ai.Method{
			{TaskID: "fight", ID: "m1", Subtasks: []string{"op1"}},
			{TaskID: "fight", ID: "m2", Subtasks: []string{"op2"}},
			{TaskID: "other", ID: "m3", Subtasks: []string{"op3"}},
		},
	}
	methods := d.MethodsForTask("fight")
	if len(methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(methods))
	}
	if methods[0].ID != "m1" || methods[1].ID != "m2" {
		t.Fatalf("expected methods in declaration order [m1, m2], got [%s, %s]", methods[0].ID, methods[1].ID)
	}
}

func TestLoadDomains_LoadsYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := `
domain:
  id: test_domain
  description: Test
  tasks:
    - id: behave
      description: root
  methods:
    - task: behave
      id: default
      subtasks: [hit]
  operators:
    - id: hit
      action: move
      target: strongest
`
	if err := os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}
	domains, err := ai.LoadDomains(dir)
	if err != nil {
		t.Fatalf("LoadDomains: %v", err)
	}
	if len(domains) != 1 || domains[0].ID != "test_domain" {
		t.Fatalf("unexpected domains: %v", domains)
	}
}

func TestLoadDomains_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	yaml := `
domain:
  id: typo
  taks: []
`
	if err := os.WriteFile(filepath.Join(dir, "typo.yaml"), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ai.LoadDomains(dir); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadDomains_BundledContent(t *testing.T) {
	domains, err := ai.LoadDomains("../../../content/ai")
	if err != nil {
		t.Fatalf("LoadDomains: %v", err)
	}
	found := false
	for _, d := range domains {
		if d.ID == "aggressive" {
			found = d.HasTask(ai.ReplaceTask)
		}
	}
	if !found {
		t.Fatal("expected aggressive domain with a replace task")
	}
}

func TestProperty_Domain_OperatorByID_ConsistentLookup(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "n")
		ops := make([]*ai.Operator, n)
		ids := make([]string, n)
		for i := range ops {
			id := fmt.Sprintf("op%d", i)
			ids[i] = id
			ops[i] = &ai.Operator{ID: id, Action: ai.OpStruggle}
		}
		d := &ai.Domain{Operators: ops}

		for _, id := range ids {
			op, ok := d.OperatorByID(id)
			if !ok {
				rt.Fatalf("OperatorByID(%q) returned not found, expected found", id)
			}
			if op.ID != id {
				rt.Fatalf("OperatorByID(%q) returned op with ID %q", id, op.ID)
			}
		}

		unknown := rapid.StringMatching(`[a-z_]{1,10}`).Draw(rt, "unknown")
		if _, ok := d.OperatorByID(unknown); ok {
			rt.Fatalf("OperatorByID(%q) returned found, expected not found", unknown)
		}
	})
}
