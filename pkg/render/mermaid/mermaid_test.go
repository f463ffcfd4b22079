package mermaid

import (
	"strings"
	"testing"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/transform"
)

func TestToMermaid(t *testing.T) {
	d := diagram.New("d", diagram.TypeWasmComponent)
	d.Add(&diagram.Node{ID: "wit-package-1", Type: diagram.NodeWitPackage, Label: "app"})
	d.Add(&diagram.Node{ID: "wit-interface-2", Type: diagram.NodeWitInterface, Label: `say "hi"`})
	d.Add(&diagram.Node{ID: "wit-function-3", Type: diagram.NodeWitFunction, Label: "run() -> u32",
		Properties: map[string]any{diagram.PropSynthetic: true}})
	d.Add(&diagram.Edge{ID: "wit-contains-4", Type: diagram.EdgeWitContains, SourceID: "wit-package-1", TargetID: "wit-interface-2", Label: "exports"})
	d.Add(&diagram.Edge{ID: "wit-contains-5", Type: diagram.EdgeWitContains, SourceID: "wit-interface-2", TargetID: "wit-function-3"})

	got := ToMermaid(d, transform.RenderingHints{Layout: transform.LayoutTree})

	for _, want := range []string{
		"flowchart TB",
		`n_wit_package_1[["app"]]`,
		`n_wit_interface_2("say #quot;hi#quot;")`,
		`n_wit_function_3(["run() -> u32"])`,
		`n_wit_package_1 ---|"exports"| n_wit_interface_2`,
		"n_wit_interface_2 --- n_wit_function_3",
		"class n_wit_function_3 synthetic",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ToMermaid() missing %q:\n%s", want, got)
		}
	}
}

func TestToMermaidDirectionAndArrows(t *testing.T) {
	d := diagram.New("d", diagram.TypeWasmComponent)
	d.Add(&diagram.Node{ID: "a", Type: diagram.NodeUMLInterface})
	d.Add(&diagram.Node{ID: "b", Type: diagram.NodeUMLComponent})
	d.Add(&diagram.Edge{ID: "e", Type: diagram.EdgeUMLDependency, SourceID: "a", TargetID: "b"})

	got := ToMermaid(d, transform.RenderingHints{Layout: transform.LayoutUML})
	if !strings.HasPrefix(got, "flowchart LR\n") {
		t.Errorf("direction: %q", got)
	}
	if !strings.Contains(got, "n_a -.-> n_b") {
		t.Errorf("dependency arrow missing:\n%s", got)
	}
	if strings.Contains(got, "classDef") {
		t.Error("no synthetic nodes, no class definition expected")
	}
}

func TestSafeIDCollisions(t *testing.T) {
	d := diagram.New("d", diagram.TypeWasmComponent)
	d.Add(&diagram.Node{ID: "a-b", Type: diagram.NodeWasmComponent})
	d.Add(&diagram.Node{ID: "a_b", Type: diagram.NodeWasmComponent})

	got := ToMermaid(d, transform.RenderingHints{})
	if !strings.Contains(got, "n_a_b[") || !strings.Contains(got, "n_a_b_2[") {
		t.Errorf("colliding ids not disambiguated:\n%s", got)
	}
}
