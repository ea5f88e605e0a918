package pom

import (
	"encoding/xml"
	"testing"
)

func TestNodeTree(t *testing.T) {
	cfg := NewNode("configuration")
	release := NewNode("release")
	release.SetValue("2.1")
	target := NewNode("target")
	target.SetValue("2.2")
	cfg.AddChild(release)
	cfg.AddChild(target)

	if got := cfg.Child("target"); got != target {
		t.Errorf("Child(target) = %v, want target node", got)
	}
	if got := cfg.Child("missing"); got != nil {
		t.Errorf("Child(missing) = %v, want nil", got)
	}
	if _, ok := cfg.Value(); ok {
		t.Error("configuration without SetValue has a value")
	}

	cfg.RemoveChild(0)
	if cfg.Child("release") != nil {
		t.Error("release still present after RemoveChild(0)")
	}
	if len(cfg.Children) != 1 {
		t.Errorf("len(Children) = %d, want 1", len(cfg.Children))
	}

	cfg.RemoveChild(5)
	cfg.RemoveChild(-1)
	if len(cfg.Children) != 1 {
		t.Errorf("out of range RemoveChild changed children: %d", len(cfg.Children))
	}
}

func TestNilNode(t *testing.T) {
	var n *Node
	if n.Child("x") != nil {
		t.Error("nil.Child should be nil")
	}
	if _, ok := n.Value(); ok {
		t.Error("nil.Value should be absent")
	}
}

func TestNodeUnmarshalXML(t *testing.T) {
	var n Node
	data := `<configuration mode="strict">
  <source>  </source>
  <annotationProcessorPaths>
    <path><groupId>org.projectlombok</groupId></path>
  </annotationProcessorPaths>
</configuration>`
	if err := xml.Unmarshal([]byte(data), &n); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if n.Name != "configuration" {
		t.Errorf("Name = %q", n.Name)
	}
	if n.Attrs["mode"] != "strict" {
		t.Errorf("Attrs = %v", n.Attrs)
	}

	// Whitespace-only leaf is present with an empty value.
	if v, ok := n.Child("source").Value(); !ok || v != "" {
		t.Errorf("source = %q, %v, want \"\", true", v, ok)
	}

	group := n.Child("annotationProcessorPaths").Child("path").Child("groupId")
	if v, _ := group.Value(); v != "org.projectlombok" {
		t.Errorf("nested groupId = %q", v)
	}
}

func TestToConfiguration(t *testing.T) {
	if toConfiguration(nil) != nil {
		t.Error("nil node should map to nil configuration")
	}

	empty := NewNode("configuration")
	empty.SetValue("")
	if got, ok := toConfiguration(empty).(*Node); !ok || got != empty {
		t.Errorf("empty element = %#v, want *Node", toConfiguration(empty))
	}

	text := NewNode("configuration")
	text.SetValue("${cfg}")
	if got := toConfiguration(text); got != Opaque("${cfg}") {
		t.Errorf("text element = %#v, want Opaque", got)
	}
}
