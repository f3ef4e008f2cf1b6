package figma

import (
	"reflect"
	"testing"
)

func boolp(v bool) *bool { return &v }

func TestCollectTextNodes(t *testing.T) {
	doc := Node{
		Type: NodeDocument,
		Name: "Document",
		Children: []Node{
			{
				Type: NodeCanvas, Name: "Page 1",
				Children: []Node{
					{
						Type: "FRAME", Name: "Checkout",
						Children: []Node{
							{
								Type: "FRAME", Name: "Footer",
								Children: []Node{
									{ID: "1:1", Type: NodeText, Name: "Save", Characters: "Save changes"},
									{ID: "1:2", Type: NodeText, Name: "Blank", Characters: "   "},
									{ID: "1:3", Type: NodeText, Name: "Hidden", Characters: "Secret", Visible: boolp(false)},
								},
							},
							{
								Type: "FRAME", Name: "Hidden frame", Visible: boolp(false),
								Children: []Node{
									{ID: "2:1", Type: NodeText, Name: "Inside", Characters: "Never seen"},
								},
							},
						},
					},
					{ID: "3:1", Type: NodeText, Name: "Title", Characters: "Welcome"},
				},
			},
		},
	}

	got := CollectTextNodes(doc)

	want := []TextNode{
		{Text: "Save changes", Path: []string{"Page 1", "Checkout", "Footer"}, NodeID: "1:1"},
		{Text: "Welcome", Path: []string{"Page 1"}, NodeID: "3:1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectTextNodes = %+v, want %+v", got, want)
	}
}

func TestCollectTextNodesDocumentNameExcluded(t *testing.T) {
	doc := Node{
		Type: NodeDocument,
		Name: "My Design File",
		Children: []Node{
			{ID: "1:1", Type: NodeText, Characters: "Top level"},
		},
	}

	got := CollectTextNodes(doc)
	if len(got) != 1 {
		t.Fatalf("got %d nodes, want 1", len(got))
	}
	if len(got[0].Path) != 0 {
		t.Errorf("document name leaked into path: %v", got[0].Path)
	}
}

func TestCollectTextNodesSiblingPathsIndependent(t *testing.T) {
	// Two sibling frames must not share path backing storage.
	doc := Node{
		Type: NodeDocument,
		Children: []Node{
			{
				Type: NodeCanvas, Name: "Page",
				Children: []Node{
					{Type: "FRAME", Name: "A", Children: []Node{
						{ID: "1:1", Type: NodeText, Characters: "first"},
					}},
					{Type: "FRAME", Name: "B", Children: []Node{
						{ID: "1:2", Type: NodeText, Characters: "second"},
					}},
				},
			},
		},
	}

	got := CollectTextNodes(doc)
	if len(got) != 2 {
		t.Fatalf("got %d nodes, want 2", len(got))
	}
	if !reflect.DeepEqual(got[0].Path, []string{"Page", "A"}) {
		t.Errorf("first path = %v", got[0].Path)
	}
	if !reflect.DeepEqual(got[1].Path, []string{"Page", "B"}) {
		t.Errorf("second path = %v", got[1].Path)
	}
}
