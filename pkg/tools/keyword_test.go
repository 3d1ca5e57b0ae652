package tools

import (
	"reflect"
	"testing"
)

func TestClassifyCategories(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "match question", query: "When is the next match in the stadium?", want: []string{"match"}},
		{name: "health question", query: "Is there a pharmacy nearby?", want: []string{"health"}},
		{name: "multi category", query: "hotel near the stadium", want: []string{"match", "accommodation"}},
		{name: "weather question", query: "What is the weather forecast?", want: []string{"weather"}},
		{name: "no match falls back", query: "xyzzy", want: []string{"general"}},
		{name: "case insensitive", query: "HOTEL IN RABAT", want: []string{"accommodation"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyCategories(tt.query); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ClassifyCategories(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestRegistryPriorityOrder(t *testing.T) {
	r := NewRegistry(
		NewFinalAnswerTool(),
		NewProcessResponseTool(),
	)

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("All() = %d tools", len(all))
	}
	if all[0].Name != "Process Response" || all[1].Name != "Final Answer" {
		t.Errorf("tools not sorted by priority: %s, %s", all[0].Name, all[1].Name)
	}

	if _, ok := r.ByName("Final Answer"); !ok {
		t.Errorf("ByName should find a registered tool")
	}
	if _, ok := r.ByName("Nope"); ok {
		t.Errorf("ByName should miss an unregistered tool")
	}
}
