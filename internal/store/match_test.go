package store

import "testing"

func TestMatches(t *testing.T) {
	doc := Document{"formId": "f1", "count": float64(3), "published": true}

	tests := []struct {
		name string
		q    Query
		want bool
	}{
		{"empty query", Query{}, true},
		{"string equal", Query{"formId": "f1"}, true},
		{"string differs", Query{"formId": "f2"}, false},
		{"int against float", Query{"count": 3}, true},
		{"bool", Query{"published": true}, true},
		{"missing key", Query{"shareToken": "abc"}, false},
		{"missing key matches nil", Query{"shareToken": nil}, true},
		{"type mismatch", Query{"count": "3"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(doc, tt.q); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.q, got, tt.want)
			}
		})
	}
}

func TestSortDocsDescendingIsStable(t *testing.T) {
	docs := []Document{
		{"k": "a", "at": "2026-01-01"},
		{"k": "b", "at": "2026-03-01"},
		{"k": "c", "at": "2026-01-01"},
		{"k": "d"},
	}
	SortDocs(docs, &Sort{Field: "at", Desc: true})

	want := []string{"b", "a", "c", "d"}
	for i, k := range want {
		if docs[i]["k"] != k {
			t.Fatalf("position %d: got %v, want %s", i, docs[i]["k"], k)
		}
	}
}

func TestPage(t *testing.T) {
	docs := []Document{{"i": 0}, {"i": 1}, {"i": 2}, {"i": 3}}

	if got := Page(docs, 1, 2); len(got) != 2 || got[0]["i"] != 1 {
		t.Fatalf("skip 1 limit 2: %v", got)
	}
	if got := Page(docs, 10, 0); len(got) != 0 {
		t.Fatalf("skip past end: %v", got)
	}
	if got := Page(docs, 0, 0); len(got) != 4 {
		t.Fatalf("no paging: %v", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Document{"data": map[string]any{"f1": "Rahim"}, "tags": []any{"x"}}
	c := Clone(orig)
	c["data"].(map[string]any)["f1"] = "Karim"
	c["tags"].([]any)[0] = "y"

	if orig["data"].(map[string]any)["f1"] != "Rahim" || orig["tags"].([]any)[0] != "x" {
		t.Fatalf("clone shares nested values with original: %v", orig)
	}
}

func TestFeedKeepsLatest(t *testing.T) {
	f := NewFeed()
	f.Push(Snapshot{Docs: []Document{{"n": 1}}})
	f.Push(Snapshot{Docs: []Document{{"n": 2}}})

	got := <-f.C()
	if got.Docs[0]["n"] != 2 {
		t.Fatalf("expected newest snapshot, got %v", got.Docs)
	}

	f.Close()
	f.Push(Snapshot{})
	if _, ok := <-f.C(); ok {
		t.Fatal("expected closed channel")
	}
}
