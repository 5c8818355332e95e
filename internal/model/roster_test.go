package model

import (
	"reflect"
	"testing"
)

func TestRosterDocument_Normalize(t *testing.T) {
	doc := &RosterDocument{
		Names:     []string{"Ann", "", "Bob", "Ann", "Cid"},
		UsedNames: []string{"Bob", "Zed", "Bob"},
	}

	doc.Normalize()

	if !reflect.DeepEqual(doc.Names, []string{"Ann", "Bob", "Cid"}) {
		t.Errorf("Names = %v, expected [Ann Bob Cid]", doc.Names)
	}
	if !reflect.DeepEqual(doc.UsedNames, []string{"Bob"}) {
		t.Errorf("UsedNames = %v, expected [Bob]", doc.UsedNames)
	}
}

func TestRosterDocument_NormalizeNil(t *testing.T) {
	doc := &RosterDocument{}
	doc.Normalize()

	if doc.Names == nil || doc.UsedNames == nil {
		t.Error("Normalize should produce non-nil slices so the document encodes as []")
	}
}
