package domain

import (
	"reflect"
	"testing"
)

func TestThreadSplitsMessagesAndNotes(t *testing.T) {
	th := Thread{Fragments: []Fragment{
		{Kind: FragmentMessage, Text: "VPN fails"},
		{Kind: FragmentNote, Text: "Account active"},
		{Kind: FragmentMessage, Text: "Still failing"},
		{Kind: "", Text: "unlabelled"},
	}}

	if got, want := th.Lines(), []string{"VPN fails", "Account active", "Still failing", "unlabelled"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Lines = %q, want %q", got, want)
	}
	if got, want := Texts(th.Messages()), []string{"VPN fails", "Still failing"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Messages = %q, want %q", got, want)
	}
	if got, want := Texts(th.Notes()), []string{"Account active"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Notes = %q, want %q", got, want)
	}
}

func TestThreadWithoutNotes(t *testing.T) {
	th := Thread{Fragments: []Fragment{{Kind: FragmentMessage, Text: "hi"}}}
	if notes := th.Notes(); len(notes) != 0 {
		t.Fatalf("expected no notes, got %v", notes)
	}
	if got := Texts(nil); len(got) != 0 {
		t.Fatalf("expected empty texts, got %v", got)
	}
}
