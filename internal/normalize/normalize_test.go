package normalize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestNormalizer(t *testing.T, b Boilerplate) *Normalizer {
	t.Helper()
	n, err := New(b)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return n
}

func TestNormalizeEmptyInput(t *testing.T) {
	n := newTestNormalizer(t, DefaultBoilerplate())
	if got := n.Normalize(nil); got != "" {
		t.Fatalf("expected empty output for nil input, got %q", got)
	}
	if got := n.Normalize([]string{"", "  \n\n  "}); got != "" {
		t.Fatalf("expected empty output for blank input, got %q", got)
	}
}

func TestNormalizeRemovesLiteralPhrases(t *testing.T) {
	n := newTestNormalizer(t, Boilerplate{
		LiteralPhrases: []string{"Sent from my iPhone", "ACME Help Desk | ext 5555"},
	})
	got := n.Normalize([]string{
		"My laptop will not boot.\nSent from my iPhone",
		"ACME Help Desk | ext 5555\nPlease bring it to room 101.",
	})
	want := "My laptop will not boot.\nPlease bring it to room 101."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeLiteralRemovalIsCaseSensitive(t *testing.T) {
	n := newTestNormalizer(t, Boilerplate{LiteralPhrases: []string{"Sent from my iPhone"}})
	got := n.Normalize([]string{"sent from my iphone"})
	if got != "sent from my iphone" {
		t.Fatalf("expected literal removal to be exact, got %q", got)
	}
}

func TestNormalizeRegexRemovalSpansLines(t *testing.T) {
	n := newTestNormalizer(t, DefaultBoilerplate())
	got := n.Normalize([]string{
		"The VPN client rejects my password.",
		"CONFIDENTIALITY NOTICE: This email and any attachments\nare intended only for the recipient.\nIf you received it in error delete it.",
		"We respectfully acknowledge that York University is located on\nthe traditional territory of many Indigenous Nations.",
		"Can you reset it?",
	})
	want := "The VPN client rejects my password.\nCan you reset it?"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	n := newTestNormalizer(t, Boilerplate{})
	got := n.Normalize([]string{"Printer   on\t\tfloor 2\n\n\n\nis   jammed"})
	want := "Printer on floor 2\nis jammed"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeDedupesLinesCaseInsensitive(t *testing.T) {
	n := newTestNormalizer(t, Boilerplate{})
	got := n.Normalize([]string{
		"The Wi-Fi drops every hour.",
		"the wi-fi DROPS every hour.",
		"  The Wi-Fi drops every hour.  ",
		"Started on Monday.",
	})
	want := "The Wi-Fi drops every hour.\nStarted on Monday."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeThankYouAppearsOnce(t *testing.T) {
	n := newTestNormalizer(t, DefaultBoilerplate())
	for k := 1; k <= 4; k++ {
		frags := []string{"Please unlock my account."}
		variants := []string{"Thank you", "thank   you", "THANK YOU", " Thank you "}
		for i := 0; i < k; i++ {
			frags = append(frags, variants[i])
		}
		got := n.Normalize(frags)
		count := 0
		for _, line := range strings.Split(got, "\n") {
			if line == "Thank you" {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("k=%d: expected exactly one %q line, got %d in %q", k, "Thank you", count, got)
		}
	}
}

func TestNormalizeCollapsesGreetings(t *testing.T) {
	n := newTestNormalizer(t, DefaultBoilerplate())
	got := n.Normalize([]string{
		"Hello,\nMy monitor flickers.\nThank you,",
		"Hi Jordan,\nTry a different cable.\nThanks again!",
		"Hello!\nHi team,\nThat fixed it.\nThank you.",
	})
	want := "Hello,\nMy monitor flickers.\nThank you,\nHi Jordan,\nTry a different cable.\nThanks again!\nThat fixed it."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeKeepsOrdinaryAcknowledgements(t *testing.T) {
	n := newTestNormalizer(t, DefaultBoilerplate())
	lines := []string{
		"We acknowledge that the VPN was reset yesterday.",
		"It still fails with error 809 on my laptop.",
		"The landing page shows nothing.",
		"We acknowledge that Island campus printers are slow",
		"Please check the treaty room projector.",
	}
	got := n.Normalize(lines)
	want := strings.Join(lines, "\n")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeLandAcknowledgementStopsAtSentenceEnd(t *testing.T) {
	n := newTestNormalizer(t, DefaultBoilerplate())
	got := n.Normalize([]string{
		"We acknowledge that we work on the traditional territory of many Nations. My laptop will not boot.",
	})
	if got != "My laptop will not boot." {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeFoldsUnicodeSpacing(t *testing.T) {
	n := newTestNormalizer(t, DefaultBoilerplate())
	cases := []struct {
		in   []string
		want string
	}{
		{[]string{"Thank\tyou"}, "Thank you"},
		{[]string{"Thank you", "Thank\u00a0you"}, "Thank you"},
		{[]string{"Printer\u00a0\u00a0on floor\u20032"}, "Printer on floor 2"},
		{[]string{"VPN is down", "VPN  is\tdown"}, "VPN is down"},
	}
	for i, c := range cases {
		if got := n.Normalize(c.in); got != c.want {
			t.Fatalf("case %d: got %q, want %q", i, got, c.want)
		}
	}
}

func TestNormalizeKeepsSentencesThatStartWithGreetingWord(t *testing.T) {
	n := newTestNormalizer(t, DefaultBoilerplate())
	got := n.Normalize([]string{"Hello,", "Hi, my printer is broken again"})
	if !strings.Contains(got, "Hi, my printer is broken again") {
		t.Fatalf("expected sentence starting with a greeting word to survive, got %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := newTestNormalizer(t, Boilerplate{
		LiteralPhrases:   []string{"FOOTER"},
		RegexPatterns:    []string{disclaimerPattern},
		GreetingPatterns: DefaultBoilerplate().GreetingPatterns,
	})
	inputs := [][]string{
		nil,
		{"Hello,", "hello,", "Thank you", "THANK YOU"},
		{"FOOFOOTERTER still here"},
		{"a  b\n\n\nA B\n  c  "},
		{"Disclaimer: text\nmore text", "real content", "Real Content"},
		{"line one\r\nline two\rline three"},
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize([]string{once})
		if once != twice {
			t.Fatalf("normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
		if strings.Contains(once, "FOOTER") {
			t.Fatalf("configured phrase survived normalization: %q", once)
		}
	}
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	if _, err := New(Boilerplate{RegexPatterns: []string{"("}}); err == nil {
		t.Fatal("expected invalid regex to fail")
	}
	if _, err := New(Boilerplate{GreetingPatterns: []string{"[a-"}}); err == nil {
		t.Fatal("expected invalid greeting regex to fail")
	}
}

func TestLoadBoilerplateFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boilerplate.yaml")
	content := "literal_phrases:\n  - \"Campus IT footer\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write boilerplate: %v", err)
	}
	b, err := LoadBoilerplate(path)
	if err != nil {
		t.Fatalf("LoadBoilerplate failed: %v", err)
	}
	if len(b.LiteralPhrases) != 1 || b.LiteralPhrases[0] != "Campus IT footer" {
		t.Fatalf("unexpected literal phrases: %v", b.LiteralPhrases)
	}
	if len(b.RegexPatterns) != len(DefaultBoilerplate().RegexPatterns) {
		t.Fatalf("expected default regex patterns, got %v", b.RegexPatterns)
	}
}

func TestLoadBoilerplateMissingFile(t *testing.T) {
	if _, err := LoadBoilerplate(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing boilerplate file")
	}
}
