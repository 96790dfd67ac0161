package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	blankLinesRegex = regexp.MustCompile(`\n\s*\n`)
	spaceRunRegex   = regexp.MustCompile(`[\t\f\v\p{Zs}]+`)
)

// Normalizer strips boilerplate from scraped ticket text and removes
// repeated lines. It is safe for concurrent use.
type Normalizer struct {
	literals  []string
	patterns  []*regexp.Regexp
	greetings []*regexp.Regexp
}

func New(b Boilerplate) (*Normalizer, error) {
	n := &Normalizer{}
	for _, phrase := range b.LiteralPhrases {
		if phrase != "" {
			n.literals = append(n.literals, phrase)
		}
	}
	for _, p := range b.RegexPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile boilerplate pattern %q: %w", p, err)
		}
		n.patterns = append(n.patterns, re)
	}
	for _, p := range b.GreetingPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile greeting pattern %q: %w", p, err)
		}
		n.greetings = append(n.greetings, re)
	}
	return n, nil
}

// Normalize joins the fragments in page order and cleans the result.
// Fragments are separated by a blank line so multi-line patterns stop at
// fragment boundaries.
func (n *Normalizer) Normalize(rawLines []string) string {
	cur := n.pass(strings.Join(rawLines, "\n\n"))
	// Passes only remove text or fold spacing, so this terminates.
	for {
		next := n.pass(cur)
		if next == cur {
			return cur
		}
		cur = next
	}
}

func (n *Normalizer) pass(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	for _, phrase := range n.literals {
		text = strings.ReplaceAll(text, phrase, "")
	}
	for _, re := range n.patterns {
		text = re.ReplaceAllString(text, "")
	}

	text = blankLinesRegex.ReplaceAllString(text, "\n")
	text = spaceRunRegex.ReplaceAllString(text, " ")

	lines := dedupeLines(strings.Split(text, "\n"))
	lines = n.collapseGreetings(lines)
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func dedupeLines(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key := lineKey(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, line)
	}
	return out
}

func (n *Normalizer) collapseGreetings(lines []string) []string {
	if len(n.greetings) == 0 {
		return lines
	}
	seen := make(map[string]bool)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		phrase, ok := n.greetingPhrase(line)
		if ok {
			if seen[phrase] {
				continue
			}
			seen[phrase] = true
		}
		out = append(out, line)
	}
	return out
}

// greetingPhrase returns the comparison key of the greeting a line consists of.
func (n *Normalizer) greetingPhrase(line string) (string, bool) {
	for _, re := range n.greetings {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		phrase := m[0]
		if len(m) > 1 && m[1] != "" {
			phrase = m[1]
		}
		return lineKey(phrase), true
	}
	return "", false
}

// lineKey folds case and every run of Unicode white space.
func lineKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
