package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Boilerplate lists the text stripped from scraped conversations before scoring.
// Literal phrases are removed verbatim; regex patterns may span lines.
// Greeting patterns match whole lines. A line is dropped when an earlier
// line used the same greeting phrase: the pattern's first capture group,
// or the whole match when the pattern has none.
type Boilerplate struct {
	LiteralPhrases   []string `yaml:"literal_phrases"`
	RegexPatterns    []string `yaml:"regex_patterns"`
	GreetingPatterns []string `yaml:"greeting_patterns"`
}

// An acknowledgement is one sentence that names the traditional or treaty
// context. It may wrap onto lines that start in lower case but never runs
// past a sentence end.
const (
	disclaimerPattern = `(?ims)^[ \t]*(?:confidentiality notice|disclaimer)\s*:.*?(?:\n[ \t]*\n|\z)`
	landAckPattern    = `(?i)\b(?:we|york university) (?:respectfully )?acknowledges? that ` +
		`(?:[^.!?\n]|\n[ \t]*(?-i:\p{Ll}))*?` +
		`\b(?:traditional|indigenous|ancestral|unceded|treaty|treaties)\b` +
		`(?:[^.!?\n]|\n[ \t]*(?-i:\p{Ll}))*[.!?]?`
)

func DefaultBoilerplate() Boilerplate {
	return Boilerplate{
		LiteralPhrases: []string{
			"Sent from my iPhone",
			"Sent from my Android device",
			"Get Outlook for iOS",
			"Get Outlook for Android",
			"This message was sent from an external source. Please use caution when opening attachments or clicking links.",
			"CAUTION: This email originated from outside of the organization.",
			"Please do not reply to this email. This mailbox is not monitored.",
			"To view the full request, please log in to the Self-Service Portal.",
			"You have received a new reply from the Help Desk.",
			"IT Service Desk | Lassonde School of Engineering",
			"Lassonde School of Engineering | York University",
			"4700 Keele Street, Toronto, Ontario, Canada M3J 1P3",
		},
		RegexPatterns: []string{
			disclaimerPattern,
			landAckPattern,
		},
		GreetingPatterns: []string{
			`(?i)^(hello|hi|hey|dear|good\s+(?:morning|afternoon|evening))(?:(?:\s+[\p{L}.'-]+){1,3}\s*[,!:]|\s*[,!.:]?)$`,
			`(?i)^((?:thank you|thanks|many thanks|best regards|kind regards|regards|sincerely|cheers)(?:\s+(?:so much|very much|again))?)\s*[,!.]?$`,
		},
	}
}

// LoadBoilerplate reads a boilerplate list from YAML. Sections left out of
// the file fall back to the defaults.
func LoadBoilerplate(path string) (Boilerplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Boilerplate{}, fmt.Errorf("read boilerplate: %w", err)
	}
	var b Boilerplate
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Boilerplate{}, fmt.Errorf("parse boilerplate yaml: %w", err)
	}
	def := DefaultBoilerplate()
	if b.LiteralPhrases == nil {
		b.LiteralPhrases = def.LiteralPhrases
	}
	if b.RegexPatterns == nil {
		b.RegexPatterns = def.RegexPatterns
	}
	if b.GreetingPatterns == nil {
		b.GreetingPatterns = def.GreetingPatterns
	}
	return b, nil
}
