package thread

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"ticketdraft/internal/domain"
)

var blankLinePattern = regexp.MustCompile(`\n[ \t]*\n`)

// Extensions the loader recognises when scanning a directory.
var Extensions = map[string]bool{
	".json": true,
	".html": true,
	".htm":  true,
	".txt":  true,
	".eml":  true,
}

type jsonThread struct {
	Ticket    string            `json:"ticket"`
	Subject   string            `json:"subject"`
	Fragments []domain.Fragment `json:"fragments"`
}

// LoadFile reads a ticket thread export. The ticket reference defaults to
// the file name without its extension.
func LoadFile(path string) (domain.Thread, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("open thread %s: %w", path, err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	var th domain.Thread
	switch ext {
	case ".json":
		th, err = ParseJSON(f)
	case ".html", ".htm":
		th, err = ParseHTML(f)
	default:
		th, err = ParseText(f)
	}
	if err != nil {
		return domain.Thread{}, fmt.Errorf("load thread %s: %w", path, err)
	}

	if th.Ticket == "" {
		th.Ticket = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	th.SourceRef = path
	log.Printf("thread loaded path=%s ticket=%s fragments=%d", path, th.Ticket, len(th.Fragments))
	return th, nil
}

func ParseJSON(r io.Reader) (domain.Thread, error) {
	var raw jsonThread
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return domain.Thread{}, fmt.Errorf("decode json: %w", err)
	}
	th := domain.Thread{Ticket: strings.TrimSpace(raw.Ticket), Subject: strings.TrimSpace(raw.Subject)}
	for _, frag := range raw.Fragments {
		switch frag.Kind {
		case "":
			frag.Kind = domain.FragmentMessage
		case domain.FragmentMessage, domain.FragmentNote:
		default:
			return domain.Thread{}, fmt.Errorf("unknown fragment kind %q", frag.Kind)
		}
		th.Fragments = append(th.Fragments, frag)
	}
	return th, nil
}

// ParseHTML extracts the readable body of an exported ticket page. The page
// title becomes the subject and each non-empty text line a message fragment.
func ParseHTML(r io.Reader) (domain.Thread, error) {
	article, err := readability.FromReader(r, nil)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("extract html: %w", err)
	}
	th := domain.Thread{Subject: strings.TrimSpace(article.Title)}
	for _, line := range strings.Split(article.TextContent, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		th.Fragments = append(th.Fragments, domain.Fragment{Kind: domain.FragmentMessage, Text: line})
	}
	return th, nil
}

// ParseText treats each blank-line separated paragraph as a message. A
// leading "Subject:" line sets the subject.
func ParseText(r io.Reader) (domain.Thread, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("read text: %w", err)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	var th domain.Thread
	if first, rest, ok := strings.Cut(text, "\n"); ok || first != "" {
		if v, found := cutPrefixFold(strings.TrimSpace(first), "subject:"); found {
			th.Subject = strings.TrimSpace(v)
			text = rest
		}
	}

	for _, para := range blankLinePattern.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		th.Fragments = append(th.Fragments, domain.Fragment{Kind: domain.FragmentMessage, Text: para})
	}
	return th, nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
