package domain

import "time"

// TicketRecord is one historical ticket: what was asked and how it was resolved.
type TicketRecord struct {
	Subject    string
	Resolution string
}

// Corpus is the ordered set of historical tickets loaded for a session.
type Corpus []TicketRecord

func (c Corpus) Subjects() []string {
	out := make([]string, len(c))
	for i, r := range c {
		out[i] = r.Subject
	}
	return out
}

type FragmentKind string

const (
	FragmentMessage FragmentKind = "message"
	FragmentNote    FragmentKind = "note"
)

type Fragment struct {
	Kind FragmentKind `json:"kind"`
	Text string       `json:"text"`
}

// Thread is the scraped conversation of one open ticket.
type Thread struct {
	Ticket    string     `json:"ticket"`
	Subject   string     `json:"subject"`
	Fragments []Fragment `json:"fragments"`
	SourceRef string     `json:"-"` // file the thread was loaded from, if any
}

// Lines returns fragment texts in page order, notes included.
func (t Thread) Lines() []string {
	out := make([]string, 0, len(t.Fragments))
	for _, f := range t.Fragments {
		out = append(out, f.Text)
	}
	return out
}

// Messages returns the fragments exchanged with the requester.
func (t Thread) Messages() []Fragment {
	return t.filter(FragmentMessage)
}

// Notes returns internal notes the requester never sees.
func (t Thread) Notes() []Fragment {
	return t.filter(FragmentNote)
}

func (t Thread) filter(kind FragmentKind) []Fragment {
	var out []Fragment
	for _, f := range t.Fragments {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Texts returns the text of each fragment in order.
func Texts(fs []Fragment) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Text
	}
	return out
}

type DraftRecord struct {
	ID                  int64
	TicketRef           string
	SourceRef           string // thread export path, used for dedup by the watcher
	Subject             string
	PrecedentSubject    string
	PrecedentResolution string
	PrecedentSimilarity float64
	Draft               string
	Score               float64
	Round               int
	Guidance            string
	Approved            bool
	GenerationFailed    bool
	LLMProvider         string
	LLMModel            string
	CreatedAt           time.Time
}

type DraftStats struct {
	TotalDrafts    int
	ApprovedDrafts int
	FailedDrafts   int
	AvgScore       float64
	BucketBelow25  int
	Bucket25to50   int
	Bucket50to75   int
	Bucket75Plus   int
}
