package browse

import (
	"fmt"
	"time"

	"github.com/nhle/notionmail/internal/query"
	"github.com/nhle/notionmail/internal/source"
	"github.com/nhle/notionmail/internal/theme"
)

// Kind tells a real record apart from the synthetic control entries.
// KindNone marks a session that ended without any choice.
type Kind int

const (
	KindNone Kind = iota
	KindRecord
	KindLoadMore
	KindBack
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRecord:
		return "record"
	case KindLoadMore:
		return "load-more"
	case KindBack:
		return "back"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Control entry labels.
const (
	LoadMoreLabel = "Load more messages"
	BackLabel     = "Back"
)

// Choice is one entry of the selection list. ID is set only for KindRecord.
type Choice struct {
	Kind  Kind
	ID    string
	Label string
}

func loadMoreChoice() Choice {
	return Choice{Kind: KindLoadMore, Label: theme.LoadMoreStyle.Render(LoadMoreLabel)}
}

func backChoice() Choice {
	return Choice{Kind: KindBack, Label: theme.BackStyle.Render(BackLabel)}
}

// recordChoice labels a message as "from: <sender>, date: <created>" over its body.
func recordChoice(schema query.Schema, rec source.Record) Choice {
	sender := rec.Get(schema.Column(query.FieldSender))
	body := rec.Get(schema.Column(query.FieldMessage))

	label := fmt.Sprintf("from: %s, date: %s\n%s\n",
		theme.FieldStyle.Render(sender),
		theme.FieldStyle.Render(formatDate(rec.CreatedAt)),
		theme.BodyStyle.Render(body),
	)
	return Choice{Kind: KindRecord, ID: rec.ID, Label: label}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}

// Result is the outcome of a browse session: the choice that ended it, or
// KindNone when the session ended before anything was presented.
type Result struct {
	Kind Kind
	ID   string
}

// Selected reports whether the user picked a record.
func (r Result) Selected() bool {
	return r.Kind == KindRecord
}
