package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nhle/notionmail/internal/browse"
	"github.com/nhle/notionmail/internal/command"
	"github.com/nhle/notionmail/internal/help"
	"github.com/nhle/notionmail/internal/prompt/prompttest"
	"github.com/nhle/notionmail/internal/query"
	"github.com/nhle/notionmail/internal/source"
	"github.com/nhle/notionmail/internal/source/notion/notiontest"
	"github.com/nhle/notionmail/internal/source/sourcetest"
	"github.com/nhle/notionmail/internal/theme"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type fixture struct {
	script *prompttest.Scripted
	out    *bytes.Buffer
	d      *Dispatcher
}

func newFixture(t *testing.T, store source.RecordStore) *fixture {
	t.Helper()
	f := &fixture{script: prompttest.New(), out: &bytes.Buffer{}}
	printer := theme.NewPrinter(f.out)
	logger := zaptest.NewLogger(t)
	b := browse.New(store, f.script, printer, logger, browse.Options{})
	f.d = New(store, f.script, b, printer, logger, Options{})
	return f
}

func TestDispatch_Exit(t *testing.T) {
	store := sourcetest.New()
	f := newFixture(t, store)

	exit, err := f.d.Dispatch(context.Background(), command.Exit)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Empty(t, f.out.String())
	assert.Empty(t, f.script.TextCalls)
}

func TestDispatch_Help(t *testing.T) {
	store := sourcetest.New()
	f := newFixture(t, store)

	exit, err := f.d.Dispatch(context.Background(), command.Help)
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, help.Summary()+"\n", f.out.String())
	assert.Empty(t, store.Queries)
}

func TestDispatch_Unknown(t *testing.T) {
	f := newFixture(t, sourcetest.New())

	exit, err := f.d.Dispatch(context.Background(), command.Command("forward"))
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, MsgUnknownCommand+"\n", f.out.String())
}

func TestDispatch_SendBuildsPayload(t *testing.T) {
	store := sourcetest.New()
	f := newFixture(t, store)
	f.script.Type(" Alice ", "BOB", "  Hi Bob!  ")

	exit, err := f.d.Dispatch(context.Background(), command.Send)
	require.NoError(t, err)
	assert.False(t, exit)

	require.Len(t, store.Created, 1)
	assert.Equal(t, query.Properties{
		"Sender":    {query.KindRichText: {{Text: query.Text{Content: "alice"}}}},
		"Recipient": {query.KindRichText: {{Text: query.Text{Content: "bob"}}}},
		"Message":   {query.KindTitle: {{Text: query.Text{Content: "  Hi Bob!  "}}}},
	}, store.Created[0])
	assert.Equal(t, MsgSent+"\n", f.out.String())

	titles := []string{command.PromptSender, command.PromptRecipient, command.PromptMessage}
	for i, call := range f.script.TextCalls {
		assert.Equal(t, titles[i], call.Title)
	}
}

func TestDispatch_SendFailure(t *testing.T) {
	store := sourcetest.New()
	store.CreateErr = &source.APIError{StatusCode: 400, Code: "validation_error", Message: "Message is not a property"}
	f := newFixture(t, store)
	f.script.Type("alice", "bob", "hi")

	ok, err := f.d.Send(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, MsgSendFailed+"\n", f.out.String())
}

func TestDispatch_SendPromptAborted(t *testing.T) {
	store := sourcetest.New()
	f := newFixture(t, store)
	f.script.Type("alice")

	_, err := f.d.Dispatch(context.Background(), command.Send)
	assert.ErrorIs(t, err, prompttest.ErrExhausted)
	assert.Empty(t, store.Created)
}

func TestDispatch_ReadDoesNotMutate(t *testing.T) {
	store := sourcetest.New().Page(false, "", sourcetest.Message("id-1", "alice", "bob", "hi"))
	f := newFixture(t, store)
	f.script.Type(" Bob ").Choose(prompttest.Index(0))

	exit, err := f.d.Dispatch(context.Background(), command.Read)
	require.NoError(t, err)
	assert.False(t, exit)

	require.Len(t, store.Queries, 1)
	assert.Equal(t, "bob", store.Queries[0].Filter.Value)
	assert.Equal(t, command.PromptRead, f.script.SelectCalls[0].Title)
	assert.Empty(t, store.Archived)
	assert.Empty(t, store.Created)
	assert.Empty(t, f.out.String())
}

func TestDispatch_DeleteSelected(t *testing.T) {
	store := sourcetest.New().Page(false, "",
		sourcetest.Message("id-1", "alice", "bob", "one"),
		sourcetest.Message("id-2", "alice", "bob", "two"),
	)
	f := newFixture(t, store)
	f.script.Type("bob").Choose(prompttest.Index(1))

	ok, err := f.d.Delete(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"id-2"}, store.Archived)
	assert.Equal(t, command.PromptDelete, f.script.SelectCalls[0].Title)
	assert.Equal(t, MsgDeleted+"\n", f.out.String())
}

func TestDispatch_DeleteBackDoesNotArchive(t *testing.T) {
	store := sourcetest.New().Page(false, "", sourcetest.Message("id-1", "alice", "bob", "one"))
	f := newFixture(t, store)
	f.script.Type("bob").Choose(prompttest.Containing(browse.BackLabel))

	exit, err := f.d.Dispatch(context.Background(), command.Delete)
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Empty(t, store.Archived)
	assert.Empty(t, f.out.String())
}

func TestDispatch_DeleteEmptyMailbox(t *testing.T) {
	store := sourcetest.New().Page(false, "")
	f := newFixture(t, store)
	f.script.Type("bob")

	ok, err := f.d.Delete(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store.Archived)
	assert.Equal(t, "bob has no messages\n", f.out.String())
}

func TestDispatch_DeleteArchiveFails(t *testing.T) {
	store := sourcetest.New().Page(false, "", sourcetest.Message("id-1", "alice", "bob", "one"))
	store.ArchiveErr = &source.TransportError{Op: "PATCH /v1/pages/id-1", Err: errors.New("connection reset")}
	f := newFixture(t, store)
	f.script.Type("bob").Choose(prompttest.Index(0))

	ok, err := f.d.Delete(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"id-1"}, store.Archived)
	assert.Equal(t, MsgDeleteFailed+"\n", f.out.String())
}

func TestDispatch_SendAndDeleteAgainstNotionServer(t *testing.T) {
	srv := notiontest.New(t)
	f := newFixture(t, srv.Adapter())
	ctx := context.Background()

	f.script.Type("alice", "bob", "hi")
	exit, err := f.d.Dispatch(ctx, command.Send)
	require.NoError(t, err)
	require.False(t, exit)

	pages := srv.Pages()
	require.Len(t, pages, 1)

	var body struct {
		Properties map[string]map[string][]map[string]map[string]string `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(srv.Requests()[0].Body, &body))
	assert.Equal(t, "hi", body.Properties["Message"]["title"][0]["text"]["content"])
	assert.Equal(t, "alice", body.Properties["Sender"]["rich_text"][0]["text"]["content"])
	assert.Equal(t, "bob", body.Properties["Recipient"]["rich_text"][0]["text"]["content"])

	f.script.Type("bob").Choose(prompttest.Index(0))
	_, err = f.d.Dispatch(ctx, command.Delete)
	require.NoError(t, err)

	archived, ok := srv.Page(pages[0].ID)
	require.True(t, ok)
	assert.True(t, archived.Archived)
	assert.Equal(t, MsgSent+"\n"+MsgDeleted+"\n", f.out.String())
}

func TestDispatch_SendRejectedByServer(t *testing.T) {
	srv := notiontest.New(t)
	srv.FailNext(http.StatusServiceUnavailable, "service_unavailable", "Notion is unavailable")
	f := newFixture(t, srv.Adapter())

	ok := f.d.SendMessage(context.Background(), "alice", "bob", "hi")
	assert.False(t, ok)
	assert.Empty(t, srv.Pages())
}

func TestDispatch_SendRepromptsBlankRecipient(t *testing.T) {
	store := sourcetest.New()
	f := newFixture(t, store)
	f.script.Type("alice", "   ", "", "bob", "hi")

	ok, err := f.d.Send(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, store.Created, 1)
	assert.Contains(t, store.Created[0], "Recipient")
	assert.Equal(t, []string{"   ", ""}, f.script.TextCalls[1].Rejected)
	assert.Equal(t, MsgSent+"\n", f.out.String())
}

func TestDispatch_SendMessageBlankRecipient(t *testing.T) {
	srv := notiontest.New(t)
	f := newFixture(t, srv.Adapter())

	for _, recipient := range []string{"", "  \t"} {
		assert.False(t, f.d.SendMessage(context.Background(), "alice", recipient, "hi"))
	}
	assert.Empty(t, srv.Requests())
}

func TestDispatch_ReadAndDeleteRepromptBlankRecipient(t *testing.T) {
	for _, cmd := range []command.Command{command.Read, command.Delete} {
		t.Run(cmd.String(), func(t *testing.T) {
			store := sourcetest.New().Page(false, "", sourcetest.Message("id-1", "alice", "bob", "hi"))
			f := newFixture(t, store)
			f.script.Type(" ", "bob").Choose(prompttest.Containing(browse.BackLabel))

			_, err := f.d.Dispatch(context.Background(), cmd)
			require.NoError(t, err)

			require.Len(t, store.Queries, 1)
			assert.Equal(t, "bob", store.Queries[0].Filter.Value)
			assert.Equal(t, []string{" "}, f.script.TextCalls[0].Rejected)
		})
	}
}

func TestDispatch_HungBackendTimesOut(t *testing.T) {
	srv := notiontest.New(t)
	srv.Seed("alice", "bob", "hi")
	srv.StallNext()

	script := prompttest.New().Type("bob", "bob").Choose(prompttest.Containing(browse.BackLabel))
	out := &bytes.Buffer{}
	printer := theme.NewPrinter(out)
	logger := zaptest.NewLogger(t)
	timeout := 100 * time.Millisecond
	b := browse.New(srv.Adapter(), script, printer, logger, browse.Options{Timeout: timeout})
	d := New(srv.Adapter(), script, b, printer, logger, Options{Timeout: timeout})
	ctx := context.Background()

	start := time.Now()
	exit, err := d.Dispatch(ctx, command.Read)
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, browse.MsgReadError+"\n", out.String())
	assert.Empty(t, script.SelectCalls)

	exit, err = d.Dispatch(ctx, command.Read)
	require.NoError(t, err)
	assert.False(t, exit)
	require.Len(t, script.SelectCalls, 1)
	assert.Len(t, script.SelectCalls[0].Labels, 2)
	assert.Equal(t, browse.MsgReadError+"\n", out.String())
}
