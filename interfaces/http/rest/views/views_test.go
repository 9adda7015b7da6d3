package views

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"campusqa/domain/core/aggregates"
	"campusqa/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(sec int64) time.Time {
	return time.Unix(1700000000+sec, 0)
}

func newTestRenderer() *Renderer {
	return NewRenderer(time.UTC, "2006-01-02 15:04:05")
}

func sampleForum() *aggregates.Forum {
	f := aggregates.NewForum()
	f.Users = append(f.Users, entities.NewUser("u_1", "Ada", "ada@campus.edu", "pw"))
	f.CurrentUserID = entities.Ref("u_1")

	first := entities.NewQuestion("q_1", "Where is B12?", "Cannot find it", ms(0), entities.Ref("u_1"))
	first.AddAnswer(entities.NewAnswer("a_1", "Second floor", ms(10), entities.Ref("u_1")))
	first.AddAnswer(entities.NewAnswer("a_2", "Near the stairs", ms(20), entities.Ref("u_gone")))
	first.Solved = true
	second := entities.NewQuestion("q_2", "Exam dates?", "When?", ms(30), nil)

	f.Questions = append(f.Questions, first, second)
	f.SelectedID = entities.Ref("q_1")

	f.Tickets = append(f.Tickets,
		entities.NewTicket("t_1", "Wifi", "Down", ms(5), entities.Ref("u_1")),
		entities.NewTicket("t_2", "Locker", "Jammed", ms(50), nil),
	)
	return f
}

func TestAuthView(t *testing.T) {
	r := newTestRenderer()
	f := sampleForum()

	view := r.Auth(f, "")
	assert.True(t, view.LoggedIn)
	assert.Equal(t, "Hi, Ada", view.Greeting)
	assert.Equal(t, TabLogin, view.ActiveTab)

	f.CurrentUserID = nil
	view = r.Auth(f, TabSignup)
	assert.False(t, view.LoggedIn)
	assert.Empty(t, view.Greeting)
	assert.Equal(t, TabSignup, view.ActiveTab)

	assert.Equal(t, TabLogin, r.Auth(f, "bogus").ActiveTab)
}

func TestQuestionListView(t *testing.T) {
	r := newTestRenderer()
	view := r.QuestionList(sampleForum())

	require.False(t, view.Empty)
	require.Len(t, view.Items, 2)

	newest := view.Items[0]
	assert.Equal(t, "q_2", newest.ID)
	assert.Equal(t, "Anonymous", newest.Asker)
	assert.False(t, newest.Active)
	assert.False(t, newest.Solved)

	older := view.Items[1]
	assert.Equal(t, "Ada", older.Asker)
	assert.Equal(t, 2, older.AnswerCount)
	assert.True(t, older.Solved)
	assert.True(t, older.Active)
	assert.Equal(t, "By Ada • Answers: 2 • 2023-11-14 22:13:20", older.Meta)
}

func TestQuestionListEmpty(t *testing.T) {
	view := newTestRenderer().QuestionList(aggregates.NewForum())

	assert.True(t, view.Empty)
	assert.Equal(t, NoQuestionsMessage, view.EmptyMessage)
	assert.Empty(t, view.Items)
}

func TestDetailView(t *testing.T) {
	r := newTestRenderer()
	view := r.Detail(sampleForum())

	require.False(t, view.Empty)
	assert.Equal(t, "Where is B12?", view.Title)
	assert.Equal(t, "Solved", view.Status)
	assert.Equal(t, "Asked by Ada • 2023-11-14 22:13:20 • 2 answer(s)", view.Meta)
	assert.Empty(t, view.AnswersEmptyMessage)

	require.Len(t, view.Answers, 2)
	assert.Equal(t, "a_1", view.Answers[0].ID, "answers stay oldest first")
	assert.Equal(t, "Ada", view.Answers[0].Author)
	assert.Equal(t, "Unknown", view.Answers[1].Author)
	assert.Equal(t, "Answer by Unknown • 2023-11-14 22:13:40", view.Answers[1].Meta)
}

func TestDetailViewStates(t *testing.T) {
	r := newTestRenderer()
	f := sampleForum()

	f.SelectedID = entities.Ref("q_2")
	view := r.Detail(f)
	assert.Equal(t, "Unsolved", view.Status)
	assert.Equal(t, NoAnswersMessage, view.AnswersEmptyMessage)
	assert.Empty(t, view.Answers)

	f.SelectedID = entities.Ref("q_missing")
	assert.True(t, r.Detail(f).Empty)

	f.SelectedID = nil
	assert.True(t, r.Detail(f).Empty)
}

func TestHelpDeskView(t *testing.T) {
	r := newTestRenderer()
	view := r.HelpDesk(sampleForum())

	require.Len(t, view.Items, 2)
	assert.Equal(t, "t_2", view.Items[0].ID)
	assert.Equal(t, "Anonymous", view.Items[0].Submitter)
	assert.Equal(t, "Ticket by Ada • 2023-11-14 22:13:25", view.Items[1].Meta)

	empty := r.HelpDesk(aggregates.NewForum())
	assert.True(t, empty.Empty)
	assert.Equal(t, NoTicketsMessage, empty.EmptyMessage)
}

func TestProjectionsAreIdempotent(t *testing.T) {
	r := newTestRenderer()
	f := sampleForum()
	before := f.Clone()

	first := r.Page(f, TabLogin)
	second := r.Page(f, TabLogin)

	assert.Equal(t, first, second)
	assert.Equal(t, before, f, "rendering must not mutate the forum")
}

func TestRenderPageEscapesUserText(t *testing.T) {
	r := newTestRenderer()
	f := sampleForum()
	f.Tickets = append(f.Tickets, entities.NewTicket("t_3", "<script>alert(1)</script>", "<b>hi</b>", ms(99), nil))

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, PageData{View: r.Page(f, TabLogin), Notice: "Logged in successfully!"}))
	html := buf.String()

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Hi, Ada")
	assert.Contains(t, html, "Logged in successfully!")
	assert.Contains(t, html, `id="detail-panel"`)
}

func TestRenderPageLoggedOutShowsActiveTab(t *testing.T) {
	r := newTestRenderer()
	f := aggregates.NewForum()

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, PageData{
		View:  r.Page(f, TabSignup),
		Error: "Please fill all fields.",
		Forms: FormValues{SignupName: "Ada", SignupEmail: "ada@campus.edu"},
	}))
	html := buf.String()

	assert.Contains(t, html, `id="signup-form"`)
	assert.NotContains(t, html, `id="login-form"`)
	assert.Contains(t, html, `value="ada@campus.edu"`)
	assert.Contains(t, html, NoQuestionsMessage)
	assert.Contains(t, html, NoTicketsMessage)
	assert.Equal(t, 1, strings.Count(html, "Please fill all fields."))
}

func TestSelectURLEscapesID(t *testing.T) {
	assert.Equal(t, "/questions/q_1/select", SelectURL("q_1"))
	assert.Equal(t, "/questions/q_a%2Fb/select", SelectURL("q_a/b"))

	r := newTestRenderer()
	f := aggregates.NewForum()
	f.Questions = append(f.Questions, entities.NewQuestion("q_a/b", "Edited by hand", "x", ms(0), nil))

	view := r.Page(f, TabLogin)
	require.Len(t, view.Questions.Items, 1)
	assert.Equal(t, "/questions/q_a%2Fb/select", view.Questions.Items[0].SelectURL)

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, PageData{View: view}))
	assert.Contains(t, buf.String(), `action="/questions/q_a%2Fb/select"`)
}
