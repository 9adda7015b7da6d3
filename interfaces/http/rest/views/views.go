package views

import (
	"fmt"
	"net/url"
	"time"

	"campusqa/domain/core/aggregates"
	"campusqa/pkg/utils"
)

// Auth tabs
const (
	TabLogin  = "login"
	TabSignup = "signup"
)

// Empty-state messages
const (
	NoQuestionsMessage = "No questions yet. Be the first to ask!"
	NoAnswersMessage   = "No solutions yet. Be the first to answer!"
	NoTicketsMessage   = "No help desk tickets yet."
	NoSelectionMessage = "Select a question to see its details."
)

// AuthView is the header and auth card state
type AuthView struct {
	LoggedIn  bool   `json:"loggedIn"`
	UserName  string `json:"userName,omitempty"`
	Greeting  string `json:"greeting,omitempty"`
	ActiveTab string `json:"activeTab"`
}

// QuestionItem is one row of the question list
type QuestionItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Asker       string `json:"asker"`
	AnswerCount int    `json:"answerCount"`
	CreatedAt   string `json:"createdAt"`
	Solved      bool   `json:"solved"`
	Active      bool   `json:"active"`
	Meta        string `json:"meta"`
	SelectURL   string `json:"selectUrl"`
}

// QuestionListView lists questions newest first
type QuestionListView struct {
	Empty        bool           `json:"empty"`
	EmptyMessage string         `json:"emptyMessage,omitempty"`
	Items        []QuestionItem `json:"items"`
}

// AnswerItem is one answer in the detail panel
type AnswerItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
	Meta      string `json:"meta"`
}

// DetailView is the selected question with its answers oldest first
type DetailView struct {
	Empty               bool         `json:"empty"`
	EmptyMessage        string       `json:"emptyMessage,omitempty"`
	ID                  string       `json:"id,omitempty"`
	Title               string       `json:"title,omitempty"`
	Body                string       `json:"body,omitempty"`
	Asker               string       `json:"asker,omitempty"`
	CreatedAt           string       `json:"createdAt,omitempty"`
	AnswerCount         int          `json:"answerCount"`
	Solved              bool         `json:"solved"`
	Status              string       `json:"status,omitempty"`
	Meta                string       `json:"meta,omitempty"`
	Answers             []AnswerItem `json:"answers"`
	AnswersEmptyMessage string       `json:"answersEmptyMessage,omitempty"`
}

// TicketItem is one help-desk ticket
type TicketItem struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Submitter string `json:"submitter"`
	CreatedAt string `json:"createdAt"`
	Meta      string `json:"meta"`
}

// HelpDeskView lists tickets newest first
type HelpDeskView struct {
	Empty        bool         `json:"empty"`
	EmptyMessage string       `json:"emptyMessage,omitempty"`
	Items        []TicketItem `json:"items"`
}

// PageView holds every display region
type PageView struct {
	Auth      AuthView         `json:"auth"`
	Questions QuestionListView `json:"questions"`
	Detail    DetailView       `json:"detail"`
	HelpDesk  HelpDeskView     `json:"helpDesk"`
}

// Renderer projects a forum snapshot into view models.
// Projections only read; calling them again on the same forum gives the same views.
type Renderer struct {
	location *time.Location
	layout   string
}

// NewRenderer creates a renderer formatting timestamps in loc with layout
func NewRenderer(loc *time.Location, layout string) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	if layout == "" {
		layout = utils.DefaultTimeLayout
	}
	return &Renderer{location: loc, layout: layout}
}

// Page renders all regions
func (r *Renderer) Page(f *aggregates.Forum, tab string) PageView {
	return PageView{
		Auth:      r.Auth(f, tab),
		Questions: r.QuestionList(f),
		Detail:    r.Detail(f),
		HelpDesk:  r.HelpDesk(f),
	}
}

// Auth renders the header: a greeting when logged in, login/signup otherwise
func (r *Renderer) Auth(f *aggregates.Forum, tab string) AuthView {
	if tab != TabSignup {
		tab = TabLogin
	}
	view := AuthView{ActiveTab: tab}
	if u := f.CurrentUser(); u != nil {
		view.LoggedIn = true
		view.UserName = u.Name
		view.Greeting = "Hi, " + u.Name
	}
	return view
}

// QuestionList renders the question list
func (r *Renderer) QuestionList(f *aggregates.Forum) QuestionListView {
	if len(f.Questions) == 0 {
		return QuestionListView{Empty: true, EmptyMessage: NoQuestionsMessage, Items: []QuestionItem{}}
	}

	ordered := f.QuestionsByRecency()
	items := make([]QuestionItem, 0, len(ordered))
	for _, q := range ordered {
		asker := f.AuthorName(q.AskedByUserID)
		created := r.formatTime(q.CreatedAt)
		items = append(items, QuestionItem{
			ID:          q.ID,
			Title:       q.Title,
			Asker:       asker,
			AnswerCount: q.AnswerCount(),
			CreatedAt:   created,
			Solved:      q.Solved,
			Active:      f.IsSelected(q.ID),
			Meta:        fmt.Sprintf("By %s • Answers: %d • %s", asker, q.AnswerCount(), created),
			SelectURL:   SelectURL(q.ID),
		})
	}
	return QuestionListView{Items: items}
}

// Detail renders the selected question
func (r *Renderer) Detail(f *aggregates.Forum) DetailView {
	q := f.SelectedQuestion()
	if q == nil {
		return DetailView{Empty: true, EmptyMessage: NoSelectionMessage, Answers: []AnswerItem{}}
	}

	asker := f.AuthorName(q.AskedByUserID)
	created := r.formatTime(q.CreatedAt)
	status := "Unsolved"
	if q.Solved {
		status = "Solved"
	}

	view := DetailView{
		ID:          q.ID,
		Title:       q.Title,
		Body:        q.Body,
		Asker:       asker,
		CreatedAt:   created,
		AnswerCount: q.AnswerCount(),
		Solved:      q.Solved,
		Status:      status,
		Meta:        fmt.Sprintf("Asked by %s • %s • %d answer(s)", asker, created, q.AnswerCount()),
		Answers:     make([]AnswerItem, 0, len(q.Answers)),
	}
	if len(q.Answers) == 0 {
		view.AnswersEmptyMessage = NoAnswersMessage
	}

	// stored order: oldest first
	for _, a := range q.Answers {
		author := f.AuthorName(a.UserID)
		answered := r.formatTime(a.CreatedAt)
		view.Answers = append(view.Answers, AnswerItem{
			ID:        a.ID,
			Text:      a.Text,
			Author:    author,
			CreatedAt: answered,
			Meta:      fmt.Sprintf("Answer by %s • %s", author, answered),
		})
	}
	return view
}

// HelpDesk renders the ticket list
func (r *Renderer) HelpDesk(f *aggregates.Forum) HelpDeskView {
	if len(f.Tickets) == 0 {
		return HelpDeskView{Empty: true, EmptyMessage: NoTicketsMessage, Items: []TicketItem{}}
	}

	ordered := f.TicketsByRecency()
	items := make([]TicketItem, 0, len(ordered))
	for _, t := range ordered {
		submitter := f.AuthorName(t.UserID)
		created := r.formatTime(t.CreatedAt)
		items = append(items, TicketItem{
			ID:        t.ID,
			Subject:   t.Subject,
			Message:   t.Message,
			Submitter: submitter,
			CreatedAt: created,
			Meta:      fmt.Sprintf("Ticket by %s • %s", submitter, created),
		})
	}
	return HelpDeskView{Items: items}
}

// SelectURL is the form action selecting question id; the id is one escaped path segment
func SelectURL(id string) string {
	return "/questions/" + url.PathEscape(id) + "/select"
}

func (r *Renderer) formatTime(ms int64) string {
	return utils.FormatMillis(ms, r.location, r.layout)
}
