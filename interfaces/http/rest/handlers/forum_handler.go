package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"campusqa/application/commands"
	"campusqa/application/services"
	"campusqa/domain/core/aggregates"
	"campusqa/domain/core/entities"
	"campusqa/interfaces/http/rest/views"
	"campusqa/pkg/common"
	pkgerrors "campusqa/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// APIVersion is stamped on JSON responses
const APIVersion = "v1"

// Flash notices shown once after a successful submit
const (
	NoticeSignup = "signup"
	NoticeLogin  = "login"
	NoticeTicket = "ticket"
)

var notices = map[string]string{
	NoticeSignup: "Account created and logged in!",
	NoticeLogin:  "Logged in successfully!",
	NoticeTicket: "Help desk ticket submitted (saved locally).",
}

// User-facing failure messages
const (
	DuplicateEmailMessage     = "An account with this email already exists. Please login instead."
	InvalidCredentialsMessage = "Invalid email or password."
	StorageFailureMessage     = "Could not save your changes. Please try again."
	InvalidFormMessage        = "Could not read the submitted form."
)

var notAuthenticatedMessages = map[string]string{
	services.OpAskQuestion:    "Please login or sign up before posting a question.",
	services.OpAnswerQuestion: "Please login or sign up before posting a solution.",
	services.OpSubmitTicket:   "Please login or sign up before submitting a help desk ticket.",
}

var validationMessages = map[string]string{
	services.OpSignup:         "Please fill all fields.",
	services.OpAskQuestion:    "Please fill in both Title and Description.",
	services.OpAnswerQuestion: "Solution cannot be empty.",
	services.OpSubmitTicket:   "Please fill both subject and message.",
}

// ForumService is what the handler needs from the forum store
type ForumService interface {
	Snapshot() *aggregates.Forum
	Signup(ctx context.Context, cmd commands.SignupCommand) (entities.User, error)
	Login(ctx context.Context, cmd commands.LoginCommand) (entities.User, error)
	Logout(ctx context.Context) error
	AskQuestion(ctx context.Context, cmd commands.AskQuestionCommand) (entities.Question, error)
	AnswerQuestion(ctx context.Context, cmd commands.AnswerQuestionCommand) error
	ToggleSolved(ctx context.Context) error
	SelectQuestion(ctx context.Context, id string) error
	SubmitTicket(ctx context.Context, cmd commands.SubmitTicketCommand) (entities.Ticket, error)
}

// ForumHandler serves the forum page and its form submissions
type ForumHandler struct {
	service  ForumService
	renderer *views.Renderer
	logger   *zap.Logger
}

// NewForumHandler creates a new forum handler
func NewForumHandler(service ForumService, renderer *views.Renderer, logger *zap.Logger) *ForumHandler {
	return &ForumHandler{
		service:  service,
		renderer: renderer,
		logger:   logger,
	}
}

// Page handles GET /
func (h *ForumHandler) Page(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	h.render(w, r, http.StatusOK, pageState{
		tab:    query.Get("tab"),
		notice: notices[query.Get("notice")],
	})
}

// Views handles GET /api/v1/views
func (h *ForumHandler) Views(w http.ResponseWriter, r *http.Request) {
	view := h.renderer.Page(h.service.Snapshot(), r.URL.Query().Get("tab"))
	meta := common.NewMeta(chimiddleware.GetReqID(r.Context()), APIVersion)
	common.RespondJSONWithMeta(w, http.StatusOK, view, meta)
}

// Signup handles POST /signup
func (h *ForumHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r, views.TabSignup) {
		return
	}
	cmd := commands.SignupCommand{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	user, err := h.service.Signup(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, services.OpSignup, err, pageState{
			tab:   views.TabSignup,
			forms: views.FormValues{SignupName: cmd.Name, SignupEmail: cmd.Email},
		})
		return
	}

	h.logger.Info("User signed up", zap.String("user_id", user.ID))
	redirectWithNotice(w, r, NoticeSignup)
}

// Login handles POST /login
func (h *ForumHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r, views.TabLogin) {
		return
	}
	cmd := commands.LoginCommand{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	user, err := h.service.Login(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, services.OpLogin, err, pageState{
			tab:   views.TabLogin,
			forms: views.FormValues{LoginEmail: cmd.Email},
		})
		return
	}

	h.logger.Info("User logged in", zap.String("user_id", user.ID))
	redirectWithNotice(w, r, NoticeLogin)
}

// Logout handles POST /logout
func (h *ForumHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		h.fail(w, r, services.OpLogout, err, pageState{})
		return
	}
	redirectWithNotice(w, r, "")
}

// AskQuestion handles POST /questions
func (h *ForumHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r, "") {
		return
	}
	cmd := commands.AskQuestionCommand{
		Title: r.PostFormValue("title"),
		Body:  r.PostFormValue("body"),
	}

	question, err := h.service.AskQuestion(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, services.OpAskQuestion, err, pageState{
			forms: views.FormValues{QuestionTitle: cmd.Title, QuestionBody: cmd.Body},
		})
		return
	}

	h.logger.Info("Question posted", zap.String("question_id", question.ID))
	redirectWithNotice(w, r, "")
}

// AnswerQuestion handles POST /answers
func (h *ForumHandler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r, "") {
		return
	}
	cmd := commands.AnswerQuestionCommand{Text: r.PostFormValue("text")}

	if err := h.service.AnswerQuestion(r.Context(), cmd); err != nil {
		h.fail(w, r, services.OpAnswerQuestion, err, pageState{
			forms: views.FormValues{AnswerText: cmd.Text},
		})
		return
	}
	redirectWithNotice(w, r, "")
}

// ToggleSolved handles POST /questions/solved
func (h *ForumHandler) ToggleSolved(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ToggleSolved(r.Context()); err != nil {
		h.fail(w, r, services.OpToggleSolved, err, pageState{})
		return
	}
	redirectWithNotice(w, r, "")
}

// SelectQuestion handles POST /questions/{questionID}/select
func (h *ForumHandler) SelectQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := url.PathUnescape(chi.URLParam(r, "questionID"))
	if err != nil {
		h.render(w, r, http.StatusBadRequest, pageState{err: InvalidFormMessage})
		return
	}

	if err := h.service.SelectQuestion(r.Context(), questionID); err != nil {
		h.fail(w, r, services.OpSelectQuestion, err, pageState{})
		return
	}
	redirectWithNotice(w, r, "")
}

// SubmitTicket handles POST /tickets
func (h *ForumHandler) SubmitTicket(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r, "") {
		return
	}
	cmd := commands.SubmitTicketCommand{
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	}

	ticket, err := h.service.SubmitTicket(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, services.OpSubmitTicket, err, pageState{
			forms: views.FormValues{TicketSubject: cmd.Subject, TicketMessage: cmd.Message},
		})
		return
	}

	h.logger.Info("Help desk ticket submitted", zap.String("ticket_id", ticket.ID))
	redirectWithNotice(w, r, NoticeTicket)
}

type pageState struct {
	tab    string
	notice string
	err    string
	forms  views.FormValues
}

func (h *ForumHandler) parseForm(w http.ResponseWriter, r *http.Request, tab string) bool {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("Failed to parse form",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.render(w, r, http.StatusBadRequest, pageState{tab: tab, err: InvalidFormMessage})
		return false
	}
	return true
}

// fail re-renders the page with the message for err and the submitted input
func (h *ForumHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error, state pageState) {
	state.err = h.userMessage(op, err)
	h.render(w, r, pkgerrors.StatusCode(err), state)
}

func (h *ForumHandler) userMessage(op string, err error) string {
	switch {
	case pkgerrors.IsDuplicateEmail(err):
		return DuplicateEmailMessage
	case pkgerrors.IsInvalidCredentials(err):
		return InvalidCredentialsMessage
	case pkgerrors.IsNotAuthenticated(err):
		if msg, ok := notAuthenticatedMessages[op]; ok {
			return msg
		}
	case pkgerrors.IsValidation(err):
		if msg, ok := validationMessages[op]; ok {
			return msg
		}
	}

	h.logger.Error("Forum operation failed",
		zap.String("operation", op),
		zap.Error(err),
	)
	return StorageFailureMessage
}

func (h *ForumHandler) render(w http.ResponseWriter, r *http.Request, status int, state pageState) {
	data := views.PageData{
		View:   h.renderer.Page(h.service.Snapshot(), state.tab),
		Notice: state.notice,
		Error:  state.err,
		Forms:  state.forms,
	}

	var buf bytes.Buffer
	if err := views.RenderPage(&buf, data); err != nil {
		h.logger.Error("Failed to render page",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, notice string) {
	target := "/"
	if notice != "" {
		target += "?notice=" + notice
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
