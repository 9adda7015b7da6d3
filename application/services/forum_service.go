package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"campusqa/application/commands"
	"campusqa/application/ports"
	"campusqa/domain/core/aggregates"
	"campusqa/domain/core/entities"
	"campusqa/domain/core/valueobjects"
	pkgerrors "campusqa/pkg/errors"

	"go.uber.org/zap"
)

// Operation names used for logging and metrics
const (
	OpSignup         = "signup"
	OpLogin          = "login"
	OpLogout         = "logout"
	OpAskQuestion    = "ask_question"
	OpAnswerQuestion = "answer_question"
	OpToggleSolved   = "toggle_solved"
	OpSelectQuestion = "select_question"
	OpSubmitTicket   = "submit_ticket"
)

// errNoChange lets a mutation finish without touching storage
var errNoChange = errors.New("no change")

// ForumService owns the in-memory forum and runs every operation on it.
//
// Each call is one turn: the service lock is held from the first read to the
// end of the save, so concurrent HTTP requests see the forum change one whole
// operation at a time. A mutation is applied in memory before it is saved and
// is not rolled back when the save fails.
type ForumService struct {
	mu       sync.Mutex
	forum    *aggregates.Forum
	repo     ports.StateRepository
	observer ports.MutationObserver
	newID    valueobjects.IDFunc
	now      func() time.Time
	logger   *zap.Logger
}

// Option customizes a ForumService
type Option func(*ForumService)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *ForumService) { s.now = now }
}

// WithIDFunc replaces valueobjects.NewID
func WithIDFunc(newID valueobjects.IDFunc) Option {
	return func(s *ForumService) { s.newID = newID }
}

// WithObserver reports every mutation to observer
func WithObserver(observer ports.MutationObserver) Option {
	return func(s *ForumService) { s.observer = observer }
}

// NewForumService loads the stored forum and selects the first question when
// nothing is selected yet.
func NewForumService(ctx context.Context, repo ports.StateRepository, logger *zap.Logger, opts ...Option) (*ForumService, error) {
	s := &ForumService{
		repo:     repo,
		observer: ports.NopObserver{},
		newID:    valueobjects.NewID,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	forum, err := repo.Load(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load forum state")
	}
	forum.SelectDefault()
	s.forum = forum

	logger.Info("Forum state loaded",
		zap.Int("users", len(forum.Users)),
		zap.Int("questions", len(forum.Questions)),
		zap.Int("tickets", len(forum.Tickets)),
		zap.Bool("loggedIn", forum.CurrentUser() != nil),
	)
	return s, nil
}

// Snapshot returns a deep copy of the forum for read-only projections
func (s *ForumService) Snapshot() *aggregates.Forum {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forum.Clone()
}

// CurrentUser returns a copy of the logged-in user
func (s *ForumService) CurrentUser() (entities.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.forum.CurrentUser(); u != nil {
		return *u, true
	}
	return entities.User{}, false
}

// Signup creates a user and makes it the session
func (s *ForumService) Signup(ctx context.Context, cmd commands.SignupCommand) (entities.User, error) {
	cmd.Normalize()
	var created entities.User

	err := s.mutate(ctx, OpSignup, func(f *aggregates.Forum) error {
		if err := cmd.Validate(); err != nil {
			return err
		}
		if f.UserByEmail(cmd.Email) != nil {
			return pkgerrors.NewDuplicateEmailError(cmd.Email)
		}

		created = entities.NewUser(s.uniqueID(f, valueobjects.CategoryUser), cmd.Name, cmd.Email, cmd.Password)
		f.Users = append(f.Users, created)
		f.CurrentUserID = entities.Ref(created.ID)
		return nil
	})
	return created, err
}

// Login makes the user matching email and password the session
func (s *ForumService) Login(ctx context.Context, cmd commands.LoginCommand) (entities.User, error) {
	cmd.Normalize()
	var user entities.User

	err := s.mutate(ctx, OpLogin, func(f *aggregates.Forum) error {
		match := f.UserByCredentials(cmd.Email, cmd.Password)
		if match == nil {
			return pkgerrors.NewInvalidCredentialsError()
		}
		user = *match
		f.CurrentUserID = entities.Ref(match.ID)
		return nil
	})
	return user, err
}

// Logout clears the session
func (s *ForumService) Logout(ctx context.Context) error {
	return s.mutate(ctx, OpLogout, func(f *aggregates.Forum) error {
		f.CurrentUserID = nil
		return nil
	})
}

// AskQuestion posts a question by the current user and selects it
func (s *ForumService) AskQuestion(ctx context.Context, cmd commands.AskQuestionCommand) (entities.Question, error) {
	cmd.Normalize()
	var created entities.Question

	err := s.mutate(ctx, OpAskQuestion, func(f *aggregates.Forum) error {
		user := f.CurrentUser()
		if user == nil {
			return pkgerrors.NewNotAuthenticatedError(OpAskQuestion)
		}
		if err := cmd.Validate(); err != nil {
			return err
		}

		created = entities.NewQuestion(
			s.uniqueID(f, valueobjects.CategoryQuestion),
			cmd.Title,
			cmd.Body,
			s.now(),
			entities.Ref(user.ID),
		)
		f.Questions = append(f.Questions, created)
		f.SelectedID = entities.Ref(created.ID)
		return nil
	})
	return created.Clone(), err
}

// AnswerQuestion appends an answer to the selected question.
// It does nothing when the selection does not resolve.
func (s *ForumService) AnswerQuestion(ctx context.Context, cmd commands.AnswerQuestionCommand) error {
	cmd.Normalize()

	return s.mutate(ctx, OpAnswerQuestion, func(f *aggregates.Forum) error {
		user := f.CurrentUser()
		if user == nil {
			return pkgerrors.NewNotAuthenticatedError(OpAnswerQuestion)
		}
		if err := cmd.Validate(); err != nil {
			return err
		}

		question := f.SelectedQuestion()
		if question == nil {
			return errNoChange
		}
		answerID := s.uniqueID(f, valueobjects.CategoryAnswer)
		question.AddAnswer(entities.NewAnswer(answerID, cmd.Text, s.now(), entities.Ref(user.ID)))
		return nil
	})
}

// ToggleSolved flips the solved flag of the selected question.
// It does nothing when the selection does not resolve.
func (s *ForumService) ToggleSolved(ctx context.Context) error {
	return s.mutate(ctx, OpToggleSolved, func(f *aggregates.Forum) error {
		question := f.SelectedQuestion()
		if question == nil {
			return errNoChange
		}
		question.ToggleSolved()
		return nil
	})
}

// SelectQuestion points the selection at id without checking it exists
func (s *ForumService) SelectQuestion(ctx context.Context, id string) error {
	return s.mutate(ctx, OpSelectQuestion, func(f *aggregates.Forum) error {
		f.SelectedID = entities.Ref(id)
		return nil
	})
}

// SubmitTicket files a help-desk ticket as the current user
func (s *ForumService) SubmitTicket(ctx context.Context, cmd commands.SubmitTicketCommand) (entities.Ticket, error) {
	cmd.Normalize()
	var created entities.Ticket

	err := s.mutate(ctx, OpSubmitTicket, func(f *aggregates.Forum) error {
		user := f.CurrentUser()
		if user == nil {
			return pkgerrors.NewNotAuthenticatedError(OpSubmitTicket)
		}
		if err := cmd.Validate(); err != nil {
			return err
		}

		created = entities.NewTicket(
			s.uniqueID(f, valueobjects.CategoryTicket),
			cmd.Subject,
			cmd.Message,
			s.now(),
			entities.Ref(user.ID),
		)
		f.Tickets = append(f.Tickets, created)
		return nil
	})
	return created.Clone(), err
}

// mutate runs apply as one turn and saves the forum when apply succeeds
func (s *ForumService) mutate(ctx context.Context, op string, apply func(*aggregates.Forum) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := apply(s.forum)
	if errors.Is(err, errNoChange) {
		s.logger.Debug("Forum mutation skipped", zap.String("operation", op))
		s.observer.ObserveMutation(op, nil)
		return nil
	}
	if err == nil {
		err = s.repo.Save(ctx, s.forum)
		if err != nil {
			s.logger.Error("Failed to persist forum state",
				zap.String("operation", op),
				zap.Error(err),
			)
		}
	}

	s.observer.ObserveMutation(op, err)
	if err != nil {
		return err
	}

	s.logger.Debug("Forum mutation applied", zap.String("operation", op))
	return nil
}

// uniqueID draws ids until one is unused in its category
func (s *ForumService) uniqueID(f *aggregates.Forum, category valueobjects.Category) string {
	for {
		id := s.newID(category)
		if !f.HasID(category, id) {
			return id
		}
		s.logger.Warn("Generated identifier collided, drawing again",
			zap.String("category", string(category)),
			zap.String("id", id),
		)
	}
}
