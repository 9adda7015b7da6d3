package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"campusqa/application/commands"
	"campusqa/domain/core/aggregates"
	"campusqa/domain/core/entities"
	"campusqa/domain/core/valueobjects"
	"campusqa/infrastructure/persistence"
	"campusqa/infrastructure/persistence/blobstore"
	pkgerrors "campusqa/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingRepo wraps a real repository and counts saves
type countingRepo struct {
	*persistence.StateRepository
	saves   int
	saveErr error
}

func (r *countingRepo) Save(ctx context.Context, f *aggregates.Forum) error {
	if r.saveErr != nil {
		return pkgerrors.NewDatabaseError("save state", r.saveErr)
	}
	r.saves++
	return r.StateRepository.Save(ctx, f)
}

type recordingObserver struct {
	ops []string
}

func (o *recordingObserver) ObserveMutation(op string, err error) {
	o.ops = append(o.ops, fmt.Sprintf("%s:%v", op, err == nil))
}

// fixture builds a service over an in-memory blob store with a ticking clock
type fixture struct {
	t       *testing.T
	store   *blobstore.MemoryStore
	repo    *countingRepo
	svc     *ForumService
	clock   time.Time
	seq     int
	observe *recordingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		t:       t,
		store:   blobstore.NewMemoryStore(),
		clock:   time.UnixMilli(1700000000000),
		observe: &recordingObserver{},
	}
	fx.repo = &countingRepo{StateRepository: persistence.NewStateRepository(fx.store, "", zap.NewNop())}
	fx.svc = fx.open()
	return fx
}

func (fx *fixture) open() *ForumService {
	svc, err := NewForumService(context.Background(), fx.repo, zap.NewNop(),
		WithClock(func() time.Time {
			fx.clock = fx.clock.Add(time.Second)
			return fx.clock
		}),
		WithIDFunc(func(c valueobjects.Category) string {
			fx.seq++
			return fmt.Sprintf("%s_%d", c, fx.seq)
		}),
		WithObserver(fx.observe),
	)
	require.NoError(fx.t, err)
	return svc
}

func (fx *fixture) signup(name, email, password string) entities.User {
	fx.t.Helper()
	u, err := fx.svc.Signup(context.Background(), commands.SignupCommand{Name: name, Email: email, Password: password})
	require.NoError(fx.t, err)
	return u
}

func (fx *fixture) ask(title, body string) entities.Question {
	fx.t.Helper()
	q, err := fx.svc.AskQuestion(context.Background(), commands.AskQuestionCommand{Title: title, Body: body})
	require.NoError(fx.t, err)
	return q
}

func TestSignupSetsSessionAndAllowsLogin(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for i, email := range []string{"ada@campus.edu", "bob@campus.edu", "cy@campus.edu"} {
		u := fx.signup(fmt.Sprintf("User %d", i), email, "pw")

		snap := fx.svc.Snapshot()
		require.NotNil(t, snap.CurrentUserID)
		assert.Equal(t, u.ID, *snap.CurrentUserID)
		assert.True(t, valueobjects.HasCategory(u.ID, valueobjects.CategoryUser))

		require.NoError(t, fx.svc.Logout(ctx))
		logged, err := fx.svc.Login(ctx, commands.LoginCommand{Email: email, Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, u.ID, logged.ID)
	}
}

func TestSignupStoresTrimmedLowercasedEmail(t *testing.T) {
	fx := newFixture(t)
	u := fx.signup("  Ada  ", "  Ada@Campus.EDU ", "pw")

	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "ada@campus.edu", u.Email)
}

func TestSignupDuplicateEmail(t *testing.T) {
	fx := newFixture(t)
	fx.signup("Ada", "ada@campus.edu", "pw")
	before := fx.svc.Snapshot().Users
	saves := fx.repo.saves

	_, err := fx.svc.Signup(context.Background(), commands.SignupCommand{Name: "Imposter", Email: "ADA@campus.edu", Password: "other"})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDuplicateEmail(err))
	assert.Equal(t, before, fx.svc.Snapshot().Users)
	assert.Equal(t, saves, fx.repo.saves, "failed signup must not persist")
}

func TestSignupValidation(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Signup(context.Background(), commands.SignupCommand{Name: "  ", Email: "a@b.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, fx.svc.Snapshot().Users)
}

func TestLoginCaseRules(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.signup("Ada", "A@B.com", "x")
	require.NoError(t, fx.svc.Logout(ctx))

	_, err := fx.svc.Login(ctx, commands.LoginCommand{Email: "a@b.com", Password: "x"})
	assert.NoError(t, err, "email is case-insensitive")

	require.NoError(t, fx.svc.Logout(ctx))
	_, err = fx.svc.Login(ctx, commands.LoginCommand{Email: "a@b.com", Password: "X"})
	require.Error(t, err, "password is case-sensitive")
	assert.True(t, pkgerrors.IsInvalidCredentials(err))

	_, ok := fx.svc.CurrentUser()
	assert.False(t, ok)
}

func TestLogoutClearsSessionUnconditionally(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.svc.Logout(ctx))
	assert.Equal(t, 1, fx.repo.saves)

	fx.signup("Ada", "ada@campus.edu", "pw")
	require.NoError(t, fx.svc.Logout(ctx))
	assert.Nil(t, fx.svc.Snapshot().CurrentUserID)
}

func TestAskQuestionRequiresSession(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.AskQuestion(context.Background(), commands.AskQuestionCommand{Title: "T", Body: "B"})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotAuthenticated(err))
	assert.Empty(t, fx.svc.Snapshot().Questions)
	assert.Equal(t, 0, fx.repo.saves)
}

func TestAskQuestionChecksSessionBeforeValidation(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.AskQuestion(context.Background(), commands.AskQuestionCommand{})
	assert.True(t, pkgerrors.IsNotAuthenticated(err))
}

func TestAskQuestionValidation(t *testing.T) {
	fx := newFixture(t)
	fx.signup("Ada", "ada@campus.edu", "pw")

	for _, cmd := range []commands.AskQuestionCommand{
		{Title: "", Body: "B"},
		{Title: "T", Body: "   "},
	} {
		_, err := fx.svc.AskQuestion(context.Background(), cmd)
		assert.True(t, pkgerrors.IsValidation(err))
	}
	assert.Empty(t, fx.svc.Snapshot().Questions)
}

func TestAskQuestionBecomesNewestAndSelected(t *testing.T) {
	fx := newFixture(t)
	u := fx.signup("Ada", "ada@campus.edu", "pw")
	fx.ask("First", "body")
	q := fx.ask("T", "B")

	snap := fx.svc.Snapshot()
	newest := snap.QuestionsByRecency()[0]
	assert.Equal(t, "T", newest.Title)
	assert.Equal(t, u.Name, snap.AuthorName(newest.AskedByUserID))
	assert.Equal(t, 0, newest.AnswerCount())
	assert.False(t, newest.Solved)
	require.NotNil(t, snap.SelectedID)
	assert.Equal(t, q.ID, *snap.SelectedID)
}

func TestAnswerQuestionAppendsInCallOrder(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.signup("Ada", "ada@campus.edu", "pw")
	q := fx.ask("T", "B")

	texts := []string{"one", "two", "three", "four"}
	for _, text := range texts {
		require.NoError(t, fx.svc.AnswerQuestion(ctx, commands.AnswerQuestionCommand{Text: "  " + text + " "}))
	}

	got := fx.svc.Snapshot().QuestionByID(q.ID)
	require.NotNil(t, got)
	require.Len(t, got.Answers, len(texts))
	for i, text := range texts {
		assert.Equal(t, text, got.Answers[i].Text)
		assert.True(t, valueobjects.HasCategory(got.Answers[i].ID, valueobjects.CategoryAnswer))
	}
}

func TestAnswerQuestionErrorsAndNoop(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	err := fx.svc.AnswerQuestion(ctx, commands.AnswerQuestionCommand{Text: "hi"})
	assert.True(t, pkgerrors.IsNotAuthenticated(err))

	fx.signup("Ada", "ada@campus.edu", "pw")
	err = fx.svc.AnswerQuestion(ctx, commands.AnswerQuestionCommand{Text: "  "})
	assert.True(t, pkgerrors.IsValidation(err))

	saves := fx.repo.saves
	require.NoError(t, fx.svc.AnswerQuestion(ctx, commands.AnswerQuestionCommand{Text: "hi"}), "no selection is a silent no-op")
	assert.Equal(t, saves, fx.repo.saves)
}

func TestToggleSolvedIsItsOwnInverse(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.signup("Ada", "ada@campus.edu", "pw")
	q := fx.ask("T", "B")

	require.NoError(t, fx.svc.ToggleSolved(ctx))
	assert.True(t, fx.svc.Snapshot().QuestionByID(q.ID).Solved)
	require.NoError(t, fx.svc.ToggleSolved(ctx))
	assert.False(t, fx.svc.Snapshot().QuestionByID(q.ID).Solved)
}

func TestToggleSolvedWithoutSelectionIsNoop(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.svc.SelectQuestion(ctx, "q_missing"))
	saves := fx.repo.saves
	require.NoError(t, fx.svc.ToggleSolved(ctx))
	assert.Equal(t, saves, fx.repo.saves)
}

func TestSelectQuestionIsUnchecked(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.svc.SelectQuestion(context.Background(), "q_does_not_exist"))
	snap := fx.svc.Snapshot()
	assert.Equal(t, "q_does_not_exist", entities.Deref(snap.SelectedID))
	assert.Nil(t, snap.SelectedQuestion())
}

func TestSubmitTicket(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.SubmitTicket(ctx, commands.SubmitTicketCommand{Subject: "Wifi", Message: "Down"})
	assert.True(t, pkgerrors.IsNotAuthenticated(err))

	u := fx.signup("Ada", "ada@campus.edu", "pw")
	_, err = fx.svc.SubmitTicket(ctx, commands.SubmitTicketCommand{Subject: "Wifi", Message: "  "})
	assert.True(t, pkgerrors.IsValidation(err))

	ticket, err := fx.svc.SubmitTicket(ctx, commands.SubmitTicketCommand{Subject: " Wifi ", Message: " Down "})
	require.NoError(t, err)
	assert.Equal(t, "Wifi", ticket.Subject)
	assert.Equal(t, "Down", ticket.Message)
	assert.Equal(t, u.ID, entities.Deref(ticket.UserID))
	assert.Len(t, fx.svc.Snapshot().Tickets, 1)
}

func TestStatePersistsAcrossRestarts(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.signup("Ada", "ada@campus.edu", "pw")
	fx.ask("T", "B")
	require.NoError(t, fx.svc.AnswerQuestion(ctx, commands.AnswerQuestionCommand{Text: "A"}))
	_, err := fx.svc.SubmitTicket(ctx, commands.SubmitTicketCommand{Subject: "S", Message: "M"})
	require.NoError(t, err)

	before := fx.svc.Snapshot()
	reopened := fx.open()
	assert.Equal(t, before, reopened.Snapshot())
}

func TestLoadSelectsFirstStoredQuestion(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	blob := `{"questions":[
		{"id":"q_first","title":"Old","body":"b","createdAt":1,"solved":false,"askedByUserId":null,"answers":[]},
		{"id":"q_second","title":"New","body":"b","createdAt":99,"solved":false,"askedByUserId":null,"answers":[]}
	],"selectedId":null}`
	require.NoError(t, fx.store.Set(ctx, persistence.DefaultStateKey, []byte(blob)))

	svc := fx.open()
	snap := svc.Snapshot()
	require.NotNil(t, snap.SelectedID)
	assert.Equal(t, "q_first", *snap.SelectedID)
	assert.Equal(t, "q_second", snap.QuestionsByRecency()[0].ID)
}

func TestSaveFailureLeavesMemoryAhead(t *testing.T) {
	fx := newFixture(t)
	fx.repo.saveErr = errors.New("quota exceeded")

	_, err := fx.svc.Signup(context.Background(), commands.SignupCommand{Name: "Ada", Email: "ada@campus.edu", Password: "pw"})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDatabase(err))
	assert.Len(t, fx.svc.Snapshot().Users, 1, "no rollback")
	assert.Contains(t, fx.observe.ops, "signup:false")
}

func TestUniqueIDRedrawsOnCollision(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.signup("Ada", "ada@campus.edu", "pw")

	draws := []string{"q_dup", "q_dup", "q_fresh"}
	fx.svc.newID = func(valueobjects.Category) string {
		id := draws[0]
		draws = draws[1:]
		return id
	}

	first, err := fx.svc.AskQuestion(ctx, commands.AskQuestionCommand{Title: "A", Body: "B"})
	require.NoError(t, err)
	second, err := fx.svc.AskQuestion(ctx, commands.AskQuestionCommand{Title: "C", Body: "D"})
	require.NoError(t, err)

	assert.Equal(t, "q_dup", first.ID)
	assert.Equal(t, "q_fresh", second.ID)
}

func TestObserverSeesEveryMutation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, _ = fx.svc.Login(ctx, commands.LoginCommand{Email: "x", Password: "y"})
	require.NoError(t, fx.svc.Logout(ctx))

	assert.Equal(t, []string{"login:false", "logout:true"}, fx.observe.ops)
}

type failingLoadRepo struct {
	countingRepo
}

func (r *failingLoadRepo) Load(ctx context.Context) (*aggregates.Forum, error) {
	return nil, pkgerrors.NewDatabaseError("get blob", errors.New("connection reset"))
}

func TestNewForumServiceReportsLoadFailure(t *testing.T) {
	_, err := NewForumService(context.Background(), &failingLoadRepo{}, zap.NewNop())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDatabase(err))
	assert.Equal(t, "load forum state: storage operation 'get blob' failed", pkgerrors.GetAppError(err).Message)
	assert.Contains(t, err.Error(), "connection reset")
}
