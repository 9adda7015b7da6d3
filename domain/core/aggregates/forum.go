package aggregates

import (
	"sort"

	"campusqa/domain/core/entities"
	"campusqa/domain/core/valueobjects"
)

const (
	// UnknownUserName is shown when a user reference no longer resolves
	UnknownUserName = "Unknown"
	// AnonymousUserName is shown when content carries no user reference
	AnonymousUserName = "Anonymous"
)

// Forum is the whole application state graph. Its JSON form is the persisted blob.
//
// The forum exclusively owns every entity; other components refer to
// entities by id only. Lookups are linear scans over insertion-ordered slices.
type Forum struct {
	Users         []entities.User     `json:"users"`
	CurrentUserID *string             `json:"currentUserId"`
	Questions     []entities.Question `json:"questions"`
	SelectedID    *string             `json:"selectedId"`
	Tickets       []entities.Ticket   `json:"tickets"`
}

// NewForum returns an empty forum
func NewForum() *Forum {
	return &Forum{
		Users:     []entities.User{},
		Questions: []entities.Question{},
		Tickets:   []entities.Ticket{},
	}
}

// Normalize replaces every missing field with its empty default.
// Each field is handled independently so partially shaped data still loads.
func (f *Forum) Normalize() {
	if f.Users == nil {
		f.Users = []entities.User{}
	}
	if f.Questions == nil {
		f.Questions = []entities.Question{}
	}
	if f.Tickets == nil {
		f.Tickets = []entities.Ticket{}
	}
	f.CurrentUserID = entities.Ref(entities.Deref(f.CurrentUserID))
	f.SelectedID = entities.Ref(entities.Deref(f.SelectedID))

	for i := range f.Questions {
		if f.Questions[i].Answers == nil {
			f.Questions[i].Answers = []entities.Answer{}
		}
	}
}

// SelectDefault points an empty selection at the first stored question.
// Stored order, not recency, decides.
func (f *Forum) SelectDefault() {
	if f.SelectedID == nil && len(f.Questions) > 0 {
		f.SelectedID = entities.Ref(f.Questions[0].ID)
	}
}

// CurrentUser returns the logged-in user, or nil when the session is empty or dangling
func (f *Forum) CurrentUser() *entities.User {
	if f.CurrentUserID == nil {
		return nil
	}
	return f.UserByID(*f.CurrentUserID)
}

// UserByID finds a user by id
func (f *Forum) UserByID(id string) *entities.User {
	for i := range f.Users {
		if f.Users[i].ID == id {
			return &f.Users[i]
		}
	}
	return nil
}

// UserByEmail finds a user by an already lowercased email
func (f *Forum) UserByEmail(email string) *entities.User {
	for i := range f.Users {
		if f.Users[i].HasEmail(email) {
			return &f.Users[i]
		}
	}
	return nil
}

// UserByCredentials finds the user matching both email and password
func (f *Forum) UserByCredentials(email, password string) *entities.User {
	for i := range f.Users {
		if f.Users[i].Matches(email, password) {
			return &f.Users[i]
		}
	}
	return nil
}

// UserName returns the display name for id, or "Unknown"
func (f *Forum) UserName(id string) string {
	if u := f.UserByID(id); u != nil {
		return u.Name
	}
	return UnknownUserName
}

// AuthorName resolves a nullable user reference: "Anonymous" when nil, otherwise UserName
func (f *Forum) AuthorName(ref *string) string {
	if ref == nil {
		return AnonymousUserName
	}
	return f.UserName(*ref)
}

// QuestionByID finds a question by id. The pointer is valid until the next append.
func (f *Forum) QuestionByID(id string) *entities.Question {
	for i := range f.Questions {
		if f.Questions[i].ID == id {
			return &f.Questions[i]
		}
	}
	return nil
}

// SelectedQuestion resolves the selection pointer
func (f *Forum) SelectedQuestion() *entities.Question {
	if f.SelectedID == nil {
		return nil
	}
	return f.QuestionByID(*f.SelectedID)
}

// IsSelected reports whether id is the current selection
func (f *Forum) IsSelected(id string) bool {
	return f.SelectedID != nil && *f.SelectedID == id
}

// QuestionsByRecency returns the questions newest first; ties keep stored order
func (f *Forum) QuestionsByRecency() []entities.Question {
	items := make([]entities.Question, len(f.Questions))
	copy(items, f.Questions)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
	return items
}

// TicketsByRecency returns the tickets newest first; ties keep stored order
func (f *Forum) TicketsByRecency() []entities.Ticket {
	items := make([]entities.Ticket, len(f.Tickets))
	copy(items, f.Tickets)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
	return items
}

// HasID reports whether id is already taken within its category
func (f *Forum) HasID(category valueobjects.Category, id string) bool {
	switch category {
	case valueobjects.CategoryUser:
		return f.UserByID(id) != nil
	case valueobjects.CategoryQuestion:
		return f.QuestionByID(id) != nil
	case valueobjects.CategoryAnswer:
		for _, q := range f.Questions {
			if q.HasAnswer(id) {
				return true
			}
		}
		return false
	case valueobjects.CategoryTicket:
		for _, t := range f.Tickets {
			if t.ID == id {
				return true
			}
		}
		return false
	}
	return false
}

// Clone returns a deep copy that shares nothing with f
func (f *Forum) Clone() *Forum {
	c := &Forum{
		Users:         make([]entities.User, len(f.Users)),
		CurrentUserID: entities.Ref(entities.Deref(f.CurrentUserID)),
		Questions:     make([]entities.Question, len(f.Questions)),
		SelectedID:    entities.Ref(entities.Deref(f.SelectedID)),
		Tickets:       make([]entities.Ticket, len(f.Tickets)),
	}
	copy(c.Users, f.Users)
	for i, q := range f.Questions {
		c.Questions[i] = q.Clone()
	}
	for i, t := range f.Tickets {
		c.Tickets[i] = t.Clone()
	}
	return c
}
