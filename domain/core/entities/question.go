package entities

import "time"

// Question is a forum post. Solved is its only mutable field; answers only grow.
type Question struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	CreatedAt     int64    `json:"createdAt"`
	Solved        bool     `json:"solved"`
	AskedByUserID *string  `json:"askedByUserId"`
	Answers       []Answer `json:"answers"`
}

// Answer belongs to exactly one question and is never edited
type Answer struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	CreatedAt int64   `json:"createdAt"`
	UserID    *string `json:"userId"`
}

// NewQuestion creates an unsolved question with no answers
func NewQuestion(id, title, body string, createdAt time.Time, askedBy *string) Question {
	return Question{
		ID:            id,
		Title:         title,
		Body:          body,
		CreatedAt:     createdAt.UnixMilli(),
		Solved:        false,
		AskedByUserID: askedBy,
		Answers:       []Answer{},
	}
}

// NewAnswer creates an answer
func NewAnswer(id, text string, createdAt time.Time, userID *string) Answer {
	return Answer{
		ID:        id,
		Text:      text,
		CreatedAt: createdAt.UnixMilli(),
		UserID:    userID,
	}
}

// AddAnswer appends an answer to the end of the sequence
func (q *Question) AddAnswer(a Answer) {
	q.Answers = append(q.Answers, a)
}

// ToggleSolved flips the solved flag and returns the new value
func (q *Question) ToggleSolved() bool {
	q.Solved = !q.Solved
	return q.Solved
}

// AnswerCount returns the number of answers
func (q Question) AnswerCount() int {
	return len(q.Answers)
}

// HasAnswer reports whether an answer with id exists
func (q Question) HasAnswer(id string) bool {
	for _, a := range q.Answers {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (q Question) Clone() Question {
	c := q
	c.AskedByUserID = cloneRef(q.AskedByUserID)
	c.Answers = make([]Answer, len(q.Answers))
	for i, a := range q.Answers {
		a.UserID = cloneRef(a.UserID)
		c.Answers[i] = a
	}
	return c
}
