package commands

import (
	"strings"

	"campusqa/pkg/utils"
)

// Every command trims its fields in Normalize before Validate runs,
// so whitespace-only input fails the required checks.

// SignupCommand registers a new user and logs them in
type SignupCommand struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Normalize trims every field and lowercases the email
func (c *SignupCommand) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = NormalizeEmail(c.Email)
	c.Password = strings.TrimSpace(c.Password)
}

// Validate checks required fields
func (c SignupCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// LoginCommand starts a session for an existing user.
// It has no required-field rules: an empty email simply matches nobody.
type LoginCommand struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims both fields and lowercases the email
func (c *LoginCommand) Normalize() {
	c.Email = NormalizeEmail(c.Email)
	c.Password = strings.TrimSpace(c.Password)
}

// AskQuestionCommand posts a question as the current user
type AskQuestionCommand struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

// Normalize trims both fields
func (c *AskQuestionCommand) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Body = strings.TrimSpace(c.Body)
}

// Validate checks required fields
func (c AskQuestionCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// AnswerQuestionCommand answers the selected question
type AnswerQuestionCommand struct {
	Text string `json:"text" validate:"required"`
}

// Normalize trims the text
func (c *AnswerQuestionCommand) Normalize() {
	c.Text = strings.TrimSpace(c.Text)
}

// Validate checks required fields
func (c AnswerQuestionCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SubmitTicketCommand files a help-desk ticket
type SubmitTicketCommand struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// Normalize trims both fields
func (c *SubmitTicketCommand) Normalize() {
	c.Subject = strings.TrimSpace(c.Subject)
	c.Message = strings.TrimSpace(c.Message)
}

// Validate checks required fields
func (c SubmitTicketCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// NormalizeEmail trims and lowercases an email for storage and comparison
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
