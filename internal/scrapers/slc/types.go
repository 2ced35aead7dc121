package slc

import (
	"errors"
	"fmt"
)

var (
	ErrMissingToken    = errors.New("missing login token")
	ErrElementNotFound = errors.New("element not found")
	ErrValueNotFound   = errors.New("value not found in element")
)

// Credentials are only ever sent to the login form, they are never
// reported or stored.
type Credentials struct {
	Username     string
	Password     string
	SecretAnswer string
}

// MissingTokenError is returned by Client.Login when the login page lacks
// one of the hidden form inputs the login POST requires.
type MissingTokenError struct {
	Token string
}

func (e *MissingTokenError) Error() string {
	return fmt.Sprintf("could not find %s in login page", e.Token)
}

func (e *MissingTokenError) Is(target error) bool {
	return target == ErrMissingToken
}

type LoginStep int

const (
	StepLoadLoginPage LoginStep = iota
	StepSubmitCredentials
	StepSubmitSecretAnswer
	StepComplete
)

func (s LoginStep) String() string {
	switch s {
	case StepLoadLoginPage:
		return "load login page"
	case StepSubmitCredentials:
		return "submit credentials"
	case StepSubmitSecretAnswer:
		return "submit secret answer"
	case StepComplete:
		return "complete"
	}
	return fmt.Sprintf("LoginStep(%d)", int(s))
}

// LoginResult is the furthest step a login reached, and the status code the
// portal answered that step with.
type LoginResult struct {
	Step       LoginStep
	StatusCode int
}

func (r LoginResult) Authenticated() bool {
	return r.Step == StepComplete
}

type Field string

const (
	FieldBalance          Field = "balance"
	FieldInterestRate     Field = "interest rate"
	FieldCurrentYear      Field = "current year"
	FieldSalaryRepayments Field = "salary repayments"
	FieldDirectRepayments Field = "direct repayments"
	FieldInterestAdded    Field = "interest added"
)

// Fields lists every summary field in the order they appear on the
// overview page.
var Fields = []Field{
	FieldBalance,
	FieldInterestRate,
	FieldCurrentYear,
	FieldSalaryRepayments,
	FieldDirectRepayments,
	FieldInterestAdded,
}

// Summary maps a field to its value, float64 for every field except
// FieldCurrentYear which is a string. Fields that could not be extracted
// are absent.
type Summary map[Field]any

func (s Summary) Float(field Field) (float64, bool) {
	value, ok := s[field].(float64)
	return value, ok
}

func (s Summary) Text(field Field) (string, bool) {
	value, ok := s[field].(string)
	return value, ok
}

type FieldError struct {
	Field Field
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e FieldError) Unwrap() error {
	return e.Err
}

type SummaryResult struct {
	StatusCode int
	Summary    Summary
	// Failures holds one entry per field that could not be extracted, it is
	// empty when the overview page did not load.
	Failures []FieldError
}

// Ok reports whether the overview page loaded.
func (r SummaryResult) Ok() bool {
	return r.StatusCode == 200
}

// Complete reports whether every field in Fields was extracted.
func (r SummaryResult) Complete() bool {
	return r.Ok() && len(r.Failures) == 0 && len(r.Summary) == len(Fields)
}
