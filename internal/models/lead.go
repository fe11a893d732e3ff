package models

import (
	"errors"
	"time"
)

type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "new"
	LeadStatusInProgress LeadStatus = "in_progress"
	LeadStatusCompleted  LeadStatus = "completed"
)

var ErrInvalidLeadStatus = errors.New("invalid lead status")

func ParseLeadStatus(s string) (LeadStatus, error) {
	switch LeadStatus(s) {
	case LeadStatusNew, LeadStatusInProgress, LeadStatusCompleted:
		return LeadStatus(s), nil
	}
	return "", ErrInvalidLeadStatus
}

// Application is an admission enquiry submitted from the public site.
type Application struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	DateOfBirth     string
	Gender          string
	Nationality     string
	Address         string
	City            string
	State           string
	ZipCode         string
	Country         string
	ProgramType     string
	ProgramInterest string
	Intake          string
	LastSchool      string
	LastDegree      string
	GraduationYear  string
	Percentage      string
	ExtraCurricular string
	WhyJoin         string
	Status          LeadStatus
	SubmittedAt     time.Time
	UpdatedAt       *time.Time
}

// Contact is a message from the public contact form.
type Contact struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Subject     string
	Message     string
	Status      LeadStatus
	SubmittedAt time.Time
	UpdatedAt   *time.Time
}

// CampusVisit is a request to tour the campus.
type CampusVisit struct {
	ID              string
	FullName        string
	Email           string
	Phone           string
	ProgramInterest string
	VisitDate       string
	VisitTime       string
	Status          LeadStatus
	SubmittedAt     time.Time
	UpdatedAt       *time.Time
}

// LeadFilter narrows admin lead listings. Window is one of the preset
// ranges; an explicit From/To pair takes precedence over it.
type LeadFilter struct {
	Window string // "7days", "30days", "90days", "yearly", "all"
	From   *time.Time
	To     *time.Time
	Search string
	Limit  int
	Offset int
}

// Range resolves the filter to a concrete half-open interval [start, end).
func (f LeadFilter) Range(now time.Time) (time.Time, time.Time) {
	end := now
	if f.To != nil {
		end = f.To.Add(24*time.Hour - time.Nanosecond)
	}

	if f.From != nil {
		return *f.From, end
	}

	switch f.Window {
	case "7days":
		return now.AddDate(0, 0, -7), end
	case "30days":
		return now.AddDate(0, 0, -30), end
	case "90days":
		return now.AddDate(0, 0, -90), end
	case "yearly":
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), end
	default:
		return time.Time{}, end
	}
}
