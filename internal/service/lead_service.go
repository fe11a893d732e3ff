package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"eduhub/api/internal/ids"
	"eduhub/api/internal/models"
)

// The lead stores are consumed through narrow interfaces so the service
// can be exercised without a database.

type ApplicationStore interface {
	Create(ctx context.Context, app models.Application) error
	List(ctx context.Context, filter models.LeadFilter, now time.Time) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error
}

type ContactStore interface {
	Create(ctx context.Context, contact models.Contact) error
	List(ctx context.Context, filter models.LeadFilter, now time.Time) ([]models.Contact, error)
	UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error
}

type VisitStore interface {
	Create(ctx context.Context, visit models.CampusVisit) error
	List(ctx context.Context, filter models.LeadFilter, now time.Time) ([]models.CampusVisit, error)
	UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error
}

// LeadService owns intake and triage of the three lead kinds. Every
// submission enters with status "new" and a server-side timestamp.
type LeadService struct {
	applications ApplicationStore
	contacts     ContactStore
	visits       VisitStore
	log          zerolog.Logger
	now          func() time.Time
}

func NewLeadService(applications ApplicationStore, contacts ContactStore, visits VisitStore, log zerolog.Logger) *LeadService {
	return &LeadService{
		applications: applications,
		contacts:     contacts,
		visits:       visits,
		log:          log,
		now:          time.Now,
	}
}

func (s *LeadService) SubmitApplication(ctx context.Context, app models.Application) (models.Application, error) {
	app.ID = ids.New()
	app.Status = models.LeadStatusNew
	app.SubmittedAt = s.now().UTC()
	app.UpdatedAt = nil

	if err := s.applications.Create(ctx, app); err != nil {
		return models.Application{}, fmt.Errorf("save application: %w", err)
	}
	s.log.Info().Str("lead_id", app.ID).Str("email", app.Email).Msg("application received")
	return app, nil
}

func (s *LeadService) SubmitContact(ctx context.Context, contact models.Contact) (models.Contact, error) {
	contact.ID = ids.New()
	contact.Status = models.LeadStatusNew
	contact.SubmittedAt = s.now().UTC()
	contact.UpdatedAt = nil

	if err := s.contacts.Create(ctx, contact); err != nil {
		return models.Contact{}, fmt.Errorf("save contact: %w", err)
	}
	s.log.Info().Str("lead_id", contact.ID).Str("email", contact.Email).Msg("contact message received")
	return contact, nil
}

func (s *LeadService) SubmitVisit(ctx context.Context, visit models.CampusVisit) (models.CampusVisit, error) {
	visit.ID = ids.New()
	visit.Status = models.LeadStatusNew
	visit.SubmittedAt = s.now().UTC()
	visit.UpdatedAt = nil

	if err := s.visits.Create(ctx, visit); err != nil {
		return models.CampusVisit{}, fmt.Errorf("save campus visit: %w", err)
	}
	s.log.Info().Str("lead_id", visit.ID).Str("email", visit.Email).Msg("campus visit requested")
	return visit, nil
}

func (s *LeadService) ListApplications(ctx context.Context, filter models.LeadFilter) ([]models.Application, error) {
	return s.applications.List(ctx, filter, s.now())
}

func (s *LeadService) ListContacts(ctx context.Context, filter models.LeadFilter) ([]models.Contact, error) {
	return s.contacts.List(ctx, filter, s.now())
}

func (s *LeadService) ListVisits(ctx context.Context, filter models.LeadFilter) ([]models.CampusVisit, error) {
	return s.visits.List(ctx, filter, s.now())
}

func (s *LeadService) UpdateApplicationStatus(ctx context.Context, id string, status models.LeadStatus) error {
	return s.applications.UpdateStatus(ctx, id, status)
}

func (s *LeadService) UpdateContactStatus(ctx context.Context, id string, status models.LeadStatus) error {
	return s.contacts.UpdateStatus(ctx, id, status)
}

func (s *LeadService) UpdateVisitStatus(ctx context.Context, id string, status models.LeadStatus) error {
	return s.visits.UpdateStatus(ctx, id, status)
}
