package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rsvp-collector/internal/logger"
	"rsvp-collector/internal/models"
)

// ErrInvalidRequest marks a submission missing required fields.
var ErrInvalidRequest = errors.New("invalid rsvp request")

type RSVPDBLayer interface {
	Insert(ctx context.Context, name, email, attend string, msg *string) (int64, error)
	ListAll(ctx context.Context) ([]models.GuestResponse, error)
	ExportAll(ctx context.Context) ([]models.GuestResponse, error)
	Query(ctx context.Context, filter models.Filter, sort models.SortKey, limit, offset int) ([]models.GuestResponse, int, error)
	Ping(ctx context.Context) error
}

// SubmissionPublisher is told about every stored response.
type SubmissionPublisher interface {
	PublishSubmitted(ctx context.Context, event models.SubmittedEvent) error
}

type RSVPService struct {
	DB        RSVPDBLayer
	Publisher SubmissionPublisher
	Logger    *logger.Logger
}

// NewRSVPService wires the service. publisher may be nil.
func NewRSVPService(db RSVPDBLayer, publisher SubmissionPublisher, log *logger.Logger) *RSVPService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RSVPService{DB: db, Publisher: publisher, Logger: log}
}

// Submit stores a response and returns its id. A publish failure is logged
// and does not fail the submission.
func (s *RSVPService) Submit(ctx context.Context, req models.RSVPRequest) (int64, error) {
	if missing := req.MissingFields(); len(missing) > 0 {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}

	id, err := s.DB.Insert(ctx, *req.Name, *req.Email, *req.Attend, req.Msg)
	if err != nil {
		return 0, fmt.Errorf("failed to save rsvp: %w", err)
	}
	s.Logger.LogRSVP("SUBMIT", id, fmt.Sprintf("attend=%s", *req.Attend))

	if s.Publisher != nil {
		event := models.SubmittedEvent{
			ID:     id,
			Name:   *req.Name,
			Email:  *req.Email,
			Attend: *req.Attend,
			Msg:    req.Msg,
		}
		if err := s.Publisher.PublishSubmitted(ctx, event); err != nil {
			s.Logger.Warn("RSVP", fmt.Sprintf("Failed to publish submission #%d: %v", id, err))
		}
	}

	return id, nil
}

// ListAll returns every response, newest first.
func (s *RSVPService) ListAll(ctx context.Context) ([]models.GuestResponse, error) {
	rows, err := s.DB.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	return rows, nil
}

// ExportAll returns every response in id order.
func (s *RSVPService) ExportAll(ctx context.Context) ([]models.GuestResponse, error) {
	rows, err := s.DB.ExportAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export rsvps: %w", err)
	}
	return rows, nil
}

// Dashboard runs the filtered, sorted and paginated query behind the HTML view.
func (s *RSVPService) Dashboard(ctx context.Context, q DashboardQuery) (*DashboardPage, error) {
	rows, total, err := s.DB.Query(ctx, q.Filter(), q.Sort, q.Limit(), q.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard page %d: %w", q.Page, err)
	}
	s.Logger.Debug("RSVP", fmt.Sprintf("Dashboard page=%d size=%d order=%s matched %d", q.Page, q.Size, q.Sort, total))
	return &DashboardPage{Query: q, Rows: rows, Total: total}, nil
}

func (s *RSVPService) Healthy(ctx context.Context) error {
	return s.DB.Ping(ctx)
}
