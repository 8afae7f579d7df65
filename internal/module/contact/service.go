package contact

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simp-lee/kontakt/internal/domain"
	"github.com/simp-lee/kontakt/internal/metrics"
	"github.com/simp-lee/kontakt/internal/query"
)

// contactService implements domain.ContactService.
type contactService struct {
	repo domain.ContactRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewContactService creates a new ContactService with the given repository.
// A nil logger falls back to slog.Default().
func NewContactService(repo domain.ContactRepository, log *slog.Logger) domain.ContactService {
	if log == nil {
		log = slog.Default()
	}
	return &contactService{repo: repo, log: log, now: time.Now}
}

// CreateContact builds a contact from payload and persists it via the repository.
func (s *contactService) CreateContact(ctx context.Context, payload domain.SaveContactPayload) (*domain.Contact, error) {
	contact := domain.NewContact(normalizePayload(payload), s.now())

	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "contact created", slog.String("contact_id", contact.ID.String()))
	return contact, nil
}

// GetContact retrieves a contact by ID.
func (s *contactService) GetContact(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateContact replaces every mutable field of the contact with payload.
func (s *contactService) UpdateContact(ctx context.Context, id uuid.UUID, payload domain.SaveContactPayload) (*domain.Contact, error) {
	payload = normalizePayload(payload)

	contact, err := s.repo.Update(ctx, id, func(c *domain.Contact) {
		c.Apply(payload, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "contact updated",
		slog.String("contact_id", contact.ID.String()),
		slog.Int64("version", contact.Version),
	)
	return contact, nil
}

// DeleteContact removes a contact by ID and returns it.
func (s *contactService) DeleteContact(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	contact, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "contact deleted", slog.String("contact_id", id.String()))
	return contact, nil
}

// SearchContacts runs a structured search and returns one page of results
// together with the number of contacts matching before skip and limit.
func (s *contactService) SearchContacts(ctx context.Context, req domain.SearchContactsRequest) (*query.Results[domain.Contact], error) {
	q, criteria := buildQuery(req)
	s.log.DebugContext(ctx, "contact search",
		slog.Int("criteria", criteria),
		slog.String("filter", q.Filter.String()),
		slog.Int("sort_keys", len(q.Sort)),
		slog.Int("skip", q.Skip),
		slog.Int("limit", q.Limit),
	)

	if err := q.Filter.Validate(); err != nil {
		return nil, domain.NewAppError(domain.CodeValidation, "invalid search term", err)
	}

	res, err := query.Execute[domain.Contact](ctx, s.repo, q)
	if err != nil {
		metrics.ObserveSearch(0, err)
		return nil, err
	}

	metrics.ObserveSearch(res.Total, nil)
	return res, nil
}

// normalizePayload trims surrounding whitespace. Optional fields that are
// blank after trimming are stored as absent.
func normalizePayload(p domain.SaveContactPayload) domain.SaveContactPayload {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.EmailAddress = trimOptional(p.EmailAddress)
	p.PhoneNumber = trimOptional(p.PhoneNumber)
	p.Gender = trimOptional(p.Gender)
	p.Website = trimOptional(p.Website)
	return p
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
