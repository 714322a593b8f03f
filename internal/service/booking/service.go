// Package booking builds the public booking link of an organization and the
// data its anonymous booking page shows.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
	"github.com/jwalitptl/aesthiq-api/internal/service/tenant"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
)

const (
	DefaultQRSize = 256
	MinQRSize     = 128
	MaxQRSize     = 1024
)

// Link is the shareable booking URL of an organization.
type Link struct {
	URL  string `json:"url"`
	Slug string `json:"slug"`
}

type BookingServicer interface {
	Link(ctx context.Context, p *model.Principal, origin string) (*Link, error)
	QRCode(ctx context.Context, p *model.Principal, origin string, size int) ([]byte, error)
	PublicOrganization(ctx context.Context, slug string) (*model.PublicOrganization, error)
}

type Service struct {
	orgs      repository.OrganizationRepository
	services  repository.ServiceRepository
	locations repository.LocationRepository
	origin    string
	logger    zerolog.Logger
}

// NewService uses origin when the caller does not supply a trusted one.
func NewService(
	orgs repository.OrganizationRepository,
	services repository.ServiceRepository,
	locations repository.LocationRepository,
	origin string,
	logger zerolog.Logger,
) *Service {
	return &Service{
		orgs:      orgs,
		services:  services,
		locations: locations,
		origin:    strings.TrimRight(origin, "/"),
		logger:    logger.With().Str("component", "booking").Logger(),
	}
}

func (s *Service) Link(ctx context.Context, p *model.Principal, origin string) (*Link, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	org, err := s.orgs.GetByID(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("organization")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	origin = strings.TrimRight(origin, "/")
	if origin == "" {
		origin = s.origin
	}
	return &Link{URL: BookingURL(origin, org.Slug), Slug: org.Slug}, nil
}

// BookingURL is where patients book with an organization.
func BookingURL(origin, slug string) string {
	return fmt.Sprintf("%s/c/%s", origin, slug)
}

func (s *Service) QRCode(ctx context.Context, p *model.Principal, origin string, size int) ([]byte, error) {
	link, err := s.Link(ctx, p, origin)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(link.URL, qrcode.Medium, ClampQRSize(size))
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}

// ClampQRSize maps a requested edge length into the supported range; zero or
// negative selects the default.
func ClampQRSize(size int) int {
	switch {
	case size <= 0:
		return DefaultQRSize
	case size < MinQRSize:
		return MinQRSize
	case size > MaxQRSize:
		return MaxQRSize
	default:
		return size
	}
}

func (s *Service) PublicOrganization(ctx context.Context, slug string) (*model.PublicOrganization, error) {
	org, err := s.orgs.GetBySlug(ctx, strings.ToLower(slug))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("organization")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	services, err := s.services.List(ctx, org.ID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	locations, err := s.locations.List(ctx, org.ID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	out := &model.PublicOrganization{
		Name:      org.Name,
		Slug:      org.Slug,
		Services:  make([]model.Service, 0, len(services)),
		Locations: make([]model.Location, 0, len(locations)),
	}
	for _, svc := range services {
		out.Services = append(out.Services, *svc)
	}
	for _, loc := range locations {
		out.Locations = append(out.Locations, *loc)
	}
	return out, nil
}
