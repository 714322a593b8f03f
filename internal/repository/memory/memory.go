// Package memory keeps every repository in process memory. It backs unit
// tests and local tooling that run without Postgres or Redis.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
)

// Store holds all rows behind a single lock.
type Store struct {
	mu              sync.RWMutex
	users           map[uuid.UUID]model.User
	organizations   map[uuid.UUID]model.Organization
	plans           map[uuid.UUID]model.SubscriptionPlan
	locations       map[uuid.UUID]model.Location
	services        map[uuid.UUID]model.Service
	membershipTiers map[uuid.UUID]model.MembershipTier
	appointments    map[uuid.UUID]model.Appointment
	stripeAccounts  map[uuid.UUID]model.StripeAccount
	outbox          []*model.OutboxEvent
	sessions        map[string]time.Time
}

func NewStore() *Store {
	return &Store{
		users:           map[uuid.UUID]model.User{},
		organizations:   map[uuid.UUID]model.Organization{},
		plans:           map[uuid.UUID]model.SubscriptionPlan{},
		locations:       map[uuid.UUID]model.Location{},
		services:        map[uuid.UUID]model.Service{},
		membershipTiers: map[uuid.UUID]model.MembershipTier{},
		appointments:    map[uuid.UUID]model.Appointment{},
		stripeAccounts:  map[uuid.UUID]model.StripeAccount{},
		sessions:        map[string]time.Time{},
	}
}

func (s *Store) Users() repository.UserRepository                 { return userRepo{s} }
func (s *Store) Organizations() repository.OrganizationRepository { return orgRepo{s} }
func (s *Store) Plans() repository.PlanRepository                 { return planRepo{s} }
func (s *Store) Locations() repository.LocationRepository         { return locationRepo{s} }
func (s *Store) Services() repository.ServiceRepository           { return serviceRepo{s} }
func (s *Store) MembershipTiers() repository.MembershipTierRepository {
	return tierRepo{s}
}
func (s *Store) Appointments() repository.AppointmentRepository     { return appointmentRepo{s} }
func (s *Store) StripeAccounts() repository.StripeAccountRepository { return stripeRepo{s} }
func (s *Store) Outbox() repository.OutboxRepository                { return outboxRepo{s} }
func (s *Store) Sessions() *SessionStore                            { return &SessionStore{s} }

// Events returns the types of all outbox events in insertion order.
func (s *Store) Events() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	types := make([]string, 0, len(s.outbox))
	for _, e := range s.outbox {
		types = append(types, e.EventType)
	}
	return types
}

// OutboxEvents returns copies of the stored outbox rows.
func (s *Store) OutboxEvents() []model.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.OutboxEvent, 0, len(s.outbox))
	for _, e := range s.outbox {
		out = append(out, *e)
	}
	return out
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertUser(user)
}

func (s *Store) insertUser(user *model.User) error {
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByLogin(_ context.Context, login string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == strings.ToLower(login) || u.Username == login {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) matching(filter model.UserFilter) []*model.User {
	out := []*model.User{}
	for _, u := range r.s.users {
		if u.OrganizationID == nil || *u.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out
}

func (r userRepo) List(_ context.Context, filter model.UserFilter) ([]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.matching(filter), nil
}

func (r userRepo) Count(_ context.Context, filter model.UserFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.matching(filter)), nil
}

func (r userRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLoginAt = &at
	r.s.users[id] = u
	return nil
}

func (r userRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	r.s.users[id] = u
	return nil
}

type orgRepo struct{ s *Store }

func (r orgRepo) Create(_ context.Context, org *model.Organization, owner *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.organizations {
		if o.Slug == org.Slug {
			return repository.ErrDuplicate
		}
	}
	if owner != nil {
		owner.OrganizationID = &org.ID
		if err := r.s.insertUser(owner); err != nil {
			return err
		}
	}
	r.s.organizations[org.ID] = *org
	return nil
}

func (r orgRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.organizations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r orgRepo) GetBySlug(_ context.Context, slug string) (*model.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, o := range r.s.organizations {
		if o.Slug == slug {
			o := o
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r orgRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.GetBySlug(ctx, slug)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r orgRepo) List(_ context.Context) ([]*model.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Organization{}
	for _, o := range r.s.organizations {
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r orgRepo) UpdateSubscription(_ context.Context, org *model.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.organizations[org.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.SubscriptionPlanID = org.SubscriptionPlanID
	stored.SubscriptionStatus = org.SubscriptionStatus
	stored.UpdatedAt = time.Now().UTC()
	r.s.organizations[org.ID] = stored
	return nil
}

type planRepo struct{ s *Store }

func (r planRepo) Create(_ context.Context, plan *model.SubscriptionPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.plans[plan.ID] = *plan
	return nil
}

func (r planRepo) GetByID(_ context.Context, id uuid.UUID) (*model.SubscriptionPlan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r planRepo) ListActive(_ context.Context) ([]*model.SubscriptionPlan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.SubscriptionPlan{}
	for _, p := range r.s.plans {
		if p.IsActive {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthlyPrice < out[j].MonthlyPrice })
	return out, nil
}

func (r planRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.plans), nil
}

type locationRepo struct{ s *Store }

func (r locationRepo) Create(_ context.Context, location *model.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.locations {
		if l.OrganizationID == location.OrganizationID && l.Slug == location.Slug {
			return repository.ErrDuplicate
		}
	}
	r.s.locations[location.ID] = *location
	return nil
}

func (r locationRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*model.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok || l.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r locationRepo) List(_ context.Context, orgID uuid.UUID, activeOnly bool) ([]*model.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Location{}
	for _, l := range r.s.locations {
		if l.OrganizationID == orgID && (!activeOnly || l.IsActive) {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r locationRepo) Count(ctx context.Context, orgID uuid.UUID) (int, error) {
	list, _ := r.List(ctx, orgID, false)
	return len(list), nil
}

type serviceRepo struct{ s *Store }

func (r serviceRepo) Create(_ context.Context, service *model.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.services[service.ID] = *service
	return nil
}

func (r serviceRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*model.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	svc, ok := r.s.services[id]
	if !ok || svc.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	return &svc, nil
}

func (r serviceRepo) List(_ context.Context, orgID uuid.UUID, activeOnly bool) ([]*model.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.Service{}
	for _, svc := range r.s.services {
		if svc.OrganizationID == orgID && (!activeOnly || svc.IsActive) {
			svc := svc
			out = append(out, &svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type tierRepo struct{ s *Store }

func (r tierRepo) Create(_ context.Context, tier *model.MembershipTier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.membershipTiers[tier.ID] = *tier
	return nil
}

func (r tierRepo) List(_ context.Context, orgID uuid.UUID, activeOnly bool) ([]*model.MembershipTier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.MembershipTier{}
	for _, t := range r.s.membershipTiers {
		if t.OrganizationID == orgID && (!activeOnly || t.IsActive) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthlyPrice < out[j].MonthlyPrice })
	return out, nil
}

type appointmentRepo struct{ s *Store }

func (r appointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.appointments[a.ID] = *a
	return nil
}

func (r appointmentRepo) List(_ context.Context, f model.AppointmentFilter) ([]*model.AppointmentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*model.AppointmentView{}
	for _, a := range r.s.appointments {
		switch {
		case a.OrganizationID != f.OrganizationID,
			f.ClientID != nil && a.ClientID != *f.ClientID,
			f.LocationID != nil && a.LocationID != *f.LocationID,
			f.Status != "" && a.Status != f.Status,
			f.From != nil && a.StartTime.Before(*f.From),
			f.To != nil && !a.StartTime.Before(*f.To):
			continue
		}
		view := &model.AppointmentView{Appointment: a}
		if svc, ok := r.s.services[a.ServiceID]; ok {
			view.ServiceName = svc.Name
		}
		if staff, ok := r.s.users[a.StaffID]; ok {
			view.StaffName = staff.FullName()
		}
		if client, ok := r.s.users[a.ClientID]; ok {
			view.ClientName = client.FullName()
		}
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

type stripeRepo struct{ s *Store }

func (r stripeRepo) GetByOrganization(_ context.Context, orgID uuid.UUID) (*model.StripeAccount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.stripeAccounts[orgID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r stripeRepo) GetByStripeID(_ context.Context, stripeAccountID string) (*model.StripeAccount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.stripeAccounts {
		if a.StripeAccountID == stripeAccountID {
			a := a
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r stripeRepo) Upsert(_ context.Context, a *model.StripeAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	r.s.stripeAccounts[a.OrganizationID] = *a
	return nil
}

type outboxRepo struct{ s *Store }

func (r outboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now().UTC()
	event.UpdatedAt = event.CreatedAt
	copied := *event
	r.s.outbox = append(r.s.outbox, &copied)
	return nil
}

func (r outboxRepo) ClaimPending(_ context.Context, limit int, lease time.Duration) ([]*model.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	out := []*model.OutboxEvent{}
	for _, e := range r.s.outbox {
		if len(out) >= limit {
			break
		}
		if e.Status != model.OutboxStatusPending || (e.RetryAt != nil && e.RetryAt.After(now)) {
			continue
		}
		until := now.Add(lease)
		e.RetryAt = &until
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (r outboxRepo) find(id uuid.UUID) *model.OutboxEvent {
	for _, e := range r.s.outbox {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (r outboxRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e := r.find(id)
	if e == nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	e.Status = model.OutboxStatusProcessed
	e.ProcessedAt = &now
	e.RetryAt = nil
	e.ErrorMessage = nil
	return nil
}

func (r outboxRepo) MarkRetry(_ context.Context, id uuid.UUID, errorMessage string, retryAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e := r.find(id)
	if e == nil {
		return repository.ErrNotFound
	}
	e.RetryCount++
	e.ErrorMessage = &errorMessage
	e.RetryAt = &retryAt
	return nil
}

func (r outboxRepo) MarkFailed(_ context.Context, id uuid.UUID, errorMessage string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e := r.find(id)
	if e == nil {
		return repository.ErrNotFound
	}
	e.RetryCount++
	e.Status = model.OutboxStatusFailed
	e.ErrorMessage = &errorMessage
	e.RetryAt = nil
	return nil
}

func (r outboxRepo) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.outbox[:0]
	var deleted int64
	for _, e := range r.s.outbox {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.s.outbox = kept
	return deleted, nil
}

// SessionStore mirrors the Redis session store with expiry checks on read.
type SessionStore struct{ s *Store }

func (m *SessionStore) Create(_ context.Context, sessionID string, _ uuid.UUID, ttl time.Duration) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.sessions[sessionID] = time.Now().Add(ttl)
	return nil
}

func (m *SessionStore) Exists(_ context.Context, sessionID string) (bool, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	exp, ok := m.s.sessions[sessionID]
	return ok && time.Now().Before(exp), nil
}

func (m *SessionStore) Delete(_ context.Context, sessionID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.sessions, sessionID)
	return nil
}
