package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/joshua-takyi/eventsadmin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeEventRepo is an in-memory EventRepo that enforces hash uniqueness the
// way the unique index does.
type fakeEventRepo struct {
	mu        sync.Mutex
	events    map[primitive.ObjectID]*models.Event
	lastQuery models.EventQuery
	count     int64
	stats     *models.EventStats
	err       error

	mirrored map[primitive.ObjectID]string
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:   map[primitive.ObjectID]*models.Event{},
		mirrored: map[primitive.ObjectID]string{},
	}
}

func clone(e *models.Event) *models.Event {
	cp := *e
	return &cp
}

func (r *fakeEventRepo) hashTaken(hash string, except primitive.ObjectID) bool {
	for id, e := range r.events {
		if id != except && e.EventHash == hash {
			return true
		}
	}
	return false
}

func (r *fakeEventRepo) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.hashTaken(event.EventHash, primitive.NilObjectID) {
		return nil, fmt.Errorf("insert event: %w", models.ErrConflict)
	}
	r.events[event.ID] = clone(event)
	return clone(event), nil
}

func (r *fakeEventRepo) GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, fmt.Errorf("find event: %w", models.ErrNotFound)
	}
	return clone(e), nil
}

func (r *fakeEventRepo) GetEventByHash(ctx context.Context, hash string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, e := range r.events {
		if e.EventHash == hash {
			return clone(e), nil
		}
	}
	return nil, fmt.Errorf("find event: %w", models.ErrNotFound)
}

func (r *fakeEventRepo) SaveIngestedEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[event.ID]
	if !ok {
		return nil, fmt.Errorf("update event: %w", models.ErrNotFound)
	}
	if r.hashTaken(event.EventHash, event.ID) {
		return nil, fmt.Errorf("update event: %w", models.ErrConflict)
	}
	saved := clone(event)
	saved.ImportedAt = stored.ImportedAt
	saved.ImportedBy = stored.ImportedBy
	saved.ImportNotes = stored.ImportNotes
	saved.CreatedAt = stored.CreatedAt
	r.events[event.ID] = saved
	return clone(saved), nil
}

func (r *fakeEventRepo) ListEvents(ctx context.Context, q models.EventQuery) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = q
	if r.err != nil {
		return nil, r.err
	}
	out := []*models.Event{}
	for _, e := range r.events {
		out = append(out, clone(e))
	}
	return out, nil
}

func (r *fakeEventRepo) CountEvents(ctx context.Context, filter bson.M) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.count, nil
}

func (r *fakeEventRepo) MarkImported(ctx context.Context, id, userID primitive.ObjectID, notes string, at time.Time) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, fmt.Errorf("update event: %w", models.ErrNotFound)
	}
	e.Status = models.StatusImported
	e.ImportedAt = &at
	e.ImportedBy = &userID
	e.ImportNotes = notes
	e.UpdatedAt = at
	return clone(e), nil
}

func (r *fakeEventRepo) SetEventStatus(ctx context.Context, id primitive.ObjectID, status models.EventStatus, at time.Time) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, fmt.Errorf("update event: %w", models.ErrNotFound)
	}
	e.Status = status
	e.UpdatedAt = at
	return clone(e), nil
}

func (r *fakeEventRepo) SetMirroredImage(ctx context.Context, id primitive.ObjectID, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return fmt.Errorf("set mirrored image: %w", models.ErrNotFound)
	}
	e.MirroredImageURL = url
	r.mirrored[id] = url
	return nil
}

func (r *fakeEventRepo) BulkSetStatus(ctx context.Context, ids []primitive.ObjectID, status models.EventStatus, userID primitive.ObjectID, at time.Time) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched, modified int64
	for _, id := range ids {
		e, ok := r.events[id]
		if !ok {
			continue
		}
		matched++
		modified++
		e.Status = status
		e.UpdatedAt = at
		if status == models.StatusImported {
			stamp, by := at, userID
			e.ImportedAt = &stamp
			e.ImportedBy = &by
		}
	}
	return matched, modified, nil
}

func (r *fakeEventRepo) EventStats(ctx context.Context) (*models.EventStats, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.stats, nil
}

type fakeLeadRepo struct {
	leads map[string]*models.EmailLead
}

func (r *fakeLeadRepo) CreateLead(ctx context.Context, lead *models.EmailLead) (*models.EmailLead, error) {
	if r.leads == nil {
		r.leads = map[string]*models.EmailLead{}
	}
	if _, ok := r.leads[lead.Email]; ok {
		return nil, fmt.Errorf("insert lead: %w", models.ErrConflict)
	}
	r.leads[lead.Email] = lead
	return lead, nil
}

type fakeScrapeLogRepo struct {
	logs       []*models.ScrapeLog
	lastFilter models.ScrapeLogFilter
	lastSkip   int64
	lastLimit  int64
}

func (r *fakeScrapeLogRepo) CreateScrapeLog(ctx context.Context, log *models.ScrapeLog) (*models.ScrapeLog, error) {
	r.logs = append(r.logs, log)
	return log, nil
}

func (r *fakeScrapeLogRepo) ListScrapeLogs(ctx context.Context, filter models.ScrapeLogFilter, skip, limit int64) ([]*models.ScrapeLog, int64, error) {
	r.lastFilter, r.lastSkip, r.lastLimit = filter, skip, limit
	return r.logs, int64(len(r.logs)), nil
}

type fakeUserRepo struct {
	byGoogle map[string]*models.User
	byID     map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byGoogle: map[string]*models.User{},
		byID:     map[primitive.ObjectID]*models.User{},
	}
}

func (r *fakeUserRepo) FindOrCreateByGoogleID(ctx context.Context, profile *models.User) (*models.User, error) {
	if u, ok := r.byGoogle[profile.GoogleID]; ok {
		return u, nil
	}
	u := *profile
	u.ID = primitive.NewObjectID()
	r.byGoogle[u.GoogleID] = &u
	r.byID[u.ID] = &u
	return &u, nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("find user: %w", models.ErrNotFound)
	}
	return u, nil
}

type fakeSessionRepo struct {
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.Session{}}
}

func (r *fakeSessionRepo) CreateSession(ctx context.Context, s *models.Session) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) GetSession(ctx context.Context, id string) (*models.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("find session: %w", models.ErrNotFound)
	}
	return s, nil
}

func (r *fakeSessionRepo) DeleteSession(ctx context.Context, id string) error {
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("delete session: %w", models.ErrNotFound)
	}
	delete(r.sessions, id)
	return nil
}

type published struct {
	topic   string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic: topic, payload: event})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.topic
	}
	return out
}

type fakeMirror struct {
	url   string
	err   error
	calls int
}

func (m *fakeMirror) Mirror(ctx context.Context, sourceURL, publicID string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

var errBoom = errors.New("boom")
