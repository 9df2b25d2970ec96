package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joshua-takyi/eventsadmin/internal/helpers"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"
)

// memStore backs every repo interface the handlers reach through services.
type memStore struct {
	mu       sync.Mutex
	events   map[primitive.ObjectID]*models.Event
	leads    map[string]*models.EmailLead
	logs     []*models.ScrapeLog
	users    map[primitive.ObjectID]*models.User
	sessions map[string]*models.Session
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		events:   map[primitive.ObjectID]*models.Event{},
		leads:    map[string]*models.EmailLead{},
		users:    map[primitive.ObjectID]*models.User{},
		sessions: map[string]*models.Session{},
	}
}

func copyEvent(e *models.Event) *models.Event {
	cp := *e
	return &cp
}

func (s *memStore) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, e := range s.events {
		if e.EventHash == event.EventHash {
			return nil, fmt.Errorf("insert event: %w", models.ErrConflict)
		}
	}
	s.events[event.ID] = copyEvent(event)
	return copyEvent(event), nil
}

func (s *memStore) GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("find event: %w", models.ErrNotFound)
	}
	return copyEvent(e), nil
}

func (s *memStore) GetEventByHash(ctx context.Context, hash string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, e := range s.events {
		if e.EventHash == hash {
			return copyEvent(e), nil
		}
	}
	return nil, fmt.Errorf("find event: %w", models.ErrNotFound)
}

func (s *memStore) SaveIngestedEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; !ok {
		return nil, fmt.Errorf("update event: %w", models.ErrNotFound)
	}
	s.events[event.ID] = copyEvent(event)
	return copyEvent(event), nil
}

func (s *memStore) ListEvents(ctx context.Context, q models.EventQuery) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []*models.Event{}
	for _, e := range s.events {
		out = append(out, copyEvent(e))
	}
	return out, nil
}

func (s *memStore) CountEvents(ctx context.Context, filter bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.events)), s.err
}

func (s *memStore) setStatus(id primitive.ObjectID, status models.EventStatus, at time.Time) (*models.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("update event: %w", models.ErrNotFound)
	}
	e.Status = status
	e.UpdatedAt = at
	return e, nil
}

func (s *memStore) MarkImported(ctx context.Context, id, userID primitive.ObjectID, notes string, at time.Time) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.setStatus(id, models.StatusImported, at)
	if err != nil {
		return nil, err
	}
	e.ImportedAt = &at
	e.ImportedBy = &userID
	e.ImportNotes = notes
	return copyEvent(e), nil
}

func (s *memStore) SetEventStatus(ctx context.Context, id primitive.ObjectID, status models.EventStatus, at time.Time) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.setStatus(id, status, at)
	if err != nil {
		return nil, err
	}
	return copyEvent(e), nil
}

func (s *memStore) SetMirroredImage(ctx context.Context, id primitive.ObjectID, url string) error {
	return nil
}

func (s *memStore) BulkSetStatus(ctx context.Context, ids []primitive.ObjectID, status models.EventStatus, userID primitive.ObjectID, at time.Time) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched, modified int64
	for _, id := range ids {
		e, ok := s.events[id]
		if !ok {
			continue
		}
		matched++
		if e.Status != status {
			modified++
		}
		_, _ = s.setStatus(id, status, at)
	}
	return matched, modified, nil
}

func (s *memStore) EventStats(ctx context.Context) (*models.EventStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	counts := map[string]int64{}
	for _, e := range s.events {
		counts[string(e.Status)]++
	}
	rows := []models.CountRow{}
	for id, n := range counts {
		rows = append(rows, models.CountRow{ID: id, Count: n})
	}
	return &models.EventStats{Totals: models.TotalsFromStatusCounts(rows), Categories: []models.CountRow{}, Sources: []models.CountRow{}}, nil
}

func (s *memStore) CreateLead(ctx context.Context, lead *models.EmailLead) (*models.EmailLead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[lead.Email]; ok {
		return nil, fmt.Errorf("insert lead: %w", models.ErrConflict)
	}
	s.leads[lead.Email] = lead
	return lead, nil
}

func (s *memStore) CreateScrapeLog(ctx context.Context, log *models.ScrapeLog) (*models.ScrapeLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return log, nil
}

func (s *memStore) ListScrapeLogs(ctx context.Context, filter models.ScrapeLogFilter, skip, limit int64) ([]*models.ScrapeLog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logs, int64(len(s.logs)), nil
}

func (s *memStore) FindOrCreateByGoogleID(ctx context.Context, profile *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.GoogleID == profile.GoogleID {
			return u, nil
		}
	}
	u := *profile
	u.ID = primitive.NewObjectID()
	s.users[u.ID] = &u
	return &u, nil
}

func (s *memStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("find user: %w", models.ErrNotFound)
	}
	return u, nil
}

func (s *memStore) CreateSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *memStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("find session: %w", models.ErrNotFound)
	}
	return session, nil
}

func (s *memStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type stubExchanger struct {
	idToken string
	err     error
}

func (e *stubExchanger) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	cfg := &oauth2.Config{
		ClientID:    "client-id",
		RedirectURL: "http://localhost:8080/auth/google/callback",
		Endpoint:    oauth2.Endpoint{AuthURL: "https://accounts.google.com/o/oauth2/auth"},
	}
	return cfg.AuthCodeURL(state, opts...)
}

func (e *stubExchanger) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if e.err != nil {
		return nil, e.err
	}
	tok := &oauth2.Token{AccessToken: "access"}
	return tok.WithExtra(map[string]interface{}{"id_token": e.idToken}), nil
}

type stubVerifier struct{}

func (stubVerifier) Verify(raw string) (*helpers.GoogleClaims, error) {
	if raw != "good-id-token" {
		return nil, fmt.Errorf("bad id token")
	}
	claims := &helpers.GoogleClaims{Email: "jane@example.com", Name: "Jane"}
	claims.Subject = "google-123"
	return claims, nil
}
