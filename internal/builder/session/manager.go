package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"application-builder/internal/builder/analytics"
	"application-builder/internal/builder/jobs"
	"application-builder/internal/builder/portfolio"
	"application-builder/internal/builder/wizard"
	"application-builder/internal/common/logger"
	"application-builder/internal/common/metrics"
	"application-builder/internal/common/observability"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")

const keyPrefix = "session:"

func sessionKey(id string) string { return keyPrefix + id }

// Session is one live wizard.
type Session struct {
	ID         string
	Controller *wizard.Controller

	// op serializes the manager's persisting operations on this session so a
	// snapshot write never lands after the snapshot was deleted.
	op sync.Mutex

	mu       sync.Mutex
	lastSeen time.Time
	holds    int
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) acquire(now time.Time) {
	s.mu.Lock()
	s.holds++
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) release(now time.Time) {
	s.mu.Lock()
	s.holds--
	s.lastSeen = now
	s.mu.Unlock()
}

// evictable reports whether nobody holds the session and it has been idle
// since before cutoff.
func (s *Session) evictable(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holds == 0 && s.lastSeen.Before(cutoff)
}

type ManagerOptions struct {
	Store         Store
	Jobs          jobs.Provider
	Submitter     wizard.Submitter
	Ranker        *portfolio.Ranker
	Tracker       *analytics.Tracker
	Observability *observability.Observability
	TTL           time.Duration
	Logger        logger.Logger
}

// Manager owns every live session. Controllers are authoritative in memory;
// the store holds their snapshots so a session survives a restart.
type Manager struct {
	store     Store
	jobs      jobs.Provider
	submitter wizard.Submitter
	ranker    *portfolio.Ranker
	tracker   *analytics.Tracker
	obs       *observability.Observability
	ttl       time.Duration
	logger    logger.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(opts ManagerOptions) *Manager {
	ranker := opts.Ranker
	if ranker == nil {
		ranker = portfolio.NewDefaultRanker()
	}
	return &Manager{
		store:     opts.Store,
		jobs:      opts.Jobs,
		submitter: opts.Submitter,
		ranker:    ranker,
		tracker:   opts.Tracker,
		obs:       opts.Observability,
		ttl:       opts.TTL,
		logger:    opts.Logger.WithFields(map[string]interface{}{"component": "session-manager"}),
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

func (m *Manager) controllerOptions(id string) wizard.Options {
	return wizard.Options{
		Ranker:    m.ranker,
		Submitter: m.submitter,
		Logger:    m.logger.WithFields(map[string]interface{}{"sessionId": id}),
	}
}

// Create loads the job and starts a wizard for it.
func (m *Manager) Create(ctx context.Context, jobID, userName, studentID string) (*Session, error) {
	job, err := m.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	opts := m.controllerOptions(id)
	opts.Job = *job
	opts.UserName = userName
	opts.StudentID = studentID

	s := &Session{ID: id, Controller: wizard.New(opts)}
	s = m.register(s, false)
	if err := m.persist(ctx, s); err != nil {
		m.logger.Warn("failed to persist new session", map[string]interface{}{"sessionId": id, "error": err.Error()})
	}

	m.logger.Info("session created", map[string]interface{}{"sessionId": id, "jobId": jobID})
	m.tracker.Track(ctx, analytics.Event{
		Name:       analytics.EventWizardStarted,
		SessionID:  id,
		Properties: map[string]interface{}{"jobId": jobID},
	})
	return s, nil
}

// register adds s unless another goroutine got there first, in which case
// the existing session wins. With hold the returned session is acquired
// before the lock is released.
func (m *Manager) register(s *Session, hold bool) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[s.ID]; ok {
		s = existing
	} else {
		m.sessions[s.ID] = s
		metrics.SessionsActive.Inc()
	}
	if hold {
		s.acquire(m.now())
	} else {
		s.touch(m.now())
	}
	return s
}

// unregister removes s if it is still the registered session for its id.
func (m *Manager) unregister(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.sessions[s.ID]; ok && cur == s {
		delete(m.sessions, s.ID)
		metrics.SessionsActive.Dec()
	}
}

// Get returns the live session, restoring it from the store when it is not
// held in memory.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.get(ctx, id, false)
}

// checkout is Get for callers that mutate the session. The session cannot
// be evicted until the returned release runs.
func (m *Manager) checkout(ctx context.Context, id string) (*Session, func(), error) {
	s, err := m.get(ctx, id, true)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.release(m.now()) }, nil
}

func (m *Manager) get(ctx context.Context, id string, hold bool) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	if ok {
		// under the read lock so EvictIdle cannot pick it meanwhile
		if hold {
			s.acquire(m.now())
		} else {
			s.touch(m.now())
		}
	}
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	raw, err := m.store.Get(ctx, sessionKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var snap wizard.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	controller, err := wizard.Restore(m.controllerOptions(id), snap)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}

	m.logger.Debug("session restored from store", map[string]interface{}{"sessionId": id})
	return m.register(&Session{ID: id, Controller: controller}, hold), nil
}

// Do runs fn against the session's controller and persists the result.
// Step and template changes are reported to analytics.
func (m *Manager) Do(ctx context.Context, id string, fn func(c *wizard.Controller) error) (*Session, error) {
	s, release, err := m.checkout(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	s.op.Lock()
	defer s.op.Unlock()

	before := s.Controller.State()
	if err := fn(s.Controller); err != nil {
		return s, err
	}
	after := s.Controller.State()

	if after.TemplateID != before.TemplateID {
		m.tracker.Track(ctx, analytics.Event{
			Name:       analytics.EventTemplateSelected,
			SessionID:  id,
			Properties: map[string]interface{}{"templateId": after.TemplateID},
		})
	}
	if after.Step != before.Step {
		m.tracker.Track(ctx, analytics.Event{
			Name:       analytics.EventStepChanged,
			SessionID:  id,
			Properties: map[string]interface{}{"from": before.Step.ID(), "to": after.Step.ID()},
		})
	}

	if err := m.persist(ctx, s); err != nil {
		m.logger.Warn("failed to persist session", map[string]interface{}{"sessionId": id, "error": err.Error()})
	}
	return s, nil
}

// Submit submits the session's application. A successful submission ends
// the session; any failure leaves it interactive.
func (m *Manager) Submit(ctx context.Context, id string) (*Session, string, error) {
	s, release, err := m.checkout(ctx, id)
	if err != nil {
		return nil, "", err
	}
	defer release()

	start := m.now()
	appID, err := s.Controller.Submit(ctx)
	took := m.now().Sub(start)

	if err != nil {
		var vErr *wizard.ValidationError
		switch {
		case errors.As(err, &vErr):
			m.obs.RecordSubmission(ctx, "invalid", took)
		case errors.Is(err, wizard.ErrSubmissionFailed):
			m.obs.RecordSubmission(ctx, "failed", took)
			m.tracker.Track(ctx, analytics.Event{
				Name:       analytics.EventSubmissionFailed,
				SessionID:  id,
				Properties: map[string]interface{}{"error": err.Error()},
			})
		}
		return s, "", err
	}

	m.obs.RecordSubmission(ctx, "success", took)
	m.tracker.Track(ctx, analytics.Event{
		Name:       analytics.EventApplicationSubmitted,
		SessionID:  id,
		Properties: map[string]interface{}{"applicationId": appID},
	})
	m.discard(ctx, s)
	return s, appID, nil
}

// Cancel ends a session without submitting. It fails with
// wizard.ErrSubmissionInFlight while the session is being submitted.
func (m *Manager) Cancel(ctx context.Context, id string) error {
	s, release, err := m.checkout(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	// closing under the controller lock excludes a submit starting meanwhile
	if err := s.Controller.Close(); err != nil {
		return err
	}

	m.discard(ctx, s)
	m.tracker.Track(ctx, analytics.Event{Name: analytics.EventWizardCancelled, SessionID: id})
	m.logger.Info("session cancelled", map[string]interface{}{"sessionId": id})
	return nil
}

// discard forgets s and deletes its snapshot once no Do is persisting it.
func (m *Manager) discard(ctx context.Context, s *Session) {
	s.op.Lock()
	defer s.op.Unlock()
	m.unregister(s)
	if err := m.store.Delete(ctx, sessionKey(s.ID)); err != nil {
		m.logger.Warn("failed to delete session snapshot", map[string]interface{}{"sessionId": s.ID, "error": err.Error()})
	}
}

// EvictIdle drops sessions untouched for longer than idle from memory.
// Sessions held by an ongoing operation are kept. Snapshots stay in the
// store until the TTL expires.
func (m *Manager) EvictIdle(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, s := range m.sessions {
		if s.evictable(cutoff) {
			delete(m.sessions, id)
			metrics.SessionsActive.Dec()
			evicted++
		}
	}
	return evicted
}

// Len reports how many sessions are held in memory.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) persist(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s.Controller.Snapshot())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return m.store.Set(ctx, sessionKey(s.ID), string(data), m.ttl)
}
