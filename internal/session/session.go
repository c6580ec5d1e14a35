// Package session keeps interactive print sessions: a question set whose
// preferences and header can change while typesetting runs in the
// background, and which can be exported once typesetting settles.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-sheets/internal/logger"
	"github.com/mind-engage/mindengage-sheets/internal/render"
	"github.com/mind-engage/mindengage-sheets/internal/sheet"
	"github.com/mind-engage/mindengage-sheets/internal/typeset"
)

var ErrNotFound = errors.New("session not found")

var errStale = errors.New("stale export snapshot")

// HeaderDefaults fills header fields left empty by the caller.
type HeaderDefaults struct {
	InstituteName string
	Duration      string
	DateLayout    string
}

func (d HeaderDefaults) Apply(h sheet.Header, testName string, now time.Time) sheet.Header {
	if h.InstituteName == "" {
		h.InstituteName = d.InstituteName
	}
	if h.Duration == "" {
		h.Duration = d.Duration
	}
	if h.Date == "" {
		layout := d.DateLayout
		if layout == "" {
			layout = "02/01/2006"
		}
		h.Date = now.Format(layout)
	}
	if h.TestName == "" && testName != "" {
		h.TestName = testName + " - Test"
	}
	return h
}

type Session struct {
	ID        string
	Owner     string
	CreatedAt time.Time

	coord *typeset.Coordinator

	// mu serializes rebuilds and guards the fields below.
	mu        sync.Mutex
	input     sheet.Input
	doc       sheet.Document
	token     uint64
	updatedAt time.Time
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	ID        string         `json:"id"`
	Owner     string         `json:"owner,omitempty"`
	State     typeset.State  `json:"state"`
	Token     uint64         `json:"token"`
	Document  sheet.Document `json:"document"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Export is what an export callback receives: the document and the final
// typeset outcome of the same run.
type Export struct {
	SessionID string
	Document  sheet.Document
	Outcome   typeset.Outcome
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	asm      sheet.Assembler
	renderer *render.Renderer
	ts       typeset.Typesetter
	timeout  time.Duration
	log      *logger.Logger
	now      func() time.Time
}

type Option func(*Manager)

func WithAssembler(a sheet.Assembler) Option { return func(m *Manager) { m.asm = a } }

func WithRenderer(r *render.Renderer) Option { return func(m *Manager) { m.renderer = r } }

func WithTypesetter(ts typeset.Typesetter) Option { return func(m *Manager) { m.ts = ts } }

func WithTypesetTimeout(d time.Duration) Option { return func(m *Manager) { m.timeout = d } }

func WithLogger(l *logger.Logger) Option { return func(m *Manager) { m.log = l } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: map[string]*Session{},
		timeout:  typeset.DefaultTimeout,
		now:      time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	if m.renderer == nil {
		m.renderer = render.New()
	}
	m.log = logger.OrNop(m.log)
	return m
}

// Create starts a session and its first typesetting run.
func (m *Manager) Create(in sheet.Input, owner string) (Snapshot, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Owner:     owner,
		CreatedAt: now,
		coord: typeset.NewCoordinator(m.ts,
			typeset.WithTimeout(m.timeout),
			typeset.WithLogger(m.log.With("component", "typeset"))),
	}
	s.mu.Lock()
	err := m.rebuild(s, in)
	s.mu.Unlock()
	if err != nil {
		s.coord.Close()
		return Snapshot{}, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.log.Info("session created", "session_id", s.ID, "questions", len(in.Questions))
	return m.snapshot(s), nil
}

func (m *Manager) lookup(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) Get(id string) (Snapshot, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return m.snapshot(s), nil
}

// UpdatePreferences replaces the display preferences and reruns typesetting.
func (m *Manager) UpdatePreferences(id string, prefs sheet.DisplayPreferences) (Snapshot, error) {
	return m.update(id, func(in *sheet.Input) { in.Preferences = prefs })
}

// UpdateHeader replaces the header and reruns typesetting.
func (m *Manager) UpdateHeader(id string, h sheet.Header) (Snapshot, error) {
	return m.update(id, func(in *sheet.Input) { in.Header = h })
}

func (m *Manager) update(id string, mutate func(*sheet.Input)) (Snapshot, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	in := s.input
	mutate(&in)
	err = m.rebuild(s, in)
	s.mu.Unlock()
	if err != nil {
		return Snapshot{}, err
	}
	return m.snapshot(s), nil
}

// rebuild assembles and renders in, then starts a new typesetting run.
// Callers hold s.mu.
func (m *Manager) rebuild(s *Session, in sheet.Input) error {
	doc := m.asm.Assemble(in)
	html, err := m.renderer.Print(doc)
	if err != nil {
		return err
	}
	tok := s.coord.Run(html)
	s.input, s.doc, s.token = in, doc, tok
	s.updatedAt = m.now()
	m.log.Debug("session rebuilt", "session_id", s.ID, "token", tok)
	return nil
}

func (m *Manager) snapshot(s *Session) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.ID,
		Owner:     s.Owner,
		State:     s.coord.State(),
		Token:     s.token,
		Document:  s.doc,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
}

// Export waits for the session's latest run to settle and calls fn with the
// matching document and typeset outcome. A rerun that lands while waiting
// moves the export to the newer run.
func (m *Manager) Export(ctx context.Context, id string, fn func(Export) error) error {
	s, err := m.lookup(id)
	if err != nil {
		return err
	}
	for {
		s.mu.Lock()
		doc, tok := s.doc, s.token
		s.mu.Unlock()

		err := s.coord.Export(ctx, func(o typeset.Outcome) error {
			if o.Token != tok {
				return errStale
			}
			return fn(Export{SessionID: s.ID, Document: doc, Outcome: o})
		})
		if errors.Is(err, errStale) {
			continue
		}
		return err
	}
}

// Delete drops a session and cancels its in-flight run.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.coord.Close()
	return nil
}

// Sweep drops sessions not updated since cutoff and returns how many were
// removed.
func (m *Manager) Sweep(cutoff time.Time) int {
	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		s.mu.Lock()
		old := s.updatedAt.Before(cutoff)
		s.mu.Unlock()
		if old {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range stale {
		s.coord.Close()
	}
	return len(stale)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
