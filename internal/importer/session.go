package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mhartmann/leadcrm/internal/domain"
	"github.com/mhartmann/leadcrm/internal/repository"
)

// Phase is the orchestration state of one import session.
type Phase string

const (
	PhaseUpload     Phase = "upload"
	PhasePreview    Phase = "preview"
	PhaseCommitting Phase = "committing"
)

var (
	// ErrNoValidRows is raised after row processing completes when the
	// valid set is empty.
	ErrNoValidRows = errors.New("no valid data found to import")

	// ErrWrongPhase is returned when a transition is requested from a
	// phase that does not allow it.
	ErrWrongPhase = errors.New("operation not allowed in current import phase")
)

// ProgressFunc receives commit progress after each persisted item.
type ProgressFunc func(processed, total int)

// Preview is returned to the caller after a file was ingested and
// reconciled, ahead of the user-confirmed commit.
type Preview struct {
	SessionID uuid.UUID `json:"sessionId"`
	Outcome   Outcome   `json:"outcome"`
	TotalRows int       `json:"totalRows"`
	Truncated bool      `json:"truncated"`
}

// Summary reports the result of a committed import.
type Summary struct {
	Created   int `json:"created"`
	Merged    int `json:"merged"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
	Attempted int `json:"attempted"`
}

// Session drives one import end to end: ingest, preview, commit. All
// candidate state lives in memory; cancellation before commit simply
// discards it. A session is safe for concurrent use: phase transitions
// are claimed under the mutex, so of several racing commit requests
// exactly one proceeds.
type Session struct {
	id     uuid.UUID
	userID uuid.UUID
	store  repository.ContactRepository
	logs   repository.ImportLogRepository
	log    *logrus.Entry

	mu       sync.Mutex
	phase    Phase
	fileName string
	existing []domain.Contact
	outcome  Outcome
	total    int
	trunc    bool
}

// NewSession creates an import session in the upload phase.
func NewSession(userID uuid.UUID, store repository.ContactRepository, logs repository.ImportLogRepository, log *logrus.Entry) *Session {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Session{
		id:     uuid.New(),
		userID: userID,
		store:  store,
		logs:   logs,
		log:    log,
		phase:  PhaseUpload,
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Phase returns the current orchestration phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// LoadFile ingests an uploaded table and advances the session to the
// preview phase. Structural failures (unreadable file, missing
// columns, zero valid rows) leave the session in the upload phase with
// no partial state.
func (s *Session) LoadFile(ctx context.Context, fileName string, payload []byte) (Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseUpload {
		return Preview{}, fmt.Errorf("%w: %s", ErrWrongPhase, s.phase)
	}

	table, err := ReadTable(fileName, payload)
	if err != nil {
		return Preview{}, err
	}

	headers, err := DetectHeaders(table.Header)
	if err != nil {
		return Preview{}, err
	}

	leads, rowErrs, truncated := NormalizeRows(table.Rows, headers)
	for _, rowErr := range rowErrs {
		s.recordError(ctx, fileName, rowErr.Row, rowErr.Message)
	}
	if len(leads) == 0 {
		return Preview{}, ErrNoValidRows
	}

	// Snapshot the contact set once; contacts created elsewhere while
	// the user reviews the preview are outside this snapshot.
	existing, err := s.store.List(ctx, s.userID)
	if err != nil {
		return Preview{}, fmt.Errorf("failed to load existing contacts: %w", err)
	}

	processed := len(leads) + len(rowErrs)

	s.fileName = fileName
	s.existing = existing
	s.outcome = Partition(leads, rowErrs, existing)
	s.total = processed
	s.trunc = truncated
	s.phase = PhasePreview

	return Preview{
		SessionID: s.id,
		Outcome:   s.outcome,
		TotalRows: processed,
		Truncated: truncated,
	}, nil
}

// Outcome returns the reconciled outcome once the session reached the
// preview phase.
func (s *Session) Outcome() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePreview {
		return Outcome{}, fmt.Errorf("%w: %s", ErrWrongPhase, s.phase)
	}
	return s.outcome, nil
}

// Commit persists the reconciled outcome: one create call per new
// lead, then one update call per duplicate whose merge delta is
// non-empty, strictly in input order. Per-item persistence failures
// are logged and do not abort the remaining batch. Once started, a
// commit always runs to completion.
func (s *Session) Commit(ctx context.Context, progress ProgressFunc) (Summary, error) {
	// Claim the committing phase atomically; of several racing commit
	// calls only one gets past this gate. Once claimed, no other call
	// can touch the candidate state (LoadFile requires the upload
	// phase, Cancel rejects a running commit), so the persist loop
	// runs unlocked.
	s.mu.Lock()
	if s.phase != PhasePreview {
		phase := s.phase
		s.mu.Unlock()
		return Summary{}, fmt.Errorf("%w: %s", ErrWrongPhase, phase)
	}
	s.phase = PhaseCommitting
	s.mu.Unlock()

	summary := Summary{
		Attempted: len(s.outcome.NewLeads) + len(s.outcome.Duplicates),
	}
	processed := 0
	report := func() {
		processed++
		if progress != nil {
			progress(processed, summary.Attempted)
		}
	}

	for _, lead := range s.outcome.NewLeads {
		if _, err := s.store.Create(ctx, s.userID, contactFieldsFor(lead)); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"file":  s.fileName,
				"email": lead.Email,
			}).Warn("failed to create imported lead")
			s.recordError(ctx, s.fileName, 0, fmt.Sprintf("create %s: %v", lead.Email, err))
			summary.Failed++
		} else {
			summary.Created++
		}
		report()
	}

	for _, dup := range s.outcome.Duplicates {
		existing, ok := s.findExisting(dup.Email)
		if !ok {
			// Snapshot and partition disagree; treat as a failed item.
			s.recordError(ctx, s.fileName, 0, fmt.Sprintf("merge %s: existing contact not found", dup.Email))
			summary.Failed++
			report()
			continue
		}

		update, changed := ComputeMerge(existing, dup)
		if !changed {
			summary.Unchanged++
			report()
			continue
		}

		if _, err := s.store.Update(ctx, existing.ID, update); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"file":  s.fileName,
				"email": dup.Email,
			}).Warn("failed to merge duplicate lead")
			s.recordError(ctx, s.fileName, 0, fmt.Sprintf("merge %s: %v", dup.Email, err))
			summary.Failed++
		} else {
			summary.Merged++
		}
		report()
	}

	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
	return summary, nil
}

// Cancel discards all candidate state and returns the session to the
// upload phase. A running commit cannot be cancelled.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseCommitting {
		return fmt.Errorf("%w: %s", ErrWrongPhase, s.phase)
	}
	s.reset()
	return nil
}

func (s *Session) reset() {
	s.phase = PhaseUpload
	s.fileName = ""
	s.existing = nil
	s.outcome = Outcome{}
	s.total = 0
	s.trunc = false
}

func (s *Session) findExisting(email string) (domain.Contact, bool) {
	key := strings.ToLower(email)
	for _, contact := range s.existing {
		if strings.ToLower(contact.Email) == key {
			return contact, true
		}
	}
	return domain.Contact{}, false
}

func (s *Session) recordError(ctx context.Context, fileName string, rowNumber int, message string) {
	if s.logs == nil {
		return
	}
	entry := domain.ImportLogEntry{
		UserID:       s.userID,
		FileName:     fileName,
		ErrorMessage: message,
	}
	if rowNumber > 0 {
		entry.RowNumber = &rowNumber
	}
	if err := s.logs.Record(ctx, entry); err != nil {
		s.log.WithError(err).Warn("failed to record import log entry")
	}
}

func contactFieldsFor(lead Lead) domain.ContactFields {
	source := lead.Source
	if source == "" {
		source = DefaultSource
	}
	return domain.ContactFields{
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Company:   lead.Company,
		Phone:     lead.Phone,
		Website:   lead.Website,
		Status:    domain.StatusNew,
		Source:    source,
		Notes:     lead.Notes,
	}
}

// sessionTTL bounds how long an untouched session stays registered.
// Abandoned previews (never committed, never cancelled) are evicted
// lazily so the registry cannot grow without bound.
const sessionTTL = 30 * time.Minute

type registryEntry struct {
	session *Session
	touched time.Time
}

// Registry tracks sessions across the upload and commit requests of a
// single import flow.
type Registry struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[uuid.UUID]*registryEntry
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		ttl:      sessionTTL,
		sessions: make(map[uuid.UUID]*registryEntry),
	}
}

// Add registers a session, evicting any expired entries.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictStale()
	r.sessions[s.ID()] = &registryEntry{session: s, touched: time.Now()}
}

// Get looks a session up by id, refreshing its expiry.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Since(entry.touched) > r.ttl {
		delete(r.sessions, id)
		return nil, false
	}
	entry.touched = time.Now()
	return entry.session, true
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) evictStale() {
	for id, entry := range r.sessions {
		if time.Since(entry.touched) > r.ttl {
			delete(r.sessions, id)
		}
	}
}
