package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labelcheck/backend/internal/domain"
)

// maxChatHistory bounds the conversation turns kept per session
const maxChatHistory = 40

// Session is the explicit per-user context object: current product, scan
// history, and conversation history. Never a process-wide singleton.
type Session struct {
	ID          string                 `json:"id"`
	Product     *domain.ProductRecord  `json:"product,omitempty"`
	ScanHistory []domain.ProductRecord `json:"scanHistory"`
	ChatHistory []domain.ChatMessage   `json:"chatHistory"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// SessionService holds in-memory sessions keyed by uuid. Sessions are
// ephemeral UI state; nothing here persists across restarts.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionService creates an empty session registry
func NewSessionService() *SessionService {
	return &SessionService{sessions: make(map[string]*Session)}
}

// Create registers a new session and returns it
func (s *SessionService) Create() *Session {
	session := &Session{
		ID:          uuid.NewString(),
		ScanHistory: []domain.ProductRecord{},
		ChatHistory: []domain.ChatMessage{},
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get returns the session for id
func (s *SessionService) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// SetProduct makes record the session's current product, resets the
// conversation, and appends to scan history unless the barcode was already
// scanned.
func (s *SessionService) SetProduct(id string, record *domain.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}

	session.Product = record
	session.ChatHistory = session.ChatHistory[:0]

	for _, scanned := range session.ScanHistory {
		if scanned.Barcode == record.Barcode {
			return nil
		}
	}
	session.ScanHistory = append(session.ScanHistory, *record)
	return nil
}

// AppendChat records one conversation turn, trimming the oldest turns past
// the history bound
func (s *SessionService) AppendChat(id, role, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}

	session.ChatHistory = append(session.ChatHistory, domain.ChatMessage{Role: role, Content: message})
	if len(session.ChatHistory) > maxChatHistory {
		session.ChatHistory = session.ChatHistory[len(session.ChatHistory)-maxChatHistory:]
	}
	return nil
}

// Snapshot returns a copy of the session safe to serialize outside the lock
func (s *SessionService) Snapshot(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return Session{}, domain.ErrSessionNotFound
	}

	copied := Session{
		ID:          session.ID,
		Product:     session.Product,
		ScanHistory: append([]domain.ProductRecord(nil), session.ScanHistory...),
		ChatHistory: append([]domain.ChatMessage(nil), session.ChatHistory...),
		CreatedAt:   session.CreatedAt,
	}
	return copied, nil
}
