// Package conversation owns conversation and message persistence: create-if-
// absent by id scoped to a user, ordered reads, and the atomic commit of a
// user-message/assistant-message pair per turn.
package conversation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/naviai/naviai/internal/i18n"
	"github.com/naviai/naviai/pkg/uuid"
)

// ErrNotFound is returned when a conversation does not exist or is not owned
// by the requesting user.
var ErrNotFound = errors.New("conversation not found")

// Message roles. The schema rejects anything else.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// maxTitleLen bounds the auto-generated conversation title.
const maxTitleLen = 80

// Conversation groups an ordered sequence of messages for one user.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one turn half. ModelProvider/ModelName are set only on
// assistant messages, recording which adapter produced the content.
type Message struct {
	ID            string    `json:"id"`
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	ModelProvider string    `json:"model_provider,omitempty"`
	ModelName     string    `json:"model_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Service is the conversation store.
type Service struct {
	db *sql.DB
}

// NewService creates a conversation Service backed by the given DB.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// GetOrCreate returns the conversation with the given id when it exists and
// belongs to userID. Otherwise (empty id or supplied-but-not-found id) it
// creates a fresh conversation titled from the first ~80 characters of
// firstMessage, falling back to a locale default when the message trims to
// empty.
func (s *Service) GetOrCreate(ctx context.Context, userID, conversationID, firstMessage, locale string) (*Conversation, error) {
	if conversationID != "" {
		conv, err := s.get(ctx, userID, conversationID)
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		// Supplied id not found: fall through and start a new conversation
	}

	title := TitleFromMessage(firstMessage, locale)
	now := time.Now().UTC()
	conv := &Conversation{
		ID:        uuid.NewV7().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, conv.ID, userID, title, formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("conversation: create: %w", err)
	}
	return conv, nil
}

// ListByUser returns the user's conversations, most recently updated first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("conversation: list: %w", err)
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *conv)
	}
	return convs, rows.Err()
}

// Messages returns every message in the conversation in creation order,
// verifying user ownership first.
func (s *Service) Messages(ctx context.Context, userID, conversationID string) ([]Message, error) {
	if _, err := s.get(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, COALESCE(model_provider, ''), COALESCE(model_name, ''), created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at, id
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("conversation: messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.ModelProvider, &m.ModelName, &createdAt); err != nil {
			return nil, fmt.Errorf("conversation: scan message: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// History returns the most recent max messages of the conversation,
// oldest-first (oldest entries beyond the cap are dropped). No ownership
// check; callers resolve the conversation first.
func (s *Service) History(ctx context.Context, conversationID string, max int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at, id
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("conversation: history: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("conversation: scan history: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if max > 0 && len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}
	return msgs, nil
}

// CommitTurn atomically appends the user message and the assistant reply to
// the conversation and bumps its updated_at. Either both messages become
// visible or neither does.
func (s *Service) CommitTurn(ctx context.Context, conversationID, userContent, assistantContent, provider, model string) error {
	now := time.Now().UTC()
	// Nudge the assistant timestamp so creation order survives same-instant inserts
	assistantAt := now.Add(time.Microsecond)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("conversation: begin turn: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewV7().String(), conversationID, RoleUser, userContent, formatTime(now)); err != nil {
		return fmt.Errorf("conversation: insert user message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, model_provider, model_name, created_at)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?)
	`, uuid.NewV7().String(), conversationID, RoleAssistant, assistantContent, provider, model, formatTime(assistantAt)); err != nil {
		return fmt.Errorf("conversation: insert assistant message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE conversations SET updated_at = ? WHERE id = ?
	`, formatTime(now), conversationID); err != nil {
		return fmt.Errorf("conversation: touch conversation: %w", err)
	}

	return tx.Commit()
}

// Delete removes a conversation (and its messages, via FK cascade) after
// verifying ownership.
func (s *Service) Delete(ctx context.Context, userID, conversationID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM conversations WHERE id = ? AND user_id = ?
	`, conversationID, userID)
	if err != nil {
		return fmt.Errorf("conversation: delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("conversation: delete rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// TitleFromMessage derives a conversation title from the opening message:
// the first 80 characters, trimmed, or the locale's default title when the
// message trims to empty. The cap counts runes, not bytes, so accented
// text is never cut mid-character.
func TitleFromMessage(message, locale string) string {
	title := message
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen])
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return i18n.T(i18n.KeyNewConversation, locale)
	}
	return title
}

// --- internal ---

func (s *Service) get(ctx context.Context, userID, conversationID string) (*Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE id = ? AND user_id = ?
	`, conversationID, userID)

	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var conv Conversation
	var createdAt, updatedAt string
	if err := row.Scan(&conv.ID, &conv.UserID, &conv.Title, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("conversation: scan: %w", err)
	}
	conv.CreatedAt = parseTime(createdAt)
	conv.UpdatedAt = parseTime(updatedAt)
	return &conv, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
