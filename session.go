package idaia

import (
	"fmt"
	"time"
)

// MaxTurns bounds the conversation window injected into AI requests.
// Older turns are dropped to keep request size and backend memory
// pressure flat across long sessions.
const MaxTurns = 5

// Turn is one conversation exchange half.
type Turn struct {
	Role Role
	Text string
	Time time.Time
}

// ObjectRef identifies an object the geometry layer created.
type ObjectRef struct {
	Name string
	Kind ShapeKind
}

// Session is the conversation context for one active document. It is
// owned by exactly one document session and must only be touched by the
// single in-flight pipeline invocation; the dispatcher enforces that
// discipline, so Session itself carries no locking.
type Session struct {
	ID        string
	Turns     []Turn
	Objects   []ObjectRef
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, CreatedAt: now, UpdatedAt: now}
}

// AppendExchange records a user prompt and the assistant's summary,
// trimming the window to MaxTurns. Only AI-authored turns belong here;
// rule-based results never enter the conversation context.
func (s *Session) AppendExchange(user, assistant string) {
	now := time.Now()
	s.Turns = append(s.Turns,
		Turn{Role: RoleUser, Text: user, Time: now},
		Turn{Role: RoleAssistant, Text: assistant, Time: now},
	)
	if len(s.Turns) > MaxTurns {
		s.Turns = s.Turns[len(s.Turns)-MaxTurns:]
		// The window must open with the user half of an exchange. The
		// chat backends reject transcripts whose first message is an
		// assistant turn, so an orphaned reply left over from the trim
		// is dropped along with its prompt.
		if s.Turns[0].Role == RoleAssistant {
			s.Turns = s.Turns[1:]
		}
	}
	s.UpdatedAt = now
}

// Window returns a copy of the current turn window. It always opens
// with a user turn; a stranded assistant reply, as a session persisted
// with an odd trim may carry, is skipped.
func (s *Session) Window() []Turn {
	turns := s.Turns
	if len(turns) > 0 && turns[0].Role == RoleAssistant {
		turns = turns[1:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// RecordObject adds a created object to the scene snapshot.
func (s *Session) RecordObject(ref ObjectRef) {
	s.Objects = append(s.Objects, ref)
	s.UpdatedAt = time.Now()
}

// SceneSnapshot serializes the created-object list for spatial
// grounding in the system prompt. Empty when nothing exists yet.
func (s *Session) SceneSnapshot() string {
	if len(s.Objects) == 0 {
		return ""
	}
	out := ""
	for i, o := range s.Objects {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s (%s)", o.Name, o.Kind)
	}
	return out
}

// Reset clears turns and objects. Called when the active document
// changes or the session ends.
func (s *Session) Reset() {
	s.Turns = nil
	s.Objects = nil
	s.UpdatedAt = time.Now()
}
