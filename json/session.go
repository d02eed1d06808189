// Package json persists a document session to disk so conversation
// context and the created-object snapshot survive panel reopenings.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pedrocandeias/idaia"
)

// envelope is the v1 wire format for a persisted session.
type envelope struct {
	Version   int         `json:"version"`
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Turns     []turnDTO   `json:"turns"`
	Objects   []objectDTO `json:"objects"`
}

type turnDTO struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

type objectDTO struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// MarshalSession serializes a Session to JSON in v1 envelope format.
func MarshalSession(s *idaia.Session) ([]byte, error) {
	env := envelope{
		Version:   1,
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Turns:     make([]turnDTO, len(s.Turns)),
		Objects:   make([]objectDTO, len(s.Objects)),
	}
	for i, t := range s.Turns {
		env.Turns[i] = turnDTO{Role: string(t.Role), Text: t.Text, Time: t.Time}
	}
	for i, o := range s.Objects {
		env.Objects[i] = objectDTO{Name: o.Name, Kind: string(o.Kind)}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSession deserializes a Session from JSON in v1 envelope format.
func UnmarshalSession(data []byte) (*idaia.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	s := &idaia.Session{
		ID:        env.ID,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
	}
	for i, t := range env.Turns {
		role := idaia.Role(t.Role)
		if role != idaia.RoleUser && role != idaia.RoleAssistant {
			return nil, fmt.Errorf("turn %d: unknown role %q", i, t.Role)
		}
		s.Turns = append(s.Turns, idaia.Turn{Role: role, Text: t.Text, Time: t.Time})
	}
	for i, o := range env.Objects {
		kind, ok := idaia.ParseShapeKind(o.Kind)
		if !ok {
			return nil, fmt.Errorf("object %d: unknown shape kind %q", i, o.Kind)
		}
		s.Objects = append(s.Objects, idaia.ObjectRef{Name: o.Name, Kind: kind})
	}
	return s, nil
}

// Save writes a Session to a JSON file, creating parent directories as needed.
func Save(path string, s *idaia.Session) error {
	data, err := MarshalSession(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Session from a JSON file.
func Load(path string) (*idaia.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSession(data)
}
