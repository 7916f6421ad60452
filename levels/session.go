package levels

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/levelforge/common"
)

// AppName is the gdata application name shared by the editor and play test.
const AppName = "levelforge"

const (
	sessionObject   = "session"
	sessionProperty = "current"
)

// Session is the state handed from the editor to the play test: which level
// to open next and the markers of the last saved or loaded level.
type Session struct {
	LevelToLoad  string       `yaml:"levelToLoad"`
	LevelDir     string       `yaml:"levelDir"`
	SpawnPoint   common.Vec3  `yaml:"spawnPoint"`
	PatrolPointA *common.Vec3 `yaml:"patrolPointA,omitempty"`
	PatrolPointB *common.Vec3 `yaml:"patrolPointB,omitempty"`
}

// ApplyLevel copies the markers of level into the session.
func (s *Session) ApplyLevel(level *Level) {
	if s == nil || level == nil {
		return
	}
	s.SpawnPoint = level.SpawnPoint
	s.PatrolPointA, s.PatrolPointB = nil, nil
	if level.HasPatrolPointA {
		p := level.PatrolPointA
		s.PatrolPointA = &p
	}
	if level.HasPatrolPointB {
		p := level.PatrolPointB
		s.PatrolPointB = &p
	}
}

// propStore is the subset of *gdata.Manager the session needs.
type propStore interface {
	ObjectPropExists(object, property string) bool
	LoadObjectProp(object, property string) ([]byte, error)
	SaveObjectProp(object, property string, data []byte) error
}

// SessionStore persists the Session. Without a backing store it keeps the
// session in memory only.
type SessionStore struct {
	store   propStore
	session Session
}

// OpenSessionStore opens the shared gdata storage. When storage is not
// available the store degrades to memory and logs why.
func OpenSessionStore(appName string) *SessionStore {
	if appName == "" {
		appName = AppName
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("session: gdata unavailable, keeping session in memory: %v", err)
		return NewSessionStore(nil)
	}
	return NewSessionStore(m)
}

// NewSessionStore wraps a gdata manager (or nil) and loads the saved session.
func NewSessionStore(m propStore) *SessionStore {
	ss := &SessionStore{store: m}
	if err := ss.Load(); err != nil {
		log.Printf("session: load failed, using empty session: %v", err)
	}
	return ss
}

// Load re-reads the session from storage.
func (ss *SessionStore) Load() error {
	if ss.store == nil || !ss.store.ObjectPropExists(sessionObject, sessionProperty) {
		return nil
	}
	data, err := ss.store.LoadObjectProp(sessionObject, sessionProperty)
	if err != nil {
		return fmt.Errorf("levels: load session: %w", err)
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("levels: unmarshal session: %w", err)
	}
	ss.session = s
	return nil
}

// Save writes the current session to storage.
func (ss *SessionStore) Save() error {
	if ss.store == nil {
		return nil
	}
	data, err := yaml.Marshal(&ss.session)
	if err != nil {
		return fmt.Errorf("levels: marshal session: %w", err)
	}
	if err := ss.store.SaveObjectProp(sessionObject, sessionProperty, data); err != nil {
		return fmt.Errorf("levels: save session: %w", err)
	}
	return nil
}

// Session returns a copy of the current session.
func (ss *SessionStore) Session() Session {
	return ss.session
}

// Update mutates the session and saves it.
func (ss *SessionStore) Update(fn func(*Session)) error {
	fn(&ss.session)
	return ss.Save()
}

// Take returns the pending level name and clears it so it is consumed once.
func (ss *SessionStore) Take() (dir, name string, ok bool) {
	name = ss.session.LevelToLoad
	if name == "" {
		return "", "", false
	}
	dir = ss.session.LevelDir
	ss.session.LevelToLoad = ""
	if err := ss.Save(); err != nil {
		log.Printf("session: clear pending level: %v", err)
	}
	return dir, name, true
}
