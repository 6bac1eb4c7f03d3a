package services

import (
	"hash/fnv"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"capacitymarket/internal/config"
	gameDAO "capacitymarket/internal/dao/game"
	"capacitymarket/internal/engines/gameflow"
	"capacitymarket/internal/interfaces"
)

// SessionRegistry owns one flow engine per active game session. Engines are
// created on first use and every call against a session runs under that
// session's lock; different sessions proceed independently. Session locks
// outlive their engines so disposing an engine never admits a second caller.
type SessionRegistry struct {
	mu      sync.Mutex
	engines map[string]*gameflow.GameFlowEngine
	locks   map[string]*sync.Mutex

	repos   gameDAO.Repositories
	catalog *config.Catalog
	hub     interfaces.WebSocketHub
	seed    int64
}

// NewSessionRegistry creates a registry. A zero seed gives each session a
// time-based random source; any other seed makes sessions reproducible.
func NewSessionRegistry(repos gameDAO.Repositories, catalog *config.Catalog, hub interfaces.WebSocketHub, seed int64) *SessionRegistry {
	return &SessionRegistry{
		engines: make(map[string]*gameflow.GameFlowEngine),
		locks:   make(map[string]*sync.Mutex),
		repos:   repos,
		catalog: catalog,
		hub:     hub,
		seed:    seed,
	}
}

func (r *SessionRegistry) randomFor(sessionID string) *rand.Rand {
	if r.seed == 0 {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	h := fnv.New64a()
	h.Write([]byte(sessionID))
	return rand.New(rand.NewSource(r.seed ^ int64(h.Sum64())))
}

// sessionLock returns the lock serialising calls on sessionID, creating it
// after confirming the session exists.
func (r *SessionRegistry) sessionLock(sessionID string) (*sync.Mutex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lock, ok := r.locks[sessionID]; ok {
		return lock, nil
	}
	if _, err := r.repos.Sessions.GetSession(sessionID); err != nil {
		return nil, err
	}
	lock := &sync.Mutex{}
	r.locks[sessionID] = lock
	return lock, nil
}

// engineFor returns the session's engine, creating a fresh one when none is
// live. Callers hold the session lock.
func (r *SessionRegistry) engineFor(sessionID string) *gameflow.GameFlowEngine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if engine, ok := r.engines[sessionID]; ok {
		return engine
	}
	engine := gameflow.NewGameFlowEngine(sessionID, r.repos, r.catalog, r.randomFor(sessionID), r.hub)
	r.engines[sessionID] = engine
	log.Printf("Session %s: flow engine created", sessionID)
	return engine
}

// WithSession runs fn against the session's flow engine while holding the
// session lock.
func (r *SessionRegistry) WithSession(sessionID string, fn func(engine *gameflow.GameFlowEngine) error) error {
	lock, err := r.sessionLock(sessionID)
	if err != nil {
		return err
	}
	lock.Lock()
	defer lock.Unlock()
	return fn(r.engineFor(sessionID))
}

// Dispose drops the session's engine and its in-memory event history;
// persisted records stay. A call already running keeps its engine and the
// session lock, so the next call waits for it and then gets a new engine.
func (r *SessionRegistry) Dispose(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.engines[sessionID]; !ok {
		return false
	}
	delete(r.engines, sessionID)
	log.Printf("Session %s: flow engine disposed", sessionID)
	return true
}

// Active lists the sessions with a live flow engine
func (r *SessionRegistry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.engines))
	for id := range r.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
