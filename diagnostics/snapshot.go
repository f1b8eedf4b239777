// Package diagnostics persists a point-in-time snapshot of an engine's
// route table to disk, so an operator can diff two deployments' routing
// without standing up the service, using the same bbolt helpers
// db/bolt.DB already provides for other EVE services.
package diagnostics

import (
	"fmt"
	"time"

	"github.com/evalgo-org/cutelyst-go/db/bolt"
	"github.com/evalgo-org/cutelyst-go/dispatch"
)

const (
	bucketName = "route_snapshots"
	latestKey  = "latest"
)

// Snapshot is the JSON document persisted per capture: the full route
// table plus the private-name table from ActionRegistry.DumpTable, so a
// snapshot can answer both "what URLs are served" and "what private
// names exist for Forward targets".
type Snapshot struct {
	TakenAt time.Time           `json:"taken_at"`
	Routes  []dispatch.RouteInfo `json:"routes"`
	Actions []dispatch.RouteInfo `json:"actions"`
}

// Store persists and retrieves Snapshots in a bbolt database, grounded on
// db/bolt.DB's PutJSON/GetJSON helpers rather than reimplementing bucket
// handling.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path and ensures the
// snapshot bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.CreateBucket(bucketName); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying bbolt database.
func (s *Store) Close() error { return s.db.Close() }

// Capture builds a Snapshot from engine's current route table and action
// registry. takenAt is supplied by the caller rather than read from the
// clock here, so callers (and their tests) control timestamps.
func Capture(engine *dispatch.Engine, takenAt time.Time) Snapshot {
	return Snapshot{
		TakenAt: takenAt,
		Routes:  engine.Routes(),
		Actions: engine.Registry().DumpTable(),
	}
}

// Save persists snap under name, overwriting any prior snapshot of the
// same name, and also under the "latest" key so the most recent capture
// is always reachable without knowing its name.
func (s *Store) Save(name string, snap Snapshot) error {
	if err := s.db.PutJSON(bucketName, name, snap); err != nil {
		return fmt.Errorf("diagnostics: saving snapshot %q: %w", name, err)
	}
	if name != latestKey {
		if err := s.db.PutJSON(bucketName, latestKey, snap); err != nil {
			return fmt.Errorf("diagnostics: saving latest snapshot: %w", err)
		}
	}
	return nil
}

// Load retrieves the snapshot stored under name.
func (s *Store) Load(name string) (Snapshot, error) {
	var snap Snapshot
	if err := s.db.GetJSON(bucketName, name, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("diagnostics: loading snapshot %q: %w", name, err)
	}
	return snap, nil
}

// Latest retrieves the most recently saved snapshot, regardless of name.
func (s *Store) Latest() (Snapshot, error) {
	return s.Load(latestKey)
}

// Names lists every snapshot name stored, including "latest".
func (s *Store) Names() ([]string, error) {
	return s.db.List(bucketName)
}

// Prune deletes every snapshot (other than "latest") taken before cutoff,
// returning the names removed, using ForEachJSON to inspect each
// snapshot's TakenAt without loading every one through Load first.
func (s *Store) Prune(cutoff time.Time) ([]string, error) {
	var stale []string
	err := s.db.ForEachJSON(bucketName, func(name string, value interface{}) error {
		if name == latestKey {
			return nil
		}
		snap := value.(*Snapshot)
		if snap.TakenAt.Before(cutoff) {
			stale = append(stale, name)
		}
		return nil
	}, func() interface{} { return &Snapshot{} })
	if err != nil {
		return nil, fmt.Errorf("diagnostics: scanning snapshots for pruning: %w", err)
	}

	for _, name := range stale {
		if err := s.db.Delete(bucketName, name); err != nil {
			return nil, fmt.Errorf("diagnostics: pruning snapshot %q: %w", name, err)
		}
	}
	return stale, nil
}

// Diff reports the routes present in b but not a, and the routes present
// in a but not b, keyed by (DispatchType, Pattern). It is a plain value
// comparison; a route whose PrivateName changed but Pattern/DispatchType
// did not is not reported as added or removed.
func Diff(a, b Snapshot) (added, removed []dispatch.RouteInfo) {
	key := func(r dispatch.RouteInfo) string { return r.DispatchType + "\x00" + r.Pattern }

	inA := make(map[string]bool, len(a.Routes))
	for _, r := range a.Routes {
		inA[key(r)] = true
	}
	inB := make(map[string]bool, len(b.Routes))
	for _, r := range b.Routes {
		inB[key(r)] = true
	}

	for _, r := range b.Routes {
		if !inA[key(r)] {
			added = append(added, r)
		}
	}
	for _, r := range a.Routes {
		if !inB[key(r)] {
			removed = append(removed, r)
		}
	}
	return added, removed
}
