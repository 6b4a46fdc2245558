package db

import (
	"encoding/binary"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("store resource not found")

const lastRefreshKeyPrefix = "last-refresh-"

// PebbleStore keeps refresh bookkeeping that must survive restarts: the unix
// time of the last completed refresh per network.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(storeDir string) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Join(storeDir, "dashboard-internal-store"), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble db: %v", err)
	}

	return &PebbleStore{db: db}, nil
}

func (ps *PebbleStore) SetLastRefresh(network string, unixTime int64) error {
	key := []byte(lastRefreshKeyPrefix + network)
	var value []byte
	value = binary.BigEndian.AppendUint64(value, uint64(unixTime))

	err := ps.db.Set(key, value, pebble.Sync)
	if err != nil {
		return errors.Wrapf(err, "setting key [%s] to [%d]", key, unixTime)
	}

	return nil
}

func (ps *PebbleStore) GetLastRefresh(network string) (int64, error) {
	key := []byte(lastRefreshKeyPrefix + network)

	value, closer, err := ps.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrapf(err, "getting value for key [%s]", key)
	}
	defer closer.Close()

	return int64(binary.BigEndian.Uint64(value)), nil
}

func (ps *PebbleStore) Close() error {
	return ps.db.Close()
}
