package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// CollectionPool owns one rating store connection per photo collection.
// Stores open lazily on first access and close together on shutdown; the
// pool is the single owner, there is no process-global connection map.
type CollectionPool struct {
	storageDir string
	mu         sync.Mutex
	conns      map[string]*sql.DB
}

// NewCollectionPool creates a pool that keeps its store files under
// storageDir.
func NewCollectionPool(storageDir string) (*CollectionPool, error) {
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create rating store directory %s: %w", storageDir, err)
	}
	return &CollectionPool{
		storageDir: storageDir,
		conns:      make(map[string]*sql.DB),
	}, nil
}

// storeFileName keys the on-disk store by a digest of the collection path,
// keeping the user's photo folders untouched
func (p *CollectionPool) storeFileName(collectionPath string) string {
	sum := sha256.Sum256([]byte(filepath.ToSlash(collectionPath)))
	return hex.EncodeToString(sum[:8]) + ".db"
}

// Get returns the rating store for a collection, opening it if needed.
func (p *CollectionPool) Get(collectionPath string) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if db, ok := p.conns[collectionPath]; ok {
		return db, nil
	}

	dbPath := filepath.Join(p.storageDir, p.storeFileName(collectionPath))
	db, err := InitRatingDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open rating store for collection %s: %w", collectionPath, err)
	}
	p.conns[collectionPath] = db
	return db, nil
}

// CloseAll closes every open store. Called once on shutdown.
func (p *CollectionPool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for path, db := range p.conns {
		if err := db.Close(); err != nil {
			log.Printf("database: error closing rating store for %s: %v", path, err)
		}
		delete(p.conns, path)
	}
}
