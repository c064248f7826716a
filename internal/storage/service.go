package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ramonehamilton/flashdeck/internal/storage/models"
	"github.com/ramonehamilton/flashdeck/internal/storage/repository"
)

// Service loads and saves the flashcard state and exposes the settings store.
type Service struct {
	db       *DB
	state    repository.StateRepository
	settings repository.SettingsRepository
}

// NewService creates a storage service over an open, migrated database.
func NewService(db *DB) *Service {
	return &Service{
		db:       db,
		state:    repository.NewStateRepository(db.Conn()),
		settings: repository.NewSettingsRepository(db.Conn()),
	}
}

// LoadState reads the stored decks and keyword pool and migrates them to the
// current version. An empty database yields an empty state.
func (s *Service) LoadState(ctx context.Context) (models.State, error) {
	decksValue, haveDecks, err := s.state.Get(ctx, repository.StateKeyDecks)
	if err != nil {
		return models.State{}, err
	}
	keywordsValue, haveKeywords, err := s.state.Get(ctx, repository.StateKeyKeywords)
	if err != nil {
		return models.State{}, err
	}

	if !haveDecks && !haveKeywords {
		return models.State{Version: models.StateVersion, Decks: []models.Deck{}, Keywords: []string{}}, nil
	}

	var stored models.State
	if haveDecks {
		stored.Version = decksValue.SchemaVersion
		if err := json.Unmarshal([]byte(decksValue.Value), &stored.Decks); err != nil {
			return models.State{}, fmt.Errorf("failed to decode stored decks: %w", err)
		}
	}
	if haveKeywords {
		if stored.Version == 0 {
			stored.Version = keywordsValue.SchemaVersion
		}
		if err := json.Unmarshal([]byte(keywordsValue.Value), &stored.Keywords); err != nil {
			return models.State{}, fmt.Errorf("failed to decode stored keywords: %w", err)
		}
	}

	state, report := MigrateState(stored)
	if report.Changed() {
		log.Printf("[Storage] Migrated state v%d -> v%d (dropped %d decks, assigned %d ids, repaired %d cards, derived keywords: %v)",
			report.FromVersion, report.ToVersion, report.DecksDropped, report.IDsAssigned,
			report.CountersRepaired, report.KeywordsDerived)
	}
	return state, nil
}

// SaveState writes the decks and keyword pool in one transaction.
func (s *Service) SaveState(ctx context.Context, state models.State) error {
	decks := state.Decks
	if decks == nil {
		decks = []models.Deck{}
	}
	keywords := state.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	version := state.Version
	if version == 0 {
		version = models.StateVersion
	}

	decksJSON, err := json.Marshal(decks)
	if err != nil {
		return fmt.Errorf("failed to encode decks: %w", err)
	}
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}

	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		repo := repository.NewStateRepository(tx)
		if err := repo.Put(ctx, repository.StateKeyDecks, string(decksJSON), version); err != nil {
			return err
		}
		return repo.Put(ctx, repository.StateKeyKeywords, string(keywordsJSON), version)
	})
}

// Settings returns the UI preference store.
func (s *Service) Settings() repository.SettingsRepository {
	return s.settings
}

// DB returns the underlying database.
func (s *Service) DB() *DB {
	return s.db
}

// Close closes the database connection.
func (s *Service) Close() error {
	return s.db.Close()
}
