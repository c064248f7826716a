package export

import (
	"context"
	"log"
	"path/filepath"

	"github.com/ramonehamilton/flashdeck/internal/decks"
	"github.com/ramonehamilton/flashdeck/internal/events"
)

// Importer reads deck files and merges them into a repository.
type Importer struct {
	repo       *decks.Repository
	dispatcher *events.EventDispatcher
}

// NewImporter creates an importer. dispatcher may be nil.
func NewImporter(repo *decks.Repository, dispatcher *events.EventDispatcher) *Importer {
	return &Importer{repo: repo, dispatcher: dispatcher}
}

// ImportFile reads path and merges its decks. Decks whose id already exists are
// skipped. An import:completed event reports the outcome.
func (im *Importer) ImportFile(ctx context.Context, path, password string) (decks.MergeResult, error) {
	incoming, err := ReadDecks(path, password)
	if err != nil {
		return decks.MergeResult{}, err
	}

	result := im.repo.Merge(incoming)
	log.Printf("[Importer] %s: %d decks added, %d skipped, %d cards imported, %d rejected",
		filepath.Base(path), result.DecksAdded, result.DecksSkipped, result.CardsImported, result.CardsRejected)

	if im.dispatcher != nil {
		im.dispatcher.Dispatch(events.NewTypedEvent(ctx, events.EventImportCompleted, events.ImportCompletedEvent{
			Source:        path,
			DecksAdded:    result.DecksAdded,
			DecksSkipped:  result.DecksSkipped,
			CardsImported: result.CardsImported,
			CardsRejected: result.CardsRejected,
		}))
	}
	return result, nil
}
