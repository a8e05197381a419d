package preferences

import (
	"context"
	"log"

	"github.com/ziadkadry99/dynbook/internal/activebook"
	"github.com/ziadkadry99/dynbook/internal/models"
)

// PersistActiveBook writes every change of the active book id to the store
// until ctx is done. A change still pending when ctx ends is written before
// the returned channel closes, so callers can wait on it to flush.
func PersistActiveBook(ctx context.Context, store *Store, holder *activebook.Holder) <-chan struct{} {
	updates, cancel := holder.Subscribe()
	done := make(chan struct{})

	// The current value was either loaded from the store or is empty.
	<-updates

	save := func(book *models.Book) {
		id := ""
		if book != nil {
			id = book.ID
		}
		if err := store.SetActiveBookID(context.WithoutCancel(ctx), id); err != nil {
			log.Printf("preferences: saving active book: %v", err)
		}
	}

	go func() {
		defer close(done)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				select {
				case book, ok := <-updates:
					if ok {
						save(book)
					}
				default:
				}
				return
			case book, ok := <-updates:
				if !ok {
					return
				}
				save(book)
			}
		}
	}()
	return done
}
