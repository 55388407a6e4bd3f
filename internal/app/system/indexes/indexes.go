// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	groupstore "github.com/artom-sites/choirhub/internal/app/store/groups"
	notificationstore "github.com/artom-sites/choirhub/internal/app/store/notifications"
	principalstore "github.com/artom-sites/choirhub/internal/app/store/principals"
	servicestore "github.com/artom-sites/choirhub/internal/app/store/services"
	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
)

// Ensure creates all collection indexes. Called once at startup from
// EnsureSchema; index creation is idempotent on the server side.
func Ensure(ctx context.Context, db *mongo.Database) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", userstore.New(db).EnsureIndexes},
		{"groups", groupstore.New(db).EnsureIndexes},
		{"services", servicestore.New(db).EnsureIndexes},
		{"principals", principalstore.New(db).EnsureIndexes},
		{"notifications", notificationstore.New(db).EnsureIndexes},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", s.name, err)
		}
	}
	return nil
}
