package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/lifecycle/internal/menu"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MenuItemRepo struct {
	collection *mongo.Collection
}

func NewMenuItemRepo(db *mongo.Database) *MenuItemRepo {
	return &MenuItemRepo{
		collection: db.Collection(menuItemsCollection),
	}
}

// Create upserts by id so seeds can be re-applied.
func (r *MenuItemRepo) Create(ctx context.Context, item *menu.MenuItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	item.UpdatedAt = item.CreatedAt

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": item.ID},
		bson.M{"$setOnInsert": toMenuItemDoc(item)},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("cannot create menu item: %w", err)
	}
	return nil
}

func (r *MenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*menu.MenuItem, error) {
	var doc menuItemDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("menu item %s: %w", id, menu.ErrMenuItemNotFound)
		}
		return nil, fmt.Errorf("cannot get menu item: %w", err)
	}
	item, err := doc.toMenuItem()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MenuItemRepo) ListActive(ctx context.Context) ([]menu.MenuItem, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("cannot list menu items: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []menuItemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode menu items: %w", err)
	}

	items := make([]menu.MenuItem, 0, len(docs))
	for _, d := range docs {
		item, err := d.toMenuItem()
		if err != nil {
			return nil, fmt.Errorf("cannot decode menu item %s: %w", d.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

type StaffRepo struct {
	collection *mongo.Collection
}

func NewStaffRepo(db *mongo.Database) *StaffRepo {
	return &StaffRepo{
		collection: db.Collection(staffCollection),
	}
}

func (r *StaffRepo) Create(ctx context.Context, s *menu.Staff) error {
	doc := staffDoc{ID: s.ID, Name: s.Name, Role: s.Role, Active: s.Active, CreatedAt: s.CreatedAt}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": s.ID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("cannot create staff: %w", err)
	}
	return nil
}

func (r *StaffRepo) ListActive(ctx context.Context) ([]menu.Staff, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"active": true}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("cannot list staff: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []staffDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode staff: %w", err)
	}

	staff := make([]menu.Staff, 0, len(docs))
	for _, d := range docs {
		staff = append(staff, menu.Staff{ID: d.ID, Name: d.Name, Role: d.Role, Active: d.Active, CreatedAt: d.CreatedAt})
	}
	return staff, nil
}
