package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/lifecycle/internal/kitchen"
	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{
		collection: db.Collection(ordersCollection),
	}
}

func (r *OrderRepo) Create(ctx context.Context, o *lifecycle.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	o.Version = 1
	if _, err := r.collection.InsertOne(ctx, toOrderDoc(o)); err != nil {
		return fmt.Errorf("cannot create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) Save(ctx context.Context, o *lifecycle.Order) error {
	expected := o.Version
	doc := toOrderDoc(o)
	doc.Version = expected + 1

	if err := casUpdate(ctx, r.collection, o.ID, expected, doc); err != nil {
		return fmt.Errorf("cannot save order %s: %w", o.ID, err)
	}
	o.Version = doc.Version
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id lifecycle.OrderID) (*lifecycle.Order, error) {
	var doc orderDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order %s: %w", id, errNotFound)
		}
		return nil, fmt.Errorf("cannot get order: %w", err)
	}
	return doc.toOrder()
}

func (r *OrderRepo) Delete(ctx context.Context, id lifecycle.OrderID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("cannot delete order: %w", err)
	}
	return nil
}

func (r *OrderRepo) List(ctx context.Context, filter kitchen.OrderFilter) ([]lifecycle.Order, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.TableNumber != nil {
		query["table_number"] = *filter.TableNumber
	}
	if !filter.IncludeArchived {
		query["archived"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode orders: %w", err)
	}

	result := make([]lifecycle.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.toOrder()
		if err != nil {
			return nil, fmt.Errorf("cannot decode order %s: %w", d.ID, err)
		}
		result = append(result, *o)
	}
	return result, nil
}
