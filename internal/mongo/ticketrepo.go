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

type TicketRepo struct {
	collection *mongo.Collection
}

func NewTicketRepo(db *mongo.Database) *TicketRepo {
	return &TicketRepo{
		collection: db.Collection(ticketsCollection),
	}
}

func (r *TicketRepo) Create(ctx context.Context, t *lifecycle.KitchenOrder) error {
	t.Version = 1
	if _, err := r.collection.InsertOne(ctx, toTicketDoc(t)); err != nil {
		return fmt.Errorf("cannot insert ticket: %w", err)
	}
	return nil
}

func (r *TicketRepo) Save(ctx context.Context, t *lifecycle.KitchenOrder) error {
	expected := t.Version
	doc := toTicketDoc(t)
	doc.Version = expected + 1

	if err := casUpdate(ctx, r.collection, t.ID, expected, doc); err != nil {
		return fmt.Errorf("cannot save ticket %s: %w", t.ID, err)
	}
	t.Version = doc.Version
	return nil
}

func (r *TicketRepo) FindByID(ctx context.Context, id lifecycle.KitchenOrderID) (*lifecycle.KitchenOrder, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *TicketRepo) FindByOrderID(ctx context.Context, id lifecycle.OrderID) (*lifecycle.KitchenOrder, error) {
	return r.findOne(ctx, bson.M{"order_id": id})
}

func (r *TicketRepo) findOne(ctx context.Context, filter bson.M) (*lifecycle.KitchenOrder, error) {
	var doc ticketDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("ticket: %w", errNotFound)
		}
		return nil, fmt.Errorf("cannot find ticket: %w", err)
	}
	return doc.toTicket(), nil
}

func (r *TicketRepo) List(ctx context.Context, filter kitchen.TicketFilter) ([]lifecycle.KitchenOrder, error) {
	query := bson.M{}

	if filter.Station != nil {
		query["items.station"] = *filter.Station
	}

	if filter.Status != nil {
		query["status"] = *filter.Status
	}

	if filter.OrderID != nil {
		query["order_id"] = *filter.OrderID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find tickets: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []ticketDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode tickets: %w", err)
	}

	tickets := make([]lifecycle.KitchenOrder, 0, len(docs))
	for _, d := range docs {
		tickets = append(tickets, *d.toTicket())
	}
	return tickets, nil
}
