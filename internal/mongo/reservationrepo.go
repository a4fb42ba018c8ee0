package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationRepo struct {
	collection *mongo.Collection
}

func NewReservationRepo(db *mongo.Database) *ReservationRepo {
	return &ReservationRepo{
		collection: db.Collection(reservationsCollection),
	}
}

func (r *ReservationRepo) Create(ctx context.Context, res *lifecycle.Reservation) error {
	res.Version = 1
	if _, err := r.collection.InsertOne(ctx, toReservationDoc(res)); err != nil {
		return fmt.Errorf("cannot create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepo) Save(ctx context.Context, res *lifecycle.Reservation) error {
	expected := res.Version
	doc := toReservationDoc(res)
	doc.Version = expected + 1

	if err := casUpdate(ctx, r.collection, res.ID, expected, doc); err != nil {
		return fmt.Errorf("cannot save reservation %s: %w", res.ID, err)
	}
	res.Version = doc.Version
	return nil
}

func (r *ReservationRepo) Get(ctx context.Context, id uuid.UUID) (*lifecycle.Reservation, error) {
	var doc reservationDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("reservation %s: %w", id, errNotFound)
		}
		return nil, fmt.Errorf("cannot get reservation: %w", err)
	}
	return doc.toReservation(), nil
}
