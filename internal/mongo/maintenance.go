package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CountOrdersByServer counts the orders taken by serverName.
func CountOrdersByServer(ctx context.Context, db *mongo.Database, serverName string) (int64, error) {
	n, err := db.Collection(ordersCollection).CountDocuments(ctx, bson.M{"server_name": serverName})
	if err != nil {
		return 0, fmt.Errorf("cannot count orders: %w", err)
	}
	return n, nil
}

// DeleteByServer removes the orders taken by serverName and their kitchen
// orders.
func DeleteByServer(ctx context.Context, db *mongo.Database, serverName string) (orders, tickets int64, err error) {
	filter := bson.M{"server_name": serverName}

	res, err := db.Collection(ticketsCollection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot delete kitchen orders: %w", err)
	}
	tickets = res.DeletedCount

	res, err = db.Collection(ordersCollection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, tickets, fmt.Errorf("cannot delete orders: %w", err)
	}
	return res.DeletedCount, tickets, nil
}
