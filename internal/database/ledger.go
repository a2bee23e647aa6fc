package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"procure-dispatch-api-server/internal/models"
	"procure-dispatch-api-server/internal/procurement"
)

// MongoLedger stores procurement aggregates in the "procurement_requests"
// collection. Update is a single conditional ReplaceOne keyed on
// {requestID, revision}: whoever swaps first wins, the loser gets
// STALE_STATE. No application-level locks.
type MongoLedger struct {
	Collection *mongo.Collection
}

func NewMongoLedger(db *mongo.Database) *MongoLedger {
	return &MongoLedger{Collection: db.Collection("procurement_requests")}
}

func (l *MongoLedger) Insert(ctx context.Context, req *models.ProcurementRequest) error {
	req.Revision = 1
	result, err := l.Collection.InsertOne(ctx, req)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid
	}
	return nil
}

func (l *MongoLedger) Get(ctx context.Context, requestID string) (*models.ProcurementRequest, error) {
	var req models.ProcurementRequest
	err := l.Collection.FindOne(ctx, bson.M{"requestID": requestID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, procurement.NotFoundError(requestID)
		}
		return nil, err
	}
	return &req, nil
}

func (l *MongoLedger) List(ctx context.Context, f procurement.Filter) ([]models.ProcurementRequest, error) {
	filter := bson.M{}
	if f.FranchiseID != "" {
		filter["franchiseID"] = f.FranchiseID
	}
	if f.VendorID != "" {
		filter["vendorID"] = f.VendorID
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		filter["status"] = bson.M{"$in": statuses}
	} else if f.ExcludeTerminal {
		filter["status"] = bson.M{"$nin": []string{
			string(procurement.StatusCompleted),
			string(procurement.StatusRejected),
			string(procurement.StatusCancelled),
		}}
	}

	cursor, err := l.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.ProcurementRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.ProcurementRequest{}
	}
	return requests, nil
}

func (l *MongoLedger) Update(ctx context.Context, req *models.ProcurementRequest) error {
	prev := req.Revision
	req.Revision = prev + 1

	result, err := l.Collection.ReplaceOne(ctx, bson.M{"requestID": req.RequestID, "revision": prev}, req)
	if err != nil {
		req.Revision = prev
		return err
	}
	if result.MatchedCount == 0 {
		req.Revision = prev
		count, countErr := l.Collection.CountDocuments(ctx, bson.M{"requestID": req.RequestID})
		if countErr == nil && count == 0 {
			return procurement.NotFoundError(req.RequestID)
		}
		return procurement.StaleStateError(req.RequestID)
	}
	return nil
}
