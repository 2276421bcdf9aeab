package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/i474232898/plant-care/internal/care"
)

// MongoStore implements care.Store on MongoDB. Records are keyed by their own "id" field;
// the driver-generated _id is never read.
type MongoStore struct {
	client   *mongo.Client
	db       *mongo.Database
	plants   *mongo.Collection
	tasks    *mongo.Collection
	logs     *mongo.Collection
	journal  *mongo.Collection
	supplies *mongo.Collection
	users    *mongo.Collection
}

var _ care.Store = (*MongoStore)(nil)

// NewMongoStore connects to uri, selects database dbName and ensures indexes exist.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:   client,
		db:       db,
		plants:   db.Collection("plants"),
		tasks:    db.Collection("care_tasks"),
		logs:     db.Collection("care_logs"),
		journal:  db.Collection("journal_entries"),
		supplies: db.Collection("supplies"),
		users:    db.Collection("users"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	idx := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.plants, mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique}},
		{s.plants, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}}}},
		{s.tasks, mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique}},
		{s.tasks, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}, {Key: "dueDate", Value: 1}}}},
		// At most one WATER task per plant. Other types may repeat.
		{s.tasks, mongo.IndexModel{
			Keys: bson.D{{Key: "plantId", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"type": string(care.TaskWater)}),
		}},
		{s.logs, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}}},
		{s.journal, mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique}},
		{s.journal, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "plantId", Value: 1}, {Key: "entryDate", Value: -1}}}},
		{s.supplies, mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique}},
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique}},
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		{s.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		}},
	}
	for _, i := range idx {
		if _, err := i.coll.Indexes().CreateOne(ctx, i.model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.coll.Name(), err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping reports whether the server is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

func byID(id string) bson.M { return bson.M{"id": id} }

func ownerFilter(userID string) bson.M {
	if userID == "" {
		return bson.M{}
	}
	return bson.M{"userId": userID}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (T, error) {
	var v T
	err := coll.FindOne(ctx, filter).Decode(&v)
	return v, mapErr(err)
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc any) error {
	_, err := coll.InsertOne(ctx, doc)
	return mapErr(err)
}

func replaceByID(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	res, err := coll.ReplaceOne(ctx, byID(id), doc)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- plants

// ListPlants returns plants of userID (all when empty), oldest first.
func (s *MongoStore) ListPlants(ctx context.Context, userID string) ([]care.Plant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "id", Value: 1}})
	return findAll[care.Plant](ctx, s.plants, ownerFilter(userID), opts)
}

// GetPlant returns the plant or ErrNotFound.
func (s *MongoStore) GetPlant(ctx context.Context, id string) (care.Plant, error) {
	return findOne[care.Plant](ctx, s.plants, byID(id))
}

// CreatePlant inserts p. A taken id yields ErrDuplicate.
func (s *MongoStore) CreatePlant(ctx context.Context, p care.Plant) error {
	return insertOne(ctx, s.plants, p)
}

// UpdatePlant replaces an existing plant.
func (s *MongoStore) UpdatePlant(ctx context.Context, p care.Plant) error {
	return replaceByID(ctx, s.plants, p.ID, p)
}

// DeletePlant removes the plant, then its tasks.
func (s *MongoStore) DeletePlant(ctx context.Context, id string) error {
	if err := deleteByID(ctx, s.plants, id); err != nil {
		return err
	}
	_, err := s.tasks.DeleteMany(ctx, bson.M{"plantId": id})
	return err
}

// ---- tasks

// ReplaceWaterTask upserts on (plantId, WATER). The partial unique index guarantees a
// single WATER task per plant, so one ReplaceOne is the whole swap.
func (s *MongoStore) ReplaceWaterTask(ctx context.Context, plantID string, t care.CareTask) error {
	t.PlantID = plantID
	t.Type = care.TaskWater
	filter := bson.M{"plantId": plantID, "type": string(care.TaskWater)}
	_, err := s.tasks.ReplaceOne(ctx, filter, t, options.Replace().SetUpsert(true))
	return mapErr(err)
}

// DeleteTasksByPlantAndType removes tasks of one type for a plant, optionally scoped to userID.
func (s *MongoStore) DeleteTasksByPlantAndType(ctx context.Context, plantID string, typ care.TaskType, userID string) error {
	filter := bson.M{"plantId": plantID, "type": string(typ)}
	if userID != "" {
		filter["userId"] = userID
	}
	_, err := s.tasks.DeleteMany(ctx, filter)
	return err
}

// InsertTask stores a new task.
func (s *MongoStore) InsertTask(ctx context.Context, t care.CareTask) error {
	return insertOne(ctx, s.tasks, t)
}

// GetTask returns the task or ErrNotFound.
func (s *MongoStore) GetTask(ctx context.Context, id string) (care.CareTask, error) {
	return findOne[care.CareTask](ctx, s.tasks, byID(id))
}

// UpdateTaskStatus sets the status and, when given, the completion date.
func (s *MongoStore) UpdateTaskStatus(ctx context.Context, id string, status care.TaskStatus, lastCompleted *time.Time) error {
	set := bson.M{"status": string(status)}
	if lastCompleted != nil {
		set["lastCompleted"] = *lastCompleted
	}
	res, err := s.tasks.UpdateOne(ctx, byID(id), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var taskOrder = bson.D{{Key: "dueDate", Value: 1}, {Key: "id", Value: 1}}

// ListTasksNeedingAttention returns tasks that are neither DONE nor CANCELLED, by due date.
func (s *MongoStore) ListTasksNeedingAttention(ctx context.Context, userID string) ([]care.CareTask, error) {
	filter := ownerFilter(userID)
	filter["status"] = bson.M{"$nin": bson.A{string(care.StatusDone), string(care.StatusCancelled)}}
	return findAll[care.CareTask](ctx, s.tasks, filter, options.Find().SetSort(taskOrder))
}

// ListTasksByPlant returns every task of a plant, by due date.
func (s *MongoStore) ListTasksByPlant(ctx context.Context, plantID string) ([]care.CareTask, error) {
	return findAll[care.CareTask](ctx, s.tasks, bson.M{"plantId": plantID}, options.Find().SetSort(taskOrder))
}

// ---- logs

// InsertLog stores a care log entry.
func (s *MongoStore) InsertLog(ctx context.Context, e care.CareLogEntry) error {
	return insertOne(ctx, s.logs, e)
}

// ListLogs returns matching entries newest first. limit <= 0 means no limit.
func (s *MongoStore) ListLogs(ctx context.Context, userID, plantID string, limit int) ([]care.CareLogEntry, error) {
	filter := ownerFilter(userID)
	if plantID != "" {
		filter["plantId"] = plantID
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findAll[care.CareLogEntry](ctx, s.logs, filter, opts)
}

// ---- journal

// InsertJournalEntry stores a new journal entry.
func (s *MongoStore) InsertJournalEntry(ctx context.Context, e care.JournalEntry) error {
	return insertOne(ctx, s.journal, e)
}

// GetJournalEntry returns the entry or ErrNotFound.
func (s *MongoStore) GetJournalEntry(ctx context.Context, id string) (care.JournalEntry, error) {
	return findOne[care.JournalEntry](ctx, s.journal, byID(id))
}

// ListJournalEntries returns entries of userID, optionally for one plant, newest first.
func (s *MongoStore) ListJournalEntries(ctx context.Context, userID, plantID string) ([]care.JournalEntry, error) {
	filter := bson.M{"userId": userID}
	if plantID != "" {
		filter["plantId"] = plantID
	}
	opts := options.Find().SetSort(bson.D{{Key: "entryDate", Value: -1}, {Key: "id", Value: 1}})
	return findAll[care.JournalEntry](ctx, s.journal, filter, opts)
}

// DeleteJournalEntry removes a journal entry.
func (s *MongoStore) DeleteJournalEntry(ctx context.Context, id string) error {
	return deleteByID(ctx, s.journal, id)
}

// ---- supplies

// ListSupplies returns supplies of userID sorted by name.
func (s *MongoStore) ListSupplies(ctx context.Context, userID string) ([]care.SupplyItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findAll[care.SupplyItem](ctx, s.supplies, ownerFilter(userID), opts)
}

// GetSupply returns the item or ErrNotFound.
func (s *MongoStore) GetSupply(ctx context.Context, id string) (care.SupplyItem, error) {
	return findOne[care.SupplyItem](ctx, s.supplies, byID(id))
}

// CreateSupply inserts a supply item.
func (s *MongoStore) CreateSupply(ctx context.Context, item care.SupplyItem) error {
	return insertOne(ctx, s.supplies, item)
}

// AdjustSupply increments the quantity in one round trip and returns the updated item.
func (s *MongoStore) AdjustSupply(ctx context.Context, id string, delta int, restocked *time.Time) (care.SupplyItem, error) {
	update := bson.M{"$inc": bson.M{"quantity": delta}}
	if restocked != nil {
		update["$set"] = bson.M{"lastRestocked": *restocked}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item care.SupplyItem
	err := s.supplies.FindOneAndUpdate(ctx, byID(id), update, opts).Decode(&item)
	return item, mapErr(err)
}

// DeleteSupply removes a supply item.
func (s *MongoStore) DeleteSupply(ctx context.Context, id string) error {
	return deleteByID(ctx, s.supplies, id)
}

// ---- users

// CreateUser inserts u with a lowercased email.
func (s *MongoStore) CreateUser(ctx context.Context, u care.User) error {
	u.Email = strings.ToLower(u.Email)
	return insertOne(ctx, s.users, u)
}

// GetUser returns the user or ErrNotFound.
func (s *MongoStore) GetUser(ctx context.Context, id string) (care.User, error) {
	return findOne[care.User](ctx, s.users, byID(id))
}

// FindUserByEmail looks a user up by email, ignoring case.
func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (care.User, error) {
	return findOne[care.User](ctx, s.users, bson.M{"email": strings.ToLower(email)})
}

// FindUserByUsername looks a user up by username.
func (s *MongoStore) FindUserByUsername(ctx context.Context, username string) (care.User, error) {
	return findOne[care.User](ctx, s.users, bson.M{"username": username})
}

// UpdateUser replaces an existing user.
func (s *MongoStore) UpdateUser(ctx context.Context, u care.User) error {
	u.Email = strings.ToLower(u.Email)
	return replaceByID(ctx, s.users, u.ID, u)
}
