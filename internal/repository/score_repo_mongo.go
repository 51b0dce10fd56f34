package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pokeguess/internal/model"
)

type mongoScoreRepo struct {
	collection *mongo.Collection
}

// NewMongoScoreRepo creates a score ledger on the players collection
func NewMongoScoreRepo(db *mongo.Database) ScoreRepo {
	repo := &mongoScoreRepo{
		collection: db.Collection("players"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *mongoScoreRepo) ensureIndexes(ctx context.Context) {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "score", Value: -1}},
	})
	if err != nil {
		logIndexError("players", err)
	}
}

func (r *mongoScoreRepo) EnsurePlayer(ctx context.Context, playerID, nickname string) error {
	now := time.Now()
	update := bson.M{
		"$setOnInsert": bson.M{
			"score":     0,
			"createdAt": now,
		},
		"$set": bson.M{
			"nickname":  nickname,
			"updatedAt": now,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": playerID}, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoScoreRepo) Increment(ctx context.Context, playerID string, points int) (int, error) {
	now := time.Now()
	update := bson.M{
		"$inc":         bson.M{"score": points},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var player model.Player
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": playerID}, update, opts).Decode(&player); err != nil {
		return 0, err
	}
	return player.Score, nil
}

func (r *mongoScoreRepo) GetPlayer(ctx context.Context, playerID string) (*model.Player, error) {
	var player model.Player
	err := r.collection.FindOne(ctx, bson.M{"_id": playerID}).Decode(&player)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &player, nil
}

func (r *mongoScoreRepo) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "score", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []*model.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, len(players))
	for i, p := range players {
		entries[i] = model.LeaderboardEntry{
			PlayerID: p.ID,
			Nickname: p.Nickname,
			Score:    p.Score,
			Rank:     i + 1,
		}
	}
	return entries, nil
}

func (r *mongoScoreRepo) Delete(ctx context.Context, playerID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": playerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
