package mongo

import (
	"context"
	"errors"
	"fmt"
	"log"

	"book-order-service/internal/domain"
	"book-order-service/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) repository.OrderRepository {
	return &orderRepo{collection: db.Collection("orders")}
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		log.Printf("Mongo insert order error: %v", err)
		return fmt.Errorf("failed to insert order: %w", err)
	}

	log.Printf("Order saved successfully with ID: %s", order.ID)
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

func (r *orderRepo) Update(ctx context.Context, order *domain.Order, expected domain.OrderStatus) error {
	filter := bson.M{"_id": order.ID, "status": expected}
	update := bson.M{
		"$set": bson.M{
			"mpesa_code":  order.MpesaCode,
			"mpesa_phone": order.MpesaPhone,
			"status":      order.Status,
			"updated_at":  order.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	if result.MatchedCount == 0 {
		return repository.ErrStatusConflict
	}
	return nil
}

func (r *orderRepo) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

type settingRepo struct {
	collection *mongo.Collection
}

func NewSettingRepository(db *mongo.Database) repository.SettingRepository {
	return &settingRepo{collection: db.Collection("admin")}
}

func (r *settingRepo) GetSettings(ctx context.Context) (*domain.AdminSetting, error) {
	var s domain.AdminSetting
	err := r.collection.FindOne(ctx, bson.M{"_id": domain.SettingsKey}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

func (r *settingRepo) SaveSettings(ctx context.Context, setting *domain.AdminSetting) error {
	setting.ID = domain.SettingsKey
	update := bson.M{
		"$set": bson.M{
			"youtube_url": setting.YoutubeURL,
			"updated_at":  setting.UpdatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": domain.SettingsKey}, update, opts); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
