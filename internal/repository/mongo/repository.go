package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mauriciocucco/margaritas-warehouse-service/internal/repository"
)

// InventoryDocument представляет документ в коллекции MongoDB
type InventoryDocument struct {
	Name      string    `bson:"name"`
	Quantity  int       `bson:"quantity"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Repository реализует InventoryRepository используя MongoDB
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

// NewRepository создаёт новый MongoDB репозиторий.
// Создаёт уникальный индекс на name при инициализации — по одному документу
// на каждый ингредиент.
func NewRepository(client *mongo.Client, dbName string) *Repository {
	db := client.Database(dbName)
	col := db.Collection("inventory")

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Создаём индекс (если уже существует - игнорируем ошибку)
	_, _ = col.Indexes().CreateOne(ctx, indexModel)

	return &Repository{
		client: client,
		db:     db,
		col:    col,
	}
}

// GetQuantity получает остаток ингредиента из MongoDB.
// Возвращает ErrNotFound, если записи нет — service слой трактует это как остаток 0.
func (r *Repository) GetQuantity(ctx context.Context, ingredient string) (int, error) {
	var doc InventoryDocument
	err := r.col.FindOne(ctx, bson.M{"name": ingredient}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}

	return doc.Quantity, nil
}

// ApplyDelta атомарно прибавляет delta к остатку ингредиента.
// Использует FindOneAndUpdate с $inc — одна операция на стороне БД,
// корректная при конкурентных запросах по одному ингредиенту.
// Для отрицательной delta фильтр quantity >= -delta гарантирует,
// что остаток никогда не уйдёт в минус.
func (r *Repository) ApplyDelta(ctx context.Context, ingredient string, delta int) error {
	if delta == 0 {
		return nil
	}

	filter := bson.M{"name": ingredient}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	if delta < 0 {
		// Списание: документ должен существовать и покрывать дельту
		filter["quantity"] = bson.M{"$gte": -delta}
	} else {
		// Приход: отсутствующий документ создаётся с нулевой базой
		opts = opts.SetUpsert(true)
	}

	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	var updated InventoryDocument
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Документ не найден или остаток меньше списываемого количества
			return repository.ErrInsufficientStock
		}
		return err
	}

	return nil
}

// List возвращает все остатки, отсортированные по имени ингредиента
func (r *Repository) List(ctx context.Context) ([]repository.InventoryItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]repository.InventoryItem, 0)
	for cursor.Next(ctx) {
		var doc InventoryDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, repository.InventoryItem{
			Name:      doc.Name,
			Quantity:  doc.Quantity,
			UpdatedAt: doc.UpdatedAt,
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
