package doctor

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Repository справочник врачей в MongoDB: рабочие дни и отпуска
type Repository struct {
	collection *mongo.Collection
}

// NewRepository создает репозиторий поверх коллекции врачей
func NewRepository(collection *mongo.Collection) *Repository {
	return &Repository{collection: collection}
}

// GetByID получает врача по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Doctor, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var doc doctorDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID: %v", ErrFind, err)
	}

	return doc.toDomain(), nil
}

// AddLeave добавляет отпуск в конец списка и возвращает полный список отпусков врача
func (r *Repository) AddLeave(ctx context.Context, doctorID string, leave domain.Leave) ([]domain.Leave, error) {
	objectID, err := primitive.ObjectIDFromHex(doctorID)
	if err != nil {
		return nil, ErrInvalidID
	}

	leaveID := primitive.NewObjectID()
	if parsed, err := primitive.ObjectIDFromHex(leave.ID); err == nil {
		leaveID = parsed
	}

	update := bson.M{"$push": bson.M{"leaves": leaveDocument{
		ID:        leaveID,
		StartDate: leave.StartDate,
		EndDate:   leave.EndDate,
		Reason:    leave.Reason,
	}}}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"leaves": 1})

	var doc doctorDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: AddLeave: %v", ErrUpdate, err)
	}

	return leavesToDomain(doc.Leaves), nil
}

// GetLeaves возвращает отпуска врача
func (r *Repository) GetLeaves(ctx context.Context, doctorID string) ([]domain.Leave, error) {
	objectID, err := primitive.ObjectIDFromHex(doctorID)
	if err != nil {
		return nil, ErrInvalidID
	}

	opts := options.FindOne().SetProjection(bson.M{"leaves": 1})

	var doc doctorDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetLeaves: %v", ErrFind, err)
	}

	return leavesToDomain(doc.Leaves), nil
}

// Upsert создает или заменяет документ врача. Используется при заполнении справочника.
func (r *Repository) Upsert(ctx context.Context, d *domain.Doctor) error {
	doc, err := fromDomain(d)
	if err != nil {
		return err
	}

	_, err = r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: Upsert: %v", ErrUpdate, err)
	}

	return nil
}

// EnsureIndexes создает индекс по (hospitalId, departmentId)
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "hospitalId", Value: 1}, {Key: "departmentId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("%w: EnsureIndexes: %v", ErrUpdate, err)
	}
	return nil
}
