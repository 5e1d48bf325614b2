package doctors

import (
	"context"
	"errors"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type DoctorMongoRepository struct {
	Collection *mongo.Collection
}

func NewDoctorMongoRepository(db *mongo.Client, dbName string) contracts.DoctorRepository {
	return &DoctorMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionDoctors),
	}
}

// FindByID treats a malformed id like an unknown one so callers answer 404.
func (r *DoctorMongoRepository) FindByID(ctx context.Context, doctorID string) (*models.Doctor, error) {
	objectID, err := primitive.ObjectIDFromHex(doctorID)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *DoctorMongoRepository) FindByUserID(ctx context.Context, userID string) (*models.Doctor, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"userId": objectID})
}

// FindByIDs batch loads profiles keyed by their hex id. Malformed and unknown
// ids are simply absent from the result.
func (r *DoctorMongoRepository) FindByIDs(ctx context.Context, doctorIDs []string) (map[string]models.Doctor, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(doctorIDs))
	for _, doctorID := range doctorIDs {
		objectID, err := primitive.ObjectIDFromHex(doctorID)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, objectID)
	}

	result := make(map[string]models.Doctor, len(objectIDs))
	if len(objectIDs) == 0 {
		return result, nil
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var doctors []models.Doctor
	if err := cursor.All(ctx, &doctors); err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	for _, doctor := range doctors {
		result[doctor.ID.Hex()] = doctor
	}
	return result, nil
}

func (r *DoctorMongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.Collection.FindOne(ctx, filter).Decode(&doctor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &doctor, nil
}
