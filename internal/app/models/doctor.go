package models

import (
	"telemed-service/internal/pkg/constvars"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Doctor struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	UserID            primitive.ObjectID `bson:"userId"`
	Name              string             `bson:"name"`
	Specialization    string             `bson:"specialization"`
	ConsultationFee   int64              `bson:"consultationFee"`
	MaxPatientsPerDay int                `bson:"maxPatientsPerDay"`
	TimeModel         `bson:",inline"`
}

// Fee falls back to the platform default when the profile never set one.
func (d *Doctor) Fee() int64 {
	if d.ConsultationFee <= 0 {
		return constvars.DefaultConsultationFee
	}
	return d.ConsultationFee
}

func (d *Doctor) DailyCapacity() int {
	if d.MaxPatientsPerDay <= 0 {
		return constvars.DefaultMaxPatientsPerDay
	}
	return d.MaxPatientsPerDay
}
