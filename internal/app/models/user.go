package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Role      string             `bson:"role"`
	Status    string             `bson:"status,omitempty"`
	TimeModel `bson:",inline"`
}

const UserStatusBanned = "banned"

func (u *User) IsBanned() bool {
	return u.Status == UserStatusBanned
}
