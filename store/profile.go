package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rotafield/rotafield-api/schema"
)

var (
	ErrProfileNotFound = fmt.Errorf("profile not found")
)

// ProfileFilter narrows ListProfiles. Zero values mean "no restriction".
type ProfileFilter struct {
	Role      schema.Role
	ManagerID string
}

type ProfileOperator interface {
	CreateProfile(profile schema.Profile) (*schema.Profile, error)
	GetProfileByID(profileID string) (*schema.Profile, error)
	GetProfileByEmail(email string) (*schema.Profile, error)
	ListProfiles(filter ProfileFilter) ([]schema.Profile, error)
	SetProfileActive(profileID string, active bool) error
	TransferTeam(fromManagerID, toManagerID string) (int64, error)
}

// CreateProfile inserts a new actor into the hierarchy.
func (m *mongoDB) CreateProfile(profile schema.Profile) (*schema.Profile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	profile.IsActive = true
	profile.State.LastActiveTime = now
	profile.CreatedAt = now
	profile.UpdatedAt = now

	c := m.client.Database(m.database).Collection(schema.ProfileCollection)
	if _, err := c.InsertOne(ctx, profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// GetProfileByID finds a profile by its account-scoped ID.
func (m *mongoDB) GetProfileByID(profileID string) (*schema.Profile, error) {
	return m.getProfile(bson.M{"id": profileID})
}

// GetProfileByEmail finds a profile by email.
func (m *mongoDB) GetProfileByEmail(email string) (*schema.Profile, error) {
	return m.getProfile(bson.M{"email": email})
}

func (m *mongoDB) getProfile(query bson.M) (*schema.Profile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.ProfileCollection)

	var profile schema.Profile
	if err := c.FindOne(ctx, query).Decode(&profile); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return &profile, nil
}

// ListProfiles returns profiles filtered by role and/or manager.
func (m *mongoDB) ListProfiles(filter ProfileFilter) ([]schema.Profile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.ManagerID != "" {
		query["manager_id"] = filter.ManagerID
	}

	c := m.client.Database(m.database).Collection(schema.ProfileCollection)

	cursor, err := c.Find(ctx, query)
	if err != nil {
		return nil, err
	}

	profiles := make([]schema.Profile, 0)
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}

	return profiles, nil
}

// SetProfileActive flips the active flag. Inactive profiles keep their data
// but can no longer authenticate.
func (m *mongoDB) SetProfileActive(profileID string, active bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.ProfileCollection)
	result, err := c.UpdateOne(ctx, bson.M{"id": profileID}, bson.M{
		"$set": bson.M{
			"is_active":  active,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// TransferTeam moves every seller reporting to one manager under another in a
// single bulk update and returns how many moved.
func (m *mongoDB) TransferTeam(fromManagerID, toManagerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.ProfileCollection)
	result, err := c.UpdateMany(ctx,
		bson.M{"manager_id": fromManagerID, "role": schema.RoleSeller},
		bson.M{"$set": bson.M{
			"manager_id": toManagerID,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}
