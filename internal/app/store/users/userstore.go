package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/redaid/internal/app/store/results"
	"github.com/dalemusser/redaid/internal/app/system/authz"
	"github.com/dalemusser/redaid/internal/app/system/listquery"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/app/system/status"
	"github.com/dalemusser/redaid/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the users collection name.
const Collection = "users"

// ErrNotFound is returned when no user matches.
var ErrNotFound = errors.New("user not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail loads a user by exact email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// RoleOf reads the stored role for email. It projects only the role field
// and is called once per role-gated request.
func (s *Store) RoleOf(ctx context.Context, email string) (authz.Role, bool, error) {
	var doc struct {
		Role string `bson:"role"`
	}
	opts := options.FindOne().SetProjection(bson.M{"role": 1})
	err := s.c.FindOne(ctx, bson.M{"email": email}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return authz.User, false, nil
	}
	if err != nil {
		return "", false, err
	}
	return authz.ParseRole(doc.Role), true, nil
}

// Profile holds the self-service fields of a user. Nil fields are left
// unchanged on update.
type Profile struct {
	Name       *string `json:"name" validate:"omitempty,max=120"`
	Avatar     *string `json:"avatar" validate:"omitempty,max=2048"`
	BloodGroup *string `json:"bloodGroup" validate:"omitempty,bloodgroup"`
	Division   *string `json:"division" validate:"omitempty,max=80"`
	District   *string `json:"district" validate:"omitempty,max=80"`
	Upazila    *string `json:"upazila" validate:"omitempty,max=80"`
}

func (p Profile) set(doc bson.M) {
	put := func(field string, v *string) {
		if v != nil {
			doc[field] = strings.TrimSpace(*v)
		}
	}
	put("name", p.Name)
	put("avatar", p.Avatar)
	put("bloodGroup", p.BloodGroup)
	put("division", p.Division)
	put("district", p.District)
	put("upazila", p.Upazila)
}

// Register creates the user for email if none exists. An existing record is
// left untouched, so repeated sign-ins never reset counters or role.
// New users start as active donors.
func (s *Store) Register(ctx context.Context, email string, p Profile) (models.UpdateResult, error) {
	doc := bson.M{
		"email":           email,
		"role":            authz.Donor.String(),
		"status":          status.Active,
		"donationRequest": int64(0),
		"donations":       int64(0),
		"createdAt":       time.Now().UTC(),
	}
	p.set(doc)

	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true))
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("register %s: %w", email, err)
	}
	return results.Update(res), nil
}

// UpdateProfile applies p to the user with the given email.
func (s *Store) UpdateProfile(ctx context.Context, email string, p Profile) (models.UpdateResult, error) {
	set := bson.M{}
	p.set(set)
	if len(set) == 0 {
		return s.matchOnly(ctx, bson.M{"email": email})
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return models.UpdateResult{}, err
	}
	return results.Update(res), nil
}

// AdminUpdate is what an administrator may change on any user.
type AdminUpdate struct {
	Profile
	Role   *string `json:"role" validate:"omitempty,oneof=user donor volunteer admin"`
	Status *string `json:"status" validate:"omitempty,oneof=active blocked"`
}

// UpdateByID applies u to the user with the given id.
func (s *Store) UpdateByID(ctx context.Context, id primitive.ObjectID, u AdminUpdate) (models.UpdateResult, error) {
	set := bson.M{}
	u.Profile.set(set)
	if u.Role != nil {
		set["role"] = authz.ParseRole(*u.Role).String()
	}
	if u.Status != nil && status.IsValid(*u.Status) {
		set["status"] = *u.Status
	}
	if len(set) == 0 {
		return s.matchOnly(ctx, bson.M{"_id": id})
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return models.UpdateResult{}, err
	}
	return results.Update(res), nil
}

// matchOnly reports an empty update as matched/0 modified without writing.
func (s *Store) matchOnly(ctx context.Context, filter bson.M) (models.UpdateResult, error) {
	n, err := s.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return models.UpdateResult{}, err
	}
	return models.UpdateResult{Acknowledged: true, MatchedCount: n}, nil
}

// IncrementDonationRequests adds one to the requester's donationRequest
// counter. Returns the matched count; 0 means no such user.
func (s *Store) IncrementDonationRequests(ctx context.Context, email string) (int64, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$inc": bson.M{"donationRequest": 1}})
	if err != nil {
		return 0, fmt.Errorf("increment donationRequest for %s: %w", email, err)
	}
	return res.MatchedCount, nil
}

// RecordDonation adds one to the donor's donations counter and sets
// lastDonation to day (YYYY-MM-DD). Returns the matched count.
func (s *Store) RecordDonation(ctx context.Context, email, day string) (int64, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$inc": bson.M{"donations": 1},
			"$set": bson.M{"lastDonation": day},
		})
	if err != nil {
		return 0, fmt.Errorf("record donation for %s: %w", email, err)
	}
	return res.MatchedCount, nil
}

// DonorFilter narrows the public donor search. Empty fields match anything.
type DonorFilter struct {
	BloodGroup string
	Division   string
	District   string
	Upazila    string
}

// ListDonors returns active donors matching f, newest first.
func (s *Store) ListDonors(ctx context.Context, f DonorFilter) ([]models.User, error) {
	filter := listquery.New().
		Fixed("role", authz.Donor.String()).
		Fixed("status", status.Active).
		Eq("bloodGroup", f.BloodGroup).
		Eq("division", f.Division).
		Eq("district", f.District).
		Eq("upazila", f.Upazila)

	opts := options.Find().SetSort(bson.D{{Key: listquery.SortField, Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter.BSON(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	donors := []models.User{}
	if err := cur.All(ctx, &donors); err != nil {
		return nil, err
	}
	return donors, nil
}

// List returns a page of users, optionally filtered by status. The caller's
// own record is removed from the page after the fact; Total still counts it.
func (s *Store) List(ctx context.Context, statusFilter, excludeEmail string, p paging.Params) (listquery.Result[models.User], error) {
	res, err := listquery.Run[models.User](ctx, s.c, listquery.New().Eq("status", statusFilter), p)
	if err != nil {
		return res, err
	}
	if excludeEmail != "" {
		kept := res.Items[:0]
		for _, u := range res.Items {
			if u.Email != excludeEmail {
				kept = append(kept, u)
			}
		}
		res.Items = kept
	}
	return res, nil
}

// Count returns the number of user records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
