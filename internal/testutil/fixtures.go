package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/redaid/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an active user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, email, role string) models.User {
	f.t.Helper()
	return f.InsertUser(ctx, models.User{Email: email, Name: email, Role: role, Status: "active"})
}

// CreateDonor inserts an active donor with a blood group and location.
func (f *Fixtures) CreateDonor(ctx context.Context, email, bloodGroup, district string) models.User {
	f.t.Helper()
	return f.InsertUser(ctx, models.User{
		Email:      email,
		Name:       email,
		Role:       "donor",
		Status:     "active",
		BloodGroup: bloodGroup,
		Division:   "Dhaka",
		District:   district,
		Upazila:    "Savar",
	})
}

// InsertUser inserts u as given, filling ID and CreatedAt when zero.
func (f *Fixtures) InsertUser(ctx context.Context, u models.User) models.User {
	f.t.Helper()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateDonationRequest inserts a request by requesterEmail with status st.
func (f *Fixtures) CreateDonationRequest(ctx context.Context, requesterEmail, st string) models.DonationRequest {
	f.t.Helper()
	return f.InsertDonationRequest(ctx, models.DonationRequest{
		RequesterName:  requesterEmail,
		RequesterEmail: requesterEmail,
		RecipientName:  "Recipient",
		HospitalName:   "Dhaka Medical College Hospital",
		BloodGroup:     "O+",
		DonationDate:   "2026-11-01",
		DonationTime:   "10:00",
		Status:         st,
	})
}

// InsertDonationRequest inserts r as given, filling ID and CreatedAt when zero.
func (f *Fixtures) InsertDonationRequest(ctx context.Context, r models.DonationRequest) models.DonationRequest {
	f.t.Helper()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if _, err := f.db.Collection("donationRequests").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test donation request: %v", err)
	}
	return r
}

// CreateBlog inserts a blog post.
func (f *Fixtures) CreateBlog(ctx context.Context, title, category, st string) models.Blog {
	f.t.Helper()
	b := models.Blog{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Content:   "<p>" + title + "</p>",
		Category:  category,
		Status:    st,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("blogs").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test blog: %v", err)
	}
	return b
}

// CreateFund inserts a fund record.
func (f *Fixtures) CreateFund(ctx context.Context, email string, amount float64) models.Fund {
	f.t.Helper()
	fund := models.Fund{
		ID:        primitive.NewObjectID(),
		Name:      email,
		Email:     email,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("funds").InsertOne(ctx, fund); err != nil {
		f.t.Fatalf("failed to create test fund: %v", err)
	}
	return fund
}
