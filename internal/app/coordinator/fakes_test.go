package coordinator

import (
	"context"
	"errors"
	"sync"

	requeststore "github.com/dalemusser/redaid/internal/app/store/donationrequests"
	"github.com/dalemusser/redaid/internal/app/system/listquery"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memRequests is an in-memory RequestStore.
type memRequests struct {
	mu      sync.Mutex
	docs    map[primitive.ObjectID]models.DonationRequest
	updates int

	failUpdate   error
	beforeUpdate func()
	lastFilter   requeststore.ListFilter
}

func newMemRequests() *memRequests {
	return &memRequests{docs: map[primitive.ObjectID]models.DonationRequest{}}
}

func (m *memRequests) put(r models.DonationRequest) models.DonationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	m.docs[r.ID] = r
	return r
}

func (m *memRequests) get(id primitive.ObjectID) models.DonationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[id]
}

func (m *memRequests) Insert(ctx context.Context, r models.DonationRequest) (models.InsertResult, error) {
	r.ID = primitive.NewObjectID()
	m.put(r)
	return models.InsertResult{Acknowledged: true, InsertedID: r.ID.Hex()}, nil
}

func (m *memRequests) GetByID(ctx context.Context, id primitive.ObjectID) (models.DonationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.docs[id]
	if !ok {
		return models.DonationRequest{}, requeststore.ErrNotFound
	}
	return r, nil
}

func (m *memRequests) Update(ctx context.Context, id primitive.ObjectID, expectStatus string, set bson.M) (models.UpdateResult, error) {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	if m.failUpdate != nil {
		return models.UpdateResult{}, m.failUpdate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++

	r, ok := m.docs[id]
	if !ok || (expectStatus != "" && r.Status != expectStatus) {
		return models.UpdateResult{Acknowledged: true}, nil
	}

	raw, err := bson.Marshal(r)
	if err != nil {
		return models.UpdateResult{}, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return models.UpdateResult{}, err
	}
	for k, v := range set {
		doc[k] = v
	}
	raw, err = bson.Marshal(doc)
	if err != nil {
		return models.UpdateResult{}, err
	}
	var merged models.DonationRequest
	if err := bson.Unmarshal(raw, &merged); err != nil {
		return models.UpdateResult{}, err
	}
	m.docs[id] = merged
	return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *memRequests) Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return models.DeleteResult{Acknowledged: true}, nil
	}
	delete(m.docs, id)
	return models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (m *memRequests) List(ctx context.Context, f requeststore.ListFilter, p paging.Params) (listquery.Result[models.DonationRequest], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	var items []models.DonationRequest
	for _, r := range m.docs {
		if f.RequesterEmail != "" && r.RequesterEmail != f.RequesterEmail {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		items = append(items, r)
	}
	total := int64(len(items))
	return listquery.Result[models.DonationRequest]{Items: items, Total: total, Pages: paging.PageCount(total, p.Limit)}, nil
}

type userCounters struct {
	requests     int64
	donations    int64
	lastDonation string
}

// memUsers is an in-memory UserCounters. Unknown emails match nothing.
type memUsers struct {
	mu    sync.Mutex
	users map[string]*userCounters
	err   error
}

func newMemUsers(emails ...string) *memUsers {
	m := &memUsers{users: map[string]*userCounters{}}
	for _, e := range emails {
		m.users[e] = &userCounters{}
	}
	return m
}

func (m *memUsers) IncrementDonationRequests(ctx context.Context, email string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return 0, nil
	}
	u.requests++
	return 1, nil
}

func (m *memUsers) RecordDonation(ctx context.Context, email, day string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return 0, nil
	}
	u.donations++
	u.lastDonation = day
	return 1, nil
}

func (m *memUsers) of(email string) userCounters {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return *u
	}
	return userCounters{}
}

// countingTx runs fn directly and counts scopes opened.
type countingTx struct{ runs int }

func (c *countingTx) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	c.runs++
	return fn(ctx)
}

var errBoom = errors.New("boom")
