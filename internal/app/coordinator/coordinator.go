// Package coordinator owns the donation-request lifecycle and the user
// counters that move with it. It is the only code that writes a request
// and a user record as one logical operation.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	requeststore "github.com/dalemusser/redaid/internal/app/store/donationrequests"
	"github.com/dalemusser/redaid/internal/app/system/idempotency"
	"github.com/dalemusser/redaid/internal/app/system/inputval"
	"github.com/dalemusser/redaid/internal/app/system/listquery"
	"github.com/dalemusser/redaid/internal/app/system/metrics"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/app/system/status"
	"github.com/dalemusser/redaid/internal/app/system/txn"
	"github.com/dalemusser/redaid/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrNotFound          = errors.New("donation request not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidStatus     = errors.New("unknown donation request status")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrConflict          = errors.New("donation request changed concurrently")
	ErrNoRequester       = errors.New("requester email is required")
)

// RequestStore is the slice of the donation request store used here.
type RequestStore interface {
	Insert(ctx context.Context, r models.DonationRequest) (models.InsertResult, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.DonationRequest, error)
	Update(ctx context.Context, id primitive.ObjectID, expectStatus string, set bson.M) (models.UpdateResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error)
	List(ctx context.Context, f requeststore.ListFilter, p paging.Params) (listquery.Result[models.DonationRequest], error)
}

// UserCounters is the slice of the user store used here. Both methods
// return the matched count.
type UserCounters interface {
	IncrementDonationRequests(ctx context.Context, email string) (int64, error)
	RecordDonation(ctx context.Context, email, day string) (int64, error)
}

// Coordinator applies lifecycle operations. The zero value is not usable;
// construct with New.
type Coordinator struct {
	requests RequestStore
	users    UserCounters
	tx       txn.Runner
	idem     idempotency.Store
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces time.Now. Tests use it to pin "today".
func WithClock(now func() time.Time) Option { return func(c *Coordinator) { c.now = now } }

// WithIdempotency enables Idempotency-Key handling for acceptances.
func WithIdempotency(s idempotency.Store) Option { return func(c *Coordinator) { c.idem = s } }

// WithMetrics attaches lifecycle counters.
func WithMetrics(m *metrics.Metrics) Option { return func(c *Coordinator) { c.metrics = m } }

// New wires a Coordinator. tx may be nil, in which case writes run
// sequentially.
func New(requests RequestStore, users UserCounters, tx txn.Runner, logger *zap.Logger, opts ...Option) *Coordinator {
	if tx == nil {
		tx = txn.Sequential{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		requests: requests,
		users:    users,
		tx:       tx,
		log:      logger,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Coordinator) today() string {
	return c.now().UTC().Format(inputval.DateLayout)
}

func invalid(res *inputval.Result) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, res.All())
}

/*─────────────────────────────────────────────────────────────────────────────*
| Create                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// CreateInput is the accepted body of a new request. requesterEmail and
// status are not part of it: they come from the verified subject and the
// lifecycle.
type CreateInput struct {
	RequesterName     string `json:"requesterName" validate:"max=120"`
	RecipientName     string `json:"recipientName" validate:"required,max=120"`
	RecipientDivision string `json:"recipientDivision" validate:"max=80"`
	RecipientDistrict string `json:"recipientDistrict" validate:"max=80"`
	RecipientUpazila  string `json:"recipientUpazila" validate:"max=80"`
	HospitalName      string `json:"hospitalName" validate:"required,max=200"`
	FullAddress       string `json:"fullAddress" validate:"max=500"`
	BloodGroup        string `json:"bloodGroup" validate:"required,bloodgroup"`
	DonationDate      string `json:"donationDate" validate:"required,ymd"`
	DonationTime      string `json:"donationTime" validate:"max=20"`
	RequestMessage    string `json:"requestMessage" validate:"max=2000"`
}

// Create files a new pending request for requesterEmail and bumps that
// user's donationRequest counter. Both writes share one transaction scope.
func (c *Coordinator) Create(ctx context.Context, requesterEmail string, in CreateInput) (models.InsertResult, error) {
	requesterEmail = strings.TrimSpace(requesterEmail)
	if requesterEmail == "" {
		return models.InsertResult{}, ErrNoRequester
	}
	if res := inputval.Validate(in); res.HasErrors() {
		return models.InsertResult{}, invalid(res)
	}

	req := models.DonationRequest{
		RequesterName:     strings.TrimSpace(in.RequesterName),
		RequesterEmail:    requesterEmail,
		RecipientName:     strings.TrimSpace(in.RecipientName),
		RecipientDivision: in.RecipientDivision,
		RecipientDistrict: in.RecipientDistrict,
		RecipientUpazila:  in.RecipientUpazila,
		HospitalName:      strings.TrimSpace(in.HospitalName),
		FullAddress:       in.FullAddress,
		BloodGroup:        in.BloodGroup,
		DonationDate:      in.DonationDate,
		DonationTime:      in.DonationTime,
		RequestMessage:    in.RequestMessage,
		Status:            status.Pending.String(),
		CreatedAt:         c.now().UTC(),
	}

	var out models.InsertResult
	err := c.tx.Run(ctx, func(ctx context.Context) error {
		matched, err := c.users.IncrementDonationRequests(ctx, requesterEmail)
		if err != nil {
			return err
		}
		if matched == 0 {
			c.log.Warn("donation request filed by unregistered user", zap.String("email", requesterEmail))
		}
		out, err = c.requests.Insert(ctx, req)
		return err
	})
	if err != nil {
		return models.InsertResult{}, err
	}

	c.metrics.IncRequestsCreated()
	c.log.Info("donation request created",
		zap.String("id", out.InsertedID),
		zap.String("requester", requesterEmail))
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| PartialUpdate                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// Patch is the closed set of fields a partial update may touch. Nil fields
// are left alone. A non-empty DonorEmail makes the patch an acceptance.
type Patch struct {
	RequesterName     *string `json:"requesterName" validate:"omitempty,max=120"`
	RecipientName     *string `json:"recipientName" validate:"omitempty,min=1,max=120"`
	RecipientDivision *string `json:"recipientDivision" validate:"omitempty,max=80"`
	RecipientDistrict *string `json:"recipientDistrict" validate:"omitempty,max=80"`
	RecipientUpazila  *string `json:"recipientUpazila" validate:"omitempty,max=80"`
	HospitalName      *string `json:"hospitalName" validate:"omitempty,min=1,max=200"`
	FullAddress       *string `json:"fullAddress" validate:"omitempty,max=500"`
	BloodGroup        *string `json:"bloodGroup" validate:"omitempty,bloodgroup"`
	DonationDate      *string `json:"donationDate" validate:"omitempty,ymd"`
	DonationTime      *string `json:"donationTime" validate:"omitempty,max=20"`
	RequestMessage    *string `json:"requestMessage" validate:"omitempty,max=2000"`
	Status            *string `json:"status" validate:"omitempty,max=20"`
	DonorName         *string `json:"donorName" validate:"omitempty,max=120"`
	DonorEmail        *string `json:"donorEmail" validate:"omitempty,email"`
}

func (p Patch) accepting() bool {
	return p.DonorEmail != nil && strings.TrimSpace(*p.DonorEmail) != ""
}

func (p Patch) fields() bson.M {
	set := bson.M{}
	put := func(field string, v *string) {
		if v != nil {
			set[field] = strings.TrimSpace(*v)
		}
	}
	put("requesterName", p.RequesterName)
	put("recipientName", p.RecipientName)
	put("recipientDivision", p.RecipientDivision)
	put("recipientDistrict", p.RecipientDistrict)
	put("recipientUpazila", p.RecipientUpazila)
	put("hospitalName", p.HospitalName)
	put("fullAddress", p.FullAddress)
	put("bloodGroup", p.BloodGroup)
	put("donationDate", p.DonationDate)
	put("donationTime", p.DonationTime)
	put("requestMessage", p.RequestMessage)
	put("donorName", p.DonorName)
	put("donorEmail", p.DonorEmail)
	return set
}

// Outcome reports a PartialUpdate. Replayed is true when the idempotency
// key had already been applied and nothing was written.
type Outcome struct {
	models.UpdateResult
	Replayed bool `json:"replayed,omitempty"`
}

// storedStatus reads a persisted status. Labels outside the closed set
// (hand-edited or legacy data) are treated as pending.
func storedStatus(s string) status.Request {
	if st, ok := status.ParseRequest(s); ok {
		return st
	}
	return status.Pending
}

// PartialUpdate merges patch onto request id.
//
// The request is loaded first; a missing id returns ErrNotFound and no
// counter moves. An acceptance (non-empty donorEmail) moves the request to
// inprogress unless the patch names another legal status, and records a
// donation on the donor (donations+1, lastDonation=today UTC) in the same
// transaction scope as the merge.
//
// When idemKey is non-empty an acceptance is applied at most once per
// (request, key). A repeat after the first attempt committed returns
// Replayed with no writes; a repeat while it is still running returns
// ErrConflict. Without a key every call applies.
func (c *Coordinator) PartialUpdate(ctx context.Context, id primitive.ObjectID, patch Patch, idemKey string) (Outcome, error) {
	if res := inputval.Validate(patch); res.HasErrors() {
		return Outcome{}, invalid(res)
	}

	cur, err := c.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, requeststore.ErrNotFound) {
			return Outcome{}, ErrNotFound
		}
		return Outcome{}, err
	}

	from := storedStatus(cur.Status)
	to := from
	if patch.Status != nil {
		st, ok := status.ParseRequest(*patch.Status)
		if !ok {
			return Outcome{}, ErrInvalidStatus
		}
		to = st
	}

	accepting := patch.accepting()
	if accepting {
		if from.Terminal() {
			return Outcome{}, fmt.Errorf("%w: cannot accept a %s request", ErrIllegalTransition, from)
		}
		if patch.Status == nil {
			to = status.InProgress
		}
	}
	if (patch.Status != nil || accepting) && !status.CanTransition(from, to) {
		return Outcome{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}

	set := patch.fields()
	if to != from || patch.Status != nil {
		set["status"] = to.String()
	}
	set["updatedAt"] = c.now().UTC()

	// The claim happens outside the transaction: a duplicate-key insert
	// would abort it. It is released below if the writes fail.
	key := ""
	if accepting && idemKey != "" && c.idem != nil {
		key = idempotency.Scope("accept", id.Hex(), idemKey)
		state, err := c.idem.Claim(ctx, key)
		if err != nil {
			return Outcome{}, err
		}
		switch state {
		case idempotency.InFlight:
			c.log.Info("acceptance still in flight", zap.String("id", id.Hex()), zap.String("key", idemKey))
			return Outcome{}, fmt.Errorf("%w: acceptance under this key is still in progress", ErrConflict)
		case idempotency.Done:
			c.metrics.IncAcceptanceReplays()
			c.log.Info("acceptance replayed", zap.String("id", id.Hex()), zap.String("key", idemKey))
			return Outcome{
				UpdateResult: models.UpdateResult{Acknowledged: true, MatchedCount: 1},
				Replayed:     true,
			}, nil
		}
	}

	donor := ""
	if accepting {
		donor = strings.TrimSpace(*patch.DonorEmail)
	}

	var out models.UpdateResult
	err = c.tx.Run(ctx, func(ctx context.Context) error {
		if accepting {
			matched, err := c.users.RecordDonation(ctx, donor, c.today())
			if err != nil {
				return err
			}
			if matched == 0 {
				c.log.Warn("accepting donor has no user record", zap.String("donor", donor))
			}
		}
		out, err = c.requests.Update(ctx, id, cur.Status, set)
		if err != nil {
			return err
		}
		if out.MatchedCount == 0 {
			return ErrConflict
		}
		return nil
	})
	if err != nil {
		if key != "" {
			if rerr := c.idem.Release(context.WithoutCancel(ctx), key); rerr != nil {
				c.log.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(rerr))
			}
		}
		return Outcome{}, err
	}

	if key != "" {
		if cerr := c.idem.Complete(context.WithoutCancel(ctx), key); cerr != nil {
			c.log.Warn("failed to complete idempotency key", zap.String("key", key), zap.Error(cerr))
		}
	}

	if accepting {
		c.metrics.IncAcceptances()
		c.log.Info("donation request accepted", zap.String("id", id.Hex()), zap.String("donor", donor))
	}
	if to != from {
		c.metrics.IncStatusChange(to.String())
	}
	return Outcome{UpdateResult: out}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| SetStatus, Delete, reads                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// SetStatus moves request id to raw. raw must name a known status reachable
// from the stored one. A missing id is a zero-match success.
func (c *Coordinator) SetStatus(ctx context.Context, id primitive.ObjectID, raw string) (models.UpdateResult, error) {
	to, ok := status.ParseRequest(raw)
	if !ok {
		return models.UpdateResult{}, ErrInvalidStatus
	}

	cur, err := c.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, requeststore.ErrNotFound) {
			return models.UpdateResult{Acknowledged: true}, nil
		}
		return models.UpdateResult{}, err
	}

	from := storedStatus(cur.Status)
	if !status.CanTransition(from, to) {
		return models.UpdateResult{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}

	out, err := c.requests.Update(ctx, id, cur.Status, bson.M{
		"status":    to.String(),
		"updatedAt": c.now().UTC(),
	})
	if err != nil {
		return models.UpdateResult{}, err
	}
	if out.MatchedCount == 0 {
		return models.UpdateResult{}, ErrConflict
	}
	if to != from {
		c.metrics.IncStatusChange(to.String())
	}
	return out, nil
}

// Delete removes request id. Counters already applied are not rolled back.
func (c *Coordinator) Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	return c.requests.Delete(ctx, id)
}

// Get returns request id or ErrNotFound.
func (c *Coordinator) Get(ctx context.Context, id primitive.ObjectID) (models.DonationRequest, error) {
	r, err := c.requests.GetByID(ctx, id)
	if errors.Is(err, requeststore.ErrNotFound) {
		return models.DonationRequest{}, ErrNotFound
	}
	return r, err
}

// List returns a page of requests. A status filter given under an alias
// ("accepted", "in-progress") is normalized first.
func (c *Coordinator) List(ctx context.Context, f requeststore.ListFilter, p paging.Params) (listquery.Result[models.DonationRequest], error) {
	if f.Status != "" {
		if st, ok := status.ParseRequest(f.Status); ok {
			f.Status = st.String()
		}
	}
	return c.requests.List(ctx, f, p)
}
