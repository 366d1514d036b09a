package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories shared across service tests.
// ---------------------------------------------------------------------------

type stubPaymentRepo struct {
	mu          sync.Mutex
	byReference map[string]*domain.Payment
	nextID      int
	createErr   error
	markCalls   int // MarkPaidIfPending invocations, matched or not
	// afterFind runs once, outside the lock, after the next FindByReference;
	// lets a test interleave a competing confirmation behind a stale read.
	afterFind func()
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{byReference: map[string]*domain.Payment{}}
}

func (r *stubPaymentRepo) Create(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byReference[p.Reference]; ok {
		return domain.ErrDuplicateReference
	}
	r.nextID++
	p.ID = fmt.Sprintf("pay_%d", r.nextID)
	clone := *p
	r.byReference[p.Reference] = &clone
	return nil
}

func (r *stubPaymentRepo) FindByReference(_ context.Context, reference string) (*domain.Payment, error) {
	r.mu.Lock()
	p, ok := r.byReference[reference]
	var clone domain.Payment
	if ok {
		clone = *p
	}
	hook := r.afterFind
	r.afterFind = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return &clone, nil
}

// MarkPaidIfPending mirrors the real conditional Mongo write: the status
// check and the mutation happen under one lock, so exactly one concurrent
// caller wins.
func (r *stubPaymentRepo) MarkPaidIfPending(_ context.Context, reference string, paidAt time.Time, channel string, rawPayload []byte) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markCalls++
	p, ok := r.byReference[reference]
	if !ok || p.Status != domain.PaymentPending {
		return nil, domain.ErrNoPendingPayment
	}
	p.Status = domain.PaymentPaid
	p.Channel = channel
	p.PaidAt = &paidAt
	p.RawPayload = rawPayload
	clone := *p
	return &clone, nil
}

func (r *stubPaymentRepo) MarkFailedIfPending(_ context.Context, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byReference[reference]
	if !ok || p.Status != domain.PaymentPending {
		return domain.ErrNoPendingPayment
	}
	p.Status = domain.PaymentFailed
	return nil
}

func (r *stubPaymentRepo) LinkContract(_ context.Context, paymentID, contractID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byReference {
		if p.ID == paymentID {
			p.ContractID = contractID
			return nil
		}
	}
	return domain.ErrPaymentNotFound
}

type stubContractRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Contract
	nextID   int
	advanced []string // "id:from->to"
}

func newStubContractRepo() *stubContractRepo {
	return &stubContractRepo{byID: map[string]*domain.Contract{}}
}

func (r *stubContractRepo) Create(_ context.Context, c *domain.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = fmt.Sprintf("ctr_%d", r.nextID)
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubContractRepo) FindByID(_ context.Context, id string) (*domain.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubContractRepo) AdvanceStatus(_ context.Context, id string, from, to domain.ContractStatus, paymentStatus domain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok || c.Status != from {
		return domain.ErrInvalidTransition
	}
	c.Status = to
	c.PaymentStatus = paymentStatus
	r.advanced = append(r.advanced, fmt.Sprintf("%s:%s->%s", id, from, to))
	return nil
}

func (r *stubContractRepo) List(_ context.Context, f ports.ListContractsFilter) ([]*domain.Contract, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Contract
	for _, c := range r.byID {
		if f.ClientID != "" && c.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		clone := *c
		matched = append(matched, &clone)
	}
	return matched, int64(len(matched)), nil
}

type stubClientRepo struct {
	byID     map[string]*domain.Client
	byLinked map[string]*domain.Client
}

func newStubClientRepo(clients ...*domain.Client) *stubClientRepo {
	r := &stubClientRepo{byID: map[string]*domain.Client{}, byLinked: map[string]*domain.Client{}}
	for _, c := range clients {
		r.byID[c.ID] = c
		if c.LinkedUserID != "" {
			r.byLinked[c.LinkedUserID] = c
		}
	}
	return r
}

func (r *stubClientRepo) FindByID(_ context.Context, id string) (*domain.Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNoClient
	}
	return c, nil
}

func (r *stubClientRepo) FindByLinkedUser(_ context.Context, userID string) (*domain.Client, error) {
	c, ok := r.byLinked[userID]
	if !ok {
		return nil, domain.ErrNoClient
	}
	return c, nil
}

type stubUserRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.User
	byEmail  map[string]*domain.User
	promoted []string
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
	for _, u := range users {
		r.byID[u.ID] = u
		r.byEmail[u.Email] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, domain.ErrUserExists
	}
	u.ID = fmt.Sprintf("usr_%d", len(r.byID)+1)
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	return u, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) PromoteRole(_ context.Context, userID string, from, to domain.Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok || u.Role != from {
		return false, nil
	}
	u.Role = to
	r.promoted = append(r.promoted, userID)
	return true, nil
}

func (r *stubUserRepo) FindActiveByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.byID {
		if u.Role == role && u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubNotifRepo struct {
	mu       sync.Mutex
	inserted []*domain.Notification
}

func (r *stubNotifRepo) Insert(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *n
	r.inserted = append(r.inserted, &clone)
	return nil
}

type stubAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
}

func (r *stubAuditRepo) Record(_ context.Context, e *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *e
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *stubAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

// passthroughTx runs fn directly; repository stubs are already atomic.
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubDispatcher struct {
	mu       sync.Mutex
	enqueued []domain.Notification
}

func (d *stubDispatcher) Enqueue(n domain.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enqueued = append(d.enqueued, n)
}

type stubReplay struct {
	mu     sync.Mutex
	seen   map[string]bool
	seeErr error
}

func newStubReplay() *stubReplay { return &stubReplay{seen: map[string]bool{}} }

func (r *stubReplay) Seen(_ context.Context, reference string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seeErr != nil {
		return false, r.seeErr
	}
	return r.seen[reference], nil
}

func (r *stubReplay) Mark(_ context.Context, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[reference] = true
	return nil
}

// stubGateway implements ports.PaymentGateway for tests.
type stubGateway struct {
	initResp  *ports.CheckoutSession
	initErr   error
	initCalls int
	lastInit  ports.InitializeTransactionRequest

	verifyResp *ports.VerifiedTransaction
	verifyErr  error
	sigValid   bool
}

func (g *stubGateway) InitializeTransaction(_ context.Context, req ports.InitializeTransactionRequest) (*ports.CheckoutSession, error) {
	g.initCalls++
	g.lastInit = req
	if g.initErr != nil {
		return nil, g.initErr
	}
	if g.initResp != nil {
		return g.initResp, nil
	}
	return &ports.CheckoutSession{
		CheckoutURL: "https://checkout.example/" + req.Reference,
		AccessCode:  "AC_" + req.Reference,
		Reference:   req.Reference,
	}, nil
}

func (g *stubGateway) VerifyTransaction(_ context.Context, reference string) (*ports.VerifiedTransaction, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verifyResp, nil
}

func (g *stubGateway) VerifyWebhookSignature(_ []byte, _ string) bool {
	return g.sigValid
}
