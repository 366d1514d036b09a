package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Malcolmik/ambo-backend/internal/core/catalog"
	"github.com/Malcolmik/ambo-backend/internal/core/domain"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

// stubConfirm records inputs and returns a canned outcome; payment_service
// must never transition state itself.
type stubConfirm struct {
	calls   []ports.ConfirmPaymentInput
	outcome *ports.ConfirmOutcome
	err     error
}

func (c *stubConfirm) ConfirmPayment(_ context.Context, in ports.ConfirmPaymentInput) (*ports.ConfirmOutcome, error) {
	c.calls = append(c.calls, in)
	if c.err != nil {
		return nil, c.err
	}
	if c.outcome != nil {
		return c.outcome, nil
	}
	return &ports.ConfirmOutcome{Result: ports.ConfirmApplied, ContractID: "ctr_1"}, nil
}

type paymentFixture struct {
	gateway   *stubGateway
	payments  *stubPaymentRepo
	contracts *stubContractRepo
	audits    *stubAuditRepo
	confirm   *stubConfirm
	svc       ports.PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		gateway:   &stubGateway{},
		payments:  newStubPaymentRepo(),
		contracts: newStubContractRepo(),
		audits:    &stubAuditRepo{},
		confirm:   &stubConfirm{},
	}
	clients := newStubClientRepo(&domain.Client{
		ID: "cli_1", CompanyName: "Acme Ltd", ContactEmail: "billing@acme.test", LinkedUserID: "usr_payer",
	})
	users := newStubUserRepo(
		&domain.User{ID: "usr_payer", Email: "payer@acme.test", Role: domain.RoleClientViewerPending, Active: true},
	)
	f.svc = NewPaymentService(
		catalog.Default(), f.gateway, f.payments, f.contracts, clients, users, f.audits,
		f.confirm, passthroughTx{}, "https://app.ambo.test/payments/callback", zerolog.Nop(),
	)
	return f
}

func TestInitialize_PricesServerSide(t *testing.T) {
	f := newPaymentFixture()

	res, err := f.svc.Initialize(context.Background(), "usr_payer", ports.SelectionInput{
		PackageType: "AMBO CLASSIC",
		Services:    []string{"Web Design"},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// 1200 base + 400 add-on, charged in kobo.
	if f.gateway.lastInit.AmountMinor != 160000 {
		t.Errorf("expected 160000 minor units sent to gateway, got %d", f.gateway.lastInit.AmountMinor)
	}
	if res.Amount != "1600" {
		t.Errorf("expected quoted amount 1600, got %s", res.Amount)
	}
	if res.Currency != "NGN" {
		t.Errorf("expected catalog currency NGN, got %s", res.Currency)
	}
	if !strings.HasPrefix(res.Reference, "AMB-") {
		t.Errorf("unexpected reference format: %s", res.Reference)
	}
	if res.CheckoutURL == "" {
		t.Error("expected a checkout URL")
	}

	meta := f.gateway.lastInit.Metadata
	if meta.SchemaVersion != ports.MetadataSchemaVersion || meta.ClientID != "cli_1" || meta.ActorUserID != "usr_payer" {
		t.Errorf("incomplete checkout metadata: %+v", meta)
	}
	if f.gateway.lastInit.Email != "payer@acme.test" {
		t.Errorf("expected actor email on checkout, got %s", f.gateway.lastInit.Email)
	}

	p, err := f.payments.FindByReference(context.Background(), res.Reference)
	if err != nil {
		t.Fatalf("pending payment not persisted: %v", err)
	}
	if p.Status != domain.PaymentPending || !p.Amount.Equal(decimal.NewFromInt(1600)) {
		t.Errorf("unexpected pending payment: %+v", p)
	}
	c, err := f.contracts.FindByID(context.Background(), res.ContractID)
	if err != nil {
		t.Fatalf("pending contract not persisted: %v", err)
	}
	if c.Status != domain.ContractAwaitingPayment || c.PaymentStatus != domain.PaymentPending {
		t.Errorf("unexpected pending contract: %+v", c)
	}

	var initiated bool
	for _, a := range f.audits.actions() {
		if a == domain.AuditPaymentInitiated {
			initiated = true
		}
	}
	if !initiated {
		t.Error("expected a PAYMENT_INITIATED audit entry")
	}
}

func TestInitialize_RejectsInvalidSelection(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.Initialize(context.Background(), "usr_payer", ports.SelectionInput{
		PackageType: "AMBO DELUXE",
	})
	if !errors.Is(err, domain.ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
	if f.gateway.initCalls != 0 {
		t.Error("gateway must not be called for an invalid selection")
	}
}

func TestInitialize_RequiresClientLink(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.Initialize(context.Background(), "usr_unlinked", ports.SelectionInput{
		PackageType: "AMBO STARTER",
	})
	if !errors.Is(err, domain.ErrNoClient) {
		t.Fatalf("expected ErrNoClient, got %v", err)
	}
}

func TestInitialize_GatewayFailurePersistsNothing(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.initErr = errors.New("gateway down")

	_, err := f.svc.Initialize(context.Background(), "usr_payer", ports.SelectionInput{
		PackageType: "AMBO STARTER",
	})
	if !errors.Is(err, domain.ErrGatewayInit) {
		t.Fatalf("expected ErrGatewayInit, got %v", err)
	}
	if len(f.payments.byReference) != 0 {
		t.Error("no payment may be persisted when checkout creation fails")
	}
	if len(f.contracts.byID) != 0 {
		t.Error("no contract may be persisted when checkout creation fails")
	}
}

func TestInitialize_ReferenceCollisionRetries(t *testing.T) {
	f := newPaymentFixture()
	_ = f.payments.Create(context.Background(), &domain.Payment{
		UserID: "usr_other", Reference: "AMB-1-COLLID", Status: domain.PaymentPending,
		Amount: decimal.NewFromInt(500), Currency: "NGN",
	})

	refs := []string{"AMB-1-COLLID", "AMB-1-FRE5H0"}
	f.svc.(*paymentService).newReference = func() string {
		next := refs[0]
		refs = refs[1:]
		return next
	}

	res, err := f.svc.Initialize(context.Background(), "usr_payer", ports.SelectionInput{
		PackageType: "AMBO STARTER",
	})
	if err != nil {
		t.Fatalf("expected a fresh reference after one collision, got %v", err)
	}
	if res.Reference != "AMB-1-FRE5H0" {
		t.Errorf("expected regenerated reference AMB-1-FRE5H0, got %s", res.Reference)
	}
	if f.gateway.lastInit.Reference != "AMB-1-FRE5H0" {
		t.Errorf("gateway must only ever see the fresh reference, got %s", f.gateway.lastInit.Reference)
	}
}

func TestInitialize_ReferenceCollisionExhausted(t *testing.T) {
	f := newPaymentFixture()
	_ = f.payments.Create(context.Background(), &domain.Payment{
		UserID: "usr_other", Reference: "AMB-1-COLLID", Status: domain.PaymentPending,
		Amount: decimal.NewFromInt(500), Currency: "NGN",
	})

	f.svc.(*paymentService).newReference = func() string { return "AMB-1-COLLID" }

	_, err := f.svc.Initialize(context.Background(), "usr_payer", ports.SelectionInput{
		PackageType: "AMBO STARTER",
	})
	if !errors.Is(err, domain.ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference after %d attempts, got %v", referenceAttempts, err)
	}
	if f.gateway.initCalls != 0 {
		t.Error("no checkout may be opened without a unique reference")
	}
}

func TestVerify_RequiresOwnershipOrAdmin(t *testing.T) {
	f := newPaymentFixture()
	_ = f.payments.Create(context.Background(), &domain.Payment{
		UserID: "usr_payer", Reference: "AMB-1-AAAAAA", Status: domain.PaymentPending,
		Amount: decimal.NewFromInt(500), Currency: "NGN",
	})

	if _, err := f.svc.Verify(context.Background(), "usr_other", string(domain.RoleClientViewer), "AMB-1-AAAAAA"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a stranger, got %v", err)
	}

	f.gateway.verifyResp = &ports.VerifiedTransaction{Reference: "AMB-1-AAAAAA", Status: ports.GatewayTxPending}
	if _, err := f.svc.Verify(context.Background(), "usr_admin", string(domain.RoleAdmin), "AMB-1-AAAAAA"); err != nil {
		t.Fatalf("admins may verify any payment, got %v", err)
	}
}

func TestVerify_PaidShortCircuits(t *testing.T) {
	f := newPaymentFixture()
	paidAt := time.Now().UTC()
	_ = f.payments.Create(context.Background(), &domain.Payment{
		UserID: "usr_payer", ContractID: "ctr_9", Reference: "AMB-2-BBBBBB",
		Status: domain.PaymentPending, Amount: decimal.NewFromInt(500), Currency: "NGN",
	})
	f.payments.byReference["AMB-2-BBBBBB"].Status = domain.PaymentPaid
	f.payments.byReference["AMB-2-BBBBBB"].PaidAt = &paidAt

	sum, err := f.svc.Verify(context.Background(), "usr_payer", string(domain.RoleClientViewer), "AMB-2-BBBBBB")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if sum.PaymentStatus != string(domain.PaymentPaid) || sum.NewlyConfirmed {
		t.Errorf("expected already-paid summary, got %+v", sum)
	}
	if len(f.confirm.calls) != 0 {
		t.Error("a paid payment must not reach the confirmation engine again")
	}
}

func TestVerify_SuccessFeedsConfirmationEngine(t *testing.T) {
	f := newPaymentFixture()
	_ = f.payments.Create(context.Background(), &domain.Payment{
		UserID: "usr_payer", Reference: "AMB-3-CCCCCC", Status: domain.PaymentPending,
		Amount: decimal.NewFromInt(500), Currency: "NGN",
	})
	f.gateway.verifyResp = &ports.VerifiedTransaction{
		Reference:   "AMB-3-CCCCCC",
		Status:      ports.GatewayTxSuccess,
		AmountMinor: 50000,
		Currency:    "NGN",
		Channel:     "bank_transfer",
		PaidAt:      time.Now().UTC(),
		Metadata:    ports.CheckoutMetadata{SchemaVersion: 1, ClientID: "cli_1", PackageType: "AMBO STARTER"},
	}

	sum, err := f.svc.Verify(context.Background(), "usr_payer", string(domain.RoleClientViewerPending), "AMB-3-CCCCCC")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(f.confirm.calls) != 1 {
		t.Fatalf("expected one confirmation call, got %d", len(f.confirm.calls))
	}
	in := f.confirm.calls[0]
	if in.Reference != "AMB-3-CCCCCC" || in.AmountMinor != 50000 || in.Channel != "bank_transfer" {
		t.Errorf("confirmation input not taken from verified response: %+v", in)
	}
	if !sum.NewlyConfirmed || sum.PaymentStatus != string(domain.PaymentPaid) {
		t.Errorf("expected newly confirmed PAID summary, got %+v", sum)
	}
}

func TestVerify_FailureMarksPaymentFailed(t *testing.T) {
	f := newPaymentFixture()
	_ = f.payments.Create(context.Background(), &domain.Payment{
		UserID: "usr_payer", Reference: "AMB-4-DDDDDD", Status: domain.PaymentPending,
		Amount: decimal.NewFromInt(500), Currency: "NGN",
	})
	f.gateway.verifyResp = &ports.VerifiedTransaction{Reference: "AMB-4-DDDDDD", Status: ports.GatewayTxFailed}

	sum, err := f.svc.Verify(context.Background(), "usr_payer", string(domain.RoleClientViewer), "AMB-4-DDDDDD")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if sum.PaymentStatus != string(domain.PaymentFailed) {
		t.Errorf("expected FAILED summary, got %s", sum.PaymentStatus)
	}
	p, _ := f.payments.FindByReference(context.Background(), "AMB-4-DDDDDD")
	if p.Status != domain.PaymentFailed {
		t.Errorf("expected payment marked FAILED, got %s", p.Status)
	}
	if len(f.confirm.calls) != 0 {
		t.Error("a failed verification must not reach the confirmation engine")
	}
}

func TestVerify_PendingLeavesStateUntouched(t *testing.T) {
	f := newPaymentFixture()
	_ = f.payments.Create(context.Background(), &domain.Payment{
		UserID: "usr_payer", Reference: "AMB-5-EEEEEE", Status: domain.PaymentPending,
		Amount: decimal.NewFromInt(500), Currency: "NGN",
	})
	f.gateway.verifyResp = &ports.VerifiedTransaction{Reference: "AMB-5-EEEEEE", Status: ports.GatewayTxPending}

	sum, err := f.svc.Verify(context.Background(), "usr_payer", string(domain.RoleClientViewer), "AMB-5-EEEEEE")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if sum.PaymentStatus != string(domain.PaymentPending) {
		t.Errorf("inconclusive verify must leave PENDING, got %s", sum.PaymentStatus)
	}
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"1600", 160000},
		{"0.5", 50},
		{"1234.56", 123456},
	}
	for _, tc := range cases {
		d, _ := decimal.NewFromString(tc.amount)
		if got := minorUnits(d); got != tc.want {
			t.Errorf("minorUnits(%s) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}
