//go:build !integration

package application_test

import (
	"context"
	"errors"
	"testing"

	"ubot-platform/internal/application"
	"ubot-platform/internal/domain"
	"ubot-platform/internal/domain/model"
)

func TestValidateVoucher(t *testing.T) {
	ctx := context.Background()

	t.Run("redeems then opens a session", func(t *testing.T) {
		linker := &mockLinker{}
		f := application.NewDeploymentFacade(&mockEngine{}, linker, nil, nil)

		id, err := f.ValidateVoucher(ctx, "UBOT-TEST-AAAA-AAAA", "user-1")
		if err != nil {
			t.Fatal(err)
		}
		if id != "sess-1" {
			t.Fatalf("session id = %q", id)
		}
		if len(linker.created) != 1 || linker.created[0] != "user-1/UBOT-TEST-AAAA-AAAA" {
			t.Fatalf("CreateSession not called with the redemption: %v", linker.created)
		}
	})

	t.Run("failed redemption opens nothing", func(t *testing.T) {
		linker := &mockLinker{}
		engine := &mockEngine{redeemFunc: func(string, string) (*model.Redemption, error) {
			return nil, domain.ErrAlreadyUsed
		}}
		f := application.NewDeploymentFacade(engine, linker, nil, nil)

		if _, err := f.ValidateVoucher(ctx, "X", "user-1"); !errors.Is(err, domain.ErrAlreadyUsed) {
			t.Fatalf("expected already used, got %v", err)
		}
		if len(linker.created) != 0 {
			t.Fatal("session created for a rejected voucher")
		}
	})

	t.Run("session failure keeps the kind", func(t *testing.T) {
		linker := &mockLinker{createErr: domain.Persistence("create session", errors.New("disk full"))}
		f := application.NewDeploymentFacade(&mockEngine{}, linker, nil, nil)

		_, err := f.ValidateVoucher(ctx, "UBOT-TEST-AAAA-AAAA", "user-1")
		if domain.Kind(err) != "persistence" {
			t.Fatalf("kind = %s (%v)", domain.Kind(err), err)
		}
	})
}

func TestIssueBatch(t *testing.T) {
	ctx := context.Background()
	engine := &mockEngine{batchFunc: func(owner string, qty, days int) (*model.BatchResult, error) {
		if qty > 10 {
			return nil, domain.Validationf("too many")
		}
		res := &model.BatchResult{Total: qty}
		for i := 0; i < qty; i++ {
			res.Succeeded = append(res.Succeeded, &model.IssuedVoucher{Code: "C"})
		}
		return res, nil
	}}
	f := application.NewDeploymentFacade(engine, &mockLinker{}, nil, nil)

	res, err := f.IssueBatch(ctx, "admin", 3, 30)
	if err != nil || len(res.Succeeded) != 3 {
		t.Fatalf("IssueBatch = %+v, %v", res, err)
	}
	if _, err := f.IssueBatch(ctx, "admin", 11, 30); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSessionPassThrough(t *testing.T) {
	ctx := context.Background()
	linker := &mockLinker{deployErr: domain.ErrInvalidTransition}
	f := application.NewDeploymentFacade(&mockEngine{}, linker, nil, nil)

	if _, err := f.Deploy(ctx, "sess-1", "bot", nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("deploy error should surface as validation, got %v", err)
	}
	if err := f.ToggleFeature(ctx, "sess-1", "autoReply", false); err != nil {
		t.Fatal(err)
	}
	if v, ok := linker.toggled["autoReply"]; !ok || v {
		t.Fatalf("toggle not forwarded: %v", linker.toggled)
	}
	pr, err := f.RequestPairing(ctx, "sess-1", "15551234567")
	if err != nil || pr.PairingCode != "123456" {
		t.Fatalf("RequestPairing = %+v, %v", pr, err)
	}
	if _, err := f.Session(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEnsureOwner(t *testing.T) {
	ctx := context.Background()
	f := application.NewDeploymentFacade(&mockEngine{}, &mockLinker{}, nil, nil)
	if _, err := f.EnsureOwner(ctx, "admin", "Administrator"); err == nil {
		t.Fatal("expected error without owner usecase")
	}

	owners := &mockOwners{}
	f = application.NewDeploymentFacade(&mockEngine{}, &mockLinker{}, owners, nil)
	o, err := f.EnsureOwner(ctx, "admin", "Administrator")
	if err != nil || o.Username != "Administrator" || len(owners.registered) != 1 {
		t.Fatalf("EnsureOwner = %+v, %v", o, err)
	}
}
