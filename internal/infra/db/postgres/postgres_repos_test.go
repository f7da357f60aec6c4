//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ubot-platform/internal/domain"
	"ubot-platform/internal/domain/model"
	"ubot-platform/internal/domain/ports/repository"
)

func seedVoucher(t *testing.T, repo repository.VoucherRepository, code string, days int, now time.Time) *model.Voucher {
	t.Helper()
	v, err := model.NewVoucher(code, "owner-1", days, now)
	if err != nil {
		t.Fatalf("NewVoucher: %v", err)
	}
	if err := repo.Create(context.Background(), repository.NoTX, v); err != nil {
		t.Fatalf("Create voucher: %v", err)
	}
	return v
}

func TestVoucherRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewVoucherRepo(testPool)
	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("create and find", func(t *testing.T) {
		cleanup(t)
		v := seedVoucher(t, repo, "UBOT-AAAA-BBBB-CCCC", 30, now)

		got, err := repo.FindByCode(ctx, repository.NoTX, v.Code)
		if err != nil {
			t.Fatalf("FindByCode: %v", err)
		}
		if got.ID != v.ID || got.OwnerID != "owner-1" || got.IsUsed {
			t.Fatalf("unexpected voucher: %+v", got)
		}
		if !got.ExpiresAt.Equal(v.ExpiresAt) {
			t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, v.ExpiresAt)
		}
		if got.UsedByID != nil || got.UsedAt != nil {
			t.Errorf("fresh voucher must have no redemption fields")
		}
	})

	t.Run("duplicate code", func(t *testing.T) {
		cleanup(t)
		seedVoucher(t, repo, "UBOT-DUPE-0000-0000", 30, now)
		dup, _ := model.NewVoucher("UBOT-DUPE-0000-0000", "owner-2", 30, now)
		err := repo.Create(ctx, repository.NoTX, dup)
		if !errors.Is(err, domain.ErrAlreadyExists) || !errors.Is(err, domain.ErrPersistence) {
			t.Fatalf("expected persistence/already-exists, got %v", err)
		}
	})

	t.Run("missing code", func(t *testing.T) {
		cleanup(t)
		_, err := repo.FindByCode(ctx, repository.NoTX, "UBOT-NONE-0000-0000")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("mark used once", func(t *testing.T) {
		cleanup(t)
		v := seedVoucher(t, repo, "UBOT-USED-0000-0000", 30, now)

		ok, err := repo.MarkUsed(ctx, repository.NoTX, v.Code, "user-1", now)
		if err != nil || !ok {
			t.Fatalf("first MarkUsed = %v, %v", ok, err)
		}
		ok, err = repo.MarkUsed(ctx, repository.NoTX, v.Code, "user-2", now)
		if err != nil || ok {
			t.Fatalf("second MarkUsed = %v, %v; want false, nil", ok, err)
		}

		got, _ := repo.FindByCode(ctx, repository.NoTX, v.Code)
		if !got.IsUsed || got.UsedByID == nil || *got.UsedByID != "user-1" || got.UsedAt == nil {
			t.Fatalf("redemption not recorded: %+v", got)
		}
	})

	t.Run("expired is not marked", func(t *testing.T) {
		cleanup(t)
		v := seedVoucher(t, repo, "UBOT-EXPD-0000-0000", 0, now)
		ok, err := repo.MarkUsed(ctx, repository.NoTX, v.Code, "user-1", now)
		if err != nil || ok {
			t.Fatalf("MarkUsed on expired = %v, %v", ok, err)
		}
	})

	t.Run("concurrent redeem has one winner", func(t *testing.T) {
		cleanup(t)
		v := seedVoucher(t, repo, "UBOT-RACE-0000-0000", 30, now)

		var wins int32
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ok, err := repo.MarkUsed(ctx, repository.NoTX, v.Code, fmt.Sprintf("user-%d", i), time.Now().UTC())
				if err != nil {
					t.Errorf("MarkUsed: %v", err)
					return
				}
				if ok {
					atomic.AddInt32(&wins, 1)
				}
			}(i)
		}
		wg.Wait()
		if wins != 1 {
			t.Fatalf("winners = %d, want 1", wins)
		}
	})

	t.Run("counts by state", func(t *testing.T) {
		cleanup(t)
		seedVoucher(t, repo, "UBOT-ACT1-0000-0000", 30, now)
		seedVoucher(t, repo, "UBOT-EXP1-0000-0000", 0, now)
		used := seedVoucher(t, repo, "UBOT-USE1-0000-0000", 30, now)
		if ok, err := repo.MarkUsed(ctx, repository.NoTX, used.Code, "u1", now); err != nil || !ok {
			t.Fatalf("MarkUsed = %v, %v", ok, err)
		}

		got, err := repo.CountByState(ctx, repository.NoTX, now)
		if err != nil {
			t.Fatalf("CountByState: %v", err)
		}
		if want := (model.VoucherCounts{Active: 1, Used: 1, Expired: 1}); got != want {
			t.Fatalf("counts = %+v, want %+v", got, want)
		}
	})

	t.Run("list ordering", func(t *testing.T) {
		cleanup(t)
		seedVoucher(t, repo, "UBOT-OLD0-0000-0000", 30, now.Add(-time.Hour))
		seedVoucher(t, repo, "UBOT-NEW0-0000-0000", 30, now)
		other, _ := model.NewVoucher("UBOT-OTHR-0000-0000", "owner-2", 30, now)
		if err := repo.Create(ctx, repository.NoTX, other); err != nil {
			t.Fatal(err)
		}

		mine, err := repo.ListByOwner(ctx, repository.NoTX, "owner-1")
		if err != nil {
			t.Fatal(err)
		}
		if len(mine) != 2 || mine[0].Code != "UBOT-NEW0-0000-0000" {
			t.Fatalf("ListByOwner = %v", codesOf(mine))
		}

		all, err := repo.ListAll(ctx, repository.NoTX)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 3 {
			t.Fatalf("ListAll returned %d vouchers", len(all))
		}
	})
}

func codesOf(vs []*model.Voucher) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Code)
	}
	return out
}

func TestSessionRepo(t *testing.T) {
	ctx := context.Background()
	vouchers := NewVoucherRepo(testPool)
	sessions := NewSessionRepo(testPool)
	now := time.Now().UTC().Truncate(time.Millisecond)

	newSession := func(t *testing.T) *model.Session {
		t.Helper()
		cleanup(t)
		v := seedVoucher(t, vouchers, "UBOT-SESS-0000-0000", 30, now)
		s := model.NewSession("user-1", v.Code, now)
		if err := sessions.Create(ctx, repository.NoTX, s); err != nil {
			t.Fatalf("Create session: %v", err)
		}
		return s
	}

	t.Run("create and find", func(t *testing.T) {
		s := newSession(t)
		got, err := sessions.FindByID(ctx, repository.NoTX, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != model.SessionStatusPairing || got.DeploymentStatus != model.DeploymentStatusPending {
			t.Fatalf("unexpected initial state: %+v", got)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		cleanup(t)
		_, err := sessions.FindByID(ctx, repository.NoTX, "missing")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("pairing then deploy", func(t *testing.T) {
		s := newSession(t)

		if ok, err := sessions.MarkDeployed(ctx, repository.NoTX, s.ID, "bot", now); err != nil || ok {
			t.Fatalf("deploy before pairing = %v, %v", ok, err)
		}
		if ok, err := sessions.SetPairing(ctx, repository.NoTX, s.ID, "123456", "", now); err != nil || !ok {
			t.Fatalf("SetPairing = %v, %v", ok, err)
		}
		if ok, err := sessions.SetPairing(ctx, repository.NoTX, s.ID, "654321", "", now); err != nil || !ok {
			t.Fatalf("repeated SetPairing = %v, %v", ok, err)
		}
		if ok, err := sessions.MarkDeployed(ctx, repository.NoTX, s.ID, "bot", now); err != nil || !ok {
			t.Fatalf("MarkDeployed = %v, %v", ok, err)
		}

		got, _ := sessions.FindByID(ctx, repository.NoTX, s.ID)
		if got.Status != model.SessionStatusDeployed || got.DeploymentStatus != model.DeploymentStatusInProgress {
			t.Fatalf("unexpected state: %+v", got)
		}
		if got.PairingCode == nil || *got.PairingCode != "654321" {
			t.Errorf("pairing code not kept")
		}
		if got.BotName == nil || *got.BotName != "bot" || got.DeployedAt == nil {
			t.Errorf("deployment fields not set: %+v", got)
		}

		if ok, _ := sessions.SetPairing(ctx, repository.NoTX, s.ID, "000000", "", now); ok {
			t.Errorf("pairing after deploy must not match")
		}
		if ok, _ := sessions.SetQRCode(ctx, repository.NoTX, s.ID, "data:", now); ok {
			t.Errorf("qr after deploy must not match")
		}
		if ok, _ := sessions.MarkDeployed(ctx, repository.NoTX, s.ID, "again", now); ok {
			t.Errorf("redeploy must not match")
		}
	})

	t.Run("qr keeps status", func(t *testing.T) {
		s := newSession(t)
		if ok, err := sessions.SetQRCode(ctx, repository.NoTX, s.ID, "data:image/png;base64,AA", now); err != nil || !ok {
			t.Fatalf("SetQRCode = %v, %v", ok, err)
		}
		got, _ := sessions.FindByID(ctx, repository.NoTX, s.ID)
		if got.Status != model.SessionStatusPairing || got.QRCode == nil {
			t.Fatalf("unexpected state after qr: %+v", got)
		}
	})
}

func TestFeatureAndDeploymentRepos(t *testing.T) {
	ctx := context.Background()
	vouchers := NewVoucherRepo(testPool)
	sessions := NewSessionRepo(testPool)
	features := NewFeatureRepo(testPool)
	deployments := NewDeploymentRepo(testPool)
	tm := NewTxManager(testPool)
	now := time.Now().UTC().Truncate(time.Millisecond)

	cleanup(t)
	v := seedVoucher(t, vouchers, "UBOT-FEAT-0000-0000", 30, now)
	s := model.NewSession("user-1", v.Code, now)
	if err := sessions.Create(ctx, repository.NoTX, s); err != nil {
		t.Fatal(err)
	}

	t.Run("upsert keeps one row", func(t *testing.T) {
		for _, enabled := range []bool{true, false, true, false} {
			f := &model.Feature{SessionID: s.ID, Name: "autoReply", Enabled: enabled, CreatedAt: now, UpdatedAt: now}
			if err := features.Upsert(ctx, repository.NoTX, f); err != nil {
				t.Fatal(err)
			}
		}
		got, err := features.ListBySession(ctx, repository.NoTX, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Enabled {
			t.Fatalf("features = %+v", got)
		}
	})

	t.Run("deployment committed with session", func(t *testing.T) {
		if _, err := sessions.SetPairing(ctx, repository.NoTX, s.ID, "123456", "", now); err != nil {
			t.Fatal(err)
		}
		err := tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			ok, err := sessions.MarkDeployed(ctx, tx, s.ID, "bot", now)
			if err != nil || !ok {
				return fmt.Errorf("mark deployed: %v %v", ok, err)
			}
			return deployments.Create(ctx, tx, model.NewDeployment(s.ID, s.UserID, now))
		})
		if err != nil {
			t.Fatalf("WithTx: %v", err)
		}
		got, err := deployments.FindBySession(ctx, repository.NoTX, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Type != "vps" {
			t.Fatalf("deployments = %+v", got)
		}
	})

	t.Run("rollback discards writes", func(t *testing.T) {
		boom := errors.New("boom")
		err := tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			if err := deployments.Create(ctx, tx, model.NewDeployment(s.ID, s.UserID, now)); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		got, _ := deployments.FindBySession(ctx, repository.NoTX, s.ID)
		if len(got) != 1 {
			t.Fatalf("rolled back deployment persisted: %d rows", len(got))
		}
	})
}

func TestOwnerRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresOwnerRepo(testPool)
	cleanup(t)

	o, _ := model.NewOwner("admin", "Administrator")
	if err := repo.Save(ctx, repository.NoTX, o); err != nil {
		t.Fatal(err)
	}
	o.Username = "Root"
	if err := repo.Save(ctx, repository.NoTX, o); err != nil {
		t.Fatal(err)
	}
	got, err := repo.FindByID(ctx, repository.NoTX, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "Root" {
		t.Fatalf("username = %q", got.Username)
	}
	if _, err := repo.FindByID(ctx, repository.NoTX, "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
