package application

import (
	"github.com/rs/zerolog"

	"ubot-platform/internal/config"
	"ubot-platform/internal/domain/ports/adapter"
	"ubot-platform/internal/domain/ports/repository"
	"ubot-platform/internal/infra/adapters/pairing"
	"ubot-platform/internal/infra/adapters/qr"
	"ubot-platform/internal/infra/db"
	"ubot-platform/internal/usecase"
)

// Build assembles the facade over st. owners overrides st.Owners when the
// caller decorates it (e.g. with the Redis cache); cipher may be nil.
func Build(cfg *config.Config, st *db.Store, owners repository.OwnerRepository, cipher adapter.Cipher, logger *zerolog.Logger) *DeploymentFacade {
	if owners == nil {
		owners = st.Owners
	}
	engine := usecase.NewVoucherEngine(
		st.Vouchers, owners,
		usecase.NewCodeGenerator(cfg.Vouchers.Prefix),
		cfg.Vouchers.MaxBatch,
		logger,
	)

	var opts []usecase.LinkerOption
	if cipher != nil {
		opts = append(opts, usecase.WithCipher(cipher))
	}
	linker := usecase.NewSessionLinker(
		st.Sessions, st.Features, st.Deployments, st.Tx,
		pairing.NewRandomProvider(), qr.NewPNGRenderer(256),
		usecase.LinkerConfig{Domain: cfg.Pairing.Domain, CodeTTL: cfg.Pairing.CodeTTL},
		logger, opts...,
	)

	return NewDeploymentFacade(engine, linker, usecase.NewOwnerUseCase(owners, st.Tx, logger), logger)
}
