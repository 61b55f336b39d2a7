package server

import (
	"context"
	"net/http"
	"time"

	"giftwallet-service/internal/cache"
	"giftwallet-service/internal/config"
	"giftwallet-service/internal/paystack"
	"giftwallet-service/internal/repository"
	"giftwallet-service/internal/router"
	"giftwallet-service/internal/usecase/contribution"
	"giftwallet-service/internal/usecase/payout"
	"giftwallet-service/internal/usecase/wallet"
	"giftwallet-service/internal/usecase/withdrawal"
	"giftwallet-service/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	httpServer *http.Server
	reconciler *worker.Reconciler
	db         *pgxpool.Pool
	rdb        *redis.Client
}

func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	db, err := config.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	rdb, err := config.ConnectRedis(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	txm := repository.NewTxManager(db)
	walletRepo := repository.NewWalletRepository(db, logger)
	entryRepo := repository.NewWalletTransactionRepository(db)
	contributionRepo := repository.NewContributionRepository(db, logger)
	wishlistRepo := repository.NewWishlistRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db, logger)
	payoutRepo := repository.NewPayoutMethodRepository(db)

	gateway := paystack.NewClient(cfg.PaystackSecretKey, cfg.PaystackBaseURL, logger)
	banks := cache.NewBankCache(rdb, logger)

	walletUC := wallet.New(walletRepo, entryRepo)
	contributionUC := contribution.New(txm, contributionRepo, wishlistRepo, walletRepo,
		contribution.NewLogNotifier(logger), logger)
	withdrawalUC := withdrawal.New(txm, withdrawalRepo, walletRepo, payoutRepo, gateway,
		cfg.Fees, cfg.Limits, logger)
	payoutUC := payout.New(payoutRepo, gateway, banks, logger)

	r := router.New(router.Deps{
		Wallet:        walletUC,
		Withdrawal:    withdrawalUC,
		Payout:        payoutUC,
		Contribution:  contributionUC,
		WebhookSecret: cfg.PaystackWebhookSecret,
		Logger:        logger,
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reconciler: worker.NewReconciler(withdrawalUC, rdb, cfg.Reconciler, logger),
		db:         db,
		rdb:        rdb,
	}, nil
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// RunReconciler blocks until ctx is cancelled.
func (s *Server) RunReconciler(ctx context.Context) {
	s.reconciler.Run(ctx)
}

func (s *Server) Shutdown(ctx context.Context) error {
	defer func() {
		s.db.Close()
		_ = s.rdb.Close()
	}()
	return s.httpServer.Shutdown(ctx)
}
