package main

import (
	"storefront/internal/handler"
	"storefront/internal/infra/mailer"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/storage"
	"storefront/internal/server"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"
	"storefront/internal/validator"

	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			cfg, log := rt.cfg, rt.log

			//Tx manager（全usecaseで共有）
			tx := infraRepo.NewTxManagerGorm(rt.db, cfg.DBStatementTimeout, log)

			//外部連携
			assets := storage.NewS3Store(rt.awsCfg, cfg.AssetBucket, cfg.AssetsCDNBaseURL)
			if !assets.Enabled() {
				log.Warn("ASSET_BUCKET not set; uploads will fail")
			}
			var notifier usecase.Notifier = mailer.NewLogNotifier(log)
			if cfg.SESFromEmail != "" {
				notifier = mailer.NewSESNotifier(rt.awsCfg, cfg.SESFromEmail)
			}

			//usecaseに渡す部品
			idGen := &uuidGenerator{}
			clock := &realClock{}
			issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL)
			v := validator.NewAuthValidator()

			//Usecase生成
			loginUC := auth.NewLoginUsecase(tx, v, auth.NewBcryptPasswordVerifier(), issuer, clock)
			createUserUC := auth.NewCreateUserUsecase(tx, v, auth.NewBcryptPasswordHasher(12), clock)
			catalogUC := usecase.NewCatalogUsecase(tx, assets, clock, log)
			categoryUC := usecase.NewCategoryUsecase(tx)
			logoUC := usecase.NewLogoUsecase(tx, assets, clock, log)
			customizationUC := usecase.NewCustomizationUsecase(tx, assets, log)
			cartUC := usecase.NewCartUsecase(tx)
			orderUC := usecase.NewOrderUsecase(tx, notifier, idGen, clock, log)
			adminOrderUC := usecase.NewAdminOrderUsecase(tx, notifier, clock, log)
			summaryUC := usecase.NewSummaryUsecase(tx, clock)
			addressUC := usecase.NewAddressUsecase(tx, clock)

			//Handler生成
			h := server.Handlers{
				Auth:          handler.NewAuthHandler(loginUC, createUserUC),
				Product:       handler.NewProductHandler(catalogUC, categoryUC),
				AdminProduct:  handler.NewAdminProductHandler(catalogUC, categoryUC),
				Logo:          handler.NewLogoHandler(logoUC),
				Customization: handler.NewCustomizationHandler(customizationUC),
				Cart:          handler.NewCartHandler(cartUC),
				Order:         handler.NewOrderHandler(orderUC),
				AdminOrder:    handler.NewAdminOrderHandler(adminOrderUC, summaryUC),
				Address:       handler.NewAddressHandler(addressUC),
			}

			//Server起動
			e := server.New(cfg, log, issuer, h)
			return server.Start(ctx, e, cfg.Addr(), log)
		},
	}
}
