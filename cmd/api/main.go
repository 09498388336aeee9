package main

import (
	"log"

	"heelwa/internal/config"
	"heelwa/internal/domain/model"
	"heelwa/internal/handler"
	"heelwa/internal/infra/db"
	infraRepo "heelwa/internal/infra/repository"
	"heelwa/internal/notify"
	"heelwa/internal/server"
	"heelwa/internal/usecase"
	"heelwa/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無くてもいい（compose等で環境変数が来る場合）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Variant{},
		&model.Cart{},
		&model.CartItem{},
		&model.InventoryLog{},
	); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	variantRepo := infraRepo.NewVariantGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	logRepo := infraRepo.NewInventoryLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//在庫変動の通知先。REDIS_ADDRが無ければ何もしない
	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.RedisAddr != "" {
		notifier = notify.NewRedisNotifier(cfg.RedisAddr)
	}

	//Usecase生成
	authValidator := validator.NewAuthValidator(userRepo)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, authValidator)
	catalogUC := usecase.NewCatalogUsecase(variantRepo, productRepo)
	cartUC := usecase.NewCartUsecase(txManager, cartRepo, cartItemRepo, variantRepo, productRepo, notifier)
	keepUC := usecase.NewKeepUsecase(txManager, cartItemRepo, notifier)
	posUC := usecase.NewPosUsecase(txManager, userRepo, cartRepo, cartItemRepo, variantRepo, productRepo, notifier)
	ledgerUC := usecase.NewLedgerUsecase(logRepo, variantRepo, productRepo, userRepo)
	invUC := usecase.NewInventoryUsecase(txManager, productRepo, variantRepo, notifier)

	//Handler生成
	handlers := server.Handlers{
		Auth:           handler.NewAuthHandler(authUC),
		Catalog:        handler.NewCatalogHandler(catalogUC),
		Cart:           handler.NewCartHandler(cartUC, keepUC),
		Pos:            handler.NewPosHandler(posUC, keepUC),
		AdminInventory: handler.NewAdminInventoryHandler(invUC, ledgerUC),
	}

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	e := server.New(cfg, handlers)
	if err := server.Start(e, addr); err != nil {
		log.Fatal(err)
	}
}
