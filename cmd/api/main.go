package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/paystack"
	"app/internal/infra/postmark"
	infraQueue "app/internal/infra/queue"
	infraRepo "app/internal/infra/repository"
	"app/internal/metrics"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envは無くても環境変数だけで動く
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Vendor{},
		&model.Deal{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.PaymentDetail{},
		&model.ShippingDetail{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	vendorRepo := infraRepo.NewVendorGormRepository(gormDB)
	dealRepo := infraRepo.NewDealGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	paymentRepo := infraRepo.NewPaymentGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Redisジョブキュー
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	jobQueue := infraQueue.NewRedisQueue(rdb)

	//外部サービス
	gateway := paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)
	mailer := postmark.NewClient("", cfg.PostmarkServerToken, cfg.PostmarkFromEmail)

	m := metrics.New(prometheus.DefaultRegisterer)

	//usecaseに渡す部品
	clock := &realClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := newJWTIssuer(cfg.JWTSecret)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	dealUC := usecase.NewDealUsecase(dealRepo, vendorRepo, inventoryRepo)
	vendorUC := usecase.NewVendorUsecase(vendorRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, dealRepo)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo, paymentRepo)
	checkoutUC := usecase.NewCheckoutUsecase(
		txManager,
		cartUC,
		userRepo,
		orderRepo,
		orderItemRepo,
		paymentRepo,
		vendorRepo,
		jobQueue,
		gateway,
		mailer,
		m,
		logger,
	)

	//Handler生成
	h := server.Handlers{
		Auth:   handler.NewAuthHandler(registerUC, loginUC),
		Deal:   handler.NewDealHandler(dealUC),
		Cart:   handler.NewCartHandler(cartUC, checkoutUC),
		Order:  handler.NewOrderHandler(orderUC),
		Vendor: handler.NewVendorHandler(vendorUC, dealUC),
	}

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	logger.Info("api starting", zap.String("addr", addr))
	if err := server.Start(addr, cfg, h); err != nil {
		panic(err)
	}
}
