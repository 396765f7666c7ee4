package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/handler"
	"bookstore/internal/infra/payment"
	infraRepo "bookstore/internal/infra/repository"
	"bookstore/internal/infra/token"
	"bookstore/internal/usecase"
	auth "bookstore/internal/usecase/auth_usecase"
	"bookstore/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"
)

// Shutdownで処理中のリクエストを待つ時間
const shutdownTimeout = 10 * time.Second

// bcryptのコスト
const bcryptCost = 12

// New は依存を組み立てて全ルート登録済みのechoを返す。
// stripeBackendがnilなら本番のStripe APIを使う。
func New(cfg config.Config, gdb *gorm.DB, stripeBackend stripe.Backend) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	if cfg.IsProd() {
		e.Logger.SetLevel(log.INFO)
	} else {
		e.Logger.SetLevel(log.DEBUG)
	}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			j := log.JSON{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				j["error"] = v.Error.Error()
				c.Logger().Errorj(j)
				return nil
			}
			c.Logger().Infoj(j)
			return nil
		},
	}))

	//Repository（GORM実装）
	userRepo := infraRepo.NewUserGormRepository(gdb)
	bookRepo := infraRepo.NewBookGormRepository(gdb)
	purchaseRepo := infraRepo.NewPurchaseGormRepository(gdb)
	auditRepo := infraRepo.NewAuditLogGormRepository(gdb)
	txm := infraRepo.NewTxManagerGorm(gdb)

	//外部サービス
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.Currency, stripeBackend)
	parser := payment.NewStripeWebhookParser(cfg.StripeWebhookSecret)
	issuer := token.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	//Usecase
	authValidator := validator.NewAuthValidator()
	clock := auth.SystemClock{}
	registerUC := auth.NewRegisterUserUsecase(userRepo, authValidator, auth.NewBcryptPasswordHasher(bcryptCost), clock)
	loginUC := auth.NewLoginUsecase(userRepo, authValidator, auth.NewBcryptPasswordVerifier(), issuer, clock)
	logoutUC := auth.NewLogoutUsecase(userRepo)
	meUC := auth.NewMeUsecase(userRepo)

	catalogUC := usecase.NewCatalogUsecase(bookRepo, txm)
	checkoutUC := usecase.NewCheckoutUsecase(txm, gateway, cfg.AppURL, e.Logger)
	webhookUC := usecase.NewWebhookUsecase(txm, parser, cfg.MaxDownloads, e.Logger)
	libraryUC := usecase.NewLibraryUsecase(purchaseRepo, e.Logger)
	orderUC := usecase.NewOrderUsecase(txm)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, userRepo, auditRepo)

	RegisterRoutes(e, cfg, userRepo, Handlers{
		Auth:       handler.NewAuthHandler(registerUC, loginUC, logoutUC, meUC),
		Book:       handler.NewBookHandler(catalogUC),
		AdminBook:  handler.NewAdminBookHandler(catalogUC),
		Checkout:   handler.NewCheckoutHandler(checkoutUC),
		Webhook:    handler.NewWebhookHandler(webhookUC),
		Library:    handler.NewLibraryHandler(libraryUC),
		Order:      handler.NewOrderHandler(orderUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC),
	})

	return e
}

// Start はctxがキャンセルされるまで待ち、処理中のリクエストを終わらせてから止める。
func Start(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		e.Logger.Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	e.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
