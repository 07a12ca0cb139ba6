package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/payment"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureCouponIndexes(db); err != nil {
		log.Printf("coupon index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}
	if err := database.EnsureWalletIndexes(db); err != nil {
		log.Printf("wallet index warning: %v", err)
	}
	if err := database.EnsurePendingRegistrationIndexes(db); err != nil {
		log.Printf("pending registration index warning: %v", err)
	}

	verifier := payment.NewHMACVerifier(config.AppEnv.PaymentSecret)
	notifier := handlers.LogOTPNotifier{}

	r := gin.Default()

	r.POST("/api/auth/register", handlers.Register(db, notifier, config.AppEnv.OTPTTL))
	r.POST("/api/auth/verify-otp", handlers.VerifyOTP(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/api/auth/resend-otp", handlers.ResendOTP(db, notifier, config.AppEnv.OTPTTL))
	r.POST("/api/auth/login", handlers.Login(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/api/auth/refresh", handlers.Refresh(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/api/auth/logout", handlers.Logout(db))

	r.GET("/api/products", handlers.GetProducts(db))
	r.GET("/api/products/:id", handlers.GetProduct(db))
	r.GET("/api/categories", handlers.GetCategories(db))

	user := r.Group("/api")
	user.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		user.GET("/users/me", handlers.GetMe(db))
		user.POST("/users/me/addresses", handlers.AddAddress(db))
		user.PUT("/users/me/addresses/:addressId", handlers.UpdateAddress(db))
		user.DELETE("/users/me/addresses/:addressId", handlers.DeleteAddress(db))

		user.GET("/cart", handlers.GetCart(db))
		user.POST("/cart/items", handlers.AddCartItem(db))
		user.PUT("/cart/items/:productId", handlers.UpdateCartItem(db))
		user.DELETE("/cart/items/:productId", handlers.RemoveCartItem(db))

		user.POST("/cart/coupon", handlers.ApplyCoupon(db))
		user.DELETE("/cart/coupon", handlers.RemoveCoupon(db))

		user.POST("/checkout", handlers.PlaceOrder(db, verifier, config.AppEnv.PaymentVerifyTimeout))
		user.GET("/orders", handlers.GetOrders(db))
		user.GET("/orders/:id/summary", handlers.GetOrderSummary(db))
		user.POST("/orders/items/:itemId/cancel", handlers.CancelOrderItem(db))
		user.POST("/orders/items/:itemId/return", handlers.RequestReturn(db))

		user.GET("/wallet", handlers.GetWalletBalance(db))
		user.GET("/wallet/transactions", handlers.GetWalletTransactions(db))
	}

	r.POST("/admin/api/auth/login", handlers.AdminLogin(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.POST("/categories", handlers.AdminCreateCategory(db))
		admin.PATCH("/categories/:id/status", handlers.AdminToggleCategoryStatus(db))

		admin.GET("/offers", handlers.AdminGetOffers(db))
		admin.POST("/offers", handlers.AdminCreateOffer(db))
		admin.PUT("/offers/:id", handlers.AdminUpdateOffer(db))
		admin.PATCH("/offers/:id/status", handlers.AdminToggleOfferStatus(db))
		admin.DELETE("/offers/:id", handlers.AdminDeleteOffer(db))

		admin.GET("/coupons", handlers.AdminGetCoupons(db))
		admin.POST("/coupons", handlers.AdminCreateCoupon(db))
		admin.PUT("/coupons/:id", handlers.AdminUpdateCoupon(db))
		admin.PATCH("/coupons/:id/status", handlers.AdminToggleCouponStatus(db))
		admin.DELETE("/coupons/:id", handlers.AdminDeleteCoupon(db))

		admin.GET("/orders", handlers.AdminGetOrders(db))
		admin.PUT("/orders/status", handlers.AdminUpdateOrderStatus(db))
		admin.GET("/reports/sales", handlers.AdminSalesReport(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
