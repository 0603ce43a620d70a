package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pitstop-crm/pitstop-api/config"
	"github.com/pitstop-crm/pitstop-api/controllers"
	"github.com/pitstop-crm/pitstop-api/middleware"
	"github.com/pitstop-crm/pitstop-api/models"
	"github.com/pitstop-crm/pitstop-api/services"
	"github.com/pitstop-crm/pitstop-api/store"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	logrus.Info("Starting PitStop API server...")

	if err := config.ConnectDatabase(); err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	db := config.GetDB()

	if err := migrate(db); err != nil {
		logrus.WithError(err).Fatal("failed to migrate database")
	}
	logrus.Info("Database migration completed")

	if err := seedSuperadmin(db, cfg); err != nil {
		logrus.WithError(err).Fatal("failed to seed superadmin account")
	}

	services.InitAuthService(db, cfg)
	if _, err := store.InitStore(db); err != nil {
		logrus.WithError(err).Fatal("failed to initialize data store")
	}
	if cfg.AWSS3Bucket != "" {
		if _, err := services.InitStorageService(); err != nil {
			logrus.WithError(err).Fatal("failed to initialize storage service")
		}
	} else {
		logrus.Warn("AWS_S3_BUCKET not set, logo uploads disabled")
	}

	router := setupRouter()

	addr := ":" + cfg.Port
	logrus.Infof("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		logrus.WithError(err).Fatal("failed to start server")
	}
}

// migrate creates or updates the schema for every model
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.UserProfile{},
		&models.Customer{},
		&models.Vehicle{},
		&models.Service{},
		&models.ServicePart{},
		&models.Part{},
	)
}

// seedSuperadmin creates the tenant-less superadmin account on first boot.
// Without it no one can provision the first shop.
func seedSuperadmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		logrus.Warn("SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD not set, skipping superadmin seed")
		return nil
	}

	var count int64
	if err := db.Model(&models.UserProfile{}).
		Where("email = ?", cfg.SeedAdminEmail).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := services.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	admin := models.UserProfile{
		FirstName:          "Super",
		LastName:           "Admin",
		Email:              cfg.SeedAdminEmail,
		PasswordHash:       hash,
		Role:               models.RoleSuperadmin,
		Status:             models.StatusActive,
		MustChangePassword: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logrus.WithField("email", cfg.SeedAdminEmail).Info("Seeded superadmin account")
	return nil
}

// setupRouter wires the middleware chain and every route group
func setupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	v1 := router.Group("/api/v1")

	v1.GET("/health", healthCheck)

	// session endpoints: login is open, logout works with any token state
	auth := v1.Group("/auth")
	{
		auth.POST("/login", controllers.Login)
		auth.POST("/logout", controllers.Logout)
	}

	// the caller's own profile is reachable without tenant verification so
	// an unassigned account can still see who it is
	me := v1.Group("/users")
	me.Use(middleware.EnsureValidToken())
	{
		me.GET("/me", controllers.GetMyProfile)
		me.PUT("/me", controllers.UpdateMyProfile)
	}

	// shop provisioning: token required, tenant deliberately not
	provisioning := v1.Group("/tenants")
	provisioning.Use(middleware.EnsureValidToken(), middleware.RequireSuperadmin())
	{
		provisioning.POST("", controllers.ProvisionTenant)
	}

	// everything below is tenant-scoped: valid token, then a verified
	// tenant membership, then per-group role checks
	scoped := v1.Group("")
	scoped.Use(middleware.EnsureValidToken(), middleware.RequireTenant())
	{
		tenant := scoped.Group("/tenants")
		{
			tenant.GET("/me", controllers.GetMyTenant)
			tenant.PUT("/me", middleware.RequireRole(models.RoleAdmin), controllers.UpdateMyTenant)
			tenant.POST("/me/logo", middleware.RequireRole(models.RoleAdmin), controllers.UploadTenantLogo)
		}

		customers := scoped.Group("/customers")
		{
			customers.GET("", controllers.ListCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.POST("", controllers.CreateCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), controllers.DeleteCustomer)
		}

		vehicles := scoped.Group("/vehicles")
		{
			vehicles.GET("", controllers.ListVehicles)
			vehicles.GET("/:id", controllers.GetVehicle)
			vehicles.POST("", controllers.CreateVehicle)
			vehicles.PUT("/:id", controllers.UpdateVehicle)
			vehicles.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), controllers.DeleteVehicle)
		}

		parts := scoped.Group("/parts")
		{
			parts.GET("", controllers.ListParts)
			parts.GET("/:id", controllers.GetPart)
			parts.POST("", middleware.RequireRole(models.RoleAdmin, models.RoleConsultant), controllers.CreatePart)
			parts.PUT("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleConsultant), controllers.UpdatePart)
			parts.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), controllers.DeletePart)
		}

		srv := scoped.Group("/services")
		{
			srv.GET("", controllers.ListServices)
			srv.GET("/:id", controllers.GetService)
			srv.POST("", controllers.CreateService)
			srv.PUT("/:id", controllers.UpdateService)
			srv.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), controllers.DeleteService)
			srv.POST("/:id/parts", controllers.AddServicePart)
			srv.DELETE("/:id/parts/:partId", controllers.RemoveServicePart)
			srv.GET("/:id/invoice", controllers.GetServiceInvoice)
		}

		personnel := scoped.Group("/personnel")
		personnel.Use(middleware.RequireRole(models.RoleAdmin))
		{
			personnel.GET("", controllers.ListPersonnel)
			personnel.GET("/:id", controllers.GetPersonnel)
			personnel.POST("", controllers.CreatePersonnel)
			personnel.PUT("/:id", controllers.UpdatePersonnel)
			personnel.DELETE("/:id", controllers.DeactivatePersonnel)
		}

		reports := scoped.Group("/reports")
		reports.Use(middleware.RequireRole(models.RoleAdmin, models.RoleAccountant))
		{
			reports.GET("/technicians", controllers.GetTechnicianReport)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "PitStop API is running",
	})
}
