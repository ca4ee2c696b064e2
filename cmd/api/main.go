package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campus-hub/academic-core-api/api/swagger"
	"github.com/campus-hub/academic-core-api/internal/handler"
	"github.com/campus-hub/academic-core-api/internal/middleware"
	"github.com/campus-hub/academic-core-api/internal/repository"
	"github.com/campus-hub/academic-core-api/internal/service"
	"github.com/campus-hub/academic-core-api/pkg/cache"
	"github.com/campus-hub/academic-core-api/pkg/config"
	"github.com/campus-hub/academic-core-api/pkg/database"
	"github.com/campus-hub/academic-core-api/pkg/events"
	"github.com/campus-hub/academic-core-api/pkg/export"
	"github.com/campus-hub/academic-core-api/pkg/logger"
	corsmiddleware "github.com/campus-hub/academic-core-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-hub/academic-core-api/pkg/middleware/requestid"
)

// @title Academic Core API
// @version 1.0.0
// @description Semester registration and course offering scheduling backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	var publisher events.Publisher = events.NopPublisher{}
	var asyncPublisher *events.AsyncPublisher
	if cfg.Events.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis", "error", err)
		}
		defer redisClient.Close()
		asyncPublisher = events.NewAsyncPublisher(
			events.NewRedisPublisher(redisClient, cfg.Events.ChannelPrefix),
			cfg.Events.Workers, cfg.Events.BufferSize, logr)
		asyncPublisher.Start(context.Background())
		defer asyncPublisher.Stop()
		publisher = asyncPublisher
	}

	validate := validator.New()

	semesterRepo := repository.NewSemesterRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewOfferedCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	scheduleRepo := repository.NewClassScheduleRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	studentRegRepo := repository.NewStudentRegistrationRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	enrolledRepo := repository.NewEnrolledCourseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT.Secret, logr)
	scheduleSvc := service.NewClassScheduleService(scheduleRepo, roomRepo, facultyRepo, sectionRepo, publisher, validate, logr)
	sectionSvc := service.NewSectionService(sectionRepo, courseRepo, roomRepo, facultyRepo, enrollmentRepo, publisher, validate, logr)
	exportSvc := service.NewExportService(sectionSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	registrationSvc := service.NewRegistrationService(
		registrationRepo, semesterRepo, studentRegRepo, enrollmentRepo,
		enrolledRepo, paymentRepo, db, publisher, validate, logr,
		cfg.Registration.PerCreditFee)
	enrollmentSvc := service.NewEnrollmentService(
		studentRepo, registrationRepo, studentRegRepo, courseRepo,
		sectionRepo, enrollmentRepo, publisher, validate, logr)

	scheduleHandler := handler.NewClassScheduleHandler(scheduleSvc)
	sectionHandler := handler.NewSectionHandler(sectionSvc, exportSvc)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc, enrollmentSvc, metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	registrations := api.Group("/semester-registrations")
	{
		registrations.GET("", registrationHandler.List)
		registrations.POST("", registrationHandler.Create)
		registrations.GET("/:id", registrationHandler.Get)
		registrations.PATCH("/:id", registrationHandler.Update)
		registrations.PATCH("/:id/status", registrationHandler.UpdateStatus)
		registrations.DELETE("/:id", registrationHandler.Delete)
		registrations.POST("/:id/start-new-semester", registrationHandler.StartNewSemester)
	}

	my := api.Group("/my-registration", middleware.JWT(authSvc))
	{
		my.GET("", registrationHandler.GetMyRegistration)
		my.POST("/start", registrationHandler.StartMyRegistration)
		my.GET("/courses", registrationHandler.MyCourses)
		my.GET("/enrolled", registrationHandler.MyEnrolledCourses)
		my.POST("/enroll", registrationHandler.Enroll)
		my.POST("/withdraw", registrationHandler.Withdraw)
		my.POST("/confirm", registrationHandler.Confirm)
	}

	sections := api.Group("/sections")
	{
		sections.GET("", sectionHandler.List)
		sections.POST("", sectionHandler.Create)
		sections.GET("/:id", sectionHandler.Get)
		sections.PATCH("/:id", sectionHandler.Update)
		sections.DELETE("/:id", sectionHandler.Delete)
		sections.GET("/:id/roster", sectionHandler.Roster)
		sections.GET("/:id/roster/export", sectionHandler.ExportRoster)
	}

	schedules := api.Group("/class-schedules")
	{
		schedules.GET("", scheduleHandler.List)
		schedules.POST("", scheduleHandler.Create)
		schedules.GET("/:id", scheduleHandler.Get)
		schedules.PUT("/:id", scheduleHandler.Update)
		schedules.DELETE("/:id", scheduleHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
