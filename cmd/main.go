package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	addDoctorLeaveHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/add_doctor_leave"
	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	checkAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/check_doctor_availability"
	confirmAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/confirm_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	getDoctorLeavesHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_doctor_leaves"
	getHospitalAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_hospital_appointments"
	getMyAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_my_appointments"
	healthHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/health"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_appointment"
	updateStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_appointment_status"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifier"
	patientServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/patientservice"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	doctorsService "github.com/m04kA/SMC-AppointmentService/internal/service/doctors"
	cancelAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_appointment"
	checkAvailabilityUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_doctor_availability"
	createAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	rescheduleAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/clock"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

const healthCheckTimeout = 2 * time.Second

func main() {
	configPath := "config.toml"
	if v := os.Getenv("APP_CONFIG"); v != "" {
		configPath = v
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s", configPath)

	// Правила расписания: один часовой пояс на все решения
	rules, err := cfg.Scheduling.Rules()
	if err != nil {
		log.Fatal("Invalid scheduling rules: %v", err)
	}
	log.Info("Scheduling rules: timezone=%s, day=%s-%s, slot=%dm, conflict_window=%s",
		rules.Location, rules.DayStart, rules.DayEnd, rules.SlotMinutes, rules.ConflictWindow)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к PostgreSQL (записи на приём)
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Подключаемся к MongoDB (справочник врачей)
	mongoTimeout := time.Duration(cfg.Mongo.Timeout) * time.Second
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), mongoTimeout)
	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI).SetTimeout(mongoTimeout))
	cancelConnect()
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error("Failed to disconnect MongoDB: %v", err)
		}
	}()

	doctorRepository := doctorRepo.NewRepository(
		mongoClient.Database(cfg.Mongo.Database).Collection(cfg.Mongo.DoctorsCollection),
	)
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), mongoTimeout)
	if err := doctorRepository.EnsureIndexes(indexCtx); err != nil {
		log.Warn("Failed to ensure doctor indexes: %v", err)
	}
	cancelIndex()
	log.Info("Successfully connected to MongoDB (db=%s, collection=%s)", cfg.Mongo.Database, cfg.Mongo.DoctorsCollection)

	// Redis: блокировка окна отделения
	var (
		redisClient *redis.Client
		locker      lock.Locker = lock.NoopLocker{}
	)
	if cfg.Lock.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping Redis: %v", err)
		}
		locker = lock.NewRedisLocker(redisClient, lock.Options{
			TTL:           cfg.Lock.TTL(),
			WaitTimeout:   cfg.Lock.WaitTimeout(),
			RetryInterval: cfg.Lock.RetryInterval(),
		}, metricsCollector)
		log.Info("Department lock enabled (redis=%s, ttl=%s)", cfg.Redis.Addr, cfg.Lock.TTL())
	} else {
		log.Warn("Department lock disabled, relying on database constraint only")
	}

	// RabbitMQ: события о записях. Без брокера события пишутся в лог.
	var publisher notifier.Publisher = notifier.NewLogPublisher(log)
	if cfg.RabbitMQ.Enabled {
		conn, err := amqp091.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		defer conn.Close()

		rabbitPublisher, err := notifier.NewRabbitPublisher(conn, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("Failed to initialize RabbitMQ publisher: %v", err)
		}
		publisher = rabbitPublisher
		log.Info("RabbitMQ publisher initialized (exchange=%s)", cfg.RabbitMQ.Exchange)
	}
	eventNotifier := notifier.New(publisher, log, metricsCollector, time.Duration(cfg.RabbitMQ.Timeout)*time.Second)

	// Инициализируем интеграционных клиентов
	patientClient := patientServiceClient.NewClient(
		cfg.Patients.URL,
		time.Duration(cfg.Patients.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (PatientService=%s timeout=%ds)", cfg.Patients.URL, cfg.Patients.Timeout)

	// Инициализируем репозиторий и transaction manager (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		txMgr                 *txmanager.TransactionManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB, rules.ConflictWindow)
		txMgr = txmanager.NewTransactionManager(wrappedDB).WithMetrics(metricsCollector)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db, rules.ConflictWindow)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Правила и часы
	timeProvider := clock.NewZoned(rules.Location)
	validator := scheduling.NewValidator(rules)
	detector := scheduling.NewDetector(rules, appointmentRepository)
	cancelPolicy := scheduling.NewPatientNoticePolicy(rules.PatientCancelNotice)

	// Инициализируем сервисы
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		patientClient,
		txMgr,
		eventNotifier,
		timeProvider,
		log,
	)
	doctorSvc := doctorsService.NewService(doctorRepository, validator, log)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		detector,
		validator,
		locker,
		txMgr,
		eventNotifier,
		timeProvider,
		metricsCollector,
		log,
	)

	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointmentRepository,
		detector,
		validator,
		locker,
		txMgr,
		eventNotifier,
		timeProvider,
		metricsCollector,
		log,
	)

	cancelAppointmentUseCase := cancelAppointmentUC.NewUseCase(
		appointmentRepository,
		validator,
		cancelPolicy,
		txMgr,
		eventNotifier,
		timeProvider,
		metricsCollector,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		doctorRepository,
		appointmentRepository,
		validator,
		log,
	)

	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(
		doctorRepository,
		appointmentRepository,
		validator,
		log,
	)

	// Health checks
	checks := map[string]healthHandler.Check{
		"postgres": db.PingContext,
		"mongo": func(ctx context.Context) error {
			return mongoClient.Ping(ctx, nil)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(cancelAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	getMyAppointments := getMyAppointmentsHandler.NewHandler(appointmentSvc, log)
	getHospitalAppointments := getHospitalAppointmentsHandler.NewHandler(appointmentSvc, rules.Location, log)
	confirmAppointment := confirmAppointmentHandler.NewHandler(appointmentSvc, log)
	updateStatus := updateStatusHandler.NewHandler(appointmentSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	addDoctorLeave := addDoctorLeaveHandler.NewHandler(doctorSvc, log)
	getDoctorLeaves := getDoctorLeavesHandler.NewHandler(doctorSvc, log)
	health := healthHandler.NewHandler(checks, healthCheckTimeout, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.HeaderUserID, middleware.HeaderUserType, middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         cfg.CORS.MaxAge,
	}))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health/live", health.Live).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()
	if cfg.RateLimit.Enabled {
		api.Use(httprate.LimitByIP(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second))
		log.Info("Rate limit enabled (%d requests per %ds)", cfg.RateLimit.Requests, cfg.RateLimit.WindowSeconds)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты врача на день
	api.HandleFunc("/doctors/{doctorId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Проверка доступности врача
	api.HandleFunc("/doctors/{doctorId}/availability-check", checkAvailability.Handle).Methods(http.MethodPost)

	// Отпуска врача
	api.HandleFunc("/doctors/{doctorId}/leaves", getDoctorLeaves.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи на приём ---
	// Создание записи
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)

	// Записи текущего пациента (до /{appointmentId}, иначе "me" станет ID)
	protected.HandleFunc("/appointments/me", getMyAppointments.Handle).Methods(http.MethodGet)

	// Получение записи по ID
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)

	// Отмена, перенос, подтверждение, смена статуса
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/confirm", confirmAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/status", updateStatus.Handle).Methods(http.MethodPatch)

	// --- Для персонала ---
	// Список записей больницы
	protected.HandleFunc("/hospitals/{hospitalId}/appointments", getHospitalAppointments.Handle).Methods(http.MethodGet)

	// Добавление отпуска врача
	protected.HandleFunc("/doctors/{doctorId}/leaves", addDoctorLeave.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
