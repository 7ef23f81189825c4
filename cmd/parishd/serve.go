package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/m04kA/ParishReservationService/internal/api/handlers"
	cancelReservationHandler "github.com/m04kA/ParishReservationService/internal/api/handlers/cancel_reservation"
	checkAvailabilityHandler "github.com/m04kA/ParishReservationService/internal/api/handlers/check_availability"
	createReservationHandler "github.com/m04kA/ParishReservationService/internal/api/handlers/create_reservation"
	generalSchedulesHandler "github.com/m04kA/ParishReservationService/internal/api/handlers/general_schedules"
	getAvailableSlotsHandler "github.com/m04kA/ParishReservationService/internal/api/handlers/get_available_slots"
	getFormInfoHandler "github.com/m04kA/ParishReservationService/internal/api/handlers/get_form_info"
	getReservationHandler "github.com/m04kA/ParishReservationService/internal/api/handlers/get_reservation"
	listParishReservationsHandler "github.com/m04kA/ParishReservationService/internal/api/handlers/list_parish_reservations"
	listUserReservationsHandler "github.com/m04kA/ParishReservationService/internal/api/handlers/list_user_reservations"
	rejectReservationHandler "github.com/m04kA/ParishReservationService/internal/api/handlers/reject_reservation"
	specificSchedulesHandler "github.com/m04kA/ParishReservationService/internal/api/handlers/specific_schedules"
	updateReservationHandler "github.com/m04kA/ParishReservationService/internal/api/handlers/update_reservation"
	"github.com/m04kA/ParishReservationService/internal/api/middleware"
	slotCache "github.com/m04kA/ParishReservationService/internal/infra/cache/slots"
	catalogRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/catalog"
	"github.com/m04kA/ParishReservationService/internal/infra/storage/locks"
	personRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/person"
	reservationRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/reservation"
	scheduleRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/schedule"
	"github.com/m04kA/ParishReservationService/internal/integrations/eventbus"
	availabilityService "github.com/m04kA/ParishReservationService/internal/service/availability"
	catalogService "github.com/m04kA/ParishReservationService/internal/service/catalog"
	reservationsService "github.com/m04kA/ParishReservationService/internal/service/reservations"
	schedulesService "github.com/m04kA/ParishReservationService/internal/service/schedules"
	checkAvailabilityUC "github.com/m04kA/ParishReservationService/internal/usecase/check_availability"
	createReservationUC "github.com/m04kA/ParishReservationService/internal/usecase/create_reservation"
	getAvailableSlotsUC "github.com/m04kA/ParishReservationService/internal/usecase/get_available_slots"
	"github.com/m04kA/ParishReservationService/pkg/txmanager"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	log := a.log
	cfg := a.cfg
	log.Info("Starting ParishReservationService...")

	a.connectRedis(context.Background())

	publisher := eventbus.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue,
		eventbus.WithDialTimeout(cfg.RabbitMQ.Dial()),
		eventbus.WithRetryDelay(cfg.RabbitMQ.Retry()),
	)
	defer publisher.Close()
	if publisher.Enabled() {
		log.Info("Reservation events are published to queue %q", cfg.RabbitMQ.Queue)
	} else {
		log.Info("Reservation events disabled (rabbitmq.url is empty)")
	}

	// Инициализируем репозитории
	catalogRepository := catalogRepo.NewRepository(a.exec)
	personRepository := personRepo.NewRepository(a.exec)
	reservationRepository := reservationRepo.NewRepository(a.exec)
	scheduleRepository := scheduleRepo.NewRepository(a.exec)
	locker := locks.NewLocker(a.exec)
	cache := slotCache.NewCache(a.redis, cfg.Redis.TTL())

	txMgr := txmanager.NewTransactionManager(a.exec,
		txmanager.WithMaxAttempts(cfg.Booking.MaxTxAttempts),
		txmanager.WithRetryObserver(a.metrics),
	)

	// Инициализируем сервисы
	agenda := availabilityService.NewService(scheduleRepository, reservationRepository)
	catalogSvc := catalogService.NewService(catalogRepository, log)
	reservationSvc := reservationsService.NewService(reservationRepository, agenda, locker, txMgr, cache, publisher, log)
	scheduleSvc := schedulesService.NewService(scheduleRepository, catalogRepository, locker, txMgr, cache, log)

	// Инициализируем use cases
	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(catalogRepository, agenda, log)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(catalogRepository, agenda, cache, a.metrics, log)
	createReservationUseCase := createReservationUC.NewUseCase(
		catalogRepository,
		personRepository,
		reservationRepository,
		agenda,
		locker,
		txMgr,
		cache,
		publisher,
		a.metrics,
		log,
	)

	// Инициализируем handlers
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getFormInfo := getFormInfoHandler.NewHandler(catalogSvc, log)
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	listUserReservations := listUserReservationsHandler.NewHandler(reservationSvc, log)
	listParishReservations := listParishReservationsHandler.NewHandler(reservationSvc, log)
	updateReservation := updateReservationHandler.NewHandler(reservationSvc, log)
	rejectReservation := rejectReservationHandler.NewHandler(reservationSvc, log)
	generalSchedules := generalSchedulesHandler.NewHandler(scheduleSvc, log)
	specificSchedules := specificSchedulesHandler.NewHandler(scheduleSvc, log)

	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.LeewayDuration())

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if a.metrics != nil {
		r.Use(middleware.MetricsMiddleware(a.metrics))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}
	r.Use(middleware.AccessLog(log), middleware.Recover(log))

	r.HandleFunc("/health", healthHandler(a)).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/event-variants/{variantId}/availability", checkAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/event-variants/{variantId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/event-variants/{variantId}/form-info", getFormInfo.Handle).Methods(http.MethodGet)
	api.HandleFunc("/chapels/{chapelId}/general-schedules", generalSchedules.List).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют Bearer токен)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(auth.Auth)

	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	// pending и history регистрируются раньше /reservations/{reservationId}
	protected.HandleFunc("/reservations/pending", listUserReservations.Pending).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/history", listUserReservations.History).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)

	// ============================================================
	// PARISH ADMIN ROUTES (токен с parishId)
	// ============================================================

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireParish)

	admin.HandleFunc("/reservations", listParishReservations.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/reservations/{reservationId}", updateReservation.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/reservations/{reservationId}/reject", rejectReservation.Handle).Methods(http.MethodPatch)

	admin.HandleFunc("/chapels/{chapelId}/general-schedules", generalSchedules.Replace).Methods(http.MethodPut)
	admin.HandleFunc("/chapels/{chapelId}/specific-schedules", specificSchedules.List).Methods(http.MethodGet)
	admin.HandleFunc("/chapels/{chapelId}/specific-schedules", specificSchedules.Create).Methods(http.MethodPost)
	admin.HandleFunc("/chapels/{chapelId}/specific-schedules/{scheduleId}", specificSchedules.Update).Methods(http.MethodPut)
	admin.HandleFunc("/chapels/{chapelId}/specific-schedules/{scheduleId}", specificSchedules.Delete).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.Read(),
		WriteTimeout: cfg.Server.Write(),
		IdleTimeout:  cfg.Server.Idle(),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Shutdown())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// healthHandler GET /health
func healthHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := a.exec.PingContext(ctx); err != nil {
			a.log.Warn("GET /health - Database ping failed: %v", err)
			handlers.RespondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: "down"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "up"})
	}
}
