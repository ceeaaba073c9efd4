package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/VladFokin1/Bank-REST/config"
	"github.com/VladFokin1/Bank-REST/controllers"
	"github.com/VladFokin1/Bank-REST/database"
	"github.com/VladFokin1/Bank-REST/middleware"
	"github.com/VladFokin1/Bank-REST/services"
	"github.com/VladFokin1/Bank-REST/utils"
	"github.com/gorilla/mux"
)

// healthHandler отвечает на проверку работоспособности сервиса
func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		panic(fmt.Sprintf("Ошибка загрузки конфигурации: %v", err))
	}

	// Инициализируем логгер
	log := utils.NewLogger(cfg.LogLevel)

	// Инициализируем подключение к базе данных
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}

	// Инициализируем сервис шифрования номеров карт.
	// Ключ загружается один раз и не меняется до перезапуска.
	crypto, err := services.NewEncryptionService(cfg.Encryption.SecretKey)
	if err != nil {
		log.Fatalf("Ошибка инициализации шифрования: %v", err)
	}

	// Инициализируем сервисы
	emailService := services.NewEmailService(cfg)
	cardService := services.NewCardService(db, crypto, log)
	transferService := services.NewTransferService(db, log, emailService)

	// Запускаем планировщик обслуживания карт
	scheduler := services.NewSchedulerService(cardService, log)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Ошибка запуска планировщика: %v", err)
	}
	defer scheduler.Stop()

	// Инициализируем контроллеры
	authController := controllers.NewAuthController(db, cfg)
	cardController := controllers.NewCardController(cardService)
	transferController := controllers.NewTransferController(transferService, cardService)
	userController := controllers.NewUserController(services.NewUserService(db))

	// Создаем роутер
	router := mux.NewRouter()
	router.Use(middleware.RecoveryMiddleware(log))

	router.HandleFunc("/health", healthHandler).Methods("GET")

	// Публичные маршруты для аутентификации
	router.HandleFunc("/api/auth/signUp", authController.SignUp).Methods("POST")
	router.HandleFunc("/api/auth/signIn", authController.SignIn).Methods("POST")

	// Защищенные маршруты
	limiter := utils.NewRateLimiter(cfg.RateLimit.Limit, time.Duration(cfg.RateLimit.Window)*time.Second)
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	protected.Use(middleware.LoggingMiddleware(log))
	protected.Use(middleware.RateLimitMiddleware(limiter))

	// Маршруты для работы с картами
	protected.Handle("/cards", middleware.RequireAdmin(http.HandlerFunc(cardController.CreateCard))).Methods("POST")
	protected.HandleFunc("/cards", cardController.GetCards).Methods("GET")
	protected.HandleFunc("/cards/{id:[0-9]+}", cardController.GetCard).Methods("GET")
	protected.Handle("/cards/{id:[0-9]+}/block", middleware.RequireAdmin(http.HandlerFunc(cardController.BlockCard))).Methods("POST")
	protected.HandleFunc("/cards/{id:[0-9]+}/request-block", cardController.RequestBlockCard).Methods("POST")
	protected.Handle("/cards/{id:[0-9]+}/activate", middleware.RequireAdmin(http.HandlerFunc(cardController.ActivateCard))).Methods("POST")
	protected.Handle("/cards/{id:[0-9]+}", middleware.RequireAdmin(http.HandlerFunc(cardController.DeleteCard))).Methods("DELETE")

	// Административные маршруты для пользователей
	protected.Handle("/users", middleware.RequireAdmin(http.HandlerFunc(userController.GetUsers))).Methods("GET")
	protected.Handle("/users/{id:[0-9]+}", middleware.RequireAdmin(http.HandlerFunc(userController.GetUser))).Methods("GET")
	protected.Handle("/users/{id:[0-9]+}", middleware.RequireAdmin(http.HandlerFunc(userController.DeleteUser))).Methods("DELETE")

	// Маршруты для переводов
	protected.HandleFunc("/transfers", transferController.Transfer).Methods("POST")
	protected.HandleFunc("/transfers", transferController.GetTransactions).Methods("GET")

	// Метрики
	protected.Handle("/metrics", middleware.RequireAdmin(http.HandlerFunc(cardController.GetMetrics))).Methods("GET")

	// Запускаем сервер
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Infof("Сервер запущен на порту %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
