package main

import (
	"fmt"
	"log"
	"os"

	_ "medqueue/docs"
	"medqueue/internal/auth"
	"medqueue/internal/handlers"
	"medqueue/internal/models"
	"medqueue/internal/storage"
	"medqueue/internal/tasks"
	"medqueue/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						Электронная очередь клиники
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectDatabase()

	if err := storage.DB.AutoMigrate(
		&models.User{},
		&models.Department{},
		&models.Specialist{},
		&models.DailyQueue{},
		&models.QueueEntry{},
		&models.JoinToken{},
	); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	// Частичный уникальный индекс: позиция уникальна только среди активных
	// записей, терминальные сохраняют position = 0.
	if err := storage.DB.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_entry_position_active ON queue_entries (queue_id, position) WHERE status IN ('waiting', 'serving')",
	).Error; err != nil {
		log.Fatal("Ошибка при создании индекса... ", err.Error())
	}

	storage.InitRedis()

	tasks.InitScheduler()

	go ws.HubInstance.Run()
	ws.InitBridge(ws.HubInstance)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/refresh", handlers.RefreshToken)
	}

	// Публичные эндпоинты: справочник, самозапись по QR, табло и WebSocket.
	public := r.Group("/api")
	{
		public.GET("/departments", handlers.GetDepartmentsHandler)
		public.GET("/join/:token", handlers.JoinTokenInfoHandler)
		public.POST("/join/start", handlers.StartJoinHandler)
		public.POST("/join/complete", handlers.CompleteJoinHandler)
		public.GET("/queues/:id/entries", handlers.BoardEntriesHandler)
		public.GET("/queues/:id/tickets/:number", handlers.TicketStatusHandler)
		public.GET("/queues/:id/ws", ws.QueueWebSocketHandler)
	}

	// Действия персонала: выдача талонов, вызов, перестановки, токены записи.
	staff := r.Group("/api", auth.AuthMiddleware(),
		auth.RequireRole(models.RoleAdmin, models.RoleRegistrar, models.RoleSpecialist))
	{
		staff.GET("/queues", handlers.ListQueuesHandler)
		staff.POST("/queues/tickets", handlers.IssueTicketHandler)
		staff.POST("/queues/:id/open", handlers.OpenDayHandler)
		staff.POST("/queues/:id/reorder", handlers.BulkReorderHandler)
		staff.POST("/entries/:id/status", handlers.TransitionEntryHandler)
		staff.POST("/entries/:id/move", handlers.MoveEntryHandler)
		staff.POST("/join-tokens", handlers.IssueJoinTokenHandler)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
