package routes

import (
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/j-planelles/projecte-dam/internal/config"
	"github.com/j-planelles/projecte-dam/internal/handlers"
	"github.com/j-planelles/projecte-dam/internal/keys"
	"github.com/j-planelles/projecte-dam/internal/middleware"
	"github.com/j-planelles/projecte-dam/internal/repository"
	"github.com/j-planelles/projecte-dam/internal/services"
	chatws "github.com/j-planelles/projecte-dam/internal/websocket"
)

const serverVersion = "1.0.0"

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, keyService *keys.KeyService) {
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	interestRepo := repository.NewInterestRepository(db)
	recommendationRepo := repository.NewRecommendationRepository(db)
	workoutRepo := repository.NewWorkoutRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	pairingService := services.NewPairingService(db, userRepo, userRepo, roleRepo, requestRepo)
	matchmakingService := services.NewMatchmakingService(interestRepo, userRepo)
	profileService := services.NewProfileService(db, userRepo, interestRepo)
	accountService := services.NewAccountService(db, roleRepo)
	chatService := services.NewChatService(messageRepo, userRepo)

	tokenValidity := time.Duration(cfg.TokenTTLMinutes) * time.Minute

	authHandler := handlers.NewAuthHandler(db, userRepo, profileService, keyService, cfg.JWTSecret, tokenValidity)
	accountHandler := handlers.NewAccountHandler(accountService)
	userTrainerHandler := handlers.NewUserTrainerHandler(pairingService, matchmakingService, profileService, recommendationRepo)
	trainerHandler := handlers.NewTrainerHandler(pairingService, workoutRepo, recommendationRepo)

	chatHub := chatws.NewHub()
	go chatHub.Run()
	chatHandler := handlers.NewChatHandler(chatService, roleRepo, chatHub, cfg.JWTSecret)

	authRequired := middleware.AuthRequired(cfg.JWTSecret)
	activeRequired := middleware.ActiveAccountRequired(userRepo)
	trainerRequired := middleware.TrainerRequired(roleRepo)

	// The client's server picker reads this to confirm it is talking to us.
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":    cfg.ServerName,
			"version": serverVersion,
		})
	})

	auth := app.Group("/auth")
	auth.Get("/publickey", authHandler.PublicKey)
	auth.Post("/register", authHandler.Register)
	auth.Post("/token", authHandler.Token)
	auth.Get("/me", authRequired, activeRequired, authHandler.Me)
	auth.Put("/profile", authRequired, activeRequired, authHandler.UpdateProfile)
	auth.Post("/change-password", authRequired, activeRequired, authHandler.ChangePassword)
	auth.Post("/disable", authRequired, activeRequired, accountHandler.Disable)
	auth.Delete("/account", authRequired, activeRequired, accountHandler.Delete)

	user := app.Group("/user", authRequired, activeRequired)
	user.Get("/interests", userTrainerHandler.ListInterests)
	user.Post("/interests", userTrainerHandler.SetInterests)
	user.Get("/trainer/search", userTrainerHandler.SearchTrainers)
	user.Post("/trainer/request", userTrainerHandler.CreateRequest)
	user.Get("/trainer/request", userTrainerHandler.RequestStatus)
	user.Delete("/trainer/request", userTrainerHandler.CancelRequest)
	user.Get("/trainer", userTrainerHandler.TrainerInfo)
	user.Delete("/trainer", userTrainerHandler.Unpair)
	user.Get("/trainer/recommendations", userTrainerHandler.Recommendations)
	user.Get("/messages", chatHandler.UserMessages)
	user.Post("/messages", chatHandler.UserSend)

	app.Post("/trainer/enroll", authRequired, activeRequired, accountHandler.EnrollTrainer)
	app.Delete("/trainer/enroll", authRequired, activeRequired, trainerRequired, accountHandler.ResignTrainer)

	trainer := app.Group("/trainer", authRequired, activeRequired, trainerRequired)
	trainer.Get("/requests", trainerHandler.ListRequests)
	trainer.Post("/requests/:userID", trainerHandler.AcceptRequest)
	trainer.Delete("/requests/:userID", trainerHandler.DenyRequest)
	trainer.Get("/users", trainerHandler.ListUsers)
	trainer.Get("/users/:userID", trainerHandler.GetUser)
	trainer.Delete("/users/:userID", trainerHandler.RemoveUser)
	trainer.Get("/users/:userID/recommendable", trainerHandler.RecommendableWorkouts)
	trainer.Get("/users/:userID/recommendations", trainerHandler.ListRecommendations)
	trainer.Post("/users/:userID/recommendations", trainerHandler.CreateRecommendation)
	trainer.Delete("/users/:userID/recommendations/:workoutID", trainerHandler.DeleteRecommendation)
	trainer.Get("/users/:userID/messages", chatHandler.TrainerMessages)
	trainer.Post("/users/:userID/messages", chatHandler.TrainerSend)

	app.Use("/ws", chatHandler.WebSocketAuth)
	app.Get("/ws", websocket.New(chatHandler.HandleWebSocket))
}
