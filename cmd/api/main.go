package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"gringochat/internal/adapter/api"
	"gringochat/internal/adapter/api/handler"
	apimiddleware "gringochat/internal/adapter/api/middleware"
	"gringochat/internal/adapter/api/router"
	"gringochat/internal/adapter/repository"
	"gringochat/internal/infrastructure/cache"
	"gringochat/internal/infrastructure/fcm"
	"gringochat/internal/infrastructure/firebase"
	"gringochat/internal/infrastructure/ratelimit"
	"gringochat/internal/usecase"
	"gringochat/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	// Service account JSON from the environment (production) or a file path
	// (local development).
	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	messagingClient, err := firebaseApp.Messaging(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Messaging: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	conversationRepo := repository.NewFirestoreConversationRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)
	identityResolver := repository.NewFirestoreIdentityResolver(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)
	handler.SetupHealthHandler(firebaseAuthClient)

	unreadCache := cache.New(cfg.UnreadCacheSweep)
	defer unreadCache.Stop()

	rateLimiter := ratelimit.NewFixedWindowLimiter(cfg.RateLimitMaxRequest, cfg.RateLimitWindow, cfg.RateLimitSweep)
	defer rateLimiter.Stop()

	notifier := fcm.NewClient(messagingClient, firestoreClient)

	unreadUseCase := usecase.NewUnreadUseCase(conversationRepo, unreadCache, cfg.UnreadCacheTTL)
	notificationBridge := usecase.NewNotificationBridge(notifier)
	conversationUseCase := usecase.NewConversationUseCase(conversationRepo, messageRepo, identityResolver)
	messageUseCase := usecase.NewMessageUseCase(conversationRepo, messageRepo, unreadUseCase, notificationBridge)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	rateLimitMiddleware := apimiddleware.NewRateLimitMiddleware(rateLimiter)

	chatHandler := handler.NewChatHandler(conversationUseCase, messageUseCase)
	unreadHandler := handler.NewUnreadHandler(unreadUseCase)

	router.Setup(e, chatHandler, unreadHandler, authMiddleware, rateLimitMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
