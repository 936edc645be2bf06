package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/Socialmailz/TNB-Text/internal/database"
	"github.com/Socialmailz/TNB-Text/internal/geo"
	"github.com/Socialmailz/TNB-Text/internal/handlers"
	"github.com/Socialmailz/TNB-Text/internal/store/redisstore"
	"github.com/Socialmailz/TNB-Text/pkg/auth"
)

type Server struct {
	Router  *gin.Engine
	DB      *database.Database
	Redis   *redis.Client
	Store   *redisstore.Redisstore
	Janitor *redisstore.Janitor
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	st := redisstore.New(rdb)

	// janitor применяет disconnect-намерения оборвавшихся сессий
	janitor, err := redisstore.NewJanitor(st)
	if err != nil {
		log.Fatalf("janitor start failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	geoClient := geo.NewClient()

	// TYPING_TTL позволяет переопределить окно набора, например "4s"
	var typingTTL time.Duration
	if raw := os.Getenv("TYPING_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("invalid TYPING_TTL: %v", err)
		}
		typingTTL = d
	}

	authH := handlers.NewAuthHandler(dbConn, jwtMgr, rdb, st, geoClient)
	userH := handlers.NewUserHandler(st)
	wsH := handlers.NewWebSocketHandler(st, typingTTL)

	router := gin.Default()
	APIEndpoints(router, authH, userH, wsH, jwtMgr, rdb)

	return &Server{
		Router:  router,
		DB:      dbConn,
		Redis:   rdb,
		Store:   st,
		Janitor: janitor,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
