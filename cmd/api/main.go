// @title CollabSpace Pulse API
// @description Activity and streak tracking service for CollabSpace
// @BasePath /api
// @schemes http
package main

import (
	"log"

	"github.com/collabspace/pulse/internal/api"
	"github.com/collabspace/pulse/internal/repository"
	"github.com/collabspace/pulse/internal/service"
	"github.com/collabspace/pulse/pkg/cleanup"
	"github.com/collabspace/pulse/pkg/config"
	jwtservice "github.com/collabspace/pulse/pkg/jwt_service"
)

func init() {
	service.InitValidator()
}

func main() {
	defer cleanup.CleanUp()
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	userService := service.NewUserService(repository.NewUsersRepo(&dbCfg))
	streakService := service.NewStreakService(
		repository.NewActivitiesRepo(&dbCfg),
		repository.NewStreaksRepo(&dbCfg),
	)
	serv := api.New(&api.ServicesList{
		UserService:   userService,
		StreakService: streakService,
		JwtService:    jwtservice.New(cfg.GetString("JWT_SECRET")),
	})
	err := serv.Run(cfg.GetStringOrDefault("API_ADDRESS", ":8080"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
}
