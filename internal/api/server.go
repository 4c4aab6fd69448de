package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/collabspace/pulse/internal/service"
)

type Server struct {
	mx            *chi.Mux
	userService   service.UserServiceI
	streakService service.StreakServiceI
	jwtService    JWTServiceI
}

type ServicesList struct {
	UserService   service.UserServiceI
	StreakService service.StreakServiceI
	JwtService    JWTServiceI
}

func New(servicesOptions *ServicesList) *Server {
	return &Server{
		mx:            chi.NewMux(),
		userService:   servicesOptions.UserService,
		streakService: servicesOptions.StreakService,
		jwtService:    servicesOptions.JwtService,
	}
}

func (s *Server) Run(address string) error {
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware)

	s.mx.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.Register)
		r.Post("/login", s.Login)
	})

	s.mx.Route("/api/streak", func(r chi.Router) {
		// Liveness probe stays outside auth
		r.Get("/debug", s.Debug)
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware, s.LoggerExtensionMiddleware)
			r.Get("/data", s.GetStreakData)
			r.Post("/activity", s.RecordActivity)
			r.Post("/test", s.TestActivity)
			r.Post("/force-update", s.ForceUpdate)
		})
	})

	return http.ListenAndServe(address, s.mx)
}
