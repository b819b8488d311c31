package router

import (
	"github.com/oksasatya/go-login-portal/internal/application"
	"github.com/oksasatya/go-login-portal/internal/container"
	repouser "github.com/oksasatya/go-login-portal/internal/domain/repository"
	pginfra "github.com/oksasatya/go-login-portal/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-login-portal/internal/interface/http"
	"github.com/oksasatya/go-login-portal/internal/router/modules"
)

type AuthModuleDeps struct {
	Repo    repouser.UserRepository
	Service *application.Service
	Handler *handlers.AuthHandler
}

func buildAuthDeps() AuthModuleDeps {
	repo := pginfra.NewUserRepository(container.GetPGPool())

	service := application.NewService(repo, container.GetLogger())

	handler := handlers.NewAuthHandler(
		service,
		container.GetSessions(),
		container.GetLogger(),
	)

	return AuthModuleDeps{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	authDeps := buildAuthDeps()
	r.Add(modules.NewAuthModule(authDeps.Handler, container.GetSessions()))
}
