package router

import (
	"github.com/craftfolio/craftfolio-api/internal/application"
	"github.com/craftfolio/craftfolio-api/internal/container"
	"github.com/craftfolio/craftfolio-api/internal/domain/repository"
	esinfra "github.com/craftfolio/craftfolio-api/internal/infrastructure/elasticsearch"
	"github.com/craftfolio/craftfolio-api/internal/infrastructure/mongodb"
	pginfra "github.com/craftfolio/craftfolio-api/internal/infrastructure/postgres"
	handlers "github.com/craftfolio/craftfolio-api/internal/interface/http"
	"github.com/craftfolio/craftfolio-api/internal/interface/middleware"
	"github.com/craftfolio/craftfolio-api/internal/router/modules"
	"github.com/craftfolio/craftfolio-api/pkg/uploader"
)

// InitModules builds every feature module from the container singletons and
// registers it. Called once at startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	cookies := container.GetCookies()

	identities := pginfra.NewIdentityRepository(container.GetPGPool())
	profiles := mongodb.NewProfileRepository(container.GetMongo())
	posts := mongodb.NewPostRepository(container.GetMongo())
	projects := mongodb.NewProjectRepository(container.GetMongo())

	// Optional components; nil disables the feature, it never blocks boot.
	var index repository.ProfileIndex
	if es := container.GetES(); es != nil {
		index = esinfra.NewProfileIndex(es, cfg.ESProfilesIndex)
	}
	var up uploader.Uploader
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		up = uploader.NewGCSUploader(gcs, cfg.GCSBucket, 0)
	}

	authSvc := application.NewAuthService(identities, profiles, index, container.GetJWT(), container.GetRabbitPub(), logger)
	userSvc := application.NewUserService(identities, profiles, index, up, logger)
	postSvc := application.NewPostService(posts, profiles, up, logger)
	projectSvc := application.NewProjectService(projects, profiles, up, container.GetAssist(), logger)
	adminSvc := application.NewAdminService(identities, profiles, posts, projects, index, logger)

	session := middleware.NewSessionGuard(container.GetJWT(), cookies, profiles, logger)
	adminSession := middleware.NewSessionGuard(container.GetJWT(), cookies.Admin(), profiles, logger)
	gate := middleware.NewRoleGate(identities, logger)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, cookies, logger), session))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, cookies, logger), session))
	r.Add(modules.NewPostModule(handlers.NewPostHandler(postSvc, logger), session))
	r.Add(modules.NewProjectModule(handlers.NewProjectHandler(projectSvc, logger), session))
	r.Add(modules.NewAdminModule(handlers.NewAdminHandler(adminSvc, postSvc, logger), adminSession, gate))
}
