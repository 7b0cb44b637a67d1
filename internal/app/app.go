package app

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"govready/internal/cache"
	"govready/internal/config"
	"govready/internal/logger"
	"govready/internal/model"
	"govready/internal/repository"
	"govready/internal/service"
	"govready/internal/transport/rest"
	"govready/internal/transport/ws"
)

// Stores are the persistence collaborators of the services
type Stores struct {
	Catalog       repository.CatalogRepo
	Assessments   repository.AssessmentRepo
	Responses     repository.ResponseRepo
	Collaboration repository.CollaborationRepo
}

// MongoStores backs every store with a mongo collection
func MongoStores(db *mongo.Database) Stores {
	return Stores{
		Catalog:       repository.NewCatalogRepo(db),
		Assessments:   repository.NewAssessmentRepo(db),
		Responses:     repository.NewResponseRepo(db),
		Collaboration: repository.NewCollaborationRepo(db),
	}
}

// MemoryStores keeps everything in process, serving a fixed catalog
func MemoryStores(c *model.Catalog) Stores {
	return Stores{
		Catalog:       repository.NewMemoryCatalogRepo(c),
		Assessments:   repository.NewMemoryAssessmentRepo(),
		Responses:     repository.NewMemoryResponseRepo(),
		Collaboration: repository.NewMemoryCollaborationRepo(),
	}
}

// Caches are optional; a nil member disables that cache
type Caches struct {
	Catalog cache.CatalogCache
	Scores  cache.ScoreCache
	Board   cache.ReadinessBoard
}

// RedisCaches builds every cache on one redis client
func RedisCaches(rdb *redis.Client, cfg config.CacheConfig) Caches {
	return Caches{
		Catalog: cache.NewCatalogCache(rdb, cfg.CatalogTTL),
		Scores:  cache.NewScoreCache(rdb, cfg.ScoreTTL),
		Board:   cache.NewReadinessBoard(rdb),
	}
}

// App is the wired service graph
type App struct {
	Auth          *service.AuthService
	Catalog       *service.CatalogService
	Assessments   *service.AssessmentService
	Responses     *service.ResponseService
	Collaboration *service.CollaborationService
	Hub           *ws.Hub
	Log           *logger.Logger
}

// New wires services over the given stores and caches
func New(cfg *config.Config, log *logger.Logger, stores Stores, caches Caches) *App {
	hub := ws.NewHub(log)

	catalogSvc := service.NewCatalogService(stores.Catalog, caches.Catalog, log)
	assessmentSvc := service.NewAssessmentService(
		stores.Assessments,
		stores.Responses,
		stores.Collaboration,
		catalogSvc,
		cfg.Scoring,
		log,
	)
	assessmentSvc.SetCaches(caches.Scores, caches.Board)
	responseSvc := service.NewResponseService(stores.Responses, assessmentSvc, log)
	collabSvc := service.NewCollaborationService(stores.Collaboration, assessmentSvc, log)

	// Inject broadcaster (hub implements service.Broadcaster)
	assessmentSvc.SetBroadcaster(hub)
	collabSvc.SetBroadcaster(hub)

	authSvc := service.NewAuthService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret)
	authSvc.SetCatalog(catalogSvc)

	return &App{
		Auth:          authSvc,
		Catalog:       catalogSvc,
		Assessments:   assessmentSvc,
		Responses:     responseSvc,
		Collaboration: collabSvc,
		Hub:           hub,
		Log:           log,
	}
}

// Handler returns the HTTP API
func (a *App) Handler() http.Handler {
	return rest.NewRouter(&rest.Container{
		AuthService:          a.Auth,
		CatalogService:       a.Catalog,
		AssessmentService:    a.Assessments,
		ResponseService:      a.Responses,
		CollaborationService: a.Collaboration,
		WSHub:                a.Hub,
		Log:                  a.Log,
	})
}
