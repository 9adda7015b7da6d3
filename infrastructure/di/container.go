package di

import (
	"campusqa/application/services"
	"campusqa/infrastructure/config"
	"campusqa/infrastructure/persistence/abstractions"
	"campusqa/interfaces/http/rest"
	"campusqa/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Collector
	Store   abstractions.BlobStore
	Service *services.ForumService
	Router  *rest.Router
}
