// Package app wires stores and services into one composition root.
package app

import (
	"database/sql"

	"github.com/commercegrid/backoffice/internal/app/services/catalogsvc"
	"github.com/commercegrid/backoffice/internal/app/services/groups"
	"github.com/commercegrid/backoffice/internal/app/services/health"
	pricingsvc "github.com/commercegrid/backoffice/internal/app/services/pricing"
	"github.com/commercegrid/backoffice/internal/app/services/publication"
	"github.com/commercegrid/backoffice/internal/app/services/regions"
	"github.com/commercegrid/backoffice/internal/app/services/users"
	"github.com/commercegrid/backoffice/internal/app/storage"
	"github.com/commercegrid/backoffice/internal/app/storage/memory"
	"github.com/commercegrid/backoffice/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users       storage.UserStore
	Groups      storage.GroupStore
	Regions     storage.RegionStore
	Pricing     storage.PricingStore
	Catalog     storage.CatalogStore
	Publication storage.PublicationStore
}

// Application ties the domain services together.
type Application struct {
	log *logger.Logger

	Users       *users.Service
	Groups      *groups.Service
	Regions     *regions.Service
	Pricing     *pricingsvc.Service
	Catalog     *catalogsvc.Service
	Publication *publication.Service
	Health      *health.Service
}

// New builds a fully initialised application with the provided stores. db
// may be nil when every store runs in memory; the health check then reports
// the memory backend instead of pinging.
func New(stores Stores, db *sql.DB, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Groups == nil {
		stores.Groups = mem
	}
	if stores.Regions == nil {
		stores.Regions = mem
	}
	if stores.Pricing == nil {
		stores.Pricing = mem
	}
	if stores.Catalog == nil {
		stores.Catalog = mem
	}
	if stores.Publication == nil {
		stores.Publication = mem
	}

	return &Application{
		log:         log,
		Users:       users.New(stores.Users, log),
		Groups:      groups.New(stores.Users, stores.Groups, log),
		Regions:     regions.New(stores.Regions, log),
		Pricing:     pricingsvc.New(stores.Catalog, stores.Regions, stores.Pricing, log),
		Catalog:     catalogsvc.New(stores.Catalog, log),
		Publication: publication.New(stores.Publication, log),
		Health:      health.New(db, log),
	}, nil
}
