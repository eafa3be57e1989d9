package app

import (
	"database/sql"
	"time"

	"github.com/go-chi/oauth"
	"github.com/mbolis/assistance-intake/catalog"
	"github.com/mbolis/assistance-intake/config"
	"github.com/mbolis/assistance-intake/requests"
	"github.com/mbolis/assistance-intake/wizard"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Catalog  *catalog.Catalog
	Steps    wizard.Steps
	Drafts   *wizard.Registry
	Requests *requests.Store
	Now      func() time.Time
}

// New assembles the application around an open database.
func New(db *sql.DB, bearerServer *oauth.BearerServer, cfg config.Config, cat *catalog.Catalog) App {
	steps := wizard.DefaultSteps
	return App{
		DB:           db,
		BearerServer: bearerServer,
		Config:       cfg,
		Catalog:      cat,
		Steps:        steps,
		Drafts:       wizard.NewRegistry(func() *wizard.Form { return wizard.NewForm(steps, cat) }),
		Requests:     requests.NewStore(db),
		Now:          time.Now,
	}
}
