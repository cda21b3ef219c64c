package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/karage/integrations/internal/pkg/tokencache"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter registers all route groups on the app. The token cache is
// handed down to the controllers that talk to token-login providers.
func InstallRouter(app *fiber.App, tokens tokencache.Cache) {
	setup(app, NewApiRouter(tokens))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
