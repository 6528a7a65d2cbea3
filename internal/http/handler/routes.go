package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/bugrarslan/mirza-admin/internal/model"
	"github.com/bugrarslan/mirza-admin/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.AssetService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Put("/vehicles/:id/image", AttachAsset(svc, model.KindVehicle))
	app.Delete("/vehicles/:id/image", DetachAsset(svc, model.KindVehicle))
	app.Delete("/vehicles/:id", DeleteRecord(svc, model.KindVehicle))

	app.Put("/campaigns/:id/image", AttachAsset(svc, model.KindCampaign))
	app.Delete("/campaigns/:id/image", DetachAsset(svc, model.KindCampaign))
	app.Delete("/campaigns/:id", DeleteRecord(svc, model.KindCampaign))

	app.Post("/customers/:customerID/documents", CreateDocument(svc))
	app.Put("/documents/:id/file", AttachAsset(svc, model.KindDocument))
	app.Delete("/documents/:id", DeleteRecord(svc, model.KindDocument))
}
