package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"filevault/internal/http/middleware"
	"filevault/internal/service"
)

// Services groups the use cases the routes depend on.
type Services struct {
	Users   service.UserService
	Files   service.FileService
	Folders service.FolderService
	Streams StreamOpener
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Every route except health, register and login requires a bearer token.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, authn middleware.Authenticator) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", Liveness())

	app.Post("/register", Register(svc.Users))
	app.Post("/login", Login(svc.Users))

	requireAuth := middleware.Auth(authn)

	app.Post("/upload", requireAuth, UploadFile(svc.Files))
	app.Post("/createFolder", requireAuth, CreateFolder(svc.Folders))
	app.Get("/files", requireAuth, ListFiles(svc.Files))
	app.Post("/markUnsafe/:filekey", requireAuth, MarkUnsafe(svc.Files))

	app.Get("/download/:filekey", requireAuth, DownloadFile(svc.Streams, byKey))
	app.Get("/files/:id/download", requireAuth, DownloadFile(svc.Streams, byID))
	app.Get("/stream/:filekey", requireAuth, StreamFile(svc.Streams, byKey))
	app.Get("/files/:id/stream", requireAuth, StreamFile(svc.Streams, byID))
}
