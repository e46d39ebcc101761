package router

import (
	"net/http"

	"campusvoice/internal/handlers/api/v1/admin"
	"campusvoice/internal/handlers/api/v1/auth"
	"campusvoice/internal/handlers/api/v1/suggestions"
	"campusvoice/internal/handlers/web"
	"campusvoice/internal/middleware"
	"campusvoice/internal/monitoring"
	"campusvoice/internal/response"
	"campusvoice/internal/services"
	"campusvoice/internal/utils/appinfo"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// New configures all HTTP routes and returns the main handler wrapped
// in the standard middleware stack.
func New(collection *services.ServiceCollection, logger *zap.Logger) (http.Handler, error) {
	mux := http.NewServeMux()
	writer := response.NewWriter(logger)
	authn := middleware.NewAuthenticator(collection.AuthService, writer, logger)

	authController := auth.NewAuthController(collection.AuthService, writer, logger)
	suggestionController := suggestions.NewSuggestionController(
		collection.SuggestionService,
		collection.AttachmentService,
		writer,
		logger,
	)
	adminController := admin.NewAdminController(collection.ModerationService, writer, logger)

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", authController.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authController.Login)

	// Suggestions. Reads work anonymously, writes require a token.
	mux.Handle("GET /api/v1/suggestions", authn.Optional(http.HandlerFunc(suggestionController.List)))
	mux.Handle("GET /api/v1/suggestions/{id}", authn.Optional(http.HandlerFunc(suggestionController.Get)))
	mux.Handle("POST /api/v1/suggestions", authn.Require(http.HandlerFunc(suggestionController.Create)))
	mux.Handle("PATCH /api/v1/suggestions/{id}", authn.Require(http.HandlerFunc(suggestionController.Update)))
	mux.Handle("DELETE /api/v1/suggestions/{id}", authn.Require(http.HandlerFunc(suggestionController.Delete)))
	mux.Handle("POST /api/v1/suggestions/{id}/votes", authn.Require(http.HandlerFunc(suggestionController.Vote)))
	mux.Handle("POST /api/v1/suggestions/{id}/comments", authn.Require(http.HandlerFunc(suggestionController.AddComment)))
	mux.Handle("POST /api/v1/suggestions/{id}/attachments", authn.Require(http.HandlerFunc(suggestionController.UploadAttachment)))

	// Moderator surface
	mux.Handle("GET /api/v1/admin/suggestions", authn.RequireModerator(http.HandlerFunc(adminController.Grid)))
	mux.Handle("POST /api/v1/admin/suggestions/bulk", authn.RequireModerator(http.HandlerFunc(adminController.BulkSave)))
	mux.Handle("PUT /api/v1/admin/suggestions/{id}/status", authn.RequireModerator(http.HandlerFunc(adminController.SetStatus)))
	mux.Handle("DELETE /api/v1/admin/suggestions/{id}/comments", authn.RequireModerator(http.HandlerFunc(adminController.DeleteComment)))
	mux.Handle("GET /api/v1/admin/users", authn.RequireModerator(http.HandlerFunc(adminController.ListUsers)))
	mux.Handle("PUT /api/v1/admin/users/{publicId}/ban", authn.RequireModerator(http.HandlerFunc(adminController.SetBanned)))

	// Live listing stream
	stream, err := web.NewStreamHandler(collection.SuggestionService, collection.EventBus, logger)
	if err != nil {
		return nil, err
	}
	mux.Handle("GET /ws/suggestions", authn.Optional(stream))

	// Health and internal stats
	mux.Handle("GET /health", web.NewHealthHandler(collection, writer, logger))

	dashboard := monitoring.NewDashboard(
		collection.DBManager,
		collection.EventBus,
		logger,
		appinfo.GetVersion(),
		collection.Config.Server.Environment,
	)
	mux.Handle("GET /internal/stats", authn.RequireModerator(web.NewStatsHandler(dashboard, writer, logger)))

	// Swagger UI
	mux.HandleFunc("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/swagger" {
			http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
			return
		}
		httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		).ServeHTTP(w, r)
	})

	handler := middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogger(logger),
		middleware.Recovery(logger, writer),
	)

	logger.Info("Router setup completed",
		zap.String("swagger_ui", "/swagger/"),
		zap.String("stream", "/ws/suggestions"),
	)
	return handler, nil
}
