package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gtfsreview/backend/internal/interfaces/http/handler"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers are the HTTP handlers served by the review API
type Handlers struct {
	Feed       *handler.FeedHandler
	Category   *handler.CategoryHandler
	Widget     *handler.WidgetHandler
	Evaluation *handler.EvaluationHandler
	Review     *handler.ReviewHandler
	Auth       *handler.AuthHandler
	System     *handler.SystemHandler
}

// Guards are the per-group middleware of the API. Admin protects the
// category and widget configuration pages, Login throttles credential
// attempts. Either may be nil.
type Guards struct {
	Admin gin.HandlerFunc
	Login gin.HandlerFunc
}

func chain(guard gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if guard == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{guard, h}
}

// FeedRoutes serves the upload form target and the session-derived pages
func FeedRoutes(h *handler.FeedHandler) *DomainGroup {
	return NewDomainGroup("feed", "").
		GET("/home", h.Home).
		GET("/about", h.About).
		GET("/messages", h.Messages).
		POST("/feed", h.Upload)
}

// AdminRoutes serves category, data selector and widget configuration
func AdminRoutes(categories *handler.CategoryHandler, widgets *handler.WidgetHandler, admin gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("admin", "/admin")
	if admin != nil {
		g.Use(admin)
	}

	g.Group("categories", "/categories").
		GET("", categories.ListCategories).
		POST("", categories.CreateCategory).
		GET("/:id", categories.GetCategory).
		DELETE("/:id", categories.DeleteCategory).
		PUT("/:id/data-selector", categories.ChooseDataSelector)
	g.GET("/data-selectors", categories.DataSelectorChoices)

	g.Group("gtfs", "/gtfs").
		GET("/tables", categories.Tables).
		GET("/tables/:table/fields", categories.FieldChoices).
		GET("/dropdown", categories.CascadingDropDown)

	g.GET("/review-widgets/:id", widgets.ViewReviewWidget)
	w := g.Group("widgets", "/widgets")
	w.GET("/:type/:id", widgets.GetWidget).
		PUT("/:type/:id", widgets.ConfigureWidget)
	w.Group("review", "/review/:id").
		POST("/related-fields", widgets.AddRelatedField).
		DELETE("/related-fields/:field_id", widgets.DeleteRelatedField).
		PUT("/other-table", widgets.SetRelatedFieldOtherTable)
	w.Group("consistency", "/consistency/:id").
		POST("/visual-examples", widgets.AddVisualExample).
		DELETE("/visual-examples/:example_id", widgets.DeleteVisualExample).
		POST("/links", widgets.AddLink).
		DELETE("/links/:link_id", widgets.DeleteLink).
		PUT("/other-text", widgets.SetOtherText)
	w.Group("results_capture", "/results_capture/:id").
		POST("/scores", widgets.AddScore).
		DELETE("/scores/:score_id", widgets.DeleteScore)

	return g
}

// EvaluationRoutes serves the review workflow over the session's feed
func EvaluationRoutes(h *handler.EvaluationHandler) *DomainGroup {
	return NewDomainGroup("evaluations", "/evaluations").
		GET("/new", h.NewReviewOptions).
		POST("", h.StartReview).
		GET("/:review_id", h.Progress).
		GET("/:review_id/categories/:category_id/items/:number", h.EvaluateItem).
		POST("/:review_id/results/:result_id", h.RecordResult)
}

// ReviewRoutes serves review results and completed review search
func ReviewRoutes(h *handler.ReviewHandler) *DomainGroup {
	return NewDomainGroup("reviews", "/reviews").
		GET("/completed", h.SearchCompleted).
		GET("/completed/:review_id", h.ViewCompleted).
		GET("/completed/:review_id/results/:result_id", h.ViewCompletedResult).
		GET("/:review_id/results", h.ReviewResults).
		GET("/:review_id/results/:result_id", h.GetResult).
		POST("/:review_id/complete", h.MarkComplete)
}

// AuthRoutes serves admin login and logout
func AuthRoutes(h *handler.AuthHandler, guards Guards) *DomainGroup {
	g := NewDomainGroup("auth", "")
	g.Group("login", "/auth").POST("/login", chain(guards.Login, h.Login)...)
	g.Group("logout", "/admin").POST("/logout", chain(guards.Admin, h.Logout)...)
	return g
}

// SystemRoutes serves service information
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.GetSystemInfo).
		GET("/ping", h.Ping)
}

// RegisterAPI mounts the whole review API on r and the health check on the
// engine root
func RegisterAPI(r *Router, h Handlers, guards Guards) {
	r.Register(FeedRoutes(h.Feed)).
		Register(AdminRoutes(h.Category, h.Widget, guards.Admin)).
		Register(EvaluationRoutes(h.Evaluation)).
		Register(ReviewRoutes(h.Review)).
		Register(AuthRoutes(h.Auth, guards)).
		Register(SystemRoutes(h.System))
	r.engine.GET("/health", h.System.Health)
}

// RegisterDocs serves the Swagger UI and doc.json on the engine root under
// /swagger. The generated docs package must be linked into the binary.
func RegisterDocs(r *Router, guard gin.HandlerFunc) {
	r.engine.GET("/swagger/*any", chain(guard, ginSwagger.WrapHandler(swaggerFiles.Handler))...)
}
