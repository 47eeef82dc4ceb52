package router

import (
	"CommentWall/internal/router/handlers"
	"CommentWall/internal/router/middleware"
	"github.com/wb-go/wbf/ginext"
	"go.uber.org/zap"
	"net/http"
)

type Router struct {
	rout     *ginext.Engine
	handler  *handlers.CommentHandler
	realtime http.HandlerFunc
	log      *zap.Logger
}

// NewRouter wires the comment endpoints; realtime serves the WebSocket subscription.
func NewRouter(mode string, handler *handlers.CommentHandler, realtime http.HandlerFunc, log *zap.Logger) *Router {
	router := Router{
		rout:     ginext.New(mode),
		handler:  handler,
		realtime: realtime,
		log:      log.Named("router"),
	}
	router.setupRouter()
	return &router
}

func (r *Router) setupRouter() {
	r.rout.Use(middleware.LoggingMiddleware(r.log))
	r.rout.GET("/comments", r.handler.ListComments)
	r.rout.POST("/comments", r.handler.CreateComment)
	r.rout.POST("/images", r.handler.UploadImage)
	r.rout.GET("/images/:name", r.handler.GetImage)
	r.rout.GET("/healthz", r.handler.Health)

	r.rout.GET("/ws", func(c *ginext.Context) {
		r.realtime(c.Writer, c.Request)
	})
}

func (r *Router) GetEngine() *ginext.Engine {
	return r.rout
}
