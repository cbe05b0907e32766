package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/onflow/icq-watcher/engine/watcher"
	"github.com/onflow/icq-watcher/engine/watcher/rest/common"
	"github.com/onflow/icq-watcher/engine/watcher/rest/middleware"
	"github.com/onflow/icq-watcher/module"
)

type route struct {
	Name    string
	Method  string
	Pattern string
	Handler common.ApiHandlerFunc
}

var Routes = []route{{
	Method:  http.MethodGet,
	Pattern: "/config",
	Name:    "getConfig",
	Handler: GetConfig,
}, {
	Method:  http.MethodGet,
	Pattern: "/count",
	Name:    "getCount",
	Handler: GetCount,
}, {
	Method:  http.MethodGet,
	Pattern: "/queries",
	Name:    "getQueries",
	Handler: GetQueries,
}, {
	Method:  http.MethodGet,
	Pattern: "/objects/{query_id}",
	Name:    "getObject",
	Handler: GetObject,
}, {
	Method:  http.MethodGet,
	Pattern: "/balances/{query_id}",
	Name:    "getBalance",
	Handler: GetBalance,
}, {
	Method:  http.MethodPost,
	Pattern: "/query",
	Name:    "query",
	Handler: Query,
}, {
	Method:  http.MethodPost,
	Pattern: "/instantiate",
	Name:    "instantiate",
	Handler: Instantiate,
}, {
	Method:  http.MethodPost,
	Pattern: "/execute",
	Name:    "execute",
	Handler: Execute,
}, {
	Method:  http.MethodPost,
	Pattern: "/callbacks/reply",
	Name:    "replyCallback",
	Handler: ReplyCallback,
}, {
	Method:  http.MethodPost,
	Pattern: "/callbacks/sudo",
	Name:    "sudoCallback",
	Handler: SudoCallback,
}}

// NewRouter builds the versioned API router.
func NewRouter(api watcher.API, logger zerolog.Logger, restCollector module.RestMetrics) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	v1SubRouter := router.PathPrefix("/v1").Subrouter()

	// common middleware for all request
	v1SubRouter.Use(middleware.RequestIDMiddleware())
	v1SubRouter.Use(middleware.LoggingMiddleware(logger))
	v1SubRouter.Use(middleware.MetricsMiddleware(restCollector))

	for _, r := range Routes {
		h := common.NewHandler(logger, api, r.Handler)
		v1SubRouter.
			Methods(r.Method).
			Path(r.Pattern).
			Name(r.Name).
			Handler(h)
	}

	return router
}
