package http_pack

import (
	"fmt"
	"strconv"

	"github.com/modulrcloud/modulr-api/dashboard"
	"github.com/modulrcloud/modulr-api/globals"
	"github.com/modulrcloud/modulr-api/http_pack/routes"
	"github.com/modulrcloud/modulr-api/utils"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

func CreateRouter(gatherer prometheus.Gatherer) fasthttp.RequestHandler {

	r := router.New()

	r.POST("/faucet", routes.Dispense)

	r.GET("/tps/latest", routes.GetTpsLatest)
	r.GET("/tps/max", routes.GetTpsMax)
	r.GET("/tps/max/{interval}", routes.GetTpsMaxByInterval)
	r.GET("/tps/current/{frequency}", routes.GetTpsCurrent)
	r.GET("/tps/history", routes.GetTpsHistoryRaw)
	r.GET("/tps/history/{interval}", routes.GetTpsHistoryByInterval)

	r.GET("/transactions/count", routes.GetTransactionCount)
	r.GET("/transactions/count/raw", routes.GetTransactionCountFromSource)

	if gatherer != nil {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Dashboard
	r.GET("/dashboard", dashboard.ServeDashboard)
	r.GET("/dashboard/api/overview", dashboard.ServeOverview)
	r.GET("/dashboard/api/indexer", dashboard.ServeIndexer)
	r.GET("/dashboard/api/tps", dashboard.ServeTpsSummary)

	return r.Handler
}

func CreateHTTPServer(gatherer prometheus.Gatherer) {

	serverAddr := globals.CONFIGURATION.Interface + ":" + strconv.Itoa(globals.CONFIGURATION.Port)

	server := &fasthttp.Server{
		Name:    "modulr-api",
		Handler: CreateRouter(gatherer),
	}

	utils.OnShutdown(server.Shutdown)

	utils.LogWithTime(fmt.Sprintf("Server is starting at http://%s ...✅", serverAddr), utils.CYAN_COLOR)

	if err := server.ListenAndServe(serverAddr); err != nil {
		utils.LogWithTime(fmt.Sprintf("Error in server: %s", err), utils.RED_COLOR)
	}
}
