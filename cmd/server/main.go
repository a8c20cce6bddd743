package main

import (
	"flag"

	"github.com/Mankeylol/lolly-leaderboard-backend/server"
	"github.com/Mankeylol/lolly-leaderboard-backend/store"
	"github.com/Mankeylol/lolly-leaderboard-backend/utils"
	"github.com/Mankeylol/lolly-leaderboard-backend/utils/dotenv"
	. "github.com/Mankeylol/lolly-leaderboard-backend/utils/flag"
	Logger "github.com/Mankeylol/lolly-leaderboard-backend/utils/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

func init() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
}

func cleanup() {
	utils.CloseProfiler()
	utils.CloseTracer()
	Logger.Log.Info("api server shutdown")
}

func main() {
	flag.Parse()
	Logger.InitLogger()
	utils.InitTracer()
	utils.InitProfiler()
	defer cleanup()

	db, err := utils.GetDBConnection()
	if err != nil {
		panic(err)
	}
	utils.DatabaseSetupAndMigration(db)
	userStore := store.NewPgUserStore(db)
	cache := utils.GetLeaderboardCache()

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()

	router.Use(cors.Default())
	router.Use(gintrace.Middleware(ServiceName))

	router.GET("/leaderboard", server.LeaderboardHandler(userStore, cache))
	router.POST("/getUserDetails", server.UserDetailsHandler(userStore))
	router.GET("/healthz", server.HealthzHandler())

	Logger.Log.Info("api server starts up")
	router.Run(":" + utils.GetEnvOrDefault("PORT", "8080"))
}
