package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Mankeylol/lolly-leaderboard-backend/store"
	"github.com/Mankeylol/lolly-leaderboard-backend/utils"
	Logger "github.com/Mankeylol/lolly-leaderboard-backend/utils/log"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

const (
	DefaultLeaderboardLimit = 100
	MaxLeaderboardLimit     = 100
)

// LeaderboardEntry is the public shape of one ranked user.
type LeaderboardEntry struct {
	Fid      int64  `json:"fid"`
	Username string `json:"username"`
	Points   int64  `json:"points"`
}

type userDetailsRequest struct {
	Fid int64 `json:"fid" binding:"required"`
}

// LeaderboardHandler serves the top-N users by points descending. Responses
// are cached in Redis on a short TTL; any cache failure silently falls
// through to Postgres.
func LeaderboardHandler(userStore store.UserStore, cache *utils.LeaderboardCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := DefaultLeaderboardLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}
		if limit > MaxLeaderboardLimit {
			limit = MaxLeaderboardLimit
		}

		if payload, ok := cache.GetLeaderboard(limit); ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}

		users, err := userStore.TopUsers(c.Request.Context(), limit)
		if err != nil {
			Logger.Log.Errorf("fail to list leaderboard: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		entries := []LeaderboardEntry{}
		if err := copier.Copy(&entries, &users); err != nil {
			Logger.Log.Errorf("fail to copy leaderboard entries: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		payload, err := json.Marshal(entries)
		if err != nil {
			Logger.Log.Errorf("fail to render leaderboard: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		cache.SetLeaderboard(limit, payload)
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
	}
}

// UserDetailsHandler returns one user's username and points by fid.
func UserDetailsHandler(userStore store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req userDetailsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "fid is required"})
			return
		}

		user, err := userStore.FindByFid(c.Request.Context(), req.Fid)
		if err != nil {
			Logger.Log.Errorf("fail to fetch user %d: %v", req.Fid, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal Server Error"})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user": gin.H{
				"fid":      user.Fid,
				"username": user.Username,
				"points":   user.Points,
			},
		})
	}
}

// HealthzHandler is the liveness probe.
func HealthzHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	}
}
