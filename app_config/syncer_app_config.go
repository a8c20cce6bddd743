package app_config

import (
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"
)

// This is the app config for the leaderboard syncer binary.
type SyncerAppConfig struct {
	// Farcaster channel whose feed is scored.
	CHANNEL_ID string `yaml:"CHANNEL_ID"`
	// Casts requested per feed page.
	PAGE_LIMIT int `yaml:"PAGE_LIMIT"`
	// Seconds between two sync passes.
	SYNC_INTERVAL_SECOND int64 `yaml:"SYNC_INTERVAL_SECOND"`
	// Hours a scored cast stays frozen before its reactions are rescored.
	RECOMPUTE_WINDOW_HOUR int64 `yaml:"RECOMPUTE_WINDOW_HOUR"`
	// Point weights. The scoring engine treats these as opaque configuration.
	POST_POINTS   int64 `yaml:"POST_POINTS"`
	LIKE_POINTS   int64 `yaml:"LIKE_POINTS"`
	RECAST_POINTS int64 `yaml:"RECAST_POINTS"`
}

func ParseSyncerAppConfig(path string) SyncerAppConfig {
	c := SyncerAppConfig{}
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		log.Fatal("yamlFile. get err: ", err.Error())
	}
	err = yaml.Unmarshal(yamlFile, &c)
	if err != nil {
		log.Fatal("Unmarshal: ", err)
	}
	return c
}
