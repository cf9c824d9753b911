package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var conf *Conf

type Conf struct {
	App struct {
		Version string `toml:"version"`
		Title   string `toml:"title"`
	} `toml:"app"`
	Provider struct {
		Name      string `toml:"name"`
		URL       string `toml:"url"`
		APIKey    string `toml:"apikey"`
		UserAgent string `toml:"useragent"`
	} `toml:"provider"`
	Cache struct {
		Directory    string  `toml:"directory"`
		MetadataFile string  `toml:"metadatafile"`
		Zooms        []int   `toml:"zooms"`
		AreaSqKm     float64 `toml:"areasqkm"`
	} `toml:"cache"`
	Refresh struct {
		DistanceMeters float64 `toml:"distancemeters"`
		MaxAgeHours    int     `toml:"maxagehours"`
		MergeBounds    bool    `toml:"mergebounds"`
	} `toml:"refresh"`
	Network struct {
		PollSeconds         int `toml:"pollseconds"`
		ProbeTimeoutSeconds int `toml:"probetimeoutseconds"`
	} `toml:"network"`
	Task struct {
		TileTimeoutSeconds int `toml:"tiletimeoutseconds"`
		TimedelayMs        int `toml:"timedelayms"`
	} `toml:"task"`
	Survey struct {
		PolygonFile string `toml:"polygonfile"`
	} `toml:"survey"`
	Output struct {
		LogDir         string `toml:"logdir"`
		OutputTerminal bool   `toml:"outputterminal"`
	} `toml:"output"`
}

// InitConf 初始化配置. Environment variables override the file, a .env file
// is loaded first so the provider keys can live outside the TOML.
func InitConf(cfgFile string) {
	godotenv.Load()

	if cfgFile == "" {
		cfgFile = "conf.toml"
	}
	viper.SetConfigType("toml")
	viper.SetConfigFile(cfgFile)
	viper.AutomaticEnv() // read in environment variables that match
	if _, err := os.Stat(cfgFile); err == nil {
		if err := viper.ReadInConfig(); err != nil {
			fmt.Printf("read config file(%s) error, details: %s\n", viper.ConfigFileUsed(), err)
		}
	}

	// provider keys keep the original env names of the survey app
	viper.BindEnv("provider.url", "TILE_PROVIDER_URL")
	viper.BindEnv("provider.apikey", "TILE_PROVIDER_API_KEY")
	viper.BindEnv("provider.name", "TILE_PROVIDER_NAME")
	viper.BindEnv("provider.useragent", "TILE_PROVIDER_USER_AGENT")

	// 设置默认值
	viper.SetDefault("app.version", "v 0.1.0")
	viper.SetDefault("app.title", "Offline Tile Cache")
	viper.SetDefault("provider.name", "Mapbox Satellite")
	viper.SetDefault("provider.url", "https://api.mapbox.com/styles/v1/mapbox/satellite-streets-v12/tiles/256/{z}/{x}/{y}?access_token={apiKey}")
	viper.SetDefault("provider.useragent", "FieldSurvey/1.0 (offtiler)")
	viper.SetDefault("cache.directory", "cache/tiles")
	viper.SetDefault("cache.metadatafile", "cache/metadata.json")
	viper.SetDefault("cache.zooms", []int{13, 14, 15})
	viper.SetDefault("cache.areasqkm", 5.0)
	viper.SetDefault("refresh.distancemeters", 5000.0)
	viper.SetDefault("refresh.maxagehours", 7*24)
	viper.SetDefault("refresh.mergebounds", false)
	viper.SetDefault("network.pollseconds", 10)
	viper.SetDefault("network.probetimeoutseconds", 5)
	viper.SetDefault("task.tiletimeoutseconds", 20)
	viper.SetDefault("task.timedelayms", 0)
	viper.SetDefault("survey.polygonfile", "cache/polygons.json")

	if err := viper.Unmarshal(&conf); err != nil {
		panic("unable to parse configuration")
	}
}
