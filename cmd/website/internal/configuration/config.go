package configuration

import "github.com/adampresley/configinator"

type Config struct {
	AlbumCacheSeconds  int    `flag:"acs" env:"ALBUM_CACHE_SECONDS" default:"300" description:"Seconds an album listing stays cached. 0 caches until a change"`
	AvatarSize         int    `flag:"avatarsize" env:"AVATAR_SIZE" default:"256" description:"Width and height in pixels of cropped avatars"`
	AwsEndpointUrl     string `flag:"awsep" env:"AWS_ENDPOINT_URL" default:"http://localhost:4566" description:"AWS endpoint URL"`
	AwsRegion          string `flag:"awsregion" env:"AWS_REGION" default:"us-central-1" description:"AWS region"`
	AwsAccessKeyId     string `flag:"awsaccesskeyid" env:"AWS_ACCESS_KEY_ID" default:"" description:"AWS access key ID"`
	AwsSecretAccessKey string `flag:"awssecretaccesskey" env:"AWS_SECRET_ACCESS_KEY" default:"" description:"AWS secret access key"`
	AwsBucket          string `flag:"awsbucket" env:"AWS_BUCKET" default:"pictogallery" description:"S3 bucket"`
	BcryptCost         int    `flag:"bcryptcost" env:"BCRYPT_COST" default:"10" description:"bcrypt cost used to hash hidden album passwords"`
	CookieSecret       string `flag:"cookiesecret" env:"COOKIE_SECRET" default:"password" description:"Secret for encoding cookies"`
	DSN                string `flag:"dsn" env:"DSN" default:"file:./data/pictogallery.db" description:"Data source name"`
	Host               string `flag:"host" env:"HOST" default:"localhost:8081" description:"The address and port to bind the HTTP server to"`
	LibraryFolder      string `flag:"libraryfolder" env:"LIBRARY_FOLDER" default:"library" description:"S3 folder holding the photo library"`
	ListHiddenAlbums   bool   `flag:"listhidden" env:"LIST_HIDDEN_ALBUMS" default:"true" description:"Show hidden albums (behind a password prompt) in the album listing"`
	LogLevel           string `flag:"loglevel" env:"LOG_LEVEL" default:"debug" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	MaxCacheWorkers    int    `flag:"mcc" env:"MAX_CACHE_WORKERS" default:"20" description:"Maximum number of concurrent thumbnail workers"`
	MaxUploadMB        int    `flag:"maxupload" env:"MAX_UPLOAD_MB" default:"20" description:"Largest image upload accepted, in megabytes"`
	ViewerIdleMinutes  int    `flag:"vim" env:"VIEWER_IDLE_MINUTES" default:"1440" description:"Minutes before an idle viewer's sidebar and dialog state is dropped"`
}

func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)
	return config
}
