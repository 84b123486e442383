package v1

import (
	"github.com/nahidhasan/feedpulse/internal/db"
	"github.com/nahidhasan/feedpulse/internal/mentions"
	"github.com/nahidhasan/feedpulse/pkg/logger"
	"github.com/nahidhasan/feedpulse/pkg/utils"
	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	Redis     *db.RedisClient
	Logger    *logger.Logger
	Pipeline  *mentions.Processor
	Validator = utils.NewValidator()
	EmailCfg  = utils.EmailConfig{
		SMTPHost:  "0.0.0.0",
		SMTPPort:  1025,
		AppURL:    "http://localhost:3000",
		FromEmail: "no-reply@feedpulse.io",
	}
)

// Setup wires the package-level handler dependencies.
func Setup(gormDB *gorm.DB, rclient *db.RedisClient, log *logger.Logger, pipeline *mentions.Processor) {
	DB = gormDB
	Redis = rclient
	Logger = log
	Pipeline = pipeline
}
