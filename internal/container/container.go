package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/craftfolio/craftfolio-api/config"
	"github.com/craftfolio/craftfolio-api/pkg/assist"
	"github.com/craftfolio/craftfolio-api/pkg/helpers"
	"github.com/craftfolio/craftfolio-api/pkg/mailer"
)

// App-level singletons shared across packages; the router wires modules from
// these. Optional components (GCS, ES, Rabbit, Mailgun, assist) stay nil when
// unconfigured and consumers degrade accordingly.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	mongoDB     *mongo.Database
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client

	jwtManager    *helpers.JWTManager
	cookieManager *helpers.CookieManager

	mailgunClient *mailer.Mailgun
	rabbitPub     *helpers.RabbitPublisher
	assistClient  *assist.Client
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }

func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }

func SetPGPool(p *pgxpool.Pool) { pgPool = p }
func GetPGPool() *pgxpool.Pool  { return pgPool }

func SetMongo(db *mongo.Database) { mongoDB = db }
func GetMongo() *mongo.Database   { return mongoDB }

func SetRedis(r *redis.Client) { redisClient = r }
func GetRedis() *redis.Client  { return redisClient }

func SetGCS(s *storage.Client) { gcsClient = s }
func GetGCS() *storage.Client  { return gcsClient }

func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }

func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetCookies(m *helpers.CookieManager) { cookieManager = m }
func GetCookies() *helpers.CookieManager  { return cookieManager }

func SetMailgun(m *mailer.Mailgun) { mailgunClient = m }
func GetMailgun() *mailer.Mailgun  { return mailgunClient }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

func SetAssist(c *assist.Client) { assistClient = c }
func GetAssist() *assist.Client  { return assistClient }
