package di

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"github.com/wilson12358/daybook/application/ports"
	"github.com/wilson12358/daybook/application/search"
	"github.com/wilson12358/daybook/application/services"
	"github.com/wilson12358/daybook/domain/core/entities"
	"github.com/wilson12358/daybook/infrastructure/cache"
	"github.com/wilson12358/daybook/infrastructure/config"
	"github.com/wilson12358/daybook/infrastructure/messaging/eventbridge"
	"github.com/wilson12358/daybook/infrastructure/objectstore"
	"github.com/wilson12358/daybook/infrastructure/persistence/dynamodb"
	"github.com/wilson12358/daybook/pkg/auth"
	"github.com/wilson12358/daybook/pkg/observability"
)

// Caches bundles the per-process cache instances and their invalidation hub.
// All three caches register with the hub at construction, so a mutation purge
// reaches every one of them.
type Caches struct {
	Lists  *cache.TTLCache[[]*entities.Entry]
	Search *cache.TTLCache[[]*entities.Entry]
	Tags   *cache.TTLCache[[]string]
	Hub    *cache.Hub
}

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	EntryRepo     ports.EntryRepository
	ObjectStore   ports.ObjectStore
	Publisher     ports.EventPublisher
	Caches        *Caches
	EntryService  *services.EntryService
	SearchService *services.SearchService
	Metrics       *observability.Collector
	JWTValidator  *auth.JWTValidator
	RateLimiter   auth.RateLimiter
}

// Shutdown releases container resources. Clearing the caches here keeps a
// recycled Lambda sandbox from serving another invocation stale data.
func (c *Container) Shutdown() {
	c.Caches.Hub.ClearAll()
	_ = c.Logger.Sync()
}

// ApplyTuning pushes the runtime-tunable values from cfg into the live
// caches and the search pipeline. Invoked by the overrides watcher on every
// reload; already-cached entries are judged against the new TTLs on their
// next lookup.
func (c *Container) ApplyTuning(cfg *config.Config) {
	c.Caches.Lists.SetTTL(cfg.CacheListTTL)
	c.Caches.Tags.SetTTL(cfg.CacheListTTL)
	c.Caches.Search.SetTTL(cfg.CacheSearchTTL)
	c.SearchService.ApplyTuning(cfg.SearchWindow, cfg.SearchLimit, cfg.DebounceQuiet, cfg.ThrottleWindow)
}

// ProvideLogger creates a logger for the configured environment
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideEntryRepository creates the DynamoDB entry repository
func ProvideEntryRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.EntryRepository {
	return dynamodb.NewEntryRepository(client, cfg.DynamoDBTable, cfg.GSI1IndexName, logger)
}

// ProvideObjectStore creates the attachment object store
func ProvideObjectStore(logger *zap.Logger) ports.ObjectStore {
	return objectstore.NewMemoryStore(logger)
}

// ProvideEventPublisher creates the EventBridge publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates the metrics collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("daybook")
}

// ProvideCaches builds the cache instances and wires them to one hub
func ProvideCaches(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) *Caches {
	lists := cache.New[[]*entities.Entry]("lists", cfg.CacheListTTL,
		cache.WithMetrics[[]*entities.Entry](metrics),
		cache.WithLogger[[]*entities.Entry](logger),
	)
	searchResults := cache.New[[]*entities.Entry]("search", cfg.CacheSearchTTL,
		cache.WithMetrics[[]*entities.Entry](metrics),
		cache.WithLogger[[]*entities.Entry](logger),
	)
	tags := cache.New[[]string]("recent-tags", cfg.CacheListTTL,
		cache.WithMetrics[[]string](metrics),
		cache.WithLogger[[]string](logger),
	)

	hub := cache.NewHub(logger)
	hub.Register(lists)
	hub.Register(searchResults)
	hub.Register(tags)

	return &Caches{
		Lists:  lists,
		Search: searchResults,
		Tags:   tags,
		Hub:    hub,
	}
}

// ProvideEntryService creates the entry service
func ProvideEntryService(
	repo ports.EntryRepository,
	objects ports.ObjectStore,
	publisher ports.EventPublisher,
	caches *Caches,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.EntryService {
	return services.NewEntryService(repo, objects, publisher, caches.Hub, caches.Lists, caches.Tags, metrics, logger)
}

// ProvideSearchService creates the search service
func ProvideSearchService(
	repo ports.EntryRepository,
	caches *Caches,
	cfg *config.Config,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.SearchService {
	engine := search.NewEngine(search.StrategySmart, cfg.SearchLimit)
	return services.NewSearchService(
		repo,
		caches.Search,
		engine,
		cfg.ThrottleWindow,
		metrics,
		logger,
		services.WithSearchWindow(cfg.SearchWindow),
		services.WithDebounceQuiet(cfg.DebounceQuiet),
	)
}

// ProvideJWTValidator creates the JWT validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideRateLimiter creates the per-IP rate limiter
func ProvideRateLimiter(cfg *config.Config) auth.RateLimiter {
	return auth.NewTokenBucketLimiter(cfg.RateLimitPerMinute, time.Minute)
}
