package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"github.com/timmy/retweets/internal/config"
	"github.com/timmy/retweets/internal/dataset"
	"github.com/timmy/retweets/internal/domain"
	"github.com/timmy/retweets/internal/logger"
	"github.com/timmy/retweets/internal/model"
	"github.com/timmy/retweets/internal/repository"
	"github.com/timmy/retweets/internal/service"
	"github.com/timmy/retweets/internal/source/csvfile"
	"github.com/timmy/retweets/internal/storage"
	"github.com/timmy/retweets/internal/textproc"
)

const serviceName = "retweets-pipeline"

const usage = `Usage: pipeline <command> [flags]

Commands:
  upload         copy a local file to s3 (-local, -s3path)
  download       copy an s3 object to a local file (-local, -s3path)
  create-db      create the tweets table
  ingest         add one tweet (-id, -date, -content, -retweets)
  acquire        read both raw sources and write the combined table
  clean          drop outliers, empty and non-English tweets
  process        normalize tweet content
  fit-tokenizer  split the data, fit and save the vocabulary
  prepare        acquire, clean, process and fit-tokenizer in sequence
  evaluate       score the test split with the model server (MAPE)
  load-tweets    insert a tweet table into the database (-input)

Every command accepts -config <path>.
`

func main() {
	bootCfg := logger.ConfigFromEnv()
	bootCfg.ServiceName = serviceName
	appLogger := logger.New(bootCfg)
	logger.SetDefaultLogger(appLogger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := fs.String("config", os.Getenv("CONFIG_PATH"), "Path to config file")
	localPath := fs.String("local", "", "Local file path (upload, download)")
	s3Path := fs.String("s3path", "", "S3 path s3://bucket/key (upload, download)")
	tweetID := fs.String("id", "", "Tweet ID (ingest); generated when empty")
	tweetDate := fs.String("date", "", "Tweet date (ingest)")
	tweetContent := fs.String("content", "", "Tweet content (ingest)")
	tweetRetweets := fs.String("retweets", "", "Retweet count (ingest)")
	input := fs.String("input", "", "Tweet table to load (load-tweets); defaults to the combined output")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid config")
	}

	appLogger = logger.New(cfg.Log.LoggerConfig(serviceName))
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(appLogger.WithContext(context.Background()))
	defer cancel()
	ctx = logger.SetComponent(ctx, "pipeline")
	ctx = logger.SetCommand(ctx, command)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	app := &pipelineApp{cfg: cfg}

	switch command {
	case "upload":
		requireFlags(appLogger, map[string]string{"local": *localPath, "s3path": *s3Path})
		err = app.files(ctx).UploadFile(ctx, *localPath, *s3Path)
	case "download":
		requireFlags(appLogger, map[string]string{"local": *localPath, "s3path": *s3Path})
		err = app.files(ctx).DownloadFile(ctx, *localPath, *s3Path)
	case "create-db":
		err = app.createDB(ctx)
	case "ingest":
		err = app.ingest(ctx, *tweetID, *tweetDate, *tweetContent, *tweetRetweets)
	case "acquire":
		_, err = app.pipeline(ctx).Acquire(ctx)
	case "clean":
		_, err = app.pipeline(ctx).Clean(ctx)
	case "process":
		_, err = app.pipeline(ctx).Process(ctx)
	case "fit-tokenizer":
		_, err = app.pipeline(ctx).FitTokenizer(ctx)
	case "prepare":
		err = app.prepare(ctx)
	case "evaluate":
		_, err = app.pipeline(ctx).Evaluate(ctx)
	case "load-tweets":
		path := *input
		if path == "" {
			path = cfg.Pipeline.Output.Combined
		}
		_, err = app.pipeline(ctx).LoadTweets(ctx, path)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}

	if err != nil {
		appLogger.WithError(err).WithField(logger.FieldCommand, command).Fatal("Command failed")
	}
	appLogger.WithField(logger.FieldCommand, command).Info("Command completed")
}

func requireFlags(log *logger.Logger, flags map[string]string) {
	for name, value := range flags {
		if value == "" {
			log.Fatalf("-%s is required", name)
		}
	}
}

// pipelineApp builds collaborators on first use so each command only
// connects to what it needs.
type pipelineApp struct {
	cfg     *config.Config
	fileSvc *storage.Files
	db      *repository.TweetRepository
}

func (a *pipelineApp) files(ctx context.Context) *storage.Files {
	if a.fileSvc != nil {
		return a.fileSvc
	}
	store, err := storage.NewStorage(ctx, &storage.S3Config{
		Type:      storage.StorageType(a.cfg.Storage.Type),
		Endpoint:  a.cfg.Storage.Endpoint,
		Region:    a.cfg.Storage.Region,
		AccessKey: a.cfg.Storage.AccessKey,
		SecretKey: a.cfg.Storage.SecretKey,
		UseSSL:    a.cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.FromContext(ctx).WithError(err).Fatal("Failed to initialize storage")
	}
	a.fileSvc = storage.NewFiles(store)
	return a.fileSvc
}

func (a *pipelineApp) tweets(ctx context.Context) *repository.TweetRepository {
	if a.db != nil {
		return a.db
	}
	db, err := repository.InitDB(ctx, &a.cfg.Database)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Fatal("Failed to initialize database")
	}
	a.db = repository.NewTweetRepository(db)
	return a.db
}

func (a *pipelineApp) pipeline(ctx context.Context) *service.PipelineService {
	log := logger.FromContext(ctx)
	files := a.files(ctx)
	normalizer, err := textproc.LoadNormalizer(a.cfg.Text.StopwordsPath, a.cfg.Text.LemmaExceptionPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load text resources")
	}
	client, err := model.NewClient(&model.ClientConfig{
		BaseURL: a.cfg.Model.URL,
		Name:    a.cfg.Model.Name,
		Version: a.cfg.Model.Version,
		Timeout: a.cfg.Model.Timeout,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create model client")
	}

	sources := a.cfg.Pipeline.Sources
	return service.NewPipelineService(service.PipelineDeps{
		Files:      files,
		First:      csvfile.NewAdapter(files, sources.First.Path, sources.First.Columns),
		Second:     csvfile.NewAdapter(files, sources.Second.Path, sources.Second.Columns),
		Normalizer: normalizer,
		Predictor:  client,
		Tweets:     lazyTweets{app: a, ctx: ctx},
	}, a.cfg.Pipeline, a.cfg.Tokenizer)
}

// lazyTweets defers the database connection until a stage writes tweets.
type lazyTweets struct {
	app *pipelineApp
	ctx context.Context
}

func (l lazyTweets) CreateBatch(ctx context.Context, tweets []domain.Tweet) error {
	return l.app.tweets(l.ctx).CreateBatch(ctx, tweets)
}

func (l lazyTweets) Count(ctx context.Context) (int64, error) {
	return l.app.tweets(l.ctx).Count(ctx)
}

func (a *pipelineApp) prepare(ctx context.Context) error {
	p := a.pipeline(ctx)
	if _, err := p.Acquire(ctx); err != nil {
		return err
	}
	if _, err := p.Clean(ctx); err != nil {
		return err
	}
	if _, err := p.Process(ctx); err != nil {
		return err
	}
	_, err := p.FitTokenizer(ctx)
	return err
}

func (a *pipelineApp) createDB(ctx context.Context) error {
	cfg := a.cfg.Database
	cfg.AutoMigrate = false
	db, err := repository.InitDB(ctx, &cfg)
	if err != nil {
		return err
	}
	defer repository.Close(db)
	if err := repository.Migrate(db); err != nil {
		return err
	}
	logger.CtxInfo(ctx, "Database created")
	return nil
}

func (a *pipelineApp) ingest(ctx context.Context, id, date, content, retweets string) error {
	when, err := dataset.ParseDate(date)
	if err != nil {
		return err
	}
	count, err := strconv.ParseInt(retweets, 10, 64)
	if err != nil {
		return fmt.Errorf("retweets %q: %w", retweets, domain.ErrInvalidInput)
	}
	if id == "" {
		id = uuid.NewString()
	}

	tweet := &domain.Tweet{ID: id, Date: when, Content: content, Retweets: count}
	if err := a.tweets(ctx).Create(ctx, tweet); err != nil {
		return err
	}
	logger.FromContext(ctx).WithField("tweet_id", id).Info("Successfully added tweet to database")
	return nil
}
