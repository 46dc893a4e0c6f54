package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/lexiport/episode-media-uploader/authz"
	"github.com/lexiport/episode-media-uploader/common"
	"github.com/lexiport/episode-media-uploader/common/config"
	"github.com/lexiport/episode-media-uploader/common/logging"
	"github.com/lexiport/episode-media-uploader/common/rcontext"
	"github.com/lexiport/episode-media-uploader/common/version"
	"github.com/lexiport/episode-media-uploader/datastores"
	"github.com/lexiport/episode-media-uploader/metrics"
	"github.com/lexiport/episode-media-uploader/pipelines/pipeline_batch"
	"github.com/lexiport/episode-media-uploader/pipelines/pipeline_chunked"
	"github.com/lexiport/episode-media-uploader/pool"
	"github.com/lexiport/episode-media-uploader/transport"
	"github.com/lexiport/episode-media-uploader/types"
	"github.com/lexiport/episode-media-uploader/uploading"
	"github.com/lexiport/episode-media-uploader/util"
)

func main() {
	configPath := flag.String("config", "media-uploader.yaml", "The path to the configuration")
	versionFlag := flag.Bool("version", false, "Prints the version and exits")
	slug := flag.String("slug", "", "The content slug the files belong to")
	episode := flag.Int("episode", 0, "The episode number")
	kind := flag.String("kind", common.KindImages, "The media kind (images, audio, video)")
	idsFlag := flag.String("ids", "", "Comma-separated explicit logical ids (one per file)")
	padWidth := flag.Int("pad", 3, "Minimum width for generated ids")
	startIndex := flag.Int("start", 1, "Seed for sequentially generated ids")
	infer := flag.Bool("infer", false, "Infer logical ids from trailing digits in file names")
	chunked := flag.Bool("chunked", false, "Upload a single large file via multipart")
	flag.Parse()

	if *versionFlag {
		version.Print(false)
		return // exit 0
	}

	// Override config path with env for Docker users
	configEnv := os.Getenv("UPLOADER_CONFIG")
	if configEnv != "" {
		configPath = &configEnv
	}

	config.Path = *configPath

	err := logging.Setup(
		config.Get().General.LogDirectory,
		config.Get().General.LogColors,
		config.Get().General.JsonLogs,
		config.Get().General.LogLevel,
	)
	if err != nil {
		panic(err)
	}

	logrus.Info("Starting up...")
	version.Print(true)

	if config.Get().Sentry.Enabled {
		logrus.Info("Setting up Sentry for debugging...")
		err = sentry.Init(sentry.ClientOptions{
			Dsn:         config.Get().Sentry.Dsn,
			Environment: config.Get().Sentry.Environment,
			Debug:       config.Get().Sentry.Debug,
		})
		if err != nil {
			logrus.Fatal(err)
		}
	}
	defer sentry.Flush(2 * time.Second)

	files := flag.Args()
	if len(files) == 0 {
		logrus.Fatal("No files given - nothing to upload")
	}

	watching := false
	if _, err = os.Stat(config.Path); err == nil {
		logrus.Info("Starting config watcher...")
		watcher := config.Watch()
		defer watcher.Close()
		setupReloads()
		watching = true
	}

	metrics.Init()
	pool.Init()
	defer pool.Drain()

	// Cooperative cancellation on SIGINT: no new transfers start, dispatched
	// ones race their timeouts.
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		logrus.Warn("Stop signal received - cancelling uploads")
		cancel()
	}()

	rctx := rcontext.Initial().ReplaceContext(ctx).LogWithFields(logrus.Fields{"via": "cmd"})
	auth := authz.NewClient(config.Get().Signing)
	tr := transport.NewClient()

	if *chunked {
		runChunked(rctx, auth, tr, *slug, *episode, *kind, files)
	} else {
		runBatch(rctx, auth, tr, *slug, *episode, *kind, *idsFlag, *padWidth, *startIndex, *infer, files)
	}

	if watching {
		stopReloads()
	}
	metrics.Stop()
	logrus.Info("Goodbye!")
}

func buildItems(paths []string) []types.MediaItem {
	items := make([]types.MediaItem, 0, len(paths))
	for _, p := range paths {
		item, err := types.NewFileItem(p)
		if err != nil {
			logrus.Fatal(err)
		}
		contentType, err := util.DetectContentType(item.Source)
		if err != nil {
			logrus.Warn("Could not sniff content type for ", p, ": ", err)
		} else {
			item.ContentType = contentType
		}
		items = append(items, item)
	}
	return items
}

func runBatch(ctx rcontext.RequestContext, auth *authz.Client, tr uploading.Transport, slug string, episode int, kind string, idsFlag string, padWidth int, startIndex int, infer bool, files []string) {
	var explicitIds []string
	if idsFlag != "" {
		explicitIds = strings.Split(idsFlag, ",")
	}

	result, err := pipeline_batch.Execute(ctx, auth, tr, pool.UploadQueue, pipeline_batch.BatchRequest{
		ContentSlug:   slug,
		Episode:       episode,
		MediaKind:     kind,
		Files:         buildItems(files),
		ExplicitIds:   explicitIds,
		PadWidth:      padWidth,
		StartIndex:    startIndex,
		InferFromName: infer,
		OnProgress: func(done int, total int) {
			logrus.Infof("Progress: %d/%d", done, total)
		},
	})
	if err != nil {
		sentry.CaptureException(err)
		logrus.Fatal(err)
	}

	summary := result.Summary()
	logrus.Infof("Uploaded %d, fell back %d, failed %d, cancelled %d (of %d)",
		summary.Succeeded, summary.FellBack, summary.Failed, summary.Cancelled, summary.Total)
	for _, r := range result.Results {
		if r.Outcome == uploading.OutcomeFailed {
			logrus.Warn("Failed: ", r.LogicalId, " - ", r.Error)
		}
	}
}

func runChunked(ctx rcontext.RequestContext, auth *authz.Client, tr uploading.Transport, slug string, episode int, kind string, files []string) {
	if len(files) != 1 {
		logrus.Fatal("The chunked path takes exactly one file")
	}

	items := buildItems(files)
	usedKey, err := pipeline_chunked.Execute(ctx, auth, tr, datastores.NewMultipartService(), pipeline_chunked.ChunkedRequest{
		ContentSlug: slug,
		Episode:     episode,
		MediaKind:   kind,
		File:        items[0],
		OnByteProgress: func(doneBytes int64, totalBytes int64) {
			logrus.Infof("Progress: %s / %s", humanize.IBytes(uint64(doneBytes)), humanize.IBytes(uint64(totalBytes)))
		},
	})
	if err != nil {
		sentry.CaptureException(err)
		logrus.Fatal(err)
	}

	logrus.Info("Uploaded to ", usedKey)
}
