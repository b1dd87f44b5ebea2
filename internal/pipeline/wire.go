package pipeline

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/kamilpajak/fring/internal/config"
	"github.com/kamilpajak/fring/internal/history"
	"github.com/kamilpajak/fring/internal/llm"
	"github.com/kamilpajak/fring/internal/notify"
	"github.com/kamilpajak/fring/internal/report"
	"github.com/kamilpajak/fring/internal/trend"
)

// New builds a fully wired Pipeline from configuration. The returned
// cleanup releases the history store; call it when the run is done.
//
// Store selection: Postgres when DATABASE_URL is set and reachable,
// otherwise the report-directory file store. A configured-but-unreachable
// database degrades to the file store with a logged error rather than
// failing the run.
func New(ctx context.Context, cfg config.Config, fs afero.Fs, log logrus.FieldLogger) (*Pipeline, func()) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	store, cleanup := newStore(ctx, cfg, fs, log)
	ledger := history.NewLedger(store, cfg.HistoryLimit, log)

	var analyzer Analyzer
	if !cfg.Ollama.Disabled {
		analyzer = llm.NewClient(cfg.Ollama.URL, cfg.Ollama.Model, log)
	}

	meta := notify.Meta{
		Project:     cfg.Project,
		Environment: cfg.Environment,
		TriggeredBy: cfg.TriggeredBy,
	}

	return &Pipeline{
		Partition: cfg.Partition,
		Ledger:    ledger,
		Detector:  trend.NewDetector(ledger),
		Assembler: report.NewAssembler(fs, cfg.ReportDir, log),
		Analyzer:  analyzer,
		Deliverer: notify.NewNotifier(cfg.Slack.WebhookURL, meta, log),
		Uploader:  notify.NewUploader(cfg.Slack.BotToken, cfg.Slack.ChannelID, fs, cfg.HTMLReportPath, log),
		Log:       log,
	}, cleanup
}

func newStore(ctx context.Context, cfg config.Config, fs afero.Fs, log logrus.FieldLogger) (history.Store, func()) {
	if cfg.DatabaseURL == "" {
		return history.NewFileStore(fs, cfg.ReportDir), func() {}
	}

	if err := history.Migrate(cfg.DatabaseURL); err != nil {
		log.WithError(err).Error("history database migration failed, using file store")
		return history.NewFileStore(fs, cfg.ReportDir), func() {}
	}

	store, err := history.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Error("history database unreachable, using file store")
		return history.NewFileStore(fs, cfg.ReportDir), func() {}
	}
	return store, store.Close
}
