package notify

import (
	"bytes"
	"context"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/spf13/afero"
)

// DefaultReportPath is where the HTML run report is expected.
const DefaultReportPath = "tests/smart-report.html"

// fileUploader is the slice of the Slack API the uploader needs.
type fileUploader interface {
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

// Uploader attaches the HTML run report to the Slack channel via the
// external-upload flow. Like delivery, it is best-effort only.
type Uploader struct {
	api       fileUploader
	channelID string
	fs        afero.Fs
	path      string
	log       logrus.FieldLogger
}

// NewUploader creates an Uploader. Empty token or channel disables it.
func NewUploader(botToken, channelID string, fs afero.Fs, path string, log logrus.FieldLogger) *Uploader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if path == "" {
		path = DefaultReportPath
	}

	u := &Uploader{channelID: channelID, fs: fs, path: path, log: log}
	if botToken != "" && channelID != "" {
		u.api = slack.New(botToken)
	}
	return u
}

// UploadReport uploads the HTML report if the uploader is configured and
// the file exists. Every failure path is a logged no-op.
func (u *Uploader) UploadReport(ctx context.Context) {
	if u.api == nil {
		u.log.Info("slack bot token or channel not configured, skipping upload")
		return
	}

	content, err := afero.ReadFile(u.fs, u.path)
	if err != nil {
		u.log.WithField("path", u.path).Info("html report not found, skipping upload")
		return
	}

	_, err = u.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Reader:         bytes.NewReader(content),
		FileSize:       len(content),
		Filename:       "smart-report.html",
		Title:          "Smart Report",
		Channel:        u.channelID,
		InitialComment: "📎 Smart HTML Report",
	})
	if err != nil {
		u.log.WithError(err).Error("slack file upload failed")
		return
	}
	u.log.Info("html report uploaded to slack")
}
