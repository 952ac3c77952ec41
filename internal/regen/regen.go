// Package regen orchestrates a full fixture regeneration run: build the
// parser, discover test files, parse each in its own subprocess, and
// aggregate the outcomes.
package regen

import (
	"context"
	"fmt"
	"io"

	"github.com/zinc-sig/fixgen/internal/builder"
	"github.com/zinc-sig/fixgen/internal/config"
	"github.com/zinc-sig/fixgen/internal/discover"
	"github.com/zinc-sig/fixgen/internal/notify"
	"github.com/zinc-sig/fixgen/internal/output"
	"github.com/zinc-sig/fixgen/internal/report"
	"github.com/zinc-sig/fixgen/internal/runner"
	"github.com/zinc-sig/fixgen/internal/upload"
)

// Options configures a run.
type Options struct {
	Config  *config.Config
	Verbose bool
	Log     io.Writer // run log destination, normally stderr
}

// Run executes the whole pipeline and returns the run summary. A non-nil
// error means a fatal precondition failed (bad configuration, missing
// fixtures root) before any fixture was processed; build failures and
// per-file failures are reported through the summary instead.
func Run(ctx context.Context, opts *Options) (*output.Summary, error) {
	cfg := opts.Config
	agg := report.New(opts.Log)
	agg.Banner("Regenerating All Syntax Test Fixtures")

	if cfg.Build.Command != "" {
		agg.BuildStarted()
		err := builder.Run(ctx, &builder.Config{
			Command: cfg.Build.Command,
			Args:    cfg.Build.Args,
			Dir:     cfg.Build.Dir,
			Verbose: opts.Verbose,
			Output:  opts.Log,
		})
		if err != nil {
			agg.BuildFailed(err)
			summary := agg.Summary()
			// The webhook still hears about a run that died in the
			// build step; there are no artifacts to upload.
			if cfg.Webhook.Enabled() {
				sendWebhook(ctx, cfg, opts, summary)
			}
			return summary, nil
		}
		agg.BuildSucceeded()
	}

	pairs, err := discover.Discover(cfg.Root, cfg.Extension)
	if err != nil {
		return nil, err
	}
	agg.Discovered(len(pairs))

	timeout, err := cfg.ParserTimeout()
	if err != nil {
		return nil, err
	}
	parse := runner.New(&runner.Config{
		Command: cfg.Parser.Command,
		Args:    cfg.Parser.Args,
		Timeout: timeout,
		Verbose: opts.Verbose,
		Log:     opts.Log,
	})

	// Strictly sequential: one fixture is fully processed and reported
	// before the next begins, in discovery order.
	for _, pair := range pairs {
		agg.Record(pair, parse.Parse(ctx, pair))
	}
	summary := agg.Finish()

	if cfg.Upload.Enabled() {
		uploadArtifacts(ctx, cfg, agg, summary)
	}
	if cfg.Webhook.Enabled() {
		sendWebhook(ctx, cfg, opts, summary)
	}
	return summary, nil
}

// uploadArtifacts pushes every written artifact to the configured provider.
// Best-effort: failures are logged and recorded in the summary only.
func uploadArtifacts(ctx context.Context, cfg *config.Config, agg *report.Aggregator, summary *output.Summary) {
	provider, err := upload.New(cfg.Upload.Provider)
	if err == nil {
		err = provider.Configure(cfg.Upload.Settings)
	}
	if err != nil {
		agg.UploadError(cfg.Upload.Provider, err)
		summary.UploadErrors = append(summary.UploadErrors, err.Error())
		return
	}
	for _, err := range upload.Sync(ctx, provider, cfg.Root, summary.Artifacts()) {
		agg.UploadError(provider.Name(), err)
		summary.UploadErrors = append(summary.UploadErrors, err.Error())
	}
}

// sendWebhook posts the summary to the configured endpoint. The payload is a
// copy without the local-only side-channel fields.
func sendWebhook(ctx context.Context, cfg *config.Config, opts *Options, summary *output.Summary) {
	notifyCfg, err := notify.FromWebhook(&cfg.Webhook)
	if err != nil {
		summary.WebhookError = err.Error()
		return
	}
	client := notify.NewClient(notifyCfg, opts.Verbose, opts.Log)

	payload := *summary
	payload.UploadErrors = nil
	payload.WebhookSent = false
	payload.WebhookError = ""

	if err := client.Send(ctx, &payload); err != nil {
		fmt.Fprintf(opts.Log, "[WEBHOOK] Error: %v\n", err)
		summary.WebhookError = err.Error()
		return
	}
	summary.WebhookSent = true
}
