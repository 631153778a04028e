package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/mediflow-admin/internal/application/services"
	"github.com/zatekoja/mediflow-admin/internal/domain/providers"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/auth"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/clients/redis"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/clients/restapi"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/notifications"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/observability"
	"github.com/zatekoja/mediflow-admin/pkg/config"
	apperrors "github.com/zatekoja/mediflow-admin/pkg/errors"
	"github.com/zatekoja/mediflow-admin/pkg/retry"
)

// App holds everything a command needs once configuration has been loaded
type App struct {
	cfg       *config.Config
	out       io.Writer
	session   *auth.Session
	client    *restapi.HTTPClient
	dashboard *services.DashboardService
	analytics *services.AnalyticsService
	metrics   *observability.Metrics

	// httpClient and retryConfig are replaced in tests
	httpClient  *http.Client
	retryConfig retry.Config

	closers []func(context.Context) error
}

func newApp(out io.Writer) *App {
	return &App{
		out:         out,
		retryConfig: retry.DefaultConfig(),
	}
}

// setup loads configuration and wires the client, notifier and services
func (a *App) setup(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env, cfg.App.LogLevel)

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			a.closers = append(a.closers, shutdown)
			log.Debug().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	a.metrics = metrics

	a.session = auth.NewSession(cfg.Auth.Token)

	opts := []restapi.Option{restapi.WithMetrics(metrics)}
	if a.httpClient != nil {
		opts = append(opts, restapi.WithHTTPClient(a.httpClient))
	}
	a.client = restapi.NewClient(&cfg.API, a.session, opts...)

	notifier, err := a.buildNotifier(ctx)
	if err != nil {
		return err
	}

	a.dashboard = services.NewDashboardService(
		restapi.NewPatients(a.client),
		restapi.NewDoctors(a.client),
		restapi.NewAppointments(a.client),
		a.client,
		services.SyncOptions{Notifier: notifier, Metrics: metrics},
	)
	a.analytics = services.NewAnalyticsService(a.client)
	return nil
}

func (a *App) buildNotifier(ctx context.Context) (providers.Notifier, error) {
	var base providers.Notifier = notifications.NewLogNotifier(log.Logger, a.metrics)
	if a.cfg.OTEL.Enabled {
		base = notifications.Multi(base, notifications.NewOTelNotifier(a.metrics))
	}

	switch a.cfg.Notifier.Kind {
	case config.NotifierRedis:
		client, err := redis.NewClient(ctx, &a.cfg.Redis)
		if err != nil {
			// Keep working without Redis; toasts still reach the log
			log.Warn().Err(err).Msg("failed to initialize Redis client, notifications go to the log only")
			return base, nil
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		return notifications.Multi(base,
			a.async(notifications.NewRedisNotifier(client, a.cfg.Notifier.Channel, a.metrics))), nil
	case config.NotifierWebhook:
		webhook, err := notifications.NewWebhookNotifier(a.cfg.Notifier.WebhookURL, a.cfg.Notifier.WebhookToken, a.metrics)
		if err != nil {
			return nil, err
		}
		return notifications.Multi(base, a.async(webhook)), nil
	default:
		return base, nil
	}
}

// async moves remote delivery off the caller; queued notifications are flushed on close
func (a *App) async(n providers.Notifier) providers.Notifier {
	queued := notifications.NewAsyncNotifier(n, a.cfg.Notifier.QueueSize)
	a.closers = append(a.closers, queued.Close)
	return queued
}

// requireSession makes sure the session holds a token the backend accepts. Configured
// credentials are used to sign in when no token is present.
func (a *App) requireSession(ctx context.Context) error {
	if !a.session.Authenticated() {
		if a.cfg.Auth.Username == "" || a.cfg.Auth.Password == "" {
			return apperrors.NewUnauthorizedError("not signed in: set API_TOKEN or run login")
		}
		if _, err := a.login(ctx, a.cfg.Auth.Username, a.cfg.Auth.Password); err != nil {
			return err
		}
	}

	return retry.Do(ctx, a.retryConfig, "verify session", func(ctx context.Context) error {
		_, err := a.client.CurrentUser(ctx)
		switch {
		case err == nil:
			return nil
		case apperrors.IsType(err, apperrors.ErrorTypeNetwork):
			return err
		default:
			return retry.Stop(err)
		}
	}, func(attempt int, err error, next time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Msg("backend not reachable, retrying")
	})
}

func (a *App) login(ctx context.Context, username, password string) (string, error) {
	token, err := a.client.Login(ctx, username, password)
	if err != nil {
		return "", err
	}
	a.session.Set(token.AccessToken)
	return token.AccessToken, nil
}

func (a *App) close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
