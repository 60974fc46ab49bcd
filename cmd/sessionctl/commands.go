package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-client/auth"
	"github.com/jrsteele09/go-session-client/gateway"
	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/jrsteele09/go-session-client/internal/metrics"
	"github.com/jrsteele09/go-session-client/internal/utils"
	"github.com/jrsteele09/go-session-client/routes"
	"github.com/jrsteele09/go-session-client/sessions"
	"github.com/jrsteele09/go-session-client/sessions/filestore"
	"github.com/jrsteele09/go-session-client/sessions/redisstore"
	"github.com/jrsteele09/go-session-client/token"
)

type commands struct {
	cfg  config.Config
	opts options
	out  io.Writer
}

func (c *commands) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "login-url":
		return c.loginURL(ctx)
	case "login":
		return c.withService(ctx, c.login)
	case "restore":
		return c.withService(ctx, c.restore)
	case "refresh":
		return c.withService(ctx, c.refresh)
	case "logout":
		return c.withService(ctx, c.logout)
	case "whoami":
		return c.withStore(ctx, c.whoami)
	case "route":
		if len(args) > 0 {
			fmt.Fprintln(c.out, routes.Resolve(args))
			return nil
		}
		return c.withStore(ctx, c.route)
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

func (c *commands) loginURL(ctx context.Context) error {
	authorizer, err := gateway.NewAuthorizer(ctx, c.cfg, c.redirectURI())
	if err != nil {
		return err
	}
	state := uuid.NewString()
	fmt.Fprintf(c.out, "%s\nstate: %s\n", authorizer.AuthCodeURL(state), state)
	return nil
}

func (c *commands) login(ctx context.Context, service *auth.SessionService) error {
	return c.report(service.Login(ctx, c.opts.code, c.redirectURI()))
}

func (c *commands) restore(ctx context.Context, service *auth.SessionService) error {
	return c.report(service.Restore(ctx))
}

// refresh loads the saved session without the validation Restore does, so
// the command performs exactly one exchange. Without a saved session the
// refresh fails on its missing refresh token.
func (c *commands) refresh(ctx context.Context, service *auth.SessionService) error {
	service.Load(ctx)
	return c.report(service.Refresh(ctx))
}

func (c *commands) logout(ctx context.Context, service *auth.SessionService) error {
	service.Logout(ctx)
	fmt.Fprintln(c.out, "signed out")
	return nil
}

func (c *commands) whoami(ctx context.Context, store sessions.Repo) error {
	saved, err := store.Read(ctx)
	if err != nil {
		return err
	}
	if !saved.HasAccessToken() {
		fmt.Fprintln(c.out, auth.MsgNoSavedToken)
		return nil
	}

	fmt.Fprintf(c.out, "account:     %s\n", utils.Value(saved.AccountID))
	fmt.Fprintf(c.out, "name:        %s\n", utils.Value(saved.DisplayName))
	fmt.Fprintf(c.out, "email:       %s\n", utils.Value(saved.Email))
	fmt.Fprintf(c.out, "roles:       %s\n", strings.Join(saved.Roles, ","))
	fmt.Fprintf(c.out, "destination: %s\n", routes.Resolve(saved.Roles))
	fmt.Fprintf(c.out, "token:       %s\n", sessions.Fingerprint(*saved.AccessToken))
	fmt.Fprintf(c.out, "refreshable: %t\n", saved.HasRefreshToken())

	in, err := token.Inspect(*saved.AccessToken)
	if err != nil {
		fmt.Fprintln(c.out, "expires:     unknown (opaque token)")
		return nil
	}
	if in.ExpiresAt.IsZero() {
		fmt.Fprintln(c.out, "expires:     never")
		return nil
	}
	fmt.Fprintf(c.out, "expires:     %s (in %s)\n", in.ExpiresAt.Format(time.RFC3339), time.Until(in.ExpiresAt).Round(time.Second))
	return nil
}

func (c *commands) route(ctx context.Context, store sessions.Repo) error {
	saved, err := store.Read(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, routes.Resolve(saved.Roles))
	return nil
}

func (c *commands) report(result auth.Result) error {
	if !result.OK() {
		log.Debug().Err(result.Err).Msg("command failed")
		return errors.New(result.Message)
	}
	fmt.Fprintf(c.out, "ok roles=%s destination=%s\n", strings.Join(result.Roles, ","), routes.Resolve(result.Roles))
	return nil
}

func (c *commands) redirectURI() string {
	if c.opts.redirectURI != "" {
		return c.opts.redirectURI
	}
	return c.cfg.GetRedirectURI()
}

func (c *commands) withStore(ctx context.Context, fn func(context.Context, sessions.Repo) error) error {
	store, closeStore, err := openStore(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(ctx, store)
}

func (c *commands) withService(ctx context.Context, fn func(context.Context, *auth.SessionService) error) error {
	return c.withStore(ctx, func(ctx context.Context, store sessions.Repo) error {
		m := metrics.New(prometheus.NewRegistry())
		client := gateway.NewClient(c.cfg.GetBaseURL(),
			gateway.WithTimeout(c.cfg.GetRequestTimeout()),
			gateway.WithLogger(log.Logger),
			gateway.WithMetrics(m),
		)
		service, err := auth.NewSessionService(store, sessions.NewCache(), client,
			auth.WithLogger(log.Logger),
			auth.WithMetrics(m),
			auth.WithRefreshTimeout(c.cfg.GetRefreshTimeout()),
			auth.WithRefreshSkew(c.cfg.GetRefreshSkew()),
			auth.WithLogoutOnRevokedRefresh(c.cfg.GetLogoutOnRevokedRefresh()),
		)
		if err != nil {
			return err
		}
		return fn(ctx, service)
	})
}

func openStore(ctx context.Context, c config.Config) (sessions.Repo, func(), error) {
	switch c.GetStoreKind() {
	case config.StoreKindRedis:
		store, err := redisstore.Connect(ctx, c.GetRedisURL(), c.GetRedisKey())
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case config.StoreKindFile:
		var options []filestore.Option
		if c.GetEncryptStore() {
			sealer, err := filestore.LoadOrCreateAgeSealer(c.GetStoreKeyFile())
			if err != nil {
				return nil, nil, err
			}
			options = append(options, filestore.WithSealer(sealer))
		}
		store := filestore.New(c.GetSessionFile(), options...)
		log.Debug().Str("path", filepath.Clean(store.Path())).Msg("using file session store")
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", c.GetStoreKind())
	}
}
