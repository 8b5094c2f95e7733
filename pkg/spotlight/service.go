// Package spotlight implements the server-side spotlight search: given
// free-form text, it returns a ranked, permission-filtered, size-bounded
// list of matching rooms and users for a requesting actor.
package spotlight

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/harborchat/spotlight/pkg/authz"
	"github.com/harborchat/spotlight/pkg/model"
	"github.com/harborchat/spotlight/pkg/observability"
	"github.com/harborchat/spotlight/pkg/ratelimit"
	"github.com/harborchat/spotlight/pkg/roomtypes"
	"github.com/harborchat/spotlight/pkg/settings"
	"github.com/harborchat/spotlight/pkg/store"
)

var tracer = otel.Tracer("github.com/harborchat/spotlight/pkg/spotlight")

// anonymousIdentity keys rate-limit counters for unauthenticated callers.
const anonymousIdentity = "anonymous"

// Deps are the collaborators a Service searches through. All of them are
// required except Metrics, which may be nil.
type Deps struct {
	Rooms    store.RoomStore
	Users    store.UserStore
	Subs     store.SubscriptionStore
	Authz    authz.Checker
	Registry *roomtypes.Registry
	Settings *settings.Settings
	Limiter  ratelimit.Limiter
	Logger   *observability.Logger
	Metrics  *observability.Metrics
}

// Service resolves spotlight requests. It performs read-only queries and
// is safe for concurrent use.
type Service struct {
	rooms    store.RoomStore
	users    store.UserStore
	subs     store.SubscriptionStore
	authz    authz.Checker
	registry *roomtypes.Registry
	settings *settings.Settings
	limiter  ratelimit.Limiter
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewService creates a search service from its collaborators.
func NewService(deps Deps) *Service {
	return &Service{
		rooms:    deps.Rooms,
		users:    deps.Users,
		subs:     deps.Subs,
		authz:    deps.Authz,
		registry: deps.Registry,
		settings: deps.Settings,
		limiter:  deps.Limiter,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
}

// Spotlight runs one search. It checks the caller's rate budget, parses
// leading sigils ("#" forces rooms only, "@" forces users only), and
// dispatches the room search and the user cascade concurrently.
//
// A caller over budget gets ErrRateLimited, never a silently empty
// result. Store failures propagate; permission denials do not.
func (s *Service) Spotlight(ctx context.Context, req Request) (*Result, error) {
	identity := req.ActorID
	identityClass := "user"
	if identity == "" {
		identity = anonymousIdentity
		identityClass = anonymousIdentity
	}

	allowed, err := s.limiter.Allow(ctx, identity)
	if err != nil {
		// The limiter already failed open; record the degradation.
		s.logger.WithError(err).Warn("rate limiter unavailable, allowing request")
	}
	if !allowed {
		if s.metrics != nil {
			s.metrics.RateLimitRejectedTotal.WithLabelValues(identityClass).Inc()
		}
		return nil, ErrRateLimited
	}

	text := req.Text
	wantUsers := req.WantUsers
	wantRooms := req.WantRooms

	// Sigils are checked independently, not as alternatives; only one can
	// occupy the first byte, so at most one fires.
	if strings.HasPrefix(text, "#") {
		wantUsers = false
		text = text[1:]
	}
	if strings.HasPrefix(text, "@") {
		wantRooms = false
		text = text[1:]
	}

	ctx, span := tracer.Start(ctx, "spotlight.Search",
		trace.WithAttributes(
			attribute.Bool("spotlight.want_users", wantUsers),
			attribute.Bool("spotlight.want_rooms", wantRooms),
			attribute.Bool("spotlight.anonymous", req.ActorID == ""),
		))
	defer span.End()

	result := &Result{
		Users: []model.UserMatch{},
		Rooms: []model.Room{},
	}

	g, gctx := errgroup.WithContext(ctx)

	if wantUsers {
		g.Go(func() error {
			start := time.Now()
			users, err := s.searchUsers(gctx, req.ActorID, req.RoomID, text, req.KnownUsernames)
			if s.metrics != nil {
				s.metrics.ObserveSearch("users", len(users), time.Since(start), err)
			}
			if err != nil {
				return err
			}
			if users != nil {
				result.Users = users
			}
			return nil
		})
	}

	if wantRooms {
		g.Go(func() error {
			start := time.Now()
			rooms, err := s.searchRooms(gctx, req.ActorID, text)
			if s.metrics != nil {
				s.metrics.ObserveSearch("rooms", len(rooms), time.Since(start), err)
			}
			if err != nil {
				return err
			}
			if rooms != nil {
				result.Rooms = rooms
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		observability.LoggerWithTraceContext(ctx, s.logger).WithError(err).Error("spotlight search failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("spotlight.user_count", len(result.Users)),
		attribute.Int("spotlight.room_count", len(result.Rooms)),
	)

	return result, nil
}
