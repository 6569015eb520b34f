package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "cat-care/docs"
	"cat-care/internal/adapters/auth/bcrypthash"
	memblob "cat-care/internal/adapters/blob/memory"
	mem "cat-care/internal/adapters/storage/memory"
	pg "cat-care/internal/adapters/storage/postgres"
	"cat-care/internal/domain/access"
	"cat-care/internal/domain/activities"
	"cat-care/internal/domain/calendar"
	"cat-care/internal/domain/caregivers"
	"cat-care/internal/domain/cats"
	"cat-care/internal/domain/photos"
	"cat-care/internal/domain/users"
	"cat-care/internal/middleware"
	"cat-care/internal/platform/logger"
	"cat-care/internal/platform/metrics"
	"cat-care/internal/ports/auth"
	"cat-care/internal/ports/blob"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev, headers de debug)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sqlx.DB

	Blob     blob.Store          // nil => blob store en memoria
	Hasher   auth.PasswordHasher // nil => bcrypt con costo por defecto
	Logger   logger.Logger       // nil => descarta
	Location *time.Location      // nil => UTC
	// DefaultAdminEmail es la cuenta que nunca se bloquea ni se borra.
	DefaultAdminEmail string

	CorsOrigins []string
}

// App expone los services armados (main los usa para el bootstrap).
type App struct {
	Handler http.Handler
	Users   *users.Service
}

type catStore interface {
	cats.Repository
	access.CatOwners
}

type caregiverStore interface {
	caregivers.Repository
	access.CaregiverLinks
}

type repos struct {
	users      users.Repository
	cats       catStore
	caregivers caregiverStore
	activities activities.Repository
	photos     photos.Repository
}

func newRepos(db *sqlx.DB) repos {
	if db != nil {
		return repos{
			users:      pg.NewUsersRepo(db),
			cats:       pg.NewCatsRepo(db),
			caregivers: pg.NewCaregiversRepo(db),
			activities: pg.NewActivitiesRepo(db),
			photos:     pg.NewPhotosRepo(db),
		}
	}
	store := mem.NewStore()
	return repos{
		users:      mem.NewUsersRepo(store),
		cats:       mem.NewCatsRepo(store),
		caregivers: mem.NewCaregiversRepo(store),
		activities: mem.NewActivitiesRepo(store),
		photos:     mem.NewPhotosRepo(store),
	}
}

func NewRouter(opts Options) http.Handler {
	return New(opts).Handler
}

func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	blobs := opts.Blob
	if blobs == nil {
		blobs = memblob.New("")
	}
	hasher := opts.Hasher
	if hasher == nil {
		hasher = bcrypthash.New(0)
	}

	rp := newRepos(opts.DB)

	// Services por módulo
	evaluator := access.NewEvaluator(rp.cats, rp.caregivers)
	usersSvc := users.NewService(rp.users, hasher, blobs, opts.DefaultAdminEmail, log)
	catsSvc := cats.NewService(rp.cats, evaluator, blobs)
	caregiversSvc := caregivers.NewService(rp.caregivers, evaluator, usersSvc)
	activitiesSvc := activities.NewService(rp.activities, evaluator, loc)
	calendarSvc := calendar.NewService(rp.activities, evaluator, loc)
	photosSvc := photos.NewService(rp.photos, evaluator, blobs)

	catsH := cats.NewHandlers(catsSvc, log)
	caregiversH := caregivers.NewHandlers(caregiversSvc, log)
	activitiesH := activities.NewHandlers(activitiesSvc, log)
	calendarH := calendar.NewHandlers(calendarSvc, log)
	photosH := photos.NewHandlers(photosSvc, log)
	usersH := users.NewHandlers(usersSvc, log)

	handlers := map[RouteID]http.HandlerFunc{
		RouteHealth:              health,
		RouteCatsList:            catsH.List,
		RouteCatsCreate:          catsH.Create,
		RouteCatGet:              catsH.Get,
		RouteCatUpdate:           catsH.Update,
		RouteCatDelete:           catsH.Delete,
		RouteCatAccess:           access.CanAccessHandler(evaluator, log),
		RouteCaregiversRoster:    caregiversH.Roster,
		RouteCaregiverAssign:     caregiversH.Assign,
		RouteCaregiverUnassign:   caregiversH.Unassign,
		RouteActivitiesUpcoming:  activitiesH.Upcoming,
		RouteActivityCreate:      activitiesH.Create,
		RouteActivityUpdate:      activitiesH.Update,
		RouteActivityCancel:      activitiesH.Cancel,
		RoutePhotosList:          photosH.List,
		RoutePhotoUpload:         photosH.Upload,
		RoutePhotosReorder:       photosH.Reorder,
		RoutePhotoDelete:         photosH.Delete,
		RouteActivitiesSearch:    activitiesH.Search,
		RouteActivitiesDashboard: activitiesH.Dashboard,
		RouteCalendarRange:       calendarH.Range,
		RouteCalendarDay:         calendarH.Day,
		RouteAdminUsersList:      usersH.List,
		RouteAdminUserCreate:     usersH.Create,
		RouteAdminUserUpdate:     usersH.Update,
		RouteAdminUserBlock:      usersH.Block,
		RouteAdminUserDelete:     usersH.Delete,
		RouteAdminStats:          usersH.Stats,
		RouteCatAvatar:           catsH.Avatar,
		RouteMe:                  usersH.Me,
		RouteMeUpdate:            usersH.UpdateMe,
		RouteMeAvatar:            usersH.Avatar,
		RouteRegister:            usersH.Register,
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if len(opts.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CorsOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.HeaderDebugUserID, middleware.HeaderDebugRole},
			MaxAge:         300,
		}))
	}
	r.Use(metrics.Middleware)
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Identify(opts.AuthVerifier))

	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if err := mount(r, handlers); err != nil {
		// solo puede fallar por un error de programación en la tabla
		panic(err)
	}

	return &App{Handler: r, Users: usersSvc}
}

// mount registra cada ruta de la tabla; falla si falta algún handler.
func mount(r chi.Router, handlers map[RouteID]http.HandlerFunc) error {
	for _, rt := range routes {
		h, ok := handlers[rt.ID]
		if !ok || h == nil {
			return fmt.Errorf("router: no handler for %s %s", rt.Method, rt.Pattern)
		}
		var handler http.Handler = h
		if !rt.Public {
			handler = middleware.RequireIdentity(handler)
		}
		r.Method(rt.Method, rt.Pattern, handler)
	}
	if len(handlers) != len(routes) {
		return fmt.Errorf("router: %d handlers for %d routes", len(handlers), len(routes))
	}
	return nil
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// EnsureDefaultAdmin es un atajo para main.
func (a *App) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	return a.Users.EnsureDefaultAdmin(ctx, username, password)
}
