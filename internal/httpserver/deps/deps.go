package deps

import (
	"time"

	"github.com/MrSnakeDoc/doodl/internal/auth"
	"github.com/MrSnakeDoc/doodl/internal/index"
	"github.com/MrSnakeDoc/doodl/internal/logger"
	"github.com/MrSnakeDoc/doodl/internal/metadata"
	"github.com/MrSnakeDoc/doodl/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/doodl/internal/store/redis"
	"github.com/MrSnakeDoc/doodl/internal/store/sqlite"
)

// Enqueuer accepts enrichment jobs without blocking.
type Enqueuer interface {
	Schedule(job scheduler.EnrichJob) bool
	Pending() int
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time   // for testing, defaults to time.Now
	AllowedHosts    []string           // Host headers allowed to access the app routes
	AllowedCIDRS    []string           // proxies allowed to reach the app and infra routes
	TrustProxy      bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	APIRateLimit    int                // requests per minute per client IP on /api
	Store           *sqlite.Store      // bookmarks, memos, navigations, api keys, users
	Identity        auth.Provider      // identity asserted by the auth platform
	Enricher        Enqueuer           // metadata enrichment of new bookmarks
	Metadata        metadata.Source    // page metadata for previews
	MetadataCache   metadata.Cache     // cache behind Metadata, redis or memory
	RedisCache      *redisstore.Store  // nil when the metadata cache is in memory
	MemoryCache     *index.MemoryCache // nil when the metadata cache is in Redis
	DefaultTimezone *time.Location     // calendar zone when a request carries none
	TagSuggestLimit int                // max tag suggestions
	ImportFile      string             // bookmark import file, empty when disabled
	ImportTrigger   chan struct{}      // manual import trigger (nil if import disabled)
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
