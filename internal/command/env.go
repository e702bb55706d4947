package command

import (
	"log/slog"
	"time"

	"github.com/nextlevelbuilder/selfgo/internal/afk"
	"github.com/nextlevelbuilder/selfgo/internal/config"
	"github.com/nextlevelbuilder/selfgo/internal/services"
	"github.com/nextlevelbuilder/selfgo/internal/store"
	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

// Env bundles everything a handler can touch. One Env is shared by the
// whole registry; all members are safe for concurrent use.
type Env struct {
	Cfg    *config.Config
	T      transport.Transport
	Stores store.Stores
	AFK    *afk.State
	Flood  *FloodTracker
	Log    *slog.Logger

	Weather *services.WeatherClient
	Wiki    *services.WikiClient
	Urban   *services.UrbanClient
	Time    *services.TimeClient
	Shorten *services.ShortenClient
	QR      *services.QRClient

	StartedAt time.Time
	LogPath   string

	// Restart asks the process supervisor to exit cleanly for a re-exec.
	Restart func()
}
