package datetime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultLocaltimePath = "/etc/localtime"
	defaultTimezonePath  = "/etc/timezone"
)

// ZoneResolver computes the current system time zone.
type ZoneResolver func() (*time.Location, error)

// ZoneOption configures a ZoneCache
type ZoneOption func(*ZoneCache)

// WithZoneLogger sets the logger used for refresh and watch events
func WithZoneLogger(logger *zap.Logger) ZoneOption {
	return func(z *ZoneCache) {
		if logger != nil {
			z.logger = logger
		}
	}
}

// WithZoneResolver replaces the system zone lookup
func WithZoneResolver(resolve ZoneResolver) ZoneOption {
	return func(z *ZoneCache) {
		if resolve != nil {
			z.resolve = resolve
		}
	}
}

// WithWatchPaths sets the files whose changes signal a zone change
func WithWatchPaths(paths ...string) ZoneOption {
	return func(z *ZoneCache) {
		if len(paths) > 0 {
			z.paths = append([]string(nil), paths...)
		}
	}
}

// ZoneCache holds the current system time zone. The zone is computed on
// first read and replaced whenever Refresh runs, typically from Watch.
type ZoneCache struct {
	logger  *zap.Logger
	resolve ZoneResolver
	paths   []string

	mu    sync.RWMutex
	loc   *time.Location
	hooks []func(*time.Location)
}

// NewZoneCache returns an empty cache; nothing is resolved until Current is called.
func NewZoneCache(opts ...ZoneOption) *ZoneCache {
	z := &ZoneCache{
		logger:  zap.NewNop(),
		resolve: SystemLocation(defaultLocaltimePath),
		paths:   []string{defaultLocaltimePath, defaultTimezonePath},
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// Current returns the cached zone, resolving it on first use.
func (z *ZoneCache) Current() *time.Location {
	z.mu.RLock()
	loc := z.loc
	z.mu.RUnlock()
	if loc != nil {
		return loc
	}

	z.mu.Lock()
	defer z.mu.Unlock()
	if z.loc == nil {
		z.loc = z.lookup()
	}
	return z.loc
}

// Refresh recomputes the zone and notifies OnChange hooks when it differs
// from the previously cached one.
func (z *ZoneCache) Refresh() *time.Location {
	loc := z.lookup()
	z.Set(loc)
	return loc
}

// Set replaces the cached zone.
func (z *ZoneCache) Set(loc *time.Location) {
	if loc == nil {
		return
	}
	z.mu.Lock()
	prev := z.loc
	z.loc = loc
	hooks := slices.Clone(z.hooks)
	z.mu.Unlock()

	if prev == nil || prev.String() == loc.String() {
		return
	}
	z.logger.Info("System time zone changed",
		zap.String("from", locationName(prev)),
		zap.String("to", loc.String()))
	for _, h := range hooks {
		h(loc)
	}
}

// OnChange registers fn to run after every zone change.
func (z *ZoneCache) OnChange(fn func(*time.Location)) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.hooks = append(z.hooks, fn)
}

func (z *ZoneCache) lookup() *time.Location {
	loc, err := z.resolve()
	if err != nil || loc == nil {
		z.logger.Warn("Failed to resolve system time zone, using process default", zap.Error(err))
		return time.Local
	}
	return loc
}

// SystemLocation returns a resolver that reads the zone the way the C library
// does: the TZ variable first, then the zoneinfo link at localtime.
func SystemLocation(localtime string) ZoneResolver {
	return func() (*time.Location, error) {
		if tz, ok := os.LookupEnv("TZ"); ok {
			return locationFromTZ(tz)
		}
		if target, err := os.Readlink(localtime); err == nil {
			if name := zoneNameFromPath(target); name != "" {
				if loc, err := time.LoadLocation(name); err == nil {
					return loc, nil
				}
			}
		}
		data, err := os.ReadFile(localtime)
		if err != nil {
			if os.IsNotExist(err) {
				return time.Local, nil
			}
			return nil, fmt.Errorf("failed to read %s: %w", localtime, err)
		}
		loc, err := time.LoadLocationFromTZData("Local", data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", localtime, err)
		}
		return loc, nil
	}
}

func locationFromTZ(tz string) (*time.Location, error) {
	tz = strings.TrimPrefix(tz, ":")
	if tz == "" {
		return time.UTC, nil
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}
	if filepath.IsAbs(tz) {
		data, err := os.ReadFile(tz)
		if err != nil {
			return nil, fmt.Errorf("failed to read TZ file: %w", err)
		}
		return time.LoadLocationFromTZData(zoneNameFromPath(tz), data)
	}
	return nil, fmt.Errorf("unknown time zone %q", tz)
}

// zoneNameFromPath extracts "Europe/Paris" from ".../zoneinfo/Europe/Paris".
func zoneNameFromPath(p string) string {
	const marker = "zoneinfo/"
	idx := strings.LastIndex(p, marker)
	if idx < 0 {
		return ""
	}
	return p[idx+len(marker):]
}

func locationName(loc *time.Location) string {
	if loc == nil {
		return ""
	}
	return loc.String()
}

var (
	defaultZonesMu sync.Mutex
	defaultZones   *ZoneCache
)

// DefaultZoneCache returns the process-wide cache. The first call starts
// watching the system zone files.
func DefaultZoneCache() *ZoneCache {
	defaultZonesMu.Lock()
	defer defaultZonesMu.Unlock()
	if defaultZones == nil {
		defaultZones = NewZoneCache()
		watchInBackground(defaultZones)
	}
	return defaultZones
}

// watchInBackground keeps z current for the life of the process. Without a
// watcher the zone only changes on Refresh.
func watchInBackground(z *ZoneCache) {
	if err := z.Watch(context.Background()); err != nil {
		z.logger.Debug("System zone watch unavailable", zap.Error(err))
	}
}

// SetDefaultZoneCache replaces the process-wide cache.
func SetDefaultZoneCache(z *ZoneCache) {
	defaultZonesMu.Lock()
	defer defaultZonesMu.Unlock()
	defaultZones = z
}

// SystemZone returns the current system time zone from the default cache.
func SystemZone() *time.Location {
	return DefaultZoneCache().Current()
}

func orSystemZone(loc *time.Location) *time.Location {
	if loc != nil {
		return loc
	}
	return SystemZone()
}
