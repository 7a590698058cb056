// Package core fronts the birth-date matrix calculator for transports.
//
// # Service
//
// Service validates input, computes readings through the numerology package,
// attaches catalog interpretations and records each calculation:
//
//	svc := core.NewService(catalog.MustLoad(),
//	    core.WithHistory(core.NewPostgresHistory(pool)),
//	    core.WithCache(core.NewRedisCache(rdb, 24*time.Hour)),
//	    core.WithMetrics(core.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//	res, err := svc.Calculate(ctx, "15.05.1992")
//
// History, cache and metrics are optional. Without a history store the
// history operations return ErrHistoryDisabled. Cache and history failures
// are logged and never fail a calculation.
//
// # Storage
//
// HistoryStore has two implementations: PostgresHistory (pgx) and
// MemoryHistory. Cache has RedisCache (go-redis) and MemoryCache. Readings are
// pure functions of the date, so cached entries never need invalidation.
//
// # Request Metadata
//
// Transports put the client IP and User-Agent in the context with
// ContextWithIPAddress and ContextWithUserAgent; they are stored with each
// history entry.
//
// # Errors
//
// MapError turns any error returned here into a UserMessage with a support
// code. See error_messages.go for the code reference.
//
// # Background Jobs
//
// StartRetentionScheduler purges history older than the retention window.
package core
