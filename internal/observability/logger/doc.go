// Package logger wraps a process-wide zap logger with request scoping.
//
// Init is called once from main with the values of the log section of the
// config. Handlers and services never hold a logger of their own; they pull
// the request-scoped one from the context:
//
//	log := logger.From(ctx).With(
//	    logger.Layer("service"),
//	    logger.Component("roles"),
//	    logger.Op("CreateRole"),
//	)
//	log.Info("role created", logger.RoleName(name))
//
// Without a context (startup, CLI) use logger.L().
//
// "dev" writes colored console lines, "prod" writes JSON. Level defaults to info.
package logger
