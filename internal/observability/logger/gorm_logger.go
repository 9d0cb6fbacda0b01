package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

type GormLoggerConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
	// Unknown invitation codes surface as ErrRecordNotFound on every miss;
	// they are normal traffic, not database failures.
	IgnoreRecordNotFound bool
}

func DefaultGormLoggerConfig() GormLoggerConfig {
	return GormLoggerConfig{
		Level:                gormlogger.Warn,
		SlowThreshold:        200 * time.Millisecond,
		IgnoreRecordNotFound: true,
	}
}

// GormLogger routes GORM output through the request-scoped zap logger so SQL
// lines carry the same request, actor and trace ids as the handler logs.
// Bound parameters are never logged.
type GormLogger struct {
	cfg GormLoggerConfig
}

func NewGormLogger(cfg GormLoggerConfig) *GormLogger {
	return &GormLogger{cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.cfg.Level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.write(ctx, gormlogger.Info, msg, zap.Any("data", data))
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.write(ctx, gormlogger.Warn, msg, zap.Any("data", data))
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.write(ctx, gormlogger.Error, msg, zap.Any("data", data))
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	var (
		level gormlogger.LogLevel
		msg   string
	)
	switch {
	case err != nil && !(l.cfg.IgnoreRecordNotFound && errors.Is(err, gormlogger.ErrRecordNotFound)):
		level, msg = gormlogger.Error, "gorm.query.failed"
	case l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold:
		level, msg = gormlogger.Warn, "gorm.query.slow"
	default:
		level, msg = gormlogger.Info, "gorm.query"
	}
	if l.cfg.Level < level {
		return
	}

	sql, rows := fc()
	shape := parseStatement(sql)
	fields := []zap.Field{
		zap.String("sql", strings.TrimSpace(sql)),
		zap.String("operation", shape.operation),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if shape.table != "" {
		fields = append(fields, zap.String("table", shape.table))
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows_affected", rows))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	l.write(ctx, level, msg, fields...)
}

// ParamsFilter drops bound values; invitation codes and subject ids travel
// as parameters.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func (l *GormLogger) write(ctx context.Context, level gormlogger.LogLevel, msg string, fields ...zap.Field) {
	if level == gormlogger.Silent || l.cfg.Level < level {
		return
	}
	if ce := FromContext(ctx).Check(zapLevel(level), msg); ce != nil {
		ce.Write(append(fields, zap.String("component", "gorm"))...)
	}
}

// Successful statements log at debug so Info mode stays usable in production.
func zapLevel(level gormlogger.LogLevel) zapcore.Level {
	switch level {
	case gormlogger.Error:
		return zap.ErrorLevel
	case gormlogger.Warn:
		return zap.WarnLevel
	default:
		return zap.DebugLevel
	}
}

type statement struct {
	operation string
	table     string
}

// parseStatement reports the first DML verb and the table it targets. A CTE
// prefix is skipped; the first verb inside it wins.
func parseStatement(sql string) statement {
	st := statement{operation: "UNKNOWN"}
	tokens := strings.Fields(strings.TrimSpace(sql))
	for i, raw := range tokens {
		token := strings.ToUpper(strings.Trim(raw, "();"))
		if st.operation == "UNKNOWN" {
			switch token {
			case "SELECT", "INSERT", "UPDATE", "DELETE", "MERGE":
				st.operation = token
				if token == "UPDATE" && i+1 < len(tokens) {
					st.table = tableName(tokens[i+1])
					return st
				}
			}
			continue
		}
		if (token == "FROM" || token == "INTO") && i+1 < len(tokens) {
			st.table = tableName(tokens[i+1])
			return st
		}
	}
	return st
}

func operationFromSQL(sql string) string {
	return parseStatement(sql).operation
}

func tableName(token string) string {
	return strings.Trim(token, "`\"();")
}

var _ gormlogger.Interface = (*GormLogger)(nil)
