package score

import "go.uber.org/zap"

var scoreLog = zap.NewNop()

// SetLogger routes build debug output to l.
func SetLogger(l *zap.Logger) {
	scoreLog = l.Named("score")
}
