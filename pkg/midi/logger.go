package midi

import "go.uber.org/zap"

var decoderLog = zap.NewNop()

// SetLogger routes decoder debug output to l.
func SetLogger(l *zap.Logger) {
	decoderLog = l.Named("midi")
}
