package main

import (
	"github.com/Garik-/beatclock/pkg/midi"
	"github.com/Garik-/beatclock/pkg/score"
	"go.uber.org/zap"
)

var cliLog = zap.NewNop()

func enableDebugLogging(l *zap.Logger) {
	cliLog = l
	midi.SetLogger(l)
	score.SetLogger(l)
}
