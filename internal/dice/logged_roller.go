package dice

import "go.uber.org/zap"

// LoggedRoller wraps a Roller and logs every die at debug level.
type LoggedRoller struct {
	roller Roller
	logger *zap.Logger
}

// NewLoggedRoller creates a LoggedRoller that rolls with r and logs to logger.
//
// Precondition: r and logger must be non-nil.
func NewLoggedRoller(r Roller, logger *zap.Logger) *LoggedRoller {
	return &LoggedRoller{roller: r, logger: logger}
}

// RollNumber rolls one die and logs its sides and value.
func (r *LoggedRoller) RollNumber(sides uint32) uint32 {
	v := r.roller.RollNumber(sides)
	r.logger.Debug("die rolled",
		zap.Uint32("sides", sides),
		zap.Uint32("value", v),
	)
	return v
}

// LoggedFactory returns a RollerFactory producing a logged roller per command
// on top of rollers from next.
func LoggedFactory(next RollerFactory, logger *zap.Logger) RollerFactory {
	return func() Roller {
		return NewLoggedRoller(next(), logger)
	}
}
