package sheet

import "github.com/sirupsen/logrus"

// Option configures a Sheet at construction time.
type Option func(*Sheet)

// WithLogger injects a logger used for cycle-rejection, auto-deletion, and
// cache-invalidation diagnostics. Without this option a Sheet logs at
// logrus.WarnLevel via a private logger instance, so it stays quiet by
// default but never logs to a nil receiver.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Sheet) {
		if log != nil {
			s.log = log
		}
	}
}

func defaultLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return log
}
