package logging

import (
	"github.com/sirupsen/logrus"
)

// New builds the application logger from LOG_LEVEL / LOG_FORMAT. Unknown
// values fall back to info/text rather than failing startup.
func New(level, format string) *logrus.Logger {
	log := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
