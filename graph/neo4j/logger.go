package neo4j

import (
	neo4jlog "github.com/neo4j/neo4j-go-driver/v5/neo4j/log"
	"github.com/yaoapp/kun/log"
)

// driverLogger forwards the driver's internal log lines to kun/log
type driverLogger struct{}

func newDriverLogger() neo4jlog.Logger {
	return &driverLogger{}
}

func (l *driverLogger) Error(name, id string, err error) {
	log.With(log.F{"component": name, "id": id}).Error("[neo4j] %s", err.Error())
}

func (l *driverLogger) Warnf(name, id string, msg string, args ...any) {
	log.With(log.F{"component": name, "id": id}).Warn("[neo4j] "+msg, args...)
}

func (l *driverLogger) Infof(name, id string, msg string, args ...any) {
	log.With(log.F{"component": name, "id": id}).Info("[neo4j] "+msg, args...)
}

func (l *driverLogger) Debugf(name, id string, msg string, args ...any) {
	log.With(log.F{"component": name, "id": id}).Debug("[neo4j] "+msg, args...)
}
