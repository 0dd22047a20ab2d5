package util

import (
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/thetatoken/rootchain/common"
)

const defaultLogLevel = "warn"

var (
	logLevels map[string]string
	loggers   = make(map[string]*log.Logger)
	mu        sync.Mutex
)

func init() {
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	log.SetFormatter(customFormatter)
}

// InitLog reads the per-module log levels from config. It must be called after
// the config file is loaded.
func InitLog() {
	mu.Lock()
	defer mu.Unlock()

	logLevels = parseLogLevelConfig(viper.GetString(common.CfgLogLevels))
	loggers = make(map[string]*log.Logger)
	if level, err := log.ParseLevel(logLevels["*"]); err == nil {
		log.SetLevel(level)
	}
}

// parseLogLevelConfig parses config strings like "*:error,ledger:debug" into a
// module -> level map. The "*" entry is always present.
func parseLogLevelConfig(config string) map[string]string {
	ret := make(map[string]string)
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		ret[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	if _, ok := ret["*"]; !ok {
		ret["*"] = defaultLogLevel
	}
	return ret
}

// GetLoggerForModule returns a logger tagged with the module prefix, at the level
// configured for the module, or the "*" level otherwise.
func GetLoggerForModule(module string) *log.Entry {
	mu.Lock()
	defer mu.Unlock()

	logger, ok := loggers[module]
	if !ok {
		levels := logLevels
		if levels == nil {
			levels = map[string]string{"*": defaultLogLevel}
		}
		levelStr, ok := levels[module]
		if !ok {
			levelStr = levels["*"]
		}
		level, err := log.ParseLevel(levelStr)
		if err != nil {
			level = log.WarnLevel
		}

		logger = log.New()
		logger.Formatter = log.StandardLogger().Formatter
		logger.Level = level
		loggers[module] = logger
	}
	return logger.WithFields(log.Fields{"prefix": module})
}
