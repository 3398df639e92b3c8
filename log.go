package vecash

import log "github.com/inconshreveable/log15"

// logger is the package-level structured logger. DAG generation, self-heal,
// epoch-window eviction and stale-file sweep events go through it. The mix
// engine itself (Light.Compute, Full.Compute, QuickHash) never logs;
// Engine.Compute logs only when resolving a new epoch evicts or sweeps another.
var logger = log.New("module", "vecash")

func logGenerateStart(blockNumber, fullSize uint64) {
	logger.Info("Generating DAG", "block", blockNumber, "bytes", fullSize)
}

func logGenerateDone(blockNumber, fullSize uint64) {
	logger.Info("Generated DAG", "block", blockNumber, "bytes", fullSize)
}

func logMagicMismatch(path string) {
	logger.Warn("DAG magic mismatch, recomputing in place", "file", path)
}

func logSizeMismatch(path string, want, got int64) {
	logger.Warn("DAG size mismatch, recreating", "file", path, "want", want, "got", got)
}

func logEvict(kind string, epoch int) {
	logger.Debug("Evicting epoch from memory", "kind", kind, "epoch", epoch)
}

func logSweep(kind string, epoch int, path string) {
	logger.Debug("Removing stale epoch file", "kind", kind, "epoch", epoch, "file", path)
}
