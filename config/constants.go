package config

// Store kinds.  StoreMem lives only as long as the process, so the command
// line doesn't offer it.
const (
	StoreMem   = "mem"
	StoreFlat  = "flat"
	StoreLevel = "leveldb"
)

const (
	appName = "ndtree"

	defaultStoreDirname = "store"
	defaultLevelDirname = "treedb"
	defaultLogDirname   = "logs"
	defaultLogFilename  = "ndtree.log"

	// DefaultFileName is the session file trees are kept under
	DefaultFileName = "tree"

	DefaultDebugLevel = "info"
	DefaultDimension  = 2
	DefaultCapacity   = 1 << 16
)
