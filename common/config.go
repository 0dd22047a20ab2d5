package common

import (
	"github.com/spf13/viper"
)

const (
	// CfgConfigPath defines custom config path
	CfgConfigPath = "config.path"
	// CfgDataPath defines custom DB path
	CfgDataPath = "data.path"

	// CfgGenesisDomainID defines the domain identifier every checkpoint vote must carry.
	CfgGenesisDomainID = "genesis.domainID"
	// CfgGenesisOwner defines the privileged owner of the ledger, the custody and the relay.
	CfgGenesisOwner = "genesis.owner"
	// CfgGenesisCustody defines the address of the deposit custody component.
	CfgGenesisCustody = "genesis.custody"
	// CfgGenesisLedger defines the address of the checkpoint ledger component.
	CfgGenesisLedger = "genesis.ledger"
	// CfgGenesisVerifier defines the address of the checkpoint signature verifier.
	CfgGenesisVerifier = "genesis.verifier"
	// CfgGenesisRelay defines the address of the message relay component.
	CfgGenesisRelay = "genesis.relay"
	// CfgGenesisChildChain defines the child-domain endpoint that receives deposit messages.
	CfgGenesisChildChain = "genesis.childChain"
	// CfgGenesisWrappedNative defines the address of the wrapped native asset token.
	CfgGenesisWrappedNative = "genesis.wrappedNative"
	// CfgGenesisTokens lists the tokens mapped at genesis, as "root:child[:nft]" entries.
	CfgGenesisTokens = "genesis.tokens"
	// CfgGenesisPredicates lists the addresses authorized to release escrowed assets.
	CfgGenesisPredicates = "genesis.predicates"

	// CfgLedgerCheckpointInterval defines the id distance K between two checkpoints.
	CfgLedgerCheckpointInterval = "ledger.checkpointInterval"
	// CfgLedgerEnforceContinuity requires start == previous.end + 1 for every checkpoint.
	CfgLedgerEnforceContinuity = "ledger.enforceCheckpointContinuity"
	// CfgLedgerCommitIntervalMs defines how often the delivered state is persisted.
	CfgLedgerCommitIntervalMs = "ledger.commitIntervalMs"
	// CfgLedgerCheckpointCacheSize defines the capacity of the committed checkpoint cache.
	CfgLedgerCheckpointCacheSize = "ledger.checkpointCacheSize"

	// CfgStorageBackend selects the database backend (leveldb, badger or memdb).
	CfgStorageBackend = "storage.backend"
	// CfgStorageCacheMB sets the leveldb block cache size.
	CfgStorageCacheMB = "storage.cacheMB"

	// CfgVerifierValidators lists the quorum validators as "address:stake" entries.
	CfgVerifierValidators = "verifier.validators"
	// CfgVerifierRewardPerBlock defines the reward paid per checkpointed child block.
	CfgVerifierRewardPerBlock = "verifier.rewardPerBlock"

	// CfgRPCEnabled sets whether to run RPC service.
	CfgRPCEnabled = "rpc.enabled"
	// CfgRPCAddress sets the binding address of RPC service.
	CfgRPCAddress = "rpc.address"
	// CfgRPCPort sets the port of RPC service.
	CfgRPCPort = "rpc.port"
	// CfgRPCMaxConnections limits concurrent connections accepted by RPC server.
	CfgRPCMaxConnections = "rpc.maxConnections"
	// CfgRPCTimeoutSecs set a timeout for RPC.
	CfgRPCTimeoutSecs = "rpc.timeoutSecs"

	// CfgOutboxEnabled sets whether relay messages are published off-system.
	CfgOutboxEnabled = "outbox.enabled"
	// CfgOutboxKafkaBrokers sets the Kafka bootstrap servers. Empty means log-only publishing.
	CfgOutboxKafkaBrokers = "outbox.kafkaBrokers"
	// CfgOutboxTopic sets the Kafka topic relay messages are published to.
	CfgOutboxTopic = "outbox.topic"
	// CfgOutboxPollIntervalMs sets how often the outbox scans for committed messages.
	CfgOutboxPollIntervalMs = "outbox.pollIntervalMs"
	// CfgOutboxBatchSize caps the number of messages published per poll.
	CfgOutboxBatchSize = "outbox.batchSize"

	// CfgLogLevels sets the log level.
	CfgLogLevels = "log.levels"
)

// InitialConfig is the default configuartion produced by init command.
const InitialConfig = `# Rootchain configuration
genesis:
  domainID: rootchain-devnet
  owner: "0x2E833968E5bB786Ae419c4d13189fB081Cc43bab"
ledger:
  checkpointInterval: 10000
storage:
  backend: leveldb
rpc:
  enabled: true
  port: 16900
log:
  levels: "*:info"
`

func init() {
	viper.SetDefault(CfgGenesisDomainID, "rootchain-devnet")
	viper.SetDefault(CfgGenesisCustody, "0x0000000000000000000000000000000000001001")
	viper.SetDefault(CfgGenesisLedger, "0x0000000000000000000000000000000000001002")
	viper.SetDefault(CfgGenesisVerifier, "0x0000000000000000000000000000000000001004")
	viper.SetDefault(CfgGenesisRelay, "0x0000000000000000000000000000000000001003")
	viper.SetDefault(CfgGenesisChildChain, "0x0000000000000000000000000000000000002001")
	viper.SetDefault(CfgGenesisWrappedNative, "0x0000000000000000000000000000000000001010")

	viper.SetDefault(CfgLedgerCheckpointInterval, 10000)
	viper.SetDefault(CfgLedgerEnforceContinuity, false)
	viper.SetDefault(CfgLedgerCommitIntervalMs, 1000)
	viper.SetDefault(CfgLedgerCheckpointCacheSize, 256)

	viper.SetDefault(CfgStorageBackend, "leveldb")
	viper.SetDefault(CfgStorageCacheMB, 256)

	viper.SetDefault(CfgVerifierRewardPerBlock, "1000000000000000000")

	viper.SetDefault(CfgRPCEnabled, false)
	viper.SetDefault(CfgRPCAddress, "0.0.0.0")
	viper.SetDefault(CfgRPCPort, "16900")
	viper.SetDefault(CfgRPCMaxConnections, 200)
	viper.SetDefault(CfgRPCTimeoutSecs, 60)

	viper.SetDefault(CfgOutboxEnabled, false)
	viper.SetDefault(CfgOutboxKafkaBrokers, "")
	viper.SetDefault(CfgOutboxTopic, "rootchain.relay")
	viper.SetDefault(CfgOutboxPollIntervalMs, 500)
	viper.SetDefault(CfgOutboxBatchSize, 100)

	viper.SetDefault(CfgLogLevels, "*:info")
}

// WriteInitialConfig writes initial config file to file system.
func WriteInitialConfig(filePath string) error {
	return WriteFileAtomic(filePath, []byte(InitialConfig), 0600)
}
