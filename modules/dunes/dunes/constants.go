package dunes

const (
	// GENESIS_BLOCK is the block height at which the Dunes protocol activates.
	GENESIS_BLOCK uint64 = 840_000

	// UNLOCK_INTERVAL is the number of blocks between each decrease of the
	// minimum allowed dune name length.
	UNLOCK_INTERVAL uint64 = 17_500

	// INITIAL_AVAILABLE is the minimum dune name length at the genesis block.
	INITIAL_AVAILABLE = 13

	// DUNE_COMMIT_CONFIRMATIONS is the number of confirmations a taproot
	// commitment input must have for a named etching to be valid.
	DUNE_COMMIT_CONFIRMATIONS = 6

	// TAPROOT_ANNEX_PREFIX marks the optional annex element of a taproot witness stack.
	TAPROOT_ANNEX_PREFIX = 0x50

	// TAPROOT_SCRIPT_PUBKEY_TYPE is the scriptPubKey type of a taproot output.
	TAPROOT_SCRIPT_PUBKEY_TYPE = "witness_v1_taproot"

	// MAX_NAME_LENGTH is the maximum length of a dune name.
	MAX_NAME_LENGTH = 31

	// MAX_DIVISIBILITY is the maximum number of decimals of a dune.
	MAX_DIVISIBILITY uint8 = 18
)

// Accepted values of the dunestone protocol field.
var protocolIdentifiers = map[string]struct{}{
	"dunes":            {},
	"https://dunes.sh": {},
}
