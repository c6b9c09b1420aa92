package ethereum

// Minimal ABI fragments for the three contracts the coordinator touches.
// Escrow/pool internals are out of scope; only the entry points below are
// consulted.

const liquidityPoolABI = `[
	{"type":"function","name":"createOffer","stateMutability":"nonpayable",
	 "inputs":[{"name":"lender","type":"address"},{"name":"amount","type":"uint256"},{"name":"durationDays","type":"uint256"},{"name":"minScore","type":"uint256"}],
	 "outputs":[{"name":"offerId","type":"uint256"}]},
	{"type":"function","name":"acceptOffer","stateMutability":"nonpayable",
	 "inputs":[{"name":"offerId","type":"uint256"},{"name":"borrower","type":"address"},{"name":"interest","type":"uint256"},{"name":"isInsured","type":"bool"},{"name":"insurer","type":"address"}],
	 "outputs":[{"name":"loanId","type":"uint256"}]},
	{"type":"function","name":"offerPrincipal","stateMutability":"view",
	 "inputs":[{"name":"offerId","type":"uint256"}],
	 "outputs":[{"name":"","type":"uint256"}]}
]`

const loanEscrowABI = `[
	{"type":"function","name":"markDefault","stateMutability":"nonpayable",
	 "inputs":[{"name":"loanId","type":"uint256"}],
	 "outputs":[]}
]`

const reputationRegistryABI = `[
	{"type":"function","name":"isBorrowerFlagged","stateMutability":"view",
	 "inputs":[{"name":"borrower","type":"address"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`
