package contract

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// MultiAssetTokenABI is the interface of the multi-asset mintable token.
// Every read is keyed by asset id; balances are keyed by a 32-byte owner word.
//
//	name(bytes32)                  → string
//	symbol(bytes32)                → string
//	decimals(bytes32)              → uint8
//	totalSupply(bytes32)           → uint256
//	balanceOf(bytes32,bytes32)     → uint256
//	mint(bytes32,bytes32,uint256)
const MultiAssetTokenABI = `[
  {"type":"function","name":"name","stateMutability":"view",
   "inputs":[{"name":"asset","type":"bytes32"}],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"symbol","stateMutability":"view",
   "inputs":[{"name":"asset","type":"bytes32"}],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"decimals","stateMutability":"view",
   "inputs":[{"name":"asset","type":"bytes32"}],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view",
   "inputs":[{"name":"asset","type":"bytes32"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"owner","type":"bytes32"},{"name":"asset","type":"bytes32"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"mint","stateMutability":"nonpayable",
   "inputs":[{"name":"recipient","type":"bytes32"},{"name":"subId","type":"bytes32"},{"name":"amount","type":"uint256"}],
   "outputs":[]},
  {"type":"event","name":"Mint","anonymous":false,
   "inputs":[{"name":"recipient","type":"bytes32","indexed":true},{"name":"asset","type":"bytes32","indexed":true},
             {"name":"amount","type":"uint256","indexed":false}]}
]`

var tokenABI = mustParseABI(MultiAssetTokenABI)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("contract: bad embedded ABI: %v", err))
	}
	return parsed
}
